package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/scandeck/internal/config"
	"github.com/anstrom/scandeck/internal/logging"
	"github.com/anstrom/scandeck/internal/metrics"
)

// resetGlobals restores the package flags and viper after a test.
func resetGlobals(t *testing.T) {
	t.Helper()
	viper.Reset()
	cfgFile, verbose = "", false
	t.Cleanup(func() {
		viper.Reset()
		cfgFile, verbose = "", false
	})
}

// envViper mirrors initConfig on a private viper instance.
func envViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func TestGetConfigFilePath(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		viperKey string
		expected string
	}{
		{
			name:     "defaults to the user directory",
			expected: filepath.Join(config.UserDir(), "config.yaml"),
		},
		{
			name:     "uses the config key when set",
			viperKey: "/etc/scandeck/config.yaml",
			expected: "/etc/scandeck/config.yaml",
		},
		{
			name:     "flag wins over the config key",
			flag:     "custom.yaml",
			viperKey: "/etc/scandeck/config.yaml",
			expected: "custom.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobals(t)
			cfgFile = tt.flag
			if tt.viperKey != "" {
				viper.Set("config", tt.viperKey)
			}
			assert.Equal(t, tt.expected, getConfigFilePath())
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	t.Setenv("SCANDECK_API_PORT", "9000")
	t.Setenv("SCANDECK_SCANNER_NMAP_PATH", "/opt/nmap/bin/nmap")
	t.Setenv("SCANDECK_SCANNER_POLL_INTERVAL", "500ms")
	t.Setenv("SCANDECK_ARCHIVE_ENABLED", "true")
	t.Setenv("SCANDECK_LOGGING_FORMAT", "json")
	t.Setenv("SCANDECK_METRICS_NAMESPACE", "")
	t.Setenv("SCANDECK_API_RESULTS_DIR", "/srv/scans")
	t.Setenv("SCANDECK_API_AUTH_ENABLED", "false")

	cfg := config.Default()
	applyOverrides(cfg, envViper())

	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, "/opt/nmap/bin/nmap", cfg.Scanner.NmapPath)
	assert.Equal(t, 500*time.Millisecond, cfg.Scanner.PollInterval)
	assert.True(t, cfg.Archive.Enabled)
	assert.Equal(t, logging.FormatJSON, cfg.Logging.Format)
	assert.Equal(t, "scandeck", cfg.Metrics.Namespace, "empty values keep the default")
	assert.Equal(t, "127.0.0.1", cfg.API.Host)
	assert.Equal(t, "/srv/scans", cfg.API.ResultsDir)
	assert.False(t, cfg.API.Auth.Enabled)
}

func TestBuildConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		resetGlobals(t)
		cfgFile = filepath.Join(t.TempDir(), "absent.yaml")

		cfg, err := buildConfig(envViper())
		require.NoError(t, err)
		assert.Equal(t, config.Default().API.Port, cfg.API.Port)
		assert.Equal(t, "nmap", cfg.Scanner.NmapPath)
	})

	t.Run("file values then environment", func(t *testing.T) {
		resetGlobals(t)
		cfgFile = filepath.Join(t.TempDir(), "config.yaml")
		content := `scanner:
  nmap_path: /usr/local/bin/nmap
api:
  host: 0.0.0.0
  port: 8080
logging:
  level: warn
`
		require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o600))
		t.Setenv("SCANDECK_API_PORT", "8081")

		cfg, err := buildConfig(envViper())
		require.NoError(t, err)
		assert.Equal(t, "/usr/local/bin/nmap", cfg.Scanner.NmapPath)
		assert.Equal(t, "0.0.0.0", cfg.API.Host)
		assert.Equal(t, 8081, cfg.API.Port)
		assert.Equal(t, logging.LevelWarn, cfg.Logging.Level)
	})

	t.Run("verbose forces debug logging", func(t *testing.T) {
		resetGlobals(t)
		cfgFile = filepath.Join(t.TempDir(), "absent.yaml")
		verbose = true

		cfg, err := buildConfig(envViper())
		require.NoError(t, err)
		assert.Equal(t, logging.LevelDebug, cfg.Logging.Level)
	})

	t.Run("invalid override is rejected", func(t *testing.T) {
		resetGlobals(t)
		cfgFile = filepath.Join(t.TempDir(), "absent.yaml")
		t.Setenv("SCANDECK_API_PORT", "70000")

		_, err := buildConfig(envViper())
		assert.Error(t, err)
	})

	t.Run("unreadable file is reported", func(t *testing.T) {
		resetGlobals(t)
		cfgFile = filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(cfgFile, []byte("api: [not, a, map"), 0o600))

		_, err := buildConfig(envViper())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken.yaml")
	})
}

func TestRecorderFollowsMetricsSetting(t *testing.T) {
	saved := appConfig
	t.Cleanup(func() { appConfig = saved })

	appConfig = nil
	assert.IsType(t, metrics.Nop{}, recorder())

	cfg := config.Default()
	cfg.Metrics.Enabled = false
	appConfig = cfg
	assert.IsType(t, metrics.Nop{}, recorder())

	cfg.Metrics.Enabled = true
	assert.Same(t, metrics.Global(), recorder())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in       string
		max      int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"Linux 5.0 - 5.14 kernel", 12, "Linux 5.0..."},
		{"abcdef", 3, "abc"},
		{"héllo wörld", 8, "héllo..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, truncate(tt.in, tt.max), tt.in)
	}
}
