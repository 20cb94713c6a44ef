package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/scandeck/internal/errors"
	"github.com/anstrom/scandeck/internal/logging"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "nmap", cfg.Scanner.NmapPath)
	assert.Equal(t, 2*time.Second, cfg.Scanner.PollInterval)
	assert.False(t, cfg.Archive.Enabled)
	assert.False(t, cfg.API.Enabled)
	assert.Equal(t, "127.0.0.1:8470", cfg.APIAddress())
	assert.Equal(t, "profiles.yaml", filepath.Base(cfg.Profiles.File))
	assert.Empty(t, cfg.API.AllowedOrigins, "only local origins unless configured")
	assert.True(t, cfg.API.Auth.Enabled)
	assert.Equal(t, filepath.Join(UserDir(), "results"), cfg.API.ResultsDir)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantErr  bool
		wantCode errors.ErrorCode
		check    func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid yaml",
			file: "scandeck.yaml",
			content: `
scanner:
  nmap_path: /usr/local/bin/nmap
  extra_search_paths: [/opt/nmap/bin]
  poll_interval: 500ms
logging:
  level: debug
  format: json
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/usr/local/bin/nmap", cfg.Scanner.NmapPath)
				assert.Equal(t, []string{"/opt/nmap/bin"}, cfg.Scanner.ExtraSearchPaths)
				assert.Equal(t, 500*time.Millisecond, cfg.Scanner.PollInterval)
				assert.Equal(t, logging.LevelDebug, cfg.Logging.Level)
				assert.Equal(t, logging.FormatJSON, cfg.Logging.Format)
				assert.True(t, cfg.Metrics.Enabled, "untouched sections keep defaults")
			},
		},
		{
			name:    "valid json",
			file:    "scandeck.json",
			content: `{"api": {"enabled": true, "host": "0.0.0.0", "port": 9000}}`,
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.API.Enabled)
				assert.Equal(t, "0.0.0.0:9000", cfg.APIAddress())
			},
		},
		{
			name:     "syntax error",
			file:     "broken.yaml",
			content:  "scanner: [unclosed",
			wantErr:  true,
			wantCode: errors.CodeConfiguration,
		},
		{
			name:     "poll interval too short",
			file:     "fast.yaml",
			content:  "scanner:\n  poll_interval: 1ms\n",
			wantErr:  true,
			wantCode: errors.CodeValidation,
		},
		{
			name:     "archive enabled without database user",
			file:     "archive.yaml",
			content:  "archive:\n  enabled: true\n  username: \"\"\n",
			wantErr:  true,
			wantCode: errors.CodeValidation,
		},
		{
			name:     "relative extra search path",
			file:     "rel.yaml",
			content:  "scanner:\n  extra_search_paths: [bin]\n",
			wantErr:  true,
			wantCode: errors.CodeValidation,
		},
		{
			name: "api auth and origins",
			file: "api.yaml",
			content: `
api:
  allowed_origins: ["https://scans.example.com"]
  results_dir: /srv/scans
  auth:
    enabled: true
    api_key_hashes: ["$2a$12$abcdefghijklmnopqrstuu5Vh8XU0VbV1kqGZ9zj1rE8a5sBqHq7u"]
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"https://scans.example.com"}, cfg.API.AllowedOrigins)
				assert.Equal(t, "/srv/scans", cfg.API.ResultsDir)
				assert.Len(t, cfg.API.Auth.KeyHashes, 1)
			},
		},
		{
			name:     "plain text api key instead of hash",
			file:     "key.yaml",
			content:  "api:\n  auth:\n    api_key_hashes: [sk_0123456789abcdef]\n",
			wantErr:  true,
			wantCode: errors.CodeValidation,
		},
		{
			name:     "blank allowed origin",
			file:     "origin.yaml",
			content:  "api:\n  allowed_origins: [\"  \"]\n",
			wantErr:  true,
			wantCode: errors.CodeValidation,
		},
		{
			name:     "bad log level",
			file:     "log.yaml",
			content:  "logging:\n  level: chatty\n",
			wantErr:  true,
			wantCode: errors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.file, tt.content))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Scanner, cfg.Scanner)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scandeck.yaml")

	cfg := Default()
	cfg.Scanner.ExtraSearchPaths = []string{"/opt/nmap/bin"}
	cfg.API.Enabled = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Scanner, loaded.Scanner)
	assert.True(t, loaded.API.Enabled)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(configFilePerm), info.Mode().Perm())
}

func TestValidateFieldPath(t *testing.T) {
	cfg := Default()
	cfg.Scanner.NmapPath = ""

	err := cfg.Validate()
	require.Error(t, err)

	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "scanner.nmappath", cfgErr.Field)
}
