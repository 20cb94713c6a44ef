package cli

import (
	"io"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/scandeck/internal/auth"
	"github.com/anstrom/scandeck/internal/config"
)

func TestAPIKeyGenerate(t *testing.T) {
	cmd, buf := outputCmd()
	require.NoError(t, runAPIKeyGenerate(cmd, nil))

	out := buf.String()
	key := regexp.MustCompile(`sk_[a-z0-9]{32}`).FindString(out)
	require.NotEmpty(t, key, out)
	hash := regexp.MustCompile(`"(\$2[^"]+)"`).FindStringSubmatch(out)
	require.Len(t, hash, 2, out)
	assert.True(t, auth.ValidateAPIKey(key, hash[1]))
	assert.Contains(t, out, "api_key_hashes:")
}

func TestServeKeys(t *testing.T) {
	t.Run("auth disabled", func(t *testing.T) {
		cfg := config.Default()
		cfg.API.Auth.Enabled = false
		cmd, buf := outputCmd()
		keys, err := serveKeys(cfg, cmd.ErrOrStderr())
		require.NoError(t, err)
		assert.Nil(t, keys)
		assert.Empty(t, buf.String())
	})

	t.Run("configured hashes", func(t *testing.T) {
		cfg := config.Default()
		cfg.API.Auth.KeyHashes = []string{"$2a$12$one", "$2a$12$two"}
		keys, err := serveKeys(cfg, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, 2, keys.Len())
	})

	t.Run("one time key when none configured", func(t *testing.T) {
		cfg := config.Default()
		cmd, buf := outputCmd()
		keys, err := serveKeys(cfg, cmd.ErrOrStderr())
		require.NoError(t, err)
		require.Equal(t, 1, keys.Len())

		key := regexp.MustCompile(`sk_[a-z0-9]{32}`).FindString(buf.String())
		require.NotEmpty(t, key)
		assert.True(t, keys.Verify(key))
	})
}
