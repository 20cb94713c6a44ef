package auth

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	hashCost = bcrypt.MinCost
	m.Run()
}

func TestGenerateAPIKey(t *testing.T) {
	generated, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(generated.Key, "sk_"))
	assert.Len(t, generated.Key, len("sk_")+APIKeyLength)
	assert.True(t, IsValidAPIKeyFormat(generated.Key))
	assert.Equal(t, generated.Key[:11]+"...", generated.Prefix)
	assert.True(t, ValidateAPIKey(generated.Key, generated.Hash))
	assert.NotContains(t, generated.Hash, generated.Key)
}

func TestGenerateAPIKey_Uniqueness(t *testing.T) {
	const numKeys = 50
	keys := make(map[string]bool)

	for i := 0; i < numKeys; i++ {
		generated, err := GenerateAPIKey()
		require.NoError(t, err)
		assert.False(t, keys[generated.Key], "Generated duplicate key: %s", generated.Key)
		keys[generated.Key] = true
	}
}

func TestHashAPIKey(t *testing.T) {
	tests := []struct {
		name        string
		apiKey      string
		expectError bool
	}{
		{
			name:   "valid_key",
			apiKey: "sk_abc123def456ghi789",
		},
		{
			name:   "longer_than_bcrypt_input",
			apiKey: "sk_" + strings.Repeat("a", 100),
		},
		{
			name:        "empty_key",
			apiKey:      "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashAPIKey(tt.apiKey)
			if tt.expectError {
				assert.Error(t, err)
				assert.Empty(t, hash)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(hash, "$2"))
			assert.True(t, ValidateAPIKey(tt.apiKey, hash))
			assert.False(t, ValidateAPIKey(tt.apiKey+"x", hash))
		})
	}
}

func TestValidateAPIKey_LongKeysDifferInTail(t *testing.T) {
	base := "sk_" + strings.Repeat("a", 80)
	hash, err := HashAPIKey(base + "1")
	require.NoError(t, err)

	assert.True(t, ValidateAPIKey(base+"1", hash))
	assert.False(t, ValidateAPIKey(base+"2", hash))
	assert.False(t, ValidateAPIKey("", hash))
	assert.False(t, ValidateAPIKey(base+"1", ""))
}

func TestIsValidAPIKeyFormat(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		want   bool
	}{
		{name: "valid", apiKey: "sk_abcdefghijklmnop", want: true},
		{name: "wrong_prefix", apiKey: "pk_abcdefghijklmnop"},
		{name: "too_short", apiKey: "sk_abc"},
		{name: "too_long", apiKey: "sk_" + strings.Repeat("a", 60)},
		{name: "bad_characters", apiKey: "sk_abcdefgh-ijklmnop"},
		{name: "empty", apiKey: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidAPIKeyFormat(tt.apiKey))
		})
	}
}

func TestCreateDisplayPrefix(t *testing.T) {
	assert.Equal(t, "sk_abcdefgh...", CreateDisplayPrefix("sk_abcdefghijklmnop"))
	assert.Equal(t, "invalid_key", CreateDisplayPrefix("not-a-key"))
}

func TestKeyRing(t *testing.T) {
	first, err := GenerateAPIKey()
	require.NoError(t, err)
	second, err := GenerateAPIKey()
	require.NoError(t, err)

	ring := NewKeyRing(first.Hash, second.Hash)
	assert.Equal(t, 2, ring.Len())
	assert.True(t, ring.Verify(first.Key))
	assert.True(t, ring.Verify(second.Key))
	assert.True(t, ring.Verify(first.Key), "verified keys stay valid")
	assert.False(t, ring.Verify("sk_"+strings.Repeat("z", 32)))
	assert.False(t, ring.Verify(""))

	empty := NewKeyRing()
	assert.False(t, empty.Verify(first.Key))
}

func TestKeyRingConcurrentVerify(t *testing.T) {
	generated, err := GenerateAPIKey()
	require.NoError(t, err)
	ring := NewKeyRing(generated.Hash)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, ring.Verify(generated.Key))
		}()
	}
	wg.Wait()
}
