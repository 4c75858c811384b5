package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Format(t *testing.T) {
	stored, err := HashPassword("password123")
	require.NoError(t, err)

	salt, hash, ok := strings.Cut(stored, ":")
	require.True(t, ok)
	assert.Len(t, salt, 32)  // 16 bytes hex
	assert.Len(t, hash, 128) // 64 bytes hex
	assert.NotContains(t, stored, "password123")
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPassword(t *testing.T) {
	passwords := []string{"password123", "", "p@$$w0rd with spaces", "日本語パスワード"}
	for _, p := range passwords {
		stored, err := HashPassword(p)
		require.NoError(t, err)
		assert.True(t, VerifyPassword(p, stored), "round trip for %q", p)
		assert.False(t, VerifyPassword(p+"x", stored))
	}
}

func TestVerifyPassword_MalformedStored(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{name: "empty", stored: ""},
		{name: "no_separator", stored: "deadbeef"},
		{name: "missing_hash", stored: "deadbeef:"},
		{name: "missing_salt", stored: ":deadbeef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, VerifyPassword("anything", tt.stored))
		})
	}
}
