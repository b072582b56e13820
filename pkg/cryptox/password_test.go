package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Set up a temporary pepper file for testing
	tmpDir := os.TempDir()
	pepperPath := filepath.Join(tmpDir, "test-pepper")
	SetPepperPath(pepperPath)

	// Clean up pepper file before and after tests
	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.NotEmpty(t, hash)

			// Verify PHC format
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"),
				"hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.Contains(t, parts[3], "m=", "should contain memory parameter")
			require.Contains(t, parts[3], "t=", "should contain iterations parameter")
			require.Contains(t, parts[3], "p=", "should contain parallelism parameter")
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")

			require.NoError(t, VerifyPassword(tt.password, hash))
		})
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h1, err := HashPassword("same password")
	require.NoError(t, err)
	h2, err := HashPassword("same password")
	require.NoError(t, err)
	require.NotEqual(t, h1, h2, "each hash gets a fresh salt")
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("the right password")
	require.NoError(t, err)

	t.Run("wrong password mismatches", func(t *testing.T) {
		require.ErrorIs(t, VerifyPassword("the wrong password", hash), ErrPasswordMismatch)
	})

	t.Run("malformed hashes are rejected", func(t *testing.T) {
		bad := []string{
			"",
			"notahash",
			"$argon2i$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
			"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
			"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
		}
		for _, h := range bad {
			err := VerifyPassword("anything", h)
			require.Error(t, err, h)
			require.NotErrorIs(t, err, ErrPasswordMismatch, h)
		}
	})
}

func TestGenerateTempPassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		pw, err := GenerateTempPassword()
		require.NoError(t, err)
		require.Len(t, pw, TempPasswordLength)
		require.False(t, seen[pw], "temp passwords must not repeat")
		seen[pw] = true

		// No lookalike characters that garble a password read out loud.
		require.NotContainsf(t, pw, "0", "password %q", pw)
		require.NotContainsf(t, pw, "O", "password %q", pw)
		require.NotContainsf(t, pw, "1", "password %q", pw)
		require.NotContainsf(t, pw, "l", "password %q", pw)
		require.NotContainsf(t, pw, "I", "password %q", pw)
	}
}
