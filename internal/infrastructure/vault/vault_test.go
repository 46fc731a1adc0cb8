package vault

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharos/internal/shared/config"
	"pharos/internal/shared/errors"
)

func testVault(t *testing.T) *FieldVault {
	t.Helper()
	v, err := New(&config.VaultConfig{
		MasterKey: strings.Repeat("ab", 32),
	})
	require.NoError(t, err)
	return v
}

func TestNew_KeyNotConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.VaultConfig
	}{
		{"nil config", nil},
		{"empty key", &config.VaultConfig{MasterKey: ""}},
		{"not hex", &config.VaultConfig{MasterKey: "zz" + strings.Repeat("ab", 31)}},
		{"wrong length", &config.VaultConfig{MasterKey: "abcd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(tt.cfg)
			assert.Nil(t, v)
			require.Error(t, err)
			appErr := errors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, errors.ErrorTypeKeyNotConfigured, appErr.Type)
		})
	}
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	v := testVault(t)

	values := []string{
		"Marie Curie",
		"marie.curie@clinic.example",
		"+33 1 23 45 67 89",
		"",
		"Ünïcode Nämé",
	}

	for _, value := range values {
		ciphertext, err := v.Encrypt(value)
		require.NoError(t, err)
		assert.NotEqual(t, value, ciphertext)

		plaintext, err := v.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, value, plaintext)
	}
}

func TestEncrypt_NonDeterministicCiphertext(t *testing.T) {
	v := testVault(t)

	first, err := v.Encrypt("a@x.com")
	require.NoError(t, err)
	second, err := v.Encrypt("a@x.com")
	require.NoError(t, err)

	// Random nonce per call: equal plaintexts must not produce equal blobs.
	assert.NotEqual(t, first, second)
}

func TestDecrypt_Failures(t *testing.T) {
	v := testVault(t)

	t.Run("not base64", func(t *testing.T) {
		_, err := v.Decrypt("!!!not-base64!!!")
		assert.True(t, errors.IsDecryptionFailedError(err))
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := v.Decrypt(base64.StdEncoding.EncodeToString([]byte("short")))
		assert.True(t, errors.IsDecryptionFailedError(err))
	})

	t.Run("corrupted", func(t *testing.T) {
		ciphertext, err := v.Encrypt("a@x.com")
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(ciphertext)
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0xff

		_, err = v.Decrypt(base64.StdEncoding.EncodeToString(raw))
		assert.True(t, errors.IsDecryptionFailedError(err))
	})

	t.Run("key mismatch", func(t *testing.T) {
		other, err := New(&config.VaultConfig{MasterKey: strings.Repeat("cd", 32)})
		require.NoError(t, err)

		ciphertext, err := v.Encrypt("a@x.com")
		require.NoError(t, err)

		_, err = other.Decrypt(ciphertext)
		assert.True(t, errors.IsDecryptionFailedError(err))
	})
}

func TestIndexToken_Properties(t *testing.T) {
	v := testVault(t)

	t.Run("stable", func(t *testing.T) {
		assert.Equal(t, v.IndexToken("a@x.com"), v.IndexToken("a@x.com"))
	})

	t.Run("normalization", func(t *testing.T) {
		assert.Equal(t, v.IndexToken("A@X.COM"), v.IndexToken("a@x.com"))
		assert.Equal(t, v.IndexToken("  a@x.com  "), v.IndexToken("a@x.com"))
	})

	t.Run("distinct inputs distinct tokens", func(t *testing.T) {
		assert.NotEqual(t, v.IndexToken("a@x.com"), v.IndexToken("b@x.com"))
	})

	t.Run("not reversible by shape", func(t *testing.T) {
		token := v.IndexToken("a@x.com")
		_, err := hex.DecodeString(token)
		assert.NoError(t, err)
		assert.Len(t, token, 64)
	})

	t.Run("key-dependent", func(t *testing.T) {
		other, err := New(&config.VaultConfig{MasterKey: strings.Repeat("cd", 32)})
		require.NoError(t, err)
		assert.NotEqual(t, v.IndexToken("a@x.com"), other.IndexToken("a@x.com"))
	})
}
