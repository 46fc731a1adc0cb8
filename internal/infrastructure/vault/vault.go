// Package vault encrypts individual PII values at rest and produces
// deterministic, non-reversible index tokens for equality lookup without
// decryption.
//
// Each value is sealed with AES-256-GCM under a random per-field nonce; the
// nonce is stored alongside the ciphertext. The index token is an HMAC-SHA256
// digest of the normalized plaintext under a separate key, so stored tokens
// support exact-match search but cannot be reversed or cross-checked against
// the cipher key. Both keys are derived from one configured master key via
// HKDF and are read-only for the life of the process.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/text/unicode/norm"

	"pharos/internal/shared/config"
	"pharos/internal/shared/errors"
)

const masterKeyBytes = 32

// FieldVault seals and opens single PII field values.
type FieldVault struct {
	aead     cipher.AEAD
	indexKey []byte
}

// New derives the cipher and index keys from the configured master key and
// returns a ready vault. Returns a key_not_configured error when the master
// key is absent or malformed; callers treat that as fatal at startup.
func New(cfg *config.VaultConfig) (*FieldVault, error) {
	if cfg == nil || cfg.MasterKey == "" {
		return nil, errors.NewKeyNotConfiguredError("vault master key is not configured")
	}

	masterKey, err := hex.DecodeString(cfg.MasterKey)
	if err != nil {
		return nil, errors.NewKeyNotConfiguredError("vault master key is not valid hex")
	}
	if len(masterKey) != masterKeyBytes {
		return nil, errors.NewKeyNotConfiguredError("vault master key must be 32 bytes")
	}

	cipherKey, err := deriveKey(masterKey, "pharos/vault/cipher")
	if err != nil {
		return nil, errors.NewKeyNotConfiguredError("failed to derive cipher key")
	}
	indexKey, err := deriveKey(masterKey, "pharos/vault/index")
	if err != nil {
		return nil, errors.NewKeyNotConfiguredError("failed to derive index key")
	}

	block, err := aes.NewCipher(cipherKey)
	if err != nil {
		return nil, errors.NewKeyNotConfiguredError("failed to initialize cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.NewKeyNotConfiguredError("failed to initialize GCM")
	}

	return &FieldVault{
		aead:     aead,
		indexKey: indexKey,
	}, nil
}

func deriveKey(masterKey []byte, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, masterKey, nil, []byte(info))
	key := make([]byte, masterKeyBytes)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Encrypt seals a plaintext value with a fresh random nonce. The nonce is
// prepended to the ciphertext and the whole blob is base64-encoded.
func (v *FieldVault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.NewInternalError("failed to generate nonce")
	}

	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Corrupted input or a key
// mismatch surfaces as decryption_failed; it is never defaulted to empty.
func (v *FieldVault) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.NewDecryptionFailedError("ciphertext is not valid base64")
	}

	nonceSize := v.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", errors.NewDecryptionFailedError("ciphertext is truncated")
	}

	nonce, sealed := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := v.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.NewDecryptionFailedError("failed to open ciphertext")
	}

	return string(plaintext), nil
}

// IndexToken computes the keyed equality-search digest of a value. The same
// normalized plaintext always yields the same token; the token cannot be
// reversed. Partial and fuzzy search are not supported by construction.
func (v *FieldVault) IndexToken(plaintext string) string {
	mac := hmac.New(sha256.New, v.indexKey)
	mac.Write([]byte(Normalize(plaintext)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Normalize canonicalizes a PII value for index tokenization: NFKC unicode
// normalization, trimmed, lower-cased.
func Normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(value)))
}
