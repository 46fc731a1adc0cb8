// Package id generates short, URL-safe public identifiers.
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Base62 alphabet: 0-9, A-Z, a-z
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultLength is the default length for generated short IDs
	DefaultLength = 12
)

// Prefixes for different entity types (Stripe-style)
const (
	PrefixSubject  = "hcp"
	PrefixEvidence = "evd"
	PrefixReport   = "rpt"
)

// Generate creates a random short ID with the specified length using Base62
// encoding. The generated ID is cryptographically random and URL-safe.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(alphabet)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[num.Int64()]
	}

	return string(result), nil
}

// MustGenerate creates a random short ID and panics on error.
func MustGenerate(length int) string {
	id, err := Generate(length)
	if err != nil {
		panic(err)
	}
	return id
}

// GenerateWithPrefix creates a prefixed ID in the format "prefix_randomstring".
func GenerateWithPrefix(prefix string, length int) (string, error) {
	id, err := Generate(length)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, id), nil
}

// MustGenerateWithPrefix creates a prefixed ID and panics on error.
func MustGenerateWithPrefix(prefix string, length int) string {
	id, err := GenerateWithPrefix(prefix, length)
	if err != nil {
		panic(err)
	}
	return id
}

// NewSubjectID generates a public identifier for a subject record.
func NewSubjectID() (string, error) {
	return GenerateWithPrefix(PrefixSubject, DefaultLength)
}

// NewEvidenceID generates an identifier for a consent evidence reference.
func NewEvidenceID() (string, error) {
	return GenerateWithPrefix(PrefixEvidence, DefaultLength)
}

// NewReportID generates an identifier for a subject access report.
func NewReportID() (string, error) {
	return GenerateWithPrefix(PrefixReport, DefaultLength)
}

// ParsePrefixedID splits a prefixed ID into its prefix and short ID parts.
func ParsePrefixedID(prefixedID string) (prefix, shortID string, err error) {
	parts := strings.SplitN(prefixedID, "_", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid prefixed ID format: %s", prefixedID)
	}
	return parts[0], parts[1], nil
}

// ValidatePrefix verifies that a prefixed ID carries the expected prefix.
func ValidatePrefix(prefixedID, expectedPrefix string) error {
	prefix, _, err := ParsePrefixedID(prefixedID)
	if err != nil {
		return err
	}
	if prefix != expectedPrefix {
		return fmt.Errorf("expected prefix %q, got %q", expectedPrefix, prefix)
	}
	return nil
}

// FormatWithPrefix joins a prefix and short ID. Returns empty for empty shortID.
func FormatWithPrefix(prefix, shortID string) string {
	if shortID == "" {
		return ""
	}
	return prefix + "_" + shortID
}
