// Package valueobjects holds value types for the subject aggregate.
package valueobjects

// EncryptedField is one PII attribute at rest: the sealed value and its
// equality-search token. The plaintext never appears on the aggregate; it
// exists only transiently in the application layer around vault calls.
type EncryptedField struct {
	Ciphertext string
	IndexToken string
}

// IsZero reports whether the field holds no value.
func (f EncryptedField) IsZero() bool {
	return f.Ciphertext == "" && f.IndexToken == ""
}
