// Package constants defines application-wide constant values.
package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderUserAgent     = "User-Agent"

	// Context keys
	ContextKeyActorID   = "actor_id"
	ContextKeyRequestID = "request_id"

	// Database table names
	TableSubjects       = "subjects"
	TableConsentRecords = "consent_records"
	TableAuditEntries   = "audit_entries"
	TableInteractions   = "interactions"

	// AnonymizedSentinel is the fixed plaintext every anonymized PII field is
	// re-encrypted from, so erased records are indistinguishable from one
	// another and unsearchable by former identity.
	AnonymizedSentinel = "ANONYMIZED"
)
