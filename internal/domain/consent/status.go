package consent

// Status is the consent state asserted by one record. StatusNone is never
// stored; it is the resolved state when no record exists for a pair.
type Status string

const (
	StatusNone    Status = "none"
	StatusPending Status = "pending"
	StatusGranted Status = "granted"
	StatusRevoked Status = "revoked"
	StatusExpired Status = "expired"
)

func (s Status) String() string {
	return string(s)
}

// IsValid reports whether the status may be stored on a record.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusGranted, StatusRevoked, StatusExpired:
		return true
	}
	return false
}
