package models

import "gorm.io/datatypes"

// AuditEntryModel persists audit entries. Rows are append-only: no
// updated_at, no update path, no delete path. Snapshots are redacted before
// they reach this layer; decrypted PII never lands in these columns.
type AuditEntryModel struct {
	ID            uint           `gorm:"primaryKey"`
	ActorID       *uint          `gorm:"index"`
	Action        string         `gorm:"size:30;not null;index"`
	EntityType    string         `gorm:"size:50;not null;index:idx_audit_entity"`
	EntityID      string         `gorm:"size:100;not null;index:idx_audit_entity"`
	PreviousState datatypes.JSON `gorm:"type:json"`
	NewState      datatypes.JSON `gorm:"type:json"`
	OriginAddress string         `gorm:"size:64"`
	ClientAgent   string         `gorm:"size:255"`
	Metadata      datatypes.JSON `gorm:"type:json"`
	CreatedAt     int64          `gorm:"autoCreateTime:milli;not null;index"`
}

func (AuditEntryModel) TableName() string {
	return "audit_entries"
}
