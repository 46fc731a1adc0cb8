package models

// ConsentRecordModel persists consent assertions. Rows are append-only:
// there is no updated_at and no delete path; supersession happens by
// inserting a newer row for the same (subject, channel) pair.
type ConsentRecordModel struct {
	ID          uint   `gorm:"primaryKey"`
	SubjectID   uint   `gorm:"not null;index:idx_consent_subject_channel"`
	Channel     string `gorm:"size:30;not null;index:idx_consent_subject_channel"`
	Status      string `gorm:"size:20;not null"`
	GrantedAt   *int64
	RevokedAt   *int64
	ExpiresAt   *int64
	Source      string `gorm:"size:100;not null"`
	EvidenceRef string `gorm:"size:100"`
	RecordedBy  *uint
	Notes       string `gorm:"type:text"`
	CreatedAt   int64  `gorm:"autoCreateTime:milli;not null;index"`
}

func (ConsentRecordModel) TableName() string {
	return "consent_records"
}
