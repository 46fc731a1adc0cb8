package models

// InteractionModel persists channel engagements with subjects.
type InteractionModel struct {
	ID         uint   `gorm:"primaryKey"`
	SubjectID  uint   `gorm:"not null;index"`
	Channel    string `gorm:"size:30;not null;index"`
	Status     string `gorm:"size:20;not null"`
	OccurredAt int64  `gorm:"not null;index"`
	Notes      string `gorm:"type:text"`
	RecordedBy *uint
	CreatedAt  int64 `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt  int64 `gorm:"autoUpdateTime:milli;not null"`
}

func (InteractionModel) TableName() string {
	return "interactions"
}
