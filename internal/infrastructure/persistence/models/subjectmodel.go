package models

import "gorm.io/datatypes"

// SubjectModel persists subjects. PII columns hold only the sealed value and
// its index token; the token columns are indexed so equality search never
// decrypts. deleted_at implements reversible soft delete.
type SubjectModel struct {
	ID         uint    `gorm:"primaryKey"`
	SID        string  `gorm:"uniqueIndex;size:50;not null"`
	ExternalID *string `gorm:"uniqueIndex;size:100"`

	FirstNameEnc   *string `gorm:"type:text"`
	FirstNameToken *string `gorm:"size:64;index"`
	LastNameEnc    *string `gorm:"type:text"`
	LastNameToken  *string `gorm:"size:64;index"`
	EmailEnc       *string `gorm:"type:text"`
	EmailToken     *string `gorm:"size:64;index"`
	PhoneEnc       *string `gorm:"type:text"`
	PhoneToken     *string `gorm:"size:64;index"`

	Specialty        string         `gorm:"size:100;index"`
	InfluenceTier    string         `gorm:"size:20;index"`
	TerritoryID      *uint          `gorm:"index"`
	InstitutionID    *uint          `gorm:"index"`
	YearsOfPractice  int            `gorm:"not null;default:0"`
	Languages        datatypes.JSON `gorm:"type:json"`
	TherapeuticAreas datatypes.JSON `gorm:"type:json"`
	Tags             datatypes.JSON `gorm:"type:json"`
	Metadata         datatypes.JSON `gorm:"type:json"`

	IsActive     bool `gorm:"not null;default:true;index"`
	IsAnonymized bool `gorm:"not null;default:false"`

	Version   int    `gorm:"not null;default:1"`
	CreatedAt int64  `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt int64  `gorm:"autoUpdateTime:milli;not null"`
	DeletedAt *int64 `gorm:"index"`

	// Note: No foreign key constraints or associations.
	// All relationships are managed by application business logic.
}

func (SubjectModel) TableName() string {
	return "subjects"
}
