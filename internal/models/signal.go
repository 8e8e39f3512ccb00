package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type Signal struct {
	BaseModel

	UserID        uint           `gorm:"not null;index" json:"user_id"`
	CompanyName   string         `gorm:"not null" json:"company_name"`
	CompanyDomain string         `json:"company_domain"`
	SignalType    string         `gorm:"not null;index" json:"signal_type"`
	Priority      string         `gorm:"not null;index" json:"priority"`
	Title         string         `gorm:"not null" json:"title"`
	Summary       string         `json:"summary"`
	SourceName    string         `json:"source_name"`
	SourceURL     string         `json:"source_url"`
	Status        string         `gorm:"not null;default:new" json:"status"`
	DetectedAt    time.Time      `gorm:"not null" json:"detected_at"`
	Metadata      datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// MetadataMap decodes the open metadata column. All keys are optional
// (funding_amount, job_titles, location, industry).
func (s *Signal) MetadataMap() map[string]any {
	if len(s.Metadata) == 0 {
		return nil
	}

	var meta map[string]any
	if err := json.Unmarshal(s.Metadata, &meta); err != nil {
		return nil
	}

	return meta
}
