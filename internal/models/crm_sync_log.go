package models

import "time"

// CRMSyncLog is the durable audit record for every sync attempt.
type CRMSyncLog struct {
	BaseModel

	IntegrationID uint      `gorm:"not null;index" json:"integration_id"`
	SignalID      uint      `gorm:"not null;index" json:"signal_id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Provider      string    `gorm:"not null" json:"provider"`
	CorrelationID string    `gorm:"index" json:"correlation_id"`
	Status        string    `gorm:"not null" json:"status"` // "success", "failed"
	CRMCompanyID  string    `json:"crm_company_id,omitempty"`
	CRMNoteID     string    `json:"crm_note_id,omitempty"`
	Error         string    `json:"error,omitempty"`
	SyncedAt      time.Time `gorm:"not null" json:"synced_at"`

	// Relationships
	Integration CRMIntegration `gorm:"foreignKey:IntegrationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Signal      Signal         `gorm:"foreignKey:SignalID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
