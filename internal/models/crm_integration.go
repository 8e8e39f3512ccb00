package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

type CRMIntegration struct {
	BaseModel

	UserID       uint   `gorm:"not null;index" json:"user_id"`
	Provider     string `gorm:"not null;index" json:"provider"`
	AccessToken  string `gorm:"not null" json:"-"`
	RefreshToken string `json:"-"`

	// Provider-specific connection metadata
	PortalID    string `json:"portal_id,omitempty"`
	InstanceURL string `json:"instance_url,omitempty"`
	AccountID   string `json:"account_id,omitempty"`

	AutoSyncEnabled   bool           `gorm:"default:true" json:"auto_sync_enabled"`
	SyncOnSignalTypes datatypes.JSON `gorm:"type:jsonb" json:"sync_on_signal_types"`
	SyncOnPriorities  datatypes.JSON `gorm:"type:jsonb" json:"sync_on_priorities"`
	FieldMapping      datatypes.JSON `gorm:"type:jsonb" json:"field_mapping"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// SignalTypeFilter returns the sync allow-list; empty means all types.
func (i *CRMIntegration) SignalTypeFilter() []string {
	return decodeStringList(i.SyncOnSignalTypes)
}

// PriorityFilter returns the sync allow-list; empty means all priorities.
func (i *CRMIntegration) PriorityFilter() []string {
	return decodeStringList(i.SyncOnPriorities)
}

// FieldMappingMap decodes the provider field translation table.
func (i *CRMIntegration) FieldMappingMap() map[string]string {
	if len(i.FieldMapping) == 0 {
		return nil
	}

	var mapping map[string]string
	if err := json.Unmarshal(i.FieldMapping, &mapping); err != nil {
		return nil
	}

	return mapping
}

func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}

	return list
}
