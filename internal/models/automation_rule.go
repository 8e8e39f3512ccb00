package models

import (
	"encoding/json"

	"github.com/signalhound-dev/signalhound/internal/types"
	"gorm.io/datatypes"
)

type AutomationRule struct {
	BaseModel

	UserID            uint           `gorm:"not null;index" json:"user_id"`
	Name              string         `gorm:"not null" json:"name"`
	Description       string         `json:"description"`
	IsActive          bool           `gorm:"default:true" json:"is_active"`
	TriggerConditions datatypes.JSON `gorm:"type:jsonb" json:"trigger_conditions"`
	Actions           datatypes.JSON `gorm:"type:jsonb" json:"actions"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// Conditions decodes the stored trigger conditions. An empty column means the
// rule matches every signal.
func (r *AutomationRule) Conditions() (types.TriggerConditions, error) {
	var conditions types.TriggerConditions

	if len(r.TriggerConditions) == 0 {
		return conditions, nil
	}

	err := json.Unmarshal(r.TriggerConditions, &conditions)
	return conditions, err
}

// ActionList decodes the stored actions in their configured order.
func (r *AutomationRule) ActionList() ([]types.Action, error) {
	if len(r.Actions) == 0 {
		return nil, nil
	}

	var actions []types.Action
	err := json.Unmarshal(r.Actions, &actions)
	return actions, err
}
