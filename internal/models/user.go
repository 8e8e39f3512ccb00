package models

import (
	"encoding/json"

	"github.com/signalhound-dev/signalhound/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`

	// Slack alert delivery, configured per user
	SlackAccessToken          string
	SlackChannelID            string
	SlackNotificationsEnabled bool `gorm:"default:false"`

	NotificationPreferences datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Signals         []Signal         `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AutomationRules []AutomationRule `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	CRMIntegrations []CRMIntegration `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Notifications   []Notification   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// Preferences decodes the stored notification preferences, falling back to the
// defaults when nothing is stored or the column is unreadable.
func (u *User) Preferences() types.NotificationPreferences {
	if len(u.NotificationPreferences) == 0 {
		return types.DefaultNotificationPreferences()
	}

	var prefs types.NotificationPreferences
	if err := json.Unmarshal(u.NotificationPreferences, &prefs); err != nil {
		return types.DefaultNotificationPreferences()
	}

	if prefs.PriorityThreshold == "" {
		prefs.PriorityThreshold = types.PriorityHigh
	}

	if len(prefs.SignalTypes) == 0 {
		prefs.SignalTypes = append(prefs.SignalTypes, types.SignalTypes...)
	}

	return prefs
}
