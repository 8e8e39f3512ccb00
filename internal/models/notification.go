package models

import (
	"time"

	"gorm.io/gorm"
)

type Notification struct {
	gorm.Model

	UserID   uint   `gorm:"not null;index"`
	SignalID uint   `gorm:"not null;index"`
	Channel  string `gorm:"not null"`
	Status   string `gorm:"not null"`
	Message  string
	SentAt   *time.Time

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Signal Signal `gorm:"foreignKey:SignalID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
