package models

type GeneratedEmail struct {
	BaseModel

	SignalID uint   `gorm:"not null;index" json:"signal_id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	Subject  string `gorm:"not null" json:"subject"`
	Body     string `gorm:"not null" json:"body"`
	Tone     string `gorm:"not null" json:"tone"`

	// Relationships
	Signal Signal `gorm:"foreignKey:SignalID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
