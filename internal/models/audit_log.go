package models

import "time"

type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID *uint  `gorm:"index" json:"userId"`
	Action string `gorm:"size:50;not null;index" json:"action"`

	Entity   string `gorm:"size:50" json:"entity"`
	EntityID *uint  `json:"entityId"`
	Metadata string `gorm:"type:text" json:"metadata"`

	CreatedAt time.Time `json:"createdAt"`
}

type AdminMessage struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Content    string `gorm:"type:text;not null" json:"content"`
	SenderID   uint   `json:"senderId"`
	SenderName string `gorm:"size:100" json:"senderName"`

	CreatedAt time.Time `json:"timestamp"`
}
