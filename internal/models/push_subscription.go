package models

import "time"

// PushSubscription is a browser endpoint registered for web push.
type PushSubscription struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Endpoint string `gorm:"size:500;not null;uniqueIndex" json:"endpoint"`
	P256dh   string `gorm:"size:255;not null" json:"p256dh"`
	Auth     string `gorm:"size:255;not null" json:"auth"`

	UserID   uint  `gorm:"not null;index" json:"userId"`
	User     *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	BarberID *uint `json:"barberId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
