package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Nil for admin slot locks.
	UserID *uint `gorm:"index" json:"userId"`
	User   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"user,omitempty"`

	BarberID uint   `gorm:"index" json:"barberId"`
	Barber   Barber `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"barber"`

	Services []Service `gorm:"many2many:appointment_services;" json:"services"`

	StartTime time.Time `gorm:"index" json:"startTime"`
	EndTime   time.Time `json:"endTime"`

	Status        string  `gorm:"size:20;default:'BOOKED';index" json:"status"`
	RewardApplied bool    `gorm:"not null;default:false" json:"rewardApplied"`
	TotalPrice    float64 `json:"totalPrice"`
	AdminViewed   bool    `gorm:"not null;default:false" json:"adminViewed"`

	Notes       string     `gorm:"size:255" json:"notes"`
	CancelledAt *time.Time `json:"cancelledAt"`
	CompletedAt *time.Time `json:"completedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Appointment) ServiceIDs() []uint {
	ids := make([]uint, 0, len(a.Services))
	for _, s := range a.Services {
		ids = append(ids, s.ID)
	}
	return ids
}
