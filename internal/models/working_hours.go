package models

import "time"

type WorkingHours struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BarberID uint `gorm:"index" json:"barberId"`

	Weekday int `json:"weekday"`

	StartTime  string `gorm:"size:5" json:"startTime"`
	EndTime    string `gorm:"size:5" json:"endTime"`
	LunchStart string `gorm:"size:5" json:"lunchStart"`
	LunchEnd   string `gorm:"size:5" json:"lunchEnd"`
	Active     bool   `json:"active"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BlockedSlot closes a whole day when StartTime is empty, or a single
// slot when EndTime is empty. A nil BarberID applies to every barber.
type BlockedSlot struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Day       string `gorm:"size:10;index;not null" json:"date"`
	StartTime string `gorm:"size:5" json:"startTime"`
	EndTime   string `gorm:"size:5" json:"endTime"`
	BarberID  *uint  `json:"barberId"`
	Reason    string `gorm:"size:255" json:"reason"`

	CreatedAt time.Time `json:"createdAt"`
}
