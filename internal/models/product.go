package models

import "time"

// Product is a retail item sold at the counter, not bookable.
type Product struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string  `gorm:"size:150;not null" json:"name"`
	Description string  `gorm:"size:500" json:"description"`
	Price       float64 `json:"price"`
	Image       string  `gorm:"size:255" json:"image"`
	Active      bool    `gorm:"default:true" json:"active"`

	Category string `gorm:"size:50" json:"category"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
