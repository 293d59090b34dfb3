package models

import "time"

const (
	RoleAdmin  = "ADMIN"
	RoleClient = "CLIENT"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Empty for guests created at booking time.
	Username     string `gorm:"size:50;uniqueIndex:idx_users_username,where:username <> ''" json:"username"`
	PasswordHash string `gorm:"size:255" json:"-"`

	Name      string `gorm:"size:100" json:"name"`
	FirstName string `gorm:"size:100" json:"firstName"`
	Email     string `gorm:"size:100;index" json:"email"`
	Phone     string `gorm:"size:20;index" json:"phone"`
	Role      string `gorm:"size:20;default:'CLIENT'" json:"role"`

	TotalAppointments int `gorm:"not null;default:0" json:"totalAppointments"`
	AvailableRewards  int `gorm:"not null;default:0" json:"availableRewards"`
	UsedRewards       int `gorm:"not null;default:0" json:"usedRewards"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsGuest() bool {
	return u.PasswordHash == ""
}
