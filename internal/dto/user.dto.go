package dto

import (
	"encoding/json"
	"strings"

	"github.com/BruksfildServices01/barber-loyalty/internal/domain/loyalty"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

// RoleList accepts "role": "admin" as well as "role": ["admin"].
type RoleList []string

func (r *RoleList) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if strings.TrimSpace(one) == "" {
			*r = nil
		} else {
			*r = RoleList{one}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*r = many
	return nil
}

type LoyaltyDTO struct {
	TotalAppointments int `json:"totalAppointments"`
	AvailableRewards  int `json:"availableRewards"`
	UsedRewards       int `json:"usedRewards"`
	UntilNextReward   int `json:"untilNextReward"`
}

type UserDTO struct {
	ID        uint     `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	FirstName string   `json:"firstName"`
	Phone     string   `json:"phone"`
	Role      string   `json:"role"`
	Roles     []string `json:"roles"`

	LoyaltyDTO
}

func NewUser(u *models.User, p loyalty.Policy) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		FirstName: u.FirstName,
		Phone:     u.Phone,
		Role:      u.Role,
		Roles:     []string{"ROLE_" + u.Role},
		LoyaltyDTO: LoyaltyDTO{
			TotalAppointments: u.TotalAppointments,
			AvailableRewards:  u.AvailableRewards,
			UsedRewards:       u.UsedRewards,
			UntilNextReward:   p.UntilNext(u),
		},
	}
}

// SessionDTO is the sign-in response.
type SessionDTO struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	ExpiresAt int64  `json:"expiresAt"`

	UserDTO
}
