package dto

import (
	"time"

	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

type ServiceRef struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type BarberRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CustomerRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Guest bool   `json:"guest"`
}

// AppointmentDTO shows the appointment on the shop's wall clock.
type AppointmentDTO struct {
	ID        uint   `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Status    string `json:"status"`

	BarberID uint         `json:"barberId"`
	Barber   BarberRef    `json:"barber"`
	Services []ServiceRef `json:"services"`

	UserID    *uint        `json:"userId"`
	User      *CustomerRef `json:"user,omitempty"`
	UserName  string       `json:"userName,omitempty"`
	UserPhone string       `json:"userPhone,omitempty"`
	UserEmail string       `json:"userEmail,omitempty"`

	RewardApplied bool    `json:"rewardApplied"`
	TotalPrice    float64 `json:"totalPrice"`
	AdminViewed   bool    `json:"adminViewed"`
	Notes         string  `json:"notes,omitempty"`

	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func NewAppointment(ap *models.Appointment, loc *time.Location) AppointmentDTO {
	start := ap.StartTime.In(loc)

	out := AppointmentDTO{
		ID:            ap.ID,
		Date:          start.Format(timezone.DateLayout),
		StartTime:     start.Format(timezone.ClockLayout),
		EndTime:       ap.EndTime.In(loc).Format(timezone.ClockLayout),
		Status:        ap.Status,
		BarberID:      ap.BarberID,
		Barber:        BarberRef{ID: ap.Barber.ID, Name: ap.Barber.Name},
		Services:      make([]ServiceRef, 0, len(ap.Services)),
		UserID:        ap.UserID,
		RewardApplied: ap.RewardApplied,
		TotalPrice:    ap.TotalPrice,
		AdminViewed:   ap.AdminViewed,
		Notes:         ap.Notes,
		CancelledAt:   ap.CancelledAt,
		CompletedAt:   ap.CompletedAt,
		CreatedAt:     ap.CreatedAt,
	}

	for _, s := range ap.Services {
		out.Services = append(out.Services, ServiceRef{ID: s.ID, Name: s.Name, Price: s.Price})
	}

	if u := ap.User; u != nil {
		out.User = &CustomerRef{
			ID:    u.ID,
			Name:  u.Name,
			Phone: u.Phone,
			Email: u.Email,
			Guest: u.IsGuest(),
		}
		out.UserName = u.Name
		out.UserPhone = u.Phone
		out.UserEmail = u.Email
	}

	return out
}

func NewAppointments(list []models.Appointment, loc *time.Location) []AppointmentDTO {
	out := make([]AppointmentDTO, 0, len(list))
	for i := range list {
		out = append(out, NewAppointment(&list[i], loc))
	}
	return out
}
