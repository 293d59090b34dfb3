package events

import (
	"context"
	"time"
)

const (
	TypeBooked      = "appointment.booked"
	TypeCancelled   = "appointment.cancelled"
	TypeStatus      = "appointment.status"
	TypeRescheduled = "appointment.rescheduled"
	TypeLocked      = "slot.locked"
	TypeUnlocked    = "slot.unlocked"
	TypeDeleted     = "appointment.deleted"
)

// Event is one change on the appointment calendar, pushed to the admin
// dashboard.
type Event struct {
	Type          string    `json:"type"`
	AppointmentID uint      `json:"appointmentId"`
	BarberID      uint      `json:"barberId"`
	Status        string    `json:"status"`
	Date          string    `json:"date"`
	StartTime     string    `json:"startTime"`
	At            time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Feed publishes events and fans them out to live subscribers.
type Feed interface {
	Publisher
	Subscribe() (<-chan Event, func())
}
