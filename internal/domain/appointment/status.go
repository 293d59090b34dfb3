package appointment

import (
	"strings"

	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusBooked    Status = "BOOKED"
	StatusModified  Status = "MODIFIED"
	StatusBlocked   Status = "BLOCKED"
	StatusDone      Status = "DONE"
	StatusCancelled Status = "CANCELLED"
)

// ActiveStatuses occupy their slot.
var ActiveStatuses = []Status{StatusBooked, StatusModified, StatusBlocked}

func (s Status) IsActive() bool {
	return s == StatusBooked || s == StatusModified || s == StatusBlocked
}

func (s Status) IsKnown() bool {
	return s.IsActive() || s == StatusDone || s == StatusCancelled
}

func ActiveStatusStrings() []string {
	out := make([]string, 0, len(ActiveStatuses))
	for _, s := range ActiveStatuses {
		out = append(out, string(s))
	}
	return out
}

// ParseTarget reads a status an admin may move an appointment to.
func ParseTarget(raw string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusBooked, StatusModified, StatusDone, StatusCancelled:
		return s, nil
	default:
		return "", httperr.ErrBusiness("invalid_status")
	}
}

// ===============================
// Validations
// ===============================

// CanCancel: cancelled is terminal and only admins may cancel a completed
// appointment.
func CanCancel(current Status, isAdmin bool) error {
	switch current {
	case StatusCancelled:
		return httperr.ErrBusiness("invalid_state")
	case StatusDone:
		if !isAdmin {
			return httperr.ErrBusiness("forbidden")
		}
	}
	return nil
}

func CanTransition(from, to Status) error {
	if from == StatusCancelled {
		return httperr.ErrBusiness("invalid_state")
	}
	if from == StatusBlocked && to != StatusCancelled {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanReschedule allows moving only upcoming customer bookings.
func CanReschedule(current Status) error {
	if current != StatusBooked && current != StatusModified {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func InitialStatus() Status {
	return StatusBooked
}
