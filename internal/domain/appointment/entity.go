package appointment

import (
	"time"

	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Cancel(ap *models.Appointment, now time.Time) {
	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
}

func Complete(ap *models.Appointment, now time.Time) {
	ap.Status = string(StatusDone)
	ap.CompletedAt = &now
}

// Reopen moves a completed appointment back to an upcoming status.
func Reopen(ap *models.Appointment, to Status) {
	ap.Status = string(to)
	ap.CompletedAt = nil
}

// Reschedule builds the replacement booking; the caller cancels old.
func Reschedule(old *models.Appointment, start, end time.Time) *models.Appointment {
	return &models.Appointment{
		UserID:        old.UserID,
		BarberID:      old.BarberID,
		Services:      old.Services,
		StartTime:     start,
		EndTime:       end,
		Status:        string(StatusModified),
		RewardApplied: old.RewardApplied,
		TotalPrice:    old.TotalPrice,
		Notes:         old.Notes,
	}
}

// IsOwnedBy reports whether userID owns ap.
func IsOwnedBy(ap *models.Appointment, userID uint) bool {
	return ap.UserID != nil && *ap.UserID == userID
}
