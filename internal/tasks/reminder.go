package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TypeAppointmentReminder = "appointment:reminder"

type ReminderPayload struct {
	AppointmentID uint      `json:"appointmentId"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	BarberName    string    `json:"barberName"`
	Services      []string  `json:"services"`
	StartAt       time.Time `json:"startAt"`
}

// ReminderTaskID is stable per appointment so a reminder can be deleted.
func ReminderTaskID(appointmentID uint) string {
	return fmt.Sprintf("reminder:%d", appointmentID)
}

func NewReminderTask(payload ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeAppointmentReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(ReminderTaskID(payload.AppointmentID)),
		asynq.MaxRetry(3),
	}

	return task, opts, nil
}

// ReminderTime is lead before start, or now when that moment has passed.
// No reminder is due for an appointment that already started.
func ReminderTime(start time.Time, lead time.Duration, now time.Time) (time.Time, bool) {
	if !start.After(now) {
		return time.Time{}, false
	}
	fireAt := start.Add(-lead)
	if fireAt.Before(now) {
		return now, true
	}
	return fireAt, true
}
