package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
)

const queueName = "default"

type Scheduler interface {
	ScheduleReminder(ctx context.Context, payload ReminderPayload) error
	CancelReminder(ctx context.Context, appointmentID uint) error
}

type AsynqScheduler struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	lead      time.Duration
	now       func() time.Time
}

func NewAsynqScheduler(opt asynq.RedisConnOpt, lead time.Duration) *AsynqScheduler {
	return &AsynqScheduler{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		lead:      lead,
		now:       time.Now,
	}
}

func (s *AsynqScheduler) ScheduleReminder(ctx context.Context, payload ReminderPayload) error {
	if payload.Email == "" {
		return nil
	}

	fireAt, ok := ReminderTime(payload.StartAt, s.lead, s.now())
	if !ok {
		return nil
	}

	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return err
	}

	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return err
	}
	return nil
}

func (s *AsynqScheduler) CancelReminder(_ context.Context, appointmentID uint) error {
	err := s.inspector.DeleteTask(queueName, ReminderTaskID(appointmentID))
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return err
}

func (s *AsynqScheduler) Close() error {
	s.inspector.Close()
	return s.client.Close()
}

// NoopScheduler is used when no Redis is configured.
type NoopScheduler struct{}

func (NoopScheduler) ScheduleReminder(context.Context, ReminderPayload) error { return nil }
func (NoopScheduler) CancelReminder(context.Context, uint) error              { return nil }

var (
	_ Scheduler = (*AsynqScheduler)(nil)
	_ Scheduler = NoopScheduler{}
)
