package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-loyalty/internal/mailer"
)

type ReminderHandler struct {
	mailer mailer.Sender
	loc    *time.Location
	log    *zap.Logger
}

func NewReminderHandler(sender mailer.Sender, loc *time.Location, log *zap.Logger) *ReminderHandler {
	return &ReminderHandler{mailer: sender, loc: loc, log: log}
}

func (h *ReminderHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p ReminderPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode reminder: %v: %w", err, asynq.SkipRetry)
	}

	subject, body := ReminderMessage(p, h.loc)
	if err := h.mailer.Send(ctx, p.Email, subject, body); err != nil {
		return fmt.Errorf("send reminder %d: %w", p.AppointmentID, err)
	}

	h.log.Info("reminder sent",
		zap.Uint("appointment_id", p.AppointmentID),
		zap.String("to", p.Email),
	)
	return nil
}

func ReminderMessage(p ReminderPayload, loc *time.Location) (string, string) {
	start := p.StartAt.In(loc)

	subject := fmt.Sprintf("Rappel: rendez-vous le %s à %s",
		start.Format("02/01/2006"), start.Format("15:04"))

	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour %s,\n\n", p.Name)
	fmt.Fprintf(&b, "Votre rendez-vous avec %s est prévu le %s à %s.\n",
		p.BarberName, start.Format("02/01/2006"), start.Format("15:04"))
	if len(p.Services) > 0 {
		fmt.Fprintf(&b, "Prestations: %s\n", strings.Join(p.Services, ", "))
	}
	b.WriteString("\nÀ bientôt!\n")

	return subject, b.String()
}

func NewServeMux(h *ReminderHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeAppointmentReminder, h)
	return mux
}
