// Package push delivers web push notifications to the admins' browsers.
package push

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-loyalty/internal/config"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/metrics"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

const (
	ttlSeconds = 60
	icon       = "/assets/logo.png"
)

type Store interface {
	// SavePushSubscription inserts sub, or rebinds the row holding the
	// same endpoint to sub's user and keys.
	SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error

	// DeletePushSubscription removes endpoint. A non-nil userID limits
	// the delete to that user's row.
	DeletePushSubscription(ctx context.Context, endpoint string, userID *uint) error

	ListAdminPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error)
}

// Message is what an admin sees in the notification.
type Message struct {
	Title string
	Body  string
}

type Notifier interface {
	NotifyAdmins(ctx context.Context, msg Message)
}

// SendFunc matches webpush.SendNotificationWithContext.
type SendFunc func(ctx context.Context, payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

type Service struct {
	store Store
	cfg   config.PushConfig
	send  SendFunc
	log   *zap.Logger
}

func NewService(store Store, cfg config.PushConfig, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store: store,
		cfg:   cfg,
		send:  webpush.SendNotificationWithContext,
		log:   log,
	}
}

// WithSender swaps the transport, for tests.
func (s *Service) WithSender(send SendFunc) *Service {
	s.send = send
	return s
}

func (s *Service) PublicKey() string {
	return s.cfg.PublicKey
}

// ======================================================
// SUBSCRIPTIONS
// ======================================================

type SubscribeInput struct {
	Endpoint string
	P256dh   string
	Auth     string
	BarberID *uint
}

func (s *Service) Subscribe(ctx context.Context, userID uint, in SubscribeInput) error {
	endpoint := strings.TrimSpace(in.Endpoint)
	if !strings.HasPrefix(endpoint, "https://") {
		return httperr.ErrBusiness("invalid_push_endpoint")
	}
	if in.P256dh == "" || in.Auth == "" {
		return httperr.ErrBusiness("invalid_push_keys")
	}

	return s.store.SavePushSubscription(ctx, &models.PushSubscription{
		Endpoint: endpoint,
		P256dh:   in.P256dh,
		Auth:     in.Auth,
		UserID:   userID,
		BarberID: in.BarberID,
	})
}

// Unsubscribe drops endpoint. Admins may drop any endpoint, others
// only their own.
func (s *Service) Unsubscribe(ctx context.Context, userID uint, isAdmin bool, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return httperr.ErrBusiness("invalid_push_endpoint")
	}

	owner := &userID
	if isAdmin {
		owner = nil
	}
	return s.store.DeletePushSubscription(ctx, endpoint, owner)
}

// ======================================================
// DELIVERY
// ======================================================

// NotifyAdmins sends msg to every admin subscription. Endpoints the push
// service reports gone (404, 410) are deleted. Failures are logged only.
func (s *Service) NotifyAdmins(ctx context.Context, msg Message) {
	subs, err := s.store.ListAdminPushSubscriptions(ctx)
	if err != nil {
		s.log.Warn("list push subscriptions", zap.Error(err))
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := Payload(msg)
	if err != nil {
		s.log.Warn("encode push payload", zap.Error(err))
		return
	}

	opts := &webpush.Options{
		Subscriber:      strings.TrimPrefix(s.cfg.Subject, "mailto:"),
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
		TTL:             ttlSeconds,
		Urgency:         webpush.UrgencyHigh,
	}

	for _, sub := range subs {
		s.deliver(ctx, payload, sub, opts)
	}
}

func (s *Service) deliver(ctx context.Context, payload []byte, sub models.PushSubscription, opts *webpush.Options) {
	resp, err := s.send(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
	}, opts)
	if err != nil {
		metrics.PushNotifications.WithLabelValues("error").Inc()
		s.log.Warn("push send", zap.Uint("subscription_id", sub.ID), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		metrics.PushNotifications.WithLabelValues("expired").Inc()
		if err := s.store.DeletePushSubscription(ctx, sub.Endpoint, nil); err != nil {
			s.log.Warn("prune push subscription", zap.Uint("subscription_id", sub.ID), zap.Error(err))
		}
	case resp.StatusCode >= 400:
		metrics.PushNotifications.WithLabelValues("rejected").Inc()
		s.log.Warn("push rejected",
			zap.Uint("subscription_id", sub.ID),
			zap.Int("status", resp.StatusCode),
		)
	default:
		metrics.PushNotifications.WithLabelValues("sent").Inc()
	}
}

// Payload is the notification body understood by the Angular service
// worker.
func Payload(msg Message) ([]byte, error) {
	type notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		Icon  string `json:"icon"`
	}
	return json.Marshal(map[string]notification{
		"notification": {Title: msg.Title, Body: msg.Body, Icon: icon},
	})
}
