package push

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-loyalty/internal/config"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

type fakeStore struct {
	mu      sync.Mutex
	subs    map[string]models.PushSubscription
	admins  map[uint]bool
	listErr error
}

func newFakeStore(adminIDs ...uint) *fakeStore {
	admins := map[uint]bool{}
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &fakeStore{subs: map[string]models.PushSubscription{}, admins: admins}
}

func (f *fakeStore) SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub.ID = uint(len(f.subs) + 1)
	f.subs[sub.Endpoint] = *sub
	return nil
}

func (f *fakeStore) DeletePushSubscription(ctx context.Context, endpoint string, userID *uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub, ok := f.subs[endpoint]; ok && (userID == nil || sub.UserID == *userID) {
		delete(f.subs, endpoint)
	}
	return nil
}

func (f *fakeStore) ListAdminPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.PushSubscription
	for _, s := range f.subs {
		if f.admins[s.UserID] {
			out = append(out, s)
		}
	}
	return out, nil
}

type sent struct {
	endpoint string
	payload  []byte
	opts     webpush.Options
}

// recorder answers every send with the status mapped to its endpoint.
type recorder struct {
	mu     sync.Mutex
	status map[string]int
	calls  []sent
}

func (r *recorder) send(ctx context.Context, payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, sent{endpoint: sub.Endpoint, payload: payload, opts: *opts})

	code, ok := r.status[sub.Endpoint]
	if !ok {
		code = http.StatusCreated
	}
	if code == 0 {
		return nil, errors.New("connection refused")
	}
	return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader(""))}, nil
}

func testConfig() config.PushConfig {
	return config.PushConfig{PublicKey: "pub", PrivateKey: "priv", Subject: "mailto:admin@barbershop.local"}
}

func subscribe(t *testing.T, svc *Service, userID uint, endpoint string) {
	t.Helper()
	require.NoError(t, svc.Subscribe(context.Background(), userID, SubscribeInput{
		Endpoint: endpoint,
		P256dh:   "key",
		Auth:     "secret",
	}))
}

func TestNotifyAdminsSendsOnlyToAdmins(t *testing.T) {
	store := newFakeStore(1)
	rec := &recorder{}
	svc := NewService(store, testConfig(), nil).WithSender(rec.send)

	subscribe(t, svc, 1, "https://push.example.com/admin")
	subscribe(t, svc, 2, "https://push.example.com/client")

	svc.NotifyAdmins(context.Background(), Message{Title: "New appointment", Body: "Ali booked Haircut"})

	require.Len(t, rec.calls, 1)
	call := rec.calls[0]
	assert.Equal(t, "https://push.example.com/admin", call.endpoint)
	assert.Equal(t, "pub", call.opts.VAPIDPublicKey)
	assert.Equal(t, "priv", call.opts.VAPIDPrivateKey)
	assert.Equal(t, webpush.UrgencyHigh, call.opts.Urgency)
	assert.Equal(t, "admin@barbershop.local", call.opts.Subscriber)

	var body struct {
		Notification struct {
			Title string `json:"title"`
			Body  string `json:"body"`
			Icon  string `json:"icon"`
		} `json:"notification"`
	}
	require.NoError(t, json.Unmarshal(call.payload, &body))
	assert.Equal(t, "New appointment", body.Notification.Title)
	assert.Equal(t, "Ali booked Haircut", body.Notification.Body)
	assert.Equal(t, "/assets/logo.png", body.Notification.Icon)
}

func TestNotifyAdminsPrunesExpiredEndpoints(t *testing.T) {
	store := newFakeStore(1, 2, 3, 4)
	rec := &recorder{status: map[string]int{
		"https://push.example.com/gone":     http.StatusGone,
		"https://push.example.com/missing":  http.StatusNotFound,
		"https://push.example.com/throttle": http.StatusTooManyRequests,
		"https://push.example.com/down":     0,
	}}
	svc := NewService(store, testConfig(), nil).WithSender(rec.send)

	subscribe(t, svc, 1, "https://push.example.com/gone")
	subscribe(t, svc, 2, "https://push.example.com/missing")
	subscribe(t, svc, 3, "https://push.example.com/throttle")
	subscribe(t, svc, 4, "https://push.example.com/down")

	svc.NotifyAdmins(context.Background(), Message{Title: "t", Body: "b"})

	assert.Len(t, rec.calls, 4)
	assert.NotContains(t, store.subs, "https://push.example.com/gone")
	assert.NotContains(t, store.subs, "https://push.example.com/missing")
	assert.Contains(t, store.subs, "https://push.example.com/throttle")
	assert.Contains(t, store.subs, "https://push.example.com/down")
}

func TestNotifyAdminsSurvivesStoreFailure(t *testing.T) {
	store := newFakeStore(1)
	store.listErr = errors.New("db down")
	rec := &recorder{}
	svc := NewService(store, testConfig(), nil).WithSender(rec.send)

	svc.NotifyAdmins(context.Background(), Message{Title: "t"})
	assert.Empty(t, rec.calls)
}

func TestSubscribeValidatesInput(t *testing.T) {
	svc := NewService(newFakeStore(), testConfig(), nil)
	ctx := context.Background()

	err := svc.Subscribe(ctx, 1, SubscribeInput{Endpoint: "http://push.example.com/x", P256dh: "k", Auth: "a"})
	assert.True(t, httperr.IsBusiness(err, "invalid_push_endpoint"))

	err = svc.Subscribe(ctx, 1, SubscribeInput{Endpoint: "https://push.example.com/x", P256dh: "k"})
	assert.True(t, httperr.IsBusiness(err, "invalid_push_keys"))

	err = svc.Unsubscribe(ctx, 1, false, "  ")
	assert.True(t, httperr.IsBusiness(err, "invalid_push_endpoint"))
}

func TestUnsubscribeIsScopedToTheOwner(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testConfig(), nil)
	ctx := context.Background()

	subscribe(t, svc, 1, "https://push.example.com/a")

	require.NoError(t, svc.Unsubscribe(ctx, 2, false, "https://push.example.com/a"))
	assert.Contains(t, store.subs, "https://push.example.com/a")

	require.NoError(t, svc.Unsubscribe(ctx, 2, true, "https://push.example.com/a"))
	assert.NotContains(t, store.subs, "https://push.example.com/a")
}
