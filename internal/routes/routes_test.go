package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-loyalty/internal/cache"
	"github.com/BruksfildServices01/barber-loyalty/internal/config"
	"github.com/BruksfildServices01/barber-loyalty/internal/events"
	"github.com/BruksfildServices01/barber-loyalty/internal/infra/memory"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/push"
	"github.com/BruksfildServices01/barber-loyalty/internal/validators"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validators.Register(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type api struct {
	t      *testing.T
	router *gin.Engine
	store  *memory.Store
}

func newAPI(t *testing.T, opts ...func(*Deps)) *api {
	t.Helper()

	store := memory.NewStore()
	ctx := t.Context()

	for _, s := range []models.Service{
		{Name: "Coupe", Price: 10, DurationMin: 30, Active: true},
		{Name: "Coupe + Barbe Dégradé", Price: 13, DurationMin: 45, Active: true},
	} {
		require.NoError(t, store.CreateService(ctx, &s))
	}
	for _, b := range []models.Barber{
		{Name: "Aladin", Active: true},
		{Name: "Hamouda", Active: true},
	} {
		require.NoError(t, store.CreateBarber(ctx, &b))
	}

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "test-secret",
		JWTExpiry:          time.Hour,
		Timezone:           "UTC",
		SlotMinutes:        30,
		LoyaltyThreshold:   10,
		AllowAdminSignup:   true,
		CORSOrigins:        []string{"*"},
		RateLimitPerMinute: 6000,
		RateLimitBurst:     1000,
		CatalogCacheTTL:    time.Minute,
	}

	deps := Deps{
		Config:       cfg,
		Users:        store,
		Appointments: store,
		Catalog:      store,
		Cache:        cache.NewMemory(time.Minute),
		Feed:         events.NewHub(),
		Now: func() time.Time {
			return time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
		},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &api{t: t, router: NewRouter(deps), store: store}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *api) decode(w *httptest.ResponseRecorder, dest any) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

// signUpAndIn registers the account and returns its bearer token.
func (a *api) signUpAndIn(username, role, phone string) string {
	a.t.Helper()

	w := a.do(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"username": username,
		"password": "password123",
		"email":    username + "@example.com",
		"name":     "Test " + username,
		"role":     []string{role},
		"phone":    phone,
	})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/auth/signin", "", map[string]any{
		"username": username,
		"password": "password123",
	})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	var session struct {
		Token string `json:"token"`
		ID    uint   `json:"id"`
	}
	a.decode(w, &session)
	require.NotEmpty(a.t, session.Token)
	require.NotZero(a.t, session.ID)
	return session.Token
}

type loyaltyCounters struct {
	TotalAppointments int `json:"totalAppointments"`
	AvailableRewards  int `json:"availableRewards"`
	UsedRewards       int `json:"usedRewards"`
}

func (a *api) me(token string) loyaltyCounters {
	a.t.Helper()

	w := a.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	var out loyaltyCounters
	a.decode(w, &out)
	return out
}

func (a *api) idByName(path, contains string) uint {
	a.t.Helper()

	w := a.do(http.MethodGet, path, "", nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	var list []struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	a.decode(w, &list)
	for _, item := range list {
		if strings.Contains(item.Name, contains) {
			return item.ID
		}
	}
	a.t.Fatalf("%s: no entry containing %q", path, contains)
	return 0
}

func TestLoyaltyFlowOverHTTP(t *testing.T) {
	a := newAPI(t)

	userToken := a.signUpAndIn("testuser", "user", "12345678")
	adminToken := a.signUpAndIn("admin", "admin", "87654321")

	comboID := a.idByName("/api/services", "Coupe + Barbe")
	aladinID := a.idByName("/api/barbers", "Aladin")

	book := func(date, clock string, useReward bool) *httptest.ResponseRecorder {
		return a.do(http.MethodPost, "/api/appointments/book", userToken, map[string]any{
			"barberId":   aladinID,
			"serviceIds": []uint{comboID},
			"date":       date,
			"startTime":  clock,
			"userName":   "Test User",
			"userPhone":  "12345678",
			"useReward":  useReward,
		})
	}

	// Redeeming before any reward exists fails.
	w := book("2026-03-20", "10:00:00", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for day := 1; day <= 10; day++ {
		w := book(fmt.Sprintf("2026-03-%02d", day), "10:00:00", false)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var booked struct {
			ID     uint   `json:"id"`
			Status string `json:"status"`
		}
		a.decode(w, &booked)
		assert.Equal(t, "BOOKED", booked.Status)

		w = a.do(http.MethodPut, fmt.Sprintf("/api/appointments/%d/status?status=DONE", booked.ID), adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	stats := a.me(userToken)
	assert.Equal(t, 10, stats.TotalAppointments)
	assert.Equal(t, 1, stats.AvailableRewards)
	assert.Equal(t, 0, stats.UsedRewards)

	w = book("2026-03-15", "14:00:00", true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rewarded struct {
		ID            uint    `json:"id"`
		RewardApplied bool    `json:"rewardApplied"`
		TotalPrice    float64 `json:"totalPrice"`
	}
	a.decode(w, &rewarded)
	assert.True(t, rewarded.RewardApplied)
	assert.Zero(t, rewarded.TotalPrice)

	afterBooking := a.me(userToken)
	assert.Equal(t, 0, afterBooking.AvailableRewards)
	assert.Equal(t, 1, afterBooking.UsedRewards)

	w = a.do(http.MethodPut, fmt.Sprintf("/api/appointments/%d/cancel", rewarded.ID), userToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	afterCancel := a.me(userToken)
	assert.Equal(t, afterBooking.AvailableRewards+1, afterCancel.AvailableRewards)
	assert.Equal(t, 0, afterCancel.UsedRewards)

	// A cancelled appointment stays cancelled.
	w = a.do(http.MethodPut, fmt.Sprintf("/api/appointments/%d/cancel", rewarded.ID), userToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, a.me(userToken).AvailableRewards)
}

func TestStatusChangeNeedsAdmin(t *testing.T) {
	a := newAPI(t)

	userToken := a.signUpAndIn("member", "user", "20000001")
	aladinID := a.idByName("/api/barbers", "Aladin")
	coupeID := a.idByName("/api/services", "Coupe")

	w := a.do(http.MethodPost, "/api/appointments/book", userToken, map[string]any{
		"barberId":   aladinID,
		"serviceIds": []uint{coupeID},
		"date":       "2026-03-02",
		"startTime":  "11:00",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var booked struct {
		ID uint `json:"id"`
	}
	a.decode(w, &booked)
	path := fmt.Sprintf("/api/appointments/%d/status?status=DONE", booked.ID)

	w = a.do(http.MethodPut, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPut, path, userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPut, path, "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGuestBookingAndContactLookup(t *testing.T) {
	a := newAPI(t)

	aladinID := a.idByName("/api/barbers", "Aladin")
	coupeID := a.idByName("/api/services", "Coupe")

	w := a.do(http.MethodPost, "/api/appointments/book", "", map[string]any{
		"barberId":   aladinID,
		"serviceIds": []uint{coupeID},
		"date":       "2026-03-03",
		"startTime":  "09:30",
		"userName":   "Walk In",
		"userPhone":  "55555555",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var booked struct {
		ID uint `json:"id"`
	}
	a.decode(w, &booked)

	// The slot is now taken.
	w = a.do(http.MethodPost, "/api/appointments/book", "", map[string]any{
		"barberId":   aladinID,
		"serviceIds": []uint{coupeID},
		"date":       "2026-03-03",
		"startTime":  "09:30",
		"userName":   "Someone Else",
		"userPhone":  "66666666",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodGet, "/api/appointments/by-contact?phone=55555555", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var mine []struct {
		ID uint `json:"id"`
	}
	a.decode(w, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, booked.ID, mine[0].ID)

	cancelPath := fmt.Sprintf("/api/appointments/%d/cancel", booked.ID)

	w = a.do(http.MethodPut, cancelPath+"?phone=00000000", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPut, cancelPath+"?phone=55555555", "", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAvailabilityEndpoint(t *testing.T) {
	a := newAPI(t)
	aladinID := a.idByName("/api/barbers", "Aladin")

	w := a.do(http.MethodGet, fmt.Sprintf("/api/appointments/available?barberId=%d&date=2026-03-02", aladinID), "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var slots []string
	a.decode(w, &slots)
	assert.NotEmpty(t, slots)

	w = a.do(http.MethodGet, "/api/appointments/available?barberId=999&date=2026-03-02", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/api/appointments/available?date=2026-03-02", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = a.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "barber_http_requests_total")
}

func TestSignupValidation(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"username": "ab",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	a.signUpAndIn("taken", "user", "")
	w = a.do(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"username": "taken",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodPost, "/api/auth/signin", "", map[string]any{
		"username": "taken",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPushSubscriptionEndpoints(t *testing.T) {
	a := newAPI(t, func(d *Deps) {
		d.Push = push.NewService(d.Users.(*memory.Store), config.PushConfig{
			PublicKey:  "BPublicKey",
			PrivateKey: "private",
			Subject:    "mailto:admin@barbershop.local",
		}, nil)
	})

	w := a.do(http.MethodGet, "/api/notifications/vapid-public-key", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BPublicKey")

	body := map[string]any{
		"subscription": map[string]any{
			"endpoint": "https://fcm.googleapis.com/fcm/send/abc",
			"keys":     map[string]string{"p256dh": "key", "auth": "secret"},
		},
	}

	w = a.do(http.MethodPost, "/api/notifications/subscribe", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	admin := a.signUpAndIn("boss", "admin", "")
	w = a.do(http.MethodPost, "/api/notifications/subscribe", admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	subs, err := a.store.ListAdminPushSubscriptions(t.Context())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "key", subs[0].P256dh)

	w = a.do(http.MethodPost, "/api/notifications/subscribe", admin, map[string]any{
		"subscription": map[string]any{"endpoint": "https://fcm.googleapis.com/fcm/send/abc"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/api/notifications/unsubscribe", admin, map[string]string{
		"endpoint": "https://fcm.googleapis.com/fcm/send/abc",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	subs, err = a.store.ListAdminPushSubscriptions(t.Context())
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestPushRoutesAbsentWithoutKeys(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodGet, "/api/notifications/vapid-public-key", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
