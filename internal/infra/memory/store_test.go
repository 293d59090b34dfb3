package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-loyalty/internal/domain"
	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

func TestRollbackKeepsWritesFromOutsideTheTransaction(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	customer := &models.User{Username: "client1", PasswordHash: "hash", TotalAppointments: 3}
	require.NoError(t, store.Create(ctx, customer))

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	kept := &models.Appointment{BarberID: 1, StartTime: start, EndTime: start.Add(30 * time.Minute), Status: "BOOKED"}
	require.NoError(t, store.CreateAppointment(ctx, kept))

	var (
		outsider *models.User
		created  models.Appointment
		failure  = errors.New("boom")
	)

	err := store.WithinTx(ctx, func(tx apdomain.Repository) error {
		u, err := tx.GetUserForUpdate(ctx, customer.ID)
		require.NoError(t, err)
		u.TotalAppointments = 4
		require.NoError(t, tx.SaveUser(ctx, u))

		created = models.Appointment{BarberID: 1, StartTime: start.Add(time.Hour), EndTime: start.Add(90 * time.Minute), Status: "BOOKED"}
		require.NoError(t, tx.CreateAppointment(ctx, &created))

		require.NoError(t, tx.DeleteAppointment(ctx, kept.ID))

		// a signup landing while the transaction is open
		outsider = &models.User{Username: "walker", PasswordHash: "hash"}
		require.NoError(t, store.Create(ctx, outsider))

		return failure
	})
	require.ErrorIs(t, err, failure)

	u, err := store.GetByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, u.TotalAppointments)

	_, err = store.GetAppointment(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.GetAppointment(ctx, kept.ID)
	assert.NoError(t, err)

	got, err := store.GetByUsername(ctx, "walker")
	require.NoError(t, err)
	assert.Equal(t, outsider.ID, got.ID)
}

func TestCommittedTransactionKeepsWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.WithinTx(ctx, func(tx apdomain.Repository) error {
		return tx.CreateBlockedSlot(ctx, &models.BlockedSlot{Day: "2026-03-02", StartTime: "10:00", EndTime: "11:00"})
	})
	require.NoError(t, err)

	blocks, err := store.ListBlockedSlots(ctx, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Len(t, blocks, 1)
}

func TestPushSubscriptionsUpsertByEndpoint(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	admin := &models.User{Username: "boss", PasswordHash: "hash", Role: models.RoleAdmin}
	client := &models.User{Username: "client1", PasswordHash: "hash", Role: models.RoleClient}
	require.NoError(t, store.Create(ctx, admin))
	require.NoError(t, store.Create(ctx, client))

	first := &models.PushSubscription{Endpoint: "https://push.example.com/a", P256dh: "k1", Auth: "a1", UserID: client.ID}
	require.NoError(t, store.SavePushSubscription(ctx, first))

	subs, err := store.ListAdminPushSubscriptions(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)

	// the same browser, now signed in as the admin
	again := &models.PushSubscription{Endpoint: "https://push.example.com/a", P256dh: "k2", Auth: "a2", UserID: admin.ID}
	require.NoError(t, store.SavePushSubscription(ctx, again))
	assert.Equal(t, first.ID, again.ID)

	subs, err = store.ListAdminPushSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "k2", subs[0].P256dh)

	require.NoError(t, store.DeletePushSubscription(ctx, "https://push.example.com/a", &client.ID))
	subs, _ = store.ListAdminPushSubscriptions(ctx)
	assert.Len(t, subs, 1)

	require.NoError(t, store.DeletePushSubscription(ctx, "https://push.example.com/a", nil))
	subs, _ = store.ListAdminPushSubscriptions(ctx)
	assert.Empty(t, subs)
}
