package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-loyalty/internal/domain/loyalty"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

func TestRoleListAcceptsStringOrArray(t *testing.T) {
	var body struct {
		Role RoleList `json:"role"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"role":"admin"}`), &body))
	assert.Equal(t, RoleList{"admin"}, body.Role)

	require.NoError(t, json.Unmarshal([]byte(`{"role":["user","admin"]}`), &body))
	assert.Equal(t, RoleList{"user", "admin"}, body.Role)

	require.NoError(t, json.Unmarshal([]byte(`{"role":""}`), &body))
	assert.Empty(t, body.Role)

	assert.Error(t, json.Unmarshal([]byte(`{"role":42}`), &body))
}

func TestNewAppointmentUsesShopClock(t *testing.T) {
	tunis := time.FixedZone("CET", 3600)
	uid := uint(5)

	ap := &models.Appointment{
		ID:        1,
		UserID:    &uid,
		User:      &models.User{ID: 5, Name: "Sami", Phone: "20000001"},
		BarberID:  2,
		Barber:    models.Barber{ID: 2, Name: "Aladin"},
		Services:  []models.Service{{ID: 3, Name: "Coupe", Price: 10}},
		StartTime: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
		Status:    "BOOKED",
	}

	got := NewAppointment(ap, tunis)
	assert.Equal(t, "2026-03-15", got.Date)
	assert.Equal(t, "10:00:00", got.StartTime)
	assert.Equal(t, "10:30:00", got.EndTime)
	assert.Equal(t, "Sami", got.UserName)
	assert.True(t, got.User.Guest)
	require.Len(t, got.Services, 1)
	assert.Equal(t, "Coupe", got.Services[0].Name)
}

func TestNewUserRolesAndLoyalty(t *testing.T) {
	u := &models.User{ID: 1, Username: "a", Role: models.RoleClient, TotalAppointments: 12, AvailableRewards: 1}

	got := NewUser(u, loyalty.NewPolicy(10))
	assert.Equal(t, []string{"ROLE_CLIENT"}, got.Roles)
	assert.Equal(t, 8, got.UntilNextReward)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"availableRewards":1`)
	assert.Contains(t, string(b), `"totalAppointments":12`)
}
