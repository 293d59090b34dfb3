package loyalty

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

func TestAccrueGrantsOneRewardPerThreshold(t *testing.T) {
	p := NewPolicy(10)
	u := &models.User{}

	granted := 0
	for i := 0; i < 25; i++ {
		if p.Accrue(u) {
			granted++
		}
	}

	assert.Equal(t, 25, u.TotalAppointments)
	assert.Equal(t, 2, u.AvailableRewards)
	assert.Equal(t, 2, granted)
	assert.Equal(t, 5, p.UntilNext(u))
}

func TestNewPolicyDefaultsThreshold(t *testing.T) {
	assert.Equal(t, DefaultThreshold, NewPolicy(0).Threshold)
}

func TestReverse(t *testing.T) {
	p := NewPolicy(10)

	t.Run("milestone completion withdraws the reward", func(t *testing.T) {
		u := &models.User{TotalAppointments: 10, AvailableRewards: 1}
		revoked, err := p.Reverse(u)
		assert.NoError(t, err)
		assert.True(t, revoked)
		assert.Equal(t, 9, u.TotalAppointments)
		assert.Equal(t, 0, u.AvailableRewards)
	})

	t.Run("ordinary completion keeps rewards", func(t *testing.T) {
		u := &models.User{TotalAppointments: 11, AvailableRewards: 1}
		revoked, err := p.Reverse(u)
		assert.NoError(t, err)
		assert.False(t, revoked)
		assert.Equal(t, 10, u.TotalAppointments)
		assert.Equal(t, 1, u.AvailableRewards)
	})

	t.Run("spent milestone reward blocks the reversal", func(t *testing.T) {
		u := &models.User{TotalAppointments: 10, AvailableRewards: 0, UsedRewards: 1}
		_, err := p.Reverse(u)
		assert.True(t, httperr.IsBusiness(err, "reward_already_used"))
		assert.Equal(t, 10, u.TotalAppointments)
		assert.Equal(t, 0, u.AvailableRewards)
		assert.Equal(t, 1, u.UsedRewards)
		assert.LessOrEqual(t, u.AvailableRewards+u.UsedRewards, p.Earned(u))
	})

	t.Run("zero total is a no-op", func(t *testing.T) {
		u := &models.User{}
		revoked, err := p.Reverse(u)
		assert.NoError(t, err)
		assert.False(t, revoked)
		assert.Equal(t, 0, u.TotalAppointments)
	})
}

func TestRedeemAndRefundRoundTrip(t *testing.T) {
	p := NewPolicy(10)
	u := &models.User{TotalAppointments: 10, AvailableRewards: 1}

	assert.NoError(t, p.Redeem(u))
	assert.Equal(t, 0, u.AvailableRewards)
	assert.Equal(t, 1, u.UsedRewards)

	err := p.Redeem(u)
	assert.True(t, httperr.IsBusiness(err, "no_rewards_available"))
	assert.Equal(t, 0, u.AvailableRewards)
	assert.Equal(t, 1, u.UsedRewards)

	p.Refund(u)
	assert.Equal(t, 1, u.AvailableRewards)
	assert.Equal(t, 0, u.UsedRewards)
}

func TestRefundFloorsUsedAtZero(t *testing.T) {
	u := &models.User{}
	NewPolicy(10).Refund(u)
	assert.Equal(t, 1, u.AvailableRewards)
	assert.Equal(t, 0, u.UsedRewards)
}

func TestQualifyingServiceAndPrice(t *testing.T) {
	services := []models.Service{
		{ID: 1, Name: "Brushing", Price: 7},
		{ID: 2, Name: "Coupe + Barbe Dégradé", Price: 13},
	}

	free, ok := QualifyingService(services)
	assert.True(t, ok)
	assert.Equal(t, uint(2), free.ID)

	assert.Equal(t, 20.0, Price(services, false))
	assert.Equal(t, 7.0, Price(services, true))

	_, ok = QualifyingService(services[:1])
	assert.False(t, ok)
}
