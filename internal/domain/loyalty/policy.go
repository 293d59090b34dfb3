package loyalty

import (
	"strings"

	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

const DefaultThreshold = 10

// Policy holds the reward rules: one free service every Threshold
// completed appointments.
type Policy struct {
	Threshold int
}

func NewPolicy(threshold int) Policy {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Policy{Threshold: threshold}
}

// Accrue records one completed appointment and reports whether it
// earned a reward.
func (p Policy) Accrue(u *models.User) bool {
	u.TotalAppointments++
	if u.TotalAppointments%p.Threshold == 0 {
		u.AvailableRewards++
		return true
	}
	return false
}

// Reverse undoes one Accrue and reports whether it took a reward back.
// Undoing a milestone completion whose reward was already spent fails
// with reward_already_used and leaves u untouched.
func (p Policy) Reverse(u *models.User) (bool, error) {
	if u.TotalAppointments <= 0 {
		return false, nil
	}

	if u.TotalAppointments%p.Threshold != 0 {
		u.TotalAppointments--
		return false, nil
	}
	if u.AvailableRewards < 1 {
		return false, httperr.ErrBusiness("reward_already_used")
	}

	u.TotalAppointments--
	u.AvailableRewards--
	return true, nil
}

// Earned is the number of rewards the completed appointments entitle u to.
func (p Policy) Earned(u *models.User) int {
	return u.TotalAppointments / p.Threshold
}

func (p Policy) Redeem(u *models.User) error {
	if u.AvailableRewards < 1 {
		return httperr.ErrBusiness("no_rewards_available")
	}
	u.AvailableRewards--
	u.UsedRewards++
	return nil
}

func (p Policy) Refund(u *models.User) {
	u.AvailableRewards++
	u.UsedRewards = max(0, u.UsedRewards-1)
}

// UntilNext is the number of completions left before the next reward.
func (p Policy) UntilNext(u *models.User) int {
	return p.Threshold - u.TotalAppointments%p.Threshold
}

// QualifyingService returns the first service a reward can pay for: a
// combined "Coupe + Barbe" package.
func QualifyingService(services []models.Service) (models.Service, bool) {
	for _, s := range services {
		name := strings.ToLower(s.Name)
		if strings.Contains(name, "coupe") && strings.Contains(name, "barbe") {
			return s, true
		}
	}
	return models.Service{}, false
}

// Price sums the services and waives the qualifying one when a reward
// is applied.
func Price(services []models.Service, rewardApplied bool) float64 {
	var total float64
	for _, s := range services {
		total += s.Price
	}

	if rewardApplied {
		if free, ok := QualifyingService(services); ok {
			total -= free.Price
		}
	}
	return max(0, total)
}
