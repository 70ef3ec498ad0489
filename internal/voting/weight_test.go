package voting

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"vote-engine/internal/models"
)

func TestComputeWeightDefaultTiers(t *testing.T) {
	rules := models.CommunityVoteRules{}

	tests := []struct {
		reputation int
		expected   float64
	}{
		{0, 1.0},
		{99, 1.0},
		{100, 1.2},
		{999, 1.2},
		{1000, 1.5},
		{5000, 2.0},
		{10000, 2.5},
		{49999, 2.5},
		{50000, 3.0},
		{60000, 3.0},
	}
	for _, tc := range tests {
		profile := models.ActorProfile{Reputation: tc.reputation}
		assert.Equal(t, tc.expected, ComputeWeight(profile, rules), "reputation %d", tc.reputation)
	}
}

func TestComputeWeightTopTierCapped(t *testing.T) {
	// Bonuses past the cap must not push the weight above MaxVoteWeight.
	rules := models.CommunityVoteRules{
		HighKarmaBonus:        models.HighKarmaBonus{Enabled: true, Threshold: 10000},
		TrustedUserMultiplier: 2.0,
	}
	profile := models.ActorProfile{Reputation: 50000, IsTrusted: true}
	assert.Equal(t, 3.0, ComputeWeight(profile, rules))
}

func TestComputeWeightHighKarmaBonusDefaults(t *testing.T) {
	rules := models.CommunityVoteRules{
		HighKarmaBonus: models.HighKarmaBonus{Enabled: true, Threshold: 500},
	}

	// 1.2 tier * 1.5 default bonus
	profile := models.ActorProfile{Reputation: 600}
	assert.InDelta(t, 1.8, ComputeWeight(profile, rules), 1e-9)

	// Below the bonus threshold the tier weight stands alone.
	below := models.ActorProfile{Reputation: 400}
	assert.Equal(t, 1.2, ComputeWeight(below, rules))
}

func TestComputeWeightTrustedDefaultMultiplier(t *testing.T) {
	rules := models.CommunityVoteRules{}
	profile := models.ActorProfile{Reputation: 0, IsTrusted: true}
	assert.InDelta(t, 1.3, ComputeWeight(profile, rules), 1e-9)
}

func TestComputeWeightCustomTiers(t *testing.T) {
	rules := models.CommunityVoteRules{
		WeightTiers: []models.WeightTier{
			{Reputation: 200, Weight: 2.5},
			{Reputation: 50, Weight: 1.4},
		},
	}
	assert.Equal(t, 1.0, ComputeWeight(models.ActorProfile{Reputation: 10}, rules))
	assert.Equal(t, 1.4, ComputeWeight(models.ActorProfile{Reputation: 60}, rules))
	assert.Equal(t, 2.5, ComputeWeight(models.ActorProfile{Reputation: 300}, rules))
}

func TestComputeWeightCustomCap(t *testing.T) {
	rules := models.CommunityVoteRules{MaxVoteWeight: 2.0}
	profile := models.ActorProfile{Reputation: 50000}
	assert.Equal(t, 2.0, ComputeWeight(profile, rules))
}

func TestComputeWeightAlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rules := models.CommunityVoteRules{
		HighKarmaBonus:        models.HighKarmaBonus{Enabled: true, Threshold: 2000, Multiplier: 1.7},
		TrustedUserMultiplier: 1.6,
	}
	for i := 0; i < 1000; i++ {
		profile := models.ActorProfile{
			Reputation: rng.Intn(100000),
			IsTrusted:  rng.Intn(2) == 0,
		}
		weight := ComputeWeight(profile, rules)
		assert.GreaterOrEqual(t, weight, 1.0)
		assert.LessOrEqual(t, weight, 3.0)
	}
}
