package voting

import (
	"vote-engine/internal/models"
)

const (
	defaultHighKarmaMultiplier = 1.5
	defaultTrustedMultiplier   = 1.3
	defaultMaxVoteWeight       = 3.0
)

// Built-in tier table, used when a community does not configure its own.
var defaultTiers = []models.WeightTier{
	{Reputation: 50000, Weight: 3.0},
	{Reputation: 10000, Weight: 2.5},
	{Reputation: 5000, Weight: 2.0},
	{Reputation: 1000, Weight: 1.5},
	{Reputation: 100, Weight: 1.2},
}

// ComputeWeight maps an actor's reputation and the community rules to the
// multiplier applied to a single vote. All rule fields default when unset,
// so there is no error path; the result is always in [1.0, MaxVoteWeight].
func ComputeWeight(profile models.ActorProfile, rules models.CommunityVoteRules) float64 {
	tiers := rules.WeightTiers
	if len(tiers) == 0 {
		tiers = defaultTiers
	}

	weight := 1.0
	for _, tier := range tiers {
		if profile.Reputation >= tier.Reputation {
			weight = tier.Weight
			break
		}
	}

	if rules.HighKarmaBonus.Enabled && profile.Reputation >= rules.HighKarmaBonus.Threshold {
		multiplier := rules.HighKarmaBonus.Multiplier
		if multiplier == 0 {
			multiplier = defaultHighKarmaMultiplier
		}
		weight *= multiplier
	}

	if profile.IsTrusted {
		multiplier := rules.TrustedUserMultiplier
		if multiplier == 0 {
			multiplier = defaultTrustedMultiplier
		}
		weight *= multiplier
	}

	maxWeight := rules.MaxVoteWeight
	if maxWeight == 0 {
		maxWeight = defaultMaxVoteWeight
	}
	if weight > maxWeight {
		weight = maxWeight
	}
	if weight < 1.0 {
		weight = 1.0
	}
	return weight
}
