package models

// WeightTier maps a reputation threshold to the vote weight granted at or
// above it.
type WeightTier struct {
	Reputation int
	Weight     float64
}

// HighKarmaBonus is an extra multiplier communities can grant on top of
// the tier weight. Multiplier 0 means "use the default" (1.5).
type HighKarmaBonus struct {
	Enabled    bool
	Threshold  int
	Multiplier float64
}

// CommunityVoteRules is the per-community vote weighting configuration.
// Zero values mean "use the documented default": an empty WeightTiers
// list selects the built-in tier table, TrustedUserMultiplier 0 means
// 1.3, MaxVoteWeight 0 means 3.0.
type CommunityVoteRules struct {
	// Ordered highest threshold first. An actor gets the weight of the
	// first tier whose threshold their reputation meets, 1.0 below all.
	WeightTiers []WeightTier

	HighKarmaBonus        HighKarmaBonus
	TrustedUserMultiplier float64
	MaxVoteWeight         float64
}
