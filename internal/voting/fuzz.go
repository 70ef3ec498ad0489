package voting

import (
	"math"
	"math/rand"
	"time"
)

const (
	// Scores below this are displayed exactly; gaming low-traffic
	// subjects is not a concern and precision matters more there.
	fuzzThreshold = 10

	fuzzFraction  = 0.1
	fuzzMaxSpread = 50
)

// RandomSource supplies the randomness for score fuzzing. *rand.Rand
// satisfies it, so tests can inject a seeded source.
type RandomSource interface {
	Intn(n int) int
}

// NewRandomSource returns a time-seeded source for production use.
func NewRandomSource() RandomSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Fuzz perturbs a display score to deter vote-count scraping. The offset
// is a uniform integer in [-spread, spread] where spread is 10% of the
// true score capped at 50, and the result never drops below zero.
func Fuzz(trueScore float64, enabled bool, rng RandomSource) float64 {
	if !enabled || trueScore < fuzzThreshold {
		return trueScore
	}
	spread := int(math.Min(math.Floor(trueScore*fuzzFraction), fuzzMaxSpread))
	if spread <= 0 {
		return trueScore
	}
	offset := rng.Intn(2*spread+1) - spread
	return math.Max(0, trueScore+float64(offset))
}
