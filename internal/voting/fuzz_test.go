package voting

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzDisabledReturnsExact(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, 1000.0, Fuzz(1000, false, rng))
}

func TestFuzzBelowThresholdReturnsExact(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, score := range []float64{-5, 0, 1, 9, 9.9} {
		assert.Equal(t, score, Fuzz(score, true, rng), "score %v", score)
	}
}

func TestFuzzStaysWithinSpread(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		score := float64(10 + rng.Intn(5000))
		fuzzed := Fuzz(score, true, rng)
		spread := math.Min(math.Floor(score*0.1), 50)

		assert.GreaterOrEqual(t, fuzzed, 0.0)
		assert.LessOrEqual(t, math.Abs(fuzzed-score), spread, "score %v", score)
	}
}

func TestFuzzSpreadCappedAtFifty(t *testing.T) {
	// trueScore=1000 → spread = min(100, 50) = 50
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		fuzzed := Fuzz(1000, true, rng)
		assert.GreaterOrEqual(t, fuzzed, 950.0)
		assert.LessOrEqual(t, fuzzed, 1050.0)
	}
}

func TestFuzzNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 200; i++ {
		assert.GreaterOrEqual(t, Fuzz(10, true, rng), 0.0)
	}
}

func TestFuzzDeterministicWithSeededSource(t *testing.T) {
	a := Fuzz(500, true, rand.New(rand.NewSource(11)))
	b := Fuzz(500, true, rand.New(rand.NewSource(11)))
	assert.Equal(t, a, b)
}
