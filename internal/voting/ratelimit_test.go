package voting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLimiterAllowsFirstVote(t *testing.T) {
	limiter := NewLimiter(time.Second)
	assert.True(t, limiter.Allow(uuid.New(), uuid.New(), time.Now()))
}

func TestLimiterBlocksWithinInterval(t *testing.T) {
	limiter := NewLimiter(time.Second)
	subjectID, actorID := uuid.New(), uuid.New()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, limiter.Allow(subjectID, actorID, t0))
	limiter.Record(subjectID, actorID, t0)

	assert.False(t, limiter.Allow(subjectID, actorID, t0.Add(999*time.Millisecond)))
	assert.True(t, limiter.Allow(subjectID, actorID, t0.Add(1000*time.Millisecond)))
}

func TestLimiterAllowWithoutRecordDoesNotGate(t *testing.T) {
	limiter := NewLimiter(time.Second)
	subjectID, actorID := uuid.New(), uuid.New()
	t0 := time.Now()

	// Allow alone must not consume the slot; only Record does.
	assert.True(t, limiter.Allow(subjectID, actorID, t0))
	assert.True(t, limiter.Allow(subjectID, actorID, t0))
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewLimiter(time.Second)
	subjectID, actorID := uuid.New(), uuid.New()
	t0 := time.Now()
	limiter.Record(subjectID, actorID, t0)

	// Same actor, different subject.
	assert.True(t, limiter.Allow(uuid.New(), actorID, t0))
	// Same subject, different actor.
	assert.True(t, limiter.Allow(subjectID, uuid.New(), t0))
	// The recorded pair stays gated.
	assert.False(t, limiter.Allow(subjectID, actorID, t0))
}

func TestLimiterDefaultInterval(t *testing.T) {
	limiter := NewLimiter(0)
	assert.Equal(t, DefaultVoteInterval, limiter.Interval())
}
