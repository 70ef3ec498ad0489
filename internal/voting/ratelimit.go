package voting

import (
	"time"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map"
)

// DefaultVoteInterval is the minimum gap between accepted votes for one
// (subject, actor) pair.
const DefaultVoteInterval = time.Second

// Limiter gates vote submissions per (subject, actor). A disallowed vote
// is not an error condition here; the caller decides how to surface it.
type Limiter struct {
	interval time.Duration
	entries  cmap.ConcurrentMap
}

// NewLimiter creates a limiter and starts its background cleanup loop.
// A non-positive interval falls back to DefaultVoteInterval.
func NewLimiter(interval time.Duration) *Limiter {
	if interval <= 0 {
		interval = DefaultVoteInterval
	}
	l := &Limiter{
		interval: interval,
		entries:  cmap.New(),
	}
	go l.cleanup()
	return l
}

// Interval returns the configured minimum gap.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Allow reports whether a vote for (subjectID, actorID) may be accepted
// at now. It does not mark the vote as taken; see Record.
func (l *Limiter) Allow(subjectID, actorID uuid.UUID, now time.Time) bool {
	if v, ok := l.entries.Get(limiterKey(subjectID, actorID)); ok {
		if now.Sub(v.(time.Time)) < l.interval {
			return false
		}
	}
	return true
}

// Record marks a vote as accepted at now. Call it only once the vote is
// actually handed to the backend, never for retries or rejected intents.
func (l *Limiter) Record(subjectID, actorID uuid.UUID, now time.Time) {
	l.entries.Set(limiterKey(subjectID, actorID), now)
}

func limiterKey(subjectID, actorID uuid.UUID) string {
	return subjectID.String() + ":" + actorID.String()
}

// cleanup drops entries old enough that they can never gate again.
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		now := time.Now()
		for item := range l.entries.IterBuffered() {
			if last, ok := item.Val.(time.Time); ok && now.Sub(last) > 10*l.interval {
				l.entries.Remove(item.Key)
			}
		}
	}
}
