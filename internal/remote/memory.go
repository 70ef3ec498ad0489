package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"vote-engine/internal/models"
	"vote-engine/internal/realtime"
)

// MemoryBackend is an in-process stand-in for the authoritative vote
// store. It applies the submitted direction server-side, returns the
// resulting counters, and broadcasts a vote_updated event on the bus so
// other sessions reconcile, which is exactly what the real backend does.
// Used by the simulator and the end-to-end tests.
type MemoryBackend struct {
	mu       sync.Mutex
	subjects map[uuid.UUID]*backendSubject
	bus      *realtime.Bus
}

type backendSubject struct {
	up, down float64
	votes    map[uuid.UUID]backendVote
}

type backendVote struct {
	direction models.VoteDirection
	weight    float64
}

// NewMemoryBackend creates a backend. bus may be nil when no broadcast is
// wanted.
func NewMemoryBackend(bus *realtime.Bus) *MemoryBackend {
	return &MemoryBackend{
		subjects: make(map[uuid.UUID]*backendSubject),
		bus:      bus,
	}
}

// Seed sets a subject's starting counters.
func (b *MemoryBackend) Seed(subjectID uuid.UUID, up, down float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subjects[subjectID] = &backendSubject{
		up:    up,
		down:  down,
		votes: make(map[uuid.UUID]backendVote),
	}
}

// Counters returns the authoritative counters for a subject.
func (b *MemoryBackend) Counters(subjectID uuid.UUID) (up, down float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.subjects[subjectID]; ok {
		return s.up, s.down
	}
	return 0, 0
}

func (b *MemoryBackend) Submit(ctx context.Context, sub VoteSubmission) (*VoteConfirmation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	s, ok := b.subjects[sub.SubjectID]
	if !ok {
		b.mu.Unlock()
		return &VoteConfirmation{
			Success: false,
			Error:   fmt.Sprintf("unknown subject %s", sub.SubjectID),
		}, nil
	}

	// Drop the actor's previous contribution, then apply the declared
	// direction. The submitted state is absolute, not a delta, so
	// replays are idempotent.
	if prev, ok := s.votes[sub.ActorID]; ok {
		switch prev.direction {
		case models.VoteUp:
			s.up -= prev.weight
		case models.VoteDown:
			s.down -= prev.weight
		}
	}
	switch sub.Direction {
	case models.VoteUp:
		s.up += sub.Weight
	case models.VoteDown:
		s.down += sub.Weight
	}
	s.votes[sub.ActorID] = backendVote{direction: sub.Direction, weight: sub.Weight}

	conf := &VoteConfirmation{
		Success:      true,
		RawUpvotes:   s.up,
		RawDownvotes: s.down,
	}
	b.mu.Unlock()

	if b.bus != nil {
		origin := sub.ActorID
		b.bus.Publish(realtime.VoteUpdated{
			SubjectID:     sub.SubjectID,
			RawUpvotes:    conf.RawUpvotes,
			RawDownvotes:  conf.RawDownvotes,
			OriginActorID: &origin,
		})
	}
	return conf, nil
}
