package models

import (
	"time"

	"github.com/google/uuid"
)

// Subject is a votable entity (a post or a comment). The raw counters are
// authoritative once confirmed by the backend; they hold weighted sums, so
// they are floats rather than plain tallies.
type Subject struct {
	ID               uuid.UUID
	CommunityID      uuid.UUID
	RawUpvotes       float64
	RawDownvotes     float64
	ControversyScore float64
	LoadedAt         time.Time
}

// CanonicalScore is the backend-confirmed weighted score.
func (s *Subject) CanonicalScore() float64 {
	return s.RawUpvotes - s.RawDownvotes
}

// ActorVoteState tracks a single actor's relationship to a single subject.
// Direction None is a real state, not an absent record. AppliedWeight is
// the weight that produced the current direction and is what must be
// removed to reverse the vote, even if the actor's reputation changed
// since it was applied.
type ActorVoteState struct {
	Direction     VoteDirection
	AppliedWeight float64
	LastVoteAt    time.Time
}

// ActorProfile is the voting user as supplied by the identity service.
type ActorProfile struct {
	ID         uuid.UUID
	Reputation int
	IsTrusted  bool
}
