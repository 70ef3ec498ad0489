// Package remote is the boundary to the authoritative vote backend. The
// engine only ever talks to it through the Submitter interface; the HTTP
// client and the in-memory backend are the two provided implementations.
package remote

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vote-engine/internal/models"
)

// VoteSubmission is the request sent to the authoritative backend.
// Direction "none" communicates a vote removal.
type VoteSubmission struct {
	SubjectID       uuid.UUID            `json:"subjectId"`
	ActorID         uuid.UUID            `json:"actorId"`
	Direction       models.VoteDirection `json:"direction"`
	Weight          float64              `json:"weight"`
	ClientTimestamp time.Time            `json:"clientTimestamp"`
}

// VoteConfirmation carries the backend's authoritative counters. They
// replace the locally computed ones on success since they may already
// include concurrent votes from other actors.
type VoteConfirmation struct {
	Success      bool    `json:"success"`
	RawUpvotes   float64 `json:"rawUpvotes"`
	RawDownvotes float64 `json:"rawDownvotes"`
	Error        string  `json:"error,omitempty"`
}

// Submitter delivers a vote to the authoritative backend. Implementations
// must honor ctx cancellation and deadlines.
type Submitter interface {
	Submit(ctx context.Context, sub VoteSubmission) (*VoteConfirmation, error)
}
