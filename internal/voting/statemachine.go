package voting

import (
	"time"

	"vote-engine/internal/models"
)

// Transition is the outcome of applying a vote intent to an actor's
// current vote state. Delta is the signed change to the canonical score;
// UpDelta and DownDelta split it across the two raw counters so callers
// can mutate them without re-deriving the direction change.
type Transition struct {
	State     models.ActorVoteState
	Delta     float64
	UpDelta   float64
	DownDelta float64
}

// Apply computes the new per-actor vote state and score deltas for a
// requested direction. Requested must be VoteUp or VoteDown; toggling off
// is expressed by repeating the active direction. Pure, no failure mode.
func Apply(current models.ActorVoteState, requested models.VoteDirection, weight float64, now time.Time) Transition {
	tr := Transition{State: current}
	tr.State.LastVoteAt = now

	switch {
	case current.Direction == requested:
		// Re-clicking the active direction toggles the vote off. Remove
		// the weight that was applied originally, not the fresh one, so
		// a reputation change mid-session cannot drift the counters.
		tr.State.Direction = models.VoteNone
		if requested == models.VoteUp {
			tr.UpDelta = -current.AppliedWeight
		} else {
			tr.DownDelta = -current.AppliedWeight
		}

	case current.Direction == models.VoteNone:
		tr.State.Direction = requested
		tr.State.AppliedWeight = weight
		if requested == models.VoteUp {
			tr.UpDelta = weight
		} else {
			tr.DownDelta = weight
		}

	default:
		// Reversal: drop the old side's applied weight, add the new
		// side's fresh weight.
		tr.State.Direction = requested
		tr.State.AppliedWeight = weight
		if requested == models.VoteUp {
			tr.DownDelta = -current.AppliedWeight
			tr.UpDelta = weight
		} else {
			tr.UpDelta = -current.AppliedWeight
			tr.DownDelta = weight
		}
	}

	tr.Delta = tr.UpDelta - tr.DownDelta
	return tr
}
