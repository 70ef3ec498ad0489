package models

// VoteDirection represents the direction of a vote.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
	VoteNone VoteDirection = "none" // No active vote; also sent to the backend for removals
)

// IsVote reports whether the direction is an actual vote intent. Toggling
// a vote off is requested by repeating the active direction, never by
// submitting VoteNone.
func (d VoteDirection) IsVote() bool {
	return d == VoteUp || d == VoteDown
}

// ParseVoteDirection validates a wire-format direction string.
func ParseVoteDirection(s string) (VoteDirection, bool) {
	switch VoteDirection(s) {
	case VoteUp:
		return VoteUp, true
	case VoteDown:
		return VoteDown, true
	case VoteNone:
		return VoteNone, true
	}
	return VoteNone, false
}
