package domain

// VoteDirection is the direction of a single vote.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Valid reports whether d is exactly "up" or "down".
func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// Delta returns the change a vote applies to a vote count.
func (d VoteDirection) Delta() int {
	switch d {
	case VoteUp:
		return 1
	case VoteDown:
		return -1
	default:
		return 0
	}
}
