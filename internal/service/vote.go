package service

import (
	"github.com/stackit/stackit-server/internal/domain"
	domainerrors "github.com/stackit/stackit-server/internal/errors"
)

// Vote directions accepted by the vote operations.
const (
	VoteUp   = string(domain.VoteUp)
	VoteDown = string(domain.VoteDown)
)

// voteDelta maps a vote direction onto the change it applies.
func voteDelta(direction string) (int, error) {
	d := domain.VoteDirection(direction)
	if !d.Valid() {
		return 0, domainerrors.ValidationWithDetails("Invalid vote direction",
			map[string]string{"direction": `must be "up" or "down"`})
	}
	return d.Delta(), nil
}
