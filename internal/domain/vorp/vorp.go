// Package vorp computes value over replacement for a single player.
package vorp

import (
	"errors"
	"fmt"

	"github.com/draftedge/draftedge/internal/domain/baseline"
	"github.com/draftedge/draftedge/internal/domain/model"
)

// ErrUnknownPosition marks a player whose position has no baseline entry.
// The error is fatal for that player record only: the player is excluded
// from the run and reported, never silently zeroed.
var ErrUnknownPosition = errors.New("unknown position")

// UnknownPositionError identifies the offending player and position.
type UnknownPositionError struct {
	PlayerID string
	Position string
}

func (e *UnknownPositionError) Error() string {
	return fmt.Sprintf("unknown position %q for player %s", e.Position, e.PlayerID)
}

func (e *UnknownPositionError) Unwrap() error { return ErrUnknownPosition }

// Compute returns the player's VORP record: max(0, points - baseline).
// Never negative.
func Compute(in model.PlayerScoreInput, table baseline.Table) (model.VORPRecord, error) {
	base, err := table.Points(in.Position)
	if err != nil {
		return model.VORPRecord{}, &UnknownPositionError{PlayerID: in.ID, Position: in.Position}
	}

	v := in.ProjectedPoints - base
	if v < 0 {
		v = 0
	}

	return model.VORPRecord{
		PlayerID: in.ID,
		Position: in.Position,
		VORP:     v,
	}, nil
}
