// Package baseline builds the per-position replacement baseline table.
package baseline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/draftedge/draftedge/internal/domain/model"
)

// ErrUnknownPosition is returned when a position has no baseline entry.
var ErrUnknownPosition = errors.New("unknown position")

// Table maps a position to its replacement-level projection. It is fixed for
// one league configuration and rebuilt only when settings or the pool change.
type Table struct {
	points map[string]float64
}

// Points returns the replacement-level projection for a position.
func (t Table) Points(position string) (float64, error) {
	pts, ok := t.points[position]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPosition, position)
	}
	return pts, nil
}

// Has reports whether the table knows a position.
func (t Table) Has(position string) bool {
	_, ok := t.points[position]
	return ok
}

// Build derives the baseline table from the pool: for each configured
// position, the projection of the player at the replacement rank (descending
// points, id tie-break). A position with fewer players than its rank uses
// its lowest projection; a position absent from the pool gets baseline 0.
func Build(pool []model.PlayerScoreInput, replacementRanks map[string]int) Table {
	byPos := make(map[string][]model.PlayerScoreInput, len(replacementRanks))
	for _, p := range pool {
		if _, ok := replacementRanks[p.Position]; ok {
			byPos[p.Position] = append(byPos[p.Position], p)
		}
	}

	points := make(map[string]float64, len(replacementRanks))
	for pos, rank := range replacementRanks {
		players := byPos[pos]
		if len(players) == 0 {
			points[pos] = 0
			continue
		}
		sort.Slice(players, func(i, j int) bool {
			if players[i].ProjectedPoints != players[j].ProjectedPoints {
				return players[i].ProjectedPoints > players[j].ProjectedPoints
			}
			return players[i].ID < players[j].ID
		})
		idx := rank - 1
		if idx >= len(players) {
			idx = len(players) - 1
		}
		points[pos] = players[idx].ProjectedPoints
	}

	return Table{points: points}
}

// FromPoints builds a table directly from known baseline projections.
// Useful for tests and leagues that pin their own replacement levels.
func FromPoints(points map[string]float64) Table {
	copied := make(map[string]float64, len(points))
	for pos, pts := range points {
		copied[pos] = pts
	}
	return Table{points: copied}
}
