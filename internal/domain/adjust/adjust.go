// Package adjust holds the market-bias adjustment tables and the
// pre-calibration base value computation.
package adjust

import (
	"errors"
	"fmt"

	"github.com/draftedge/draftedge/internal/domain/model"
)

// ErrMissingEntry is returned when the tables lack a (position, tier) cell.
// Config validation makes this unreachable for validated leagues.
var ErrMissingEntry = errors.New("missing adjustment table entry")

// PriceRange is a soft dollar range consulted only by the invariant checker.
type PriceRange struct {
	Min int
	Max int
}

// Tables is a pure lookup resolved once per run from configuration.
type Tables struct {
	multipliers map[string]map[model.Tier]float64
	ranges      map[string]PriceRange
}

// NewTables builds the lookup from configuration maps (tier keyed by its
// string name).
func NewTables(multipliers map[string]map[string]float64, ranges map[string]PriceRange) Tables {
	resolved := make(map[string]map[model.Tier]float64, len(multipliers))
	for pos, row := range multipliers {
		tr := make(map[model.Tier]float64, len(row))
		for tier, mult := range row {
			tr[model.Tier(tier)] = mult
		}
		resolved[pos] = tr
	}

	copied := make(map[string]PriceRange, len(ranges))
	for pos, pr := range ranges {
		copied[pos] = pr
	}

	return Tables{multipliers: resolved, ranges: copied}
}

// Multiplier returns the market bias multiplier for a (position, tier) cell.
func (t Tables) Multiplier(position string, tier model.Tier) (float64, error) {
	row, ok := t.multipliers[position]
	if !ok {
		return 0, fmt.Errorf("%w: position %q", ErrMissingEntry, position)
	}
	mult, ok := row[tier]
	if !ok {
		return 0, fmt.Errorf("%w: position %q tier %q", ErrMissingEntry, position, tier)
	}
	return mult, nil
}

// Range returns the soft price range for a position, if configured.
func (t Tables) Range(position string) (PriceRange, bool) {
	pr, ok := t.ranges[position]
	return pr, ok
}

// BaseValue converts a player's VORP into pre-calibration dollars: the $1
// roster floor plus the player's share of the discretionary budget. Players
// at or below replacement hold only the floor.
func BaseValue(vorp, totalVORP float64, discretionary int) float64 {
	if vorp <= 0 || totalVORP <= 0 {
		return 1
	}
	return 1 + vorp/totalVORP*float64(discretionary)
}

// Adjusted applies the market multiplier to a base value.
func Adjusted(baseValue, multiplier float64) float64 {
	return baseValue * multiplier
}
