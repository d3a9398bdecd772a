// Package invariant validates global economic properties of a completed
// valuation set. The checker is stateless, never mutates its input and
// never auto-corrects: a failed invariant is a result, not an error.
package invariant

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/draftedge/draftedge/internal/domain/adjust"
	"github.com/draftedge/draftedge/internal/domain/model"
)

// Invariant names keyed into the report.
const (
	BudgetConservation = "budget_conservation"
	NonNegativity      = "non_negativity"
	Monotonicity       = "monotonicity"
	PositionalScarcity = "positional_scarcity"
	MaxBudgetShare     = "max_budget_share"
	PriceRange         = "price_range"
)

// counterexampleLimit caps per-invariant reporting to keep output bounded.
const counterexampleLimit = 25

// ErrMalformedInput marks a checker-usage bug, e.g. an empty valuation set.
// Failed invariants are reported, never returned as errors.
var ErrMalformedInput = errors.New("malformed checker input")

// Band is an inclusive fraction range for the scarcity check.
type Band struct {
	Min float64
	Max float64
}

// Params carries the league economics the checks run against.
type Params struct {
	TargetBudget   int
	RosterSlots    int
	Tolerance      float64
	TeamBudget     int
	MaxBudgetShare float64

	// StarterCounts are league-wide starters per position; positions
	// without a scarcity band are skipped by the scarcity check.
	StarterCounts map[string]int
	ScarcityBands map[string]Band
	PriceRanges   map[string]adjust.PriceRange
}

// Check runs every invariant independently and reports all outcomes, even
// when an early one fails.
func Check(valuations []model.Valuation, p Params) (model.InvariantReport, error) {
	if len(valuations) == 0 {
		return model.InvariantReport{}, fmt.Errorf("%w: empty valuation set", ErrMalformedInput)
	}
	if p.TargetBudget <= 0 || p.RosterSlots <= 0 || p.Tolerance <= 0 {
		return model.InvariantReport{}, fmt.Errorf("%w: target %d, slots %d, tolerance %g",
			ErrMalformedInput, p.TargetBudget, p.RosterSlots, p.Tolerance)
	}

	report := model.InvariantReport{
		Passed:  true,
		Results: make(map[string]model.InvariantResult, 6),
	}

	drafted := draftedPool(valuations, p.RosterSlots)

	report.Results[BudgetConservation] = checkBudget(drafted, p)
	report.Results[NonNegativity] = checkNonNegativity(valuations)
	report.Results[Monotonicity] = checkMonotonicity(valuations)
	report.Results[PositionalScarcity] = checkScarcity(valuations, drafted, p)
	report.Results[MaxBudgetShare] = checkBudgetShare(valuations, p)
	report.Results[PriceRange] = checkPriceRanges(valuations, p)

	for _, res := range report.Results {
		if !res.Passed {
			report.Passed = false
			break
		}
	}
	return report, nil
}

// draftedPool returns the top n valuations by intrinsic value (id
// tie-break), the set notionally bought at auction.
func draftedPool(valuations []model.Valuation, n int) []model.Valuation {
	sorted := make([]model.Valuation, len(valuations))
	copy(sorted, valuations)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].IntrinsicValue != sorted[j].IntrinsicValue {
			return sorted[i].IntrinsicValue > sorted[j].IntrinsicValue
		}
		return sorted[i].PlayerID < sorted[j].PlayerID
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

func checkBudget(drafted []model.Valuation, p Params) model.InvariantResult {
	total := 0
	for _, v := range drafted {
		total += v.IntrinsicValue
	}

	deviation := math.Abs(float64(total-p.TargetBudget)) / float64(p.TargetBudget)
	res := model.InvariantResult{
		Passed: deviation <= p.Tolerance,
		Message: fmt.Sprintf("top %d players sum to $%d against a $%d target (%.1f%% deviation, tolerance %.1f%%)",
			len(drafted), total, p.TargetBudget, deviation*100, p.Tolerance*100),
	}
	return res
}

func checkNonNegativity(valuations []model.Valuation) model.InvariantResult {
	res := model.InvariantResult{Passed: true, Message: "all values hold the $1 floor and confidence bounds"}
	for _, v := range valuations {
		var reason string
		switch {
		case v.IntrinsicValue < 1:
			reason = fmt.Sprintf("intrinsic $%d", v.IntrinsicValue)
		case v.MinBid < 1 || v.TargetBid < 1 || v.MaxBid < 1:
			reason = fmt.Sprintf("bids $%d/$%d/$%d", v.MinBid, v.TargetBid, v.MaxBid)
		case v.Confidence < 0 || v.Confidence > 1:
			reason = fmt.Sprintf("confidence %.2f", v.Confidence)
		default:
			continue
		}
		res.Passed = false
		if len(res.Counterexamples) < counterexampleLimit {
			res.Counterexamples = append(res.Counterexamples, fmt.Sprintf("%s (%s): %s", v.PlayerID, v.Name, reason))
		}
	}
	if !res.Passed {
		res.Message = fmt.Sprintf("%d players break the floor or confidence bounds", len(res.Counterexamples))
	}
	return res
}

// checkMonotonicity verifies that within a position, strictly more
// projected points never yields a lower intrinsic value. Every violating
// pair is a counterexample, capped at the reporting limit.
func checkMonotonicity(valuations []model.Valuation) model.InvariantResult {
	res := model.InvariantResult{Passed: true, Message: "within-position values are ordered by projected points"}

	byPos := make(map[string][]model.Valuation)
	for _, v := range valuations {
		byPos[v.Position] = append(byPos[v.Position], v)
	}

	violations := 0
	for _, pos := range sortedKeys(byPos) {
		players := byPos[pos]
		sort.Slice(players, func(i, j int) bool {
			if players[i].ProjectedPoints != players[j].ProjectedPoints {
				return players[i].ProjectedPoints > players[j].ProjectedPoints
			}
			return players[i].PlayerID < players[j].PlayerID
		})

		// Sweep in descending point order, tracking the cheapest player
		// with strictly more points than the current group.
		minAbove := math.MaxInt
		var minAbovePlayer model.Valuation
		i := 0
		for i < len(players) {
			// Group players with equal points.
			j := i
			groupMin, groupMinPlayer := math.MaxInt, players[i]
			for j < len(players) && players[j].ProjectedPoints == players[i].ProjectedPoints {
				v := players[j]
				if minAbove < math.MaxInt && v.IntrinsicValue > minAbove {
					violations++
					if len(res.Counterexamples) < counterexampleLimit {
						res.Counterexamples = append(res.Counterexamples, fmt.Sprintf(
							"%s: %s ($%d, %.1f pts) > %s ($%d, %.1f pts)",
							pos, v.PlayerID, v.IntrinsicValue, v.ProjectedPoints,
							minAbovePlayer.PlayerID, minAbovePlayer.IntrinsicValue, minAbovePlayer.ProjectedPoints))
					}
				}
				if v.IntrinsicValue < groupMin {
					groupMin, groupMinPlayer = v.IntrinsicValue, v
				}
				j++
			}
			if groupMin < minAbove {
				minAbove, minAbovePlayer = groupMin, groupMinPlayer
			}
			i = j
		}
	}

	if violations > 0 {
		res.Passed = false
		res.Message = fmt.Sprintf("%d monotonicity violations (showing up to %d)", violations, counterexampleLimit)
	}
	return res
}

func checkScarcity(valuations, drafted []model.Valuation, p Params) model.InvariantResult {
	res := model.InvariantResult{Passed: true, Message: "positional value shares inside configured bands"}

	totalDrafted := 0
	for _, v := range drafted {
		totalDrafted += v.IntrinsicValue
	}
	if totalDrafted == 0 {
		res.Passed = false
		res.Message = "drafted pool has zero total value"
		return res
	}

	byPos := make(map[string][]model.Valuation)
	for _, v := range valuations {
		byPos[v.Position] = append(byPos[v.Position], v)
	}

	for _, pos := range sortedKeys(p.ScarcityBands) {
		band := p.ScarcityBands[pos]
		starters := p.StarterCounts[pos]
		if starters == 0 {
			continue
		}

		players := byPos[pos]
		sort.Slice(players, func(i, j int) bool {
			if players[i].IntrinsicValue != players[j].IntrinsicValue {
				return players[i].IntrinsicValue > players[j].IntrinsicValue
			}
			return players[i].PlayerID < players[j].PlayerID
		})
		if starters > len(players) {
			starters = len(players)
		}

		posTotal := 0
		for _, v := range players[:starters] {
			posTotal += v.IntrinsicValue
		}
		share := float64(posTotal) / float64(totalDrafted)
		if share < band.Min || share > band.Max {
			res.Passed = false
			res.Counterexamples = append(res.Counterexamples, fmt.Sprintf(
				"%s: top-%d share %.1f%% outside [%.1f%%, %.1f%%]",
				pos, starters, share*100, band.Min*100, band.Max*100))
		}
	}

	if !res.Passed {
		res.Message = fmt.Sprintf("%d positions outside their scarcity bands", len(res.Counterexamples))
	}
	return res
}

func checkBudgetShare(valuations []model.Valuation, p Params) model.InvariantResult {
	maxAllowed := int(math.Floor(p.MaxBudgetShare * float64(p.TeamBudget)))
	res := model.InvariantResult{
		Passed:  true,
		Message: fmt.Sprintf("no player exceeds %.0f%% of a $%d team budget ($%d)", p.MaxBudgetShare*100, p.TeamBudget, maxAllowed),
	}

	for _, v := range valuations {
		if v.IntrinsicValue > maxAllowed {
			res.Passed = false
			if len(res.Counterexamples) < counterexampleLimit {
				res.Counterexamples = append(res.Counterexamples,
					fmt.Sprintf("%s (%s): $%d > $%d", v.PlayerID, v.Name, v.IntrinsicValue, maxAllowed))
			}
		}
	}
	if !res.Passed {
		res.Message = fmt.Sprintf("%d players exceed the %.0f%% budget share cap", len(res.Counterexamples), p.MaxBudgetShare*100)
	}
	return res
}

func checkPriceRanges(valuations []model.Valuation, p Params) model.InvariantResult {
	res := model.InvariantResult{Passed: true, Message: "all values inside positional soft ranges"}

	for _, v := range valuations {
		pr, ok := p.PriceRanges[v.Position]
		if !ok {
			continue
		}
		if v.IntrinsicValue < pr.Min || v.IntrinsicValue > pr.Max {
			res.Passed = false
			if len(res.Counterexamples) < counterexampleLimit {
				res.Counterexamples = append(res.Counterexamples,
					fmt.Sprintf("%s (%s): $%d outside %s range [$%d, $%d]",
						v.PlayerID, v.Name, v.IntrinsicValue, v.Position, pr.Min, pr.Max))
			}
		}
	}
	if !res.Passed {
		res.Message = fmt.Sprintf("%d players outside positional soft ranges", len(res.Counterexamples))
	}
	return res
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
