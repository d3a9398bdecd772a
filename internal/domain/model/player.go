// Package model contains domain models passed between layers.
package model

import "time"

// PlayerScoreInput is one player's aggregated projection as supplied by the
// upstream aggregator. Immutable for the duration of a valuation run.
type PlayerScoreInput struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Position        string  `json:"position"`
	Team            string  `json:"team"`
	ProjectedPoints float64 `json:"projected_points"`

	// MarketPrice is an externally observed auction price; 0 means none.
	MarketPrice int `json:"market_price,omitempty"`

	// ADP is the average draft position; 0 means unknown.
	ADP float64 `json:"adp,omitempty"`

	// ProjectionSources counts the upstream sources that agreed on the
	// projection; 0 is treated as a single source.
	ProjectionSources int `json:"projection_sources,omitempty"`

	// ProjectionCV is the coefficient of variation across sources.
	ProjectionCV float64 `json:"projection_cv,omitempty"`
}

// VORPRecord is a player's value over the replacement baseline. Derived once
// per run, never mutated.
type VORPRecord struct {
	PlayerID string  `json:"player_id"`
	Position string  `json:"position"`
	VORP     float64 `json:"vorp"`
}

// Tier is a discrete quality bucket assigned from within-position rank.
type Tier string

// Tier values, best to worst.
const (
	TierElite       Tier = "elite"
	TierOne         Tier = "tier1"
	TierTwo         Tier = "tier2"
	TierThree       Tier = "tier3"
	TierReplacement Tier = "replacement"
)

// Tiers lists all tiers from best to worst.
func Tiers() []Tier {
	return []Tier{TierElite, TierOne, TierTwo, TierThree, TierReplacement}
}

// Valuation is one player's calibrated auction price plus the intermediate
// values needed to audit how it was produced.
type Valuation struct {
	PlayerID        string  `json:"player_id"`
	Name            string  `json:"name"`
	Position        string  `json:"position"`
	Team            string  `json:"team"`
	ProjectedPoints float64 `json:"projected_points"`
	VORP            float64 `json:"vorp"`
	PositionRank    int     `json:"position_rank"`
	Tier            Tier    `json:"tier"`

	// BaseValue and AdjustedValue are pre-calibration dollars, kept for audit.
	BaseValue     float64 `json:"base_value"`
	AdjustedValue float64 `json:"adjusted_value"`

	IntrinsicValue int     `json:"intrinsic_value"`
	TargetBid      int     `json:"target_bid"`
	MinBid         int     `json:"min_bid"`
	MaxBid         int     `json:"max_bid"`
	MarketPrice    int     `json:"market_price"`
	Edge           int     `json:"edge"`
	Confidence     float64 `json:"confidence"`
}

// ExcludedPlayer is an input dropped from the run with the reason why.
type ExcludedPlayer struct {
	Input  PlayerScoreInput `json:"input"`
	Reason string           `json:"reason"`
}

// InvariantResult is the outcome of one invariant check.
type InvariantResult struct {
	Passed          bool     `json:"passed"`
	Message         string   `json:"message"`
	Counterexamples []string `json:"counterexamples,omitempty"`
}

// InvariantReport aggregates all invariant checks over one valuation set.
// A failed invariant is a result, not an error; the report never feeds back
// into valuation.
type InvariantReport struct {
	Passed  bool                       `json:"passed"`
	Results map[string]InvariantResult `json:"results"`
}

// FailedCount returns the number of failed invariants.
func (r InvariantReport) FailedCount() int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed {
			n++
		}
	}
	return n
}

// Snapshot is the atomic output of one valuation run: either the whole set
// is published together with its invariant report, or the run failed and no
// snapshot exists.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Factor is the solved calibration scalar; Iterations the bisection
	// steps spent solving it.
	Factor     float64 `json:"factor"`
	Iterations int     `json:"iterations"`

	Valuations []Valuation      `json:"valuations"`
	Excluded   []ExcludedPlayer `json:"excluded,omitempty"`
	Report     InvariantReport  `json:"report"`
}
