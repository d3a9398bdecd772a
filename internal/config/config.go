// Package config defines the league configuration and loading hooks.
//
// Conventions:
// - All tuning tables are data here, never code: swapping a profile must not
//   require recompiling any engine logic.
// - Provide New() to build a Config with defaults; Load() layers file/env.
// - Components receive the Config as an immutable value per run and must not
//   read ambient state.
package config

import (
	"runtime"
)

// Tier names used as keys in the market multiplier tables.
const (
	TierElite       = "elite"
	TierOne         = "tier1"
	TierTwo         = "tier2"
	TierThree       = "tier3"
	TierReplacement = "replacement"
)

// TierCutoffs are the upper rank bounds of the first three tiers at a
// position: ranks 1..Elite are elite, Elite+1..Tier1 are tier1,
// Tier1+1..Tier2 are tier2. Ranks beyond Tier2 fall to tier3 while the
// player still carries positive VORP, else replacement.
type TierCutoffs struct {
	Elite int `koanf:"elite"`
	Tier1 int `koanf:"tier1"`
	Tier2 int `koanf:"tier2"`
}

// Band is an inclusive fraction range used by the positional scarcity check.
type Band struct {
	Min float64 `koanf:"min"`
	Max float64 `koanf:"max"`
}

// PriceRange is a soft dollar range for one position. It is only consulted
// by the invariant checker; clamping at compute time would mask calibration
// errors.
type PriceRange struct {
	Min int `koanf:"min"`
	Max int `koanf:"max"`
}

// Config contains one league's full valuation configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// NumTeams, AuctionBudget (per team) and RosterSize (per team) define
	// the league economy: targetBudget = NumTeams * AuctionBudget and
	// rosterSlots = NumTeams * RosterSize.
	NumTeams      int `koanf:"num_teams"`
	AuctionBudget int `koanf:"auction_budget"`
	RosterSize    int `koanf:"roster_size"`

	// Workers bounds the parallel per-player phases of a run.
	Workers int `koanf:"workers"`

	// CalibrationTolerance is the relative budget tolerance epsilon;
	// CalibrationMaxIterations caps the bisection loop.
	CalibrationTolerance     float64 `koanf:"calibration_tolerance"`
	CalibrationMaxIterations int     `koanf:"calibration_max_iterations"`

	// MaxBudgetShare caps any single player's value as a fraction of one
	// team's AuctionBudget (invariant check only).
	MaxBudgetShare float64 `koanf:"max_budget_share"`

	// BlendThreshold is the relative deviation above which an external
	// market price is blended in; BlendIntrinsicWeight is the intrinsic
	// share of that blend.
	BlendThreshold       float64 `koanf:"blend_threshold"`
	BlendIntrinsicWeight float64 `koanf:"blend_intrinsic_weight"`

	// Bid range multipliers applied to the intrinsic value.
	MinBidMultiplier float64 `koanf:"min_bid_multiplier"`
	MaxBidMultiplier float64 `koanf:"max_bid_multiplier"`

	// StarterCounts are league-wide starter slots per position, flex shares
	// included. Used by the positional scarcity check.
	StarterCounts map[string]int `koanf:"starter_counts"`

	// ReplacementRanks give the within-position rank whose projection
	// defines replacement level. Its key set is the set of known positions.
	ReplacementRanks map[string]int `koanf:"replacement_ranks"`

	// TierCutoffs per position.
	TierCutoffs map[string]TierCutoffs `koanf:"tier_cutoffs"`

	// MarketMultipliers map position -> tier -> market bias multiplier.
	MarketMultipliers map[string]map[string]float64 `koanf:"market_multipliers"`

	// PriceRanges per position (invariant check only).
	PriceRanges map[string]PriceRange `koanf:"price_ranges"`

	// ScarcityBands per position: the allowed fraction of total drafted
	// value held by the position's top starters.
	ScarcityBands map[string]Band `koanf:"scarcity_bands"`

	// SnapshotDB is a sqlite path for snapshot recording; empty disables it.
	SnapshotDB string `koanf:"snapshot_db"`
}

// TargetBudget returns the league-wide auction budget.
func (c *Config) TargetBudget() int { return c.NumTeams * c.AuctionBudget }

// RosterSlots returns the league-wide number of drafted players.
func (c *Config) RosterSlots() int { return c.NumTeams * c.RosterSize }

// DiscretionaryBudget returns the budget left above the $1-per-slot floor.
func (c *Config) DiscretionaryBudget() int { return c.TargetBudget() - c.RosterSlots() }

// Positions returns the known position set (the replacement table's keys).
func (c *Config) Positions() []string {
	out := make([]string, 0, len(c.ReplacementRanks))
	for pos := range c.ReplacementRanks {
		out = append(out, pos)
	}
	return out
}

// New creates a Config with defaults for a standard 12-team, $200,
// 16-slot league. The table values are the calibrated defaults of the
// valuation model; leagues override them via Load.
func New() *Config {
	c := &Config{
		LogLevel:                 "info",
		NumTeams:                 12,
		AuctionBudget:            200,
		RosterSize:               16,
		Workers:                  runtime.NumCPU(),
		CalibrationTolerance:     0.05,
		CalibrationMaxIterations: 50,
		MaxBudgetShare:           0.40,
		BlendThreshold:           0.20,
		BlendIntrinsicWeight:     0.70,
		MinBidMultiplier:         0.85,
		MaxBidMultiplier:         1.15,
		StarterCounts: map[string]int{
			"QB": 12, "RB": 30, "WR": 36, "TE": 12, "DST": 12, "K": 12,
		},
		ReplacementRanks: map[string]int{
			"QB": 15, "RB": 48, "WR": 60, "TE": 18, "DST": 14, "K": 13,
		},
		TierCutoffs: map[string]TierCutoffs{
			"QB":  {Elite: 2, Tier1: 6, Tier2: 12},
			"RB":  {Elite: 3, Tier1: 8, Tier2: 20},
			"WR":  {Elite: 3, Tier1: 10, Tier2: 24},
			"TE":  {Elite: 2, Tier1: 5, Tier2: 12},
			"DST": {Elite: 1, Tier1: 3, Tier2: 8},
			"K":   {Elite: 1, Tier1: 3, Tier2: 8},
		},
		MarketMultipliers: defaultMultipliers(),
		PriceRanges: map[string]PriceRange{
			"QB":  {Min: 1, Max: 50},
			"RB":  {Min: 1, Max: 85},
			"WR":  {Min: 1, Max: 75},
			"TE":  {Min: 1, Max: 45},
			"DST": {Min: 1, Max: 10},
			"K":   {Min: 1, Max: 8},
		},
		ScarcityBands: map[string]Band{
			"QB":  {Min: 0.04, Max: 0.12},
			"RB":  {Min: 0.40, Max: 0.56},
			"WR":  {Min: 0.28, Max: 0.44},
			"TE":  {Min: 0.03, Max: 0.11},
			"DST": {Min: 0.002, Max: 0.04},
			"K":   {Min: 0.002, Max: 0.04},
		},
	}
	return c
}

// defaultMultipliers resolves the default position x tier grid from the
// model's position bias and tier premium factors.
func defaultMultipliers() map[string]map[string]float64 {
	positionBias := map[string]float64{
		"QB": 0.90, "RB": 1.15, "WR": 1.00, "TE": 0.95, "DST": 0.50, "K": 0.45,
	}
	tierPremium := map[string]float64{
		TierElite:       1.20,
		TierOne:         1.10,
		TierTwo:         1.00,
		TierThree:       0.90,
		TierReplacement: 0.75,
	}

	grid := make(map[string]map[string]float64, len(positionBias))
	for pos, bias := range positionBias {
		row := make(map[string]float64, len(tierPremium))
		for tier, premium := range tierPremium {
			row[tier] = bias * premium
		}
		grid[pos] = row
	}
	return grid
}
