package config

import "sort"

// tierOrder lists tier keys from best to worst for the multiplier
// monotonicity rule.
var tierOrder = []string{TierElite, TierOne, TierTwo, TierThree, TierReplacement}

// Validate enforces the startup invariants of a league configuration.
// It returns an InvalidConfigError naming the first offending field.
func (c *Config) Validate() error {
	if c.NumTeams < 2 {
		return invalidf("num_teams", "must be at least 2, got %d", c.NumTeams)
	}
	if c.RosterSize < 1 {
		return invalidf("roster_size", "must be at least 1, got %d", c.RosterSize)
	}
	if c.AuctionBudget < c.RosterSize {
		// Each roster slot must afford the $1 floor.
		return invalidf("auction_budget", "budget %d cannot cover %d $1 roster slots", c.AuctionBudget, c.RosterSize)
	}
	if c.Workers < 1 {
		return invalidf("workers", "must be at least 1, got %d", c.Workers)
	}
	if c.CalibrationTolerance <= 0 || c.CalibrationTolerance >= 1 {
		return invalidf("calibration_tolerance", "must be in (0, 1), got %g", c.CalibrationTolerance)
	}
	if c.CalibrationMaxIterations < 1 {
		return invalidf("calibration_max_iterations", "must be at least 1, got %d", c.CalibrationMaxIterations)
	}
	if c.MaxBudgetShare <= 0 || c.MaxBudgetShare > 1 {
		return invalidf("max_budget_share", "must be in (0, 1], got %g", c.MaxBudgetShare)
	}
	if c.BlendThreshold < 0 {
		return invalidf("blend_threshold", "must be non-negative, got %g", c.BlendThreshold)
	}
	if c.BlendIntrinsicWeight < 0 || c.BlendIntrinsicWeight > 1 {
		return invalidf("blend_intrinsic_weight", "must be in [0, 1], got %g", c.BlendIntrinsicWeight)
	}
	if c.MinBidMultiplier <= 0 || c.MaxBidMultiplier <= 0 {
		return invalidf("min_bid_multiplier", "bid multipliers must be positive")
	}
	if c.MinBidMultiplier > c.MaxBidMultiplier {
		return invalidf("min_bid_multiplier", "min %g exceeds max %g", c.MinBidMultiplier, c.MaxBidMultiplier)
	}

	if len(c.ReplacementRanks) == 0 {
		return invalidf("replacement_ranks", "at least one position required")
	}
	for _, pos := range sortedPositions(c.ReplacementRanks) {
		if rank := c.ReplacementRanks[pos]; rank < 1 {
			return invalidf("replacement_ranks."+pos, "rank must be at least 1, got %d", rank)
		}
	}

	if err := c.validateTiers(); err != nil {
		return err
	}
	if err := c.validateStarters(); err != nil {
		return err
	}
	if err := c.validateBandsAndRanges(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTiers() error {
	for _, pos := range sortedPositions(c.ReplacementRanks) {
		cut, ok := c.TierCutoffs[pos]
		if !ok {
			return invalidf("tier_cutoffs."+pos, "missing cutoffs for position")
		}
		// Cutoffs must partition ranks with no gaps and no overlaps.
		if cut.Elite < 1 || cut.Tier1 <= cut.Elite || cut.Tier2 <= cut.Tier1 {
			return invalidf("tier_cutoffs."+pos, "cutoffs must satisfy 1 <= elite < tier1 < tier2, got %d/%d/%d",
				cut.Elite, cut.Tier1, cut.Tier2)
		}

		row, ok := c.MarketMultipliers[pos]
		if !ok {
			return invalidf("market_multipliers."+pos, "missing multipliers for position")
		}
		prev := 0.0
		for i, tier := range tierOrder {
			mult, ok := row[tier]
			if !ok {
				return invalidf("market_multipliers."+pos+"."+tier, "missing multiplier")
			}
			if mult <= 0 {
				return invalidf("market_multipliers."+pos+"."+tier, "must be positive, got %g", mult)
			}
			// Non-increasing down the tiers keeps within-position values
			// monotone in projected points.
			if i > 0 && mult > prev {
				return invalidf("market_multipliers."+pos+"."+tier, "multiplier %g exceeds better tier's %g", mult, prev)
			}
			prev = mult
		}
	}
	return nil
}

func (c *Config) validateStarters() error {
	total := 0
	for _, pos := range sortedPositions(c.StarterCounts) {
		count := c.StarterCounts[pos]
		if count < 0 {
			return invalidf("starter_counts."+pos, "must be non-negative, got %d", count)
		}
		if _, ok := c.ReplacementRanks[pos]; !ok {
			return invalidf("starter_counts."+pos, "unknown position")
		}
		total += count
	}
	if total > c.RosterSlots() {
		return invalidf("starter_counts", "total starters %d exceed %d roster slots", total, c.RosterSlots())
	}
	return nil
}

func (c *Config) validateBandsAndRanges() error {
	for _, pos := range sortedPositions(c.ScarcityBands) {
		band := c.ScarcityBands[pos]
		if _, ok := c.ReplacementRanks[pos]; !ok {
			return invalidf("scarcity_bands."+pos, "unknown position")
		}
		if band.Min < 0 || band.Max > 1 || band.Min > band.Max {
			return invalidf("scarcity_bands."+pos, "band [%g, %g] must satisfy 0 <= min <= max <= 1", band.Min, band.Max)
		}
	}
	for _, pos := range sortedPositions(c.PriceRanges) {
		pr := c.PriceRanges[pos]
		if _, ok := c.ReplacementRanks[pos]; !ok {
			return invalidf("price_ranges."+pos, "unknown position")
		}
		if pr.Min < 1 || pr.Min > pr.Max {
			return invalidf("price_ranges."+pos, "range [%d, %d] must satisfy 1 <= min <= max", pr.Min, pr.Max)
		}
	}
	return nil
}

// sortedPositions returns map keys in a stable order so validation errors
// are deterministic.
func sortedPositions[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
