// Package app provides the valuation engine that orchestrates the
// baseline, VORP, tiering, calibration, blending and invariant stages into
// one atomic run.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/draftedge/draftedge/internal/config"
	"github.com/draftedge/draftedge/internal/domain/adjust"
	"github.com/draftedge/draftedge/internal/domain/baseline"
	"github.com/draftedge/draftedge/internal/domain/blend"
	"github.com/draftedge/draftedge/internal/domain/calibrate"
	"github.com/draftedge/draftedge/internal/domain/invariant"
	"github.com/draftedge/draftedge/internal/domain/model"
	"github.com/draftedge/draftedge/internal/domain/tiers"
	"github.com/draftedge/draftedge/internal/domain/vorp"
	"github.com/draftedge/draftedge/pkg/logger"
	"github.com/draftedge/draftedge/pkg/metrics"
)

// ErrEmptyPool is returned when a run is invoked without any players.
var ErrEmptyPool = errors.New("empty player pool")

// Engine computes one valuation snapshot per Run. It holds no mutable
// state between runs: the configuration is copied at construction and every
// entity is recomputed from scratch.
type Engine struct {
	cfg     config.Config
	workers int
	logger  logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWorkers overrides the parallel fan-out width for per-player phases.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New constructs an Engine for one league configuration.
func New(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:     *cfg,
		workers: cfg.Workers,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}
	return e
}

// Run executes one full valuation over the pool. Either a complete,
// internally consistent snapshot is returned, or the run fails and nothing
// is published.
func (e *Engine) Run(ctx context.Context, pool []model.PlayerScoreInput) (*model.Snapshot, error) {
	start := time.Now()
	metrics.RecordRunStarted()

	if err := e.cfg.Validate(); err != nil {
		metrics.RecordRunFailure("invalid_config")
		return nil, err
	}
	if len(pool) == 0 {
		metrics.RecordRunFailure("empty_pool")
		return nil, ErrEmptyPool
	}

	e.logger.Info(ctx, "starting valuation run",
		logger.Int("players", len(pool)),
		logger.Int("target_budget", e.cfg.TargetBudget()),
		logger.Int("roster_slots", e.cfg.RosterSlots()),
	)

	table := baseline.Build(pool, e.cfg.ReplacementRanks)

	records, excluded, err := e.computeVORP(ctx, pool, table)
	if err != nil {
		metrics.RecordRunFailure("cancelled")
		return nil, err
	}
	if len(records) == 0 {
		metrics.RecordRunFailure("empty_pool")
		return nil, fmt.Errorf("%w: every player was excluded", ErrEmptyPool)
	}

	valuations := e.rankAndTier(pool, records)

	if err := e.applyAdjustments(valuations); err != nil {
		metrics.RecordRunFailure("adjustment_tables")
		return nil, err
	}

	result, err := e.calibrateValues(ctx, valuations)
	if err != nil {
		metrics.RecordRunFailure("calibration_diverged")
		e.logger.Error(ctx, "calibration failed", logger.Error(err))
		return nil, err
	}
	e.logger.Debug(ctx, "calibration converged",
		logger.Float64("factor", result.Factor),
		logger.Int("sum", result.Sum),
		logger.Int("iterations", result.Iterations),
	)

	e.publishQuotes(valuations, result.Factor)

	report, err := invariant.Check(valuations, e.invariantParams())
	if err != nil {
		metrics.RecordRunFailure("invariant_checker")
		return nil, fmt.Errorf("invariant check: %w", err)
	}

	// Published order: descending intrinsic value, id tie-break.
	sort.Slice(valuations, func(i, j int) bool {
		if valuations[i].IntrinsicValue != valuations[j].IntrinsicValue {
			return valuations[i].IntrinsicValue > valuations[j].IntrinsicValue
		}
		return valuations[i].PlayerID < valuations[j].PlayerID
	})

	snap := &model.Snapshot{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Factor:     result.Factor,
		Iterations: result.Iterations,
		Valuations: valuations,
		Excluded:   excluded,
		Report:     report,
	}

	metrics.UpdateCalibration(result.Iterations, result.Factor)
	metrics.UpdatePoolCounts(len(valuations), len(excluded))
	metrics.UpdateInvariantFailures(report.FailedCount())
	metrics.RecordRunDuration(time.Since(start).Seconds())

	e.logger.Info(ctx, "valuation run complete",
		logger.String("snapshot", snap.ID),
		logger.Int("valued", len(valuations)),
		logger.Int("excluded", len(excluded)),
		logger.Float64("factor", result.Factor),
		logger.Bool("invariants_passed", report.Passed),
	)

	return snap, nil
}

// computeVORP fans the per-player VORP computation out over the worker
// count and collects results behind a full barrier. Unknown positions land
// in the excluded list in input order; they never abort the run.
func (e *Engine) computeVORP(ctx context.Context, pool []model.PlayerScoreInput, table baseline.Table) (map[string]model.VORPRecord, []model.ExcludedPlayer, error) {
	type outcome struct {
		rec model.VORPRecord
		err error
	}
	outcomes := make([]outcome, len(pool))

	workers := e.workers
	if workers > len(pool) {
		workers = len(pool)
	}
	perWorker := len(pool) / workers

	done := make(chan struct{}, workers)
	for w := 0; w < workers; w++ {
		lo := w * perWorker
		hi := lo + perWorker
		if w == workers-1 {
			hi = len(pool)
		}
		go func(lo, hi int) {
			for i := lo; i < hi; i++ {
				rec, err := vorp.Compute(pool[i], table)
				outcomes[i] = outcome{rec: rec, err: err}
			}
			done <- struct{}{}
		}(lo, hi)
	}
	for w := 0; w < workers; w++ {
		select {
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("valuation cancelled: %w", ctx.Err())
		case <-done:
		}
	}

	records := make(map[string]model.VORPRecord, len(pool))
	var excluded []model.ExcludedPlayer
	for i, o := range outcomes {
		if o.err != nil {
			var upe *vorp.UnknownPositionError
			if errors.As(o.err, &upe) {
				excluded = append(excluded, model.ExcludedPlayer{Input: pool[i], Reason: o.err.Error()})
				continue
			}
			return nil, nil, o.err
		}
		records[pool[i].ID] = o.rec
	}
	return records, excluded, nil
}

// rankAndTier recomputes within-position ranks and tiers for the whole
// pool. Ranking is pool-relative, never carried over between runs.
func (e *Engine) rankAndTier(pool []model.PlayerScoreInput, records map[string]model.VORPRecord) []model.Valuation {
	byPos := make(map[string][]model.PlayerScoreInput)
	for _, p := range pool {
		if _, ok := records[p.ID]; ok {
			byPos[p.Position] = append(byPos[p.Position], p)
		}
	}

	var valuations []model.Valuation
	for pos, players := range byPos {
		cut := e.cfg.TierCutoffs[pos]
		cutoffs := tiers.Cutoffs{Elite: cut.Elite, Tier1: cut.Tier1, Tier2: cut.Tier2}
		for _, r := range tiers.RankPosition(players) {
			rec := records[r.Input.ID]
			valuations = append(valuations, model.Valuation{
				PlayerID:        r.Input.ID,
				Name:            r.Input.Name,
				Position:        pos,
				Team:            r.Input.Team,
				ProjectedPoints: r.Input.ProjectedPoints,
				VORP:            rec.VORP,
				PositionRank:    r.Rank,
				Tier:            tiers.Classify(r.Rank, rec.VORP, cutoffs),
				MarketPrice:     r.Input.MarketPrice,
				Confidence:      blend.Confidence(r.Input.ProjectionSources, r.Input.ProjectionCV),
			})
		}
	}

	// Map iteration order is random; restore a deterministic working order.
	sort.Slice(valuations, func(i, j int) bool {
		return valuations[i].PlayerID < valuations[j].PlayerID
	})
	return valuations
}

// applyAdjustments computes pre-calibration base and adjusted dollars.
func (e *Engine) applyAdjustments(valuations []model.Valuation) error {
	ranges := make(map[string]adjust.PriceRange, len(e.cfg.PriceRanges))
	for pos, pr := range e.cfg.PriceRanges {
		ranges[pos] = adjust.PriceRange{Min: pr.Min, Max: pr.Max}
	}
	tables := adjust.NewTables(e.cfg.MarketMultipliers, ranges)

	totalVORP := draftableVORP(valuations, e.cfg.RosterSlots())
	discretionary := e.cfg.DiscretionaryBudget()

	for i := range valuations {
		v := &valuations[i]
		mult, err := tables.Multiplier(v.Position, v.Tier)
		if err != nil {
			return err
		}
		v.BaseValue = adjust.BaseValue(v.VORP, totalVORP, discretionary)
		v.AdjustedValue = adjust.Adjusted(v.BaseValue, mult)
	}
	return nil
}

// draftableVORP sums VORP over the top rosterSlots players by VORP, the
// share denominator for the discretionary budget.
func draftableVORP(valuations []model.Valuation, slots int) float64 {
	sorted := make([]model.Valuation, len(valuations))
	copy(sorted, valuations)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].VORP != sorted[j].VORP {
			return sorted[i].VORP > sorted[j].VORP
		}
		return sorted[i].PlayerID < sorted[j].PlayerID
	})
	if slots > len(sorted) {
		slots = len(sorted)
	}

	total := 0.0
	for _, v := range sorted[:slots] {
		total += v.VORP
	}
	return total
}

// calibrateValues solves the budget scalar over the drafted pool (top
// rosterSlots players by adjusted value).
func (e *Engine) calibrateValues(ctx context.Context, valuations []model.Valuation) (calibrate.Result, error) {
	sorted := make([]model.Valuation, len(valuations))
	copy(sorted, valuations)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].AdjustedValue != sorted[j].AdjustedValue {
			return sorted[i].AdjustedValue > sorted[j].AdjustedValue
		}
		return sorted[i].PlayerID < sorted[j].PlayerID
	})

	slots := e.cfg.RosterSlots()
	if slots > len(sorted) {
		slots = len(sorted)
	}
	drafted := make([]float64, slots)
	for i := 0; i < slots; i++ {
		drafted[i] = sorted[i].AdjustedValue
	}

	e.logger.Debug(ctx, "solving calibration factor",
		logger.Int("drafted_pool", len(drafted)),
		logger.Float64("tolerance", e.cfg.CalibrationTolerance),
	)

	return calibrate.Solve(drafted, e.cfg.TargetBudget(), e.cfg.CalibrationTolerance, e.cfg.CalibrationMaxIterations)
}

// publishQuotes applies the solved factor uniformly and blends market
// prices into the published quotes.
func (e *Engine) publishQuotes(valuations []model.Valuation, factor float64) {
	params := blend.Params{
		Threshold:        e.cfg.BlendThreshold,
		IntrinsicWeight:  e.cfg.BlendIntrinsicWeight,
		MinBidMultiplier: e.cfg.MinBidMultiplier,
		MaxBidMultiplier: e.cfg.MaxBidMultiplier,
	}

	for i := range valuations {
		v := &valuations[i]
		v.IntrinsicValue = calibrate.Apply(v.AdjustedValue, factor)
		q := blend.Publish(v.IntrinsicValue, v.MarketPrice, params)
		v.TargetBid = q.TargetBid
		v.MinBid = q.MinBid
		v.MaxBid = q.MaxBid
		v.MarketPrice = q.MarketPrice
		v.Edge = q.Edge
	}
}

func (e *Engine) invariantParams() invariant.Params {
	bands := make(map[string]invariant.Band, len(e.cfg.ScarcityBands))
	for pos, b := range e.cfg.ScarcityBands {
		bands[pos] = invariant.Band{Min: b.Min, Max: b.Max}
	}
	ranges := make(map[string]adjust.PriceRange, len(e.cfg.PriceRanges))
	for pos, pr := range e.cfg.PriceRanges {
		ranges[pos] = adjust.PriceRange{Min: pr.Min, Max: pr.Max}
	}

	return invariant.Params{
		TargetBudget:   e.cfg.TargetBudget(),
		RosterSlots:    e.cfg.RosterSlots(),
		Tolerance:      e.cfg.CalibrationTolerance,
		TeamBudget:     e.cfg.AuctionBudget,
		MaxBudgetShare: e.cfg.MaxBudgetShare,
		StarterCounts:  e.cfg.StarterCounts,
		ScarcityBands:  bands,
		PriceRanges:    ranges,
	}
}
