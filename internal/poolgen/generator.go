// Package poolgen generates synthetic player pools with realistic
// per-position point distributions, for scenario tests and demo runs.
package poolgen

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/draftedge/draftedge/internal/domain/model"
)

// defaultSeed keeps generated pools reproducible unless overridden.
const defaultSeed = 42

// PositionProfile shapes one position's point curve: points decay
// exponentially from Top toward Replacement with rank.
type PositionProfile struct {
	Count       int
	Top         float64
	Replacement float64
	Decline     float64
}

// DefaultProfiles returns a 300-player, 6-position distribution matching a
// standard 12-team draft-eligible pool.
func DefaultProfiles() map[string]PositionProfile {
	return map[string]PositionProfile{
		"QB":  {Count: 28, Top: 360, Replacement: 262.3, Decline: 4.5},
		"RB":  {Count: 84, Top: 320, Replacement: 104.1, Decline: 3.5},
		"WR":  {Count: 104, Top: 340, Replacement: 148.4, Decline: 2.5},
		"TE":  {Count: 36, Top: 260, Replacement: 135.7, Decline: 5.0},
		"DST": {Count: 24, Top: 130, Replacement: 111.7, Decline: 1.2},
		"K":   {Count: 24, Top: 160, Replacement: 146.6, Decline: 0.9},
	}
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSeed fixes the rng seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithProfiles replaces the default position profiles.
func WithProfiles(profiles map[string]PositionProfile) Option {
	return func(g *Generator) {
		if len(profiles) > 0 {
			g.profiles = profiles
		}
	}
}

// WithMarketPrices attaches jittered external market prices to roughly the
// given fraction of players, exercising the blend path.
func WithMarketPrices(fraction float64) Option {
	return func(g *Generator) {
		if fraction >= 0 && fraction <= 1 {
			g.marketFraction = fraction
		}
	}
}

// WithUUIDs replaces the deterministic position-rank ids with random uuids.
func WithUUIDs() Option {
	return func(g *Generator) {
		g.useUUIDs = true
	}
}

// Generator builds synthetic pools.
type Generator struct {
	profiles       map[string]PositionProfile
	seed           int64
	marketFraction float64
	useUUIDs       bool
}

// New creates a Generator with the default profiles and seed.
func New(opts ...Option) *Generator {
	g := &Generator{
		profiles: DefaultProfiles(),
		seed:     defaultSeed,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Pool generates the full synthetic pool. Output is deterministic for a
// fixed seed and profile set.
func (g *Generator) Pool() []model.PlayerScoreInput {
	rng := rand.New(rand.NewSource(g.seed)) //nolint:gosec // deterministic pools for reproducible runs

	positions := make([]string, 0, len(g.profiles))
	for pos := range g.profiles {
		positions = append(positions, pos)
	}
	sort.Strings(positions)

	var pool []model.PlayerScoreInput
	adp := 1.0
	for _, pos := range positions {
		profile := g.profiles[pos]
		for rank := 1; rank <= profile.Count; rank++ {
			decay := math.Exp(-float64(rank) / profile.Decline)
			points := profile.Replacement + (profile.Top-profile.Replacement)*decay
			if points < 0 {
				points = 0
			}

			id := fmt.Sprintf("%s%d", strings.ToLower(pos), rank)
			if g.useUUIDs {
				id = uuid.NewString()
			}

			p := model.PlayerScoreInput{
				ID:                id,
				Name:              fmt.Sprintf("%s%d", pos, rank),
				Position:          pos,
				Team:              "TM",
				ProjectedPoints:   points,
				ADP:               adp,
				ProjectionSources: 2 + rank%3,
				ProjectionCV:      0.05 + 0.01*float64(rank%5),
			}
			if g.marketFraction > 0 && rng.Float64() < g.marketFraction {
				jitter := 0.8 + 0.4*rng.Float64()
				p.MarketPrice = int(math.Max(1, math.Round(points/10*jitter)))
			}

			pool = append(pool, p)
			adp++
		}
	}
	return pool
}
