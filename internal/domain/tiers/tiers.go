// Package tiers ranks players within a position and assigns discrete tiers.
package tiers

import (
	"sort"

	"github.com/draftedge/draftedge/internal/domain/model"
)

// Cutoffs are the upper rank bounds of the elite, tier1 and tier2 buckets.
// Rank ranges are gapless: [1, Elite], (Elite, Tier1], (Tier1, Tier2];
// beyond Tier2 a player is tier3 while VORP stays positive, else replacement.
type Cutoffs struct {
	Elite int
	Tier1 int
	Tier2 int
}

// Ranked is one player with their 1-based within-position rank.
type Ranked struct {
	Input model.PlayerScoreInput
	Rank  int
}

// RankPosition sorts one position's players by descending projected points
// (stable tie-break on ascending id, so reruns are byte-identical) and
// assigns 1-based competition ranks: players with equal points share the
// rank of the first member of their group. A tie group therefore never
// straddles a tier cutoff, and identical projections always land in the
// same tier. The input slice is not modified.
func RankPosition(players []model.PlayerScoreInput) []Ranked {
	sorted := make([]model.PlayerScoreInput, len(players))
	copy(sorted, players)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ProjectedPoints != sorted[j].ProjectedPoints {
			return sorted[i].ProjectedPoints > sorted[j].ProjectedPoints
		}
		return sorted[i].ID < sorted[j].ID
	})

	ranked := make([]Ranked, len(sorted))
	for i, p := range sorted {
		rank := i + 1
		if i > 0 && p.ProjectedPoints == sorted[i-1].ProjectedPoints {
			rank = ranked[i-1].Rank
		}
		ranked[i] = Ranked{Input: p, Rank: rank}
	}
	return ranked
}

// Classify maps a within-position rank to a tier. Ranking is pool-relative,
// so every run reclassifies the whole position.
func Classify(rank int, vorp float64, cut Cutoffs) model.Tier {
	switch {
	case rank <= cut.Elite:
		return model.TierElite
	case rank <= cut.Tier1:
		return model.TierOne
	case rank <= cut.Tier2:
		return model.TierTwo
	case vorp > 0:
		return model.TierThree
	default:
		return model.TierReplacement
	}
}
