// Package blend turns a calibrated intrinsic value into the published
// price, bid range and edge, optionally blending an observed market price.
package blend

import "math"

// Confidence shape constants: source agreement saturates at four sources,
// and a coefficient of variation of 0.5 or worse zeroes the agreement term.
const (
	sourceSaturation = 4
	cvCeiling        = 0.5
	sourceTermWeight = 0.6
	cvTermWeight     = 0.4
)

// Params are the config-tunable blending knobs.
type Params struct {
	// Threshold is the relative deviation below which the intrinsic value
	// is trusted as-is.
	Threshold float64

	// IntrinsicWeight is the intrinsic share of the blend when the
	// deviation exceeds Threshold.
	IntrinsicWeight float64

	// Bid range multipliers applied to the intrinsic value.
	MinBidMultiplier float64
	MaxBidMultiplier float64
}

// Quote is the published pricing for one player.
type Quote struct {
	TargetBid   int
	MinBid      int
	MaxBid      int
	MarketPrice int
	Edge        int
}

// Publish produces the published quote for an intrinsic value and an
// optional external market price (0 means none observed).
func Publish(intrinsic, externalMarket int, p Params) Quote {
	q := Quote{
		TargetBid:   intrinsic,
		MinBid:      atLeastOne(math.Round(float64(intrinsic) * p.MinBidMultiplier)),
		MaxBid:      atLeastOne(math.Round(float64(intrinsic) * p.MaxBidMultiplier)),
		MarketPrice: intrinsic,
	}
	if q.MinBid > q.MaxBid {
		q.MinBid = q.MaxBid
	}

	if externalMarket > 0 {
		deviation := math.Abs(float64(externalMarket-intrinsic)) / float64(intrinsic)
		if deviation >= p.Threshold {
			blended := p.IntrinsicWeight*float64(intrinsic) + (1-p.IntrinsicWeight)*float64(externalMarket)
			q.MarketPrice = atLeastOne(math.Round(blended))
		}
	}

	q.Edge = intrinsic - q.MarketPrice
	return q
}

// Confidence collapses projection-source agreement into [0.5, 1.0]. It is
// display-only and never feeds back into price. Zero sources is treated as
// a single source; a negative cv as zero.
func Confidence(sources int, cv float64) float64 {
	if sources < 1 {
		sources = 1
	}
	if sources > sourceSaturation {
		sources = sourceSaturation
	}
	if cv < 0 {
		cv = 0
	}

	s := float64(sources) / sourceSaturation
	v := 1 - math.Min(cv/cvCeiling, 1)

	return 0.5 + 0.5*(sourceTermWeight*s+cvTermWeight*v)
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}
