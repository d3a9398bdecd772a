package invariant_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/draftedge/draftedge/internal/domain/adjust"
	"github.com/draftedge/draftedge/internal/domain/invariant"
	"github.com/draftedge/draftedge/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func val(id string, points float64, intrinsic int) model.Valuation {
	return model.Valuation{
		PlayerID:        id,
		Name:            id,
		Position:        "RB",
		ProjectedPoints: points,
		IntrinsicValue:  intrinsic,
		TargetBid:       intrinsic,
		MinBid:          intrinsic,
		MaxBid:          intrinsic,
		Confidence:      0.8,
	}
}

// healthySet sums its top four to exactly the $100 target.
func healthySet() []model.Valuation {
	return []model.Valuation{
		val("rb1", 300, 35),
		val("rb2", 250, 30),
		val("rb3", 200, 20),
		val("rb4", 150, 15),
		val("rb5", 100, 1),
	}
}

func healthyParams() invariant.Params {
	return invariant.Params{
		TargetBudget:   100,
		RosterSlots:    4,
		Tolerance:      0.05,
		TeamBudget:     100,
		MaxBudgetShare: 0.40,
		StarterCounts:  map[string]int{"RB": 2},
		ScarcityBands:  map[string]invariant.Band{"RB": {Min: 0.40, Max: 0.80}},
		PriceRanges:    map[string]adjust.PriceRange{"RB": {Min: 1, Max: 50}},
	}
}

func TestInvariant_HealthySet(t *testing.T) {
	Convey("Given a consistent valuation set", t, func() {
		report, err := invariant.Check(healthySet(), healthyParams())

		Convey("Then every invariant passes", func() {
			So(err, ShouldBeNil)
			So(report.Passed, ShouldBeTrue)
			So(report.Results, ShouldHaveLength, 6)
			So(report.FailedCount(), ShouldEqual, 0)
			for name, res := range report.Results {
				So(res.Passed, ShouldBeTrue)
				So(res.Message, ShouldNotBeEmpty)
				So(name, ShouldNotBeEmpty)
			}
		})
	})
}

func TestInvariant_BudgetConservation(t *testing.T) {
	Convey("Given a drafted pool off its target", t, func() {
		p := healthyParams()
		p.TargetBudget = 200

		report, err := invariant.Check(healthySet(), p)

		Convey("Then budget conservation fails and the rest still report", func() {
			So(err, ShouldBeNil)
			So(report.Passed, ShouldBeFalse)
			So(report.Results[invariant.BudgetConservation].Passed, ShouldBeFalse)
			So(report.Results[invariant.NonNegativity].Passed, ShouldBeTrue)
			So(report.Results[invariant.Monotonicity].Passed, ShouldBeTrue)
		})
	})

	Convey("Given a sum just inside the tolerance", t, func() {
		set := healthySet()
		set[3].IntrinsicValue = 19 // top four sum to 104, 4% off

		report, err := invariant.Check(set, healthyParams())

		Convey("Then budget conservation passes", func() {
			So(err, ShouldBeNil)
			So(report.Results[invariant.BudgetConservation].Passed, ShouldBeTrue)
		})
	})
}

func TestInvariant_NonNegativity(t *testing.T) {
	Convey("Given a player below the $1 floor", t, func() {
		set := healthySet()
		set[4].IntrinsicValue = 0

		report, err := invariant.Check(set, healthyParams())

		Convey("Then non-negativity fails naming the player", func() {
			So(err, ShouldBeNil)
			res := report.Results[invariant.NonNegativity]
			So(res.Passed, ShouldBeFalse)
			So(res.Counterexamples, ShouldHaveLength, 1)
			So(res.Counterexamples[0], ShouldContainSubstring, "rb5")
		})
	})

	Convey("Given a confidence outside its bounds", t, func() {
		set := healthySet()
		set[0].Confidence = 1.2

		report, err := invariant.Check(set, healthyParams())

		Convey("Then non-negativity fails", func() {
			So(err, ShouldBeNil)
			So(report.Results[invariant.NonNegativity].Passed, ShouldBeFalse)
		})
	})

	Convey("Given more violations than the reporting cap", t, func() {
		var set []model.Valuation
		for i := 0; i < 30; i++ {
			v := val(fmt.Sprintf("rb%02d", i), float64(300-i), 0)
			set = append(set, v)
		}

		report, err := invariant.Check(set, healthyParams())

		Convey("Then counterexamples are capped at 25", func() {
			So(err, ShouldBeNil)
			res := report.Results[invariant.NonNegativity]
			So(res.Passed, ShouldBeFalse)
			So(res.Counterexamples, ShouldHaveLength, 25)
		})
	})
}

func TestInvariant_Monotonicity(t *testing.T) {
	Convey("Given a lower-projected player valued above a higher one", t, func() {
		set := healthySet()
		set[2].IntrinsicValue = 33 // rb3 (200 pts) now beats rb2 (250 pts, $30)

		report, err := invariant.Check(set, healthyParams())

		Convey("Then monotonicity fails with the violating pair", func() {
			So(err, ShouldBeNil)
			res := report.Results[invariant.Monotonicity]
			So(res.Passed, ShouldBeFalse)
			So(res.Counterexamples, ShouldHaveLength, 1)
			So(res.Counterexamples[0], ShouldContainSubstring, "rb3")
			So(res.Counterexamples[0], ShouldContainSubstring, "rb2")
		})
	})

	Convey("Given equal projections with different prices", t, func() {
		set := []model.Valuation{
			val("rb1", 300, 40),
			val("rb2", 200, 35),
			val("rb3", 200, 20),
			val("rb4", 100, 5),
		}

		report, err := invariant.Check(set, healthyParams())

		Convey("Then ties never count as violations", func() {
			So(err, ShouldBeNil)
			So(report.Results[invariant.Monotonicity].Passed, ShouldBeTrue)
		})
	})

	Convey("Given violations across positions", t, func() {
		set := healthySet()
		wr := val("wr1", 400, 2)
		wr.Position = "WR"
		set = append(set, wr)

		report, err := invariant.Check(set, healthyParams())

		Convey("Then cross-position comparisons never count", func() {
			So(err, ShouldBeNil)
			So(report.Results[invariant.Monotonicity].Passed, ShouldBeTrue)
		})
	})
}

func TestInvariant_PositionalScarcity(t *testing.T) {
	Convey("Given a position holding less value than its band floor", t, func() {
		p := healthyParams()
		p.ScarcityBands["RB"] = invariant.Band{Min: 0.90, Max: 1.0}

		report, err := invariant.Check(healthySet(), p)

		Convey("Then the scarcity check fails with the share", func() {
			So(err, ShouldBeNil)
			res := report.Results[invariant.PositionalScarcity]
			So(res.Passed, ShouldBeFalse)
			So(res.Message, ShouldNotBeEmpty)
			So(res.Counterexamples, ShouldHaveLength, 1)
			So(res.Counterexamples[0], ShouldContainSubstring, "RB")
		})
	})

	Convey("Given a banded position with zero starters", t, func() {
		p := healthyParams()
		p.StarterCounts["RB"] = 0

		report, err := invariant.Check(healthySet(), p)

		Convey("Then the position is skipped", func() {
			So(err, ShouldBeNil)
			So(report.Results[invariant.PositionalScarcity].Passed, ShouldBeTrue)
		})
	})
}

func TestInvariant_MaxBudgetShare(t *testing.T) {
	Convey("Given a player above the per-team budget share cap", t, func() {
		p := healthyParams()
		p.MaxBudgetShare = 0.25 // cap $25 against the $35 top player

		report, err := invariant.Check(healthySet(), p)

		Convey("Then the share check fails naming the player", func() {
			So(err, ShouldBeNil)
			res := report.Results[invariant.MaxBudgetShare]
			So(res.Passed, ShouldBeFalse)
			So(res.Counterexamples, ShouldHaveLength, 2)
			So(res.Counterexamples[0], ShouldContainSubstring, "rb1")
		})
	})
}

func TestInvariant_PriceRange(t *testing.T) {
	Convey("Given a player outside the positional soft range", t, func() {
		p := healthyParams()
		p.PriceRanges["RB"] = adjust.PriceRange{Min: 1, Max: 30}

		report, err := invariant.Check(healthySet(), p)

		Convey("Then the range check fails naming the player", func() {
			So(err, ShouldBeNil)
			res := report.Results[invariant.PriceRange]
			So(res.Passed, ShouldBeFalse)
			So(res.Counterexamples, ShouldHaveLength, 1)
			So(res.Counterexamples[0], ShouldContainSubstring, "rb1")
		})
	})

	Convey("Given a position without a configured range", t, func() {
		set := healthySet()
		k := val("k1", 140, 49)
		k.Position = "K"
		set = append(set, k)

		report, err := invariant.Check(set, healthyParams())

		Convey("Then unconfigured positions are skipped", func() {
			So(err, ShouldBeNil)
			So(report.Results[invariant.PriceRange].Passed, ShouldBeTrue)
		})
	})
}

func TestInvariant_MalformedInput(t *testing.T) {
	Convey("Given checker-usage bugs", t, func() {
		Convey("Then an empty valuation set is an error, not a failed report", func() {
			_, err := invariant.Check(nil, healthyParams())
			So(errors.Is(err, invariant.ErrMalformedInput), ShouldBeTrue)
		})

		Convey("Then non-positive economics are rejected", func() {
			p := healthyParams()
			p.TargetBudget = 0
			_, err := invariant.Check(healthySet(), p)
			So(errors.Is(err, invariant.ErrMalformedInput), ShouldBeTrue)
		})
	})
}
