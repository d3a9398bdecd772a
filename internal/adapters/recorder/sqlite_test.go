package recorder_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/draftedge/draftedge/internal/adapters/recorder"
	"github.com/draftedge/draftedge/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleSnapshot() *model.Snapshot {
	return &model.Snapshot{
		ID:         "snap-1",
		CreatedAt:  time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
		Factor:     0.9341,
		Iterations: 7,
		Valuations: []model.Valuation{
			{
				PlayerID: "rb1", Name: "Back One", Position: "RB", Team: "SF",
				ProjectedPoints: 266.3, VORP: 162.2, PositionRank: 1,
				Tier: model.TierElite, BaseValue: 192.1, AdjustedValue: 265.1,
				IntrinsicValue: 52, TargetBid: 52, MinBid: 44, MaxBid: 60,
				MarketPrice: 49, Edge: 3, Confidence: 0.91,
			},
			{
				PlayerID: "wr9", Name: "Wide Nine", Position: "WR", Team: "KC",
				ProjectedPoints: 180.4, VORP: 32.0, PositionRank: 9,
				Tier: model.TierOne, BaseValue: 38.6, AdjustedValue: 42.5,
				IntrinsicValue: 40, TargetBid: 40, MinBid: 34, MaxBid: 46,
				MarketPrice: 40, Edge: 0, Confidence: 0.84,
			},
		},
		Excluded: []model.ExcludedPlayer{
			{Input: model.PlayerScoreInput{ID: "lb1", Position: "LB"}, Reason: "unknown position"},
		},
		Report: model.InvariantReport{
			Passed: false,
			Results: map[string]model.InvariantResult{
				"budget_conservation": {Passed: true, Message: "on target"},
				"non_negativity":      {Passed: false, Message: "1 player below floor", Counterexamples: []string{"rb9: $0"}},
			},
		},
	}
}

func TestSQLite_RecordSnapshot(t *testing.T) {
	Convey("Given a fresh snapshot database", t, func() {
		path := filepath.Join(t.TempDir(), "snapshots.db")
		rec, err := recorder.NewSQLite(path)
		So(err, ShouldBeNil)
		defer rec.Close()

		Convey("When recording a snapshot", func() {
			err := rec.RecordSnapshot(context.Background(), sampleSnapshot())
			So(err, ShouldBeNil)

			Convey("Then the rows round-trip", func() {
				db, err := sql.Open("sqlite", path)
				So(err, ShouldBeNil)
				defer db.Close()

				var players, excluded, passed int
				var factor float64
				row := db.QueryRow(`SELECT factor, iterations, players, excluded, passed FROM snapshots WHERE id = ?`, "snap-1")
				var iterations int
				So(row.Scan(&factor, &iterations, &players, &excluded, &passed), ShouldBeNil)
				So(factor, ShouldAlmostEqual, 0.9341)
				So(iterations, ShouldEqual, 7)
				So(players, ShouldEqual, 2)
				So(excluded, ShouldEqual, 1)
				So(passed, ShouldEqual, 0)

				var tier string
				var intrinsic int
				row = db.QueryRow(`SELECT tier, intrinsic_value FROM valuations WHERE snapshot_id = ? AND player_id = ?`, "snap-1", "rb1")
				So(row.Scan(&tier, &intrinsic), ShouldBeNil)
				So(tier, ShouldEqual, "elite")
				So(intrinsic, ShouldEqual, 52)

				var invariants int
				row = db.QueryRow(`SELECT COUNT(*) FROM invariants WHERE snapshot_id = ?`, "snap-1")
				So(row.Scan(&invariants), ShouldBeNil)
				So(invariants, ShouldEqual, 2)
			})
		})

		Convey("When recording the same snapshot id twice", func() {
			snap := sampleSnapshot()
			So(rec.RecordSnapshot(context.Background(), snap), ShouldBeNil)
			err := rec.RecordSnapshot(context.Background(), snap)

			Convey("Then the duplicate is rejected and nothing half-writes", func() {
				So(err, ShouldNotBeNil)

				db, err := sql.Open("sqlite", path)
				So(err, ShouldBeNil)
				defer db.Close()

				var valuations int
				row := db.QueryRow(`SELECT COUNT(*) FROM valuations WHERE snapshot_id = ?`, "snap-1")
				So(row.Scan(&valuations), ShouldBeNil)
				So(valuations, ShouldEqual, 2)
			})
		})

		Convey("When reopening an existing database", func() {
			So(rec.Close(), ShouldBeNil)

			reopened, err := recorder.NewSQLite(path)
			So(err, ShouldBeNil)
			defer reopened.Close()

			Convey("Then migrations are idempotent", func() {
				snap := sampleSnapshot()
				snap.ID = "snap-2"
				So(reopened.RecordSnapshot(context.Background(), snap), ShouldBeNil)
			})
		})
	})
}

func TestNoop(t *testing.T) {
	Convey("Given the no-op recorder", t, func() {
		var rec recorder.Recorder = recorder.NewNoop()

		Convey("Then recording and closing are free", func() {
			So(rec.RecordSnapshot(context.Background(), sampleSnapshot()), ShouldBeNil)
			So(rec.Close(), ShouldBeNil)
		})
	})
}
