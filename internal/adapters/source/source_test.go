package source_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/draftedge/draftedge/internal/adapters/source"
	. "github.com/smartystreets/goconvey/convey"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestSource_LoadJSON(t *testing.T) {
	Convey("Given a valid JSON pool", t, func() {
		path := writeFile(t, "pool.json", `[
			{"id":"rb1","name":"Back One","position":"RB","team":"SF","projected_points":266.3,"market_price":52,"projection_sources":3,"projection_cv":0.08},
			{"id":"qb1","name":"Quarter One","position":"QB","team":"KC","projected_points":360}
		]`)

		pool, err := source.LoadJSON(path)

		Convey("Then all records load with their fields", func() {
			So(err, ShouldBeNil)
			So(pool, ShouldHaveLength, 2)
			So(pool[0].ID, ShouldEqual, "rb1")
			So(pool[0].MarketPrice, ShouldEqual, 52)
			So(pool[0].ProjectionSources, ShouldEqual, 3)
			So(pool[1].Position, ShouldEqual, "QB")
			So(pool[1].MarketPrice, ShouldEqual, 0)
		})
	})

	Convey("Given a record without an id", t, func() {
		path := writeFile(t, "pool.json", `[{"name":"No ID","position":"RB","projected_points":100}]`)

		_, err := source.LoadJSON(path)

		Convey("Then loading fails with ErrBadRecord", func() {
			So(errors.Is(err, source.ErrBadRecord), ShouldBeTrue)
		})
	})

	Convey("Given negative projected points", t, func() {
		path := writeFile(t, "pool.json", `[{"id":"rb1","position":"RB","projected_points":-5}]`)

		_, err := source.LoadJSON(path)

		Convey("Then loading fails with ErrBadRecord", func() {
			So(errors.Is(err, source.ErrBadRecord), ShouldBeTrue)
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := source.LoadJSON(filepath.Join(t.TempDir(), "missing.json"))

		Convey("Then loading fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSource_LoadCSV(t *testing.T) {
	Convey("Given a full CSV pool", t, func() {
		path := writeFile(t, "pool.csv",
			"id,name,position,team,projected_points,market_price,adp,sources,cv\n"+
				"rb1,Back One,rb,SF,266.3,52,1.5,3,0.08\n"+
				"qb1,Quarter One,QB,KC,360,,,,\n")

		pool, err := source.LoadCSV(path)

		Convey("Then rows parse with optional fields defaulted", func() {
			So(err, ShouldBeNil)
			So(pool, ShouldHaveLength, 2)
			So(pool[0].Position, ShouldEqual, "RB")
			So(pool[0].MarketPrice, ShouldEqual, 52)
			So(pool[0].ADP, ShouldEqual, 1.5)
			So(pool[1].MarketPrice, ShouldEqual, 0)
			So(pool[1].ProjectionSources, ShouldEqual, 0)
		})
	})

	Convey("Given a CSV with only the required columns", t, func() {
		path := writeFile(t, "pool.csv",
			"id,name,position,team,projected_points\nrb1,Back One,RB,SF,266.3\n")

		pool, err := source.LoadCSV(path)

		Convey("Then it still loads", func() {
			So(err, ShouldBeNil)
			So(pool, ShouldHaveLength, 1)
			So(pool[0].ProjectedPoints, ShouldEqual, 266.3)
		})
	})

	Convey("Given a CSV missing a required column", t, func() {
		path := writeFile(t, "pool.csv", "id,name,team\nrb1,Back One,SF\n")

		_, err := source.LoadCSV(path)

		Convey("Then loading fails with ErrBadRecord", func() {
			So(errors.Is(err, source.ErrBadRecord), ShouldBeTrue)
		})
	})

	Convey("Given an unparseable numeric field", t, func() {
		path := writeFile(t, "pool.csv",
			"id,name,position,team,projected_points\nrb1,Back One,RB,SF,a-lot\n")

		_, err := source.LoadCSV(path)

		Convey("Then the error names the offending row", func() {
			So(errors.Is(err, source.ErrBadRecord), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "row 2")
		})
	})

	Convey("Given a CSV without data rows", t, func() {
		path := writeFile(t, "pool.csv", "id,name,position,team,projected_points\n")

		_, err := source.LoadCSV(path)

		Convey("Then loading fails with ErrBadRecord", func() {
			So(errors.Is(err, source.ErrBadRecord), ShouldBeTrue)
		})
	})
}
