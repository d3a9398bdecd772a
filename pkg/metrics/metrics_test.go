package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with a custom namespace", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics helpers", t, func() {
		Convey("When recording run lifecycle metrics", func() {
			Convey("Then they should not panic", func() {
				So(func() {
					RecordRunStarted()
					RecordRunFailure("calibration_diverged")
					RecordRunDuration(0.042)
				}, ShouldNotPanic)
			})
		})

		Convey("When updating run gauges", func() {
			Convey("Then they should not panic", func() {
				So(func() {
					UpdateCalibration(7, 0.93)
					UpdatePoolCounts(300, 2)
					UpdateInvariantFailures(1)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording snapshot persistence metrics", func() {
			Convey("Then they should not panic", func() {
				So(func() {
					RecordSnapshotRecorded()
					RecordRecorderError()
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		registry := GetRegistry()

		Convey("Then it should be available", func() {
			So(registry, ShouldNotBeNil)
		})

		Convey("And it should expose the registered metrics", func() {
			RecordRunStarted()
			families, err := registry.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
