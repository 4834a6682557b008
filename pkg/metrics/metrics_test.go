package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it uses the volley namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "volley")
				So(manager.subsystem, ShouldEqual, "engine")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.rallies.Add(2)

			Convey("Then collectors carry the custom names and labels", func() {
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 10, 100})
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_rallies_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty option values are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "volley")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestAnalysisMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording strokes by type", func() {
			before := testutil.ToFloat64(globalManager.strokes.WithLabelValues("forehand"))
			RecordStroke("forehand")
			RecordStroke("forehand")

			Convey("Then the labelled counter grows", func() {
				So(testutil.ToFloat64(globalManager.strokes.WithLabelValues("forehand")), ShouldEqual, before+2)
			})
		})

		Convey("When recording frames", func() {
			processed := testutil.ToFloat64(globalManager.framesProcessed)
			rejected := testutil.ToFloat64(globalManager.framesRejected)
			RecordFrames(90, 10)

			Convey("Then both counters advance", func() {
				So(testutil.ToFloat64(globalManager.framesProcessed), ShouldEqual, processed+90)
				So(testutil.ToFloat64(globalManager.framesRejected), ShouldEqual, rejected+10)
			})
		})

		Convey("When recording session outcomes", func() {
			RecordSessionAnalyzed("completed")
			RecordSessionAnalyzed("degenerate")
			RecordSessionDuplicate()
			RecordCandidates(3)
			RecordRallies(1)
			RecordAnalysisLatency(12)

			Convey("Then each outcome is its own series", func() {
				So(testutil.ToFloat64(globalManager.sessionsAnalyzed.WithLabelValues("degenerate")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.CollectAndCount(globalManager.sessionsAnalyzed), ShouldBeGreaterThanOrEqualTo, 2)
			})
		})
	})
}

func TestOperationalMetrics(t *testing.T) {
	Convey("Given operational gauges", t, func() {
		Convey("When updating queue gauges", func() {
			UpdateQueueCapacity(100)
			UpdateQueueSize(25)
			UpdateQueueUtilization(0.25)

			Convey("Then the last value wins", func() {
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 100)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 25)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.25)
			})
		})

		Convey("When updating repository gauges", func() {
			UpdateRepositoryRecordsTotal(7)
			UpdateRepositoryRecordsByStatus("completed", 5)

			Convey("Then they are readable", func() {
				So(testutil.ToFloat64(globalManager.repositoryRecords), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.repositoryByStatus.WithLabelValues("completed")), ShouldEqual, 5)
			})
		})

		Convey("When recording the remaining helpers", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					RecordQueueProcessingLatency(1)
					UpdateWorkerCount(4)
					UpdateWorkerActiveCount(2)
					UpdateWorkerJobsPerSecond(1.5)
					RecordWorkerProcessingLatency(30)
					RecordWorkerError()
					RecordRepositoryEviction()
					RecordRepositoryUpdateLatency(1)
					RecordRepositoryQueryLatency(1)
					RecordHTTPRequest("/v1/analyze", "POST", "200")
					RecordHTTPRequestDuration("/v1/analyze", "POST", "200", 5)
					RecordErrorByComponent("queue", "queue_full")
					RecordErrorByEndpoint("/v1/sessions", "POST", "validation_error")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordRallies(1)
		families, err := GetRegistry().Gather()

		Convey("Then it exposes only volley metrics", func() {
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			for _, f := range families {
				So(f.GetName(), ShouldStartWith, "volley_engine_")
			}
		})
	})
}
