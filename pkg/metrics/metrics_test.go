package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When applying them to a manager", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("test_ns"),
				WithSubsystem("test_sub"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the configuration is recorded", func() {
				So(m.namespace, ShouldEqual, "test_ns")
				So(m.subsystem, ShouldEqual, "test_sub")
				So(m.histogramBuckets, ShouldResemble, []float64{1, 5, 10})
				So(m.registry, ShouldEqual, registry)
			})
		})

		Convey("When passing empty values", func() {
			m := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the defaults are kept", func() {
				So(m.namespace, ShouldEqual, "taskflow")
				So(m.subsystem, ShouldEqual, "recommender")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsManagerRegistration(t *testing.T) {
	Convey("Given a manager on a fresh registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))
		m.recommendations.Inc()
		m.scoringErrors.WithLabelValues("division_by_zero").Inc()

		Convey("When gathering", func() {
			families, err := registry.Gather()

			Convey("Then the taskflow collectors are exposed", func() {
				So(err, ShouldBeNil)
				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["taskflow_recommender_recommendations_total"], ShouldBeTrue)
				So(names["taskflow_recommender_scoring_errors_total"], ShouldBeTrue)
				So(names["taskflow_recommender_directory_users"], ShouldBeTrue)
			})
		})

		Convey("When a second manager registers on the same registry", func() {
			Convey("Then registration panics on duplicate collectors", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording business metrics", func() {
			So(func() {
				RecordRecommendation()
				RecordRecommendationLatency(0.4)
				RecordScoringError("invalid_input")
				RecordScoringError("division_by_zero")
				RecordAssignment()
				RecordAssignmentDuplicate()
			}, ShouldNotPanic)
		})

		Convey("When recording directory metrics", func() {
			So(func() {
				UpdateDirectoryUsers(3)
				UpdateDirectoryTasks(2, 1)
			}, ShouldNotPanic)
		})

		Convey("When recording queue and worker metrics", func() {
			So(func() {
				UpdateQueueSize(10)
				UpdateQueueCapacity(1024)
				RecordQueueEnqueue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(4)
				UpdateWorkerActiveCount(2)
				RecordBatchJobLatency(3.5)
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				RecordHTTPRequest("/capacity", "GET", "200")
				RecordHTTPRequestDuration("/capacity", "GET", "200", 1.5)
				RecordErrorByEndpoint("/assign", "POST", "conflict")
				RecordErrorByComponent("worker", "job_failed")
			}, ShouldNotPanic)
		})

		Convey("When recording system metrics", func() {
			So(func() {
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.25)
			}, ShouldNotPanic)
		})

		Convey("When reading the global registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then recorded metrics are present", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent metric updates", t, func() {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordRecommendation()
					UpdateQueueSize(n * j)
					RecordHTTPRequest("/recommendations", "POST", "200")
				}
			}(i)
		}

		Convey("Then nothing panics and all goroutines finish", func() {
			So(func() { wg.Wait() }, ShouldNotPanic)
		})
	})
}
