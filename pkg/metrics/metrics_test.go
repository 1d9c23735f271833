package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then metrics are registered under the default namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.visitsDuplicate.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "bgx_dashboard_visits_duplicate_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("sub"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithRefreshInterval(3*time.Second),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "sub")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 5, 10})
				So(manager.refreshInterval, ShouldEqual, 3*time.Second)
				So(manager.constLabels["env"], ShouldEqual, "test")
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, defaultNamespace)
				So(manager.subsystem, ShouldEqual, defaultSubsystem)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global recorders", t, func() {
		Convey("When recording visit metrics", func() {
			before := testutil.ToFloat64(globalManager.visitsTracked.WithLabelValues("home", "mobile"))
			RecordVisitTracked("home", "mobile")
			RecordVisitTracked("home", "mobile")

			Convey("Then the labelled counter grows", func() {
				after := testutil.ToFloat64(globalManager.visitsTracked.WithLabelValues("home", "mobile"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When recording skipped rows", func() {
			before := testutil.ToFloat64(globalManager.rowsSkipped.WithLabelValues("junior"))
			RecordRowsSkipped("junior", 3)
			RecordRowsSkipped("junior", 0)

			Convey("Then only positive counts are added", func() {
				after := testutil.ToFloat64(globalManager.rowsSkipped.WithLabelValues("junior"))
				So(after-before, ShouldEqual, 3)
			})
		})

		Convey("When recording analytics", func() {
			RecordAnalytics(42)

			Convey("Then the snapshot gauge holds the event count", func() {
				So(testutil.ToFloat64(globalManager.analyticsEvents), ShouldEqual, 42)
			})
		})

		Convey("When exercising every recorder", func() {
			So(func() {
				RecordLeaderboardProjection("expert", "ok")
				RecordSourceCacheHit()
				RecordSourceCacheMiss()
				RecordSourceLoadLatency(1.5)
				RecordVisitDuplicate()
				RecordVisitDropped()
				RecordStoreAppendLatency(0.2)
				RecordStoreError("append")
				UpdateQueueSize(10)
				UpdateQueueCapacity(100)
				UpdateWorkerCount(4)
				RecordHTTPRequest("leaderboard", "GET", "200")
				RecordHTTPRequestDuration("leaderboard", "GET", "200", 3)
				RecordHTTPError("leaderboard", "GET", "not_found")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
			So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
		})
	})
}
