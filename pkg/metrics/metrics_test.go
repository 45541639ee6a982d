package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tkarimi/residual/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	convey.Convey("Given the metrics package", t, func() {
		convey.Convey("When creating a manager with defaults", func() {
			m := metrics.NewManager()

			convey.Convey("Then it should expose a working handler", func() {
				convey.So(m, convey.ShouldNotBeNil)
				rec := httptest.NewRecorder()
				m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When creating a manager with custom options", func() {
			m := metrics.NewManager(
				metrics.WithNamespace("test"),
				metrics.WithSubsystem("unit"),
				metrics.WithHistogramBuckets([]float64{0.1, 1, 10}),
			)

			convey.Convey("Then it should be created without panicking", func() {
				convey.So(m, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When recording through the package-level helpers", func() {
			convey.Convey("Then no helper should panic", func() {
				convey.So(func() {
					metrics.RecordSamplePublished()
					metrics.RecordPublishError()
					metrics.RecordMessageConsumed("y-true")
					metrics.RecordMalformedMessage()
					metrics.RecordPairMatched()
					metrics.UpdatePendingEntries(3)
					metrics.RecordPendingEviction("capacity")
					metrics.RecordPendingEviction("expired")
					metrics.RecordRecordAppended()
					metrics.RecordAppendError()
					metrics.UpdateQueueSize(5)
					metrics.UpdateQueueCapacity(100)
					metrics.UpdateQueueUtilization(0.05)
					metrics.RecordQueueEnqueue()
					metrics.RecordQueueEnqueueError("queue_full")
					metrics.RecordQueueDequeue()
					metrics.RecordRender()
					metrics.RecordRenderError()
					metrics.ObserveRenderDuration(0.42)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When scraping the global handler", func() {
			metrics.RecordPairMatched()
			rec := httptest.NewRecorder()
			metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			convey.Convey("Then the scrape should include pipeline metrics", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "residual_pipeline_pairs_matched_total")
			})
		})
	})
}
