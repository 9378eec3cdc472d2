package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Submissions       *prometheus.CounterVec
	Decisions         *prometheus.CounterVec
	UploadFailures    prometheus.Counter
	UploadedDocuments *prometheus.CounterVec
	SubmitDuration    prometheus.Histogram
}

// New registers the workflow metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_applications_submitted_total",
			Help: "Persisted submissions labelled by kind (first, resubmission)",
		}, []string{"kind"}),
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_review_decisions_total",
			Help: "HR decisions labelled by outcome",
		}, []string{"decision"}),
		UploadFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "onboard_upload_failures_total",
			Help: "Submissions aborted by a failed document upload",
		}),
		UploadedDocuments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_documents_uploaded_total",
			Help: "Documents uploaded during submission, by type",
		}, []string{"type"}),
		SubmitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboard_submit_duration_seconds",
			Help:    "Duration of successful submissions including uploads",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) IncrementSubmission(resubmission bool) {
	kind := "first"
	if resubmission {
		kind = "resubmission"
	}
	m.Submissions.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementDecision(decision string) {
	m.Decisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) IncrementUploadFailure() {
	m.UploadFailures.Inc()
}

func (m *Metrics) IncrementUploaded(docType string) {
	m.UploadedDocuments.WithLabelValues(docType).Inc()
}

func (m *Metrics) ObserveSubmit(start time.Time) {
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}
