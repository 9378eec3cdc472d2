package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestWorkflowCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementSubmission(false)
	m.IncrementSubmission(true)
	m.IncrementSubmission(true)
	m.IncrementDecision("approved")
	m.IncrementUploadFailure()
	m.IncrementUploaded("driver_license")
	m.ObserveSubmit(time.Now())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("first")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Submissions.WithLabelValues("resubmission")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Decisions.WithLabelValues("approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadedDocuments.WithLabelValues("driver_license")))
}
