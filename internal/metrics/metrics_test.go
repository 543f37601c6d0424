package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequest(t *testing.T) {
	// Reset metrics
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/videos/:id/status", "200", 0.042)

	counter := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/videos/:id/status", "200"))
	if counter != 1.0 {
		t.Errorf("Expected counter to be 1.0, got %f", counter)
	}
}

func TestRecordJobLifecycle(t *testing.T) {
	JobsCreatedTotal.Reset()
	JobsCompletedTotal.Reset()
	JobsInProgress.Set(0)

	RecordJobCreated("720p")
	RecordJobCreated("mp3")

	inProgress := testutil.ToFloat64(JobsInProgress)
	if inProgress != 2.0 {
		t.Errorf("Expected 2 jobs in progress, got %f", inProgress)
	}

	RecordJobFinished("completed")

	inProgress = testutil.ToFloat64(JobsInProgress)
	if inProgress != 1.0 {
		t.Errorf("Expected 1 job in progress, got %f", inProgress)
	}

	completed := testutil.ToFloat64(JobsCompletedTotal.WithLabelValues("completed"))
	if completed != 1.0 {
		t.Errorf("Expected completed counter 1.0, got %f", completed)
	}
}
