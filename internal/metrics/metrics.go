// Package metrics implements the telemetry sinks consumed by the document
// pipeline, backed by prometheus counters.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder counts processed content types and upstream attempt outcomes. It
// satisfies documents.Metrics and upstream.AttemptRecorder.
type Recorder struct {
	contentTypes *prometheus.CounterVec
	attempts     *prometheus.CounterVec
}

// NewRecorder creates a recorder and registers its collectors.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		contentTypes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dokjournal_document_content_type_total",
			Help: "Content types of documents processed for journaling.",
		}, []string{"content_type"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dokjournal_upstream_attempts_total",
			Help: "Individual upstream call attempts by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(r.contentTypes, r.attempts)
	return r
}

// ContentTypeProcessed counts one processed document by content type.
func (r *Recorder) ContentTypeProcessed(contentType string) {
	r.contentTypes.WithLabelValues(strings.ReplaceAll(contentType, "/", "")).Inc()
	r.contentTypes.WithLabelValues("total").Inc()
}

// Attempt counts one upstream call attempt.
func (r *Recorder) Attempt(operation string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	r.attempts.WithLabelValues(operation, outcome).Inc()
}
