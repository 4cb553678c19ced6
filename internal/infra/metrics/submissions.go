package metrics

import (
	"tax-filing-service/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		submissionsCreatedTotal,
		submissionTransitionsTotal,
		submissionsByStatus,
	)
}

var (
	submissionsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_created_total",
			Help: "Total number of submissions created, by tier.",
		},
		[]string{"tier"},
	)

	submissionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submission_transitions_total",
			Help: "Total number of terminal status transitions.",
		},
		[]string{"to"},
	)

	submissionsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "submissions_by_status",
			Help: "Current number of submissions by status.",
		},
		[]string{"status"}, // 'draft', 'processing', 'complete', 'failed'
	)
)

func IncSubmissionsCreated(tier string) {
	submissionsCreatedTotal.WithLabelValues(tier).Inc()
}

func IncSubmissionTransition(to string) {
	submissionTransitionsTotal.WithLabelValues(to).Inc()
}

func SetSubmissionsByStatus(counts map[model.SubmissionStatus]int) {
	statuses := []model.SubmissionStatus{
		model.SubmissionStatusDraft,
		model.SubmissionStatusProcessing,
		model.SubmissionStatusComplete,
		model.SubmissionStatusFailed,
	}
	// A status absent from the counts map means zero submissions hold it;
	// the gauge must drop back instead of keeping its last value.
	for _, status := range statuses {
		submissionsByStatus.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}
