package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		consumeConflictsTotal,
		quotaRemainingTotal,
	)
}

var (
	consumeConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_consume_conflicts_total",
			Help: "Quota consumptions that lost a race to the last unit.",
		},
	)

	quotaRemainingTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_quota_remaining_total",
			Help: "Sum of remaining submission quota across all user packs.",
		},
	)
)

func IncConsumeConflict() {
	consumeConflictsTotal.Inc()
}

func SetQuotaRemaining(n int64) {
	quotaRemainingTotal.Set(float64(n))
}
