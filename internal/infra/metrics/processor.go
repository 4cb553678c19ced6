package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		processorCallLatencyMs,
		uploadsTotal,
	)
}

var (
	processorCallLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "processor_call_latency_ms",
			Help:    "Tax processor call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		},
		[]string{"op", "success"},
	)

	uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_file_uploads_total",
			Help: "Broker files uploaded, by broker and processor verdict.",
		},
		[]string{"broker", "verdict"}, // 'accepted' | 'rejected'
	)
)

func ObserveProcessorCall(op string, d time.Duration, success bool) {
	processorCallLatencyMs.WithLabelValues(op, strconv.FormatBool(success)).Observe(float64(d.Milliseconds()))
}

func IncUploads(broker string, accepted, rejected int) {
	if accepted > 0 {
		uploadsTotal.WithLabelValues(broker, "accepted").Add(float64(accepted))
	}
	if rejected > 0 {
		uploadsTotal.WithLabelValues(broker, "rejected").Add(float64(rejected))
	}
}
