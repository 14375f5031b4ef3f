package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EmailsSent counts individual recipient sends by outcome
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaigner_emails_sent_total",
			Help: "Total recipient emails attempted, labeled by outcome",
		},
		[]string{"status"}, // sent or failed
	)

	// CampaignsDispatched counts campaign dispatch runs by final status
	CampaignsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaigner_campaigns_dispatched_total",
			Help: "Total campaign dispatch runs, labeled by final status",
		},
		[]string{"status"}, // sent or failed
	)

	// DispatchDuration tracks end-to-end campaign dispatch latency
	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "campaigner_dispatch_duration_seconds",
			Help: "Duration of full campaign dispatch runs in seconds",
			Buckets: []float64{
				0.1,   // 100ms
				0.5,   // 500ms
				1.0,   // 1s
				5.0,   // 5s
				15.0,  // 15s
				60.0,  // 1m
				300.0, // 5m
				900.0, // 15m
			},
		},
	)

	// Unsubscribes counts unsubscribe requests that changed a contact
	Unsubscribes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campaigner_unsubscribes_total",
			Help: "Total contacts marked unsubscribed via the public endpoint",
		},
	)
)

// RecordSend records the outcome of a single recipient send.
func RecordSend(ok bool) {
	if ok {
		EmailsSent.WithLabelValues("sent").Inc()
	} else {
		EmailsSent.WithLabelValues("failed").Inc()
	}
}

// RecordDispatch records a completed campaign dispatch run.
func RecordDispatch(status string, seconds float64) {
	CampaignsDispatched.WithLabelValues(status).Inc()
	DispatchDuration.Observe(seconds)
}
