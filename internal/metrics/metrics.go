package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymops_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymops_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CheckinTokensIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymops_checkin_tokens_issued_total",
			Help: "Total number of check-in tokens issued",
		},
	)

	CheckinRedemptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymops_checkin_redemptions_total",
			Help: "Check-in redemption attempts by result kind",
		},
		[]string{"result"},
	)

	SweepRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymops_sweep_rows_total",
			Help: "Rows handled by periodic sweeps, by outcome",
		},
		[]string{"sweep", "outcome"},
	)

	SweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymops_sweep_duration_seconds",
			Help:    "Sweep run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sweep"},
	)

	WaitlistPromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymops_waitlist_promotions_total",
			Help: "Total number of waitlisted bookings promoted",
		},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymops_bookings_total",
			Help: "Total number of class bookings by resulting status",
		},
		[]string{"status"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymops_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	DelinquencyTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymops_delinquency_transitions_total",
			Help: "Subscription delinquency transitions",
		},
		[]string{"from", "to"},
	)

	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymops_dispatch_total",
			Help: "Asynchronous dispatches by queue and status",
		},
		[]string{"queue", "status"},
	)

	DispatchBacklog = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gymops_dispatch_backlog",
			Help: "Events buffered in-process awaiting dispatch",
		},
		[]string{"queue"},
	)

	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gymops_queue_depth",
			Help: "Events waiting in the Redis list for the gateway",
		},
		[]string{"queue"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordTokenIssued() {
	CheckinTokensIssuedTotal.Inc()
}

func RecordRedemption(result string) {
	CheckinRedemptionsTotal.WithLabelValues(result).Inc()
}

func RecordSweep(sweep string, seconds float64, outcomes map[string]int) {
	SweepDuration.WithLabelValues(sweep).Observe(seconds)
	for outcome, n := range outcomes {
		if n > 0 {
			SweepRowsTotal.WithLabelValues(sweep, outcome).Add(float64(n))
		}
	}
}

func RecordPromotion() {
	WaitlistPromotionsTotal.Inc()
}

func RecordBooking(status string) {
	BookingsTotal.WithLabelValues(status).Inc()
}

func RecordBookingCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordTransition(from, to string) {
	DelinquencyTransitionsTotal.WithLabelValues(from, to).Inc()
}

func RecordDispatch(queue, status string) {
	DispatchTotal.WithLabelValues(queue, status).Inc()
}

func SetQueueDepth(queue string, depth int64) {
	QueueDepth.WithLabelValues(queue).Set(float64(depth))
}
