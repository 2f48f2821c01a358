package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gym_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CheckInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_check_ins_total",
			Help: "Check-in attempts by outcome",
		},
		[]string{"outcome"},
	)

	CheckOutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_check_outs_total",
			Help: "Total number of completed check-outs",
		},
	)

	SessionDurationMinutes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gym_session_duration_minutes",
			Help:    "Length of closed gym visits in minutes",
			Buckets: []float64{15, 30, 45, 60, 90, 120, 180, 240},
		},
	)

	ReportRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_report_requests_total",
			Help: "Report computations by report and result",
		},
		[]string{"report", "result"},
	)

	SubscriptionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_subscriptions_created_total",
			Help: "Total number of subscriptions purchased",
		},
		[]string{"plan"},
	)

	SubscriptionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_subscriptions_expired_total",
			Help: "Subscriptions moved to EXPIRED by the expiry worker",
		},
	)

	ClassBookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_class_bookings_total",
			Help: "Class bookings by status",
		},
		[]string{"status"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gym_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordCheckIn counts a check-in attempt; outcome is "success" or the
// rejection kind.
func RecordCheckIn(outcome string) {
	CheckInsTotal.WithLabelValues(outcome).Inc()
}

func RecordCheckOut(durationMinutes int) {
	CheckOutsTotal.Inc()
	SessionDurationMinutes.Observe(float64(durationMinutes))
}

func RecordReport(report, result string) {
	ReportRequestsTotal.WithLabelValues(report, result).Inc()
}

func RecordSubscription(plan string) {
	SubscriptionsCreatedTotal.WithLabelValues(plan).Inc()
}

func RecordExpiredSubscriptions(n int64) {
	SubscriptionsExpiredTotal.Add(float64(n))
}

func RecordClassBooking(status string) {
	ClassBookingsTotal.WithLabelValues(status).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
