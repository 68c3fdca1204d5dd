package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venuebook",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by status.",
		},
		[]string{"status"},
	)

	bookingTransition = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venuebook",
			Name:      "booking_transition_total",
			Help:      "Count of booking status transitions by event and outcome.",
		},
		[]string{"event", "outcome"},
	)

	overlapConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "venuebook",
			Name:      "booking_overlap_conflict_total",
			Help:      "Count of bookings rejected because of schedule overlap.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venuebook",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by handler.",
		},
		[]string{"handler"},
	)

	remindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "venuebook",
			Name:      "reminders_sent_total",
			Help:      "Count of booking reminders sent.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingTransition, overlapConflicts, httpRequests, remindersSent)
	})
}

func IncBookingCreated(status string) {
	bookingCreated.WithLabelValues(status).Inc()
}

func IncBookingTransition(event, outcome string) {
	bookingTransition.WithLabelValues(event, outcome).Inc()
}

func IncOverlapConflict() {
	overlapConflicts.Inc()
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}

func IncReminderSent() {
	remindersSent.Inc()
}
