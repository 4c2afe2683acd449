package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "barbershop"

var (
	once sync.Once

	realtimeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_events_total",
			Help:      "Change events handled by collections, by table, type and outcome.",
		},
		[]string{"table", "type", "outcome"},
	)

	realtimeDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_dropped_total",
			Help:      "Change events dropped because a subscriber was not keeping up.",
		},
		[]string{"table"},
	)

	mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Optimistic mutations by table, operation and result.",
		},
		[]string{"table", "op", "result"},
	)

	reloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_reloads_total",
			Help:      "Full collection reloads after a channel error.",
		},
		[]string{"table"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Public booking requests by result.",
		},
		[]string{"result"},
	)

	remindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Appointment reminders dispatched.",
		},
	)
)

// Register registers the collectors (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(realtimeEvents, realtimeDropped, mutations, reloads, bookings, remindersSent)
	})
}

func IncRealtimeEvent(table, typ, outcome string) {
	realtimeEvents.WithLabelValues(table, typ, outcome).Inc()
}

func IncRealtimeDropped(table string) {
	realtimeDropped.WithLabelValues(table).Inc()
}

func IncMutation(table, op, result string) {
	mutations.WithLabelValues(table, op, result).Inc()
}

func IncReload(table string) {
	reloads.WithLabelValues(table).Inc()
}

func IncBooking(result string) {
	bookings.WithLabelValues(result).Inc()
}

func IncReminderSent() {
	remindersSent.Inc()
}
