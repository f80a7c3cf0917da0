package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "utaroom",
			Name:      "reservation_created_total",
			Help:      "Count of reservations created by room.",
		},
		[]string{"room"},
	)

	reservationCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utaroom",
			Name:      "reservation_cancelled_total",
			Help:      "Count of reservations cancelled.",
		},
	)

	conflictRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utaroom",
			Name:      "conflict_rejected_total",
			Help:      "Count of booking attempts rejected because the slot was taken.",
		},
	)

	idleTransition = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "utaroom",
			Name:      "idle_transition_total",
			Help:      "Count of park/unpark transitions on the idle ledger.",
		},
		[]string{"action"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservationCreated, reservationCancelled, conflictRejected, idleTransition)
	})
}

func IncReservationCreated(room string) {
	reservationCreated.WithLabelValues(room).Inc()
}

func IncReservationCancelled() {
	reservationCancelled.Inc()
}

func IncConflictRejected() {
	conflictRejected.Inc()
}

func IncIdleTransition(action string) {
	idleTransition.WithLabelValues(action).Inc()
}
