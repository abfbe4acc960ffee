// Package metrics defines the custom Prometheus metrics of the booking API.
// Metrics register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "booking"

// UsersRegisteredTotal counts successful registrations.
// Label:
//   - role: "user" or "admin"
var UsersRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of accounts registered, by role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid" (bad credentials or missing fields) or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// EventsCreatedTotal counts events created by admins.
var EventsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_created_total",
		Help:      "Total number of events created.",
	},
)

// BookingsTotal counts booking attempts.
// Label:
//   - result: "confirmed", "duplicate", "not_found" or "error"
var BookingsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_total",
		Help:      "Total number of booking attempts, by result.",
	},
	[]string{"result"},
)

// EventsCacheTotal counts lookups against the event list cache.
// Label:
//   - result: "hit", "miss" or "error"
var EventsCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_cache_total",
		Help:      "Total number of event list cache lookups, by result.",
	},
	[]string{"result"},
)

// ObserveEventsCache records a cache lookup result. It matches the cache's OnLookup hook.
func ObserveEventsCache(result string) {
	EventsCacheTotal.WithLabelValues(result).Inc()
}
