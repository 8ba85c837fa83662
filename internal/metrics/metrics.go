// Package metrics exposes prometheus collectors for the donation
// lifecycle and the matching engines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the service records into.
type Metrics struct {
	DonationTransitions *prometheus.CounterVec
	DeliveryRequests    *prometheus.CounterVec
	Escalations         prometheus.Counter
	SweepCancellations  prometheus.Counter
	MatchesComputed     prometheus.Counter
}

// New registers all collectors on the given registerer. Pass
// prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DonationTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shareeat_donation_transitions_total",
			Help: "Donation state transitions by resulting status.",
		}, []string{"status"}),
		DeliveryRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shareeat_delivery_requests_total",
			Help: "Delivery request outcomes by status.",
		}, []string{"status"}),
		Escalations: factory.NewCounter(prometheus.CounterOpts{
			Name: "shareeat_escalations_total",
			Help: "Donations escalated to manual assignment.",
		}),
		SweepCancellations: factory.NewCounter(prometheus.CounterOpts{
			Name: "shareeat_sweep_cancellations_total",
			Help: "Donations auto-cancelled by the background sweep.",
		}),
		MatchesComputed: factory.NewCounter(prometheus.CounterOpts{
			Name: "shareeat_matches_computed_total",
			Help: "Recipient match computations performed.",
		}),
	}
}
