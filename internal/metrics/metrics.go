// Package metrics holds the Prometheus collectors shared across packages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackendSelected counts facade operations by the backend they were routed to.
	BackendSelected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitchzone_backend_selected_total",
		Help: "Data operations routed to each persistence backend.",
	}, []string{"backend"})

	// AvailabilityProbes counts availability probes by verdict.
	AvailabilityProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitchzone_availability_probes_total",
		Help: "Remote availability probes by verdict.",
	}, []string{"verdict"})

	// LocalStoreOps counts local persistence store operations.
	LocalStoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitchzone_local_store_ops_total",
		Help: "Local store operations by collection and operation.",
	}, []string{"collection", "op"})
)
