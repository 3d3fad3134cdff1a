package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evidens_bus_events_published_total",
		Help: "Change events published on the bus.",
	}, []string{"kind"})

	DeliveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "evidens_bus_deliveries_total",
		Help: "Handler invocations performed by the bus.",
	})

	HandlerFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "evidens_bus_handler_failures_total",
		Help: "Handlers that returned an error or panicked during delivery.",
	})

	EchoesSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "evidens_echo_suppressed_total",
		Help: "Events discarded by a screen because it originated them.",
	})

	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evidens_mutations_total",
		Help: "Optimistic mutations by action and outcome.",
	}, []string{"action", "outcome"})

	PagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evidens_pages_fetched_total",
		Help: "Page fetches by feed and outcome.",
	}, []string{"feed", "outcome"})

	LiveScreens = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "evidens_live_screens",
		Help: "Screens currently subscribed to the bus.",
	})
)
