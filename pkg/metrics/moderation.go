package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ModerationDecisions counts resolved moderation decisions by submission kind
// and outcome.
var ModerationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_decisions_total",
	Help: "Moderation decisions by kind and outcome.",
}, []string{"kind", "outcome"})
