package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var dispatchCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ghostmode_moderation_dispatches",
	Help: "Number of moderation dispatches by outcome",
}, []string{"action", "kind", "outcome"})
