package activity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sourceFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "ghostmode_activity_fetch_duration_sec",
	Help: "Duration of one activity source fetch",
}, []string{"source"})

var sourceFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ghostmode_activity_fetch_errors",
	Help: "Number of activity source fetches which failed",
}, []string{"source"})

var aggregationCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ghostmode_activity_aggregations",
	Help: "Number of aggregation passes",
}, []string{"class", "trigger"})

var profileJoinFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ghostmode_activity_profile_join_failures",
	Help: "Number of owner profile joins which failed and fell back to defaults",
})
