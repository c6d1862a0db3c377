package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	definitionCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fireteam_definition_cache_lookups_total",
		Help: "Definition cache lookups by result",
	}, []string{"result"})

	definitionFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fireteam_definition_fetches_total",
		Help: "Upstream definition table fetches by outcome",
	}, []string{"outcome"})

	identityProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fireteam_identity_probes_total",
		Help: "Platform probes issued while resolving identities, by outcome",
	}, []string{"outcome"})

	credentialRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fireteam_credential_refreshes_total",
		Help: "Credential refresh exchanges by outcome",
	}, []string{"outcome"})

	aggregationPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fireteam_aggregation_passes_total",
		Help: "Aggregation passes by outcome",
	}, []string{"outcome"})

	aggregationPassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fireteam_aggregation_pass_duration_seconds",
		Help:    "Wall time of completed aggregation passes",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	rosterMembersOmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fireteam_roster_members_omitted_total",
		Help: "Party members left out of a roster because they could not be resolved",
	})
)
