package bungie

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fireteam_upstream_requests_total",
	Help: "Requests sent to the Bungie API by response class",
}, []string{"class"})
