package schoolcontent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// The silent reroute from remote storage to database rows is a deliberate
// resilience policy; these counters make it observable so operators can
// detect unplanned growth of the blob table.
var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolcontent",
		Subsystem: "storage",
		Name:      "uploads_total",
		Help:      "Uploads persisted, by final destination.",
	}, []string{"destination"})

	storageFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "schoolcontent",
		Subsystem: "storage",
		Name:      "fallbacks_total",
		Help:      "Uploads rerouted to database storage after a failed public URL check.",
	})
)

const (
	destinationRemote   = "remote"
	destinationDatabase = "database"
)
