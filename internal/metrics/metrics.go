// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestTotal counts ingestion attempts by source kind and outcome.
	IngestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_ingest_total",
		Help: "Video ingestion attempts by source and outcome.",
	}, []string{"source", "outcome"})

	// ThumbnailResults counts thumbnail pipeline outcomes per path.
	ThumbnailResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_thumbnail_results_total",
		Help: "Thumbnail pipeline outcomes by ingestion path.",
	}, []string{"path", "result"})
)
