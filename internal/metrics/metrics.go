// Package metrics exposes Prometheus counters for the souvenir service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SouvenirsCreated counts successful inserts.
	SouvenirsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "souvenirs_created_total",
		Help: "Number of souvenirs persisted.",
	})

	// TranscriptionFallbacks counts degraded transcriptions.
	TranscriptionFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transcription_fallbacks_total",
		Help: "Number of transcriptions that degraded to a canned fallback.",
	})

	// MintFallbacks counts degraded mints.
	MintFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mint_fallbacks_total",
		Help: "Number of mints that degraded to a mock transaction id.",
	})
)
