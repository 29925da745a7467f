// Package metrics exposes the Prometheus counters and histograms nanogit
// records while writing objects, decoding packs, and cloning.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "nanogit"
)

// Registry groups the metrics a single process records.
type Registry struct {
	ObjectsWritten   *prometheus.CounterVec
	BytesFetched     prometheus.Counter
	PackObjects      *prometheus.CounterVec
	DeltaRounds      prometheus.Histogram
	DeltaUnresolved  prometheus.Counter
	CloneDuration    prometheus.Histogram
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry, creating and registering it
// against prometheus.DefaultRegisterer on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = New(prometheus.DefaultRegisterer)
	})
	return defaultReg
}

// New builds a Registry and, if reg is non-nil, registers its collectors.
func New(reg prometheus.Registerer) *Registry {
	r := &Registry{
		ObjectsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "objects_written_total",
			Help:      "Objects written to the loose-object store, by type.",
		}, []string{"type"}),
		BytesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "pack_bytes_total",
			Help:      "Raw pack bytes received over the side-band channel during clone.",
		}),
		PackObjects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pack",
			Name:      "objects_decoded_total",
			Help:      "Pack-file entries decoded, by kind (whole object vs ref-delta).",
		}, []string{"kind"}),
		DeltaRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pack",
			Name:      "delta_resolution_rounds",
			Help:      "Fixpoint rounds needed to resolve all ref-delta entries in a pack.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		DeltaUnresolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pack",
			Name:      "delta_unresolved_total",
			Help:      "Ref-delta entries that never found their base object.",
		}),
		CloneDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "clone",
			Name:      "duration_seconds",
			Help:      "Wall-clock time for a full clone operation.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(
			r.ObjectsWritten,
			r.BytesFetched,
			r.PackObjects,
			r.DeltaRounds,
			r.DeltaUnresolved,
			r.CloneDuration,
		)
	}

	return r
}

// Handler serves the default gatherer's exposition format, for use with
// `clone --metrics-addr`.
func Handler() http.Handler {
	return promhttp.Handler()
}
