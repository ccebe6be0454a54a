package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/tickmerge/internal/files"
	"github.com/rickgao/tickmerge/internal/orchestrator"
	"github.com/rickgao/tickmerge/internal/worker"
)

const namespace = "tickmerge"

// Metrics holds the merger's collectors.
type Metrics struct {
	registry *prometheus.Registry

	MergesTotal       *prometheus.CounterVec
	ClaimConflicts    prometheus.Counter
	RecordsMerged     prometheus.Counter
	MergeDuration     prometheus.Histogram
	RoundsTotal       prometheus.Counter
	DispatchedTasks   prometheus.Counter
	Convergences      prometheus.Counter
	DiscoverableFiles prometheus.Gauge
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		MergesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "worker",
				Name:      "merges_total",
				Help:      "Number of merge tasks, partitioned by result stage",
			},
			[]string{"result"},
		),
		ClaimConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "claim_conflicts_total",
			Help:      "Number of tasks whose inputs were already claimed",
		}),
		RecordsMerged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "records_merged_total",
			Help:      "Number of records written by completed merges",
		}),
		MergeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "merge_duration_seconds",
			Help:      "Wall time of completed merges",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		RoundsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "rounds_total",
			Help:      "Number of directory scan rounds",
		}),
		DispatchedTasks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "dispatched_tasks_total",
			Help:      "Number of file pairs handed to workers",
		}),
		Convergences: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "convergences_total",
			Help:      "Number of times a single final output was produced",
		}),
		DiscoverableFiles: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "discoverable_files",
			Help:      "Unclaimed files seen by the latest round",
		}),
	}
}

// Registry returns the registry holding all collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// HandleResult records a worker result.
func (m *Metrics) HandleResult(r worker.Result) {
	m.MergesTotal.WithLabelValues(string(r.Stage)).Inc()

	if r.Stage == worker.StageClaim && errors.Is(r.Err, files.ErrClaimConflict) {
		m.ClaimConflicts.Inc()
	}
	if r.Output != "" {
		m.RecordsMerged.Add(float64(r.Records))
		m.MergeDuration.Observe(r.Duration.Seconds())
	}
}

// ObserveRound records one orchestrator round.
func (m *Metrics) ObserveRound(r orchestrator.RoundResult) {
	m.RoundsTotal.Inc()
	if r.Err != nil {
		return
	}
	m.DispatchedTasks.Add(float64(r.Dispatched))
	m.DiscoverableFiles.Set(float64(r.Files))
}

// HandleConvergence records a convergence.
func (m *Metrics) HandleConvergence(string) {
	m.Convergences.Inc()
}
