// Package metrics provides the engine's Prometheus instrumentation.  The
// engine is a library, so collectors are registered on an injected
// prometheus.Registerer; HTTP exposition, if any, belongs to the embedding
// application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder carries the engine's collectors.  A nil *Recorder is valid and
// records nothing, so call sites never need nil checks.
type Recorder struct {
	documentsTotal     prometheus.Counter
	mentionsTotal      prometheus.Counter
	eventsBuilt        prometheus.Histogram
	relationshipsTotal *prometheus.CounterVec
	degradedTotal      *prometheus.CounterVec
	pipelineDuration   prometheus.Histogram
}

// New constructs a Recorder and registers its collectors on reg.  namespace
// is the metric prefix, typically "timeline_engine".
func New(namespace string, reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		documentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_analyzed_total",
			Help:      "Number of patient documents run through the pipeline.",
		}),
		mentionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mentions_ingested_total",
			Help:      "Number of candidate mentions ingested across all categories.",
		}),
		eventsBuilt: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "timeline_events",
			Help:      "Events per assembled timeline.",
			Buckets:   []float64{0, 5, 10, 20, 40, 80},
		}),
		relationshipsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relationships_inferred_total",
			Help:      "Relationships inferred, partitioned by relationship type.",
		}, []string{"type"}),
		degradedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "component_degradations_total",
			Help:      "Component-boundary failures replaced by empty results.",
		}, []string{"component"}),
		pipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Wall-clock duration of one full pipeline run.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(
			r.documentsTotal,
			r.mentionsTotal,
			r.eventsBuilt,
			r.relationshipsTotal,
			r.degradedTotal,
			r.pipelineDuration,
		)
	}
	return r
}

// ObserveRun records the top-level facts of one pipeline run.
func (r *Recorder) ObserveRun(mentions, events int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.documentsTotal.Inc()
	r.mentionsTotal.Add(float64(mentions))
	r.eventsBuilt.Observe(float64(events))
	r.pipelineDuration.Observe(elapsed.Seconds())
}

// ObserveRelationship counts one inferred relationship by type.
func (r *Recorder) ObserveRelationship(relType string) {
	if r == nil {
		return
	}
	r.relationshipsTotal.WithLabelValues(relType).Inc()
}

// ObserveDegradation counts a component-boundary failure.
func (r *Recorder) ObserveDegradation(component string) {
	if r == nil {
		return
	}
	r.degradedTotal.WithLabelValues(component).Inc()
}
