// Package engine wires the six pipeline stages into one synchronous
// analysis run: context resolution, identity resolution, timeline assembly,
// relationship inference, treatment response tracking, and functional
// evolution analysis.  Each stage is guarded at its boundary; a failing
// stage yields its documented empty result instead of aborting the run.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/neuroscribe/timeline-engine/internal/application/evolution"
	"github.com/neuroscribe/timeline-engine/internal/application/identity"
	"github.com/neuroscribe/timeline-engine/internal/application/inference"
	"github.com/neuroscribe/timeline-engine/internal/application/resolution"
	"github.com/neuroscribe/timeline-engine/internal/application/response"
	appTimeline "github.com/neuroscribe/timeline-engine/internal/application/timeline"
	"github.com/neuroscribe/timeline-engine/internal/config"
	"github.com/neuroscribe/timeline-engine/internal/domain/functional"
	"github.com/neuroscribe/timeline-engine/internal/domain/narrative"
	domainResponse "github.com/neuroscribe/timeline-engine/internal/domain/response"
	domainTimeline "github.com/neuroscribe/timeline-engine/internal/domain/timeline"
	"github.com/neuroscribe/timeline-engine/internal/infrastructure/monitoring/logging"
	"github.com/neuroscribe/timeline-engine/internal/infrastructure/monitoring/metrics"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

// Parameters echoes the thresholds a run was computed with, so a stored
// result stays interpretable after the configuration changes.
type Parameters struct {
	SimilarityThreshold  float64 `json:"similarity_threshold"`
	TriggerWindowHours   int     `json:"trigger_window_hours"`
	LeadsToWindowDays    int     `json:"leads_to_window_days"`
	RespondsToWindowDays int     `json:"responds_to_window_days"`
	StableBand           float64 `json:"stable_band"`
}

// Result is the engine's complete output for one document.
type Result struct {
	RunID               string                   `json:"run_id"`
	DocumentID          string                   `json:"document_id,omitempty"`
	Parameters          Parameters               `json:"parameters"`
	Timeline            *domainTimeline.Timeline `json:"timeline"`
	TreatmentResponse   *domainResponse.Report   `json:"treatment_response"`
	FunctionalEvolution *functional.Report       `json:"functional_evolution"`
	Elapsed             time.Duration            `json:"-"`
}

func (e *Engine) parameters() Parameters {
	return Parameters{
		SimilarityThreshold:  e.cfg.Identity.SimilarityThreshold,
		TriggerWindowHours:   e.cfg.Inference.TriggerWindowHours,
		LeadsToWindowDays:    e.cfg.Inference.LeadsToWindowDays,
		RespondsToWindowDays: e.cfg.Inference.RespondsToWindowDays,
		StableBand:           e.cfg.Evolution.StableBand,
	}
}

// Engine is the top-level analysis service.  It is safe for concurrent use:
// all state is immutable configuration and stateless stage services.
type Engine struct {
	cfg      *config.Config
	logger   logging.Logger
	recorder *metrics.Recorder

	resolver *resolution.Resolver
	dedup    *identity.Deduplicator
	builder  *appTimeline.Builder
	infer    *inference.Engine
	tracker  *response.Tracker
	analyzer *evolution.Analyzer
}

// New wires an Engine from configuration.  A nil logger selects the no-op
// logger; a nil recorder disables metrics.
func New(cfg *config.Config, logger logging.Logger, recorder *metrics.Recorder) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("engine")
	return &Engine{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		resolver: resolution.NewResolver(cfg.Resolver, nil, logger),
		dedup:    identity.NewDeduplicator(cfg.Identity, nil, logger),
		builder:  appTimeline.NewBuilder(logger),
		infer:    inference.NewEngine(cfg.Inference, logger),
		tracker:  response.NewTracker(cfg.Response, logger),
		analyzer: evolution.NewAnalyzer(cfg.Evolution, logger),
	}
}

// Analyze runs the full pipeline over one document.  The context carries
// only caller identity for logging; the computation itself is bounded and
// has no suspension points.
func (e *Engine) Analyze(ctx context.Context, doc *clinical.Document) *Result {
	_ = ctx
	start := time.Now()
	result := &Result{RunID: uuid.NewString(), Parameters: e.parameters()}
	if doc == nil {
		result.Timeline = domainTimeline.Empty()
		result.TreatmentResponse = domainResponse.Empty()
		result.FunctionalEvolution = functional.EmptyReport()
		return result
	}
	result.DocumentID = doc.ID

	log := e.logger.With(logging.String("run_id", result.RunID), logging.String("document_id", doc.ID))

	var resolved map[clinical.Category][]narrative.ResolvedMention
	e.guard(log, "resolution", func() {
		resolved = e.resolve(doc)
	})

	canonical := map[clinical.Category][]identity.CanonicalMention{}
	e.guard(log, "identity", func() {
		for cat, ms := range resolved {
			canonical[cat] = e.dedup.Deduplicate(cat, ms)
		}
	})

	anchors := e.evolutionAnchors(doc, canonical)

	var scores []functional.ScorePoint
	e.guard(log, "evolution", func() {
		scores = e.analyzer.ExtractScores(doc.Functional, anchors)
	})

	result.Timeline = domainTimeline.Empty()
	e.guard(log, "timeline", func() {
		result.Timeline = e.builder.Build(appTimeline.BuildInput{Canonical: canonical, Scores: scores})
	})

	e.guard(log, "inference", func() {
		rels := e.infer.Infer(result.Timeline)
		result.Timeline.Relationships = rels
		result.Timeline.Metadata.TotalRelationships = len(rels)
		for _, r := range rels {
			e.recorder.ObserveRelationship(string(r.Type))
		}
	})

	result.TreatmentResponse = domainResponse.Empty()
	e.guard(log, "response", func() {
		result.TreatmentResponse = e.tracker.Track(result.Timeline, doc.Functional)
	})

	result.FunctionalEvolution = functional.EmptyReport()
	e.guard(log, "evolution", func() {
		anchors.FirstTherapeutic = firstTherapeuticTime(result.Timeline)
		result.FunctionalEvolution = e.analyzer.Analyze(doc.Functional, anchors)
	})

	result.Elapsed = time.Since(start)
	e.recorder.ObserveRun(doc.MentionCount(), len(result.Timeline.Events), result.Elapsed)
	log.Info("analysis complete",
		logging.Int("mentions", doc.MentionCount()),
		logging.Int("events", len(result.Timeline.Events)),
		logging.Int("relationships", result.Timeline.Metadata.TotalRelationships),
		logging.Duration("elapsed", result.Elapsed))
	return result
}

// guard runs one stage, converting a panic into the stage's documented
// degraded result: the stage's output variables keep whatever empty value
// they were seeded with.
func (e *Engine) guard(log logging.Logger, component string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("stage failed, continuing degraded",
				logging.String("component", component),
				logging.Any("panic", r))
			e.recorder.ObserveDegradation(component)
		}
	}()
	fn()
}

// resolve runs negation and temporal-context resolution over every mention
// in the document, grouped by category.  Malformed mentions are skipped;
// negated mentions above the exclusion threshold never enter the timeline.
func (e *Engine) resolve(doc *clinical.Document) map[clinical.Category][]narrative.ResolvedMention {
	out := map[clinical.Category][]narrative.ResolvedMention{}

	for _, m := range doc.AllMentions() {
		if err := m.Validate(); err != nil {
			e.logger.Warn("skipping malformed mention",
				logging.String("name", m.Name),
				logging.Err(err))
			continue
		}
		if verdict := e.resolver.Negation(m); verdict.Negated && verdict.Confidence >= narrative.NegationExclusionThreshold {
			e.logger.Debug("excluding negated mention",
				logging.String("name", m.Name),
				logging.String("trigger", verdict.Trigger))
			continue
		}
		out[m.Category] = append(out[m.Category], narrative.ResolvedMention{
			Mention:   m,
			Context:   e.resolver.Resolve(m, doc.Anchors),
			Timestamp: e.resolver.EffectiveDate(m, doc.Anchors),
		})
	}
	return out
}

// evolutionAnchors derives the timestamps the functional analyzer needs:
// explicit document anchors first, dated key events as fallback.
func (e *Engine) evolutionAnchors(doc *clinical.Document, canonical map[clinical.Category][]identity.CanonicalMention) evolution.Anchors {
	a := evolution.Anchors{Admission: doc.Anchors.Admission}
	if a.Admission == nil {
		a.Admission = firstTimestamp(canonical[clinical.CategoryAdmission])
	}
	a.Discharge = firstTimestamp(canonical[clinical.CategoryDischarge])
	a.FirstTherapeutic = doc.Anchors.FirstProcedure
	if a.FirstTherapeutic == nil {
		a.FirstTherapeutic = firstTimestamp(canonical[clinical.CategoryProcedure])
	}
	return a
}

func firstTimestamp(ms []identity.CanonicalMention) *time.Time {
	for _, m := range ms {
		if m.Timestamp != nil {
			return m.Timestamp
		}
	}
	return nil
}

func firstTherapeuticTime(t *domainTimeline.Timeline) *time.Time {
	if e := t.FirstOfType(domainTimeline.EventTherapeutic); e != nil {
		return e.Timestamp
	}
	return nil
}
