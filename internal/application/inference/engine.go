// Package inference discovers directed relationships between timeline
// events.  Detection runs strictly forward in time over the sorted event
// list in four independent window-bounded passes, so cost stays near-linear
// for realistic timelines.
package inference

import (
	"fmt"
	"strings"
	"time"

	"github.com/neuroscribe/timeline-engine/internal/config"
	"github.com/neuroscribe/timeline-engine/internal/domain/protocol"
	domainTimeline "github.com/neuroscribe/timeline-engine/internal/domain/timeline"
	"github.com/neuroscribe/timeline-engine/internal/infrastructure/monitoring/logging"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

const (
	triggersConfidence   = 0.80
	leadsToEarlyConf     = 0.85
	leadsToLateConf      = 0.70
	respondsToConfidence = 0.70
	preventsConfidence   = 0.75

	urgencyUrgent  = "urgent"
	urgencyRoutine = "routine"
)

// Engine runs the four relationship passes over one assembled timeline.
type Engine struct {
	cfg    config.InferenceConfig
	logger logging.Logger
}

// NewEngine constructs an inference Engine.  A nil logger selects the no-op
// logger.
func NewEngine(cfg config.InferenceConfig, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{cfg: cfg, logger: logger.Named("inference")}
}

// Infer runs all passes and returns every discovered relationship.  Each
// edge is also appended to its source event's relationship list.  Undated
// events never participate in the time-windowed passes.
func (e *Engine) Infer(t *domainTimeline.Timeline) []domainTimeline.Relationship {
	rels := []domainTimeline.Relationship{}
	rels = append(rels, e.triggers(t)...)
	rels = append(rels, e.leadsTo(t)...)
	rels = append(rels, e.respondsTo(t)...)
	rels = append(rels, e.prevents(t)...)

	for i := range rels {
		if from := t.EventByID(rels[i].From); from != nil {
			from.Relationships = append(from.Relationships, rels[i])
		}
	}

	e.logger.Debug("relationship inference complete",
		logging.Int("events", len(t.Events)),
		logging.Int("relationships", len(rels)))
	return rels
}

// ─────────────────────────────────────────────────────────────────────────────
// Passes
// ─────────────────────────────────────────────────────────────────────────────

// triggers links a complication to therapeutic events started within the
// trigger window after it.  Gaps under the urgent cutoff mark the response
// as urgent.
func (e *Engine) triggers(t *domainTimeline.Timeline) []domainTimeline.Relationship {
	window := time.Duration(e.cfg.TriggerWindowHours) * time.Hour
	urgent := time.Duration(e.cfg.TriggerUrgentHours) * time.Hour

	var out []domainTimeline.Relationship
	forEachForwardPair(t.Events, window, domainTimeline.EventComplication, domainTimeline.EventTherapeutic,
		func(from, to *domainTimeline.Event, gap time.Duration) {
			urgency, hours := urgencyRoutine, e.cfg.TriggerWindowHours
			if gap <= urgent {
				urgency, hours = urgencyUrgent, e.cfg.TriggerUrgentHours
			}
			out = append(out, domainTimeline.Relationship{
				From:        from.ID,
				To:          to.ID,
				Type:        domainTimeline.RelationTriggers,
				Confidence:  triggersConfidence,
				TimeWindow:  fmt.Sprintf("%dh", hours),
				Urgency:     urgency,
				Description: fmt.Sprintf("%s prompted %s", from.Name, to.Name),
			})
		})
	return out
}

// leadsTo links a procedure to complications within the procedural window.
// Earlier manifestation means higher confidence that the complication is
// procedure-related.
func (e *Engine) leadsTo(t *domainTimeline.Timeline) []domainTimeline.Relationship {
	window := time.Duration(e.cfg.LeadsToWindowDays) * 24 * time.Hour
	early := time.Duration(e.cfg.LeadsToEarlyDays) * 24 * time.Hour

	var out []domainTimeline.Relationship
	forEachForwardPair(t.Events, window, domainTimeline.EventTherapeutic, domainTimeline.EventComplication,
		func(from, to *domainTimeline.Event, gap time.Duration) {
			if from.Category != clinical.CategoryProcedure {
				return
			}
			conf := leadsToLateConf
			if gap <= early {
				conf = leadsToEarlyConf
			}
			out = append(out, domainTimeline.Relationship{
				From:        from.ID,
				To:          to.ID,
				Type:        domainTimeline.RelationLeadsTo,
				Confidence:  conf,
				TimeWindow:  fmt.Sprintf("%dd", e.cfg.LeadsToWindowDays),
				Description: fmt.Sprintf("%s followed %s", to.Name, from.Name),
			})
		})
	return out
}

// respondsTo links a therapeutic event to outcome measurements within the
// response window.  Outcomes have many confounders, so confidence is low.
func (e *Engine) respondsTo(t *domainTimeline.Timeline) []domainTimeline.Relationship {
	window := time.Duration(e.cfg.RespondsToWindowDays) * 24 * time.Hour

	var out []domainTimeline.Relationship
	forEachForwardPair(t.Events, window, domainTimeline.EventTherapeutic, domainTimeline.EventOutcome,
		func(from, to *domainTimeline.Event, gap time.Duration) {
			out = append(out, domainTimeline.Relationship{
				From:        from.ID,
				To:          to.ID,
				Type:        domainTimeline.RelationRespondsTo,
				Confidence:  respondsToConfidence,
				TimeWindow:  fmt.Sprintf("%dd", e.cfg.RespondsToWindowDays),
				Description: fmt.Sprintf("%s measured after %s", to.Name, from.Name),
			})
		})
	return out
}

// prevents emits a targetless edge for each known prophylaxis medication
// whose guarded complication never appears anywhere on the timeline.
func (e *Engine) prevents(t *domainTimeline.Timeline) []domainTimeline.Relationship {
	var out []domainTimeline.Relationship
	for _, pair := range protocol.Prophylaxis() {
		med := findByName(t.Events, clinical.CategoryMedication, pair.Medication)
		if med == nil {
			continue
		}
		if findByName(t.Events, clinical.CategoryComplication, pair.Complication) != nil {
			continue
		}
		out = append(out, domainTimeline.Relationship{
			From:          med.ID,
			Type:          domainTimeline.RelationPrevents,
			Confidence:    preventsConfidence,
			Effectiveness: "successful",
			Description:   fmt.Sprintf("%s prophylaxis, no %s recorded", pair.Medication, pair.Complication),
		})
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// forEachForwardPair visits every (fromType, toType) pair of dated events
// where to follows from within the window.  The inner scan breaks as soon
// as the gap exceeds the window; the list is sorted, so nothing later can
// re-enter it.
func forEachForwardPair(
	events []*domainTimeline.Event,
	window time.Duration,
	fromType, toType domainTimeline.EventType,
	visit func(from, to *domainTimeline.Event, gap time.Duration),
) {
	for i, from := range events {
		if from.Type != fromType || from.Timestamp == nil {
			continue
		}
		for _, to := range events[i+1:] {
			if to.Timestamp == nil {
				break
			}
			gap := to.Timestamp.Sub(*from.Timestamp)
			if gap > window {
				break
			}
			if to.Type != toType {
				continue
			}
			visit(from, to, gap)
		}
	}
}

// findByName returns the first event in the category whose name contains
// the needle (or vice versa), or nil.
func findByName(events []*domainTimeline.Event, cat clinical.Category, name string) *domainTimeline.Event {
	needle := strings.ToLower(name)
	for _, e := range events {
		if e.Category != cat {
			continue
		}
		have := strings.ToLower(e.Name)
		if strings.Contains(have, needle) || strings.Contains(needle, have) {
			return e
		}
	}
	return nil
}
