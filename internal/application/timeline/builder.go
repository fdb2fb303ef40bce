// Package timeline assembles the chronological event timeline: collecting
// canonical mentions from every extractor category, sorting them with
// deterministic tie-breaks, assigning stable identifiers, and flagging
// clinical milestones.
package timeline

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/neuroscribe/timeline-engine/internal/application/identity"
	"github.com/neuroscribe/timeline-engine/internal/domain/functional"
	domainTimeline "github.com/neuroscribe/timeline-engine/internal/domain/timeline"
	"github.com/neuroscribe/timeline-engine/internal/infrastructure/monitoring/logging"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

// categoryOrder fixes the collection order so that event ids are stable for
// identical input regardless of map iteration.
var categoryOrder = []clinical.Category{
	clinical.CategorySymptomOnset,
	clinical.CategoryAdmission,
	clinical.CategoryImaging,
	clinical.CategoryProcedure,
	clinical.CategoryMedication,
	clinical.CategoryComplication,
	clinical.CategoryDischarge,
}

// BuildInput carries everything the builder places on the timeline: the
// deduplicated mentions per category and the parsed functional score points.
type BuildInput struct {
	Canonical map[clinical.Category][]identity.CanonicalMention
	Scores    []functional.ScorePoint
}

// Builder turns deduplicated mentions into the sorted timeline aggregate.
type Builder struct {
	logger logging.Logger
}

// NewBuilder constructs a Builder.  A nil logger selects the no-op logger.
func NewBuilder(logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Builder{logger: logger.Named("timeline")}
}

// Build assembles the timeline: collect, sort, identify, flag milestones,
// summarise.  Relationship detection runs afterwards on the returned
// aggregate; the builder leaves Relationships empty.
func (b *Builder) Build(in BuildInput) *domainTimeline.Timeline {
	events := b.collect(in)

	sort.SliceStable(events, func(i, j int) bool {
		return domainTimeline.Less(events[i], events[j])
	})

	// Identifiers reflect the final chronological position.  They are stable
	// for identical input but positional, not content-addressed: adding a
	// mention can renumber later events.
	for i, e := range events {
		e.ID = fmt.Sprintf("event_%03d", i+1)
	}

	t := domainTimeline.Empty()
	t.Events = events
	t.Milestones = b.milestones(events)
	t.Metadata = domainTimeline.Metadata{
		TotalEvents:     len(events),
		TotalMilestones: len(t.Milestones),
		DateRange:       dateRange(events),
	}

	b.logger.Debug("timeline assembled",
		logging.Int("events", len(events)),
		logging.Int("milestones", len(t.Milestones)))
	return t
}

// collect materialises one event per canonical mention plus one OUTCOME
// event per functional score point.  Mentions whose category has no event
// type mapping are skipped.
func (b *Builder) collect(in BuildInput) []*domainTimeline.Event {
	var events []*domainTimeline.Event

	for _, cat := range categoryOrder {
		et, ok := domainTimeline.TypeForCategory(cat)
		if !ok {
			continue
		}
		for _, cm := range in.Canonical[cat] {
			e := &domainTimeline.Event{
				Category:      cat,
				Type:          et,
				Name:          cm.Name,
				OriginalNames: cm.OriginalNames,
				Timestamp:     cm.Timestamp,
				MergeCount:    cm.MergeCount,
				Confidence:    cm.Confidence,
				Severity:      cm.Severity,
				Details:       cm.Details,
				References:    cm.References,
			}
			if cm.Timestamp != nil {
				e.Date = cm.Timestamp.Format("2006-01-02")
			}
			events = append(events, e)
		}
	}

	for _, sp := range in.Scores {
		ts := sp.Timestamp
		events = append(events, &domainTimeline.Event{
			Category:   clinical.CategoryFunctional,
			Type:       domainTimeline.EventOutcome,
			Name:       scoreEventName(sp),
			Date:       ts.Format("2006-01-02"),
			Timestamp:  &ts,
			MergeCount: 1,
			Confidence: 1.0,
			Details:    sp.Context,
		})
	}
	return events
}

func scoreEventName(sp functional.ScorePoint) string {
	return string(sp.ScaleType) + " " + strconv.FormatFloat(sp.Raw, 'f', -1, 64)
}

// ─────────────────────────────────────────────────────────────────────────────
// Milestones
// ─────────────────────────────────────────────────────────────────────────────

// milestoneRule locates one milestone on the already-sorted event list.
type milestoneRule struct {
	mType        domainTimeline.MilestoneType
	significance domainTimeline.Significance
	match        func(*domainTimeline.Event) bool
}

var milestoneRules = []milestoneRule{
	{
		mType:        domainTimeline.MilestoneSymptomOnset,
		significance: domainTimeline.SignificanceHigh,
		match:        func(e *domainTimeline.Event) bool { return e.Category == clinical.CategorySymptomOnset },
	},
	{
		mType:        domainTimeline.MilestoneAdmission,
		significance: domainTimeline.SignificanceHigh,
		match:        func(e *domainTimeline.Event) bool { return e.Category == clinical.CategoryAdmission },
	},
	{
		mType:        domainTimeline.MilestoneFirstTherapeutic,
		significance: domainTimeline.SignificanceHigh,
		match:        func(e *domainTimeline.Event) bool { return e.Category == clinical.CategoryProcedure },
	},
	{
		mType:        domainTimeline.MilestoneFirstComplication,
		significance: domainTimeline.SignificanceMedium,
		match:        func(e *domainTimeline.Event) bool { return e.Type == domainTimeline.EventComplication },
	},
	{
		mType:        domainTimeline.MilestoneDischarge,
		significance: domainTimeline.SignificanceMedium,
		match:        func(e *domainTimeline.Event) bool { return e.Category == clinical.CategoryDischarge },
	},
}

// milestones scans the sorted list once per rule, taking the first match.
func (b *Builder) milestones(events []*domainTimeline.Event) []domainTimeline.Milestone {
	out := []domainTimeline.Milestone{}
	for _, rule := range milestoneRules {
		for _, e := range events {
			if !rule.match(e) {
				continue
			}
			out = append(out, domainTimeline.Milestone{
				Type:         rule.mType,
				EventID:      e.ID,
				Name:         e.Name,
				Date:         e.Date,
				Timestamp:    e.Timestamp,
				Significance: rule.significance,
			})
			break
		}
	}
	return out
}

// dateRange spans the earliest to the latest dated event, nil when nothing
// on the timeline carries a timestamp.
func dateRange(events []*domainTimeline.Event) *domainTimeline.DateRange {
	var r *domainTimeline.DateRange
	for _, e := range events {
		if e.Timestamp == nil {
			continue
		}
		if r == nil {
			r = &domainTimeline.DateRange{Start: *e.Timestamp, End: *e.Timestamp}
			continue
		}
		if e.Timestamp.Before(r.Start) {
			r.Start = *e.Timestamp
		}
		if e.Timestamp.After(r.End) {
			r.End = *e.Timestamp
		}
	}
	if r != nil {
		r.Days = int(r.End.Sub(r.Start).Hours() / 24)
	}
	return r
}
