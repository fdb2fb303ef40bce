// Package timeline holds the canonical timeline aggregate: events,
// relationships, milestones, and the ordering rules that make the timeline
// deterministic.  Events are created by the timeline builder and owned
// exclusively by the Timeline; after construction the only permitted
// mutation is appending relationship back-links.
package timeline

import (
	"fmt"
	"time"

	"github.com/neuroscribe/timeline-engine/pkg/errors"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

// ─────────────────────────────────────────────────────────────────────────────
// Event type
// ─────────────────────────────────────────────────────────────────────────────

// EventType is one of the four clinical event classes placed on the timeline.
type EventType string

const (
	EventDiagnostic   EventType = "DIAGNOSTIC"
	EventTherapeutic  EventType = "THERAPEUTIC"
	EventComplication EventType = "COMPLICATION"
	EventOutcome      EventType = "OUTCOME"
)

// Priority returns the same-day ordering rank of the event type, reflecting
// typical clinical sequencing: tests before treatment before adverse events
// before outcome measurement.
func (t EventType) Priority() int {
	switch t {
	case EventDiagnostic:
		return 0
	case EventTherapeutic:
		return 1
	case EventComplication:
		return 2
	case EventOutcome:
		return 3
	default:
		return 4
	}
}

// categoryTypes is the static category→event-type table used at collection
// time.  Unknown categories do not enter the timeline.
var categoryTypes = map[clinical.Category]EventType{
	clinical.CategoryProcedure:    EventTherapeutic,
	clinical.CategoryMedication:   EventTherapeutic,
	clinical.CategoryComplication: EventComplication,
	clinical.CategoryImaging:      EventDiagnostic,
	clinical.CategorySymptomOnset: EventDiagnostic,
	clinical.CategoryAdmission:    EventOutcome,
	clinical.CategoryDischarge:    EventOutcome,
	clinical.CategoryFunctional:   EventOutcome,
}

// TypeForCategory maps a mention category to its event type.
func TypeForCategory(c clinical.Category) (EventType, bool) {
	t, ok := categoryTypes[c]
	return t, ok
}

// ─────────────────────────────────────────────────────────────────────────────
// Relationships
// ─────────────────────────────────────────────────────────────────────────────

// RelationType classifies a directed edge between timeline events.
type RelationType string

const (
	RelationTriggers         RelationType = "TRIGGERS"
	RelationLeadsTo          RelationType = "LEADS_TO"
	RelationRespondsTo       RelationType = "RESPONDS_TO"
	RelationPrevents         RelationType = "PREVENTS"
	RelationCauseEffect      RelationType = "CAUSE_EFFECT"
	RelationContraindication RelationType = "CONTRAINDICATION"
	RelationIndication       RelationType = "INDICATION"
)

// Relationship is a directed, confidence-scored edge.  To is empty for a
// prevention edge whose target complication never materialised.
type Relationship struct {
	From          string       `json:"from"`
	To            string       `json:"to,omitempty"`
	Type          RelationType `json:"type"`
	Confidence    float64      `json:"confidence"`
	TimeWindow    string       `json:"time_window,omitempty"`
	Description   string       `json:"description,omitempty"`
	Urgency       string       `json:"urgency,omitempty"`
	Effectiveness string       `json:"effectiveness,omitempty"`
}

// Validate enforces the relationship invariants: a From event, a known type,
// a confidence in [0,1].
func (r *Relationship) Validate() error {
	if r.From == "" {
		return errors.New(errors.ErrCodeRelationshipInvalid, "relationship requires a source event")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return errors.New(errors.ErrCodeRelationshipInvalid,
			fmt.Sprintf("relationship confidence %.2f out of [0,1]", r.Confidence))
	}
	switch r.Type {
	case RelationTriggers, RelationLeadsTo, RelationRespondsTo, RelationPrevents,
		RelationCauseEffect, RelationContraindication, RelationIndication:
		return nil
	default:
		return errors.New(errors.ErrCodeRelationshipInvalid, "unknown relationship type: "+string(r.Type))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Events
// ─────────────────────────────────────────────────────────────────────────────

// Reference is a backward-looking mention attached to the event it points at,
// never promoted to a standalone event.
type Reference struct {
	Name      string `json:"name"`
	Context   string `json:"context,omitempty"`
	PODOffset *int   `json:"pod_offset,omitempty"`
	Position  int    `json:"position"`
}

// Event is the canonical, deduplicated timeline unit.
type Event struct {
	ID            string            `json:"id"`
	Category      clinical.Category `json:"category"`
	Type          EventType         `json:"type"`
	Name          string            `json:"name"`
	OriginalNames []string          `json:"original_names,omitempty"`
	Date          string            `json:"date,omitempty"`
	Timestamp     *time.Time        `json:"timestamp,omitempty"`
	MergeCount    int               `json:"merge_count"`
	Confidence    float64           `json:"confidence"`
	Severity      string            `json:"severity,omitempty"`
	Details       string            `json:"details,omitempty"`
	References    []Reference       `json:"references,omitempty"`
	Relationships []Relationship    `json:"relationships,omitempty"`
}

// Less is the deterministic timeline ordering: timestamp ascending with nil
// timestamps last, then event-type priority, then source name as a final
// stable tie-break.
func Less(a, b *Event) bool {
	switch {
	case a.Timestamp == nil && b.Timestamp == nil:
		// fall through to type priority
	case a.Timestamp == nil:
		return false
	case b.Timestamp == nil:
		return true
	case !a.Timestamp.Equal(*b.Timestamp):
		return a.Timestamp.Before(*b.Timestamp)
	}
	if pa, pb := a.Type.Priority(), b.Type.Priority(); pa != pb {
		return pa < pb
	}
	return a.Name < b.Name
}

// ─────────────────────────────────────────────────────────────────────────────
// Milestones
// ─────────────────────────────────────────────────────────────────────────────

// MilestoneType names a recognised timeline milestone.
type MilestoneType string

const (
	MilestoneSymptomOnset      MilestoneType = "symptom_onset"
	MilestoneAdmission         MilestoneType = "admission"
	MilestoneFirstTherapeutic  MilestoneType = "first_therapeutic"
	MilestoneFirstComplication MilestoneType = "first_complication"
	MilestoneDischarge         MilestoneType = "discharge"
)

// Significance grades how pivotal a milestone is for downstream analysis.
type Significance string

const (
	SignificanceHigh   Significance = "high"
	SignificanceMedium Significance = "medium"
)

// Milestone is a flagged pivotal event with a back-reference to its source.
type Milestone struct {
	Type         MilestoneType `json:"type"`
	EventID      string        `json:"event_id"`
	Name         string        `json:"name"`
	Date         string        `json:"date,omitempty"`
	Timestamp    *time.Time    `json:"timestamp,omitempty"`
	Significance Significance  `json:"significance"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Timeline
// ─────────────────────────────────────────────────────────────────────────────

// DateRange spans the first to the last dated event.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// Metadata summarises the assembled timeline.
type Metadata struct {
	TotalEvents        int        `json:"total_events"`
	TotalRelationships int        `json:"total_relationships"`
	TotalMilestones    int        `json:"total_milestones"`
	DateRange          *DateRange `json:"date_range,omitempty"`
}

// Timeline is the engine's primary output aggregate.
type Timeline struct {
	Events        []*Event       `json:"events"`
	Milestones    []Milestone    `json:"milestones"`
	Relationships []Relationship `json:"relationships"`
	Metadata      Metadata       `json:"metadata"`
}

// Empty returns the documented degraded result: well-typed, zero-length
// collections rather than nils, so callers can always range safely.
func Empty() *Timeline {
	return &Timeline{
		Events:        []*Event{},
		Milestones:    []Milestone{},
		Relationships: []Relationship{},
	}
}

// EventByID returns the event with the given id, or nil.
func (t *Timeline) EventByID(id string) *Event {
	for _, e := range t.Events {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// FirstOfType returns the earliest event of the given type, or nil.
func (t *Timeline) FirstOfType(et EventType) *Event {
	for _, e := range t.Events {
		if e.Type == et {
			return e
		}
	}
	return nil
}
