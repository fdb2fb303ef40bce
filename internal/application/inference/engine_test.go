package inference

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroscribe/timeline-engine/internal/config"
	domainTimeline "github.com/neuroscribe/timeline-engine/internal/domain/timeline"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

func testEngine() *Engine {
	return NewEngine(config.Default().Inference, nil)
}

func at(day, hour int) *time.Time {
	t := time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func event(cat clinical.Category, name string, ts *time.Time) *domainTimeline.Event {
	et, _ := domainTimeline.TypeForCategory(cat)
	return &domainTimeline.Event{Category: cat, Type: et, Name: name, Timestamp: ts}
}

// assemble sorts, numbers and wraps events the way the builder would.
func assemble(events ...*domainTimeline.Event) *domainTimeline.Timeline {
	sort.SliceStable(events, func(i, j int) bool { return domainTimeline.Less(events[i], events[j]) })
	for i, e := range events {
		e.ID = fmt.Sprintf("event_%03d", i+1)
	}
	t := domainTimeline.Empty()
	t.Events = events
	return t
}

func ofType(rels []domainTimeline.Relationship, rt domainTimeline.RelationType) []domainTimeline.Relationship {
	var out []domainTimeline.Relationship
	for _, r := range rels {
		if r.Type == rt {
			out = append(out, r)
		}
	}
	return out
}

func TestInfer_TriggersUrgencyBuckets(t *testing.T) {
	tl := assemble(
		event(clinical.CategoryComplication, "vasospasm", at(5, 8)),
		event(clinical.CategoryProcedure, "angioplasty", at(5, 20)),       // 12h gap: urgent
		event(clinical.CategoryMedication, "milrinone", at(6, 20)),        // 36h gap: routine
		event(clinical.CategoryProcedure, "second angioplasty", at(8, 8)), // 72h: outside window
	)

	triggers := ofType(testEngine().Infer(tl), domainTimeline.RelationTriggers)
	require.Len(t, triggers, 2)

	assert.Equal(t, "urgent", triggers[0].Urgency)
	assert.Equal(t, "24h", triggers[0].TimeWindow)
	assert.Equal(t, "routine", triggers[1].Urgency)
	assert.Equal(t, "48h", triggers[1].TimeWindow)
	for _, r := range triggers {
		assert.InDelta(t, 0.80, r.Confidence, 1e-9)
	}
}

func TestInfer_TriggersWindowBoundaries(t *testing.T) {
	tl := assemble(
		event(clinical.CategoryComplication, "vasospasm", at(5, 0)),
		event(clinical.CategoryProcedure, "angioplasty", at(6, 0)),        // exactly 24h: urgent
		event(clinical.CategoryProcedure, "second angioplasty", at(9, 0)), // 96h: beyond the 48h window
	)

	triggers := ofType(testEngine().Infer(tl), domainTimeline.RelationTriggers)
	require.Len(t, triggers, 1, "a four-day-late intervention is not triggered by the complication")
	assert.Equal(t, "urgent", triggers[0].Urgency)
	assert.Equal(t, "24h", triggers[0].TimeWindow)
	assert.Equal(t, "angioplasty", tl.EventByID(triggers[0].To).Name)
}

func TestInfer_LeadsToConfidenceDecay(t *testing.T) {
	tl := assemble(
		event(clinical.CategoryProcedure, "coiling", at(2, 9)),
		event(clinical.CategoryComplication, "vasospasm", at(7, 9)),     // 5d: early
		event(clinical.CategoryComplication, "hydrocephalus", at(13, 9)), // 11d: late
		event(clinical.CategoryComplication, "pneumonia", at(20, 9)),     // 18d: outside
	)

	leads := ofType(testEngine().Infer(tl), domainTimeline.RelationLeadsTo)
	require.Len(t, leads, 2)
	assert.InDelta(t, 0.85, leads[0].Confidence, 1e-9)
	assert.InDelta(t, 0.70, leads[1].Confidence, 1e-9)
}

func TestInfer_LeadsToSkipsMedications(t *testing.T) {
	tl := assemble(
		event(clinical.CategoryMedication, "dexamethasone", at(2, 9)),
		event(clinical.CategoryComplication, "hyponatremia", at(4, 9)),
	)

	leads := ofType(testEngine().Infer(tl), domainTimeline.RelationLeadsTo)
	assert.Empty(t, leads, "only procedures emit procedural complications")
}

func TestInfer_RespondsTo(t *testing.T) {
	tl := assemble(
		event(clinical.CategoryProcedure, "coiling", at(2, 9)),
		event(clinical.CategoryFunctional, "KPS 70", at(16, 9)),
		event(clinical.CategoryFunctional, "KPS 80", at(28, 9)), // 26d: outside window
	)

	responds := ofType(testEngine().Infer(tl), domainTimeline.RelationRespondsTo)
	require.Len(t, responds, 1)
	assert.Equal(t, "KPS 70", tl.EventByID(responds[0].To).Name)
	assert.InDelta(t, 0.70, responds[0].Confidence, 1e-9)
	assert.Equal(t, "21d", responds[0].TimeWindow)
}

func TestInfer_PreventsFiresWithoutComplication(t *testing.T) {
	tl := assemble(
		event(clinical.CategoryMedication, "nimodipine", at(1, 9)),
	)

	prevents := ofType(testEngine().Infer(tl), domainTimeline.RelationPrevents)
	require.Len(t, prevents, 1)
	assert.Empty(t, prevents[0].To)
	assert.Equal(t, "successful", prevents[0].Effectiveness)
	assert.InDelta(t, 0.75, prevents[0].Confidence, 1e-9)
}

func TestInfer_PreventsSuppressedByComplication(t *testing.T) {
	tl := assemble(
		event(clinical.CategoryMedication, "nimodipine", at(1, 9)),
		event(clinical.CategoryComplication, "cerebral vasospasm", at(6, 9)),
	)

	prevents := ofType(testEngine().Infer(tl), domainTimeline.RelationPrevents)
	assert.Empty(t, prevents)
}

func TestInfer_AppendsToSourceEvent(t *testing.T) {
	tl := assemble(
		event(clinical.CategoryComplication, "vasospasm", at(5, 8)),
		event(clinical.CategoryProcedure, "angioplasty", at(5, 20)),
	)

	rels := testEngine().Infer(tl)
	require.NotEmpty(t, rels)

	from := tl.EventByID(rels[0].From)
	require.NotNil(t, from)
	assert.Equal(t, rels[0], from.Relationships[0])
}

func TestInfer_UndatedEventsExcluded(t *testing.T) {
	tl := assemble(
		event(clinical.CategoryComplication, "vasospasm", at(5, 8)),
		event(clinical.CategoryProcedure, "angioplasty", nil),
	)

	rels := testEngine().Infer(tl)
	assert.Empty(t, ofType(rels, domainTimeline.RelationTriggers))
}
