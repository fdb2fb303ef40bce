package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

func at(d int) *time.Time {
	t := time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestLess_TimestampAscending(t *testing.T) {
	a := &Event{Name: "a", Type: EventTherapeutic, Timestamp: at(1)}
	b := &Event{Name: "b", Type: EventTherapeutic, Timestamp: at(2)}

	assert.True(t, Less(a, b))
	assert.False(t, Less(b, a))
}

func TestLess_NilTimestampsLast(t *testing.T) {
	dated := &Event{Name: "dated", Type: EventTherapeutic, Timestamp: at(1)}
	undated := &Event{Name: "undated", Type: EventTherapeutic}

	assert.True(t, Less(dated, undated))
	assert.False(t, Less(undated, dated))
}

func TestLess_SameDayTypePriority(t *testing.T) {
	diagnostic := &Event{Name: "ct", Type: EventDiagnostic, Timestamp: at(2)}
	therapeutic := &Event{Name: "coiling", Type: EventTherapeutic, Timestamp: at(2)}
	complication := &Event{Name: "vasospasm", Type: EventComplication, Timestamp: at(2)}
	outcome := &Event{Name: "kps", Type: EventOutcome, Timestamp: at(2)}

	assert.True(t, Less(diagnostic, therapeutic))
	assert.True(t, Less(therapeutic, complication))
	assert.True(t, Less(complication, outcome))
}

func TestLess_NameTieBreak(t *testing.T) {
	a := &Event{Name: "angioplasty", Type: EventTherapeutic, Timestamp: at(2)}
	b := &Event{Name: "coiling", Type: EventTherapeutic, Timestamp: at(2)}

	assert.True(t, Less(a, b))
}

func TestTypeForCategory(t *testing.T) {
	cases := map[clinical.Category]EventType{
		clinical.CategoryProcedure:    EventTherapeutic,
		clinical.CategoryMedication:   EventTherapeutic,
		clinical.CategoryComplication: EventComplication,
		clinical.CategoryImaging:      EventDiagnostic,
		clinical.CategoryFunctional:   EventOutcome,
	}
	for cat, want := range cases {
		got, ok := TypeForCategory(cat)
		assert.True(t, ok, cat)
		assert.Equal(t, want, got, cat)
	}

	_, ok := TypeForCategory(clinical.Category("bogus"))
	assert.False(t, ok)
}

func TestRelationshipValidate(t *testing.T) {
	valid := &Relationship{From: "event_001", To: "event_002", Type: RelationTriggers, Confidence: 0.8}
	assert.NoError(t, valid.Validate())

	prevents := &Relationship{From: "event_001", Type: RelationPrevents, Confidence: 0.75}
	assert.NoError(t, prevents.Validate(), "prevents edges have no target")

	assert.Error(t, (&Relationship{Type: RelationTriggers, Confidence: 0.8}).Validate())
	assert.Error(t, (&Relationship{From: "event_001", Type: RelationTriggers, Confidence: 1.5}).Validate())
	assert.Error(t, (&Relationship{From: "event_001", Type: RelationType("BOGUS"), Confidence: 0.5}).Validate())
}

func TestEmptyIsWellTyped(t *testing.T) {
	e := Empty()

	assert.NotNil(t, e.Events)
	assert.NotNil(t, e.Milestones)
	assert.NotNil(t, e.Relationships)
	assert.Empty(t, e.Events)
}

func TestFirstOfType(t *testing.T) {
	tl := Empty()
	tl.Events = []*Event{
		{ID: "event_001", Type: EventDiagnostic},
		{ID: "event_002", Type: EventTherapeutic},
		{ID: "event_003", Type: EventTherapeutic},
	}

	first := tl.FirstOfType(EventTherapeutic)
	assert.Equal(t, "event_002", first.ID)
	assert.Nil(t, tl.FirstOfType(EventComplication))
	assert.Equal(t, "event_003", tl.EventByID("event_003").ID)
	assert.Nil(t, tl.EventByID("event_999"))
}
