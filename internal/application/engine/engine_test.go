package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroscribe/timeline-engine/internal/domain/functional"
	domainTimeline "github.com/neuroscribe/timeline-engine/internal/domain/timeline"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

func day(d int) *time.Time {
	t := time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// sahDocument is a representative aneurysmal subarachnoid hemorrhage course:
// admission, coiling, prophylaxis, a vasospasm treated by angioplasty, and
// admission/discharge Karnofsky scores.
func sahDocument() *clinical.Document {
	return &clinical.Document{
		ID: "doc-001",
		KeyDates: []clinical.Mention{
			keyDate("admission", clinical.CategoryAdmission, "2024-03-01"),
			keyDate("symptom onset", clinical.CategorySymptomOnset, "2024-03-01"),
			keyDate("discharge", clinical.CategoryDischarge, "2024-03-14"),
		},
		Procedures: []clinical.Mention{
			{Category: clinical.CategoryProcedure, Name: "aneurysm coiling", RawDate: "2024-03-02", Context: "underwent aneurysm coiling"},
			{Category: clinical.CategoryProcedure, Name: "angioplasty", RawDate: "2024-03-07", Context: "underwent angioplasty for vasospasm"},
		},
		Medications: []clinical.Mention{
			{Category: clinical.CategoryMedication, Name: "nimodipine", RawDate: "2024-03-02", Context: "started nimodipine"},
		},
		Complications: []clinical.Mention{
			{Category: clinical.CategoryComplication, Name: "vasospasm", RawDate: "2024-03-06", Context: "developed vasospasm", Severity: "moderate"},
			{Category: clinical.CategoryComplication, Name: "hydrocephalus", Context: "no evidence of hydrocephalus"},
		},
		Functional: clinical.FunctionalData{
			AdmissionScores: map[clinical.ScaleType]float64{clinical.ScaleKPS: 40},
			DischargeScores: map[clinical.ScaleType]float64{clinical.ScaleKPS: 80},
		},
		Anchors: clinical.ReferenceAnchors{
			Admission:      day(1),
			FirstProcedure: day(2),
		},
	}
}

func keyDate(name string, cat clinical.Category, date string) clinical.Mention {
	return clinical.Mention{Name: name, Category: cat, RawDate: date}
}

func TestAnalyze_FullPipeline(t *testing.T) {
	e := New(nil, nil, nil)

	result := e.Analyze(context.Background(), sahDocument())

	require.NotNil(t, result.Timeline)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "doc-001", result.DocumentID)

	// Negated hydrocephalus must not appear.
	for _, ev := range result.Timeline.Events {
		assert.NotContains(t, ev.Name, "hydrocephalus")
	}

	// Vasospasm treated by same-week angioplasty: a TRIGGERS edge exists.
	var triggers []domainTimeline.Relationship
	for _, r := range result.Timeline.Relationships {
		if r.Type == domainTimeline.RelationTriggers {
			triggers = append(triggers, r)
		}
	}
	require.NotEmpty(t, triggers)
	assert.Equal(t, "vasospasm", result.Timeline.EventByID(triggers[0].From).Name)

	// Functional course improves rapidly (40 normalized points in 13 days).
	require.NotNil(t, result.FunctionalEvolution.Trajectory)
	assert.Equal(t, functional.PatternImproving, result.FunctionalEvolution.Trajectory.Pattern)

	// Nimodipine with vasospasm recorded pairs as worsened prophylaxis.
	require.NotNil(t, result.TreatmentResponse)
	assert.NotEmpty(t, result.TreatmentResponse.Pairings)

	assert.Equal(t, result.Timeline.Metadata.TotalRelationships, len(result.Timeline.Relationships))
}

func TestAnalyze_Deterministic(t *testing.T) {
	e := New(nil, nil, nil)

	a := e.Analyze(context.Background(), sahDocument())
	b := e.Analyze(context.Background(), sahDocument())

	require.Equal(t, len(a.Timeline.Events), len(b.Timeline.Events))
	for i := range a.Timeline.Events {
		assert.Equal(t, a.Timeline.Events[i].ID, b.Timeline.Events[i].ID)
		assert.Equal(t, a.Timeline.Events[i].Name, b.Timeline.Events[i].Name)
	}
	assert.Equal(t, a.Timeline.Relationships, b.Timeline.Relationships)
	assert.Equal(t, a.Timeline.Milestones, b.Timeline.Milestones)
}

func TestAnalyze_SortInvariant(t *testing.T) {
	e := New(nil, nil, nil)

	doc := sahDocument()
	doc.Medications = append(doc.Medications, clinical.Mention{
		Category: clinical.CategoryMedication, Name: "levetiracetam", Context: "continued levetiracetam",
	})
	result := e.Analyze(context.Background(), doc)

	events := result.Timeline.Events
	for i := 1; i < len(events); i++ {
		prev, cur := events[i-1], events[i]
		if prev.Timestamp == nil {
			assert.Nil(t, cur.Timestamp, "undated events must all sort last")
			continue
		}
		if cur.Timestamp != nil {
			assert.False(t, cur.Timestamp.Before(*prev.Timestamp))
		}
	}
}

func TestAnalyze_MalformedMentionSkipped(t *testing.T) {
	e := New(nil, nil, nil)

	doc := &clinical.Document{
		Procedures: []clinical.Mention{
			{Category: clinical.CategoryProcedure, Name: ""},
			{Category: clinical.CategoryProcedure, Name: "craniotomy", RawDate: "2024-03-02"},
		},
	}
	result := e.Analyze(context.Background(), doc)

	require.Len(t, result.Timeline.Events, 1)
	assert.Equal(t, "craniotomy", result.Timeline.Events[0].Name)
}

func TestAnalyze_NilDocument(t *testing.T) {
	e := New(nil, nil, nil)

	result := e.Analyze(context.Background(), nil)

	require.NotNil(t, result.Timeline)
	assert.Empty(t, result.Timeline.Events)
	assert.NotNil(t, result.TreatmentResponse)
	assert.NotNil(t, result.FunctionalEvolution)
}

func TestAnalyze_EchoesParameters(t *testing.T) {
	e := New(nil, nil, nil)

	result := e.Analyze(context.Background(), sahDocument())

	assert.InDelta(t, 0.75, result.Parameters.SimilarityThreshold, 1e-9)
	assert.Equal(t, 48, result.Parameters.TriggerWindowHours)
	assert.Equal(t, 14, result.Parameters.LeadsToWindowDays)
	assert.Equal(t, 21, result.Parameters.RespondsToWindowDays)
}

func TestGuard_RecoversStagePanic(t *testing.T) {
	e := New(nil, nil, nil)

	degraded := "seeded empty value"
	assert.NotPanics(t, func() {
		e.guard(e.logger, "inference", func() {
			degraded = "partial write"
			panic("boom")
		})
	})

	// The stage's output keeps whatever was written before the panic; the
	// run itself continues.
	assert.Equal(t, "partial write", degraded)
}

func TestAnalyze_UnparseableDateSortsLast(t *testing.T) {
	e := New(nil, nil, nil)

	doc := &clinical.Document{
		Procedures: []clinical.Mention{
			{Category: clinical.CategoryProcedure, Name: "craniotomy", RawDate: "sometime in spring"},
			{Category: clinical.CategoryProcedure, Name: "evd placement", RawDate: "2024-03-02"},
		},
	}
	result := e.Analyze(context.Background(), doc)

	require.Len(t, result.Timeline.Events, 2)
	assert.Equal(t, "evd placement", result.Timeline.Events[0].Name)
	assert.Nil(t, result.Timeline.Events[1].Timestamp)
}
