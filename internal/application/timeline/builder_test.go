package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroscribe/timeline-engine/internal/application/identity"
	"github.com/neuroscribe/timeline-engine/internal/domain/functional"
	domainTimeline "github.com/neuroscribe/timeline-engine/internal/domain/timeline"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

func day(d int) *time.Time {
	t := time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func canonical(name string, ts *time.Time) identity.CanonicalMention {
	return identity.CanonicalMention{Name: name, Timestamp: ts, MergeCount: 1, Confidence: 0.9}
}

func TestBuild_SortAndIdentify(t *testing.T) {
	b := NewBuilder(nil)

	tl := b.Build(BuildInput{Canonical: map[clinical.Category][]identity.CanonicalMention{
		clinical.CategoryComplication: {canonical("vasospasm", day(5))},
		clinical.CategoryProcedure:    {canonical("coiling", day(2))},
		clinical.CategoryImaging:      {canonical("ct angiogram", day(2))},
		clinical.CategoryAdmission:    {canonical("admission", day(1))},
	}})

	require.Len(t, tl.Events, 4)
	// Chronological with same-day type priority: diagnostic before therapeutic.
	assert.Equal(t, "admission", tl.Events[0].Name)
	assert.Equal(t, "ct angiogram", tl.Events[1].Name)
	assert.Equal(t, "coiling", tl.Events[2].Name)
	assert.Equal(t, "vasospasm", tl.Events[3].Name)

	assert.Equal(t, "event_001", tl.Events[0].ID)
	assert.Equal(t, "event_004", tl.Events[3].ID)
	assert.Equal(t, 4, tl.Metadata.TotalEvents)
}

func TestBuild_UndatedEventsSortLast(t *testing.T) {
	b := NewBuilder(nil)

	tl := b.Build(BuildInput{Canonical: map[clinical.Category][]identity.CanonicalMention{
		clinical.CategoryMedication: {canonical("nimodipine", nil)},
		clinical.CategoryProcedure:  {canonical("coiling", day(2))},
	}})

	require.Len(t, tl.Events, 2)
	assert.Equal(t, "coiling", tl.Events[0].Name)
	assert.Nil(t, tl.Events[1].Timestamp)
	assert.Equal(t, "event_002", tl.Events[1].ID)
}

func TestBuild_ScorePointsBecomeOutcomeEvents(t *testing.T) {
	b := NewBuilder(nil)

	tl := b.Build(BuildInput{
		Scores: []functional.ScorePoint{
			{ScaleType: clinical.ScaleKPS, Raw: 70, Normalized: 70, Timestamp: *day(14), Context: "at discharge"},
		},
	})

	require.Len(t, tl.Events, 1)
	e := tl.Events[0]
	assert.Equal(t, domainTimeline.EventOutcome, e.Type)
	assert.Equal(t, "KPS 70", e.Name)
	assert.Equal(t, "2024-03-14", e.Date)
}

func TestBuild_Milestones(t *testing.T) {
	b := NewBuilder(nil)

	tl := b.Build(BuildInput{Canonical: map[clinical.Category][]identity.CanonicalMention{
		clinical.CategorySymptomOnset: {canonical("thunderclap headache", day(1))},
		clinical.CategoryAdmission:    {canonical("admission", day(1))},
		clinical.CategoryProcedure: {
			canonical("coiling", day(2)),
			canonical("evd placement", day(3)),
		},
		clinical.CategoryComplication: {canonical("vasospasm", day(5))},
		clinical.CategoryDischarge:    {canonical("discharge", day(14))},
	}})

	require.Len(t, tl.Milestones, 5)

	byType := map[domainTimeline.MilestoneType]domainTimeline.Milestone{}
	for _, m := range tl.Milestones {
		byType[m.Type] = m
	}
	assert.Equal(t, "coiling", byType[domainTimeline.MilestoneFirstTherapeutic].Name,
		"earliest procedure wins first_therapeutic")
	assert.Equal(t, domainTimeline.SignificanceHigh, byType[domainTimeline.MilestoneAdmission].Significance)
	assert.Equal(t, domainTimeline.SignificanceMedium, byType[domainTimeline.MilestoneDischarge].Significance)
	assert.Equal(t, tl.EventByID(byType[domainTimeline.MilestoneFirstComplication].EventID).Name, "vasospasm")
	assert.Equal(t, 5, tl.Metadata.TotalMilestones)
}

func TestBuild_DateRange(t *testing.T) {
	b := NewBuilder(nil)

	tl := b.Build(BuildInput{Canonical: map[clinical.Category][]identity.CanonicalMention{
		clinical.CategoryAdmission: {canonical("admission", day(1))},
		clinical.CategoryDischarge: {canonical("discharge", day(15))},
		clinical.CategoryMedication: {canonical("nimodipine", nil)},
	}})

	require.NotNil(t, tl.Metadata.DateRange)
	assert.Equal(t, 14, tl.Metadata.DateRange.Days)
	assert.Equal(t, day(1).Unix(), tl.Metadata.DateRange.Start.Unix())
	assert.Equal(t, day(15).Unix(), tl.Metadata.DateRange.End.Unix())
}

func TestBuild_EmptyInput(t *testing.T) {
	b := NewBuilder(nil)

	tl := b.Build(BuildInput{})

	assert.Empty(t, tl.Events)
	assert.Empty(t, tl.Milestones)
	assert.Nil(t, tl.Metadata.DateRange)
}
