package response

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroscribe/timeline-engine/internal/config"
	domainResponse "github.com/neuroscribe/timeline-engine/internal/domain/response"
	domainTimeline "github.com/neuroscribe/timeline-engine/internal/domain/timeline"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

func testTracker() *Tracker {
	return NewTracker(config.Default().Response, nil)
}

func day(d int) *time.Time {
	t := time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func event(cat clinical.Category, name string, ts *time.Time) *domainTimeline.Event {
	et, _ := domainTimeline.TypeForCategory(cat)
	return &domainTimeline.Event{Category: cat, Type: et, Name: name, Timestamp: ts, MergeCount: 1}
}

func assemble(events ...*domainTimeline.Event) *domainTimeline.Timeline {
	sort.SliceStable(events, func(i, j int) bool { return domainTimeline.Less(events[i], events[j]) })
	for i, e := range events {
		e.ID = fmt.Sprintf("event_%03d", i+1)
	}
	t := domainTimeline.Empty()
	t.Events = events
	return t
}

func pairingFor(t *testing.T, report *domainResponse.Report, intervention string) domainResponse.Pairing {
	t.Helper()
	for _, p := range report.Pairings {
		if p.Intervention == intervention {
			return p
		}
	}
	t.Fatalf("no pairing for %q", intervention)
	return domainResponse.Pairing{}
}

func TestTrack_ProphylaxisImproved(t *testing.T) {
	tl := assemble(event(clinical.CategoryMedication, "nimodipine", day(1)))

	report := testTracker().Track(tl, clinical.FunctionalData{})

	p := pairingFor(t, report, "nimodipine")
	assert.Equal(t, domainResponse.Improved, p.Response)
	assert.Equal(t, "no vasospasm", p.Outcome)
	require.NotNil(t, p.Effectiveness)
	assert.InDelta(t, 25, p.Effectiveness.Completeness, 1e-9)
	assert.InDelta(t, 25, p.Effectiveness.SideEffects, 1e-9)
}

func TestTrack_ProphylaxisWorsened(t *testing.T) {
	tl := assemble(
		event(clinical.CategoryMedication, "nimodipine", day(1)),
		event(clinical.CategoryComplication, "cerebral vasospasm", day(6)),
	)

	report := testTracker().Track(tl, clinical.FunctionalData{})

	p := pairingFor(t, report, "nimodipine")
	assert.Equal(t, domainResponse.Worsened, p.Response)
	assert.Equal(t, "cerebral vasospasm", p.Outcome)
	assert.Equal(t, "5d", p.TimeToResponse)
	assert.InDelta(t, 0, p.Effectiveness.Completeness, 1e-9)
	assert.InDelta(t, 20, p.Effectiveness.SideEffects, 1e-9)
}

func TestTrack_AnticoagulantBleed(t *testing.T) {
	tl := assemble(
		event(clinical.CategoryMedication, "warfarin", day(2)),
		event(clinical.CategoryComplication, "subdural hematoma", day(4)),
	)

	report := testTracker().Track(tl, clinical.FunctionalData{})

	p := pairingFor(t, report, "warfarin")
	assert.Equal(t, domainResponse.Worsened, p.Response)
	assert.Equal(t, "subdural hematoma", p.Outcome)
}

func TestTrack_AnticoagulantClean(t *testing.T) {
	tl := assemble(event(clinical.CategoryMedication, "warfarin", day(2)))

	report := testTracker().Track(tl, clinical.FunctionalData{})

	p := pairingFor(t, report, "warfarin")
	assert.Equal(t, domainResponse.Stable, p.Response)
}

func TestTrack_ProcedureImprovedOnGoodScore(t *testing.T) {
	tl := assemble(event(clinical.CategoryProcedure, "craniotomy", day(2)))
	functional := clinical.FunctionalData{
		DischargeScores: map[clinical.ScaleType]float64{clinical.ScaleMRS: 1},
	}

	report := testTracker().Track(tl, functional)

	p := pairingFor(t, report, "craniotomy")
	assert.Equal(t, domainResponse.Improved, p.Response)
	assert.InDelta(t, 25, p.Effectiveness.Completeness, 1e-9)
}

func TestTrack_ProcedureWorsenedOnSevereComplication(t *testing.T) {
	comp := event(clinical.CategoryComplication, "malignant cerebral edema", day(4))
	comp.Severity = "severe"
	tl := assemble(event(clinical.CategoryProcedure, "craniotomy", day(2)), comp)

	report := testTracker().Track(tl, clinical.FunctionalData{
		DischargeScores: map[clinical.ScaleType]float64{clinical.ScaleKPS: 80},
	})

	p := pairingFor(t, report, "craniotomy")
	assert.Equal(t, domainResponse.Worsened, p.Response)
	assert.InDelta(t, 0, p.Effectiveness.Completeness, 1e-9)
}

func TestTrack_ProcedurePartialOnMidRangeScore(t *testing.T) {
	tl := assemble(event(clinical.CategoryProcedure, "craniotomy", day(2)))
	functional := clinical.FunctionalData{
		DischargeScores: map[clinical.ScaleType]float64{clinical.ScaleKPS: 50},
	}

	report := testTracker().Track(tl, functional)

	assert.Equal(t, domainResponse.Partial, pairingFor(t, report, "craniotomy").Response)
}

func TestTrack_DischargeSnapshotStableAcrossRuns(t *testing.T) {
	functional := clinical.FunctionalData{
		DischargeScores: map[clinical.ScaleType]float64{
			clinical.ScaleKPS: 80,
			clinical.ScaleMRS: 1,
		},
	}

	// Map iteration order varies between runs; the snapshot string must not.
	for i := 0; i < 50; i++ {
		tl := assemble(event(clinical.CategoryProcedure, "craniotomy", day(2)))
		report := testTracker().Track(tl, functional)

		p := pairingFor(t, report, "craniotomy")
		require.Equal(t, "no post-procedure complications; discharge KPS 80, mRS 1", p.Outcome)
	}
}

func TestTrack_ProcedureNoChangeWithoutScores(t *testing.T) {
	tl := assemble(event(clinical.CategoryProcedure, "craniotomy", day(2)))

	report := testTracker().Track(tl, clinical.FunctionalData{})

	assert.Equal(t, domainResponse.NoChange, pairingFor(t, report, "craniotomy").Response)
}

func TestTrack_ComplianceSatisfied(t *testing.T) {
	tl := assemble(
		event(clinical.CategoryProcedure, "aneurysm coiling", day(2)),
		event(clinical.CategoryMedication, "nimodipine", day(2)),
	)

	report := testTracker().Track(tl, clinical.FunctionalData{})

	var v *domainResponse.Verdict
	for i := range report.Compliance.Verdicts {
		if report.Compliance.Verdicts[i].Requirement == "nimodipine" {
			v = &report.Compliance.Verdicts[i]
		}
	}
	require.NotNil(t, v)
	require.NotNil(t, v.Compliant)
	assert.True(t, *v.Compliant)
	assert.InDelta(t, 100, report.Compliance.OverallPercent, 1e-9)
}

func TestTrack_ComplianceViolated(t *testing.T) {
	tl := assemble(event(clinical.CategoryProcedure, "aneurysm coiling", day(2)))

	report := testTracker().Track(tl, clinical.FunctionalData{})

	var v *domainResponse.Verdict
	for i := range report.Compliance.Verdicts {
		if report.Compliance.Verdicts[i].Requirement == "nimodipine" {
			v = &report.Compliance.Verdicts[i]
		}
	}
	require.NotNil(t, v)
	require.NotNil(t, v.Compliant)
	assert.False(t, *v.Compliant)
	assert.InDelta(t, 0, report.Compliance.OverallPercent, 1e-9)
}

func TestTrack_ComplianceNotApplicable(t *testing.T) {
	tl := assemble(event(clinical.CategoryMedication, "dexamethasone", day(1)))

	report := testTracker().Track(tl, clinical.FunctionalData{})

	for _, v := range report.Compliance.Verdicts {
		assert.Nil(t, v.Compliant)
	}
	assert.InDelta(t, 100, report.Compliance.OverallPercent, 1e-9)
}

func TestTrack_SummaryCounts(t *testing.T) {
	tl := assemble(event(clinical.CategoryMedication, "nimodipine", day(1)))

	report := testTracker().Track(tl, clinical.FunctionalData{})

	assert.Contains(t, report.Summary, "1 improved")
}
