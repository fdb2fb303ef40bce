// Package evolution implements the functional status evolution analyzer:
// merging raw score shapes into one normalized score timeline, detecting
// pairwise status changes, classifying the overall trajectory, and flagging
// score milestones.
package evolution

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/neuroscribe/timeline-engine/internal/config"
	"github.com/neuroscribe/timeline-engine/internal/domain/functional"
	"github.com/neuroscribe/timeline-engine/internal/domain/narrative"
	"github.com/neuroscribe/timeline-engine/internal/infrastructure/monitoring/logging"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

// Milestone type labels on the score timeline.
const (
	milestoneBaseline     = "admission_baseline"
	milestoneDischarge    = "discharge_status"
	milestoneNadir        = "postoperative_nadir"
	milestoneTurningPoint = "turning_point"
)

// Anchors are the document timestamps the analyzer needs to date the flat
// score bags and locate the post-operative nadir.
type Anchors struct {
	Admission        *time.Time
	Discharge        *time.Time
	FirstTherapeutic *time.Time
}

// Analyzer derives the functional evolution report for one document.
type Analyzer struct {
	cfg    config.EvolutionConfig
	logger logging.Logger
}

// NewAnalyzer constructs an Analyzer.  A nil logger selects the no-op
// logger.
func NewAnalyzer(cfg config.EvolutionConfig, logger logging.Logger) *Analyzer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Analyzer{cfg: cfg, logger: logger.Named("evolution")}
}

// Analyze runs the full functional analysis: extraction, change detection,
// trajectory classification, milestones, and the prognostic comparison.
func (a *Analyzer) Analyze(data clinical.FunctionalData, anchors Anchors) *functional.Report {
	report := functional.EmptyReport()
	report.ScoreTimeline = a.ExtractScores(data, anchors)
	if len(report.ScoreTimeline) == 0 {
		report.Summary = "no dated functional scores"
		return report
	}

	report.StatusChanges = a.Changes(report.ScoreTimeline)
	report.Trajectory = a.Trajectory(report.ScoreTimeline, report.StatusChanges)
	report.Milestones = a.Milestones(report.ScoreTimeline, anchors.FirstTherapeutic)
	report.PrognosticComparison = a.prognostic(report.ScoreTimeline, report.Trajectory)
	report.Summary = summarise(report)

	a.logger.Debug("functional evolution analyzed",
		logging.Int("points", len(report.ScoreTimeline)),
		logging.Int("changes", len(report.StatusChanges)),
		logging.String("pattern", string(report.Trajectory.Pattern)))
	return report
}

// ─────────────────────────────────────────────────────────────────────────────
// Score-timeline extraction
// ─────────────────────────────────────────────────────────────────────────────

// ExtractScores merges the three raw score shapes into one sorted point
// list: explicit dated entries, the admission score bag, and the discharge
// score bag.  Points without a resolvable timestamp are dropped.
func (a *Analyzer) ExtractScores(data clinical.FunctionalData, anchors Anchors) []functional.ScorePoint {
	var points []functional.ScorePoint

	for _, entry := range data.Entries {
		ts, err := narrative.ParseDate(entry.RawDate)
		if err != nil {
			a.logger.Warn("score entry date unparseable, dropping point",
				logging.String("scale", string(entry.ScaleType)),
				logging.String("raw_date", entry.RawDate))
			continue
		}
		if ts == nil {
			continue
		}
		context := entry.Context
		if context == "" {
			context = "dated"
		}
		a.appendPoint(&points, entry.ScaleType, entry.Value, *ts, context)
	}

	if anchors.Admission != nil {
		for _, scale := range sortedScales(data.AdmissionScores) {
			a.appendPoint(&points, scale, data.AdmissionScores[scale], *anchors.Admission, "admission")
		}
	}
	if anchors.Discharge != nil {
		for _, scale := range sortedScales(data.DischargeScores) {
			a.appendPoint(&points, scale, data.DischargeScores[scale], *anchors.Discharge, "discharge")
		}
	}

	sort.SliceStable(points, func(i, j int) bool {
		if !points[i].Timestamp.Equal(points[j].Timestamp) {
			return points[i].Timestamp.Before(points[j].Timestamp)
		}
		return points[i].ScaleType < points[j].ScaleType
	})
	return points
}

func (a *Analyzer) appendPoint(points *[]functional.ScorePoint, scale clinical.ScaleType, raw float64, ts time.Time, context string) {
	normalized, err := functional.Normalize(scale, raw)
	if err != nil {
		a.logger.Warn("score not normalizable, dropping point",
			logging.String("scale", string(scale)),
			logging.Float64("raw", raw),
			logging.Err(err))
		return
	}
	*points = append(*points, functional.ScorePoint{
		ScaleType:  scale,
		Raw:        raw,
		Normalized: normalized,
		Timestamp:  ts,
		Context:    context,
	})
}

func sortedScales(bag map[clinical.ScaleType]float64) []clinical.ScaleType {
	scales := make([]clinical.ScaleType, 0, len(bag))
	for s := range bag {
		scales = append(scales, s)
	}
	sort.Slice(scales, func(i, j int) bool { return scales[i] < scales[j] })
	return scales
}

// ─────────────────────────────────────────────────────────────────────────────
// Change detection
// ─────────────────────────────────────────────────────────────────────────────

// Changes compares consecutive same-scale points.  When no same-scale pair
// exists but at least two points do, a cross-scale fallback on normalized
// values keeps mixed-scale records from yielding an empty change list.
func (a *Analyzer) Changes(points []functional.ScorePoint) []functional.StatusChange {
	th := functional.SignificanceThresholds{
		Minor:    a.cfg.SignificanceMinor,
		Moderate: a.cfg.SignificanceModerate,
		Major:    a.cfg.SignificanceMajor,
	}

	byScale := map[clinical.ScaleType][]functional.ScorePoint{}
	for _, p := range points {
		byScale[p.ScaleType] = append(byScale[p.ScaleType], p)
	}

	var changes []functional.StatusChange
	for _, scale := range sortedScaleKeys(byScale) {
		series := byScale[scale]
		for i := 1; i < len(series); i++ {
			changes = append(changes, functional.CompareSameScale(series[i-1], series[i], th))
		}
	}

	if len(changes) == 0 && len(points) >= 2 {
		for i := 1; i < len(points); i++ {
			delta := points[i].Normalized - points[i-1].Normalized
			if math.Abs(delta) < a.cfg.CrossScaleMinDelta {
				continue
			}
			changes = append(changes, functional.CompareCrossScale(points[i-1], points[i], th))
		}
	}
	return changes
}

func sortedScaleKeys(byScale map[clinical.ScaleType][]functional.ScorePoint) []clinical.ScaleType {
	scales := make([]clinical.ScaleType, 0, len(byScale))
	for s := range byScale {
		scales = append(scales, s)
	}
	sort.Slice(scales, func(i, j int) bool { return scales[i] < scales[j] })
	return scales
}

// ─────────────────────────────────────────────────────────────────────────────
// Trajectory
// ─────────────────────────────────────────────────────────────────────────────

// Trajectory classifies the overall normalized curve: direction pattern,
// trend shape, and rate in normalized points per week.
func (a *Analyzer) Trajectory(points []functional.ScorePoint, changes []functional.StatusChange) *functional.Trajectory {
	first, last := points[0], points[len(points)-1]
	overall := last.Normalized - first.Normalized
	duration := last.Timestamp.Sub(first.Timestamp).Hours() / 24

	t := &functional.Trajectory{
		OverallChange: overall,
		DurationDays:  duration,
		Pattern:       a.pattern(overall, changes),
		Trend:         a.trend(points, changes),
		Rate:          a.rate(overall, duration),
		Confidence:    pointConfidence(len(points)),
	}
	return t
}

func (a *Analyzer) pattern(overall float64, changes []functional.StatusChange) functional.TrajectoryPattern {
	if bothDirections(changes) {
		return functional.PatternFluctuating
	}
	switch {
	case math.Abs(overall) < a.cfg.StableBand:
		return functional.PatternStable
	case overall > 0:
		return functional.PatternImproving
	default:
		return functional.PatternDeclining
	}
}

func bothDirections(changes []functional.StatusChange) bool {
	var up, down bool
	for _, c := range changes {
		if c.Significance == functional.SignificanceMinimal {
			continue
		}
		switch c.Direction {
		case functional.DirectionImprovement:
			up = true
		case functional.DirectionDeterioration:
			down = true
		}
	}
	return up && down
}

// trend distinguishes the curve shape on the normalized sequence: stepwise
// when a few major jumps dominate a longer change list, U shapes on a sign
// flip between halves, plateau when movement stops, else linear.
func (a *Analyzer) trend(points []functional.ScorePoint, changes []functional.StatusChange) functional.TrendShape {
	if len(changes) >= 3 {
		majors := 0
		for _, c := range changes {
			if c.Significance == functional.SignificanceMajor {
				majors++
			}
		}
		if majors >= 1 && majors*2 <= len(changes) {
			return functional.TrendStepwise
		}
	}

	if len(points) >= 3 {
		mid := points[len(points)/2]
		firstHalf := mid.Normalized - points[0].Normalized
		secondHalf := points[len(points)-1].Normalized - mid.Normalized
		switch {
		case firstHalf < 0 && secondHalf > 0:
			return functional.TrendUShaped
		case firstHalf > 0 && secondHalf < 0:
			return functional.TrendInvertedU
		case math.Abs(firstHalf) >= a.cfg.StableBand && math.Abs(secondHalf) < a.cfg.CrossScaleMinDelta:
			return functional.TrendPlateau
		}
	}
	return functional.TrendLinear
}

func (a *Analyzer) rate(overall, durationDays float64) functional.ChangeRate {
	if durationDays <= 0 {
		return functional.RateSlow
	}
	perWeek := math.Abs(overall) / (durationDays / 7)
	switch {
	case perWeek > a.cfg.RapidRate:
		return functional.RateRapid
	case perWeek > a.cfg.GradualRate:
		return functional.RateGradual
	default:
		return functional.RateSlow
	}
}

func pointConfidence(n int) float64 {
	c := 0.5 + 0.1*float64(n)
	if c > 0.95 {
		c = 0.95
	}
	return c
}

// ─────────────────────────────────────────────────────────────────────────────
// Milestones
// ─────────────────────────────────────────────────────────────────────────────

// Milestones flags the admission baseline, the discharge status, the worst
// normalized score after the first therapeutic event, and every interior
// local extremum.
func (a *Analyzer) Milestones(points []functional.ScorePoint, firstTherapeutic *time.Time) []functional.ScoreMilestone {
	out := []functional.ScoreMilestone{
		{Type: milestoneBaseline, Point: points[0]},
	}
	if len(points) > 1 {
		out = append(out, functional.ScoreMilestone{Type: milestoneDischarge, Point: points[len(points)-1]})
	}

	if firstTherapeutic != nil {
		nadir := -1
		for i, p := range points {
			if p.Timestamp.Before(*firstTherapeutic) {
				continue
			}
			if nadir < 0 || p.Normalized < points[nadir].Normalized {
				nadir = i
			}
		}
		if nadir >= 0 {
			out = append(out, functional.ScoreMilestone{
				Type:       milestoneNadir,
				Point:      points[nadir],
				Descriptor: fmt.Sprintf("normalized %.0f", points[nadir].Normalized),
			})
		}
	}

	for i := 1; i < len(points)-1; i++ {
		before := points[i].Normalized - points[i-1].Normalized
		after := points[i+1].Normalized - points[i].Normalized
		if before*after < 0 {
			out = append(out, functional.ScoreMilestone{
				Type:       milestoneTurningPoint,
				Point:      points[i],
				Descriptor: fmt.Sprintf("normalized %.0f", points[i].Normalized),
			})
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Prognostic comparison
// ─────────────────────────────────────────────────────────────────────────────

// prognostic compares the observed pattern against the pattern expected
// from the admission baseline: a poor baseline is expected to improve under
// treatment, a near-normal one to stay stable.
func (a *Analyzer) prognostic(points []functional.ScorePoint, t *functional.Trajectory) *functional.PrognosticComparison {
	if len(points) < 2 || t == nil {
		return nil
	}
	expected := functional.PatternStable
	if points[0].Normalized < 70 {
		expected = functional.PatternImproving
	}

	verdict := "as_expected"
	switch {
	case t.Pattern == expected:
		// as expected
	case t.Pattern == functional.PatternImproving:
		verdict = "better_than_expected"
	case t.Pattern == functional.PatternDeclining:
		verdict = "worse_than_expected"
	default:
		verdict = "uncertain"
	}
	return &functional.PrognosticComparison{
		ExpectedPattern: expected,
		ObservedPattern: t.Pattern,
		Verdict:         verdict,
	}
}

func summarise(r *functional.Report) string {
	return fmt.Sprintf("%d score points, %d changes, pattern %s (%s, %s), overall %+.0f over %.0f days",
		len(r.ScoreTimeline), len(r.StatusChanges),
		r.Trajectory.Pattern, r.Trajectory.Trend, r.Trajectory.Rate,
		r.Trajectory.OverallChange, r.Trajectory.DurationDays)
}
