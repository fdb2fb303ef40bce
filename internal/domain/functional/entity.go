package functional

import (
	"math"
	"time"

	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

// ─────────────────────────────────────────────────────────────────────────────
// Score points
// ─────────────────────────────────────────────────────────────────────────────

// ScorePoint is one dated functional-score observation with its normalized
// value pre-computed.
type ScorePoint struct {
	ScaleType  clinical.ScaleType `json:"scale_type"`
	Raw        float64            `json:"raw"`
	Normalized float64            `json:"normalized"`
	Timestamp  time.Time          `json:"timestamp"`
	Context    string             `json:"context,omitempty"` // "admission", "discharge", "dated"
}

// ─────────────────────────────────────────────────────────────────────────────
// Status changes
// ─────────────────────────────────────────────────────────────────────────────

// ChangeDirection is the sign of a status change on the better/worse axis.
type ChangeDirection string

const (
	DirectionImprovement   ChangeDirection = "improvement"
	DirectionDeterioration ChangeDirection = "deterioration"
)

// ChangeSignificance buckets the relative size of a status change.
type ChangeSignificance string

const (
	SignificanceMinimal  ChangeSignificance = "minimal"
	SignificanceMinor    ChangeSignificance = "minor"
	SignificanceModerate ChangeSignificance = "moderate"
	SignificanceMajor    ChangeSignificance = "major"
)

// SignificanceThresholds are the magnitude cut points (fractions of scale
// range) separating minor, moderate, and major changes.
type SignificanceThresholds struct {
	Minor    float64
	Moderate float64
	Major    float64
}

// DefaultSignificanceThresholds returns the standard 5/15/30% cut points.
func DefaultSignificanceThresholds() SignificanceThresholds {
	return SignificanceThresholds{Minor: 0.05, Moderate: 0.15, Major: 0.30}
}

// ClassifySignificance buckets a magnitude (|delta| / scale range) against
// the thresholds.
func ClassifySignificance(magnitude float64, th SignificanceThresholds) ChangeSignificance {
	switch {
	case magnitude >= th.Major:
		return SignificanceMajor
	case magnitude >= th.Moderate:
		return SignificanceModerate
	case magnitude >= th.Minor:
		return SignificanceMinor
	default:
		return SignificanceMinimal
	}
}

// StatusChange is the pairwise delta between two consecutive score points on
// one scale, or between two cross-scale-normalized points when no same-scale
// pair exists.
type StatusChange struct {
	ScaleType    clinical.ScaleType `json:"scale_type"`
	From         float64            `json:"from"`
	To           float64            `json:"to"`
	ScoreDelta   float64            `json:"score_delta"`
	DaysDelta    float64            `json:"days_delta"`
	Direction    ChangeDirection    `json:"direction"`
	Magnitude    float64            `json:"magnitude"`
	Significance ChangeSignificance `json:"significance"`
	CrossScale   bool               `json:"cross_scale,omitempty"`
}

// CompareSameScale derives the StatusChange between two consecutive points on
// the same scale.  Direction is judged on the normalized axis so inverted
// scales still report improvement correctly.
func CompareSameScale(from, to ScorePoint, th SignificanceThresholds) StatusChange {
	meta, _ := MetaFor(from.ScaleType)
	delta := to.Raw - from.Raw
	magnitude := 0.0
	if meta.Range() > 0 {
		magnitude = math.Abs(delta) / meta.Range()
	}
	direction := DirectionImprovement
	if to.Normalized < from.Normalized {
		direction = DirectionDeterioration
	}
	return StatusChange{
		ScaleType:    from.ScaleType,
		From:         from.Raw,
		To:           to.Raw,
		ScoreDelta:   delta,
		DaysDelta:    to.Timestamp.Sub(from.Timestamp).Hours() / 24,
		Direction:    direction,
		Magnitude:    magnitude,
		Significance: ClassifySignificance(magnitude, th),
	}
}

// CompareCrossScale derives a StatusChange on the shared normalized axis for
// points measured on different scales.  Magnitude is the normalized delta
// over the 100-point axis.
func CompareCrossScale(from, to ScorePoint, th SignificanceThresholds) StatusChange {
	delta := to.Normalized - from.Normalized
	magnitude := math.Abs(delta) / 100
	direction := DirectionImprovement
	if delta < 0 {
		direction = DirectionDeterioration
	}
	return StatusChange{
		ScaleType:    to.ScaleType,
		From:         from.Normalized,
		To:           to.Normalized,
		ScoreDelta:   delta,
		DaysDelta:    to.Timestamp.Sub(from.Timestamp).Hours() / 24,
		Direction:    direction,
		Magnitude:    magnitude,
		Significance: ClassifySignificance(magnitude, th),
		CrossScale:   true,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Trajectory
// ─────────────────────────────────────────────────────────────────────────────

// TrajectoryPattern is the overall direction of a patient's functional status.
type TrajectoryPattern string

const (
	PatternImproving   TrajectoryPattern = "improving"
	PatternDeclining   TrajectoryPattern = "declining"
	PatternStable      TrajectoryPattern = "stable"
	PatternFluctuating TrajectoryPattern = "fluctuating"
)

// TrendShape refines the pattern with the shape of the normalized curve.
type TrendShape string

const (
	TrendLinear    TrendShape = "linear"
	TrendStepwise  TrendShape = "stepwise"
	TrendPlateau   TrendShape = "plateau"
	TrendUShaped   TrendShape = "u_shaped"
	TrendInvertedU TrendShape = "inverted_u"
)

// ChangeRate buckets normalized points per week.
type ChangeRate string

const (
	RateRapid   ChangeRate = "rapid"
	RateGradual ChangeRate = "gradual"
	RateSlow    ChangeRate = "slow"
)

// Trajectory is the one-per-patient functional summary.
type Trajectory struct {
	Pattern       TrajectoryPattern `json:"pattern"`
	Trend         TrendShape        `json:"trend"`
	Rate          ChangeRate        `json:"rate"`
	OverallChange float64           `json:"overall_change"`
	DurationDays  float64           `json:"duration_days"`
	Confidence    float64           `json:"confidence"`
}

// ScoreMilestone flags a notable point in the score timeline: admission
// baseline, discharge status, post-operative nadir, or a turning point.
type ScoreMilestone struct {
	Type       string     `json:"type"`
	Point      ScorePoint `json:"point"`
	Descriptor string     `json:"descriptor,omitempty"`
}
