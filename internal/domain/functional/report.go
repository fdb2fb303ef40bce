package functional

// PrognosticComparison relates the observed trajectory to the pattern
// expected from the admission baseline.
type PrognosticComparison struct {
	ExpectedPattern TrajectoryPattern `json:"expected_pattern"`
	ObservedPattern TrajectoryPattern `json:"observed_pattern"`
	Verdict         string            `json:"verdict"`
}

// Report is the functional-status evolution aggregate.
type Report struct {
	ScoreTimeline        []ScorePoint          `json:"score_timeline"`
	StatusChanges        []StatusChange        `json:"status_changes"`
	Trajectory           *Trajectory           `json:"trajectory,omitempty"`
	Milestones           []ScoreMilestone      `json:"milestones"`
	PrognosticComparison *PrognosticComparison `json:"prognostic_comparison,omitempty"`
	Summary              string                `json:"summary"`
}

// EmptyReport returns the documented degraded result.
func EmptyReport() *Report {
	return &Report{
		ScoreTimeline: []ScorePoint{},
		StatusChanges: []StatusChange{},
		Milestones:    []ScoreMilestone{},
	}
}
