// Package response defines the treatment-response aggregate: intervention
// to outcome pairings, the effectiveness breakdown, and the protocol
// compliance report.
package response

import (
	"fmt"

	"github.com/neuroscribe/timeline-engine/internal/domain/protocol"
)

// Classification grades how an intervention's target responded.
type Classification string

const (
	Improved Classification = "IMPROVED"
	Stable   Classification = "STABLE"
	Worsened Classification = "WORSENED"
	NoChange Classification = "NO_CHANGE"
	Partial  Classification = "PARTIAL"
)

// Effectiveness is the four-axis intervention score.  Each axis is bounded
// 0 to 25 and independently auditable; Total is their sum.
type Effectiveness struct {
	Speed        float64 `json:"speed"`
	Completeness float64 `json:"completeness"`
	Durability   float64 `json:"durability"`
	SideEffects  float64 `json:"side_effects"`
	Total        float64 `json:"total"`
}

// Sum recomputes Total from the four axes.
func (e *Effectiveness) Sum() {
	e.Total = e.Speed + e.Completeness + e.Durability + e.SideEffects
}

// Pairing is one intervention-to-outcome judgement.
type Pairing struct {
	Intervention   string         `json:"intervention"`
	InterventionID string         `json:"intervention_id,omitempty"`
	Outcome        string         `json:"outcome"`
	Response       Classification `json:"response"`
	TimeToResponse string         `json:"time_to_response,omitempty"`
	Confidence     float64        `json:"confidence"`
	Effectiveness  *Effectiveness `json:"effectiveness,omitempty"`
}

// Verdict is one protocol item's compliance outcome.  Compliant is nil when
// the item does not apply to the record, so it stays out of the overall
// percentage.
type Verdict struct {
	Condition   string         `json:"condition"`
	Requirement string         `json:"requirement"`
	Level       protocol.Level `json:"level"`
	Compliant   *bool          `json:"compliant"`
	Evidence    string         `json:"evidence,omitempty"`
}

// ComplianceReport aggregates the per-item verdicts.  OverallPercent counts
// only items with a definite verdict.
type ComplianceReport struct {
	Verdicts       []Verdict `json:"items"`
	Overall        string    `json:"overall"`
	OverallPercent float64   `json:"percentage"`
}

// Grade sets the overall label from the percentage.
func (c *ComplianceReport) Grade() {
	switch {
	case c.OverallPercent >= 100:
		c.Overall = "compliant"
	case c.OverallPercent >= 50:
		c.Overall = "partially_compliant"
	default:
		c.Overall = "non_compliant"
	}
}

// Report is the treatment-response tracker's output aggregate.
type Report struct {
	Pairings   []Pairing        `json:"responses"`
	Compliance ComplianceReport `json:"protocol_compliance"`
	Summary    string           `json:"summary"`
}

// Empty returns the documented degraded result.
func Empty() *Report {
	return &Report{Pairings: []Pairing{}, Compliance: ComplianceReport{Verdicts: []Verdict{}}}
}

// Summarise renders the one-line count summary and stores it on the report.
func (r *Report) Summarise() {
	counts := map[Classification]int{}
	for _, p := range r.Pairings {
		counts[p.Response]++
	}
	r.Summary = fmt.Sprintf("%d pairings: %d improved, %d partial, %d stable, %d worsened, %d no change",
		len(r.Pairings), counts[Improved], counts[Partial], counts[Stable], counts[Worsened], counts[NoChange])
}
