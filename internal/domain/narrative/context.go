// Package narrative holds the pure domain model for interpreting candidate
// mentions in their source-text context: temporal categories, cue rules and
// the generic matcher that evaluates them, and clinical date parsing.
// Nothing here performs I/O or holds mutable state.
package narrative

// ─────────────────────────────────────────────────────────────────────────────
// Temporal context
// ─────────────────────────────────────────────────────────────────────────────

// TemporalCategory classifies the temporal frame a mention belongs to.
type TemporalCategory string

const (
	TemporalAcute         TemporalCategory = "ACUTE"
	TemporalChronic       TemporalCategory = "CHRONIC"
	TemporalPostoperative TemporalCategory = "POSTOPERATIVE"
	TemporalAdmission     TemporalCategory = "ADMISSION"
	TemporalDischarge     TemporalCategory = "DISCHARGE"
	TemporalUnspecified   TemporalCategory = "UNSPECIFIED"
)

// ReferenceType names the cue family that classified a mention as a
// backward-looking reference (or as a new event).
type ReferenceType string

const (
	ReferenceStatusPost ReferenceType = "status_post"
	ReferencePOD        ReferenceType = "pod"
	ReferenceHistory    ReferenceType = "history"
	ReferencePrior      ReferenceType = "prior"
	ReferenceNone       ReferenceType = ""
)

// TemporalContext is the resolver's verdict for one mention.  PODOffset is
// nil unless the mention carried a relative post-operative-day reference.
type TemporalContext struct {
	IsReference      bool             `json:"is_reference"`
	ReferenceType    ReferenceType    `json:"reference_type,omitempty"`
	PODOffset        *int             `json:"pod_offset,omitempty"`
	ResolvedCategory TemporalCategory `json:"resolved_category"`
	Confidence       float64          `json:"confidence"`
}

// NegationVerdict is the resolver's negation decision for one mention.
type NegationVerdict struct {
	Negated    bool    `json:"negated"`
	Confidence float64 `json:"confidence"`
	Trigger    string  `json:"trigger,omitempty"`
}

// NegationExclusionThreshold is the confidence above which a negated mention
// is excluded from all downstream processing.
const NegationExclusionThreshold = 0.8

// AmbiguousConfidence is the confidence assigned when neither new-event nor
// reference cues match.  The mention is then treated as a new event; the
// identity resolver corrects over-counting later, so the default must stay
// permissive rather than precise.
const AmbiguousConfidence = 0.5
