// Package clinical defines the shared input contract between the upstream
// free-text entity extractor and the timeline engine.  Everything in this
// package is plain data: no behaviour beyond validation and enum parsing.
package clinical

import (
	"time"

	"github.com/neuroscribe/timeline-engine/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Categories
// ─────────────────────────────────────────────────────────────────────────────

// Category identifies which extractor channel produced a candidate mention.
type Category string

const (
	CategoryProcedure    Category = "procedure"
	CategoryMedication   Category = "medication"
	CategoryComplication Category = "complication"
	CategoryImaging      Category = "imaging"
	CategorySymptomOnset Category = "symptom_onset"
	CategoryAdmission    Category = "admission"
	CategoryDischarge    Category = "discharge"
	CategoryFunctional   Category = "functional_score"
)

// IsValid reports whether the category is one the engine understands.
func (c Category) IsValid() bool {
	switch c {
	case CategoryProcedure, CategoryMedication, CategoryComplication,
		CategoryImaging, CategorySymptomOnset, CategoryAdmission,
		CategoryDischarge, CategoryFunctional:
		return true
	default:
		return false
	}
}

// String returns the string representation of the category.
func (c Category) String() string { return string(c) }

// ParseCategory parses a string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if c.IsValid() {
		return c, nil
	}
	return "", errors.New(errors.ErrCodeCategoryUnknown, "unknown mention category: "+s)
}

// ─────────────────────────────────────────────────────────────────────────────
// Functional scales
// ─────────────────────────────────────────────────────────────────────────────

// ScaleType identifies an ordinal clinical assessment scale.
type ScaleType string

const (
	ScaleKPS   ScaleType = "KPS"   // Karnofsky Performance Status, 0-100, higher better
	ScaleECOG  ScaleType = "ECOG"  // ECOG performance status, 0-5, lower better
	ScaleMRS   ScaleType = "mRS"   // modified Rankin Scale, 0-6, lower better
	ScaleGCS   ScaleType = "GCS"   // Glasgow Coma Scale, 3-15, higher better
	ScaleNIHSS ScaleType = "NIHSS" // NIH Stroke Scale, 0-42, lower better
	ScaleASIA  ScaleType = "ASIA"  // ASIA impairment grade A-E, mapped 1-5, higher better
)

// IsValid reports whether the scale is supported by the evolution analyzer.
func (s ScaleType) IsValid() bool {
	switch s {
	case ScaleKPS, ScaleECOG, ScaleMRS, ScaleGCS, ScaleNIHSS, ScaleASIA:
		return true
	default:
		return false
	}
}

// String returns the string representation of the scale type.
func (s ScaleType) String() string { return string(s) }

// ParseScaleType parses a string into a ScaleType.
func ParseScaleType(v string) (ScaleType, error) {
	s := ScaleType(v)
	if s.IsValid() {
		return s, nil
	}
	return "", errors.New(errors.ErrCodeScaleUnsupported, "unsupported scale type: "+v)
}

// ─────────────────────────────────────────────────────────────────────────────
// Mentions
// ─────────────────────────────────────────────────────────────────────────────

// Mention is the raw unit produced by the upstream extractor.  It is immutable
// once produced; the engine never writes back into a Mention.
type Mention struct {
	// Category is the extractor channel this mention arrived on.
	Category Category `json:"category"`

	// Name is the surface form found in the narrative, e.g. "coil embolization".
	Name string `json:"name"`

	// RawDate is the date text as extracted ("2024-03-05", "03/05/2024", ...).
	// Empty when the narrative gave no explicit date.
	RawDate string `json:"raw_date,omitempty"`

	// RawPOD is a relative post-operative-day reference ("POD#3") when the
	// narrative dated the mention relative to surgery instead of absolutely.
	RawPOD string `json:"raw_pod,omitempty"`

	// Position is the character offset of the mention in the source narrative.
	Position int `json:"position"`

	// Context is the surrounding source-text window supplied by the extractor,
	// used for negation and reference-cue scanning.
	Context string `json:"context,omitempty"`

	// Severity is an optional extractor-supplied grade ("mild", "severe",
	// "critical") for complications.
	Severity string `json:"severity,omitempty"`

	// Details carries optional free-form qualifiers ("right MCA", "x2").
	Details string `json:"details,omitempty"`

	// Management records how a complication was managed, when extracted.
	Management string `json:"management,omitempty"`

	// Operator records who performed a procedure, when extracted.
	Operator string `json:"operator,omitempty"`
}

// Validate checks the minimum contract for a mention.  Mentions failing
// validation are skipped, not fatal (error taxonomy case (a)).
func (m *Mention) Validate() error {
	if m.Name == "" {
		return errors.New(errors.ErrCodeMentionMalformed, "mention name is required")
	}
	if !m.Category.IsValid() {
		return errors.New(errors.ErrCodeCategoryUnknown, "mention category is invalid").
			WithDetail("name=" + m.Name)
	}
	return nil
}

// ScoreEntry is an explicitly dated functional-score observation.
type ScoreEntry struct {
	ScaleType ScaleType `json:"scale_type"`
	Value     float64   `json:"value"`
	RawDate   string    `json:"raw_date,omitempty"`
	Context   string    `json:"context,omitempty"`
	Position  int       `json:"position"`
}

// FunctionalData groups the three raw shapes functional scores arrive in:
// dated entries, undated admission/discharge score bags, and the
// discharge-summary fields.
type FunctionalData struct {
	Entries         []ScoreEntry          `json:"entries,omitempty"`
	AdmissionScores map[ScaleType]float64 `json:"admission_scores,omitempty"`
	DischargeScores map[ScaleType]float64 `json:"discharge_scores,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Reference anchors
// ─────────────────────────────────────────────────────────────────────────────

// ReferenceAnchors carries the absolute dates that relative references such
// as "POD#3" resolve against.  Supplied separately by the extractor.
type ReferenceAnchors struct {
	// FirstProcedure is the date of the first operative procedure.
	FirstProcedure *time.Time `json:"first_procedure,omitempty"`

	// Admission is the hospital admission date.
	Admission *time.Time `json:"admission,omitempty"`

	// Ictus is the symptom-onset date.
	Ictus *time.Time `json:"ictus,omitempty"`

	// SurgeryDates is a legacy list of operative dates; the most recent acts
	// as the lowest-priority POD anchor.
	SurgeryDates []time.Time `json:"surgery_dates,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Document
// ─────────────────────────────────────────────────────────────────────────────

// Document is one patient's complete candidate-mention input, grouped by
// category exactly as the upstream extractor emits it.
type Document struct {
	// ID is the caller-supplied document identifier, echoed into reports.
	ID string `json:"id,omitempty"`

	Procedures    []Mention `json:"procedures,omitempty"`
	Medications   []Mention `json:"medications,omitempty"`
	Complications []Mention `json:"complications,omitempty"`
	Imaging       []Mention `json:"imaging,omitempty"`

	// KeyDates holds admission / discharge / symptom-onset mentions.
	KeyDates []Mention `json:"key_dates,omitempty"`

	Functional FunctionalData   `json:"functional,omitempty"`
	Anchors    ReferenceAnchors `json:"anchors,omitempty"`
}

// MentionCount returns the total number of candidate mentions across all
// categories, used for metrics and log context.
func (d *Document) MentionCount() int {
	return len(d.Procedures) + len(d.Medications) + len(d.Complications) +
		len(d.Imaging) + len(d.KeyDates)
}

// AllMentions returns every candidate mention in category group order.
func (d *Document) AllMentions() []Mention {
	out := make([]Mention, 0, d.MentionCount())
	out = append(out, d.Procedures...)
	out = append(out, d.Medications...)
	out = append(out, d.Complications...)
	out = append(out, d.Imaging...)
	out = append(out, d.KeyDates...)
	return out
}
