package resolution

import "github.com/neuroscribe/timeline-engine/internal/domain/narrative"

// DefaultCueRules returns the engine's standard cue-rule table.  Rules are
// data, not branching code: the resolver evaluates them with the generic
// matcher in domain/narrative, so individual rules can be unit-tested in
// isolation and the table can be replaced wholesale through the constructor.
//
// Negation weights span 0.85-0.95 by trigger specificity; reference weights
// put "status post" and POD shorthand highest (0.90-0.95) because they are
// unambiguous in clinical shorthand.
func DefaultCueRules() []narrative.CueRule {
	return []narrative.CueRule{
		// Pre-trigger negation cues.
		{Pattern: "no evidence of", Weight: 0.95, Kind: narrative.CuePreNegation},
		{Pattern: "ruled out", Weight: 0.95, Kind: narrative.CuePreNegation},
		{Pattern: "denies", Weight: 0.90, Kind: narrative.CuePreNegation},
		{Pattern: "negative for", Weight: 0.90, Kind: narrative.CuePreNegation},
		{Pattern: "without", Weight: 0.85, Kind: narrative.CuePreNegation},
		{Pattern: "no ", Weight: 0.85, Kind: narrative.CuePreNegation},
		{Pattern: "absence of", Weight: 0.90, Kind: narrative.CuePreNegation},

		// Post-trigger negation cues.
		{Pattern: "not present", Weight: 0.90, Kind: narrative.CuePostNegation},
		{Pattern: "was ruled out", Weight: 0.95, Kind: narrative.CuePostNegation},
		{Pattern: "not seen", Weight: 0.85, Kind: narrative.CuePostNegation},
		{Pattern: "not identified", Weight: 0.85, Kind: narrative.CuePostNegation},

		// Pseudo-negation phrases override a negation match.
		{Pattern: "no change", Weight: 1.0, Kind: narrative.CuePseudoNegation},
		{Pattern: "no significant change", Weight: 1.0, Kind: narrative.CuePseudoNegation},
		{Pattern: "not only", Weight: 1.0, Kind: narrative.CuePseudoNegation},
		{Pattern: "no further", Weight: 1.0, Kind: narrative.CuePseudoNegation},

		// Scope terminators cancel a negation whose span they interrupt.
		{Pattern: " but ", Weight: 1.0, Kind: narrative.CueScopeTerminator},
		{Pattern: "however", Weight: 1.0, Kind: narrative.CueScopeTerminator},
		{Pattern: "although", Weight: 1.0, Kind: narrative.CueScopeTerminator},
		{Pattern: "except", Weight: 1.0, Kind: narrative.CueScopeTerminator},

		// New-event cues; checked before reference cues.
		{Pattern: "underwent", Weight: 0.90, Kind: narrative.CueNewEvent},
		{Pattern: "was performed", Weight: 0.90, Kind: narrative.CueNewEvent},
		{Pattern: "performed", Weight: 0.85, Kind: narrative.CueNewEvent},
		{Pattern: "was taken to", Weight: 0.85, Kind: narrative.CueNewEvent},
		{Pattern: "today", Weight: 0.80, Kind: narrative.CueNewEvent},
		{Pattern: "developed", Weight: 0.80, Kind: narrative.CueNewEvent},
		{Pattern: "newly", Weight: 0.80, Kind: narrative.CueNewEvent},

		// Reference cues.
		{Pattern: "status post", Weight: 0.95, Kind: narrative.CueReference, RefType: narrative.ReferenceStatusPost},
		{Pattern: "s/p", Weight: 0.90, Kind: narrative.CueReference, RefType: narrative.ReferenceStatusPost},
		{Pattern: "history of", Weight: 0.85, Kind: narrative.CueReference, RefType: narrative.ReferenceHistory},
		{Pattern: "known", Weight: 0.70, Kind: narrative.CueReference, RefType: narrative.ReferenceHistory},
		{Pattern: "prior", Weight: 0.80, Kind: narrative.CueReference, RefType: narrative.ReferencePrior},
		{Pattern: "previous", Weight: 0.80, Kind: narrative.CueReference, RefType: narrative.ReferencePrior},
		{Pattern: "previously", Weight: 0.80, Kind: narrative.CueReference, RefType: narrative.ReferencePrior},
	}
}

// temporalCategoryCue maps a context phrase to a temporal frame.  Evaluated
// in order; first match wins.
type temporalCategoryCue struct {
	Pattern  string
	Category narrative.TemporalCategory
}

// defaultTemporalCategoryCues frame the mention when no POD reference is
// present (a POD reference always resolves to POSTOPERATIVE).
var defaultTemporalCategoryCues = []temporalCategoryCue{
	{Pattern: "on admission", Category: narrative.TemporalAdmission},
	{Pattern: "at admission", Category: narrative.TemporalAdmission},
	{Pattern: "presented", Category: narrative.TemporalAdmission},
	{Pattern: "at discharge", Category: narrative.TemporalDischarge},
	{Pattern: "on discharge", Category: narrative.TemporalDischarge},
	{Pattern: "discharged", Category: narrative.TemporalDischarge},
	{Pattern: "post-operative", Category: narrative.TemporalPostoperative},
	{Pattern: "postoperative", Category: narrative.TemporalPostoperative},
	{Pattern: "post-op", Category: narrative.TemporalPostoperative},
	{Pattern: "history of", Category: narrative.TemporalChronic},
	{Pattern: "chronic", Category: narrative.TemporalChronic},
	{Pattern: "long-standing", Category: narrative.TemporalChronic},
	{Pattern: "acute", Category: narrative.TemporalAcute},
	{Pattern: "sudden", Category: narrative.TemporalAcute},
	{Pattern: "abrupt", Category: narrative.TemporalAcute},
}
