// Package resolution implements the negation and temporal-context resolver:
// the first pipeline stage, classifying each candidate mention as
// affirmed/negated and as a new event versus a reference to a prior event,
// and resolving relative day-offsets to absolute dates.
package resolution

import (
	"regexp"
	"strings"
	"time"

	"github.com/neuroscribe/timeline-engine/internal/config"
	"github.com/neuroscribe/timeline-engine/internal/domain/narrative"
	"github.com/neuroscribe/timeline-engine/internal/infrastructure/monitoring/logging"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

// Resolver evaluates the immutable cue-rule table against mention context
// windows.  It holds no per-document state; one Resolver serves any number
// of documents concurrently.
type Resolver struct {
	cfg    config.ResolverConfig
	rules  []narrative.CueRule
	frames []temporalCategoryCue
	logger logging.Logger
}

// NewResolver constructs a Resolver.  A nil rules slice selects the default
// cue table; a nil logger selects the no-op logger.
func NewResolver(cfg config.ResolverConfig, rules []narrative.CueRule, logger logging.Logger) *Resolver {
	if rules == nil {
		rules = DefaultCueRules()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Resolver{
		cfg:    cfg,
		rules:  rules,
		frames: defaultTemporalCategoryCues,
		logger: logger.Named("resolution"),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Windowing
// ─────────────────────────────────────────────────────────────────────────────

// window clips the mention's context to ±size characters around the first
// occurrence of the mention name.  When the name is absent from the context
// the whole context is used; the extractor's windows are already bounded.
// The second return is the concept's offset inside the clipped window.
func window(ctx, name string, size int) (string, int) {
	if ctx == "" {
		return "", -1
	}
	lower := strings.ToLower(ctx)
	idx := strings.Index(lower, strings.ToLower(name))
	if idx < 0 {
		return ctx, -1
	}
	start := idx - size
	if start < 0 {
		start = 0
	}
	end := idx + len(name) + size
	if end > len(ctx) {
		end = len(ctx)
	}
	return ctx[start:end], idx - start
}

// ─────────────────────────────────────────────────────────────────────────────
// Negation
// ─────────────────────────────────────────────────────────────────────────────

// Negation classifies a mention as affirmed or negated from its context
// window.  Mentions whose verdict confidence exceeds
// narrative.NegationExclusionThreshold are excluded downstream.
func (r *Resolver) Negation(m clinical.Mention) narrative.NegationVerdict {
	win, conceptIdx := window(m.Context, m.Name, r.cfg.CueWindow)
	if win == "" {
		return narrative.NegationVerdict{}
	}

	// Pseudo-negation overrides everything.
	if pseudo := narrative.MatchCues(win, r.rules, narrative.CuePseudoNegation); len(pseudo) > 0 {
		return narrative.NegationVerdict{}
	}

	pre := narrative.MatchCues(win, r.rules, narrative.CuePreNegation)
	post := narrative.MatchCues(win, r.rules, narrative.CuePostNegation)

	var candidates []narrative.CueMatch
	for _, c := range pre {
		// A pre-trigger must precede the concept; when the concept offset is
		// unknown, accept the match as-is.
		if conceptIdx < 0 || c.Index < conceptIdx {
			candidates = append(candidates, c)
		}
	}
	for _, c := range post {
		if conceptIdx < 0 || c.Index > conceptIdx {
			candidates = append(candidates, c)
		}
	}

	best, ok := narrative.BestMatch(candidates)
	if !ok {
		return narrative.NegationVerdict{}
	}

	// A scope terminator between trigger and concept cancels the negation.
	if conceptIdx >= 0 {
		from := best.Index + len(best.Rule.Pattern)
		to := conceptIdx
		if best.Rule.Kind == narrative.CuePostNegation {
			from, to = conceptIdx+len(m.Name), best.Index
		}
		if narrative.TerminatorBetween(win, r.rules, from, to) {
			return narrative.NegationVerdict{}
		}
	}

	return narrative.NegationVerdict{
		Negated:    true,
		Confidence: best.Rule.Weight,
		Trigger:    best.Rule.Pattern,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Reference vs. new event, temporal frame
// ─────────────────────────────────────────────────────────────────────────────

// Resolve classifies the mention's temporal context: backward-looking
// reference versus new event, POD offset, temporal frame, and confidence.
//
// New-event cues take priority over reference cues.  When neither family
// matches, the verdict is the deliberately conservative "ambiguous" default:
// treated as a new event at 0.5 confidence, leaving correction to the
// identity resolver rather than suppressing the mention here.
func (r *Resolver) Resolve(m clinical.Mention, anchors clinical.ReferenceAnchors) narrative.TemporalContext {
	win, _ := window(m.Context, m.Name, r.cfg.CueWindow)

	tc := narrative.TemporalContext{
		ResolvedCategory: r.frame(m, win),
		Confidence:       narrative.AmbiguousConfidence,
	}

	// POD shorthand is both a reference cue and a relative date.
	podText := m.RawPOD
	if podText == "" {
		podText = win
	}
	if offset, ok := narrative.ParsePOD(podText); ok {
		tc.IsReference = true
		tc.ReferenceType = narrative.ReferencePOD
		tc.PODOffset = &offset
		tc.ResolvedCategory = narrative.TemporalPostoperative
		tc.Confidence = 0.95
	}

	// An explicit date or a new-event cue marks a brand-new event, with
	// priority over reference cues.
	if m.RawDate != "" {
		tc.IsReference = false
		if tc.ReferenceType != narrative.ReferencePOD {
			tc.ReferenceType = narrative.ReferenceNone
			tc.Confidence = 0.90
		}
		return tc
	}
	if best, ok := narrative.BestMatch(narrative.MatchCues(win, r.rules, narrative.CueNewEvent)); ok {
		tc.IsReference = false
		tc.ReferenceType = narrative.ReferenceNone
		tc.Confidence = best.Rule.Weight
		return tc
	}

	if tc.ReferenceType == narrative.ReferencePOD {
		tc.IsReference = true
		return tc
	}

	if best, ok := narrative.BestMatch(narrative.MatchCues(win, r.rules, narrative.CueReference)); ok {
		tc.IsReference = true
		tc.ReferenceType = best.Rule.RefType
		tc.Confidence = best.Rule.Weight
		if best.Rule.RefType == narrative.ReferenceHistory {
			tc.ResolvedCategory = narrative.TemporalChronic
		}
		return tc
	}

	// Ambiguous default: new event at 0.5.
	return tc
}

// frame resolves the temporal category from the frame-cue table.
func (r *Resolver) frame(m clinical.Mention, win string) narrative.TemporalCategory {
	switch m.Category {
	case clinical.CategoryAdmission:
		return narrative.TemporalAdmission
	case clinical.CategoryDischarge:
		return narrative.TemporalDischarge
	}
	lower := strings.ToLower(win)
	for _, f := range r.frames {
		if strings.Contains(lower, f.Pattern) {
			return f.Category
		}
	}
	return narrative.TemporalUnspecified
}

// ─────────────────────────────────────────────────────────────────────────────
// Date resolution
// ─────────────────────────────────────────────────────────────────────────────

// contextDatePattern finds explicit date text inside a context window when
// the extractor did not lift it into RawDate.
var contextDatePattern = regexp.MustCompile(
	`\b(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4}|(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2},\s+\d{4})\b`)

// EffectiveDate resolves the mention's absolute date: RawDate first, then a
// POD offset against the anchor chain, then a date found in the wider
// context window.  A nil result means the mention proceeds undated and
// sorts last (error taxonomy cases (b) and (c)).
func (r *Resolver) EffectiveDate(m clinical.Mention, anchors clinical.ReferenceAnchors) *time.Time {
	if m.RawDate != "" {
		t, err := narrative.ParseDate(m.RawDate)
		if err != nil {
			r.logger.Warn("unparseable mention date",
				logging.String("name", m.Name),
				logging.String("raw", m.RawDate),
				logging.Err(err))
			return nil
		}
		return t
	}

	podText := m.RawPOD
	if podText == "" {
		win, _ := window(m.Context, m.Name, r.cfg.CueWindow)
		podText = win
	}
	if offset, ok := narrative.ParsePOD(podText); ok {
		if resolved := narrative.ResolvePOD(offset, anchors); resolved != nil {
			return resolved
		}
		r.logger.Debug("no anchor for POD reference",
			logging.String("name", m.Name),
			logging.Int("offset", offset))
		return nil
	}

	win, _ := window(m.Context, m.Name, r.cfg.DateWindow)
	if raw := contextDatePattern.FindString(win); raw != "" {
		if t, err := narrative.ParseDate(raw); err == nil {
			return t
		}
	}
	return nil
}
