package narrative

import "strings"

// ─────────────────────────────────────────────────────────────────────────────
// Cue rules — data, not branching code
// ─────────────────────────────────────────────────────────────────────────────

// CueKind partitions cue rules by the decision they feed.
type CueKind string

const (
	// CuePreNegation matches negation triggers that precede the concept
	// ("no", "denies", "without").
	CuePreNegation CueKind = "pre_negation"

	// CuePostNegation matches negation triggers that follow the concept
	// ("not present", "ruled out").
	CuePostNegation CueKind = "post_negation"

	// CuePseudoNegation matches phrases that look like negation but are not
	// ("no change", "not only"); a pseudo match overrides a negation match.
	CuePseudoNegation CueKind = "pseudo_negation"

	// CueScopeTerminator marks conjunctions that end a negation's scope
	// ("but", "however"); a terminator between trigger and concept cancels
	// the negation.
	CueScopeTerminator CueKind = "scope_terminator"

	// CueNewEvent marks phrasing that introduces a brand-new event
	// ("underwent", "performed", "today").
	CueNewEvent CueKind = "new_event"

	// CueReference marks backward-looking phrasing ("s/p", "status post",
	// "history of").
	CueReference CueKind = "reference"
)

// CueRule is one data-driven detection rule.  Pattern is matched as a
// lowercase substring of the context window; Weight becomes the confidence
// of the resulting verdict.  RefType is only meaningful for CueReference
// rules.
type CueRule struct {
	Pattern string
	Weight  float64
	Kind    CueKind
	RefType ReferenceType
}

// CueMatch records where a rule matched inside a context window.
type CueMatch struct {
	Rule  CueRule
	Index int // byte offset of the match in the lowercased window
}

// MatchCues evaluates every rule of the wanted kinds against the window and
// returns all matches.  The window and patterns are compared lowercased; the
// rule table itself is never modified.
func MatchCues(window string, rules []CueRule, kinds ...CueKind) []CueMatch {
	if window == "" || len(rules) == 0 {
		return nil
	}
	lower := strings.ToLower(window)

	wanted := make(map[CueKind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}

	var matches []CueMatch
	for _, r := range rules {
		if len(wanted) > 0 && !wanted[r.Kind] {
			continue
		}
		if idx := strings.Index(lower, r.Pattern); idx >= 0 {
			matches = append(matches, CueMatch{Rule: r, Index: idx})
		}
	}
	return matches
}

// BestMatch returns the highest-weight match, or false when none exist.
// Ties resolve to the earliest match in the window so the result is
// deterministic for a fixed rule table.
func BestMatch(matches []CueMatch) (CueMatch, bool) {
	if len(matches) == 0 {
		return CueMatch{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Rule.Weight > best.Rule.Weight ||
			(m.Rule.Weight == best.Rule.Weight && m.Index < best.Index) {
			best = m
		}
	}
	return best, true
}

// TerminatorBetween reports whether any scope-terminator rule matches inside
// window[from:to].  Used to cancel a negation whose scope was cut off by a
// conjunction before reaching the concept.
func TerminatorBetween(window string, rules []CueRule, from, to int) bool {
	if from > to {
		from, to = to, from
	}
	if from < 0 {
		from = 0
	}
	if to > len(window) {
		to = len(window)
	}
	span := strings.ToLower(window[from:to])
	for _, r := range rules {
		if r.Kind != CueScopeTerminator {
			continue
		}
		if strings.Contains(span, r.Pattern) {
			return true
		}
	}
	return false
}
