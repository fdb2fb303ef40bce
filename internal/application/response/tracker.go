// Package response implements the treatment response tracker: pairing each
// intervention with its observed outcome through domain-specific rules,
// scoring effectiveness on four bounded axes, and checking protocol
// compliance against the static requirement table.
package response

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/neuroscribe/timeline-engine/internal/config"
	"github.com/neuroscribe/timeline-engine/internal/domain/protocol"
	domainResponse "github.com/neuroscribe/timeline-engine/internal/domain/response"
	domainTimeline "github.com/neuroscribe/timeline-engine/internal/domain/timeline"
	"github.com/neuroscribe/timeline-engine/internal/infrastructure/monitoring/logging"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

const (
	prophylaxisConfidence   = 0.80
	anticoagulantConfidence = 0.75
	procedureConfidence     = 0.70
)

// Tracker pairs interventions with outcomes over one assembled timeline.
type Tracker struct {
	cfg    config.ResponseConfig
	logger logging.Logger
}

// NewTracker constructs a Tracker.  A nil logger selects the no-op logger.
func NewTracker(cfg config.ResponseConfig, logger logging.Logger) *Tracker {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Tracker{cfg: cfg, logger: logger.Named("response")}
}

// Track runs all pairing rules and the compliance check.
func (tr *Tracker) Track(t *domainTimeline.Timeline, functional clinical.FunctionalData) *domainResponse.Report {
	report := domainResponse.Empty()
	report.Pairings = append(report.Pairings, tr.prophylaxisPairings(t)...)
	report.Pairings = append(report.Pairings, tr.anticoagulantPairings(t)...)
	report.Pairings = append(report.Pairings, tr.procedurePairings(t, functional)...)
	report.Compliance = tr.compliance(t, report.Pairings)
	report.Summarise()

	tr.logger.Debug("treatment response tracked",
		logging.Int("pairings", len(report.Pairings)),
		logging.Int("verdicts", len(report.Compliance.Verdicts)))
	return report
}

// ─────────────────────────────────────────────────────────────────────────────
// Pairing rules
// ─────────────────────────────────────────────────────────────────────────────

// prophylaxisPairings judges each preventive medication by whether its
// target complication appears anywhere in the record.
func (tr *Tracker) prophylaxisPairings(t *domainTimeline.Timeline) []domainResponse.Pairing {
	var out []domainResponse.Pairing
	for _, pair := range protocol.Prophylaxis() {
		med := findByName(t.Events, clinical.CategoryMedication, pair.Medication)
		if med == nil {
			continue
		}
		comp := findByName(t.Events, clinical.CategoryComplication, pair.Complication)

		p := domainResponse.Pairing{
			Intervention:   med.Name,
			InterventionID: med.ID,
			Confidence:     prophylaxisConfidence,
		}
		if comp == nil {
			p.Outcome = "no " + pair.Complication
			p.Response = domainResponse.Improved
			p.Effectiveness = tr.effectiveness(p.Response, nil, nil)
		} else {
			p.Outcome = comp.Name
			p.Response = domainResponse.Worsened
			p.TimeToResponse = gapString(med.Timestamp, comp.Timestamp)
			p.Effectiveness = tr.effectiveness(p.Response, daysBetween(med.Timestamp, comp.Timestamp), []*domainTimeline.Event{comp})
		}
		out = append(out, p)
	}
	return out
}

// anticoagulantPairings checks each anticoagulant against hemorrhagic
// complications on or after its start.
func (tr *Tracker) anticoagulantPairings(t *domainTimeline.Timeline) []domainResponse.Pairing {
	var out []domainResponse.Pairing
	for _, e := range t.Events {
		if e.Category != clinical.CategoryMedication || !protocol.IsAnticoagulant(e.Name) {
			continue
		}
		bleed := firstMatchAfter(t.Events, e, func(c *domainTimeline.Event) bool {
			return c.Category == clinical.CategoryComplication && protocol.IsHemorrhagic(c.Name)
		})

		p := domainResponse.Pairing{
			Intervention:   e.Name,
			InterventionID: e.ID,
			Confidence:     anticoagulantConfidence,
		}
		if bleed == nil {
			p.Outcome = "no hemorrhagic complication"
			p.Response = domainResponse.Stable
			p.Effectiveness = tr.effectiveness(p.Response, nil, nil)
		} else {
			p.Outcome = bleed.Name
			p.Response = domainResponse.Worsened
			p.TimeToResponse = gapString(e.Timestamp, bleed.Timestamp)
			p.Effectiveness = tr.effectiveness(p.Response, daysBetween(e.Timestamp, bleed.Timestamp), []*domainTimeline.Event{bleed})
		}
		out = append(out, p)
	}
	return out
}

// procedurePairings judges each procedure by its post-procedure
// complications and the discharge functional snapshot.
func (tr *Tracker) procedurePairings(t *domainTimeline.Timeline, functional clinical.FunctionalData) []domainResponse.Pairing {
	var out []domainResponse.Pairing
	for _, e := range t.Events {
		if e.Category != clinical.CategoryProcedure {
			continue
		}
		post := complicationsAfter(t.Events, e)
		good, scored, snapshot := tr.dischargeSnapshot(functional)

		p := domainResponse.Pairing{
			Intervention:   e.Name,
			InterventionID: e.ID,
			Confidence:     procedureConfidence,
			Response:       tr.classifyProcedure(post, good, scored),
			Outcome:        procedureOutcome(post, snapshot),
		}
		if outcome := firstOutcomeAfter(t.Events, e); outcome != nil {
			p.TimeToResponse = gapString(e.Timestamp, outcome.Timestamp)
			p.Effectiveness = tr.effectiveness(p.Response, daysBetween(e.Timestamp, outcome.Timestamp), post)
		} else {
			p.Effectiveness = tr.effectiveness(p.Response, nil, post)
		}
		out = append(out, p)
	}
	return out
}

// classifyProcedure applies the fixed response ladder: clean course with a
// good score improves, a severe complication worsens, everything else with
// evidence is partial.
func (tr *Tracker) classifyProcedure(post []*domainTimeline.Event, goodScore, scored bool) domainResponse.Classification {
	for _, c := range post {
		switch strings.ToLower(c.Severity) {
		case "severe", "critical":
			return domainResponse.Worsened
		}
	}
	if len(post) == 0 {
		switch {
		case goodScore:
			return domainResponse.Improved
		case scored:
			return domainResponse.Partial
		default:
			return domainResponse.NoChange
		}
	}
	return domainResponse.Partial
}

// dischargeSnapshot evaluates the discharge score bag against the
// scale-specific thresholds.  Returns whether any score is good, whether
// any score exists at all, and a printable snapshot.  Scales are visited
// in sorted order so the snapshot string is stable across runs.
func (tr *Tracker) dischargeSnapshot(functional clinical.FunctionalData) (good, scored bool, snapshot string) {
	var parts []string
	for _, scale := range sortedScales(functional.DischargeScores) {
		value := functional.DischargeScores[scale]
		scored = true
		switch scale {
		case clinical.ScaleKPS:
			good = good || value >= tr.cfg.GoodKPS
		case clinical.ScaleMRS:
			good = good || value <= tr.cfg.GoodMRS
		}
		parts = append(parts, fmt.Sprintf("%s %g", scale, value))
	}
	if len(parts) > 0 {
		snapshot = "discharge " + strings.Join(parts, ", ")
	}
	return good, scored, snapshot
}

func sortedScales(bag map[clinical.ScaleType]float64) []clinical.ScaleType {
	scales := make([]clinical.ScaleType, 0, len(bag))
	for s := range bag {
		scales = append(scales, s)
	}
	sort.Slice(scales, func(i, j int) bool { return scales[i] < scales[j] })
	return scales
}

func procedureOutcome(post []*domainTimeline.Event, snapshot string) string {
	var parts []string
	switch len(post) {
	case 0:
		parts = append(parts, "no post-procedure complications")
	case 1:
		parts = append(parts, post[0].Name)
	default:
		parts = append(parts, fmt.Sprintf("%d post-procedure complications", len(post)))
	}
	if snapshot != "" {
		parts = append(parts, snapshot)
	}
	return strings.Join(parts, "; ")
}

// ─────────────────────────────────────────────────────────────────────────────
// Effectiveness
// ─────────────────────────────────────────────────────────────────────────────

// effectiveness builds the four-axis score.  Speed buckets elapsed days,
// completeness follows the response classification, durability starts at
// the configured default and drops when the associated complication
// recurred, side effects lose a fixed penalty per associated complication.
func (tr *Tracker) effectiveness(c domainResponse.Classification, days *float64, complications []*domainTimeline.Event) *domainResponse.Effectiveness {
	e := &domainResponse.Effectiveness{
		Speed:        speedScore(days),
		Completeness: completenessScore(c),
		Durability:   tr.cfg.DurabilityDefault,
		SideEffects:  25,
	}
	for _, comp := range complications {
		e.SideEffects -= tr.cfg.SideEffectPenalty
		if comp.MergeCount > 1 {
			e.Durability = tr.cfg.DurabilityDefault / 2
		}
	}
	if e.SideEffects < 0 {
		e.SideEffects = 0
	}
	e.Sum()
	return e
}

func speedScore(days *float64) float64 {
	if days == nil {
		return 15
	}
	switch d := *days; {
	case d <= 1:
		return 25
	case d <= 3:
		return 20
	case d <= 7:
		return 15
	case d <= 14:
		return 10
	default:
		return 5
	}
}

func completenessScore(c domainResponse.Classification) float64 {
	switch c {
	case domainResponse.Improved:
		return 25
	case domainResponse.Partial:
		return 15
	case domainResponse.Stable:
		return 10
	case domainResponse.NoChange:
		return 5
	default:
		return 0
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Protocol compliance
// ─────────────────────────────────────────────────────────────────────────────

// compliance evaluates the static requirement table.  An item applies when
// one of its trigger terms occurs in any event name; it is satisfied when a
// pairing for the required medication exists.  Items that do not apply get
// a nil verdict and stay out of the overall percentage.
func (tr *Tracker) compliance(t *domainTimeline.Timeline, pairings []domainResponse.Pairing) domainResponse.ComplianceReport {
	report := domainResponse.ComplianceReport{Verdicts: []domainResponse.Verdict{}}

	definite, satisfied := 0, 0
	for _, item := range protocol.Items() {
		v := domainResponse.Verdict{
			Condition:   item.Condition,
			Requirement: item.Requirement,
			Level:       item.Level,
		}
		if trigger := triggeringEvent(t.Events, item); trigger != nil {
			ok := hasPairingFor(pairings, item.Requirement)
			v.Compliant = &ok
			v.Evidence = "triggered by " + trigger.Name
			definite++
			if ok {
				satisfied++
			}
		}
		report.Verdicts = append(report.Verdicts, v)
	}

	if definite == 0 {
		report.OverallPercent = 100
	} else {
		report.OverallPercent = 100 * float64(satisfied) / float64(definite)
	}
	report.Grade()
	return report
}

func triggeringEvent(events []*domainTimeline.Event, item protocol.Item) *domainTimeline.Event {
	for _, e := range events {
		if item.Applies(e.Name) || item.Applies(e.Details) {
			return e
		}
	}
	return nil
}

func hasPairingFor(pairings []domainResponse.Pairing, requirement string) bool {
	needle := strings.ToLower(requirement)
	for _, p := range pairings {
		if strings.Contains(strings.ToLower(p.Intervention), needle) {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func findByName(events []*domainTimeline.Event, cat clinical.Category, name string) *domainTimeline.Event {
	needle := strings.ToLower(name)
	for _, e := range events {
		if e.Category != cat {
			continue
		}
		have := strings.ToLower(e.Name)
		if strings.Contains(have, needle) || strings.Contains(needle, have) {
			return e
		}
	}
	return nil
}

// complicationsAfter returns complications dated on or after the event.
// Undated complications are excluded.
func complicationsAfter(events []*domainTimeline.Event, after *domainTimeline.Event) []*domainTimeline.Event {
	var out []*domainTimeline.Event
	for _, e := range events {
		if e.Category != clinical.CategoryComplication || e.Timestamp == nil {
			continue
		}
		if after.Timestamp == nil || !e.Timestamp.Before(*after.Timestamp) {
			out = append(out, e)
		}
	}
	return out
}

func firstMatchAfter(events []*domainTimeline.Event, after *domainTimeline.Event, match func(*domainTimeline.Event) bool) *domainTimeline.Event {
	for _, e := range events {
		if e.Timestamp == nil || !match(e) {
			continue
		}
		if after.Timestamp == nil || !e.Timestamp.Before(*after.Timestamp) {
			return e
		}
	}
	return nil
}

func firstOutcomeAfter(events []*domainTimeline.Event, after *domainTimeline.Event) *domainTimeline.Event {
	return firstMatchAfter(events, after, func(e *domainTimeline.Event) bool {
		return e.Type == domainTimeline.EventOutcome
	})
}

func daysBetween(a, b *time.Time) *float64 {
	if a == nil || b == nil {
		return nil
	}
	d := b.Sub(*a).Hours() / 24
	return &d
}

func gapString(a, b *time.Time) string {
	d := daysBetween(a, b)
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%.0fd", *d)
}
