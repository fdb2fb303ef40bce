// Package protocol holds the static clinical knowledge tables shared by the
// relationship and treatment-response services: prophylaxis pairs, drug
// class membership, and per-condition protocol requirements.
package protocol

import "strings"

// ─────────────────────────────────────────────────────────────────────────────
// Prophylaxis
// ─────────────────────────────────────────────────────────────────────────────

// ProphylaxisPair links a preventive medication to the complication it
// guards against.
type ProphylaxisPair struct {
	Medication   string
	Complication string
}

var prophylaxis = []ProphylaxisPair{
	{Medication: "nimodipine", Complication: "vasospasm"},
	{Medication: "levetiracetam", Complication: "seizure"},
	{Medication: "heparin", Complication: "deep vein thrombosis"},
	{Medication: "enoxaparin", Complication: "deep vein thrombosis"},
}

// Prophylaxis returns the known prophylaxis pairs.  Callers must not mutate
// the returned slice.
func Prophylaxis() []ProphylaxisPair { return prophylaxis }

// ─────────────────────────────────────────────────────────────────────────────
// Drug classes and complication groups
// ─────────────────────────────────────────────────────────────────────────────

var anticoagulants = []string{"heparin", "enoxaparin", "warfarin", "aspirin", "apixaban"}

var hemorrhagicTerms = []string{"rebleed", "hemorrhage", "haemorrhage", "hematoma", "bleeding"}

// IsAnticoagulant reports whether the medication name denotes a known
// anticoagulant or antiplatelet agent.
func IsAnticoagulant(name string) bool { return containsAny(name, anticoagulants) }

// IsHemorrhagic reports whether the complication name denotes a bleeding
// event.
func IsHemorrhagic(name string) bool { return containsAny(name, hemorrhagicTerms) }

func containsAny(name string, terms []string) bool {
	n := strings.ToLower(name)
	for _, t := range terms {
		if strings.Contains(n, t) {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Protocol requirements
// ─────────────────────────────────────────────────────────────────────────────

// Level grades how binding a protocol item is.
type Level string

const (
	LevelMandatory   Level = "MANDATORY"
	LevelRecommended Level = "RECOMMENDED"
)

// Item is one per-condition protocol requirement.  Trigger terms are matched
// against event names to decide whether the item applies to a given record;
// Requirement names the medication whose pairing satisfies it.
type Item struct {
	Condition   string
	Requirement string
	Level       Level
	Triggers    []string
}

var items = []Item{
	{
		Condition:   "aneurysmal subarachnoid hemorrhage",
		Requirement: "nimodipine",
		Level:       LevelMandatory,
		Triggers:    []string{"subarachnoid", "aneurysm", "coiling", "clipping"},
	},
	{
		Condition:   "seizure risk after craniotomy",
		Requirement: "levetiracetam",
		Level:       LevelRecommended,
		Triggers:    []string{"craniotomy", "seizure"},
	},
	{
		Condition:   "venous thromboembolism risk",
		Requirement: "enoxaparin",
		Level:       LevelRecommended,
		Triggers:    []string{"immobil", "deep vein", "pulmonary embol"},
	},
}

// Items returns the protocol requirement table.  Callers must not mutate
// the returned slice.
func Items() []Item { return items }

// Applies reports whether any of the item's trigger terms occurs in the
// given event name.
func (it Item) Applies(eventName string) bool { return containsAny(eventName, it.Triggers) }
