package identity

import (
	"strings"

	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

// SynonymTable maps canonical names to their known variant phrasings, per
// mention category.  Tables are immutable after construction.
type SynonymTable map[clinical.Category][]SynonymEntry

// SynonymEntry groups one canonical name with its variants.
type SynonymEntry struct {
	Canonical string
	Variants  []string
}

// DefaultSynonyms returns the engine's standard clinical synonym tables for
// the three deduplicated categories.  Matching is bidirectional substring
// containment, so short canonical forms ("coiling") capture longer variants
// ("endovascular coil embolization") and vice versa.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		clinical.CategoryProcedure: {
			{Canonical: "coiling", Variants: []string{
				"endovascular coiling", "coil embolization", "coil embolisation",
				"endovascular coil embolization", "gdc coiling",
			}},
			{Canonical: "clipping", Variants: []string{
				"surgical clipping", "aneurysm clipping", "microsurgical clipping",
				"clip ligation",
			}},
			{Canonical: "external ventricular drain", Variants: []string{
				"evd", "evd placement", "ventriculostomy", "external ventricular drainage",
			}},
			{Canonical: "craniotomy", Variants: []string{
				"decompressive craniotomy", "pterional craniotomy",
			}},
			{Canonical: "ventriculoperitoneal shunt", Variants: []string{
				"vp shunt", "vps", "ventriculo-peritoneal shunt", "shunt placement",
			}},
			{Canonical: "angioplasty", Variants: []string{
				"balloon angioplasty", "transluminal angioplasty",
			}},
		},
		clinical.CategoryMedication: {
			{Canonical: "nimodipine", Variants: []string{"nimotop", "oral nimodipine"}},
			{Canonical: "levetiracetam", Variants: []string{"keppra"}},
			{Canonical: "heparin", Variants: []string{
				"unfractionated heparin", "heparin drip", "prophylactic heparin",
			}},
			{Canonical: "enoxaparin", Variants: []string{"lovenox", "low molecular weight heparin"}},
			{Canonical: "aspirin", Variants: []string{"asa", "acetylsalicylic acid"}},
			{Canonical: "dexamethasone", Variants: []string{"decadron"}},
		},
		clinical.CategoryComplication: {
			{Canonical: "vasospasm", Variants: []string{
				"cerebral vasospasm", "symptomatic vasospasm", "angiographic vasospasm",
			}},
			{Canonical: "hydrocephalus", Variants: []string{
				"acute hydrocephalus", "communicating hydrocephalus", "obstructive hydrocephalus",
			}},
			{Canonical: "rebleeding", Variants: []string{
				"rebleed", "re-hemorrhage", "recurrent hemorrhage", "rehemorrhage",
			}},
			{Canonical: "seizure", Variants: []string{"seizures", "convulsion", "epileptic seizure"}},
			{Canonical: "delayed cerebral ischemia", Variants: []string{"dci", "delayed ischemia"}},
			{Canonical: "hyponatremia", Variants: []string{"low sodium", "siadh"}},
			{Canonical: "meningitis", Variants: []string{"ventriculitis", "csf infection"}},
		},
	}
}

// Canonical returns the table's canonical name for a raw mention name, or
// ("", false) when no entry matches.  A name matches an entry when it
// contains, or is contained by, the canonical form or any variant.
func (t SynonymTable) Canonical(category clinical.Category, name string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return "", false
	}
	for _, entry := range t[category] {
		if containsEither(lower, entry.Canonical) {
			return entry.Canonical, true
		}
		for _, v := range entry.Variants {
			if containsEither(lower, v) {
				return entry.Canonical, true
			}
		}
	}
	return "", false
}

// containsEither reports substring containment in either direction; both
// arguments are expected lowercased.
func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
