// Package identity implements the semantic identity resolver: canonicalizing
// mention names through synonym tables with a similarity-score fallback,
// clustering same-concept mentions, merging same-date duplicates while
// preserving distinct recurrences, and linking backward-looking references
// to the event they point at.
package identity

import (
	"sort"
	"strings"
	"time"

	"github.com/neuroscribe/timeline-engine/internal/config"
	"github.com/neuroscribe/timeline-engine/internal/domain/narrative"
	"github.com/neuroscribe/timeline-engine/internal/domain/timeline"
	"github.com/neuroscribe/timeline-engine/internal/infrastructure/monitoring/logging"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

// noDateKey is the explicit bucket for undated mentions within a cluster.
const noDateKey = "no_date"

// CanonicalMention is a deduplicated cluster slice ready to become one
// timeline event: one canonical name, one date bucket, merged provenance.
type CanonicalMention struct {
	Category      clinical.Category
	Name          string
	OriginalNames []string
	Dates         []time.Time
	Timestamp     *time.Time
	MergeCount    int
	Confidence    float64
	Severity      string
	Details       string
	Position      int
	References    []timeline.Reference
}

// Deduplicator clusters and merges one category's resolved mentions.  It is
// stateless across calls; the synonym table is immutable.
type Deduplicator struct {
	cfg      config.IdentityConfig
	synonyms SynonymTable
	logger   logging.Logger
}

// NewDeduplicator constructs a Deduplicator.  A nil synonym table selects
// the default clinical tables; a nil logger selects the no-op logger.
func NewDeduplicator(cfg config.IdentityConfig, synonyms SynonymTable, logger logging.Logger) *Deduplicator {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Deduplicator{cfg: cfg, synonyms: synonyms, logger: logger.Named("identity")}
}

// ─────────────────────────────────────────────────────────────────────────────
// Canonicalization
// ─────────────────────────────────────────────────────────────────────────────

// CanonicalName maps a raw mention name to its canonical form: a synonym
// table hit when one exists, otherwise the trimmed lowercase name itself.
func (d *Deduplicator) CanonicalName(category clinical.Category, name string) string {
	if canonical, ok := d.synonyms.Canonical(category, name); ok {
		return canonical
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// sameConcept reports whether two names denote one clinical act: identical
// canonical forms, or a combined similarity score clearing the threshold.
func (d *Deduplicator) sameConcept(category clinical.Category, a, b string) bool {
	ca := d.CanonicalName(category, a)
	cb := d.CanonicalName(category, b)
	if ca == cb {
		return true
	}
	return NameSimilarity(ca, cb) >= d.cfg.SimilarityThreshold
}

// ─────────────────────────────────────────────────────────────────────────────
// Clustering
// ─────────────────────────────────────────────────────────────────────────────

// gatherCluster collects every unvisited index whose name matches the seed,
// marking them in visited.  The visited set is an explicit argument so the
// function stays pure with respect to package state and can be tested in
// isolation.  Pairwise-greedy O(n²); per-category n is tens, not thousands.
func (d *Deduplicator) gatherCluster(category clinical.Category, items []narrative.ResolvedMention, seed int, visited []bool) []int {
	members := []int{seed}
	visited[seed] = true
	for j := seed + 1; j < len(items); j++ {
		if visited[j] {
			continue
		}
		if d.sameConcept(category, items[seed].Mention.Name, items[j].Mention.Name) {
			visited[j] = true
			members = append(members, j)
		}
	}
	return members
}

// ─────────────────────────────────────────────────────────────────────────────
// Deduplicate
// ─────────────────────────────────────────────────────────────────────────────

// Deduplicate turns one category's resolved, negation-filtered mentions into
// canonical mentions: same-concept clusters, same-date merges, distinct
// recurrences preserved, references attached to their originating cluster.
func (d *Deduplicator) Deduplicate(category clinical.Category, mentions []narrative.ResolvedMention) []CanonicalMention {
	var events, refs []narrative.ResolvedMention
	for _, m := range mentions {
		if m.Context.IsReference {
			refs = append(refs, m)
		} else {
			events = append(events, m)
		}
	}

	visited := make([]bool, len(events))
	var out []CanonicalMention

	for i := range events {
		if visited[i] {
			continue
		}
		members := d.gatherCluster(category, events, i, visited)

		// Group cluster members by exact date, undated in their own bucket.
		groups := make(map[string][]narrative.ResolvedMention)
		var keys []string
		for _, idx := range members {
			key := noDateKey
			if ts := events[idx].Timestamp; ts != nil {
				key = ts.Format("2006-01-02")
			}
			if _, seen := groups[key]; !seen {
				keys = append(keys, key)
			}
			groups[key] = append(groups[key], events[idx])
		}
		sort.Strings(keys)

		clusterStart := len(out)
		for _, key := range keys {
			group := groups[key]
			if d.cfg.MergeSameDate {
				out = append(out, d.mergeGroup(category, group))
			} else {
				for _, m := range group {
					out = append(out, d.mergeGroup(category, []narrative.ResolvedMention{m}))
				}
			}
		}
		d.attachReferences(category, out[clusterStart:], refs)
	}

	// Deterministic output order regardless of input permutation.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Timestamp == nil && b.Timestamp != nil:
			return false
		case a.Timestamp != nil && b.Timestamp == nil:
			return true
		case a.Timestamp != nil && b.Timestamp != nil && !a.Timestamp.Equal(*b.Timestamp):
			return a.Timestamp.Before(*b.Timestamp)
		}
		return a.Name < b.Name
	})

	d.logger.Debug("deduplicated mentions",
		logging.String("category", string(category)),
		logging.Int("mentions", len(mentions)),
		logging.Int("canonical", len(out)))
	return out
}

// mergeGroup collapses one same-date group into a single canonical mention.
// The result is independent of member order: the canonical name is the
// shortest (ties lexicographic), dates and details are sorted sets, the
// confidence is the maximum, and merge counts sum.
func (d *Deduplicator) mergeGroup(category clinical.Category, group []narrative.ResolvedMention) CanonicalMention {
	nameSet := map[string]bool{}
	dateSet := map[time.Time]bool{}
	detailSet := map[string]bool{}

	merged := CanonicalMention{Category: category, MergeCount: 0, Position: group[0].Mention.Position}
	for _, m := range group {
		nameSet[m.Mention.Name] = true
		if m.Timestamp != nil {
			dateSet[*m.Timestamp] = true
		}
		if m.Mention.Details != "" {
			detailSet[m.Mention.Details] = true
		}
		if m.Context.Confidence > merged.Confidence {
			merged.Confidence = m.Context.Confidence
		}
		if merged.Severity == "" || severityRank(m.Mention.Severity) > severityRank(merged.Severity) {
			merged.Severity = m.Mention.Severity
		}
		if m.Mention.Position < merged.Position {
			merged.Position = m.Mention.Position
		}
		merged.MergeCount++
	}

	merged.OriginalNames = sortedKeys(nameSet)
	merged.Name = d.shortestCanonical(category, merged.OriginalNames)

	for t := range dateSet {
		merged.Dates = append(merged.Dates, t)
	}
	sort.Slice(merged.Dates, func(i, j int) bool { return merged.Dates[i].Before(merged.Dates[j]) })
	if len(merged.Dates) > 0 {
		ts := merged.Dates[0]
		merged.Timestamp = &ts
	}

	merged.Details = strings.Join(sortedKeys(detailSet), "; ")
	return merged
}

// shortestCanonical picks the merged cluster's display name: the shortest
// canonical form among the member names, ties broken lexicographically.
func (d *Deduplicator) shortestCanonical(category clinical.Category, names []string) string {
	best := ""
	for _, n := range names {
		c := d.CanonicalName(category, n)
		if best == "" || len(c) < len(best) || (len(c) == len(best) && c < best) {
			best = c
		}
	}
	return best
}

// attachReferences links each backward-looking mention to the cluster slice
// it refers to.  A reference attaches to the latest event not after its own
// resolved date, falling back to the cluster's first event; it is never
// promoted to a standalone event.  References matching no cluster are
// dropped.
func (d *Deduplicator) attachReferences(category clinical.Category, cluster []CanonicalMention, refs []narrative.ResolvedMention) {
	if len(cluster) == 0 {
		return
	}
	for _, ref := range refs {
		if !d.sameConcept(category, cluster[0].Name, ref.Mention.Name) {
			continue
		}
		target := 0
		if ref.Timestamp != nil {
			for i := range cluster {
				if cluster[i].Timestamp != nil && !cluster[i].Timestamp.After(*ref.Timestamp) {
					target = i
				}
			}
		}
		cluster[target].References = append(cluster[target].References, timeline.Reference{
			Name:      ref.Mention.Name,
			Context:   ref.Mention.Context,
			PODOffset: ref.Context.PODOffset,
			Position:  ref.Mention.Position,
		})
	}
}

// severityRank orders extractor severity grades for merge precedence.
func severityRank(s string) int {
	switch strings.ToLower(s) {
	case "critical":
		return 4
	case "severe":
		return 3
	case "moderate":
		return 2
	case "mild":
		return 1
	default:
		return 0
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
