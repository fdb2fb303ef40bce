package identity

import "strings"

// tokenize lowercases and splits a name on whitespace and punctuation.
func tokenize(s string) []string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '-', '_', '/', ',', '.', '(', ')':
			return true
		}
		return false
	})
}

// jaccard computes token-overlap similarity over tokenized names.
func jaccard(a, b string) float64 {
	tokA := tokenize(a)
	tokB := tokenize(b)
	if len(tokA) == 0 && len(tokB) == 0 {
		return 1.0
	}
	setB := make(map[string]bool, len(tokB))
	for _, t := range tokB {
		setB[t] = true
	}
	inter := 0
	seen := make(map[string]bool, len(tokA))
	for _, t := range tokA {
		if seen[t] {
			continue
		}
		seen[t] = true
		if setB[t] {
			inter++
		}
	}
	union := len(seen) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// levenshtein computes the edit distance between two strings with the
// standard two-row dynamic program.
func levenshtein(a, b string) int {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// editSimilarity maps edit distance to [0,1]: 1 − distance/maxLen.
func editSimilarity(a, b string) float64 {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(maxLen)
}

// NameSimilarity is the continuous fallback score used when no synonym-table
// entry matches: an equal-weight blend of token overlap and edit-distance
// similarity.  Two names above the configured threshold (default 0.75)
// denote the same clinical concept.
func NameSimilarity(a, b string) float64 {
	return 0.5*jaccard(a, b) + 0.5*editSimilarity(a, b)
}
