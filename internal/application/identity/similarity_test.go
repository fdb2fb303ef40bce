package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameSimilarity_Identical(t *testing.T) {
	assert.InDelta(t, 1.0, NameSimilarity("coiling", "coiling"), 1e-9)
}

func TestNameSimilarity_Symmetric(t *testing.T) {
	a, b := "coil embolization", "endovascular coiling"
	assert.InDelta(t, NameSimilarity(a, b), NameSimilarity(b, a), 1e-9)
}

func TestNameSimilarity_SharedTokens(t *testing.T) {
	// One of two tokens shared, moderate edit distance; should land well
	// above zero but below an exact match.
	s := NameSimilarity("cerebral vasospasm", "severe vasospasm")
	assert.Greater(t, s, 0.4)
	assert.Less(t, s, 1.0)
}

func TestNameSimilarity_Unrelated(t *testing.T) {
	assert.Less(t, NameSimilarity("craniotomy", "nimodipine"), 0.5)
}

func TestJaccard(t *testing.T) {
	assert.InDelta(t, 1.0, jaccard("a b", "b a"), 1e-9)
	assert.InDelta(t, 0.5, jaccard("a b", "b c"), 1e-9)
	assert.InDelta(t, 0.0, jaccard("a", "b"), 1e-9)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("coiling", "coiling"))
	assert.Equal(t, 1, levenshtein("coiling", "coilings"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 4, levenshtein("", "abcd"))
}
