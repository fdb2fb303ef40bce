package narrative

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroscribe/timeline-engine/pkg/errors"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

func ts(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate_Layouts(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2024-03-05", ts(2024, 3, 5)},
		{"03/05/2024", ts(2024, 3, 5)},
		{"3/5/2024", ts(2024, 3, 5)},
		{"March 5, 2024", ts(2024, 3, 5)},
		{"Mar 5, 2024", ts(2024, 3, 5)},
		{"5 March 2024", ts(2024, 3, 5)},
	}
	for _, c := range cases {
		got, err := ParseDate(c.raw)
		require.NoError(t, err, c.raw)
		require.NotNil(t, got, c.raw)
		assert.True(t, got.Equal(c.want), "parsing %q: got %v", c.raw, got)
	}
}

func TestParseDate_Empty(t *testing.T) {
	got, err := ParseDate("")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseDate_Unparseable(t *testing.T) {
	got, err := ParseDate("sometime last week")
	assert.Nil(t, got)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDateUnparseable))
}

func TestParsePOD(t *testing.T) {
	cases := []struct {
		text   string
		offset int
		ok     bool
	}{
		{"s/p coiling POD#2", 2, true},
		{"POD 14 with improving exam", 14, true},
		{"pod#3", 3, true},
		{"transferred to the pod", 0, false},
		{"no postoperative day here", 0, false},
	}
	for _, c := range cases {
		offset, ok := ParsePOD(c.text)
		assert.Equal(t, c.ok, ok, c.text)
		if c.ok {
			assert.Equal(t, c.offset, offset, c.text)
		}
	}
}

func TestPODAnchor_Priority(t *testing.T) {
	fp, adm, ict := ts(2024, 3, 2), ts(2024, 3, 1), ts(2024, 2, 28)
	legacy := []time.Time{ts(2024, 2, 20), ts(2024, 2, 25)}

	full := clinical.ReferenceAnchors{FirstProcedure: &fp, Admission: &adm, Ictus: &ict, SurgeryDates: legacy}
	assert.Equal(t, fp, *PODAnchor(full))

	noProc := clinical.ReferenceAnchors{Admission: &adm, Ictus: &ict, SurgeryDates: legacy}
	assert.Equal(t, adm, *PODAnchor(noProc))

	ictusOnly := clinical.ReferenceAnchors{Ictus: &ict, SurgeryDates: legacy}
	assert.Equal(t, ict, *PODAnchor(ictusOnly))

	legacyOnly := clinical.ReferenceAnchors{SurgeryDates: legacy}
	assert.Equal(t, ts(2024, 2, 25), *PODAnchor(legacyOnly), "latest legacy surgery date wins")

	assert.Nil(t, PODAnchor(clinical.ReferenceAnchors{}))
}

func TestResolvePOD(t *testing.T) {
	fp := ts(2024, 3, 2)
	anchors := clinical.ReferenceAnchors{FirstProcedure: &fp}

	got := ResolvePOD(3, anchors)
	require.NotNil(t, got)
	assert.Equal(t, ts(2024, 3, 5), *got)

	assert.Nil(t, ResolvePOD(3, clinical.ReferenceAnchors{}), "no anchor yields nil")
}
