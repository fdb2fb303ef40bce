package narrative

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/neuroscribe/timeline-engine/pkg/errors"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

// dateLayouts are the clinical date formats accepted, tried in order.
// The narrow set is deliberate: the extractor already normalises most dates,
// and a permissive parser would silently misread day/month order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// ParseDate parses an extractor-supplied date string.  An empty input returns
// (nil, nil); an unparseable input returns an ErrCodeDateUnparseable error so
// the caller can log it and proceed with a nil timestamp (error taxonomy
// case (b)).
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errors.New(errors.ErrCodeDateUnparseable, "unparseable mention date").
		WithDetail("raw=" + raw)
}

// podPattern matches post-operative-day shorthand: "POD#3", "POD 3", "pod3".
var podPattern = regexp.MustCompile(`(?i)\bpod\s*#?\s*(\d{1,3})\b`)

// ParsePOD extracts the day offset from a POD reference.  The second return
// is false when the text contains no POD shorthand.
func ParsePOD(text string) (int, bool) {
	m := podPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// PODAnchor selects the date a POD offset resolves against.  Priority order:
// first procedure date, then admission, then ictus, then the most recent
// entry of the legacy surgery-date list.  The most temporally-local anchor
// wins over the most globally common one.  Returns nil when no anchor exists
// (error taxonomy case (c)).
func PODAnchor(anchors clinical.ReferenceAnchors) *time.Time {
	if anchors.FirstProcedure != nil {
		return anchors.FirstProcedure
	}
	if anchors.Admission != nil {
		return anchors.Admission
	}
	if anchors.Ictus != nil {
		return anchors.Ictus
	}
	if n := len(anchors.SurgeryDates); n > 0 {
		latest := anchors.SurgeryDates[0]
		for _, d := range anchors.SurgeryDates[1:] {
			if d.After(latest) {
				latest = d
			}
		}
		return &latest
	}
	return nil
}

// ResolvePOD converts a POD offset to an absolute date by adding the offset
// in days to the selected anchor.  Returns nil when no anchor exists.
func ResolvePOD(offset int, anchors clinical.ReferenceAnchors) *time.Time {
	anchor := PODAnchor(anchors)
	if anchor == nil {
		return nil
	}
	resolved := anchor.AddDate(0, 0, offset)
	return &resolved
}
