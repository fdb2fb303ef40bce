// Package functional holds the pure domain model for functional-status
// analysis: the static scale registry, 0-100 normalization, and the
// score-point / status-change / trajectory types derived from it.
package functional

import (
	"fmt"

	"github.com/neuroscribe/timeline-engine/pkg/errors"
	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

// ScaleMeta is static metadata for one ordinal clinical scale.  It is a
// lookup value, never per-instance state.
type ScaleMeta struct {
	Min          float64
	Max          float64
	HigherBetter bool
}

// Range returns the width of the scale.
func (m ScaleMeta) Range() float64 { return m.Max - m.Min }

// scaleRegistry is the immutable scale-metadata table.  ASIA grades A-E are
// expected pre-mapped to 1-5 by the extractor, higher meaning more function.
var scaleRegistry = map[clinical.ScaleType]ScaleMeta{
	clinical.ScaleKPS:   {Min: 0, Max: 100, HigherBetter: true},
	clinical.ScaleECOG:  {Min: 0, Max: 5, HigherBetter: false},
	clinical.ScaleMRS:   {Min: 0, Max: 6, HigherBetter: false},
	clinical.ScaleGCS:   {Min: 3, Max: 15, HigherBetter: true},
	clinical.ScaleNIHSS: {Min: 0, Max: 42, HigherBetter: false},
	clinical.ScaleASIA:  {Min: 1, Max: 5, HigherBetter: true},
}

// MetaFor returns the metadata for a scale.
func MetaFor(s clinical.ScaleType) (ScaleMeta, bool) {
	m, ok := scaleRegistry[s]
	return m, ok
}

// Normalize maps a raw score linearly onto the shared 0-100 axis where 100 is
// always "best", inverting scales where a lower raw number is better.  Raw
// values outside the scale range are clamped before mapping.
func Normalize(s clinical.ScaleType, raw float64) (float64, error) {
	meta, ok := scaleRegistry[s]
	if !ok {
		return 0, errors.New(errors.ErrCodeScaleUnsupported,
			fmt.Sprintf("no scale metadata for %q", s))
	}
	if raw < meta.Min {
		raw = meta.Min
	}
	if raw > meta.Max {
		raw = meta.Max
	}
	frac := (raw - meta.Min) / meta.Range()
	if !meta.HigherBetter {
		frac = 1 - frac
	}
	return frac * 100, nil
}
