package narrative

import (
	"time"

	"github.com/neuroscribe/timeline-engine/pkg/types/clinical"
)

// ResolvedMention is a candidate mention after stage-one resolution: negation
// has been ruled out, the temporal context is classified, and the absolute
// date (when resolvable) is attached.  This is the unit the identity
// resolver clusters.
type ResolvedMention struct {
	Mention   clinical.Mention
	Context   TemporalContext
	Timestamp *time.Time
}
