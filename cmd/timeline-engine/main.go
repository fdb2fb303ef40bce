// Command timeline-engine runs the clinical timeline analysis pipeline from
// the command line.
package main

import (
	"github.com/neuroscribe/timeline-engine/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
	cli.Main()
}
