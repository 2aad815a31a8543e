package journal

import (
	"github.com/setevik/nodescan/internal/event"
	"github.com/setevik/nodescan/internal/logscan"
)

// BaseRules is the ordered journal rule table, covering systemd service
// failures, process crashes and journal health problems.
var BaseRules = []logscan.Rule{
	logscan.NewRule(`(\S+\.service): Main process exited, code=exited, status=\d+/\w+`,
		"Service main process exited with failure", event.CatOS, event.SevError),
	logscan.NewRule(`(\S+\.service): Failed with result '.+'`,
		"Service failed", event.CatOS, event.SevError),
	logscan.NewRule(`(\S+\.service) entered failed state`,
		"Service entered failed state", event.CatOS, event.SevError),
	logscan.NewRule(`Process \d+ \((.+)\) of user \d+ dumped core`,
		"Process dumped core", event.CatApplication, event.SevError),
	logscan.NewRule(`(\S+)\[\d+\]: segfault at`,
		"Process segfault", event.CatApplication, event.SevError),
	logscan.NewRule(`(?:oom-kill:.*)|(?:Out of memory: Kill(?:ed)? process.*)`,
		"Out of memory kill", event.CatMemory, event.SevError),
	logscan.NewRule(`Failed to read journal file.*`,
		"Failed to read journal file", event.CatOS, event.SevWarning),
	logscan.NewRule(`journal corrupted or uncleanly shut down.*`,
		"Journal file corrupted or uncleanly shut down", event.CatOS, event.SevWarning),
}
