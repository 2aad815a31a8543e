package dmesg

import (
	"github.com/setevik/nodescan/internal/event"
	"github.com/setevik/nodescan/internal/logscan"
)

// BaseRules is the ordered kernel-log rule table. Custom rules from config
// are composed ahead of these at analysis time.
var BaseRules = []logscan.Rule{
	logscan.NewRule(`(?:oom_kill_process.*)|(?:Out of memory.*)`,
		"Out of memory error", event.CatDriver, event.SevError),
	logscan.NewRule(`IO_PAGE_FAULT`,
		"I/O page fault", event.CatDriver, event.SevError),
	logscan.NewRule(`[Kk]ernel panic.*`,
		"Kernel panic", event.CatDriver, event.SevCritical),
	logscan.NewRule(`sched: RT throttling activated.*`,
		"Real-time throttling activated", event.CatDriver, event.SevError),
	logscan.NewRule(`rcu_preempt detected stalls.*`,
		"RCU preempt detected stalls", event.CatDriver, event.SevError),
	logscan.NewRule(`rcu_preempt self-detected stall.*`,
		"RCU preempt self-detected stall", event.CatDriver, event.SevError),
	logscan.NewRule(`(?:[\w\d_-]*)(?:\[[\d.]*\])? (?:general protection fault)|(?:general protection fault.*)`,
		"General protection fault", event.CatDriver, event.SevError),
	logscan.NewRule(`(?:segfault.*in .*\[)|(?:[Ss]egmentation [Ff]ault.*)|(?:[Ss]egfault.*)`,
		"Segmentation fault", event.CatDriver, event.SevError),
	logscan.NewRule(`page fault for address.*`,
		"Page fault", event.CatOS, event.SevError),
	logscan.NewRule(`(?:amdgpu)(.*Fatal error during GPU init)|(Fatal error during GPU init)`,
		"Fatal error during GPU init", event.CatDriver, event.SevError),
	logscan.NewRule(`\[amdgpu\]\] \*ERROR\* hw_init of IP block.*`,
		"Driver load failed: IP hardware init error", event.CatDriver, event.SevError),
	logscan.NewRule(`\[amdgpu\]\] \*ERROR\* sw_init of IP block.*`,
		"Driver load failed: IP software init error", event.CatDriver, event.SevError),
	logscan.NewRule(`\*ERROR\* suspend of IP block <\w+> failed.*`,
		"Suspend of IP block failed", event.CatDriver, event.SevError),
	logscan.NewRule(`(?:pcieport )(.*AER: aer_status.*)|(aer_status.*)`,
		"PCIe AER error", event.CatDriver, event.SevError),
	logscan.NewRule(`pcieport (\w+:\w+:\w+\.\w+):\s+(\w+):\s+(Slot\(\d+\)):\s+(Card not present)`,
		"PCIe card no longer present", event.CatIO, event.SevError),
	logscan.NewRule(`pcieport (\w+:\w+:\w+\.\w+):\s+(\w+):\s+(Slot\(\d+\)):\s+(Link Down)`,
		"PCIe link down", event.CatIO, event.SevError),
	logscan.NewRule(`pcieport (\w+:\w+:\w+\.\w+):\s+(\w+):\s+(current common clock configuration is inconsistent, reconfiguring)`,
		"Mismatched clock configuration between PCIe device and host", event.CatIO, event.SevError),
	logscan.NewRule(`ACPI BIOS Error`,
		"ACPI BIOS error", event.CatBIOS, event.SevError),
	logscan.NewRule(`ACPI Error`,
		"ACPI error", event.CatBIOS, event.SevWarning),
	logscan.NewRule(`EXT4-fs error \(device .*\):`,
		"Filesystem corruption", event.CatOS, event.SevError),
	logscan.NewRule(`(Buffer I\/O error on dev)(?:ice)? (\w+)`,
		"Buffered I/O error, check filesystem integrity", event.CatIO, event.SevError),
	logscan.NewRule(`mce: \[Hardware Error\].*`,
		"Machine check exception", event.CatPlatform, event.SevCritical),
	logscan.NewRule(`EDAC .*([CU]E) memory.*`,
		"EDAC memory error", event.CatMemory, event.SevError),
	logscan.NewRule(`(?:\d{4}-\d+-\d+T\d+:\d+:\d+,\d+[+-]\d+:\d+)?(.* correctable hardware errors detected in total in \w+ block.*)`,
		"RAS correctable error", event.CatRAS, event.SevError),
	logscan.NewRule(`(?:\d{4}-\d+-\d+T\d+:\d+:\d+,\d+[+-]\d+:\d+)?(.* uncorrectable hardware errors detected in \w+ block.*)`,
		"RAS uncorrectable error", event.CatRAS, event.SevError),
	logscan.NewRule(`(?:\d{4}-\d+-\d+T\d+:\d+:\d+,\d+[+-]\d+:\d+)?(.* deferred hardware errors detected in \w+ block.*)`,
		"RAS deferred error", event.CatRAS, event.SevError),
	logscan.NewRule(`Failed to read journal file.*`,
		"Failed to read journal file", event.CatOS, event.SevWarning),
	logscan.NewRule(`journal corrupted or uncleanly shut down.*`,
		"Journal file corrupted or uncleanly shut down", event.CatOS, event.SevWarning),
}
