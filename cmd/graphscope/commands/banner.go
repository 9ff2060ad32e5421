package commands

import (
	"fmt"

	"github.com/teranos/graphscope/am"
	"github.com/teranos/graphscope/logger"
	"github.com/teranos/graphscope/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(verbosity int, cfg *am.Config, url string, nodes, edges int) {
	if !logger.ShouldOutput(verbosity, logger.OutputStartup) {
		return
	}

	// ANSI escape codes
	cyan := "\033[36m"
	green := "\033[32m"
	yellow := "\033[33m"
	blue := "\033[34m"
	bold := "\033[1m"
	reset := "\033[0m"

	versionInfo := version.Get()

	fmt.Printf("\n%s%s", cyan, bold)
	fmt.Printf("   ╔═══════════════════════════════════════════════════╗\n")
	fmt.Printf("   ║                                                   ║\n")
	fmt.Printf("   ║        ○───○        g r a p h s c o p e           ║\n")
	fmt.Printf("   ║         ╲ ╱ ╲                                     ║\n")
	fmt.Printf("   ║          ○───○      %sSearch  Filter  Color  Size%s   ║\n", yellow, reset+cyan+bold)
	fmt.Printf("   ║                                                   ║\n")
	fmt.Printf("   ╚═══════════════════════════════════════════════════╝%s\n\n", reset)

	fmt.Printf("%s%s┌─ graphscope Info ───────────────────────────────────┐%s\n", green, bold, reset)
	fmt.Printf("%s│%s Version:   %s (commit %s)\n", green, reset, versionInfo.Version, versionInfo.Short())
	fmt.Printf("%s│%s Built:     %s\n", green, reset, versionInfo.BuildTime)
	fmt.Printf("%s│%s Verbosity: %s\n", green, reset, logger.LevelName(verbosity))
	fmt.Printf("%s│%s Edges:     %s (%d)\n", green, reset, cfg.Data.Edges, edges)
	if cfg.Data.Nodes != "" {
		fmt.Printf("%s│%s Nodes:     %s (%d)\n", green, reset, cfg.Data.Nodes, nodes)
	} else {
		fmt.Printf("%s│%s Nodes:     %d (from edge endpoints)\n", green, reset, nodes)
	}
	if cfg.Data.OptionsFile != "" {
		fmt.Printf("%s│%s Options:   %s\n", green, reset, cfg.Data.OptionsFile)
	}
	if cfg.Server.MaxClients > 0 {
		fmt.Printf("%s│%s Sessions:  up to %d\n", green, reset, cfg.Server.MaxClients)
	}
	fmt.Printf("%s└─────────────────────────────────────────────────────┘%s\n", green, reset)

	fmt.Printf("\n%s%s✨ Dashboard at %s%s\n", yellow, bold, url, reset)
	fmt.Printf("%s💡 Press Ctrl+C to stop%s\n\n", blue, reset)
}
