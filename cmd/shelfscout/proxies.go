package main

import (
	"fmt"
	"text/tabwriter"

	shelfslog "github.com/fwojciec/shelfscout/slog"
)

// Run executes the proxies command.
func (c *ProxiesCmd) Run(deps *Dependencies) error {
	if c.Refresh {
		deps.Harvester.TTL = 0
	}
	deps.Harvester.Progress = func(tested, total int) {
		fmt.Fprintf(deps.Stderr, "tested %d/%d\n", tested, total)
	}

	proxies, err := shelfslog.NewLoggingProxyHarvester(deps.Harvester, deps.Logger).GetProxiesForCountry(deps.Ctx, c.Country)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		if len(proxies) == 0 {
			return err
		}
	}

	if len(proxies) == 0 {
		fmt.Fprintf(deps.Stdout, "No working proxies found for %s.\n", c.Country)
		return nil
	}

	tw := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROXY\tCOUNTRY\tRESPONSE")
	for _, p := range proxies {
		fmt.Fprintf(tw, "%s\t%s\t%dms\n", p.Proxy, p.Country, p.ResponseTimeMs)
	}
	return tw.Flush()
}
