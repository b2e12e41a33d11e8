package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/shelfscout"
	"github.com/fwojciec/shelfscout/sqlite"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if c.Domain != "" {
		return c.domain(deps)
	}

	runs := deps.Tracker.History()
	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded yet.")
		return nil
	}
	shown := 0
	for i := len(runs) - 1; i >= 0; i-- {
		if c.Limit > 0 && shown == c.Limit {
			break
		}
		printRunLine(deps.Stdout, runs[i])
		shown++
	}
	return nil
}

func printRunLine(w io.Writer, run *shelfscout.RunSummary) {
	s := run.Summary
	line := fmt.Sprintf("%s  %s  %d domain(s)  %.1f%% ok  capture %.1f%%  %s",
		run.ID, run.Timestamp.Format("2006-01-02 15:04"), s.TotalDomains, s.SuccessRate, s.AvgCaptureRate, s.OverallQuality)
	if run.Comparison != nil && len(run.Comparison.Regressions) > 0 {
		line += fmt.Sprintf("  %d regression(s)", len(run.Comparison.Regressions))
	}
	fmt.Fprintln(w, line)
}

// domain prints the records of one domain, newest first.
func (c *HistoryCmd) domain(deps *Dependencies) error {
	host := shelfscout.NormalizeHostname(c.Domain)
	if host == "" {
		err := shelfscout.Errorf(shelfscout.EINVALID, "invalid domain %q", c.Domain)
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}

	var entries []sqlite.DomainEntry
	if deps.DomainHistory != nil {
		var err error
		entries, err = deps.DomainHistory.FindDomainHistory(deps.Ctx, host, c.Limit)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
			return err
		}
	} else {
		runs := deps.Tracker.History()
		for i := len(runs) - 1; i >= 0; i-- {
			if c.Limit > 0 && len(entries) == c.Limit {
				break
			}
			if rec, ok := runs[i].Record(host); ok {
				entries = append(entries, sqlite.DomainEntry{RunID: runs[i].ID, Record: rec})
			}
		}
	}

	if len(entries) == 0 {
		fmt.Fprintf(deps.Stdout, "No records for %s.\n", host)
		return nil
	}
	for _, e := range entries {
		r := e.Record
		if !r.Success {
			fmt.Fprintf(deps.Stdout, "%s  fail  %s\n", e.RunID, r.Error)
			continue
		}
		fmt.Fprintf(deps.Stdout, "%s  ok    %-12s %5d chars  %3d%%  %s\n",
			e.RunID, r.Platform, r.DescriptionLength, r.CaptureRate, r.Quality)
	}
	return nil
}
