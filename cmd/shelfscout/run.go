package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/shelfscout"
	"github.com/fwojciec/shelfscout/crawl"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	urls, err := deps.targets(c.URLs)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}
	return runBatch(deps, urls, runOptions{
		Sitemap:     c.Sitemap,
		Concurrency: c.Concurrency,
		Out:         c.Out,
		Country:     c.Country,
	})
}

// runBatch processes urls as one run and prints its summary.
func runBatch(deps *Dependencies, urls []string, opts runOptions) error {
	runner, err := deps.runner(deps.Ctx, opts)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}
	defer runner.Fetcher.Close()

	result, err := runner.Run(deps.Ctx, urls, progressPrinter(deps.Stderr))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}

	fmt.Fprintf(deps.Stderr, "Fetched %s of product HTML\n", crawl.FormatBytes(result.Bytes))
	printRun(deps.Stdout, result.Run)
	return nil
}

// progressPrinter reports each finished target on w.
func progressPrinter(w io.Writer) crawl.ProgressFunc {
	return func(e crawl.ProgressEvent) {
		switch e.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(w, "Processing %d target(s)\n", e.Total)
		case crawl.ProgressCompleted:
			fmt.Fprintf(w, "[%d/%d] ok    %s\n", e.Completed, e.Total, crawl.TruncateURL(e.URL, 70))
		case crawl.ProgressFailed:
			fmt.Fprintf(w, "[%d/%d] fail  %s: %s\n", e.Completed, e.Total, e.Domain, errorText(e.Error))
		}
	}
}

// printRun writes the summary, per-platform table, comparison and
// recommendations of a run.
func printRun(w io.Writer, run *shelfscout.RunSummary) {
	if run == nil {
		return
	}
	s := run.Summary
	fmt.Fprintf(w, "Run %s: %d/%d succeeded (%.1f%%)\n", run.ID, s.Successful, s.TotalDomains, s.SuccessRate)
	fmt.Fprintf(w, "  avg description %.0f chars, avg capture %.1f%%, avg score %.1f, overall %s\n",
		s.AvgDescriptionLength, s.AvgCaptureRate, s.AvgQualityScore, s.OverallQuality)

	for _, d := range run.Domains {
		status := "ok"
		if !d.Success {
			status = "fail"
		}
		fmt.Fprintf(w, "  %-4s %-30s %-12s %3d%% %s\n", status, d.Domain, d.Platform, d.CaptureRate, d.Quality)
	}

	if len(run.Platforms) > 0 {
		fmt.Fprintln(w, "Platforms:")
		for _, p := range shelfscout.KnownPlatforms() {
			ps, ok := run.Platforms[p]
			if !ok || ps.TotalDomains == 0 {
				continue
			}
			fmt.Fprintf(w, "  %-12s %d domain(s), capture %.1f%%, detection %.1f%%\n",
				p, ps.TotalDomains, ps.AvgCaptureRate, ps.DetectionAccuracy)
			if len(ps.TopIssues) > 0 {
				fmt.Fprintf(w, "               issues: %s\n", strings.Join(ps.TopIssues, "; "))
			}
		}
	}

	if c := run.Comparison; c != nil {
		fmt.Fprintf(w, "Since %s: capture %+.1f, score %+.1f\n", c.PreviousRunID, c.CaptureRateDelta, c.QualityScoreDelta)
		if len(c.Regressions) > 0 {
			fmt.Fprintf(w, "  regressions: %s\n", strings.Join(c.Regressions, ", "))
		}
		if len(c.Improvements) > 0 {
			fmt.Fprintf(w, "  improvements: %s\n", strings.Join(c.Improvements, ", "))
		}
	}

	for _, r := range run.Recommendations {
		fmt.Fprintf(w, "[%s] %s\n", r.Priority, r.Message)
	}
}
