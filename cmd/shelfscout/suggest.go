package main

import (
	"fmt"

	"github.com/fwojciec/shelfscout"
)

// Run executes the suggest command.
func (c *SuggestCmd) Run(deps *Dependencies) error {
	domain := shelfscout.NormalizeHostname(c.Domain)
	if domain == "" {
		err := shelfscout.Errorf(shelfscout.EINVALID, "invalid domain %q", c.Domain)
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}

	if p, ok := deps.Knowledge.Pattern(domain); ok {
		fmt.Fprintf(deps.Stdout, "%s: %d success(es), %d failure(s)\n", domain, p.SuccessCount, p.FailureCount)
		l := p.Learned
		if l.Platform != shelfscout.PlatformUnknown {
			fmt.Fprintf(deps.Stdout, "  platform:        %s\n", l.Platform)
		}
		if l.ProductURLTemplate != "" {
			fmt.Fprintf(deps.Stdout, "  product URLs:    %s\n", l.ProductURLTemplate)
		}
		if p.SuccessCount > 0 {
			fmt.Fprintf(deps.Stdout, "  avg description: %d chars (bullets %.0f%%, paragraphs %.0f%%, specs %.0f%%)\n",
				l.AverageDescriptionLength, 100*l.BulletsRatio, 100*l.ParagraphsRatio, 100*l.SpecsRatio)
		}
		if p.LastError != "" {
			fmt.Fprintf(deps.Stdout, "  last error:      %s\n", p.LastError)
		}
	} else {
		fmt.Fprintf(deps.Stdout, "%s: nothing learned yet\n", domain)
	}

	fmt.Fprintln(deps.Stdout, "Listing paths to try:")
	for _, s := range deps.Knowledge.SuggestionsForDomain(domain) {
		fmt.Fprintf(deps.Stdout, "  %-18s %-6s %s\n", s.Path, s.Confidence, s.Reason)
	}
	return nil
}
