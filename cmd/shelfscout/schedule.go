package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/shelfscout"
	"github.com/robfig/cron/v3"
)

// cronParser accepts standard five-field expressions and descriptors such
// as "@daily".
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Run executes the schedule command. It blocks until the context is
// cancelled. A failed batch is logged and the next one still runs.
func (c *ScheduleCmd) Run(deps *Dependencies) error {
	expr := c.Cron
	if expr == "" {
		expr = deps.Config.Schedule
	}
	if expr == "" {
		err := shelfscout.Errorf(shelfscout.EINVALID, "no schedule given and none configured")
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}
	sched, err := cronParser.Parse(expr)
	if err != nil {
		err = shelfscout.Errorf(shelfscout.EINVALID, "invalid schedule %q: %v", expr, err)
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}

	urls, err := deps.targets(c.URLs)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}
	opts := runOptions{Sitemap: c.Sitemap, Country: c.Country}

	for {
		next := sched.Next(time.Now())
		deps.Logger.Info("next run scheduled", "at", next.Format(time.RFC3339), "targets", len(urls))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-deps.Ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if err := runBatch(deps, urls, opts); err != nil {
			if deps.Ctx.Err() != nil {
				return nil
			}
			deps.Logger.Error("scheduled run failed", "err", err)
		}
	}
}
