package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/shelfscout"
)

// Ensure LoggingKnowledgeBase implements shelfscout.KnowledgeBase.
var _ shelfscout.KnowledgeBase = (*LoggingKnowledgeBase)(nil)

// LoggingKnowledgeBase wraps a KnowledgeBase with logging of every
// learning call.
type LoggingKnowledgeBase struct {
	next   shelfscout.KnowledgeBase
	logger *slog.Logger
}

// NewLoggingKnowledgeBase creates a new LoggingKnowledgeBase.
func NewLoggingKnowledgeBase(next shelfscout.KnowledgeBase, logger *slog.Logger) *LoggingKnowledgeBase {
	return &LoggingKnowledgeBase{next: next, logger: logger}
}

func (k *LoggingKnowledgeBase) LearnFromSuccess(ctx context.Context, domain string, obs shelfscout.Observation) (err error) {
	defer func(begin time.Time) {
		k.logger.Info("learn success",
			"domain", domain,
			"plp_path", obs.PLPPath,
			"product_urls", len(obs.ProductURLs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return k.next.LearnFromSuccess(ctx, domain, obs)
}

func (k *LoggingKnowledgeBase) LearnFromFailure(ctx context.Context, domain string, errMsg string, attemptedPaths []string) (err error) {
	defer func(begin time.Time) {
		k.logger.Info("learn failure",
			"domain", domain,
			"reason", errMsg,
			"attempted", len(attemptedPaths),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return k.next.LearnFromFailure(ctx, domain, errMsg, attemptedPaths)
}

func (k *LoggingKnowledgeBase) SuggestionsForDomain(domain string) []shelfscout.Suggestion {
	suggestions := k.next.SuggestionsForDomain(domain)
	k.logger.Debug("suggestions", "domain", domain, "count", len(suggestions))
	return suggestions
}

func (k *LoggingKnowledgeBase) Pattern(domain string) (*shelfscout.DomainPattern, bool) {
	return k.next.Pattern(domain)
}

// Ensure LoggingStatsTracker implements shelfscout.StatsTracker.
var _ shelfscout.StatsTracker = (*LoggingStatsTracker)(nil)

// LoggingStatsTracker wraps a StatsTracker with logging of saved runs.
type LoggingStatsTracker struct {
	next   shelfscout.StatsTracker
	logger *slog.Logger
}

// NewLoggingStatsTracker creates a new LoggingStatsTracker.
func NewLoggingStatsTracker(next shelfscout.StatsTracker, logger *slog.Logger) *LoggingStatsTracker {
	return &LoggingStatsTracker{next: next, logger: logger}
}

func (t *LoggingStatsTracker) RecordDomainResult(result shelfscout.DomainResult) {
	t.logger.Debug("record domain", "domain", result.Domain, "success", result.Success)
	t.next.RecordDomainResult(result)
}

func (t *LoggingStatsTracker) SaveRun(ctx context.Context) (run *shelfscout.RunSummary, err error) {
	defer func(begin time.Time) {
		attrs := []any{}
		if run != nil {
			attrs = append(attrs,
				"run", run.ID,
				"domains", run.Summary.TotalDomains,
				"success_rate", run.Summary.SuccessRate,
				"quality", run.Summary.OverallQuality,
			)
			if run.Comparison != nil {
				attrs = append(attrs, "regressions", len(run.Comparison.Regressions))
			}
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		t.logger.Info("save run", attrs...)
	}(time.Now())
	return t.next.SaveRun(ctx)
}
