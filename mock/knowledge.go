package mock

import (
	"context"

	"github.com/fwojciec/shelfscout"
)

var _ shelfscout.KnowledgeBase = (*KnowledgeBase)(nil)

// KnowledgeBase is a mock implementation of shelfscout.KnowledgeBase.
type KnowledgeBase struct {
	LearnFromSuccessFn     func(ctx context.Context, domain string, obs shelfscout.Observation) error
	LearnFromFailureFn     func(ctx context.Context, domain string, errMsg string, attemptedPaths []string) error
	SuggestionsForDomainFn func(domain string) []shelfscout.Suggestion
	PatternFn              func(domain string) (*shelfscout.DomainPattern, bool)
}

func (k *KnowledgeBase) LearnFromSuccess(ctx context.Context, domain string, obs shelfscout.Observation) error {
	return k.LearnFromSuccessFn(ctx, domain, obs)
}

func (k *KnowledgeBase) LearnFromFailure(ctx context.Context, domain string, errMsg string, attemptedPaths []string) error {
	return k.LearnFromFailureFn(ctx, domain, errMsg, attemptedPaths)
}

func (k *KnowledgeBase) SuggestionsForDomain(domain string) []shelfscout.Suggestion {
	return k.SuggestionsForDomainFn(domain)
}

func (k *KnowledgeBase) Pattern(domain string) (*shelfscout.DomainPattern, bool) {
	return k.PatternFn(domain)
}

var _ shelfscout.StatsTracker = (*StatsTracker)(nil)

// StatsTracker is a mock implementation of shelfscout.StatsTracker.
type StatsTracker struct {
	RecordDomainResultFn func(result shelfscout.DomainResult)
	SaveRunFn            func(ctx context.Context) (*shelfscout.RunSummary, error)
}

func (s *StatsTracker) RecordDomainResult(result shelfscout.DomainResult) {
	s.RecordDomainResultFn(result)
}

func (s *StatsTracker) SaveRun(ctx context.Context) (*shelfscout.RunSummary, error) {
	return s.SaveRunFn(ctx)
}
