// Package stats tracks extraction runs: it normalizes per-domain results,
// summarizes them, compares against the previous run and persists history.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/shelfscout"
)

// Recommendation rule thresholds.
const (
	LowCaptureRate         = 50
	FeatureListMissMinimum = 3
	MaxRecommendationNames = 5
	MaxPlatformIssues      = 3
)

// Recommendation categories.
const (
	CategoryCaptureRate  = "capture_rate"
	CategoryFeatureLists = "feature_lists"
	CategoryRegressions  = "regressions"
)

var _ shelfscout.StatsTracker = (*Tracker)(nil)

// Tracker implements shelfscout.StatsTracker. It is not safe for
// concurrent use.
type Tracker struct {
	history shelfscout.RunHistory
	runs    []*shelfscout.RunSummary
	current *shelfscout.RunSummary
	logger  *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Open loads the run history and starts a new run. An unreadable history
// is treated as empty.
func Open(ctx context.Context, history shelfscout.RunHistory) *Tracker {
	t := &Tracker{history: history, Now: time.Now, logger: slog.Default()}
	runs, err := history.LoadRuns(ctx)
	if err != nil && shelfscout.ErrorCode(err) != shelfscout.ENOTFOUND {
		t.logger.Warn("run history unreadable, starting empty", "err", err)
	}
	if err == nil {
		t.runs = runs
	}
	t.begin()
	return t
}

// History returns the persisted runs, oldest first.
func (t *Tracker) History() []*shelfscout.RunSummary {
	return t.runs
}

// Current returns the run being accumulated. Its ID and Timestamp are
// assigned by SaveRun.
func (t *Tracker) Current() *shelfscout.RunSummary {
	return t.current
}

// RunID returns the identifier a run saved at now gets:
// the date followed by a three-digit sequence within that date.
func (t *Tracker) RunID(now time.Time) string {
	date := now.Format(time.DateOnly)
	seq := 1
	for _, r := range t.runs {
		if strings.HasPrefix(r.ID, date) {
			seq++
		}
	}
	return fmt.Sprintf("%s-%03d", date, seq)
}

func (t *Tracker) begin() {
	t.current = &shelfscout.RunSummary{
		Domains:         []shelfscout.DomainRecord{},
		Platforms:       map[shelfscout.Platform]shelfscout.PlatformStats{},
		Recommendations: []shelfscout.Recommendation{},
	}
}

// RecordDomainResult normalizes result into a domain record of the current
// run. A later result for the same domain replaces the earlier one.
func (t *Tracker) RecordDomainResult(result shelfscout.DomainResult) {
	rec := NewDomainRecord(result)
	for i := range t.current.Domains {
		if t.current.Domains[i].Domain == rec.Domain {
			t.current.Domains[i] = rec
			return
		}
	}
	t.current.Domains = append(t.current.Domains, rec)
}

// NewDomainRecord builds the persisted record shape from a raw result.
func NewDomainRecord(result shelfscout.DomainResult) shelfscout.DomainRecord {
	domain := result.Domain
	if domain == "" {
		domain = result.URL
	}
	rec := shelfscout.DomainRecord{
		Domain:           shelfscout.NormalizeHostname(domain),
		URL:              result.URL,
		Platform:         result.Platform,
		Success:          result.Success,
		DetectionSuccess: result.DetectionSuccess,
		Error:            result.Error,
		Quality:          shelfscout.QualityPoor,
	}

	if e := result.Extraction; e != nil {
		if rec.Platform == shelfscout.PlatformUnknown {
			rec.Platform = e.Platform
		}
		if result.Success {
			rec.Title = e.DisplayTitle()
			rec.DescriptionLength = e.Metrics.TotalChars
			rec.EstimatedLength = e.Metrics.EstimatedTotalChars
			rec.CaptureRate = EstimateCaptureRate(rec.DescriptionLength, rec.EstimatedLength)
			rec.Quality = shelfscout.QualityFromCaptureRate(rec.CaptureRate)
			rec.ExtractedSources = e.ExtractedSources
			rec.MissedContent = e.MissedContent
			rec.Issues = e.Issues()
			rec.ContentHash = ContentHash(e.Description)
		}
	}
	if !result.Success && result.Error != "" {
		rec.Issues = []string{result.Error}
	}

	rec.QualityScore = CalculateQualityScore(ScoreInput{
		DescriptionLength: rec.DescriptionLength,
		Success:           rec.Success,
		DetectionSuccess:  rec.DetectionSuccess,
		Quality:           rec.Quality,
	})
	return rec
}

// CalculateSummary fills the run and per-platform summaries.
func (t *Tracker) CalculateSummary() {
	t.current.Summary = summarize(t.current.Domains)

	byPlatform := make(map[shelfscout.Platform][]shelfscout.DomainRecord)
	for _, d := range t.current.Domains {
		if d.Platform.IsKnown() {
			byPlatform[d.Platform] = append(byPlatform[d.Platform], d)
		}
	}

	platforms := make(map[shelfscout.Platform]shelfscout.PlatformStats, len(byPlatform))
	for p, records := range byPlatform {
		detected := 0
		for _, d := range records {
			if d.DetectionSuccess {
				detected++
			}
		}
		platforms[p] = shelfscout.PlatformStats{
			Summary:           summarize(records),
			DetectionAccuracy: round1(100 * float64(detected) / float64(len(records))),
			TopIssues:         topIssues(records, MaxPlatformIssues),
		}
	}
	t.current.Platforms = platforms
}

func summarize(records []shelfscout.DomainRecord) shelfscout.Summary {
	s := shelfscout.Summary{TotalDomains: len(records), OverallQuality: shelfscout.QualityPoor}
	var length, capture, score float64
	for _, d := range records {
		if !d.Success {
			s.Failed++
			continue
		}
		s.Successful++
		length += float64(d.DescriptionLength)
		capture += float64(d.CaptureRate)
		score += float64(d.QualityScore)
	}
	if s.TotalDomains > 0 {
		s.SuccessRate = round1(100 * float64(s.Successful) / float64(s.TotalDomains))
	}
	if s.Successful > 0 {
		n := float64(s.Successful)
		s.AvgDescriptionLength = round1(length / n)
		s.AvgCaptureRate = round1(capture / n)
		s.AvgQualityScore = round1(score / n)
	}
	s.OverallQuality = shelfscout.QualityFromScore(s.AvgQualityScore)
	return s
}

// topIssues returns up to n issues by descending frequency. Ties keep the
// order in which issues were first seen.
func topIssues(records []shelfscout.DomainRecord, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, d := range records {
		for _, issue := range d.Issues {
			if counts[issue] == 0 {
				order = append(order, issue)
			}
			counts[issue]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

// CompareWithPrevious compares the current run with the last persisted run.
// It leaves Comparison nil when there is no history. CalculateSummary must
// run first.
func (t *Tracker) CompareWithPrevious() {
	if len(t.runs) == 0 {
		t.current.Comparison = nil
		return
	}
	prev := t.runs[len(t.runs)-1]
	cmp := &shelfscout.Comparison{
		PreviousRunID:     prev.ID,
		CaptureRateDelta:  round1(t.current.Summary.AvgCaptureRate - prev.Summary.AvgCaptureRate),
		QualityScoreDelta: round1(t.current.Summary.AvgQualityScore - prev.Summary.AvgQualityScore),
		Regressions:       []string{},
	}

	for _, cur := range t.current.Domains {
		old, ok := prev.Record(cur.Domain)
		if !ok {
			continue
		}
		switch {
		case old.Success && !cur.Success:
			cmp.Regressions = append(cmp.Regressions, cur.Domain)
		case !old.Success && cur.Success:
			cmp.Improvements = append(cmp.Improvements, cur.Domain)
		case old.Success && cur.Success && old.ContentHash != "" && cur.ContentHash != "" && old.ContentHash != cur.ContentHash:
			cmp.ContentChanged = append(cmp.ContentChanged, cur.Domain)
		}
	}
	t.current.Comparison = cmp
}

// GenerateRecommendations derives rule-based recommendations from the
// current run. CompareWithPrevious must run first for regressions to be
// reported.
func (t *Tracker) GenerateRecommendations() {
	recs := []shelfscout.Recommendation{}

	var lowCapture, missedFeatures []string
	for _, d := range t.current.Domains {
		if d.Success && d.CaptureRate < LowCaptureRate {
			lowCapture = append(lowCapture, d.Domain)
		}
		for _, m := range d.MissedContent {
			if m == shelfscout.ContentFeatureLists {
				missedFeatures = append(missedFeatures, d.Domain)
				break
			}
		}
	}

	if len(lowCapture) > 0 {
		recs = append(recs, shelfscout.Recommendation{
			Priority: shelfscout.PriorityHigh,
			Category: CategoryCaptureRate,
			Message:  fmt.Sprintf("%d domain(s) captured less than %d%% of their estimated content; review their description selectors", len(lowCapture), LowCaptureRate),
			Domains:  lowCapture,
		})
	}
	if c := t.current.Comparison; c != nil && len(c.Regressions) > 0 {
		recs = append(recs, shelfscout.Recommendation{
			Priority: shelfscout.PriorityHigh,
			Category: CategoryRegressions,
			Message:  fmt.Sprintf("%d domain(s) succeeded in %s and fail now", len(c.Regressions), c.PreviousRunID),
			Domains:  c.Regressions,
		})
	}
	if len(missedFeatures) > FeatureListMissMinimum {
		recs = append(recs, shelfscout.Recommendation{
			Priority: shelfscout.PriorityMedium,
			Category: CategoryFeatureLists,
			Message:  fmt.Sprintf("%d domains have feature lists that were not captured", len(missedFeatures)),
			Domains:  missedFeatures[:min(len(missedFeatures), MaxRecommendationNames)],
		})
	}
	t.current.Recommendations = recs
}

// SaveRun summarizes, compares and generates recommendations for the
// current run, appends it to the history and persists the full history.
// On success a new run is started.
func (t *Tracker) SaveRun(ctx context.Context) (*shelfscout.RunSummary, error) {
	now := t.Now()
	t.current.ID = t.RunID(now)
	t.current.Timestamp = now

	t.CalculateSummary()
	t.CompareWithPrevious()
	t.GenerateRecommendations()

	runs := append(t.runs[:len(t.runs):len(t.runs)], t.current)
	if err := t.history.SaveRuns(ctx, runs); err != nil {
		return nil, fmt.Errorf("saving run %s: %w", t.current.ID, err)
	}
	saved := t.current
	t.runs = runs
	t.begin()
	return saved, nil
}
