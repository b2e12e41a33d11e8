package shelfscout

import (
	"context"
	"time"
)

// DomainResult is a raw extraction outcome for one domain, as reported by
// the fetch/extract pipeline.
type DomainResult struct {
	Domain           string
	URL              string
	Platform         Platform
	Success          bool
	DetectionSuccess bool
	Error            string

	// Extraction is nil when the page could not be fetched.
	Extraction *ProductExtraction
}

// DomainRecord is the normalized per-domain entry of a RunSummary.
type DomainRecord struct {
	Domain            string   `json:"domain"`
	URL               string   `json:"url"`
	Platform          Platform `json:"platform"`
	Success           bool     `json:"success"`
	DetectionSuccess  bool     `json:"detectionSuccess"`
	Error             string   `json:"error,omitempty"`
	Title             string   `json:"title,omitempty"`
	DescriptionLength int      `json:"descriptionLength"`
	EstimatedLength   int      `json:"estimatedLength"`
	CaptureRate       int      `json:"captureRate"`
	Quality           Quality  `json:"quality"`
	QualityScore      int      `json:"qualityScore"`
	ExtractedSources  []string `json:"extractedSources,omitempty"`
	MissedContent     []string `json:"missedContent,omitempty"`
	Issues            []string `json:"issues,omitempty"`
	ContentHash       string   `json:"contentHash,omitempty"`
}

// Summary aggregates a run. Averages cover successful records only.
type Summary struct {
	TotalDomains         int     `json:"totalDomains"`
	Successful           int     `json:"successful"`
	Failed               int     `json:"failed"`
	SuccessRate          float64 `json:"successRate"`
	AvgDescriptionLength float64 `json:"avgDescriptionLength"`
	AvgCaptureRate       float64 `json:"avgCaptureRate"`
	AvgQualityScore      float64 `json:"avgQualityScore"`
	OverallQuality       Quality `json:"overallQuality"`
}

// PlatformStats is the Summary of a single platform plus detection accuracy
// and its most frequent issues.
type PlatformStats struct {
	Summary
	DetectionAccuracy float64  `json:"detectionAccuracy"`
	TopIssues         []string `json:"topIssues,omitempty"`
}

// Comparison describes how a run differs from the run before it.
type Comparison struct {
	PreviousRunID     string   `json:"previousRunId"`
	CaptureRateDelta  float64  `json:"captureRateDelta"`
	QualityScoreDelta float64  `json:"qualityScoreDelta"`
	Regressions       []string `json:"regressions"`
	Improvements      []string `json:"improvements,omitempty"`
	ContentChanged    []string `json:"contentChanged,omitempty"`
}

// Priority of a recommendation.
type Priority string

// Recommendation priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Recommendation is a rule-based suggestion produced at the end of a run.
type Recommendation struct {
	Priority Priority `json:"priority"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
	Domains  []string `json:"domains,omitempty"`
}

// RunSummary is the persisted record of one extraction batch.
// It is immutable once appended to the history.
type RunSummary struct {
	ID              string                     `json:"runId"`
	Timestamp       time.Time                  `json:"timestamp"`
	Domains         []DomainRecord             `json:"domains"`
	Summary         Summary                    `json:"summary"`
	Platforms       map[Platform]PlatformStats `json:"platforms"`
	Comparison      *Comparison                `json:"comparison,omitempty"`
	Recommendations []Recommendation           `json:"recommendations"`
}

// Record returns the record for a normalized domain.
func (r *RunSummary) Record(domain string) (DomainRecord, bool) {
	for _, d := range r.Domains {
		if d.Domain == domain {
			return d, true
		}
	}
	return DomainRecord{}, false
}

// QualityFromScore maps an average quality score (0..5) to a quality label.
func QualityFromScore(score float64) Quality {
	switch {
	case score >= 4:
		return QualityExcellent
	case score >= 3:
		return QualityGood
	case score >= 2:
		return QualityFair
	default:
		return QualityPoor
	}
}

// RunHistory persists the ordered list of run summaries.
type RunHistory interface {
	// LoadRuns returns ENOTFOUND if nothing has been stored yet.
	LoadRuns(ctx context.Context) ([]*RunSummary, error)

	// SaveRuns replaces the stored history with runs.
	SaveRuns(ctx context.Context, runs []*RunSummary) error
}

// StatsTracker accumulates domain results for one run.
type StatsTracker interface {
	RecordDomainResult(result DomainResult)
	SaveRun(ctx context.Context) (*RunSummary, error)
}
