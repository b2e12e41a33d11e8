package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/shelfscout"
	"github.com/fwojciec/shelfscout/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRuns() []*shelfscout.RunSummary {
	return []*shelfscout.RunSummary{
		{
			ID:        "2026-02-03-001",
			Timestamp: time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC),
			Domains: []shelfscout.DomainRecord{
				{Domain: "a.com", Success: true, DetectionSuccess: true, Platform: shelfscout.PlatformShopify,
					DescriptionLength: 900, CaptureRate: 80, Quality: shelfscout.QualityExcellent, QualityScore: 5,
					ExtractedSources: []string{shelfscout.SourceMainDescription}, ContentHash: "abc"},
				{Domain: "b.com", Error: "timeout", Issues: []string{"timeout"}, Quality: shelfscout.QualityPoor},
			},
			Summary:         shelfscout.Summary{TotalDomains: 2, Successful: 1, Failed: 1, OverallQuality: shelfscout.QualityExcellent},
			Platforms:       map[shelfscout.Platform]shelfscout.PlatformStats{shelfscout.PlatformShopify: {DetectionAccuracy: 100}},
			Recommendations: []shelfscout.Recommendation{},
		},
		{
			ID:        "2026-02-03-002",
			Timestamp: time.Date(2026, 2, 3, 15, 0, 0, 0, time.UTC),
			Domains: []shelfscout.DomainRecord{
				{Domain: "a.com", Error: "blocked", Quality: shelfscout.QualityPoor},
			},
			Comparison: &shelfscout.Comparison{PreviousRunID: "2026-02-03-001", Regressions: []string{"a.com"}},
			Recommendations: []shelfscout.Recommendation{
				{Priority: shelfscout.PriorityHigh, Category: "regressions", Domains: []string{"a.com"}},
			},
		},
	}
}

func TestRunHistory(t *testing.T) {
	t.Parallel()

	t.Run("empty history is not found", func(t *testing.T) {
		t.Parallel()

		h := sqlite.NewRunHistory(setupTestDB(t))

		_, err := h.LoadRuns(context.Background())

		assert.Equal(t, shelfscout.ENOTFOUND, shelfscout.ErrorCode(err))
	})

	t.Run("round trips runs in order", func(t *testing.T) {
		t.Parallel()

		h := sqlite.NewRunHistory(setupTestDB(t))
		ctx := context.Background()

		require.NoError(t, h.SaveRuns(ctx, sampleRuns()))
		got, err := h.LoadRuns(ctx)
		require.NoError(t, err)

		require.Len(t, got, 2)
		first, second := got[0], got[1]
		assert.Equal(t, "2026-02-03-001", first.ID)
		assert.Nil(t, first.Comparison)
		require.Len(t, first.Domains, 2)
		assert.Equal(t, "a.com", first.Domains[0].Domain)
		assert.True(t, first.Domains[0].Success)
		assert.Equal(t, []string{shelfscout.SourceMainDescription}, first.Domains[0].ExtractedSources)
		assert.Equal(t, "timeout", first.Domains[1].Error)
		assert.Equal(t, 1, first.Summary.Failed)
		assert.InDelta(t, 100.0, first.Platforms[shelfscout.PlatformShopify].DetectionAccuracy, 1e-9)

		require.NotNil(t, second.Comparison)
		assert.Equal(t, []string{"a.com"}, second.Comparison.Regressions)
		require.Len(t, second.Recommendations, 1)
		assert.Equal(t, shelfscout.PriorityHigh, second.Recommendations[0].Priority)
	})

	t.Run("save replaces the history", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		h := sqlite.NewRunHistory(db)
		ctx := context.Background()

		require.NoError(t, h.SaveRuns(ctx, sampleRuns()))
		require.NoError(t, h.SaveRuns(ctx, sampleRuns()[:1]))

		got, err := h.LoadRuns(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 1)

		var rows int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM run_domains").Scan(&rows))
		assert.Equal(t, 2, rows)
	})

	t.Run("finds a domain across runs newest first", func(t *testing.T) {
		t.Parallel()

		h := sqlite.NewRunHistory(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, h.SaveRuns(ctx, sampleRuns()))

		got, err := h.FindDomainHistory(ctx, "https://www.a.com", 0)
		require.NoError(t, err)

		require.Len(t, got, 2)
		assert.Equal(t, "2026-02-03-002", got[0].RunID)
		assert.False(t, got[0].Record.Success)
		assert.Equal(t, "2026-02-03-001", got[1].RunID)
		assert.Equal(t, "abc", got[1].Record.ContentHash)

		limited, err := h.FindDomainHistory(ctx, "a.com", 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})
}
