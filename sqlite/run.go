package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fwojciec/shelfscout"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ shelfscout.RunHistory = (*RunHistory)(nil)

// RunHistory implements shelfscout.RunHistory using SQLite. Run-level
// aggregates are stored as JSON; domain records get their own rows so they
// can be queried per domain.
type RunHistory struct {
	db *DB
}

// NewRunHistory creates a new RunHistory.
func NewRunHistory(db *DB) *RunHistory {
	return &RunHistory{db: db}
}

// LoadRuns returns all runs, oldest first.
// It returns ENOTFOUND when no run has been stored.
func (h *RunHistory) LoadRuns(ctx context.Context) ([]*shelfscout.RunSummary, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, timestamp, summary, platforms, comparison, recommendations
		FROM runs
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*shelfscout.RunSummary
	byID := make(map[string]*shelfscout.RunSummary)
	for rows.Next() {
		var (
			run                                 shelfscout.RunSummary
			timestamp, summary, platforms, recs string
			comparison                          sql.NullString
		)
		if err := rows.Scan(&run.ID, &timestamp, &summary, &platforms, &comparison, &recs); err != nil {
			return nil, err
		}
		if run.Timestamp, err = parseRFC3339(timestamp, "timestamp"); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(summary, &run.Summary, "summary"); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(platforms, &run.Platforms, "platforms"); err != nil {
			return nil, err
		}
		if comparison.Valid {
			run.Comparison = &shelfscout.Comparison{}
			if err := unmarshalJSON(comparison.String, run.Comparison, "comparison"); err != nil {
				return nil, err
			}
		}
		if err := unmarshalJSON(recs, &run.Recommendations, "recommendations"); err != nil {
			return nil, err
		}
		run.Domains = []shelfscout.DomainRecord{}
		runs = append(runs, &run)
		byID[run.ID] = &run
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(runs) == 0 {
		return nil, shelfscout.Errorf(shelfscout.ENOTFOUND, "no runs stored")
	}

	records, runIDs, err := h.findRecords(ctx, "", 0)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		if run, ok := byID[runIDs[i]]; ok {
			run.Domains = append(run.Domains, rec)
		}
	}
	return runs, nil
}

// SaveRuns replaces the stored history in a single transaction.
func (h *RunHistory) SaveRuns(ctx context.Context, runs []*shelfscout.RunSummary) error {
	tx, err := h.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// run_domains rows go with their runs through ON DELETE CASCADE.
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs`); err != nil {
		return err
	}

	for pos, run := range runs {
		summary, err := marshalJSON(run.Summary, "summary")
		if err != nil {
			return err
		}
		platforms, err := marshalJSON(run.Platforms, "platforms")
		if err != nil {
			return err
		}
		var comparison sql.NullString
		if run.Comparison != nil {
			c, err := marshalJSON(run.Comparison, "comparison")
			if err != nil {
				return err
			}
			comparison = sql.NullString{String: c, Valid: true}
		}
		recs, err := marshalJSON(run.Recommendations, "recommendations")
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, position, timestamp, summary, platforms, comparison, recommendations)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID, pos, formatTime(run.Timestamp), summary, platforms, comparison, recs); err != nil {
			return err
		}

		for i, d := range run.Domains {
			if err := insertRecord(ctx, tx, run.ID, i, d); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func insertRecord(ctx context.Context, tx *sql.Tx, runID string, pos int, d shelfscout.DomainRecord) error {
	sources, err := marshalJSON(d.ExtractedSources, "extracted_sources")
	if err != nil {
		return err
	}
	missed, err := marshalJSON(d.MissedContent, "missed_content")
	if err != nil {
		return err
	}
	issues, err := marshalJSON(d.Issues, "issues")
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO run_domains (id, run_id, position, domain, url, platform, success, detection_success, error, title,
			description_length, estimated_length, capture_rate, quality, quality_score,
			extracted_sources, missed_content, issues, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), runID, pos, d.Domain, d.URL, string(d.Platform), boolToInt(d.Success),
		boolToInt(d.DetectionSuccess), d.Error, d.Title, d.DescriptionLength, d.EstimatedLength,
		d.CaptureRate, string(d.Quality), d.QualityScore, sources, missed, issues, d.ContentHash)
	return err
}

// DomainEntry is a domain record together with the run it belongs to.
type DomainEntry struct {
	RunID  string
	Record shelfscout.DomainRecord
}

// FindDomainHistory returns the records of one domain across runs, newest
// run first. A limit of zero returns all of them.
func (h *RunHistory) FindDomainHistory(ctx context.Context, domain string, limit int) ([]DomainEntry, error) {
	host := shelfscout.NormalizeHostname(domain)
	if host == "" {
		return nil, shelfscout.Errorf(shelfscout.EINVALID, "domain required")
	}
	records, runIDs, err := h.findRecords(ctx, host, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]DomainEntry, len(records))
	for i := range records {
		entries[i] = DomainEntry{RunID: runIDs[i], Record: records[i]}
	}
	return entries, nil
}

// findRecords loads domain records with their run IDs. With a domain the
// newest run comes first; without one records follow run and insert order.
func (h *RunHistory) findRecords(ctx context.Context, domain string, limit int) ([]shelfscout.DomainRecord, []string, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT d.run_id, d.domain, d.url, d.platform, d.success, d.detection_success, d.error, d.title,
		d.description_length, d.estimated_length, d.capture_rate, d.quality, d.quality_score,
		d.extracted_sources, d.missed_content, d.issues, d.content_hash
		FROM run_domains d JOIN runs r ON r.id = d.run_id WHERE 1=1`)

	if domain != "" {
		query.WriteString(" AND d.domain = ?")
		args = append(args, domain)
		query.WriteString(" ORDER BY r.position DESC")
	} else {
		query.WriteString(" ORDER BY r.position ASC, d.position ASC")
	}
	appendPagination(&query, &args, limit, 0)

	rows, err := h.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var records []shelfscout.DomainRecord
	var runIDs []string
	for rows.Next() {
		var (
			runID, platform, quality string
			sources, missed, issues  string
			d                        shelfscout.DomainRecord
		)
		if err := rows.Scan(&runID, &d.Domain, &d.URL, &platform, &d.Success, &d.DetectionSuccess, &d.Error,
			&d.Title, &d.DescriptionLength, &d.EstimatedLength, &d.CaptureRate, &quality, &d.QualityScore,
			&sources, &missed, &issues, &d.ContentHash); err != nil {
			return nil, nil, err
		}
		d.Platform = shelfscout.Platform(platform)
		d.Quality = shelfscout.Quality(quality)
		if err := unmarshalJSON(sources, &d.ExtractedSources, "extracted_sources"); err != nil {
			return nil, nil, err
		}
		if err := unmarshalJSON(missed, &d.MissedContent, "missed_content"); err != nil {
			return nil, nil, err
		}
		if err := unmarshalJSON(issues, &d.Issues, "issues"); err != nil {
			return nil, nil, err
		}
		records = append(records, d)
		runIDs = append(runIDs, runID)
	}
	return records, runIDs, rows.Err()
}
