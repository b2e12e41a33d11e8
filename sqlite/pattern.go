package sqlite

import (
	"context"
	"database/sql"

	"github.com/fwojciec/shelfscout"
)

// Compile-time interface verification.
var _ shelfscout.PatternStore = (*PatternStore)(nil)

// PatternStore implements shelfscout.PatternStore using SQLite.
type PatternStore struct {
	db *DB
}

// NewPatternStore creates a new PatternStore.
func NewPatternStore(db *DB) *PatternStore {
	return &PatternStore{db: db}
}

// LoadPatterns returns every stored pattern keyed by hostname.
// It returns ENOTFOUND when the table is empty.
func (s *PatternStore) LoadPatterns(ctx context.Context) (map[string]*shelfscout.DomainPattern, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, success_count, failure_count, last_success, last_failure, last_error, attempted_paths, learned
		FROM domain_patterns
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patterns := make(map[string]*shelfscout.DomainPattern)
	for rows.Next() {
		var (
			domain                   string
			p                        shelfscout.DomainPattern
			lastSuccess, lastFailure sql.NullString
			attemptedPaths, learned  string
		)
		if err := rows.Scan(&domain, &p.SuccessCount, &p.FailureCount, &lastSuccess, &lastFailure,
			&p.LastError, &attemptedPaths, &learned); err != nil {
			return nil, err
		}
		if p.LastSuccess, err = parseNullTime(lastSuccess, "last_success"); err != nil {
			return nil, err
		}
		if p.LastFailure, err = parseNullTime(lastFailure, "last_failure"); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(attemptedPaths, &p.AttemptedPaths, "attempted_paths"); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(learned, &p.Learned, "learned"); err != nil {
			return nil, err
		}
		patterns[domain] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(patterns) == 0 {
		return nil, shelfscout.Errorf(shelfscout.ENOTFOUND, "no domain patterns stored")
	}
	return patterns, nil
}

// SavePatterns replaces the stored patterns in a single transaction.
func (s *PatternStore) SavePatterns(ctx context.Context, patterns map[string]*shelfscout.DomainPattern) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM domain_patterns`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO domain_patterns (domain, success_count, failure_count, last_success, last_failure, last_error, attempted_paths, learned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for domain, p := range patterns {
		if p == nil {
			continue
		}
		attempted, err := marshalJSON(p.AttemptedPaths, "attempted_paths")
		if err != nil {
			return err
		}
		learned, err := marshalJSON(p.Learned, "learned")
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, domain, p.SuccessCount, p.FailureCount,
			nullTime(p.LastSuccess), nullTime(p.LastFailure), p.LastError, attempted, learned); err != nil {
			return err
		}
	}

	return tx.Commit()
}
