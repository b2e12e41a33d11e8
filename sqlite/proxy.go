package sqlite

import (
	"context"

	"github.com/fwojciec/shelfscout"
)

// Compile-time interface verification.
var _ shelfscout.ProxyCache = (*ProxyCache)(nil)

// ProxyCache implements shelfscout.ProxyCache using SQLite.
type ProxyCache struct {
	db *DB
}

// NewProxyCache creates a new ProxyCache.
func NewProxyCache(db *DB) *ProxyCache {
	return &ProxyCache{db: db}
}

// LoadProxyCache returns every cached country entry.
// It returns ENOTFOUND when the table is empty.
func (c *ProxyCache) LoadProxyCache(ctx context.Context) (map[string]*shelfscout.ProxyCacheEntry, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT country, timestamp, count, proxies FROM proxy_cache`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string]*shelfscout.ProxyCacheEntry)
	for rows.Next() {
		var country, timestamp, proxies string
		var e shelfscout.ProxyCacheEntry
		if err := rows.Scan(&country, &timestamp, &e.Count, &proxies); err != nil {
			return nil, err
		}
		if e.Timestamp, err = parseRFC3339(timestamp, "timestamp"); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(proxies, &e.Proxies, "proxies"); err != nil {
			return nil, err
		}
		entries[country] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, shelfscout.Errorf(shelfscout.ENOTFOUND, "proxy cache is empty")
	}
	return entries, nil
}

// SaveProxyCache replaces the cached entries in a single transaction.
func (c *ProxyCache) SaveProxyCache(ctx context.Context, entries map[string]*shelfscout.ProxyCacheEntry) error {
	tx, err := c.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM proxy_cache`); err != nil {
		return err
	}

	for country, e := range entries {
		if e == nil {
			continue
		}
		proxies, err := marshalJSON(e.Proxies, "proxies")
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO proxy_cache (country, timestamp, count, proxies) VALUES (?, ?, ?, ?)
		`, country, formatTime(e.Timestamp), e.Count, proxies); err != nil {
			return err
		}
	}

	return tx.Commit()
}
