package blacklist

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS domains (
		domain TEXT PRIMARY KEY,
		added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

// Store persists blacklist domains in a SQLite database. The proxy only reads
// from it at startup; writes happen through the blacklistctl tool.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path, verifies
// the connection, and ensures the schema exists. The caller should call Close
// when the store is no longer needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Domains returns every blacklisted domain in the store.
func (s *Store) Domains(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT domain FROM domains ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("query domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		domains = append(domains, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate domains: %w", err)
	}

	return domains, nil
}

// Add inserts a domain. Inserting a domain that is already present is not an
// error.
func (s *Store) Add(ctx context.Context, domain string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO domains (domain) VALUES ($1) ON CONFLICT (domain) DO NOTHING`,
		domain,
	)
	return err
}

// Remove deletes a domain from the store.
func (s *Store) Remove(ctx context.Context, domain string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM domains WHERE domain = $1`, domain)
	return err
}

// Count returns the number of blacklisted domains.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM domains`).Scan(&n)
	return n, err
}
