// Package postgres backs the directory gateway with a SQL account table, for
// deployments that project their directory into Postgres rather than exposing
// LDAP directly.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the postgres driver.
	_ "github.com/lib/pq"

	"phonefix/internal/directory"
	"phonefix/pkg/sentinel"
)

// Store implements directory.Gateway over an accounts table.
type Store struct {
	db *sql.DB
}

// New constructs a Postgres-backed gateway.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open dials the DSN and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return New(db), nil
}

func (s *Store) QueryCandidates(ctx context.Context) ([]directory.Account, error) {
	query := `
		SELECT id, display_name, principal_name, phone_number
		FROM accounts
		WHERE phone_number LIKE $1
	`
	rows, err := s.db.QueryContext(ctx, query, directory.CandidatePrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []directory.Account
	for rows.Next() {
		var acct directory.Account
		if err := rows.Scan(&acct.Identity, &acct.DisplayName, &acct.PrincipalName, &acct.OldNumber); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateNumber(ctx context.Context, identity, newValue string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET phone_number = $2 WHERE id = $1`,
		identity, newValue,
	)
	if err != nil {
		return fmt.Errorf("update number: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update number: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update number %s: %w", identity, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("directory ping: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}
