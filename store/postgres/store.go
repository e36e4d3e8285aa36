// Package postgres stores ledger entries in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/etnz/accounts"
	"github.com/etnz/accounts/date"
	"github.com/lib/pq"
)

// Schema creates the entries table.
const Schema = `CREATE TABLE IF NOT EXISTS entries (
	account_id   INTEGER     NOT NULL,
	entry_id     INTEGER     NOT NULL,
	posting_date TIMESTAMPTZ NOT NULL,
	value        NUMERIC     NOT NULL,
	value_change NUMERIC     NOT NULL,
	key          TEXT        NOT NULL DEFAULT '',
	PRIMARY KEY (account_id, entry_id)
);
CREATE INDEX IF NOT EXISTS entries_account_date ON entries (account_id, posting_date);`

const columns = `account_id, entry_id, posting_date, value, value_change, key`

// Store is a PostgreSQL implementation of accounts.EntryRepository.
type Store struct {
	db *sql.DB
}

// New returns a store on an opened database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to the database at dsn and creates the schema if needed.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot reach database: %w", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create schema: %w", err)
	}
	return New(db), nil
}

// Close closes the underlying database.
func (p *Store) Close() error { return p.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (accounts.Entry, error) {
	var e accounts.Entry
	err := row.Scan(&e.AccountID, &e.ID, &e.PostingDate, &e.Value, &e.ValueChange, &e.Key)
	e.PostingDate = e.PostingDate.UTC()
	return e, err
}

// Get implements accounts.EntryRepository.
func (p *Store) Get(ctx context.Context, accountID int, start, end date.Date) ([]accounts.Entry, error) {
	const query = `SELECT ` + columns + ` FROM entries
	WHERE account_id = $1 AND posting_date >= $2 AND posting_date < $3
	ORDER BY posting_date DESC, entry_id DESC`

	rows, err := p.db.QueryContext(ctx, query, accountID, start.Time(), end.Add(1).Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []accounts.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Add implements accounts.EntryRepository.
func (p *Store) Add(ctx context.Context, e accounts.Entry) (bool, error) {
	const query = `INSERT INTO entries (` + columns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := p.db.ExecContext(ctx, query, e.AccountID, e.ID, e.PostingDate, e.Value, e.ValueChange, e.Key)
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update implements accounts.EntryRepository.
func (p *Store) Update(ctx context.Context, e accounts.Entry) (bool, error) {
	const query = `UPDATE entries SET posting_date = $3, value = $4, value_change = $5, key = $6
	WHERE account_id = $1 AND entry_id = $2`

	res, err := p.db.ExecContext(ctx, query, e.AccountID, e.ID, e.PostingDate, e.Value, e.ValueChange, e.Key)
	return affected(res, err)
}

// Delete implements accounts.EntryRepository.
func (p *Store) Delete(ctx context.Context, accountID, entryID int) (bool, error) {
	const query = `DELETE FROM entries WHERE account_id = $1 AND entry_id = $2`

	res, err := p.db.ExecContext(ctx, query, accountID, entryID)
	return affected(res, err)
}

// GetOldest implements accounts.EntryRepository.
func (p *Store) GetOldest(ctx context.Context, accountID int) (*accounts.Entry, error) {
	const query = `SELECT ` + columns + ` FROM entries
	WHERE account_id = $1 ORDER BY posting_date, entry_id LIMIT 1`

	e, err := scanEntry(p.db.QueryRowContext(ctx, query, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}

var _ accounts.EntryRepository = (*Store)(nil)
