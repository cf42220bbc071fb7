package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrAccountNotFound is returned when no account exists for a user id.
var ErrAccountNotFound = errors.New("db: account not found")

// Account represents a row in the accounts table: per-user usage counters for
// the current billing period.
//
// Storage does not enforce used <= limit; the reservation protocol in the
// quota package enforces it at write time inside UpdateAccountTx.
type Account struct {
	UserID     string    // Opaque id supplied by the identity provider
	Tier       string    // Plan key: "free", "pro", "legacy-paid"
	ImagesUsed int       // Images generated in the current period
	VideosUsed int       // Videos generated in the current period
	CycleStart time.Time // Billing period start (inclusive)
	CycleEnd   time.Time // Billing period end (exclusive)
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AccountStore provides CRUD and transactional read-modify-write operations
// over the accounts table.
//
// It is an explicitly constructed, injectable service object: callers own the
// connection lifecycle.
type AccountStore struct {
	db *sql.DB
}

// NewAccountStore creates a new AccountStore over an open connection.
func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

// CreateAccount inserts a new account row. Fails if the user already exists.
func (s *AccountStore) CreateAccount(ctx context.Context, acct Account) error {
	if s.db == nil {
		return fmt.Errorf("db: connection is nil")
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (
			user_id, tier, images_used, videos_used,
			cycle_start, cycle_end, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		acct.UserID,
		acct.Tier,
		acct.ImagesUsed,
		acct.VideosUsed,
		formatTime(acct.CycleStart),
		formatTime(acct.CycleEnd),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("db: failed to insert account: %w", err)
	}
	return nil
}

// GetAccount returns the account for a user id, or ErrAccountNotFound.
func (s *AccountStore) GetAccount(ctx context.Context, userID string) (*Account, error) {
	if s.db == nil {
		return nil, fmt.Errorf("db: connection is nil")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, tier, images_used, videos_used,
		       cycle_start, cycle_end, created_at, updated_at
		FROM accounts WHERE user_id = ?`, userID)

	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("db: failed to read account: %w", err)
	}
	return acct, nil
}

// UpdateAccountTx runs fn against the current account row inside a single
// transaction and writes the mutated result back. If fn returns an error the
// transaction is rolled back and that error is returned unwrapped, so callers
// can match typed errors (e.g. quota exhaustion) with errors.As.
//
// This is the atomic read-modify-write primitive behind quota reservation:
// two concurrent reservations serialize here, so both can never pass the
// limit check against the same stale counter.
func (s *AccountStore) UpdateAccountTx(ctx context.Context, userID string, fn func(*Account) error) (*Account, error) {
	if s.db == nil {
		return nil, fmt.Errorf("db: connection is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("db: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT user_id, tier, images_used, videos_used,
		       cycle_start, cycle_end, created_at, updated_at
		FROM accounts WHERE user_id = ?`, userID)

	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("db: failed to read account: %w", err)
	}

	if err := fn(acct); err != nil {
		return nil, err
	}

	acct.UpdatedAt = time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE accounts
		SET tier = ?, images_used = ?, videos_used = ?,
		    cycle_start = ?, cycle_end = ?, updated_at = ?
		WHERE user_id = ?`,
		acct.Tier,
		acct.ImagesUsed,
		acct.VideosUsed,
		formatTime(acct.CycleStart),
		formatTime(acct.CycleEnd),
		formatTime(acct.UpdatedAt),
		acct.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("db: failed to update account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("db: failed to commit account update: %w", err)
	}

	return acct, nil
}

// ListExpiredAccountIDs returns the ids of all accounts whose billing period
// ended before now. Used by the batch period-rollover job.
func (s *AccountStore) ListExpiredAccountIDs(ctx context.Context, now time.Time) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("db: connection is nil")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM accounts WHERE cycle_end < ?`, formatTime(now.UTC()))
	if err != nil {
		return nil, fmt.Errorf("db: failed to list expired accounts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db: failed to scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for scanAccount.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row scanner) (*Account, error) {
	var (
		acct                                       Account
		cycleStart, cycleEnd, createdAt, updatedAt string
	)
	err := row.Scan(
		&acct.UserID, &acct.Tier, &acct.ImagesUsed, &acct.VideosUsed,
		&cycleStart, &cycleEnd, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if acct.CycleStart, err = parseTime(cycleStart); err != nil {
		return nil, fmt.Errorf("invalid cycle_start: %w", err)
	}
	if acct.CycleEnd, err = parseTime(cycleEnd); err != nil {
		return nil, fmt.Errorf("invalid cycle_end: %w", err)
	}
	if acct.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	if acct.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at: %w", err)
	}

	return &acct, nil
}

// Timestamps are stored as RFC 3339 text so rows stay readable in the sqlite
// shell and sort lexicographically in index order.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
