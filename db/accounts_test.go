package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// newTestStore opens a fresh migrated database in a temp directory.
func newTestStore(t *testing.T) *AccountStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	conn, err := NewSQLiteConnectionWithDefaults(dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := MigrateUpEmbedded(conn); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewAccountStore(conn)
}

func testAccount(userID string) Account {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return Account{
		UserID:     userID,
		Tier:       "free",
		CycleStart: start,
		CycleEnd:   start.AddDate(0, 1, 0),
	}
}

func TestCreateAndGetAccount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateAccount(ctx, testAccount("user-1")); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	acct, err := store.GetAccount(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acct.Tier != "free" {
		t.Errorf("Tier = %q, want free", acct.Tier)
	}
	if acct.ImagesUsed != 0 || acct.VideosUsed != 0 {
		t.Errorf("new account has nonzero usage: %d/%d", acct.ImagesUsed, acct.VideosUsed)
	}
	if !acct.CycleEnd.After(acct.CycleStart) {
		t.Error("CycleEnd must be after CycleStart")
	}
}

func TestGetAccountNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetAccount(context.Background(), "nobody")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestUpdateAccountTxMutates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateAccount(ctx, testAccount("user-1")); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	updated, err := store.UpdateAccountTx(ctx, "user-1", func(a *Account) error {
		a.ImagesUsed += 3
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateAccountTx failed: %v", err)
	}
	if updated.ImagesUsed != 3 {
		t.Errorf("returned ImagesUsed = %d, want 3", updated.ImagesUsed)
	}

	reread, err := store.GetAccount(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if reread.ImagesUsed != 3 {
		t.Errorf("persisted ImagesUsed = %d, want 3", reread.ImagesUsed)
	}
}

func TestUpdateAccountTxRollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateAccount(ctx, testAccount("user-1")); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	sentinel := errors.New("limit exceeded")
	_, err := store.UpdateAccountTx(ctx, "user-1", func(a *Account) error {
		a.ImagesUsed = 999
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error unwrapped, got %v", err)
	}

	acct, err := store.GetAccount(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acct.ImagesUsed != 0 {
		t.Errorf("rollback failed: ImagesUsed = %d, want 0", acct.ImagesUsed)
	}
}

func TestListExpiredAccountIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	expired := testAccount("expired-user")
	expired.CycleStart = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	expired.CycleEnd = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	if err := store.CreateAccount(ctx, expired); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	current := testAccount("current-user")
	current.CycleEnd = time.Now().UTC().AddDate(0, 1, 0)
	if err := store.CreateAccount(ctx, current); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	ids, err := store.ListExpiredAccountIDs(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("ListExpiredAccountIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "expired-user" {
		t.Errorf("ids = %v, want [expired-user]", ids)
	}
}
