package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"canvas_backend/db"
	"canvas_backend/logging"

	"go.uber.org/zap"
)

// Kind selects which per-period counter a reservation applies to.
type Kind string

const (
	// KindImage reserves against the image counter
	KindImage Kind = "image"
	// KindVideo reserves against the video counter
	KindVideo Kind = "video"
)

// Usage is the post-operation view of one counter.
type Usage struct {
	Used      int
	Limit     int
	Remaining int
}

// Summary is the read-only quota view exposed to the UI layer.
type Summary struct {
	Images         Usage
	Videos         Usage
	CycleEnd       time.Time
	DaysUntilReset int
}

// Ledger enforces per-user allowances with an atomic check-and-reserve
// protocol against the transactional account store.
//
// Reserve is called synchronously before any expensive generation work; the
// check and the increment run inside a single store transaction, so two
// concurrent reservations can never both succeed past the limit. Refund is a
// best-effort compensating action.
//
// This organism composes:
//   - db.AccountStore: transactional read-modify-write over account rows
//   - Catalog: immutable plan limits per tier
//   - logging.Logger: structured operation logging
type Ledger struct {
	store   *db.AccountStore
	catalog *Catalog
	logger  *logging.Logger

	// now is injectable for period rollover tests
	now func() time.Time
}

// NewLedger creates a quota ledger. All dependencies are required.
func NewLedger(store *db.AccountStore, catalog *Catalog, logger *logging.Logger) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("quota: account store cannot be nil")
	}
	if catalog == nil {
		return nil, fmt.Errorf("quota: plan catalog cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("quota: logger cannot be nil")
	}
	return &Ledger{
		store:   store,
		catalog: catalog,
		logger:  logger.Named("quota"),
		now:     time.Now,
	}, nil
}

// EnsureAccount creates the account row for a user if it does not exist,
// starting a billing period anchored on today. Returns the account either way.
func (l *Ledger) EnsureAccount(ctx context.Context, userID, tier string) (*db.Account, error) {
	acct, err := l.store.GetAccount(ctx, userID)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, db.ErrAccountNotFound) {
		return nil, err
	}

	if _, err := l.catalog.Get(tier); err != nil {
		return nil, err
	}

	now := l.now().UTC()
	newAcct := db.Account{
		UserID:     userID,
		Tier:       tier,
		CycleStart: now,
		CycleEnd:   NextCycleEnd(now, now.Day()),
	}
	if err := l.store.CreateAccount(ctx, newAcct); err != nil {
		return nil, err
	}
	l.logger.Info("account created",
		zap.String("user_id", userID),
		zap.String("tier", tier))
	return l.store.GetAccount(ctx, userID)
}

// Reserve atomically checks and increments the counter for kind by count.
//
// If the account's billing period has expired, the rollover happens inside
// the same transaction before the check (lazy reset: reservation never
// blocks on the batch reset job, and never counts stale usage).
//
// Returns QuotaExceededError when used + count would pass the plan limit; the
// counter is untouched in that case. Any other error is a generic failure:
// the caller has not started generation, so no refund is owed.
func (l *Ledger) Reserve(ctx context.Context, userID string, kind Kind, count int) (*Usage, error) {
	if count < 1 {
		return nil, fmt.Errorf("quota: reserve count must be >= 1, got %d", count)
	}

	var usage Usage
	_, err := l.store.UpdateAccountTx(ctx, userID, func(acct *db.Account) error {
		l.rollIfExpired(acct)

		plan, err := l.catalog.Get(acct.Tier)
		if err != nil {
			return err
		}

		used, limit := l.counter(acct, kind), l.limit(plan, kind)
		if used+count > limit {
			remaining := limit - used
			if remaining < 0 {
				remaining = 0
			}
			return &QuotaExceededError{
				Used:      used,
				Limit:     limit,
				Requested: count,
				Remaining: remaining,
			}
		}

		l.setCounter(acct, kind, used+count)
		usage = Usage{Used: used + count, Limit: limit, Remaining: limit - used - count}
		return nil
	})
	if err != nil {
		var exceeded *QuotaExceededError
		if errors.As(err, &exceeded) {
			l.logger.Warn("reservation rejected",
				logging.QuotaFields(userID, exceeded.Used, exceeded.Limit, count)...)
		}
		return nil, err
	}

	l.logger.Debug("reserved",
		logging.QuotaFields(userID, usage.Used, usage.Limit, count)...)
	return &usage, nil
}

// Refund decrements the counter for kind by count, clamped at zero. It is a
// best-effort compensating action: failures should be logged by the caller
// and must not mask the original generation error.
func (l *Ledger) Refund(ctx context.Context, userID string, kind Kind, count int) error {
	if count < 1 {
		return fmt.Errorf("quota: refund count must be >= 1, got %d", count)
	}

	_, err := l.store.UpdateAccountTx(ctx, userID, func(acct *db.Account) error {
		used := l.counter(acct, kind) - count
		if used < 0 {
			used = 0
		}
		l.setCounter(acct, kind, used)
		return nil
	})
	if err != nil {
		return fmt.Errorf("quota: refund failed: %w", err)
	}

	l.logger.Debug("refunded",
		zap.String("user_id", userID),
		zap.String("kind", string(kind)),
		zap.Int("count", count))
	return nil
}

// Summary returns the current usage view for a user. An expired period reads
// as zero usage even before the rollover has been persisted.
func (l *Ledger) Summary(ctx context.Context, userID string) (*Summary, error) {
	acct, err := l.store.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan, err := l.catalog.Get(acct.Tier)
	if err != nil {
		return nil, err
	}

	now := l.now().UTC()
	cycleEnd := acct.CycleEnd
	imagesUsed, videosUsed := acct.ImagesUsed, acct.VideosUsed
	if now.After(acct.CycleEnd) {
		imagesUsed, videosUsed = 0, 0
		_, cycleEnd = RollForward(acct.CycleStart, acct.CycleEnd, l.anchorDay(acct), now)
	}

	return &Summary{
		Images: Usage{
			Used:      imagesUsed,
			Limit:     plan.ImagesPerPeriod,
			Remaining: plan.ImagesPerPeriod - imagesUsed,
		},
		Videos: Usage{
			Used:      videosUsed,
			Limit:     plan.VideosPerPeriod,
			Remaining: plan.VideosPerPeriod - videosUsed,
		},
		CycleEnd:       cycleEnd,
		DaysUntilReset: DaysUntil(now, cycleEnd),
	}, nil
}

// ResetIfExpired rolls the billing period forward and zeroes both counters if
// the current period has ended. No-op otherwise.
func (l *Ledger) ResetIfExpired(ctx context.Context, userID string) error {
	_, err := l.store.UpdateAccountTx(ctx, userID, func(acct *db.Account) error {
		l.rollIfExpired(acct)
		return nil
	})
	return err
}

// ResetAllExpired applies ResetIfExpired to every account whose period has
// ended. Returns the number of accounts reset. Individual failures are
// logged and skipped so one bad row does not block the sweep.
func (l *Ledger) ResetAllExpired(ctx context.Context) (int, error) {
	ids, err := l.store.ListExpiredAccountIDs(ctx, l.now().UTC())
	if err != nil {
		return 0, err
	}

	reset := 0
	for _, id := range ids {
		if err := l.ResetIfExpired(ctx, id); err != nil {
			l.logger.Error("period reset failed",
				zap.String("user_id", id),
				zap.Error(err))
			continue
		}
		reset++
	}

	l.logger.Info("period sweep complete",
		zap.Int("expired", len(ids)),
		zap.Int("reset", reset))
	return reset, nil
}

// rollIfExpired mutates the account in place when its period has ended:
// counters to zero, period advanced to the one containing now.
func (l *Ledger) rollIfExpired(acct *db.Account) {
	now := l.now().UTC()
	if !now.After(acct.CycleEnd) {
		return
	}
	acct.CycleStart, acct.CycleEnd = RollForward(
		acct.CycleStart, acct.CycleEnd, l.anchorDay(acct), now)
	acct.ImagesUsed = 0
	acct.VideosUsed = 0
}

// anchorDay is the signup day-of-month that period boundaries stay pinned to.
// CreatedAt carries the original signup date even after clamped rollovers.
func (l *Ledger) anchorDay(acct *db.Account) int {
	if !acct.CreatedAt.IsZero() {
		return acct.CreatedAt.Day()
	}
	return acct.CycleStart.Day()
}

func (l *Ledger) counter(acct *db.Account, kind Kind) int {
	if kind == KindVideo {
		return acct.VideosUsed
	}
	return acct.ImagesUsed
}

func (l *Ledger) limit(plan Plan, kind Kind) int {
	if kind == KindVideo {
		return plan.VideosPerPeriod
	}
	return plan.ImagesPerPeriod
}

func (l *Ledger) setCounter(acct *db.Account, kind Kind, value int) {
	if kind == KindVideo {
		acct.VideosUsed = value
		return
	}
	acct.ImagesUsed = value
}
