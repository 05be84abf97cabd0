package quota

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vnavash/banksync/db"
	"github.com/vnavash/banksync/pkg/models"
)

const (
	// DefaultLimitPerDay is the free-tier provider budget per account,
	// scope and day
	DefaultLimitPerDay = 4

	defaultCacheTTL = 5 * time.Minute
)

// Ledger tracks remaining provider calls per (account, scope, UTC day).
// The day boundary is the calendar date, not a rolling window: remaining
// calls refresh at midnight UTC regardless of when the last call was.
type Ledger struct {
	db          db.DBInterface
	limitPerDay int
	cache       *statusCache
	now         func() time.Time
}

// NewLedger creates a ledger backed by the given store
func NewLedger(database db.DBInterface, limitPerDay int) *Ledger {
	if limitPerDay <= 0 {
		limitPerDay = DefaultLimitPerDay
	}
	return &Ledger{
		db:          database,
		limitPerDay: limitPerDay,
		cache:       newStatusCache(defaultCacheTTL, time.Now),
		now:         time.Now,
	}
}

// WithClock overrides the ledger's clock. Intended for tests.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	l.cache.now = now
	return l
}

// CanRequest answers whether a provider call is allowed right now for
// the given account and scope. When the backing store is unreachable it
// fails closed rather than permitting unbounded calls.
func (l *Ledger) CanRequest(accountId string, scope models.Scope) (models.QuotaStatus, error) {
	day := l.today()
	key := cacheKey(accountId, scope, day)

	if status, ok := l.cache.get(key); ok {
		return status, nil
	}

	record, err := l.db.GetQuotaRecord(accountId, scope, day)
	if err != nil {
		return models.QuotaStatus{Allowed: false, Remaining: 0},
			fmt.Errorf("quota lookup failed: %w", err)
	}

	if record == nil {
		// First check of the day: start a fresh record at the full limit
		record = &models.QuotaRecord{
			AccountId:      accountId,
			Scope:          scope,
			Day:            day,
			LimitPerDay:    l.limitPerDay,
			RemainingCalls: l.limitPerDay,
			ResetTime:      l.nextMidnight(),
			UpdatedAt:      l.now().UTC(),
		}
		if err := l.db.UpsertQuotaRecord(record); err != nil {
			return models.QuotaStatus{Allowed: false, Remaining: 0},
				fmt.Errorf("quota init failed: %w", err)
		}
	}

	status := models.QuotaStatus{
		Allowed:   record.RemainingCalls > 0,
		Remaining: record.RemainingCalls,
		ResetTime: record.ResetTime,
	}
	l.cache.set(key, status)
	return status, nil
}

// Consume records one provider call against the day's budget. Safe to
// call when no record exists yet; the new record starts at limit-1.
func (l *Ledger) Consume(accountId string, scope models.Scope, previousRemaining int) error {
	day := l.today()

	remaining := previousRemaining - 1
	if remaining < 0 {
		remaining = 0
	}

	record := &models.QuotaRecord{
		AccountId:      accountId,
		Scope:          scope,
		Day:            day,
		LimitPerDay:    l.limitPerDay,
		RemainingCalls: remaining,
		ResetTime:      l.nextMidnight(),
		UpdatedAt:      l.now().UTC(),
	}

	if err := l.db.UpsertQuotaRecord(record); err != nil {
		return fmt.Errorf("quota consume failed: %w", err)
	}

	l.cache.invalidate(cacheKey(accountId, scope, day))
	log.Debug().
		Str("account", accountId).
		Str("scope", scope.String()).
		Int("remaining", remaining).
		Msg("consumed provider call quota")
	return nil
}

// LimitPerDay returns the configured per-day budget
func (l *Ledger) LimitPerDay() int {
	return l.limitPerDay
}

func (l *Ledger) today() string {
	return l.now().UTC().Format(time.DateOnly)
}

func (l *Ledger) nextMidnight() time.Time {
	t := l.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, time.UTC)
}

func cacheKey(accountId string, scope models.Scope, day string) string {
	return accountId + "/" + scope.String() + "/" + day
}
