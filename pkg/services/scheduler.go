package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vnavash/banksync/db"
	"github.com/vnavash/banksync/pkg/metrics"
	"github.com/vnavash/banksync/pkg/models"
	"github.com/vnavash/banksync/pkg/quota"
)

// SkipReasonNoQuota is recorded for accounts the scheduler never handed
// to the orchestrator because every configured scope was exhausted
const SkipReasonNoQuota = "no available rate limits"

// SlotConfig is one of the three fixed daily scheduler passes. The shape
// spreads the per-day provider budget so transactions sync up to three
// times a day while low-churn details sync once.
type SlotConfig struct {
	Name   string
	Hour   int
	Scopes []models.Scope
}

// Slots holds the daily schedule
var Slots = []SlotConfig{
	{Name: "morning-sync", Hour: 4, Scopes: []models.Scope{models.ScopeDetails, models.ScopeBalances, models.ScopeTransactions}},
	{Name: "midday-sync", Hour: 12, Scopes: []models.Scope{models.ScopeBalances, models.ScopeTransactions}},
	{Name: "evening-sync", Hour: 21, Scopes: []models.Scope{models.ScopeTransactions}},
}

// SlotForHour resolves the slot scheduled for the given wall-clock hour
func SlotForHour(hour int) (SlotConfig, bool) {
	for _, slot := range Slots {
		if slot.Hour == hour {
			return slot, true
		}
	}
	return SlotConfig{}, false
}

// ScheduledTime formats the slot's hour as HH:MM
func (s SlotConfig) ScheduledTime() string {
	return fmt.Sprintf("%02d:00", s.Hour)
}

// Scheduler runs slot syncs across every active account, isolating
// per-account failures so one bad account cannot abort the fleet run.
type Scheduler struct {
	db           db.DBInterface
	ledger       *quota.Ledger
	orchestrator *Orchestrator
	now          func() time.Time
}

// NewScheduler wires a scheduler over the given store, ledger and orchestrator
func NewScheduler(database db.DBInterface, ledger *quota.Ledger, orchestrator *Orchestrator) *Scheduler {
	return &Scheduler{
		db:           database,
		ledger:       ledger,
		orchestrator: orchestrator,
		now:          time.Now,
	}
}

// RunScheduled resolves the current slot from the wall clock and runs it.
// Outside the three scheduled hours it is a no-op and returns ok=false.
func (s *Scheduler) RunScheduled(ctx context.Context) (*models.SyncLog, bool, error) {
	slot, ok := SlotForHour(s.now().Hour())
	if !ok {
		return nil, false, nil
	}
	syncLog, err := s.RunSlot(ctx, slot)
	return syncLog, true, err
}

// RunSlot syncs every active account with the slot's scope set. Only a
// store failure while listing accounts aborts the run entirely.
func (s *Scheduler) RunSlot(ctx context.Context, slot SlotConfig) (*models.SyncLog, error) {
	accounts, err := s.db.ListAccountsByStatus(models.AccountStatusActive)
	if err != nil {
		metrics.SyncRuns.WithLabelValues("scheduled", "failed").Inc()
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}

	log.Info().
		Str("slot", slot.Name).
		Int("accounts", len(accounts)).
		Msg("starting scheduled sync")

	results := make([]models.SyncResult, 0, len(accounts))
	for _, account := range accounts {
		results = append(results, s.syncOne(ctx, account, slot))
	}

	successful := 0
	for _, result := range results {
		if result.Success {
			successful++
		}
	}

	syncLog := &models.SyncLog{
		Id:                 uuid.NewString(),
		SyncType:           slot.Name,
		ScheduledTime:      slot.ScheduledTime(),
		ExecutedAt:         s.now().UTC(),
		TotalAccounts:      len(accounts),
		SuccessfulAccounts: successful,
		FailedAccounts:     len(accounts) - successful,
		Results:            results,
	}

	if err := s.db.InsertSyncLog(syncLog); err != nil {
		return nil, fmt.Errorf("failed to write sync log: %w", err)
	}

	outcome := "success"
	if successful < len(accounts) {
		outcome = "partial"
	}
	metrics.SyncRuns.WithLabelValues("scheduled", outcome).Inc()
	metrics.LastSlotRun.WithLabelValues(slot.Name).Set(float64(s.now().Unix()))

	log.Info().
		Str("slot", slot.Name).
		Int("successful", successful).
		Int("failed", len(accounts)-successful).
		Msg("scheduled sync finished")
	return syncLog, nil
}

// syncOne handles a single account within a slot run. Panics and errors
// are converted into a failed result for that account only.
func (s *Scheduler) syncOne(ctx context.Context, account *models.Account, slot SlotConfig) (result models.SyncResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("account", account.ProviderAccountId).
				Interface("panic", r).
				Msg("account sync panicked")
			result = models.SyncResult{
				AccountId:     account.ProviderAccountId,
				SkippedScopes: slot.Scopes,
				Error:         fmt.Sprintf("sync panicked: %v", r),
			}
		}
	}()

	// Pre-filter the slot's scopes down to the affordable subset so an
	// exhausted account skips straight to the next one
	affordable := make([]models.Scope, 0, len(slot.Scopes))
	remaining := make(map[models.Scope]int, len(slot.Scopes))
	for _, scope := range slot.Scopes {
		status, err := s.ledger.CanRequest(account.ProviderAccountId, scope)
		if err != nil {
			log.Warn().Err(err).
				Str("account", account.ProviderAccountId).
				Str("scope", scope.String()).
				Msg("quota check failed during slot pre-filter")
		}
		remaining[scope] = status.Remaining
		if status.Allowed {
			affordable = append(affordable, scope)
		}
	}

	if len(affordable) == 0 {
		log.Info().
			Str("account", account.ProviderAccountId).
			Str("slot", slot.Name).
			Msg("skipping account, no available rate limits")
		return models.SyncResult{
			AccountId:       account.ProviderAccountId,
			SkippedScopes:   slot.Scopes,
			RemainingLimits: remaining,
			Error:           SkipReasonNoQuota,
		}
	}

	accountResult, err := s.orchestrator.syncAccountScopes(ctx, account.ProviderAccountId, affordable)
	if err != nil {
		log.Error().Err(err).
			Str("account", account.ProviderAccountId).
			Msg("account sync failed")
		// Only the affordable subset was actually attempted
		return models.SyncResult{
			AccountId:     account.ProviderAccountId,
			SkippedScopes: affordable,
			Error:         err.Error(),
		}
	}
	return *accountResult
}
