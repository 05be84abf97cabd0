package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vnavash/banksync/db"
	"github.com/vnavash/banksync/pkg/metrics"
	"github.com/vnavash/banksync/pkg/models"
	"github.com/vnavash/banksync/pkg/quota"
)

// ErrAccountNotFound is returned when a sync targets an account the
// store has never seen. No quota is consulted or consumed.
var ErrAccountNotFound = errors.New("account not found")

// SyncTypeManual marks sync logs written for direct API/CLI syncs
const SyncTypeManual = "manual-sync"

// Orchestrator syncs one account across a requested scope set, spending
// quota on the most valuable scopes first.
type Orchestrator struct {
	db       db.DBInterface
	ledger   *quota.Ledger
	executor *ScopeExecutor
	now      func() time.Time
}

// NewOrchestrator wires an orchestrator over the given store, ledger and executor
func NewOrchestrator(database db.DBInterface, ledger *quota.Ledger, executor *ScopeExecutor) *Orchestrator {
	return &Orchestrator{
		db:       database,
		ledger:   ledger,
		executor: executor,
		now:      time.Now,
	}
}

// SyncAccount runs a manual sync for one account and appends a sync log
// entry with the single-account result embedded, even on total failure.
func (o *Orchestrator) SyncAccount(ctx context.Context, accountId string, requestedScopes []models.Scope) (*models.SyncResult, error) {
	result, err := o.syncAccountScopes(ctx, accountId, requestedScopes)
	if err != nil {
		return nil, err
	}

	syncLog := &models.SyncLog{
		Id:            uuid.NewString(),
		SyncType:      SyncTypeManual,
		ExecutedAt:    o.now().UTC(),
		TotalAccounts: 1,
		Results:       []models.SyncResult{*result},
	}
	if result.Success {
		syncLog.SuccessfulAccounts = 1
	} else {
		syncLog.FailedAccounts = 1
	}

	if err := o.db.InsertSyncLog(syncLog); err != nil {
		// The sync itself already happened; losing the audit entry is
		// not worth failing the caller over
		log.Error().Err(err).Str("account", accountId).Msg("failed to write sync log")
	}

	metrics.SyncRuns.WithLabelValues("manual", runOutcome(result)).Inc()
	return result, nil
}

// syncAccountScopes is the shared orchestration pass used by manual syncs
// and the fleet scheduler.
func (o *Orchestrator) syncAccountScopes(ctx context.Context, accountId string, requestedScopes []models.Scope) (*models.SyncResult, error) {
	account, err := o.db.GetAccountByProviderId(accountId)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account %s: %w", accountId, err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountId)
	}

	if len(requestedScopes) == 0 {
		requestedScopes = models.AllScopes
	}

	result := &models.SyncResult{
		AccountId:       accountId,
		SyncedScopes:    []models.Scope{},
		SkippedScopes:   []models.Scope{},
		RemainingLimits: make(map[models.Scope]int),
	}

	// One batch of quota checks up front. A scope consumed later in the
	// pass must not invalidate a sibling's already-read remaining count.
	statuses := make(map[models.Scope]models.QuotaStatus, len(requestedScopes))
	for _, scope := range requestedScopes {
		status, err := o.ledger.CanRequest(accountId, scope)
		if err != nil {
			// Ledger fails closed; surface the storage error once
			log.Warn().Err(err).
				Str("account", accountId).
				Str("scope", scope.String()).
				Msg("quota check failed, treating scope as unavailable")
			if result.Error == "" {
				result.Error = err.Error()
			}
		}
		statuses[scope] = status
		result.RemainingLimits[scope] = status.Remaining
	}

	for _, scope := range models.SortByPriority(requestedScopes) {
		status := statuses[scope]
		if !status.Allowed {
			result.SkippedScopes = append(result.SkippedScopes, scope)
			metrics.QuotaDenials.WithLabelValues(scope.String()).Inc()
			continue
		}

		outcome := o.executor.Execute(ctx, account, scope)
		if !outcome.Success() {
			result.SkippedScopes = append(result.SkippedScopes, scope)
			// First error wins; later scope failures don't overwrite it
			if result.Error == "" {
				result.Error = outcome.Err.Error()
			}
			log.Warn().Err(outcome.Err).
				Str("account", accountId).
				Str("scope", scope.String()).
				Msg("scope sync failed")
			continue
		}

		// A successful provider call always costs quota, even when it
		// returned zero rows; zero transactions is data, not failure
		if err := o.ledger.Consume(accountId, scope, status.Remaining); err != nil {
			log.Error().Err(err).
				Str("account", accountId).
				Str("scope", scope.String()).
				Msg("failed to record quota consumption")
		}

		result.SyncedScopes = append(result.SyncedScopes, scope)
		result.RemainingLimits[scope] = status.Remaining - 1
	}

	// Partial success is the normal case under quota pressure
	result.Success = len(result.SyncedScopes) > 0

	log.Info().
		Str("account", accountId).
		Int("synced", len(result.SyncedScopes)).
		Int("skipped", len(result.SkippedScopes)).
		Msg("account sync finished")
	return result, nil
}

func runOutcome(result *models.SyncResult) string {
	switch {
	case result.Success && len(result.SkippedScopes) == 0:
		return "success"
	case result.Success:
		return "partial"
	default:
		return "failed"
	}
}
