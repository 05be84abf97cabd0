package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/vnavash/banksync/db"
	"github.com/vnavash/banksync/pkg/metrics"
	"github.com/vnavash/banksync/pkg/models"
	"github.com/vnavash/banksync/pkg/provider"
	"github.com/vnavash/banksync/pkg/utils"
)

// ScopeOutcome is the result of executing one scope sync for one account
type ScopeOutcome struct {
	Scope models.Scope
	// Err is nil on success. Provider, mapping and storage failures are
	// distinguishable through errors.As.
	Err error
	// RowsWritten is how many transaction rows were upserted; only set
	// for the transactions scope
	RowsWritten int
}

// Success reports whether the scope synced
func (o ScopeOutcome) Success() bool {
	return o.Err == nil
}

// MappingError signals a provider payload we could not translate into the
// local schema. It fails its scope but never sibling scopes.
type MappingError struct {
	Scope  models.Scope
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("failed to map %s payload: %s", e.Scope, e.Reason)
}

// ScopeExecutor calls the provider endpoint for a single scope and merges
// the result into local storage. It never touches the quota ledger; the
// orchestrator charges quota only after a successful provider call.
type ScopeExecutor struct {
	client provider.BankClient
	db     db.DBInterface
	now    func() time.Time
}

// NewScopeExecutor creates an executor over the given provider client and store
func NewScopeExecutor(client provider.BankClient, database db.DBInterface) *ScopeExecutor {
	return &ScopeExecutor{
		client: client,
		db:     database,
		now:    time.Now,
	}
}

// Execute runs one scope sync for one account. Storage is only written on
// success; a failed scope leaves no partial state behind.
func (e *ScopeExecutor) Execute(ctx context.Context, account *models.Account, scope models.Scope) ScopeOutcome {
	var outcome ScopeOutcome
	switch scope {
	case models.ScopeDetails:
		outcome = e.syncDetails(ctx, account)
	case models.ScopeBalances:
		outcome = e.syncBalances(ctx, account)
	case models.ScopeTransactions:
		outcome = e.syncTransactions(ctx, account)
	default:
		outcome = ScopeOutcome{Scope: scope, Err: fmt.Errorf("unknown scope: %q", scope)}
	}

	metrics.ProviderCalls.WithLabelValues(scope.String(), outcomeLabel(outcome.Err)).Inc()
	return outcome
}

func (e *ScopeExecutor) syncDetails(ctx context.Context, account *models.Account) ScopeOutcome {
	details, err := e.client.GetAccountDetails(ctx, account.ProviderAccountId)
	if err != nil {
		return ScopeOutcome{Scope: models.ScopeDetails, Err: err}
	}

	// Prefer the account's own name; owner names tend to arrive all-caps
	displayName := details.Account.Name
	if displayName == "" && details.Account.OwnerName != "" {
		displayName = utils.Capitalize(details.Account.OwnerName)
	}

	// Only write fields the provider actually populated
	if displayName == "" && details.Account.IBAN == "" {
		log.Debug().Str("account", account.ProviderAccountId).Msg("details payload empty, nothing to update")
		return ScopeOutcome{Scope: models.ScopeDetails}
	}

	if err := e.db.UpdateAccountDetails(account.ProviderAccountId, displayName, details.Account.IBAN); err != nil {
		return ScopeOutcome{Scope: models.ScopeDetails, Err: err}
	}

	return ScopeOutcome{Scope: models.ScopeDetails}
}

func (e *ScopeExecutor) syncBalances(ctx context.Context, account *models.Account) ScopeOutcome {
	resp, err := e.client.GetAccountBalances(ctx, account.ProviderAccountId)
	if err != nil {
		return ScopeOutcome{Scope: models.ScopeBalances, Err: err}
	}

	if len(resp.Balances) == 0 {
		return ScopeOutcome{Scope: models.ScopeBalances, Err: &MappingError{
			Scope:  models.ScopeBalances,
			Reason: "provider returned no balance entries",
		}}
	}

	// The "expected" balance includes pending movements; fall back to
	// whatever the institution lists first
	selected, found := lo.Find(resp.Balances, func(b provider.Balance) bool {
		return b.BalanceType == "expected"
	})
	if !found {
		selected = resp.Balances[0]
	}

	balance := models.Amount{
		Value:    selected.BalanceAmount.Amount,
		Currency: selected.BalanceAmount.Currency,
	}
	if err := e.db.UpdateAccountBalance(account.ProviderAccountId, balance, e.now()); err != nil {
		return ScopeOutcome{Scope: models.ScopeBalances, Err: err}
	}

	return ScopeOutcome{Scope: models.ScopeBalances}
}

func (e *ScopeExecutor) syncTransactions(ctx context.Context, account *models.Account) ScopeOutcome {
	resp, err := e.client.GetAccountTransactions(ctx, account.ProviderAccountId)
	if err != nil {
		return ScopeOutcome{Scope: models.ScopeTransactions, Err: err}
	}

	mapped, err := mapTransactions(account.ProviderAccountId, resp)
	if err != nil {
		return ScopeOutcome{Scope: models.ScopeTransactions, Err: err}
	}

	if err := e.db.UpsertTransactions(mapped); err != nil {
		return ScopeOutcome{Scope: models.ScopeTransactions, Err: err}
	}

	return ScopeOutcome{Scope: models.ScopeTransactions, RowsWritten: len(mapped)}
}

// mapTransactions translates booked and pending provider transactions
// into the local schema, deduplicated by provider transaction id
func mapTransactions(accountId string, resp *provider.TransactionsResponse) ([]*models.Transaction, error) {
	type statusTx struct {
		tx     provider.Transaction
		status string
	}

	all := make([]statusTx, 0, len(resp.Transactions.Booked)+len(resp.Transactions.Pending))
	for _, tx := range resp.Transactions.Booked {
		all = append(all, statusTx{tx: tx, status: "booked"})
	}
	for _, tx := range resp.Transactions.Pending {
		all = append(all, statusTx{tx: tx, status: "pending"})
	}

	mapped := make([]*models.Transaction, 0, len(all))
	for _, entry := range all {
		tx := entry.tx
		if tx.ReferenceId() == "" {
			return nil, &MappingError{
				Scope:  models.ScopeTransactions,
				Reason: "transaction without any id",
			}
		}

		bookingDate := tx.BookingDate
		if bookingDate == "" {
			bookingDate = tx.ValueDate
		}

		description := tx.RemittanceInformationUnstructured
		if description == "" {
			description = tx.CreditorName
		}
		if description == "" {
			description = tx.DebtorName
		}

		mapped = append(mapped, &models.Transaction{
			ReferenceId: tx.ReferenceId(),
			AccountId:   accountId,
			Amount: models.Amount{
				Value:    tx.TransactionAmount.Amount,
				Currency: tx.TransactionAmount.Currency,
			},
			BookingDate: bookingDate,
			ValueDate:   tx.ValueDate,
			Description: description,
			Status:      entry.status,
		})
	}

	// Institutions occasionally list the same transaction as both booked
	// and pending; keep the first (booked) occurrence
	return lo.UniqBy(mapped, func(tx *models.Transaction) string {
		return tx.ReferenceId
	}), nil
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case provider.IsRateLimited(err):
		return "rate_limited"
	default:
		return "error"
	}
}
