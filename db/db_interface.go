package db

import (
	"time"

	"github.com/vnavash/banksync/pkg/models"
)

// DBInterface defines the interface for database operations
type DBInterface interface {
	Initialize() error
	Close() error

	UpsertAccount(account *models.Account) error
	GetAccountByProviderId(providerAccountId string) (*models.Account, error)
	ListAccountsByStatus(status string) ([]*models.Account, error)
	UpdateAccountDetails(providerAccountId, displayName, iban string) error
	UpdateAccountBalance(providerAccountId string, balance models.Amount, updatedAt time.Time) error
	SetAccountStatus(providerAccountId, status string) error

	UpsertTransactions(transactions []*models.Transaction) error
	GetTransactionsByAccount(accountId string) ([]*models.Transaction, error)
	GetTransactionByReference(referenceId string) (*models.Transaction, error)
	CountTransactionsByAccount(accountId string) (int, error)

	GetQuotaRecord(accountId string, scope models.Scope, day string) (*models.QuotaRecord, error)
	UpsertQuotaRecord(record *models.QuotaRecord) error

	InsertSyncLog(syncLog *models.SyncLog) error
	GetRecentSyncLogs(limit int) ([]*models.SyncLog, error)
}

// Ensure DB implements DBInterface
var _ DBInterface = (*DB)(nil)

// Ensure MockDB implements DBInterface
var _ DBInterface = (*MockDB)(nil)
