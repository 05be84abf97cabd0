package db

import (
	"fmt"
	"time"

	"github.com/vnavash/banksync/pkg/models"
)

// MockDB is a mock implementation of the DB for testing
type MockDB struct {
	// Mock data storage
	Accounts     map[string]*models.Account
	Transactions map[string]*models.Transaction
	QuotaRecords map[string]*models.QuotaRecord
	SyncLogs     []*models.SyncLog

	// Error values to return
	GetAccountErr        error
	ListAccountsErr      error
	UpdateDetailsErr     error
	UpdateBalanceErr     error
	UpsertTransactionErr error
	GetQuotaRecordErr    error
	UpsertQuotaRecordErr error
	InsertSyncLogErr     error
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		Accounts:     make(map[string]*models.Account),
		Transactions: make(map[string]*models.Transaction),
		QuotaRecords: make(map[string]*models.QuotaRecord),
	}
}

func quotaKey(accountId string, scope models.Scope, day string) string {
	return fmt.Sprintf("%s/%s/%s", accountId, scope, day)
}

// Initialize is a no-op for the mock database
func (m *MockDB) Initialize() error {
	return nil
}

// Close is a no-op for the mock database
func (m *MockDB) Close() error {
	return nil
}

// UpsertAccount stores an account in the mock database
func (m *MockDB) UpsertAccount(account *models.Account) error {
	if account.Status == "" {
		account.Status = models.AccountStatusActive
	}
	m.Accounts[account.ProviderAccountId] = account
	return nil
}

// GetAccountByProviderId returns an account by its provider id
func (m *MockDB) GetAccountByProviderId(providerAccountId string) (*models.Account, error) {
	if m.GetAccountErr != nil {
		return nil, m.GetAccountErr
	}

	account, ok := m.Accounts[providerAccountId]
	if !ok {
		return nil, nil
	}
	return account, nil
}

// ListAccountsByStatus returns all accounts with the given status
func (m *MockDB) ListAccountsByStatus(status string) ([]*models.Account, error) {
	if m.ListAccountsErr != nil {
		return nil, m.ListAccountsErr
	}

	accounts := make([]*models.Account, 0, len(m.Accounts))
	for _, account := range m.Accounts {
		if account.Status == status {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

// UpdateAccountDetails updates name and IBAN, ignoring empty values
func (m *MockDB) UpdateAccountDetails(providerAccountId, displayName, iban string) error {
	if m.UpdateDetailsErr != nil {
		return m.UpdateDetailsErr
	}

	account, ok := m.Accounts[providerAccountId]
	if !ok {
		return fmt.Errorf("no account found with provider id: %s", providerAccountId)
	}
	if displayName != "" {
		account.DisplayName = displayName
	}
	if iban != "" {
		account.IBAN = iban
	}
	return nil
}

// UpdateAccountBalance updates the balance of an account
func (m *MockDB) UpdateAccountBalance(providerAccountId string, balance models.Amount, updatedAt time.Time) error {
	if m.UpdateBalanceErr != nil {
		return m.UpdateBalanceErr
	}

	account, ok := m.Accounts[providerAccountId]
	if !ok {
		return fmt.Errorf("no account found with provider id: %s", providerAccountId)
	}
	account.Balance = balance
	if balance.Currency != "" {
		account.Currency = balance.Currency
	}
	at := updatedAt
	account.BalanceLastUpdated = &at
	return nil
}

// SetAccountStatus updates the status of an account
func (m *MockDB) SetAccountStatus(providerAccountId, status string) error {
	account, ok := m.Accounts[providerAccountId]
	if !ok {
		return fmt.Errorf("no account found with provider id: %s", providerAccountId)
	}
	account.Status = status
	return nil
}

// UpsertTransactions stores a batch of transactions keyed by reference id
func (m *MockDB) UpsertTransactions(transactions []*models.Transaction) error {
	if m.UpsertTransactionErr != nil {
		return m.UpsertTransactionErr
	}

	for _, tx := range transactions {
		m.Transactions[tx.ReferenceId] = tx
	}
	return nil
}

// GetTransactionsByAccount returns all transactions for an account
func (m *MockDB) GetTransactionsByAccount(accountId string) ([]*models.Transaction, error) {
	transactions := make([]*models.Transaction, 0)
	for _, tx := range m.Transactions {
		if tx.AccountId == accountId {
			transactions = append(transactions, tx)
		}
	}
	return transactions, nil
}

// GetTransactionByReference returns a transaction by its reference id
func (m *MockDB) GetTransactionByReference(referenceId string) (*models.Transaction, error) {
	tx, ok := m.Transactions[referenceId]
	if !ok {
		return nil, nil
	}
	return tx, nil
}

// CountTransactionsByAccount returns the number of stored transactions
func (m *MockDB) CountTransactionsByAccount(accountId string) (int, error) {
	count := 0
	for _, tx := range m.Transactions {
		if tx.AccountId == accountId {
			count++
		}
	}
	return count, nil
}

// GetQuotaRecord returns a quota record by its composite key
func (m *MockDB) GetQuotaRecord(accountId string, scope models.Scope, day string) (*models.QuotaRecord, error) {
	if m.GetQuotaRecordErr != nil {
		return nil, m.GetQuotaRecordErr
	}

	record, ok := m.QuotaRecords[quotaKey(accountId, scope, day)]
	if !ok {
		return nil, nil
	}
	return record, nil
}

// UpsertQuotaRecord stores a quota record
func (m *MockDB) UpsertQuotaRecord(record *models.QuotaRecord) error {
	if m.UpsertQuotaRecordErr != nil {
		return m.UpsertQuotaRecordErr
	}

	m.QuotaRecords[quotaKey(record.AccountId, record.Scope, record.Day)] = record
	return nil
}

// InsertSyncLog appends a sync log entry
func (m *MockDB) InsertSyncLog(syncLog *models.SyncLog) error {
	if m.InsertSyncLogErr != nil {
		return m.InsertSyncLogErr
	}

	m.SyncLogs = append(m.SyncLogs, syncLog)
	return nil
}

// GetRecentSyncLogs returns the stored sync logs, newest first
func (m *MockDB) GetRecentSyncLogs(limit int) ([]*models.SyncLog, error) {
	logs := make([]*models.SyncLog, 0, len(m.SyncLogs))
	for i := len(m.SyncLogs) - 1; i >= 0 && len(logs) < limit; i-- {
		logs = append(logs, m.SyncLogs[i])
	}
	return logs, nil
}
