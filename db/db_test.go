package db

import (
	"os"
	"testing"
	"time"

	"github.com/vnavash/banksync/pkg/models"
)

// setupTestDB creates an initialized database backed by a temp file
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tempFile, err := os.CreateTemp("", "test-db-*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tempFile.Close()
	t.Cleanup(func() { os.Remove(tempFile.Name()) })

	db, err := New(tempFile.Name())
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	return db
}

func TestNew(t *testing.T) {
	// Create a temporary database file
	tempFile, err := os.CreateTemp("", "test-db-*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tempFile.Close()
	defer os.Remove(tempFile.Name())

	// Test creating a new database
	db, err := New(tempFile.Name())
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	// Verify the database connection works
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}
}

func TestInitialize(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	// Verify all tables were created
	for _, table := range []string{"accounts", "transactions", "rate_limits", "sync_logs"} {
		var tableName string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&tableName)
		if err != nil {
			t.Fatalf("Failed to query for %s table: %v", table, err)
		}
		if tableName != table {
			t.Fatalf("Expected table name '%s', got '%s'", table, tableName)
		}
	}
}

func TestUpsertAndGetAccount(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	account := &models.Account{
		ProviderAccountId: "acc-123",
		DisplayName:       "Checking",
		IBAN:              "DE89370400440532013000",
		Currency:          "EUR",
		Status:            models.AccountStatusActive,
	}

	if err := db.UpsertAccount(account); err != nil {
		t.Fatalf("Failed to upsert account: %v", err)
	}

	retrieved, err := db.GetAccountByProviderId("acc-123")
	if err != nil {
		t.Fatalf("Failed to get account: %v", err)
	}
	if retrieved == nil {
		t.Fatalf("Expected account, got nil")
	}
	if retrieved.DisplayName != "Checking" {
		t.Errorf("Expected display name 'Checking', got '%s'", retrieved.DisplayName)
	}
	if retrieved.IBAN != account.IBAN {
		t.Errorf("Expected IBAN '%s', got '%s'", account.IBAN, retrieved.IBAN)
	}
	if retrieved.Status != models.AccountStatusActive {
		t.Errorf("Expected status 'active', got '%s'", retrieved.Status)
	}
}

func TestGetAccountMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	account, err := db.GetAccountByProviderId("does-not-exist")
	if err != nil {
		t.Fatalf("Expected no error for missing account, got: %v", err)
	}
	if account != nil {
		t.Errorf("Expected nil for missing account, got %+v", account)
	}
}

func TestListAccountsByStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for _, account := range []*models.Account{
		{ProviderAccountId: "acc-1", Status: models.AccountStatusActive},
		{ProviderAccountId: "acc-2", Status: models.AccountStatusActive},
		{ProviderAccountId: "acc-3", Status: models.AccountStatusInactive},
	} {
		if err := db.UpsertAccount(account); err != nil {
			t.Fatalf("Failed to upsert account: %v", err)
		}
	}

	active, err := db.ListAccountsByStatus(models.AccountStatusActive)
	if err != nil {
		t.Fatalf("Failed to list active accounts: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("Expected 2 active accounts, got %d", len(active))
	}

	inactive, err := db.ListAccountsByStatus(models.AccountStatusInactive)
	if err != nil {
		t.Fatalf("Failed to list inactive accounts: %v", err)
	}
	if len(inactive) != 1 {
		t.Errorf("Expected 1 inactive account, got %d", len(inactive))
	}
}

func TestUpdateAccountDetailsKeepsExistingOnEmpty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	account := &models.Account{
		ProviderAccountId: "acc-123",
		DisplayName:       "Original Name",
		IBAN:              "DE89370400440532013000",
	}
	if err := db.UpsertAccount(account); err != nil {
		t.Fatalf("Failed to upsert account: %v", err)
	}

	// Empty display name must not wipe the stored one
	if err := db.UpdateAccountDetails("acc-123", "", "NL91ABNA0417164300"); err != nil {
		t.Fatalf("Failed to update account details: %v", err)
	}

	retrieved, err := db.GetAccountByProviderId("acc-123")
	if err != nil {
		t.Fatalf("Failed to get account: %v", err)
	}
	if retrieved.DisplayName != "Original Name" {
		t.Errorf("Expected display name to stay 'Original Name', got '%s'", retrieved.DisplayName)
	}
	if retrieved.IBAN != "NL91ABNA0417164300" {
		t.Errorf("Expected updated IBAN, got '%s'", retrieved.IBAN)
	}
}

func TestUpdateAccountDetailsMissingAccount(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := db.UpdateAccountDetails("nope", "Name", "")
	if err == nil {
		t.Errorf("Expected error for missing account, got nil")
	}
}

func TestUpdateAccountBalance(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	account := &models.Account{ProviderAccountId: "acc-123", Currency: "EUR"}
	if err := db.UpsertAccount(account); err != nil {
		t.Fatalf("Failed to upsert account: %v", err)
	}

	updatedAt := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	balance := models.Amount{Value: "1250.75", Currency: "EUR"}
	if err := db.UpdateAccountBalance("acc-123", balance, updatedAt); err != nil {
		t.Fatalf("Failed to update balance: %v", err)
	}

	retrieved, err := db.GetAccountByProviderId("acc-123")
	if err != nil {
		t.Fatalf("Failed to get account: %v", err)
	}
	if retrieved.Balance.Value != "1250.75" {
		t.Errorf("Expected balance '1250.75', got '%s'", retrieved.Balance.Value)
	}
	if retrieved.BalanceLastUpdated == nil {
		t.Fatalf("Expected balance update timestamp to be set")
	}
	if !retrieved.BalanceLastUpdated.Equal(updatedAt) {
		t.Errorf("Expected balance updated at %v, got %v", updatedAt, retrieved.BalanceLastUpdated)
	}
}

func TestSetAccountStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	account := &models.Account{ProviderAccountId: "acc-123"}
	if err := db.UpsertAccount(account); err != nil {
		t.Fatalf("Failed to upsert account: %v", err)
	}

	if err := db.SetAccountStatus("acc-123", models.AccountStatusInactive); err != nil {
		t.Fatalf("Failed to set status: %v", err)
	}

	retrieved, err := db.GetAccountByProviderId("acc-123")
	if err != nil {
		t.Fatalf("Failed to get account: %v", err)
	}
	if retrieved.Status != models.AccountStatusInactive {
		t.Errorf("Expected status 'inactive', got '%s'", retrieved.Status)
	}
}
