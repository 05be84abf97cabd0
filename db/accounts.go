package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vnavash/banksync/pkg/models"
)

// UpsertAccount inserts an account or refreshes its metadata. Used by the
// onboarding flow; syncs go through the narrower update methods below.
func (db *DB) UpsertAccount(account *models.Account) error {
	query := `
	INSERT INTO accounts (provider_account_id, display_name, iban, currency, status, balance_value, balance_currency)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(provider_account_id) DO UPDATE SET
		display_name = excluded.display_name,
		iban = excluded.iban,
		currency = excluded.currency,
		status = excluded.status
	`

	status := account.Status
	if status == "" {
		status = models.AccountStatusActive
	}

	_, err := db.Exec(query,
		account.ProviderAccountId,
		account.DisplayName,
		account.IBAN,
		account.Currency,
		status,
		account.Balance.Value,
		account.Balance.Currency,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}

	return nil
}

// GetAccountByProviderId retrieves an account by the provider-assigned id.
// Returns nil without error when the account does not exist.
func (db *DB) GetAccountByProviderId(providerAccountId string) (*models.Account, error) {
	query := `
	SELECT provider_account_id, display_name, iban, currency, status,
		COALESCE(balance_value, ''), COALESCE(balance_currency, ''), balance_updated_at
	FROM accounts
	WHERE provider_account_id = ?
	LIMIT 1
	`

	account := &models.Account{}
	err := db.QueryRow(query, providerAccountId).Scan(
		&account.ProviderAccountId,
		&account.DisplayName,
		&account.IBAN,
		&account.Currency,
		&account.Status,
		&account.Balance.Value,
		&account.Balance.Currency,
		&account.BalanceLastUpdated,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// ListAccountsByStatus retrieves all accounts with the given status
func (db *DB) ListAccountsByStatus(status string) ([]*models.Account, error) {
	query := `
	SELECT provider_account_id, display_name, iban, currency, status,
		COALESCE(balance_value, ''), COALESCE(balance_currency, ''), balance_updated_at
	FROM accounts
	WHERE status = ?
	ORDER BY provider_account_id
	`

	rows, err := db.Query(query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account := &models.Account{}
		err := rows.Scan(
			&account.ProviderAccountId,
			&account.DisplayName,
			&account.IBAN,
			&account.Currency,
			&account.Status,
			&account.Balance.Value,
			&account.Balance.Currency,
			&account.BalanceLastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// UpdateAccountDetails updates the display name and IBAN of an account.
// Empty values leave the stored column untouched so a sparse provider
// payload never wipes data we already have.
func (db *DB) UpdateAccountDetails(providerAccountId, displayName, iban string) error {
	query := `
	UPDATE accounts
	SET display_name = CASE WHEN ? != '' THEN ? ELSE display_name END,
		iban = CASE WHEN ? != '' THEN ? ELSE iban END
	WHERE provider_account_id = ?
	`

	result, err := db.Exec(query, displayName, displayName, iban, iban, providerAccountId)
	if err != nil {
		return fmt.Errorf("failed to update account details: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("no account found with provider id: %s", providerAccountId)
	}

	return nil
}

// UpdateAccountBalance sets the current balance and its update timestamp
func (db *DB) UpdateAccountBalance(providerAccountId string, balance models.Amount, updatedAt time.Time) error {
	query := `
	UPDATE accounts
	SET balance_value = ?,
		balance_currency = ?,
		currency = CASE WHEN ? != '' THEN ? ELSE currency END,
		balance_updated_at = ?
	WHERE provider_account_id = ?
	`

	result, err := db.Exec(query,
		balance.Value,
		balance.Currency,
		balance.Currency,
		balance.Currency,
		updatedAt.UTC(),
		providerAccountId,
	)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("no account found with provider id: %s", providerAccountId)
	}

	return nil
}

// SetAccountStatus flips an account between active and inactive
func (db *DB) SetAccountStatus(providerAccountId, status string) error {
	result, err := db.Exec(`UPDATE accounts SET status = ? WHERE provider_account_id = ?`,
		status, providerAccountId)
	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("no account found with provider id: %s", providerAccountId)
	}

	return nil
}
