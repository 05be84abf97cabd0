package db

import (
	"database/sql"
	"fmt"

	"github.com/vnavash/banksync/pkg/models"
)

// UpsertTransactions writes a batch of mapped provider transactions in a
// single database transaction. Conflicts on the provider reference id
// update in place, so re-running a sync after a partial failure is safe.
func (db *DB) UpsertTransactions(transactions []*models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	sqlTx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	query := `
	INSERT INTO transactions (reference_id, account_id, amount_value, amount_currency,
		booking_date, value_date, description, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(reference_id) DO UPDATE SET
		amount_value = excluded.amount_value,
		amount_currency = excluded.amount_currency,
		booking_date = excluded.booking_date,
		value_date = excluded.value_date,
		description = excluded.description,
		status = excluded.status
	`

	stmt, err := sqlTx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range transactions {
		_, err := stmt.Exec(
			tx.ReferenceId,
			tx.AccountId,
			tx.Amount.Value,
			tx.Amount.Currency,
			tx.BookingDate,
			tx.ValueDate,
			tx.Description,
			tx.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert transaction %s: %w", tx.ReferenceId, err)
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}

	return nil
}

// GetTransactionsByAccount retrieves all stored transactions for an account,
// newest booking date first
func (db *DB) GetTransactionsByAccount(accountId string) ([]*models.Transaction, error) {
	query := `
	SELECT reference_id, account_id, amount_value, amount_currency,
		booking_date, value_date, description, status
	FROM transactions
	WHERE account_id = ?
	ORDER BY booking_date DESC
	`

	rows, err := db.Query(query, accountId)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		tx := &models.Transaction{}
		err := rows.Scan(
			&tx.ReferenceId,
			&tx.AccountId,
			&tx.Amount.Value,
			&tx.Amount.Currency,
			&tx.BookingDate,
			&tx.ValueDate,
			&tx.Description,
			&tx.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// GetTransactionByReference retrieves a transaction by its provider reference id
func (db *DB) GetTransactionByReference(referenceId string) (*models.Transaction, error) {
	query := `
	SELECT reference_id, account_id, amount_value, amount_currency,
		booking_date, value_date, description, status
	FROM transactions
	WHERE reference_id = ?
	LIMIT 1
	`

	tx := &models.Transaction{}
	err := db.QueryRow(query, referenceId).Scan(
		&tx.ReferenceId,
		&tx.AccountId,
		&tx.Amount.Value,
		&tx.Amount.Currency,
		&tx.BookingDate,
		&tx.ValueDate,
		&tx.Description,
		&tx.Status,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// CountTransactionsByAccount returns the number of stored rows for an account
func (db *DB) CountTransactionsByAccount(accountId string) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE account_id = ?`, accountId).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
