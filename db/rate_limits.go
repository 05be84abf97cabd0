package db

import (
	"database/sql"
	"fmt"

	"github.com/vnavash/banksync/pkg/models"
)

// GetQuotaRecord retrieves the quota record for one (account, scope, day).
// Returns nil without error when no record exists yet for that day.
func (db *DB) GetQuotaRecord(accountId string, scope models.Scope, day string) (*models.QuotaRecord, error) {
	query := `
	SELECT account_id, scope, day, limit_per_day, remaining_calls, reset_time, updated_at
	FROM rate_limits
	WHERE account_id = ? AND scope = ? AND day = ?
	LIMIT 1
	`

	record := &models.QuotaRecord{}
	err := db.QueryRow(query, accountId, scope, day).Scan(
		&record.AccountId,
		&record.Scope,
		&record.Day,
		&record.LimitPerDay,
		&record.RemainingCalls,
		&record.ResetTime,
		&record.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get quota record: %w", err)
	}

	return record, nil
}

// UpsertQuotaRecord writes a quota record, replacing any existing row for
// the same (account, scope, day) key
func (db *DB) UpsertQuotaRecord(record *models.QuotaRecord) error {
	query := `
	INSERT INTO rate_limits (account_id, scope, day, limit_per_day, remaining_calls, reset_time, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(account_id, scope, day) DO UPDATE SET
		limit_per_day = excluded.limit_per_day,
		remaining_calls = excluded.remaining_calls,
		reset_time = excluded.reset_time,
		updated_at = excluded.updated_at
	`

	_, err := db.Exec(query,
		record.AccountId,
		record.Scope,
		record.Day,
		record.LimitPerDay,
		record.RemainingCalls,
		record.ResetTime.UTC(),
		record.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert quota record: %w", err)
	}

	return nil
}
