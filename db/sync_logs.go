package db

import (
	"encoding/json"
	"fmt"

	"github.com/vnavash/banksync/pkg/models"
)

// InsertSyncLog appends one audit entry. Logs are never updated or
// deleted here; retention is an external concern.
func (db *DB) InsertSyncLog(syncLog *models.SyncLog) error {
	results, err := json.Marshal(syncLog.Results)
	if err != nil {
		return fmt.Errorf("failed to serialize sync results: %w", err)
	}

	query := `
	INSERT INTO sync_logs (id, sync_type, scheduled_time, executed_at,
		total_accounts, successful_accounts, failed_accounts, results)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query,
		syncLog.Id,
		syncLog.SyncType,
		syncLog.ScheduledTime,
		syncLog.ExecutedAt.UTC(),
		syncLog.TotalAccounts,
		syncLog.SuccessfulAccounts,
		syncLog.FailedAccounts,
		string(results),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync log: %w", err)
	}

	return nil
}

// GetRecentSyncLogs retrieves the most recent audit entries, newest first
func (db *DB) GetRecentSyncLogs(limit int) ([]*models.SyncLog, error) {
	query := `
	SELECT id, sync_type, scheduled_time, executed_at,
		total_accounts, successful_accounts, failed_accounts, results
	FROM sync_logs
	ORDER BY executed_at DESC
	LIMIT ?
	`

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.SyncLog
	for rows.Next() {
		syncLog := &models.SyncLog{}
		var results string
		err := rows.Scan(
			&syncLog.Id,
			&syncLog.SyncType,
			&syncLog.ScheduledTime,
			&syncLog.ExecutedAt,
			&syncLog.TotalAccounts,
			&syncLog.SuccessfulAccounts,
			&syncLog.FailedAccounts,
			&results,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		if results != "" {
			if err := json.Unmarshal([]byte(results), &syncLog.Results); err != nil {
				return nil, fmt.Errorf("failed to parse sync results: %w", err)
			}
		}
		logs = append(logs, syncLog)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync logs: %w", err)
	}

	return logs, nil
}
