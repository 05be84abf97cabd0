package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vnavash/banksync/pkg/models"
)

func TestInsertAndGetSyncLogs(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	syncLog := &models.SyncLog{
		Id:                 "run-1",
		SyncType:           "morning-sync",
		ScheduledTime:      "04:00",
		ExecutedAt:         time.Date(2025, 3, 15, 4, 0, 12, 0, time.UTC),
		TotalAccounts:      2,
		SuccessfulAccounts: 1,
		FailedAccounts:     1,
		Results: []models.SyncResult{
			{
				AccountId:       "acc-1",
				Success:         true,
				SyncedScopes:    []models.Scope{models.ScopeTransactions},
				SkippedScopes:   []models.Scope{},
				RemainingLimits: map[models.Scope]int{models.ScopeTransactions: 3},
			},
			{
				AccountId:     "acc-2",
				SkippedScopes: []models.Scope{models.ScopeTransactions},
				Error:         "no available rate limits",
			},
		},
	}

	err := db.InsertSyncLog(syncLog)
	assert.NoError(t, err)

	logs, err := db.GetRecentSyncLogs(10)
	assert.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Equal(t, "morning-sync", logs[0].SyncType)
	assert.Equal(t, "04:00", logs[0].ScheduledTime)
	assert.Equal(t, 2, logs[0].TotalAccounts)

	// Per-account results survive the round trip
	assert.Len(t, logs[0].Results, 2)
	assert.Equal(t, "acc-1", logs[0].Results[0].AccountId)
	assert.True(t, logs[0].Results[0].Success)
	assert.Equal(t, "no available rate limits", logs[0].Results[1].Error)
}

func TestGetRecentSyncLogsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for i, executedAt := range []time.Time{
		time.Date(2025, 3, 15, 4, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 15, 21, 0, 0, 0, time.UTC),
	} {
		err := db.InsertSyncLog(&models.SyncLog{
			Id:         string(rune('a' + i)),
			SyncType:   "scheduled",
			ExecutedAt: executedAt,
		})
		assert.NoError(t, err)
	}

	logs, err := db.GetRecentSyncLogs(2)
	assert.NoError(t, err)
	assert.Len(t, logs, 2)
	assert.True(t, logs[0].ExecutedAt.After(logs[1].ExecutedAt))
}
