package quota

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vnavash/banksync/db"
	"github.com/vnavash/banksync/pkg/models"
)

func newTestLedger(t *testing.T, start time.Time) (*Ledger, *db.MockDB, *time.Time) {
	t.Helper()

	mockDB := db.NewMockDB()
	current := start
	ledger := NewLedger(mockDB, 4).WithClock(func() time.Time { return current })
	return ledger, mockDB, &current
}

func TestCanRequestLazyInit(t *testing.T) {
	start := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	ledger, mockDB, _ := newTestLedger(t, start)

	status, err := ledger.CanRequest("acc-1", models.ScopeTransactions)
	assert.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, 4, status.Remaining)
	assert.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), status.ResetTime)

	// The fresh record was persisted for the day
	record, err := mockDB.GetQuotaRecord("acc-1", models.ScopeTransactions, "2025-03-15")
	assert.NoError(t, err)
	assert.NotNil(t, record)
	assert.Equal(t, 4, record.RemainingCalls)
}

func TestResetTimeRollsOverMonthEnd(t *testing.T) {
	start := time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC)
	ledger, _, _ := newTestLedger(t, start)

	status, err := ledger.CanRequest("acc-1", models.ScopeBalances)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), status.ResetTime)
}

func TestConsumeDecrementsAndInvalidatesCache(t *testing.T) {
	start := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	ledger, mockDB, _ := newTestLedger(t, start)

	status, err := ledger.CanRequest("acc-1", models.ScopeBalances)
	assert.NoError(t, err)
	assert.Equal(t, 4, status.Remaining)

	err = ledger.Consume("acc-1", models.ScopeBalances, status.Remaining)
	assert.NoError(t, err)

	record, err := mockDB.GetQuotaRecord("acc-1", models.ScopeBalances, "2025-03-15")
	assert.NoError(t, err)
	assert.Equal(t, 3, record.RemainingCalls)

	// The consume must be visible immediately, not one TTL later
	status, err = ledger.CanRequest("acc-1", models.ScopeBalances)
	assert.NoError(t, err)
	assert.Equal(t, 3, status.Remaining)
}

func TestConsumeFloorsAtZero(t *testing.T) {
	start := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	ledger, mockDB, _ := newTestLedger(t, start)

	err := ledger.Consume("acc-1", models.ScopeDetails, 0)
	assert.NoError(t, err)

	record, err := mockDB.GetQuotaRecord("acc-1", models.ScopeDetails, "2025-03-15")
	assert.NoError(t, err)
	assert.Equal(t, 0, record.RemainingCalls)
}

func TestConsumeWithoutPriorRecord(t *testing.T) {
	start := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	ledger, mockDB, _ := newTestLedger(t, start)

	// No CanRequest happened first; consuming from the full limit still works
	err := ledger.Consume("acc-1", models.ScopeTransactions, ledger.LimitPerDay())
	assert.NoError(t, err)

	record, err := mockDB.GetQuotaRecord("acc-1", models.ScopeTransactions, "2025-03-15")
	assert.NoError(t, err)
	assert.Equal(t, 3, record.RemainingCalls)
}

func TestAtMostLimitConsumesPerDay(t *testing.T) {
	start := time.Date(2025, 3, 15, 0, 5, 0, 0, time.UTC)
	ledger, _, _ := newTestLedger(t, start)

	consumed := 0
	for i := 0; i < 10; i++ {
		status, err := ledger.CanRequest("acc-1", models.ScopeTransactions)
		assert.NoError(t, err)
		if !status.Allowed {
			break
		}
		assert.NoError(t, ledger.Consume("acc-1", models.ScopeTransactions, status.Remaining))
		consumed++
	}

	assert.Equal(t, 4, consumed)

	status, err := ledger.CanRequest("acc-1", models.ScopeTransactions)
	assert.NoError(t, err)
	assert.False(t, status.Allowed)
	assert.Equal(t, 0, status.Remaining)
}

func TestDayBoundaryResetsQuota(t *testing.T) {
	start := time.Date(2025, 3, 15, 23, 50, 0, 0, time.UTC)
	ledger, _, current := newTestLedger(t, start)

	// Exhaust the day
	for i := 0; i < 4; i++ {
		status, err := ledger.CanRequest("acc-1", models.ScopeBalances)
		assert.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.NoError(t, ledger.Consume("acc-1", models.ScopeBalances, status.Remaining))
	}

	status, err := ledger.CanRequest("acc-1", models.ScopeBalances)
	assert.NoError(t, err)
	assert.False(t, status.Allowed)

	// Quota refreshes at midnight regardless of when the last call was
	*current = time.Date(2025, 3, 16, 0, 10, 0, 0, time.UTC)

	status, err = ledger.CanRequest("acc-1", models.ScopeBalances)
	assert.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, 4, status.Remaining)
}

func TestFailsClosedOnStorageError(t *testing.T) {
	start := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	ledger, mockDB, _ := newTestLedger(t, start)

	mockDB.GetQuotaRecordErr = errors.New("database unreachable")

	status, err := ledger.CanRequest("acc-1", models.ScopeTransactions)
	assert.Error(t, err)
	assert.False(t, status.Allowed)
	assert.Equal(t, 0, status.Remaining)
}

func TestCacheServesRepeatReadsWithinTTL(t *testing.T) {
	start := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	ledger, mockDB, current := newTestLedger(t, start)

	status, err := ledger.CanRequest("acc-1", models.ScopeDetails)
	assert.NoError(t, err)
	assert.True(t, status.Allowed)

	// Storage goes away; the cached answer still serves within the TTL
	mockDB.GetQuotaRecordErr = errors.New("database unreachable")

	status, err = ledger.CanRequest("acc-1", models.ScopeDetails)
	assert.NoError(t, err)
	assert.True(t, status.Allowed)

	// Past the TTL the ledger goes back to the store and fails closed
	*current = start.Add(10 * time.Minute)

	status, err = ledger.CanRequest("acc-1", models.ScopeDetails)
	assert.Error(t, err)
	assert.False(t, status.Allowed)
}
