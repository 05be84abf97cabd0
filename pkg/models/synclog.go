package models

import "time"

// SyncResult is the per-account outcome of one orchestration pass.
type SyncResult struct {
	AccountId       string        `json:"accountId"`
	Success         bool          `json:"success"`
	SyncedScopes    []Scope       `json:"syncedScopes"`
	SkippedScopes   []Scope       `json:"skippedScopes"`
	RemainingLimits map[Scope]int `json:"remainingLimits"`
	Error           string        `json:"error,omitempty"`
}

// SyncLog is an append-only audit entry, one per scheduler run or per
// manual multi-scope sync. Retention is an external concern.
type SyncLog struct {
	Id                 string       `json:"id"`
	SyncType           string       `json:"syncType"`
	ScheduledTime      string       `json:"scheduledTime"`
	ExecutedAt         time.Time    `json:"executedAt"`
	TotalAccounts      int          `json:"totalAccounts"`
	SuccessfulAccounts int          `json:"successfulAccounts"`
	FailedAccounts     int          `json:"failedAccounts"`
	Results            []SyncResult `json:"results"`
}
