package models

import "time"

// QuotaRecord tracks provider-call budget for one (account, scope, day).
// A new calendar day gets a new record; old days are never mutated.
type QuotaRecord struct {
	AccountId string `json:"accountId"`
	Scope     Scope  `json:"scope"`
	// Day is the UTC calendar day, formatted YYYY-MM-DD
	Day            string `json:"day"`
	LimitPerDay    int    `json:"limitPerDay"`
	RemainingCalls int    `json:"remainingCalls"`
	// ResetTime is the start of the next UTC calendar day
	ResetTime time.Time `json:"resetTime"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// QuotaStatus is the answer to "can I call the provider now?".
type QuotaStatus struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"resetTime"`
}
