package models

import "time"

const (
	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
)

// Account is one bank account at the provider. Rows are created by the
// onboarding flow; syncs only ever touch the display name, IBAN, status
// and balance.
type Account struct {
	// ProviderAccountId is the provider-assigned account identifier
	ProviderAccountId string `json:"providerAccountId"`
	// DisplayName is the human-readable account name
	DisplayName string `json:"displayName"`
	// IBAN of the account, may be empty for card accounts
	IBAN string `json:"iban"`
	// Currency is the account's nominal currency
	Currency string `json:"currency"`
	// Status is either active or inactive
	Status string `json:"status"`
	// Balance is the last synced balance
	Balance Amount `json:"balance"`
	// BalanceLastUpdated is when the balance was last synced
	BalanceLastUpdated *time.Time `json:"balanceLastUpdated,omitempty"`
}
