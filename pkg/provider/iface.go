package provider

import "context"

// BankClient defines the interface for bank-data provider operations.
// Authentication and token lifecycle stay inside the implementation.
type BankClient interface {
	GetAccountDetails(ctx context.Context, accountId string) (*AccountDetails, error)
	GetAccountBalances(ctx context.Context, accountId string) (*BalancesResponse, error)
	GetAccountTransactions(ctx context.Context, accountId string) (*TransactionsResponse, error)
}

// Ensure GoCardlessClient implements BankClient
var _ BankClient = (*GoCardlessClient)(nil)

// Ensure MockBankClient implements BankClient
var _ BankClient = (*MockBankClient)(nil)
