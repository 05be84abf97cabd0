package provider

import "context"

// MockBankClient is a mock implementation of BankClient for testing
type MockBankClient struct {
	// Mock data to return
	Details      *AccountDetails
	Balances     *BalancesResponse
	Transactions *TransactionsResponse

	// Error values to return
	DetailsErr      error
	BalancesErr     error
	TransactionsErr error

	// Call counts per endpoint
	DetailsCalls      int
	BalancesCalls     int
	TransactionsCalls int
}

// NewMockBankClient creates a new mock bank client
func NewMockBankClient() *MockBankClient {
	return &MockBankClient{
		Details:      &AccountDetails{},
		Balances:     &BalancesResponse{},
		Transactions: &TransactionsResponse{},
	}
}

// GetAccountDetails returns the mock details
func (m *MockBankClient) GetAccountDetails(ctx context.Context, accountId string) (*AccountDetails, error) {
	m.DetailsCalls++
	if m.DetailsErr != nil {
		return nil, m.DetailsErr
	}
	return m.Details, nil
}

// GetAccountBalances returns the mock balances
func (m *MockBankClient) GetAccountBalances(ctx context.Context, accountId string) (*BalancesResponse, error) {
	m.BalancesCalls++
	if m.BalancesErr != nil {
		return nil, m.BalancesErr
	}
	return m.Balances, nil
}

// GetAccountTransactions returns the mock transactions
func (m *MockBankClient) GetAccountTransactions(ctx context.Context, accountId string) (*TransactionsResponse, error) {
	m.TransactionsCalls++
	if m.TransactionsErr != nil {
		return nil, m.TransactionsErr
	}
	return m.Transactions, nil
}
