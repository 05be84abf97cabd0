package provider

// Payload types for the bank-data API. Field names follow the provider's
// JSON; only the fields the sync core consumes are mapped.

// AccountDetails is the response of the account details endpoint
type AccountDetails struct {
	Account struct {
		ResourceId string `json:"resourceId"`
		IBAN       string `json:"iban"`
		Currency   string `json:"currency"`
		Name       string `json:"name"`
		OwnerName  string `json:"ownerName"`
		Product    string `json:"product"`
	} `json:"account"`
}

// BalanceAmount is a monetary value as the provider encodes it
type BalanceAmount struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// Balance is one entry of the balances endpoint response
type Balance struct {
	BalanceAmount BalanceAmount `json:"balanceAmount"`
	BalanceType   string        `json:"balanceType"`
	ReferenceDate string        `json:"referenceDate"`
}

// BalancesResponse wraps the balance list
type BalancesResponse struct {
	Balances []Balance `json:"balances"`
}

// Transaction is one provider-side transaction, booked or pending
type Transaction struct {
	TransactionId                     string        `json:"transactionId"`
	InternalTransactionId             string        `json:"internalTransactionId"`
	BookingDate                       string        `json:"bookingDate"`
	ValueDate                         string        `json:"valueDate"`
	TransactionAmount                 BalanceAmount `json:"transactionAmount"`
	RemittanceInformationUnstructured string        `json:"remittanceInformationUnstructured"`
	CreditorName                      string        `json:"creditorName"`
	DebtorName                        string        `json:"debtorName"`
}

// TransactionsResponse wraps the booked and pending transaction lists
type TransactionsResponse struct {
	Transactions struct {
		Booked  []Transaction `json:"booked"`
		Pending []Transaction `json:"pending"`
	} `json:"transactions"`
}

// ReferenceId returns the id that keys local storage for this transaction.
// Some institutions only populate the internal id.
func (t *Transaction) ReferenceId() string {
	if t.TransactionId != "" {
		return t.TransactionId
	}
	return t.InternalTransactionId
}
