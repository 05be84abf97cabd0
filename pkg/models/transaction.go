package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
)

// Transaction represents a financial transaction as stored locally.
// ReferenceId is the provider-assigned transaction id; upserts are keyed
// on it so re-syncing the same payload never duplicates rows.
type Transaction struct {
	ReferenceId string `json:"referenceId"`
	AccountId   string `json:"accountId"`
	Amount      Amount `json:"amount"`
	// BookingDate in YYYY-MM-DD, falls back to the value date
	BookingDate string `json:"bookingDate"`
	ValueDate   string `json:"valueDate"`
	Description string `json:"description"`
	// Status is booked or pending
	Status string `json:"status"`
}

// Amount represents a monetary amount
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

func (a *Amount) ToMoney() *money.Money {
	value := strings.TrimPrefix(a.Value, "+")
	negative := strings.HasPrefix(value, "-")
	value = strings.TrimPrefix(value, "-")

	split := strings.Split(value, ".")
	currency := money.GetCurrency(a.Currency)
	fraction := 2
	if currency != nil {
		fraction = currency.Fraction
	}
	if len(split) == 1 {
		split = append(split, strings.Repeat("0", fraction))
	} else if len(split) == 2 && len(split[1]) < fraction {
		split[1] += strings.Repeat("0", fraction-len(split[1]))
	} else if len(split) == 2 && len(split[1]) >= fraction {
		split[1] = split[1][:fraction]
	}
	intTranslation, err := strconv.ParseInt(strings.Join(split, ""), 10, 64)
	if err != nil {
		panic(fmt.Sprintf("failed to parse amount: original split %v: %v", split, err))
	}
	if negative {
		intTranslation = -intTranslation
	}
	return money.New(intTranslation, a.Currency)
}

// IsZero reports whether the amount carries no value at all.
func (a *Amount) IsZero() bool {
	return a.Value == "" && a.Currency == ""
}
