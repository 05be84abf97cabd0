package cli

import (
	"testing"

	"github.com/Rhymond/go-money"

	"github.com/vnavash/banksync/pkg/models"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   models.Amount
		expected string
	}{
		{"euro balance", models.Amount{Value: "1234.56", Currency: "EUR"}, money.New(123456, "EUR").Display()},
		{"negative balance", models.Amount{Value: "-42.50", Currency: "EUR"}, money.New(-4250, "EUR").Display()},
		{"pound balance", models.Amount{Value: "10.00", Currency: "GBP"}, money.New(1000, "GBP").Display()},
		{"never synced", models.Amount{}, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAmount(tt.amount); got != tt.expected {
				t.Errorf("formatAmount(%+v) = %q, want %q", tt.amount, got, tt.expected)
			}
		})
	}
}
