package models

import (
	"testing"
)

func TestAmountToMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   Amount
		expected int64
	}{
		{"negative with cents", Amount{Value: "-42.50", Currency: "EUR"}, -4250},
		{"positive with plus sign", Amount{Value: "+10.00", Currency: "EUR"}, 1000},
		{"no fraction", Amount{Value: "7", Currency: "EUR"}, 700},
		{"short fraction", Amount{Value: "3.5", Currency: "EUR"}, 350},
		{"overlong fraction truncated", Amount{Value: "1.999", Currency: "EUR"}, 199},
		{"zero", Amount{Value: "0.00", Currency: "EUR"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.amount.ToMoney()
			if m.Amount() != tt.expected {
				t.Errorf("ToMoney() = %d, want %d", m.Amount(), tt.expected)
			}
			if m.Currency().Code != "EUR" {
				t.Errorf("currency = %q, want EUR", m.Currency().Code)
			}
		})
	}
}

func TestAmountIsZero(t *testing.T) {
	empty := Amount{}
	if !empty.IsZero() {
		t.Error("empty amount should be zero")
	}

	zeroValue := Amount{Value: "0.00", Currency: "EUR"}
	if zeroValue.IsZero() {
		t.Error("an explicit 0.00 amount is still a value")
	}
}
