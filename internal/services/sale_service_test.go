package services

import (
	"testing"

	"retail-backend/internal/ledger"
	"retail-backend/internal/models"
)

func TestResolveTaxRate(t *testing.T) {
	ptr := func(v float64) *float64 { return &v }

	tests := []struct {
		name      string
		requested *float64
		want      float64
	}{
		{"omitted falls back to standard rate", nil, ledger.DefaultTaxRate},
		{"explicit zero stays zero", ptr(0), 0},
		{"reduced rate kept", ptr(8), 8},
		{"standard rate kept", ptr(20), 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveTaxRate(tt.requested); got != tt.want {
				t.Errorf("resolveTaxRate = %v, want %v", got, tt.want)
			}
		})
	}
}

// A tax-exempt sale must flow through the tax split untouched: zero tax,
// unchanged total, regardless of the included flag.
func TestResolveTaxRateZeroThroughSplit(t *testing.T) {
	zero := 0.0
	rate := resolveTaxRate(&zero)

	for _, included := range []bool{true, false} {
		b, err := ledger.SplitTax(1500, rate, included)
		if err != nil {
			t.Fatalf("SplitTax(included=%v): %v", included, err)
		}
		if b.Tax != 0 {
			t.Errorf("included=%v: tax = %v, want 0", included, b.Tax)
		}
		if b.Total != 1500 || b.Subtotal != 1500 {
			t.Errorf("included=%v: breakdown = %+v, want 1500/0/1500", included, b)
		}
	}
}

func TestTableForFreezesRate(t *testing.T) {
	tests := []struct {
		currency models.Currency
		rate     float64
		want     float64
	}{
		{models.CurrencyUSD, 34.75, 34.75},
		{models.CurrencyEUR, 37.60, 37.60},
		{models.CurrencyTRY, 1, 1},
	}

	for _, tt := range tests {
		table := tableFor(tt.currency, tt.rate)
		if got := table.Rate(tt.currency); got != tt.want {
			t.Errorf("tableFor(%s, %v).Rate = %v, want %v", tt.currency, tt.rate, got, tt.want)
		}
	}
}
