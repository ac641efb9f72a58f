package ledger

import (
	"errors"
	"math"
	"testing"
	"time"

	"retail-backend/internal/models"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestSplitTax(t *testing.T) {
	tests := []struct {
		name        string
		amount      float64
		rate        float64
		included    bool
		wantSub     float64
		wantTax     float64
		wantTotal   float64
	}{
		{
			name:      "tax included 1200 at 20 percent",
			amount:    1200, rate: 20, included: true,
			wantSub: 1000, wantTax: 200, wantTotal: 1200,
		},
		{
			name:      "tax excluded 1000 at 20 percent",
			amount:    1000, rate: 20, included: false,
			wantSub: 1000, wantTax: 200, wantTotal: 1200,
		},
		{
			name:      "zero rate included",
			amount:    500, rate: 0, included: true,
			wantSub: 500, wantTax: 0, wantTotal: 500,
		},
		{
			name:      "zero rate excluded",
			amount:    500, rate: 0, included: false,
			wantSub: 500, wantTax: 0, wantTotal: 500,
		},
		{
			name:      "zero amount",
			amount:    0, rate: 18, included: true,
			wantSub: 0, wantTax: 0, wantTotal: 0,
		},
		{
			name:      "tax included 118 at 18 percent",
			amount:    118, rate: 18, included: true,
			wantSub: 100, wantTax: 18, wantTotal: 118,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitTax(tt.amount, tt.rate, tt.included)
			if err != nil {
				t.Fatalf("SplitTax() error = %v", err)
			}
			if !almostEqual(got.Subtotal, tt.wantSub) {
				t.Errorf("Subtotal = %v, want %v", got.Subtotal, tt.wantSub)
			}
			if !almostEqual(got.Tax, tt.wantTax) {
				t.Errorf("Tax = %v, want %v", got.Tax, tt.wantTax)
			}
			if !almostEqual(got.Total, tt.wantTotal) {
				t.Errorf("Total = %v, want %v", got.Total, tt.wantTotal)
			}
			// Invariants: subtotal + tax == total, and for inclusive splits
			// subtotal * (1 + r/100) reproduces the total.
			if !almostEqual(got.Subtotal+got.Tax, got.Total) {
				t.Errorf("subtotal+tax = %v, total = %v", got.Subtotal+got.Tax, got.Total)
			}
			if tt.included && !almostEqual(got.Subtotal*(1+tt.rate/100), got.Total) {
				t.Errorf("subtotal*(1+r/100) = %v, total = %v", got.Subtotal*(1+tt.rate/100), got.Total)
			}
		})
	}
}

func TestSplitTaxRejectsNegatives(t *testing.T) {
	if _, err := SplitTax(-1, 20, true); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("negative amount: err = %v, want ErrNegativeAmount", err)
	}
	if _, err := SplitTax(100, -5, false); !errors.Is(err, ErrNegativeRate) {
		t.Errorf("negative rate: err = %v, want ErrNegativeRate", err)
	}
}

func TestToHome(t *testing.T) {
	rates := RateTable{USD: 34.50, EUR: 37.60}

	tests := []struct {
		name     string
		amount   float64
		currency models.Currency
		want     float64
	}{
		{"TRY passes through", 1000, models.CurrencyTRY, 1000},
		{"USD converts", 200, models.CurrencyUSD, 6900},
		{"EUR converts", 100, models.CurrencyEUR, 3760},
		{"zero amount", 0, models.CurrencyUSD, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToHome(tt.amount, tt.currency, rates); !almostEqual(got, tt.want) {
				t.Errorf("ToHome(%v, %s) = %v, want %v", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}

func TestToHomeRoundTrip(t *testing.T) {
	// convert(convert(x, rate), 1/rate) ~= x
	rates := RateTable{USD: 34.50}
	x := 1234.56
	inHome := ToHome(x, models.CurrencyUSD, rates)
	back := ToHome(inHome, models.CurrencyUSD, RateTable{USD: 1 / 34.50})
	if math.Abs(back-x) > 1e-6 {
		t.Errorf("round trip = %v, want %v", back, x)
	}
}

func TestPostSignRule(t *testing.T) {
	tests := []struct {
		name    string
		balance float64
		kind    models.TransactionType
		amount  float64
		want    float64
	}{
		{"sale increases", 1000, models.TransactionTypeSale, 6900, 7900},
		{"reserve conversion increases", 0, models.TransactionTypeReserve, 350, 350},
		{"payment decreases", 7900, models.TransactionTypePayment, 500, 7400},
		{"refund decreases", 500, models.TransactionTypeRefund, 200, 300},
		{"payment can go negative", 100, models.TransactionTypePayment, 300, -200},
		{"opening adds", 0, models.TransactionTypeOpening, 1500, 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Post(tt.balance, tt.kind, tt.amount)
			if err != nil {
				t.Fatalf("Post() error = %v", err)
			}
			if !almostEqual(got, tt.want) {
				t.Errorf("Post(%v, %s, %v) = %v, want %v", tt.balance, tt.kind, tt.amount, got, tt.want)
			}
		})
	}
}

func TestPostRejectsBadInput(t *testing.T) {
	if _, err := Post(0, models.TransactionTypeSale, -1); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("negative amount: err = %v, want ErrNegativeAmount", err)
	}
	if _, err := Post(0, models.TransactionType("BOGUS"), 10); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("unknown kind: err = %v, want ErrUnknownKind", err)
	}
}

func TestReplayReconcilesBalance(t *testing.T) {
	// Scenario from the books: opening 1000 TRY, sale of 200 USD at 34.50
	// (6900 TRY home), payment of 500 TRY.
	now := time.Now()
	entries := []models.Transaction{
		{Type: models.TransactionTypeOpening, Amount: 1000, Currency: models.CurrencyTRY, FxRateToHome: 1, BalanceAfter: 1000, Date: now},
		{Type: models.TransactionTypeSale, Amount: 200, Currency: models.CurrencyUSD, FxRateToHome: 34.50, BalanceAfter: 7900, Date: now.Add(time.Hour)},
		{Type: models.TransactionTypePayment, Amount: 500, Currency: models.CurrencyTRY, FxRateToHome: 1, BalanceAfter: 7400, Date: now.Add(2 * time.Hour)},
	}

	got, err := Replay(1000, entries)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if !almostEqual(got, 7400) {
		t.Errorf("Replay() = %v, want 7400", got)
	}

	// Each intermediate balance_after must also agree with a partial replay.
	for i := range entries {
		partial, err := Replay(1000, entries[:i+1])
		if err != nil {
			t.Fatalf("partial replay error = %v", err)
		}
		if !almostEqual(partial, entries[i].BalanceAfter) {
			t.Errorf("after entry %d: replay = %v, balance_after = %v", i, partial, entries[i].BalanceAfter)
		}
	}
}

func TestReplaySnapshotRateIsFrozen(t *testing.T) {
	// A sale recorded at 34.50 must replay at 34.50 even if today's rate is
	// wildly different; the snapshot travels on the entry itself.
	entries := []models.Transaction{
		{Type: models.TransactionTypeSale, Amount: 200, Currency: models.CurrencyUSD, FxRateToHome: 34.50},
	}
	got, err := Replay(0, entries)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if !almostEqual(got, 6900) {
		t.Errorf("Replay() = %v, want 6900", got)
	}
}

func TestCheckCredit(t *testing.T) {
	limit := func(v float64) *float64 { return &v }

	tests := []struct {
		name        string
		balance     float64
		limit       *float64
		incoming    float64
		wantOverage float64 // 0 means no warning expected
	}{
		{"no limit configured", 10000, nil, 5000, 0},
		{"zero limit means unlimited", 10000, limit(0), 5000, 0},
		{"negative limit means unlimited", 10000, limit(-1), 5000, 0},
		{"within limit", 1000, limit(5000), 3000, 0},
		{"exactly at limit", 1000, limit(5000), 4000, 0},
		{"over limit", 1000, limit(5000), 4500, 500},
		{"already over before sale", 6000, limit(5000), 100, 1100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckCredit(tt.balance, tt.limit, tt.incoming)
			if tt.wantOverage == 0 {
				if got != nil {
					t.Fatalf("CheckCredit() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("CheckCredit() = nil, want overage")
			}
			if !almostEqual(got.Overage, tt.wantOverage) {
				t.Errorf("Overage = %v, want %v", got.Overage, tt.wantOverage)
			}
		})
	}
}

func TestSplitReserve(t *testing.T) {
	// 10 units at 50 TRY/unit, customer takes 7: taken 350, returned 150.
	lines := []ReserveLine{
		{ProductID: 1, QtyReserved: 10, QtyTaken: 7, UnitPrice: 50},
	}
	split, err := SplitReserve(lines)
	if err != nil {
		t.Fatalf("SplitReserve() error = %v", err)
	}
	if !almostEqual(split.TotalTaken, 350) {
		t.Errorf("TotalTaken = %v, want 350", split.TotalTaken)
	}
	if !almostEqual(split.TotalReturned, 150) {
		t.Errorf("TotalReturned = %v, want 150", split.TotalReturned)
	}
	if len(split.Taken) != 1 || split.Taken[0].QtyTaken != 7 {
		t.Errorf("Taken = %+v, want one line with qty 7", split.Taken)
	}
	if len(split.Returned) != 1 || split.Returned[0].QtyReturned != 3 {
		t.Errorf("Returned = %+v, want one line with qty 3", split.Returned)
	}
}

func TestSplitReserveQuantitiesAlwaysAddUp(t *testing.T) {
	lines := []ReserveLine{
		{ProductID: 1, QtyReserved: 10, QtyTaken: 0, UnitPrice: 12.5},
		{ProductID: 2, QtyReserved: 4, QtyTaken: 4, UnitPrice: 99.9},
		{ProductID: 3, QtyReserved: 6, QtyTaken: 2, UnitPrice: 7},
	}
	split, err := SplitReserve(lines)
	if err != nil {
		t.Fatalf("SplitReserve() error = %v", err)
	}

	takenQty := map[int]int{}
	for _, l := range split.Taken {
		takenQty[l.ProductID] = l.QtyTaken
	}
	returnedQty := map[int]int{}
	for _, l := range split.Returned {
		returnedQty[l.ProductID] = l.QtyReturned
	}
	for _, l := range lines {
		if takenQty[l.ProductID]+returnedQty[l.ProductID] != l.QtyReserved {
			t.Errorf("product %d: taken %d + returned %d != reserved %d",
				l.ProductID, takenQty[l.ProductID], returnedQty[l.ProductID], l.QtyReserved)
		}
	}
}

func TestSplitReserveRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		line ReserveLine
	}{
		{"taken above reserved", ReserveLine{ProductID: 1, QtyReserved: 5, QtyTaken: 6, UnitPrice: 10}},
		{"negative taken", ReserveLine{ProductID: 1, QtyReserved: 5, QtyTaken: -1, UnitPrice: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SplitReserve([]ReserveLine{tt.line}); !errors.Is(err, ErrQtyOutOfRange) {
				t.Errorf("err = %v, want ErrQtyOutOfRange", err)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.1 + 0.2, 0.3},
		{1000.004, 1000.00},
		{1000.006, 1000.01},
		{-5.126, -5.13},
		{0, 0},
		{199.999, 200.00},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); math.Abs(got-tt.want) > tolerance {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
