// Package ledger holds the balance, tax and currency arithmetic shared by
// every posting flow (sales, payments, returns, reserve conversions). All
// functions are pure; persistence and locking live in the services layer.
// Keeping the arithmetic in one place is deliberate: the sign convention and
// rounding rules must not drift between call sites.
package ledger

import (
	"errors"
	"fmt"
	"math"

	"retail-backend/internal/models"
)

var (
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrNegativeRate   = errors.New("tax rate must not be negative")
	ErrUnknownKind    = errors.New("unknown transaction type")
	ErrQtyOutOfRange  = errors.New("taken quantity out of range")
)

// DefaultTaxRate is applied when a flow has no explicit rate, e.g. the sale
// created by a reserve conversion.
const DefaultTaxRate = 20.0

// Round2 rounds to 2 decimal places. Applied once, at the persistence
// boundary, so rounding error does not compound across line items.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TaxBreakdown is the three numbers every downstream step needs from a raw
// line total: the tax-exclusive subtotal, the tax amount, and the grand total.
type TaxBreakdown struct {
	Subtotal float64
	Tax      float64
	Total    float64
}

// SplitTax splits an amount into subtotal, tax and total for a given rate.
// When taxIncluded is true the amount already contains tax and the total is
// unchanged; otherwise tax is added on top. Values are not rounded here.
func SplitTax(amount, ratePct float64, taxIncluded bool) (TaxBreakdown, error) {
	if amount < 0 {
		return TaxBreakdown{}, ErrNegativeAmount
	}
	if ratePct < 0 {
		return TaxBreakdown{}, ErrNegativeRate
	}

	if taxIncluded {
		subtotal := amount / (1 + ratePct/100)
		return TaxBreakdown{
			Subtotal: subtotal,
			Tax:      amount - subtotal,
			Total:    amount,
		}, nil
	}

	tax := amount * ratePct / 100
	return TaxBreakdown{
		Subtotal: amount,
		Tax:      tax,
		Total:    amount + tax,
	}, nil
}

// RateTable holds TRY selling rates per foreign currency unit. TRY itself is
// implicitly 1.0.
type RateTable struct {
	USD float64
	EUR float64
}

// Rate returns the TRY conversion rate for a currency.
func (t RateTable) Rate(c models.Currency) float64 {
	switch c {
	case models.CurrencyUSD:
		return t.USD
	case models.CurrencyEUR:
		return t.EUR
	default:
		return 1.0
	}
}

// ToHome converts an amount in the given currency to TRY using the table.
// The caller snapshots the rate on the transaction row; historical entries are
// never re-converted with a later rate.
func ToHome(amount float64, c models.Currency, t RateTable) float64 {
	return amount * t.Rate(c)
}

// Sign returns +1 for entry kinds that increase the customer's debt and -1
// for kinds that clear it.
func Sign(kind models.TransactionType) (float64, error) {
	switch kind {
	case models.TransactionTypeSale, models.TransactionTypeReserve, models.TransactionTypeOpening:
		return 1, nil
	case models.TransactionTypePayment, models.TransactionTypeRefund:
		return -1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Post computes the balance after applying an event to the current balance.
// amountInHome must already be converted to TRY and be a positive magnitude.
func Post(currentBalance float64, kind models.TransactionType, amountInHome float64) (float64, error) {
	if amountInHome < 0 {
		return 0, ErrNegativeAmount
	}
	sign, err := Sign(kind)
	if err != nil {
		return 0, err
	}
	return currentBalance + sign*amountInHome, nil
}

// Replay re-derives a balance by applying entries in chronological order to
// the opening balance. Each entry converts with its own snapshotted rate, so
// later rate changes never alter the replayed history. Opening entries inside
// the slice are skipped since their amount is already the starting point.
func Replay(openingBalance float64, entries []models.Transaction) (float64, error) {
	balance := openingBalance
	for _, e := range entries {
		if e.Type == models.TransactionTypeOpening {
			continue
		}
		next, err := Post(balance, e.Type, e.Amount*e.FxRateToHome)
		if err != nil {
			return 0, err
		}
		balance = next
	}
	return balance, nil
}

// CreditOverage describes a projected credit-limit breach. It is advisory:
// callers surface it as a warning and proceed.
type CreditOverage struct {
	Limit            float64
	ProjectedBalance float64
	Overage          float64
}

// CheckCredit estimates whether posting incomingInHome on top of the current
// balance would exceed the customer's limit. A nil or non-positive limit means
// no limit is configured and nil is returned.
func CheckCredit(currentBalance float64, creditLimit *float64, incomingInHome float64) *CreditOverage {
	if creditLimit == nil || *creditLimit <= 0 {
		return nil
	}
	projected := currentBalance + incomingInHome
	if projected <= *creditLimit {
		return nil
	}
	return &CreditOverage{
		Limit:            *creditLimit,
		ProjectedBalance: projected,
		Overage:          projected - *creditLimit,
	}
}

// ReserveLine is one reserved line with the quantity the customer actually
// took at conversion time. QtyReturned is always derived, never supplied.
type ReserveLine struct {
	ProductID   int
	QtyReserved int
	QtyTaken    int
	QtyReturned int
	UnitPrice   float64
}

// ReserveSplit is the outcome of splitting a reserve into taken and returned
// subsets. Only the taken side has a balance effect; the returned side is
// informational because reserves never decremented stock.
type ReserveSplit struct {
	Taken         []ReserveLine
	Returned      []ReserveLine
	TotalTaken    float64
	TotalReturned float64
}

// SplitReserve validates 0 <= taken <= reserved per line and totals the taken
// and returned value.
func SplitReserve(lines []ReserveLine) (ReserveSplit, error) {
	var split ReserveSplit
	for _, l := range lines {
		if l.QtyTaken < 0 || l.QtyTaken > l.QtyReserved {
			return ReserveSplit{}, fmt.Errorf("%w: product %d taken %d of %d",
				ErrQtyOutOfRange, l.ProductID, l.QtyTaken, l.QtyReserved)
		}
		l.QtyReturned = l.QtyReserved - l.QtyTaken
		if l.QtyTaken > 0 {
			split.Taken = append(split.Taken, l)
			split.TotalTaken += float64(l.QtyTaken) * l.UnitPrice
		}
		if l.QtyReturned > 0 {
			split.Returned = append(split.Returned, l)
			split.TotalReturned += float64(l.QtyReturned) * l.UnitPrice
		}
	}
	return split, nil
}
