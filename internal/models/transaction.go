package models

import "time"

// Currency is a transaction currency. TRY is the home (reporting) currency;
// every balance is stored in TRY.
type Currency string

const (
	CurrencyTRY Currency = "TRY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// TransactionType is the kind of balance-affecting event
type TransactionType string

const (
	TransactionTypeOpening TransactionType = "OPENING" // Opening balance carried in at customer creation
	TransactionTypeSale    TransactionType = "SALE"    // Sale on account, increases balance
	TransactionTypePayment TransactionType = "PAYMENT" // Payment received, decreases balance
	TransactionTypeRefund  TransactionType = "REFUND"  // Goods returned, decreases balance
	TransactionTypeReserve TransactionType = "RESERVE" // Reserve converted to sale, increases balance
)

// Transaction is a single immutable entry in a customer's ledger. Amount is the
// positive magnitude in the transaction currency; FxRateToHome is the conversion
// rate snapshotted when the entry was written and is never recomputed.
// BalanceAfter is the customer's TRY balance immediately after this entry.
type Transaction struct {
	ID              int             `json:"id"`
	CustomerID      int             `json:"customer_id"`
	Type            TransactionType `json:"type"`
	Amount          float64         `json:"amount"`
	Currency        Currency        `json:"currency"`
	FxRateToHome    float64         `json:"fx_rate_to_home"`
	BalanceAfter    float64         `json:"balance_after"`
	ReferenceID     *int            `json:"reference_id"`
	ReferenceType   string          `json:"reference_type"` // 'sale', 'payment', 'sales_return', 'reserve'
	Date            time.Time       `json:"date"`
	Notes           string          `json:"notes"`
	CreatedByUserID int             `json:"created_by_user_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TransactionFilter is used for filtering ledger entries in the audit view
type TransactionFilter struct {
	CustomerID int             `json:"customer_id"`
	Type       TransactionType `json:"type"`
	StartDate  *time.Time      `json:"start_date"`
	EndDate    *time.Time      `json:"end_date"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}
