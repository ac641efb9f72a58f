package models

import "time"

// PaymentType is the settlement method used for a sale or payment
type PaymentType string

const (
	PaymentTypeCash     PaymentType = "NAKIT"
	PaymentTypeCard     PaymentType = "KREDI_KARTI"
	PaymentTypeTransfer PaymentType = "HAVALE"
	PaymentTypeOther    PaymentType = "DIGER"
)

// PaymentStatus tracks how much of a sale has been settled
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusPartial  PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusOverdue  PaymentStatus = "OVERDUE"
)

// Sale is a completed sale document. Subtotal, Tax and TotalAmount are in the
// sale's currency; FxRate is the TRY conversion rate snapshotted at creation.
type Sale struct {
	ID            int           `json:"id"`
	SaleNo        string        `json:"sale_no"`
	CustomerID    *int          `json:"customer_id"`
	SaleDate      time.Time     `json:"sale_date"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	TotalAmount   float64       `json:"total_amount"`
	TaxIncluded   bool          `json:"tax_included"`
	TaxRate       float64       `json:"tax_rate"`
	PaymentType   PaymentType   `json:"payment_type"`
	Currency      Currency      `json:"currency"`
	FxRate        float64       `json:"fx_rate"`
	IsFromReserve bool          `json:"is_from_reserve"`
	ReserveID     *int          `json:"reserve_id"`
	DueDate       *time.Time    `json:"due_date"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Notes         string        `json:"notes"`
	CreatedAt     time.Time     `json:"created_at"`
	Items         []SaleItem    `json:"items,omitempty"`
}

// SaleItem is one line of a sale
type SaleItem struct {
	ID        int     `json:"id"`
	SaleID    int     `json:"sale_id"`
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// CreateSaleItemRequest is one requested line of a new sale
type CreateSaleItemRequest struct {
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// CreateSaleRequest represents the request body for creating a sale.
// TaxRate is a pointer so a tax-exempt sale (explicit 0) is distinguishable
// from an omitted rate, which falls back to the standard one.
type CreateSaleRequest struct {
	CustomerID  *int                    `json:"customer_id"`
	Items       []CreateSaleItemRequest `json:"items"`
	TaxIncluded bool                    `json:"tax_included"`
	TaxRate     *float64                `json:"tax_rate"`
	PaymentType PaymentType             `json:"payment_type"`
	Currency    Currency                `json:"currency"`
	DueDate     *time.Time              `json:"due_date"`
	Notes       string                  `json:"notes"`
}

// SaleResult is returned after a sale posting; the credit warning, when
// present, is advisory and never blocks the sale.
type SaleResult struct {
	Sale          *Sale   `json:"sale"`
	NewBalance    float64 `json:"new_balance,omitempty"`
	CreditWarning string  `json:"credit_warning,omitempty"`
}

// Payment is money received from a customer
type Payment struct {
	ID          int         `json:"id"`
	CustomerID  int         `json:"customer_id"`
	Amount      float64     `json:"amount"`
	Currency    Currency    `json:"currency"`
	PaymentType PaymentType `json:"payment_type"`
	PaymentDate time.Time   `json:"payment_date"`
	Notes       string      `json:"notes"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CreatePaymentRequest represents the request body for recording a payment
type CreatePaymentRequest struct {
	CustomerID  int         `json:"customer_id"`
	Amount      float64     `json:"amount"`
	Currency    Currency    `json:"currency"`
	PaymentType PaymentType `json:"payment_type"`
	Notes       string      `json:"notes"`
}

// SalesReturn records goods coming back from a completed sale. Rows flagged
// IsReserveRelease document quantities a reserve conversion released without
// selling; they carry no refund and do not count against the over-return guard.
type SalesReturn struct {
	ID               int       `json:"id"`
	SaleID           int       `json:"sale_id"`
	ProductID        int       `json:"product_id"`
	Quantity         int       `json:"quantity"`
	RefundAmount     float64   `json:"refund_amount"`
	IsReserveRelease bool      `json:"is_reserve_release"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreateReturnItemRequest is one returned line
type CreateReturnItemRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// CreateSaleReturnRequest represents the request body for processing a return
type CreateSaleReturnRequest struct {
	SaleID int                       `json:"sale_id"`
	Items  []CreateReturnItemRequest `json:"items"`
	Notes  string                    `json:"notes"`
}
