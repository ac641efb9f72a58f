package models

import "time"

// ReserveStatus is the lifecycle state of a reserve
type ReserveStatus string

const (
	ReserveStatusOpen      ReserveStatus = "OPEN"
	ReserveStatusCompleted ReserveStatus = "COMPLETED"
	ReserveStatusExpired   ReserveStatus = "EXPIRED"
	ReserveStatusCancelled ReserveStatus = "CANCELLED"
)

// Reserve is a hold on product quantities for a customer. It never affects
// stock: quantities only leave stock when the reserve is converted to a sale.
type Reserve struct {
	ID          int           `json:"id"`
	ReserveNo   string        `json:"reserve_no"`
	CustomerID  *int          `json:"customer_id"`
	Status      ReserveStatus `json:"status"`
	IsConverted bool          `json:"is_converted"`
	ConvertedAt *time.Time    `json:"converted_at"`
	ExpiresAt   *time.Time    `json:"expires_at"`
	Notes       string        `json:"notes"`
	CreatedAt   time.Time     `json:"created_at"`
	Items       []ReserveItem `json:"items,omitempty"`
}

// ReserveItem is one reserved line
type ReserveItem struct {
	ID          int     `json:"id"`
	ReserveID   int     `json:"reserve_id"`
	ProductID   int     `json:"product_id"`
	QtyReserved int     `json:"qty_reserved"`
	UnitPrice   float64 `json:"unit_price"`
}

// CreateReserveItemRequest is one requested reserve line
type CreateReserveItemRequest struct {
	ProductID   int     `json:"product_id"`
	QtyReserved int     `json:"qty_reserved"`
	UnitPrice   float64 `json:"unit_price"`
}

// CreateReserveRequest represents the request body for creating a reserve
type CreateReserveRequest struct {
	CustomerID *int                       `json:"customer_id"`
	Items      []CreateReserveItemRequest `json:"items"`
	ExpiresAt  *time.Time                 `json:"expires_at"`
	Notes      string                     `json:"notes"`
}

// ConvertReserveLine says how much of one reserved line the customer took;
// the returned quantity is derived, never supplied.
type ConvertReserveLine struct {
	ProductID int `json:"product_id"`
	QtyTaken  int `json:"qty_taken"`
}

// ConvertReserveRequest represents the request body for converting a reserve
// into a sale. PaymentAmount, when positive, posts an immediate payment right
// after the sale posting.
type ConvertReserveRequest struct {
	Lines         []ConvertReserveLine `json:"lines"`
	PaymentAmount float64              `json:"payment_amount"`
	PaymentType   PaymentType          `json:"payment_type"`
	Notes         string               `json:"notes"`
}

// ConvertReserveResult summarizes a conversion
type ConvertReserveResult struct {
	Sale          *Sale   `json:"sale"`
	TotalTaken    float64 `json:"total_taken"`
	TotalReturned float64 `json:"total_returned"`
	NewBalance    float64 `json:"new_balance"`
	CreditWarning string  `json:"credit_warning,omitempty"`
}
