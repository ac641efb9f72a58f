package models

import "time"

// Supplier is a vendor products can be purchased from
type Supplier struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateSupplierRequest represents the request body for creating a supplier
type CreateSupplierRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

// ProductSupplier links a product to a supplier with the supplier's unit price
// in its own currency and the fx rate snapshotted at the last purchase.
type ProductSupplier struct {
	ID               int        `json:"id"`
	ProductID        int        `json:"product_id"`
	SupplierID       int        `json:"supplier_id"`
	SupplierName     string     `json:"supplier_name,omitempty"`
	UnitPrice        float64    `json:"unit_price"`
	Currency         Currency   `json:"currency"`
	FxRateAtPurchase float64    `json:"fx_rate_at_purchase"`
	LastPurchaseDate *time.Time `json:"last_purchase_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CreateProductSupplierRequest links a supplier price to a product
type CreateProductSupplierRequest struct {
	ProductID        int      `json:"product_id"`
	SupplierID       int      `json:"supplier_id"`
	UnitPrice        float64  `json:"unit_price"`
	Currency         Currency `json:"currency"`
	FxRateAtPurchase float64  `json:"fx_rate_at_purchase"`
}

// SupplierPriceComparison is one supplier's offer for a product converted to
// TRY with the live rate table so offers in different currencies compare fairly
type SupplierPriceComparison struct {
	SupplierID   int      `json:"supplier_id"`
	SupplierName string   `json:"supplier_name"`
	UnitPrice    float64  `json:"unit_price"`
	Currency     Currency `json:"currency"`
	PriceInHome  float64  `json:"price_in_home"`
	Best         bool     `json:"best"`
}
