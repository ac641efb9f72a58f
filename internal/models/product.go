package models

import "time"

// ProductUnit is the unit a product is counted or measured in
type ProductUnit string

const (
	UnitPiece ProductUnit = "ADET"
	UnitLitre ProductUnit = "LITRE"
	UnitMetre ProductUnit = "METRE"
	UnitGram  ProductUnit = "GRAM"
	UnitKg    ProductUnit = "KG"
	UnitM2    ProductUnit = "M2"
)

// Product represents a stock item. Purchase price keeps the currency and fx
// rate snapshotted at purchase time; the sale price is always in TRY.
type Product struct {
	ID               int         `json:"id"`
	CategoryID       *int        `json:"category_id"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	SKU              string      `json:"sku"`
	Barcode          string      `json:"barcode"`
	Unit             ProductUnit `json:"unit"`
	StockQuantity    int         `json:"stock_quantity"`
	MinStockLevel    int         `json:"min_stock_level"`
	PurchasePrice    float64     `json:"purchase_price"`
	PurchaseCurrency Currency    `json:"purchase_currency"`
	PurchaseFxRate   float64     `json:"purchase_fx_rate"`
	SalePrice        float64     `json:"sale_price"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	CategoryID       *int        `json:"category_id"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	SKU              string      `json:"sku"`
	Barcode          string      `json:"barcode"`
	Unit             ProductUnit `json:"unit"`
	StockQuantity    int         `json:"stock_quantity"`
	MinStockLevel    int         `json:"min_stock_level"`
	PurchasePrice    float64     `json:"purchase_price"`
	PurchaseCurrency Currency    `json:"purchase_currency"`
	PurchaseFxRate   float64     `json:"purchase_fx_rate"`
	SalePrice        float64     `json:"sale_price"`
}

// Category groups products
type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// StockMovementType classifies an entry in the stock journal
type StockMovementType string

const (
	MovementPurchase   StockMovementType = "PURCHASE"
	MovementSale       StockMovementType = "SALE"
	MovementReturn     StockMovementType = "RETURN"
	MovementReserveOut StockMovementType = "RESERVE_OUT"
	MovementReserveIn  StockMovementType = "RESERVE_IN"
	MovementAdjustment StockMovementType = "ADJUSTMENT"
)

// StockMovement is an append-only record of a stock quantity change.
// ChangeQty is signed: negative for stock leaving, positive for stock coming in.
type StockMovement struct {
	ID            int               `json:"id"`
	ProductID     int               `json:"product_id"`
	ChangeQty     int               `json:"change_qty"`
	Type          StockMovementType `json:"type"`
	ReferenceID   *int              `json:"reference_id"`
	ReferenceType string            `json:"reference_type"`
	UnitCost      *float64          `json:"unit_cost"`
	FxRate        *float64          `json:"fx_rate"`
	Notes         string            `json:"notes"`
	CreatedAt     time.Time         `json:"created_at"`
}

// AdjustStockRequest represents a manual stock correction
type AdjustStockRequest struct {
	ProductID int    `json:"product_id"`
	ChangeQty int    `json:"change_qty"`
	Notes     string `json:"notes"`
}
