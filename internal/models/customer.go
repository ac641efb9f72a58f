package models

import "time"

// RiskLevel classifies how risky it is to extend credit to a customer
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// Customer represents an account customer. CurrentBalance is kept in home
// currency (TRY) and is positive when the customer owes money. It must always
// equal OpeningBalance plus the signed sum of the customer's ledger entries.
type Customer struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email"`
	Address        string     `json:"address"`
	TaxNumber      string     `json:"tax_number"`
	OpeningBalance float64    `json:"opening_balance"`
	CurrentBalance float64    `json:"current_balance"`
	CreditLimit    *float64   `json:"credit_limit"`
	RiskLevel      RiskLevel  `json:"risk_level"`
	Notes          string     `json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateCustomerRequest represents the request body for creating a customer
type CreateCustomerRequest struct {
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Address        string    `json:"address"`
	TaxNumber      string    `json:"tax_number"`
	OpeningBalance float64   `json:"opening_balance"`
	CreditLimit    *float64  `json:"credit_limit"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Notes          string    `json:"notes"`
}

// UpdateCustomerRequest represents the request body for updating a customer.
// Balances are intentionally absent: they only move through ledger postings.
type UpdateCustomerRequest struct {
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	TaxNumber   string    `json:"tax_number"`
	CreditLimit *float64  `json:"credit_limit"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Notes       string    `json:"notes"`
}

// CustomerStatement is a customer's ledger history with derived totals
type CustomerStatement struct {
	Customer     *Customer     `json:"customer"`
	Transactions []Transaction `json:"transactions"`
	TotalSales   float64       `json:"total_sales"`
	TotalPaid    float64       `json:"total_paid"`
}
