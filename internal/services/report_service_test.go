package services

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"retail-backend/internal/models"
)

func TestBuildDailySalesCSV(t *testing.T) {
	customerID := 7
	data := &DailySalesData{
		Date: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Sales: []*models.Sale{
			{
				SaleNo:        "SL-AAAA1111",
				CustomerID:    &customerID,
				SaleDate:      time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
				Subtotal:      1000,
				Tax:           200,
				TotalAmount:   1200,
				Currency:      models.CurrencyTRY,
				FxRate:        1,
				PaymentType:   models.PaymentTypeCash,
				PaymentStatus: models.PaymentStatusPending,
			},
			{
				SaleNo:        "SL-BBBB2222",
				SaleDate:      time.Date(2026, 3, 14, 14, 0, 0, 0, time.UTC),
				Subtotal:      172.41,
				Tax:           27.59,
				TotalAmount:   200,
				Currency:      models.CurrencyUSD,
				FxRate:        34.75,
				PaymentType:   models.PaymentTypeCard,
				PaymentStatus: models.PaymentStatusPaid,
			},
		},
		TotalGross: 8150,
		TotalTax:   1158.75,
		TotalNet:   6991.25,
		SaleCount:  2,
	}

	out, err := BuildDailySalesCSV(data)
	if err != nil {
		t.Fatalf("BuildDailySalesCSV: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	// header + 2 sales + totals row
	if len(records) != 4 {
		t.Fatalf("got %d rows, want 4", len(records))
	}
	if records[1][0] != "SL-AAAA1111" || records[1][1] != "7" {
		t.Errorf("first row = %v", records[1])
	}
	if records[2][1] != "" {
		t.Errorf("counter sale should have empty customer id, got %q", records[2][1])
	}
	if records[3][0] != "TOTAL (TRY)" || records[3][5] != "8150.00" {
		t.Errorf("totals row = %v", records[3])
	}
}

func TestBuildCustomerBalancesCSV(t *testing.T) {
	limit := 5000.0
	customers := []*models.Customer{
		{ID: 1, Name: "Yilmaz Ticaret", Phone: "05321112233", OpeningBalance: 1000, CurrentBalance: 7400, CreditLimit: &limit, RiskLevel: models.RiskLevelMedium},
		{ID: 2, Name: "Kaya Insaat", CurrentBalance: -250.50, RiskLevel: models.RiskLevelLow},
	}

	out, err := BuildCustomerBalancesCSV(customers)
	if err != nil {
		t.Fatalf("BuildCustomerBalancesCSV: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	if len(records) != 4 {
		t.Fatalf("got %d rows, want 4", len(records))
	}
	if records[1][5] != "5000.00" {
		t.Errorf("credit limit cell = %q, want 5000.00", records[1][5])
	}
	if records[2][5] != "" {
		t.Errorf("customer without limit should have empty cell, got %q", records[2][5])
	}
	// 7400 - 250.50
	if records[3][4] != "7149.50" {
		t.Errorf("total balance = %q, want 7149.50", records[3][4])
	}
}

func TestBuildStockCSVFlagsLowStock(t *testing.T) {
	products := []*models.Product{
		{ID: 1, Name: "Kablo 2.5mm", SKU: "KB-25", Unit: models.UnitMetre, StockQuantity: 3, MinStockLevel: 10, SalePrice: 14.90},
		{ID: 2, Name: "Priz", SKU: "PR-01", Unit: models.UnitPiece, StockQuantity: 120, MinStockLevel: 20, SalePrice: 45},
	}

	out, err := BuildStockCSV(products)
	if err != nil {
		t.Fatalf("BuildStockCSV: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	if records[1][6] != "YES" {
		t.Errorf("low stock row not flagged: %v", records[1])
	}
	if records[2][6] != "" {
		t.Errorf("healthy stock row flagged: %v", records[2])
	}
}

func TestBuildStatementCSV(t *testing.T) {
	st := &models.CustomerStatement{
		Customer: &models.Customer{
			ID: 3, Name: "Demir Elektrik", OpeningBalance: 500, CurrentBalance: 1960,
		},
		Transactions: []models.Transaction{
			{Type: models.TransactionTypeOpening, Amount: 500, Currency: models.CurrencyTRY, FxRateToHome: 1,
				BalanceAfter: 500, ReferenceType: "opening", Date: time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)},
			{Type: models.TransactionTypeSale, Amount: 100, Currency: models.CurrencyUSD, FxRateToHome: 34.75,
				BalanceAfter: 3975, ReferenceType: "sale", Date: time.Date(2026, 1, 5, 11, 15, 0, 0, time.UTC)},
			{Type: models.TransactionTypePayment, Amount: 2015, Currency: models.CurrencyTRY, FxRateToHome: 1,
				BalanceAfter: 1960, ReferenceType: "payment", Date: time.Date(2026, 1, 9, 16, 40, 0, 0, time.UTC)},
		},
		TotalSales: 3475,
		TotalPaid:  2015,
	}

	out, err := BuildStatementCSV(st)
	if err != nil {
		t.Fatalf("BuildStatementCSV: %v", err)
	}

	reader := csv.NewReader(bytes.NewReader(out))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	// 2 header rows + column row + 3 entries + 3 totals rows
	if len(records) != 9 {
		t.Fatalf("got %d rows, want 9", len(records))
	}
	if records[0][1] != "Demir Elektrik" {
		t.Errorf("customer row = %v", records[0])
	}
	// USD sale converted at its frozen rate
	if records[4][5] != "3475.00" {
		t.Errorf("converted amount = %q, want 3475.00", records[4][5])
	}
	if records[8][1] != "1960.00" {
		t.Errorf("closing balance = %q, want 1960.00", records[8][1])
	}
}

func TestBuildDailySalesPDF(t *testing.T) {
	data := &DailySalesData{
		Date: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Sales: []*models.Sale{
			{SaleNo: "SL-AAAA1111", SaleDate: time.Now(), Subtotal: 1000, Tax: 200, TotalAmount: 1200,
				Currency: models.CurrencyTRY, PaymentType: models.PaymentTypeCash, PaymentStatus: models.PaymentStatusPaid},
		},
		TotalGross: 1200, TotalTax: 200, TotalNet: 1000, SaleCount: 1,
	}

	out, err := BuildDailySalesPDF(data)
	if err != nil {
		t.Fatalf("BuildDailySalesPDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not start with PDF header")
	}
}

func TestNewDocumentNo(t *testing.T) {
	no := newDocumentNo("SL")
	if !strings.HasPrefix(no, "SL-") {
		t.Errorf("document number %q missing prefix", no)
	}
	if len(no) != len("SL-")+8 {
		t.Errorf("document number %q has wrong length", no)
	}
	if no == newDocumentNo("SL") {
		t.Errorf("document numbers should be unique")
	}
}
