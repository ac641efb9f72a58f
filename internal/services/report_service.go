package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"retail-backend/internal/ledger"
	"retail-backend/internal/models"
	"retail-backend/internal/repositories"
)

// DailySalesData holds everything the daily sales report renders.
type DailySalesData struct {
	Date       time.Time
	Sales      []*models.Sale
	TotalGross float64
	TotalTax   float64
	TotalNet   float64
	SaleCount  int
}

// ReportService builds CSV and PDF reports and hands them to the archive.
type ReportService struct {
	Sales     *repositories.SaleRepository
	Customers *repositories.CustomerRepository
	Products  *repositories.ProductRepository
	Archive   *ArchiveService
}

func NewReportService(sales *repositories.SaleRepository, customers *repositories.CustomerRepository,
	products *repositories.ProductRepository, archive *ArchiveService) *ReportService {
	return &ReportService{Sales: sales, Customers: customers, Products: products, Archive: archive}
}

// DailySales gathers the day's sales with totals in TRY.
func (s *ReportService) DailySales(ctx context.Context, day time.Time) (*DailySalesData, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	sales, err := s.Sales.List(ctx, 0, &start, &end)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	data := &DailySalesData{Date: start, Sales: sales, SaleCount: len(sales)}
	for _, sale := range sales {
		// Totals in home currency, converted at each sale's frozen rate.
		data.TotalGross += sale.TotalAmount * sale.FxRate
		data.TotalTax += sale.Tax * sale.FxRate
		data.TotalNet += sale.Subtotal * sale.FxRate
	}
	data.TotalGross = ledger.Round2(data.TotalGross)
	data.TotalTax = ledger.Round2(data.TotalTax)
	data.TotalNet = ledger.Round2(data.TotalNet)
	return data, nil
}

// BuildDailySalesCSV renders the daily sales report as CSV.
func BuildDailySalesCSV(data *DailySalesData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Sale No", "Customer ID", "Date", "Subtotal", "Tax", "Total", "Currency", "Fx Rate", "Payment Type", "Status"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, sale := range data.Sales {
		customerID := ""
		if sale.CustomerID != nil {
			customerID = strconv.Itoa(*sale.CustomerID)
		}
		record := []string{
			sale.SaleNo,
			customerID,
			sale.SaleDate.Format("2006-01-02 15:04"),
			fmt.Sprintf("%.2f", sale.Subtotal),
			fmt.Sprintf("%.2f", sale.Tax),
			fmt.Sprintf("%.2f", sale.TotalAmount),
			string(sale.Currency),
			fmt.Sprintf("%.4f", sale.FxRate),
			string(sale.PaymentType),
			string(sale.PaymentStatus),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	totals := []string{"TOTAL (TRY)", "", "",
		fmt.Sprintf("%.2f", data.TotalNet),
		fmt.Sprintf("%.2f", data.TotalTax),
		fmt.Sprintf("%.2f", data.TotalGross),
		"TRY", "", "", ""}
	if err := w.Write(totals); err != nil {
		return nil, err
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// BuildCustomerBalancesCSV renders every customer's balance position as CSV.
func BuildCustomerBalancesCSV(customers []*models.Customer) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"ID", "Name", "Phone", "Opening Balance", "Current Balance", "Credit Limit", "Risk Level"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	var total float64
	for _, c := range customers {
		limit := ""
		if c.CreditLimit != nil {
			limit = fmt.Sprintf("%.2f", *c.CreditLimit)
		}
		record := []string{
			strconv.Itoa(c.ID),
			c.Name,
			c.Phone,
			fmt.Sprintf("%.2f", c.OpeningBalance),
			fmt.Sprintf("%.2f", c.CurrentBalance),
			limit,
			string(c.RiskLevel),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
		total += c.CurrentBalance
	}

	if err := w.Write([]string{"TOTAL", "", "", "", fmt.Sprintf("%.2f", ledger.Round2(total)), "", ""}); err != nil {
		return nil, err
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// BuildStockCSV renders the stock position, flagging low-stock rows.
func BuildStockCSV(products []*models.Product) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"ID", "Name", "SKU", "Unit", "Stock", "Min Level", "Low", "Sale Price (TRY)"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, p := range products {
		low := ""
		if p.StockQuantity <= p.MinStockLevel {
			low = "YES"
		}
		record := []string{
			strconv.Itoa(p.ID),
			p.Name,
			p.SKU,
			string(p.Unit),
			strconv.Itoa(p.StockQuantity),
			strconv.Itoa(p.MinStockLevel),
			low,
			fmt.Sprintf("%.2f", p.SalePrice),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// BuildStatementCSV renders a customer's ledger statement as CSV.
func BuildStatementCSV(st *models.CustomerStatement) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Customer", st.Customer.Name}); err != nil {
		return nil, err
	}
	if err := w.Write([]string{"Opening Balance", fmt.Sprintf("%.2f", st.Customer.OpeningBalance)}); err != nil {
		return nil, err
	}
	if err := w.Write(nil); err != nil {
		return nil, err
	}

	header := []string{"Date", "Type", "Amount", "Currency", "Fx Rate", "Amount (TRY)", "Balance After", "Reference", "Notes"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, t := range st.Transactions {
		record := []string{
			t.Date.Format("2006-01-02 15:04"),
			string(t.Type),
			fmt.Sprintf("%.2f", t.Amount),
			string(t.Currency),
			fmt.Sprintf("%.4f", t.FxRateToHome),
			fmt.Sprintf("%.2f", ledger.Round2(t.Amount*t.FxRateToHome)),
			fmt.Sprintf("%.2f", t.BalanceAfter),
			t.ReferenceType,
			t.Notes,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	if err := w.Write(nil); err != nil {
		return nil, err
	}
	if err := w.Write([]string{"Total Sales (TRY)", fmt.Sprintf("%.2f", st.TotalSales)}); err != nil {
		return nil, err
	}
	if err := w.Write([]string{"Total Paid (TRY)", fmt.Sprintf("%.2f", st.TotalPaid)}); err != nil {
		return nil, err
	}
	if err := w.Write([]string{"Current Balance (TRY)", fmt.Sprintf("%.2f", st.Customer.CurrentBalance)}); err != nil {
		return nil, err
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// BuildStatementPDF renders a customer's ledger statement as a PDF.
func BuildStatementPDF(st *models.CustomerStatement) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Customer Statement", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, st.Customer.Name, "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 6, fmt.Sprintf("Opening Balance (TRY): %.2f", st.Customer.OpeningBalance), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(30, 7, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Type", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Amount", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Currency", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Fx Rate", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "TRY", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Balance", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 8)
	for _, t := range st.Transactions {
		pdf.CellFormat(30, 6, t.Date.Format("02-01-2006"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, string(t.Type), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", t.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, string(t.Currency), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.4f", t.FxRateToHome), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", ledger.Round2(t.Amount*t.FxRateToHome)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", t.BalanceAfter), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(63, 8, fmt.Sprintf("Sales (TRY): %.2f", st.TotalSales), "1", 0, "C", true, 0, "")
	pdf.CellFormat(63, 8, fmt.Sprintf("Paid (TRY): %.2f", st.TotalPaid), "1", 0, "C", true, 0, "")
	pdf.CellFormat(64, 8, fmt.Sprintf("Balance (TRY): %.2f", st.Customer.CurrentBalance), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildDailySalesPDF renders the daily sales report as a PDF.
func BuildDailySalesPDF(data *DailySalesData) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(277, 10, "Daily Sales Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(277, 6, data.Date.Format("02-Jan-2006"), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(35, 7, "Sale No", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Time", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Subtotal", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Tax", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Total", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Currency", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Payment", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Status", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, sale := range data.Sales {
		pdf.CellFormat(35, 6, sale.SaleNo, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, sale.SaleDate.Format("15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", sale.Subtotal), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", sale.Tax), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", sale.TotalAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, string(sale.Currency), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, string(sale.PaymentType), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, string(sale.PaymentStatus), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(92, 8, fmt.Sprintf("Sales: %d", data.SaleCount), "1", 0, "C", true, 0, "")
	pdf.CellFormat(92, 8, fmt.Sprintf("Tax (TRY): %.2f", data.TotalTax), "1", 0, "C", true, 0, "")
	pdf.CellFormat(93, 8, fmt.Sprintf("Gross (TRY): %.2f", data.TotalGross), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildCustomerBalancesPDF renders the balances report as a PDF.
func BuildCustomerBalancesPDF(customers []*models.Customer) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Customer Balances", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", time.Now().Format("02-Jan-2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(70, 7, "Customer", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Balance (TRY)", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Credit Limit", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Risk", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	var total float64
	for _, c := range customers {
		name := c.Name
		if len(name) > 35 {
			name = name[:32] + "..."
		}
		limit := "-"
		if c.CreditLimit != nil {
			limit = fmt.Sprintf("%.2f", *c.CreditLimit)
		}
		pdf.CellFormat(70, 6, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", c.CurrentBalance), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, limit, "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, string(c.RiskLevel), "1", 1, "C", false, 0, "")
		total += c.CurrentBalance
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(70, 8, "TOTAL", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", ledger.Round2(total)), "1", 0, "R", true, 0, "")
	pdf.CellFormat(80, 8, "", "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// DailySalesReport builds the report in the requested format and archives a
// copy when archiving is configured.
func (s *ReportService) DailySalesReport(ctx context.Context, day time.Time, format string) ([]byte, string, error) {
	data, err := s.DailySales(ctx, day)
	if err != nil {
		return nil, "", err
	}

	name := "daily-sales-" + data.Date.Format("2006-01-02")
	switch format {
	case "pdf":
		out, err := BuildDailySalesPDF(data)
		if err != nil {
			return nil, "", err
		}
		s.Archive.Upload(ctx, name+".pdf", "application/pdf", out)
		return out, "application/pdf", nil
	default:
		out, err := BuildDailySalesCSV(data)
		if err != nil {
			return nil, "", err
		}
		s.Archive.Upload(ctx, name+".csv", "text/csv", out)
		return out, "text/csv", nil
	}
}

// CustomerBalancesReport builds the balances report in the requested format.
func (s *ReportService) CustomerBalancesReport(ctx context.Context, format string) ([]byte, string, error) {
	customers, err := s.Customers.List(ctx, "")
	if err != nil {
		return nil, "", err
	}

	name := "customer-balances-" + time.Now().Format("2006-01-02")
	switch format {
	case "pdf":
		out, err := BuildCustomerBalancesPDF(customers)
		if err != nil {
			return nil, "", err
		}
		s.Archive.Upload(ctx, name+".pdf", "application/pdf", out)
		return out, "application/pdf", nil
	default:
		out, err := BuildCustomerBalancesCSV(customers)
		if err != nil {
			return nil, "", err
		}
		s.Archive.Upload(ctx, name+".csv", "text/csv", out)
		return out, "text/csv", nil
	}
}

// StockReport builds the stock CSV.
func (s *ReportService) StockReport(ctx context.Context) ([]byte, string, error) {
	products, err := s.Products.List(ctx, "", 0)
	if err != nil {
		return nil, "", err
	}
	out, err := BuildStockCSV(products)
	if err != nil {
		return nil, "", err
	}
	s.Archive.Upload(ctx, "stock-"+time.Now().Format("2006-01-02")+".csv", "text/csv", out)
	return out, "text/csv", nil
}
