package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"retail-backend/internal/cache"
	"retail-backend/internal/ledger"
	"retail-backend/internal/models"
	"retail-backend/internal/repositories"
)

var (
	ErrEmptySale  = errors.New("sale must have at least one item")
	ErrOverReturn = errors.New("return quantity exceeds quantity sold")
)

type SaleService struct {
	DB       *pgxpool.Pool
	Sales    *repositories.SaleRepository
	Products *repositories.ProductRepository
	Stock    *repositories.StockMovementRepository
	Posting  *PostingService
}

func NewSaleService(db *pgxpool.Pool, sales *repositories.SaleRepository,
	products *repositories.ProductRepository, stock *repositories.StockMovementRepository,
	posting *PostingService) *SaleService {
	return &SaleService{DB: db, Sales: sales, Products: products, Stock: stock, Posting: posting}
}

// newDocumentNo builds a short unique document number like SL-3F2A9C81.
func newDocumentNo(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.New().String()[:8])
}

// resolveTaxRate falls back to the standard rate only when the request omits
// one entirely. An explicit zero is a tax-exempt sale and stays zero.
func resolveTaxRate(requested *float64) float64 {
	if requested == nil {
		return ledger.DefaultTaxRate
	}
	return *requested
}

// tableFor builds a rate table that resolves the given currency to a frozen
// rate, used when a flow must reuse a rate snapshotted on an earlier document.
func tableFor(c models.Currency, rate float64) ledger.RateTable {
	switch c {
	case models.CurrencyUSD:
		return ledger.RateTable{USD: rate}
	case models.CurrencyEUR:
		return ledger.RateTable{EUR: rate}
	default:
		return ledger.RateTable{}
	}
}

// CreateSale records a sale: document, items, stock decrement and, when the
// sale is on a customer account, the ledger posting. Everything commits or
// rolls back as one transaction.
func (s *SaleService) CreateSale(ctx context.Context, req *models.CreateSaleRequest, rates ledger.RateTable, actorUserID int) (*models.SaleResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptySale
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.UnitPrice < 0 {
			return nil, fmt.Errorf("product %d: invalid quantity or price", item.ProductID)
		}
	}
	if req.Currency == "" {
		req.Currency = models.CurrencyTRY
	}
	taxRate := resolveTaxRate(req.TaxRate)

	var gross float64
	items := make([]models.SaleItem, 0, len(req.Items))
	for _, item := range req.Items {
		lineTotal := float64(item.Quantity) * item.UnitPrice
		gross += lineTotal
		items = append(items, models.SaleItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  ledger.Round2(lineTotal),
		})
	}

	breakdown, err := ledger.SplitTax(gross, taxRate, req.TaxIncluded)
	if err != nil {
		return nil, err
	}

	status := models.PaymentStatusPaid
	if req.CustomerID != nil {
		status = models.PaymentStatusPending
	}

	sale := &models.Sale{
		SaleNo:        newDocumentNo("SL"),
		CustomerID:    req.CustomerID,
		Subtotal:      ledger.Round2(breakdown.Subtotal),
		Tax:           ledger.Round2(breakdown.Tax),
		TotalAmount:   ledger.Round2(breakdown.Total),
		TaxIncluded:   req.TaxIncluded,
		TaxRate:       taxRate,
		PaymentType:   req.PaymentType,
		Currency:      req.Currency,
		FxRate:        rates.Rate(req.Currency),
		DueDate:       req.DueDate,
		PaymentStatus: status,
		Notes:         req.Notes,
		Items:         items,
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin sale tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.Sales.Create(ctx, tx, sale); err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}

	for _, item := range sale.Items {
		if err := s.Products.AdjustStock(ctx, tx, item.ProductID, -item.Quantity); err != nil {
			return nil, err
		}
		movement := &models.StockMovement{
			ProductID:     item.ProductID,
			ChangeQty:     -item.Quantity,
			Type:          models.MovementSale,
			ReferenceID:   &sale.ID,
			ReferenceType: "sale",
		}
		if err := s.Stock.Insert(ctx, tx, movement); err != nil {
			return nil, fmt.Errorf("record stock movement: %w", err)
		}
	}

	result := &models.SaleResult{Sale: sale}

	// Counter sales with no account are settled on the spot and never touch
	// a ledger.
	if sale.CustomerID != nil {
		postReq := &PostingRequest{
			CustomerID:    *sale.CustomerID,
			Kind:          models.TransactionTypeSale,
			Amount:        sale.TotalAmount,
			Currency:      sale.Currency,
			Rates:         rates,
			ReferenceID:   &sale.ID,
			ReferenceType: "sale",
			Notes:         sale.SaleNo,
			ActorUserID:   actorUserID,
		}
		posted, err := s.Posting.PostTx(ctx, tx, postReq)
		if err != nil {
			s.Posting.Audit(ctx, postReq, nil, err)
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			s.Posting.Audit(ctx, postReq, nil, err)
			return nil, fmt.Errorf("commit sale tx: %w", err)
		}
		s.Posting.Audit(ctx, postReq, posted.Entry, nil)

		result.NewBalance = posted.NewBalance
		result.CreditWarning = CreditWarningText(posted.CreditWarning)
	} else {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit sale tx: %w", err)
		}
	}

	cache.InvalidateProductCaches(ctx)
	cache.InvalidateCustomerCaches(ctx)
	return result, nil
}

func (s *SaleService) GetSale(ctx context.Context, id int) (*models.Sale, error) {
	return s.Sales.Get(ctx, id)
}

func (s *SaleService) ListSales(ctx context.Context, customerID int, start, end *time.Time) ([]*models.Sale, error) {
	return s.Sales.List(ctx, customerID, start, end)
}

func (s *SaleService) ListOverdue(ctx context.Context) ([]*models.Sale, error) {
	return s.Sales.ListOverdue(ctx)
}

// ProcessReturn takes goods back from a completed sale: stock comes back in
// and, for account sales, a REFUND entry clears the balance at the fx rate
// frozen on the original sale.
func (s *SaleService) ProcessReturn(ctx context.Context, req *models.CreateSaleReturnRequest, actorUserID int) ([]*models.SalesReturn, error) {
	if len(req.Items) == 0 {
		return nil, errors.New("return must have at least one item")
	}

	sale, err := s.Sales.Get(ctx, req.SaleID)
	if err != nil {
		return nil, fmt.Errorf("load sale %d: %w", req.SaleID, err)
	}

	soldQty := make(map[int]int)
	unitPrice := make(map[int]float64)
	for _, item := range sale.Items {
		soldQty[item.ProductID] += item.Quantity
		unitPrice[item.ProductID] = item.UnitPrice
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin return tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var returns []*models.SalesReturn
	var refundTotal float64
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("product %d: invalid return quantity", item.ProductID)
		}
		sold, ok := soldQty[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d was not on sale %d", item.ProductID, req.SaleID)
		}
		already, err := s.Sales.ReturnedQuantity(ctx, tx, req.SaleID, item.ProductID)
		if err != nil {
			return nil, err
		}
		if item.Quantity+already > sold {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, ErrOverReturn)
		}

		refund := ledger.Round2(float64(item.Quantity) * unitPrice[item.ProductID])
		ret := &models.SalesReturn{
			SaleID:       req.SaleID,
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			RefundAmount: refund,
		}
		if err := s.Sales.CreateReturn(ctx, tx, ret); err != nil {
			return nil, fmt.Errorf("record return: %w", err)
		}

		if err := s.Products.AdjustStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
		movement := &models.StockMovement{
			ProductID:     item.ProductID,
			ChangeQty:     item.Quantity,
			Type:          models.MovementReturn,
			ReferenceID:   &ret.ID,
			ReferenceType: "sales_return",
		}
		if err := s.Stock.Insert(ctx, tx, movement); err != nil {
			return nil, fmt.Errorf("record stock movement: %w", err)
		}

		refundTotal += refund
		returns = append(returns, ret)
	}

	if sale.CustomerID != nil && refundTotal > 0 {
		postReq := &PostingRequest{
			CustomerID:    *sale.CustomerID,
			Kind:          models.TransactionTypeRefund,
			Amount:        ledger.Round2(refundTotal),
			Currency:      sale.Currency,
			Rates:         tableFor(sale.Currency, sale.FxRate),
			ReferenceID:   &req.SaleID,
			ReferenceType: "sales_return",
			Notes:         req.Notes,
			ActorUserID:   actorUserID,
		}
		if _, err := s.Posting.PostTx(ctx, tx, postReq); err != nil {
			s.Posting.Audit(ctx, postReq, nil, err)
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			s.Posting.Audit(ctx, postReq, nil, err)
			return nil, fmt.Errorf("commit return tx: %w", err)
		}
		s.Posting.Audit(ctx, postReq, nil, nil)
	} else {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit return tx: %w", err)
		}
	}

	cache.InvalidateProductCaches(ctx)
	cache.InvalidateCustomerCaches(ctx)
	return returns, nil
}

