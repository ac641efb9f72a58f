package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"retail-backend/internal/cache"
	"retail-backend/internal/ledger"
	"retail-backend/internal/models"
	"retail-backend/internal/repositories"
)

var (
	ErrReserveConverted = errors.New("reserve is already converted")
	ErrReserveNotOpen   = errors.New("reserve is not open")
	ErrReserveAnonymous = errors.New("reserve has no customer")
)

type ReserveService struct {
	DB       *pgxpool.Pool
	Reserves *repositories.ReserveRepository
	Sales    *repositories.SaleRepository
	Payments *repositories.PaymentRepository
	Products *repositories.ProductRepository
	Stock    *repositories.StockMovementRepository
	Posting  *PostingService
}

func NewReserveService(db *pgxpool.Pool, reserves *repositories.ReserveRepository,
	sales *repositories.SaleRepository, payments *repositories.PaymentRepository,
	products *repositories.ProductRepository, stock *repositories.StockMovementRepository,
	posting *PostingService) *ReserveService {
	return &ReserveService{
		DB: db, Reserves: reserves, Sales: sales, Payments: payments,
		Products: products, Stock: stock, Posting: posting,
	}
}

// CreateReserve holds quantities for a customer. Reserves never touch stock;
// goods only leave the shelf when the reserve converts.
func (s *ReserveService) CreateReserve(ctx context.Context, req *models.CreateReserveRequest) (*models.Reserve, error) {
	if len(req.Items) == 0 {
		return nil, errors.New("reserve must have at least one item")
	}
	for _, item := range req.Items {
		if item.QtyReserved <= 0 || item.UnitPrice < 0 {
			return nil, fmt.Errorf("product %d: invalid quantity or price", item.ProductID)
		}
	}

	reserve := &models.Reserve{
		ReserveNo:  newDocumentNo("RZ"),
		CustomerID: req.CustomerID,
		Status:     models.ReserveStatusOpen,
		ExpiresAt:  req.ExpiresAt,
		Notes:      req.Notes,
	}
	for _, item := range req.Items {
		reserve.Items = append(reserve.Items, models.ReserveItem{
			ProductID:   item.ProductID,
			QtyReserved: item.QtyReserved,
			UnitPrice:   item.UnitPrice,
		})
	}

	if err := s.Reserves.Create(ctx, reserve); err != nil {
		return nil, fmt.Errorf("create reserve: %w", err)
	}
	return reserve, nil
}

func (s *ReserveService) GetReserve(ctx context.Context, id int) (*models.Reserve, error) {
	return s.Reserves.Get(ctx, id)
}

func (s *ReserveService) ListReserves(ctx context.Context, status models.ReserveStatus) ([]*models.Reserve, error) {
	return s.Reserves.List(ctx, status)
}

func (s *ReserveService) Cancel(ctx context.Context, id int) error {
	reserve, err := s.Reserves.Get(ctx, id)
	if err != nil {
		return err
	}
	if reserve.IsConverted {
		return ErrReserveConverted
	}
	return s.Reserves.SetStatus(ctx, id, models.ReserveStatusCancelled)
}

// releaseRows builds the return rows documenting quantities a conversion
// released back to the shelf. They carry no refund and are flagged so the
// over-return guard ignores them.
func releaseRows(saleID int, returned []ledger.ReserveLine) []*models.SalesReturn {
	rows := make([]*models.SalesReturn, 0, len(returned))
	for _, line := range returned {
		rows = append(rows, &models.SalesReturn{
			SaleID:           saleID,
			ProductID:        line.ProductID,
			Quantity:         line.QtyReturned,
			RefundAmount:     0,
			IsReserveRelease: true,
		})
	}
	return rows
}

// Convert turns an open reserve into a sale. The customer keeps the taken
// quantities and the rest is released; only the taken side posts to the
// ledger and decrements stock. An optional payment settles part of the new
// debt in the same transaction.
func (s *ReserveService) Convert(ctx context.Context, reserveID int, req *models.ConvertReserveRequest,
	rates ledger.RateTable, actorUserID int) (*models.ConvertReserveResult, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin convert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	reserve, err := s.Reserves.GetForUpdate(ctx, tx, reserveID)
	if err != nil {
		return nil, fmt.Errorf("lock reserve %d: %w", reserveID, err)
	}
	if reserve.IsConverted {
		return nil, ErrReserveConverted
	}
	if reserve.Status != models.ReserveStatusOpen {
		return nil, fmt.Errorf("%w: status %s", ErrReserveNotOpen, reserve.Status)
	}
	if reserve.CustomerID == nil {
		return nil, ErrReserveAnonymous
	}

	takenByProduct := make(map[int]int)
	for _, line := range req.Lines {
		takenByProduct[line.ProductID] = line.QtyTaken
	}

	lines := make([]ledger.ReserveLine, 0, len(reserve.Items))
	for _, item := range reserve.Items {
		lines = append(lines, ledger.ReserveLine{
			ProductID:   item.ProductID,
			QtyReserved: item.QtyReserved,
			QtyTaken:    takenByProduct[item.ProductID],
			UnitPrice:   item.UnitPrice,
		})
	}

	split, err := ledger.SplitReserve(lines)
	if err != nil {
		return nil, err
	}
	if len(split.Taken) == 0 {
		return nil, errors.New("conversion must take at least one item")
	}

	// Reserve prices are tax-inclusive TRY; the sale document gets the
	// standard rate split.
	breakdown, err := ledger.SplitTax(split.TotalTaken, ledger.DefaultTaxRate, true)
	if err != nil {
		return nil, err
	}

	sale := &models.Sale{
		SaleNo:        newDocumentNo("SL"),
		CustomerID:    reserve.CustomerID,
		Subtotal:      ledger.Round2(breakdown.Subtotal),
		Tax:           ledger.Round2(breakdown.Tax),
		TotalAmount:   ledger.Round2(breakdown.Total),
		TaxIncluded:   true,
		TaxRate:       ledger.DefaultTaxRate,
		PaymentType:   req.PaymentType,
		Currency:      models.CurrencyTRY,
		FxRate:        1,
		IsFromReserve: true,
		ReserveID:     &reserve.ID,
		PaymentStatus: models.PaymentStatusPending,
		Notes:         req.Notes,
	}
	if sale.PaymentType == "" {
		sale.PaymentType = models.PaymentTypeCash
	}
	for _, line := range split.Taken {
		sale.Items = append(sale.Items, models.SaleItem{
			ProductID: line.ProductID,
			Quantity:  line.QtyTaken,
			UnitPrice: line.UnitPrice,
			Subtotal:  ledger.Round2(float64(line.QtyTaken) * line.UnitPrice),
		})
	}

	if err := s.Sales.Create(ctx, tx, sale); err != nil {
		return nil, fmt.Errorf("create sale from reserve: %w", err)
	}

	for _, line := range split.Taken {
		if err := s.Products.AdjustStock(ctx, tx, line.ProductID, -line.QtyTaken); err != nil {
			return nil, err
		}
		movement := &models.StockMovement{
			ProductID:     line.ProductID,
			ChangeQty:     -line.QtyTaken,
			Type:          models.MovementReserveOut,
			ReferenceID:   &sale.ID,
			ReferenceType: "sale",
		}
		if err := s.Stock.Insert(ctx, tx, movement); err != nil {
			return nil, fmt.Errorf("record stock movement: %w", err)
		}
	}

	// The released side leaves an audit trail too: a no-refund return row per
	// line plus a zero-change RESERVE_IN movement. Reserving never took the
	// goods out of stock, so nothing moves back in.
	for _, ret := range releaseRows(sale.ID, split.Returned) {
		if err := s.Sales.CreateReturn(ctx, tx, ret); err != nil {
			return nil, fmt.Errorf("record released line: %w", err)
		}
		movement := &models.StockMovement{
			ProductID:     ret.ProductID,
			ChangeQty:     0,
			Type:          models.MovementReserveIn,
			ReferenceID:   &ret.ID,
			ReferenceType: "sales_return",
		}
		if err := s.Stock.Insert(ctx, tx, movement); err != nil {
			return nil, fmt.Errorf("record stock movement: %w", err)
		}
	}

	saleReq := &PostingRequest{
		CustomerID:    *reserve.CustomerID,
		Kind:          models.TransactionTypeReserve,
		Amount:        sale.TotalAmount,
		Currency:      models.CurrencyTRY,
		Rates:         rates,
		ReferenceID:   &sale.ID,
		ReferenceType: "sale",
		Notes:         fmt.Sprintf("reserve %s converted", reserve.ReserveNo),
		ActorUserID:   actorUserID,
	}
	posted, err := s.Posting.PostTx(ctx, tx, saleReq)
	if err != nil {
		s.Posting.Audit(ctx, saleReq, nil, err)
		return nil, err
	}

	result := &models.ConvertReserveResult{
		Sale:          sale,
		TotalTaken:    ledger.Round2(split.TotalTaken),
		TotalReturned: ledger.Round2(split.TotalReturned),
		NewBalance:    posted.NewBalance,
		CreditWarning: CreditWarningText(posted.CreditWarning),
	}

	var payReq *PostingRequest
	if req.PaymentAmount > 0 {
		payment := &models.Payment{
			CustomerID:  *reserve.CustomerID,
			Amount:      ledger.Round2(req.PaymentAmount),
			Currency:    models.CurrencyTRY,
			PaymentType: sale.PaymentType,
			Notes:       fmt.Sprintf("payment on conversion of %s", reserve.ReserveNo),
		}
		if err := s.Payments.Create(ctx, tx, payment); err != nil {
			return nil, fmt.Errorf("create conversion payment: %w", err)
		}

		payReq = &PostingRequest{
			CustomerID:    *reserve.CustomerID,
			Kind:          models.TransactionTypePayment,
			Amount:        payment.Amount,
			Currency:      models.CurrencyTRY,
			Rates:         rates,
			ReferenceID:   &payment.ID,
			ReferenceType: "payment",
			ActorUserID:   actorUserID,
		}
		paid, err := s.Posting.PostTx(ctx, tx, payReq)
		if err != nil {
			s.Posting.Audit(ctx, payReq, nil, err)
			return nil, err
		}
		result.NewBalance = paid.NewBalance
	}

	if err := s.Reserves.MarkConverted(ctx, tx, reserve.ID); err != nil {
		return nil, fmt.Errorf("mark reserve converted: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.Posting.Audit(ctx, saleReq, nil, err)
		return nil, fmt.Errorf("commit convert tx: %w", err)
	}
	s.Posting.Audit(ctx, saleReq, posted.Entry, nil)
	if payReq != nil {
		s.Posting.Audit(ctx, payReq, nil, nil)
	}

	cache.InvalidateProductCaches(ctx)
	cache.InvalidateCustomerCaches(ctx)
	return result, nil
}
