package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"retail-backend/internal/cache"
	"retail-backend/internal/ledger"
	"retail-backend/internal/models"
	"retail-backend/internal/repositories"
)

type PaymentService struct {
	DB       *pgxpool.Pool
	Payments *repositories.PaymentRepository
	Posting  *PostingService
}

func NewPaymentService(db *pgxpool.Pool, payments *repositories.PaymentRepository, posting *PostingService) *PaymentService {
	return &PaymentService{DB: db, Payments: payments, Posting: posting}
}

// CreatePayment records money received and posts the PAYMENT ledger entry in
// one transaction.
func (s *PaymentService) CreatePayment(ctx context.Context, req *models.CreatePaymentRequest,
	rates ledger.RateTable, actorUserID int) (*models.Payment, *PostingResult, error) {
	if req.Amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	if req.Currency == "" {
		req.Currency = models.CurrencyTRY
	}
	if req.PaymentType == "" {
		req.PaymentType = models.PaymentTypeCash
	}

	payment := &models.Payment{
		CustomerID:  req.CustomerID,
		Amount:      ledger.Round2(req.Amount),
		Currency:    req.Currency,
		PaymentType: req.PaymentType,
		Notes:       req.Notes,
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin payment tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.Payments.Create(ctx, tx, payment); err != nil {
		return nil, nil, fmt.Errorf("create payment: %w", err)
	}

	postReq := &PostingRequest{
		CustomerID:    req.CustomerID,
		Kind:          models.TransactionTypePayment,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Rates:         rates,
		ReferenceID:   &payment.ID,
		ReferenceType: "payment",
		Notes:         req.Notes,
		ActorUserID:   actorUserID,
	}
	posted, err := s.Posting.PostTx(ctx, tx, postReq)
	if err != nil {
		s.Posting.Audit(ctx, postReq, nil, err)
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		s.Posting.Audit(ctx, postReq, nil, err)
		return nil, nil, fmt.Errorf("commit payment tx: %w", err)
	}
	s.Posting.Audit(ctx, postReq, posted.Entry, nil)

	cache.InvalidateCustomerCaches(ctx)
	return payment, posted, nil
}

func (s *PaymentService) ListByCustomer(ctx context.Context, customerID int) ([]*models.Payment, error) {
	return s.Payments.ListByCustomer(ctx, customerID)
}
