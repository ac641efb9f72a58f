package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"retail-backend/internal/ledger"
	"retail-backend/internal/metrics"
	"retail-backend/internal/models"
	"retail-backend/internal/repositories"
)

var ErrInvalidAmount = errors.New("amount must be positive")

// PostingRequest describes one balance-affecting event. Amount is the positive
// magnitude in Currency; the sign comes from the transaction type.
type PostingRequest struct {
	CustomerID    int
	Kind          models.TransactionType
	Amount        float64
	Currency      models.Currency
	Rates         ledger.RateTable
	ReferenceID   *int
	ReferenceType string
	Notes         string
	ActorUserID   int
}

// PostingResult is the committed outcome of a posting.
type PostingResult struct {
	Entry         *models.Transaction
	NewBalance    float64
	CreditWarning *ledger.CreditOverage
}

// PostingService is the single writer of customer balances. Every flow that
// moves a balance (sales, payments, returns, reserve conversions, opening
// balances) goes through Post or PostTx; nothing else touches
// customers.current_balance or customer_transactions.
type PostingService struct {
	DB           *pgxpool.Pool
	Customers    *repositories.CustomerRepository
	Transactions *repositories.TransactionRepository
	Audits       *repositories.AuditRepository
}

func NewPostingService(db *pgxpool.Pool, customers *repositories.CustomerRepository,
	transactions *repositories.TransactionRepository, audits *repositories.AuditRepository) *PostingService {
	return &PostingService{
		DB:           db,
		Customers:    customers,
		Transactions: transactions,
		Audits:       audits,
	}
}

// Post runs a posting in its own transaction and records the attempt in the
// audit table whether it committed or failed.
func (s *PostingService) Post(ctx context.Context, req *PostingRequest) (*PostingResult, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin posting tx: %w", err)
	}

	result, err := s.PostTx(ctx, tx, req)
	if err != nil {
		tx.Rollback(ctx)
		s.Audit(ctx, req, nil, err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		s.Audit(ctx, req, nil, err)
		return nil, fmt.Errorf("commit posting tx: %w", err)
	}

	s.Audit(ctx, req, result.Entry, nil)
	return result, nil
}

// PostTx runs the posting inside a caller-owned transaction so document
// writes and stock adjustments commit or roll back together with the ledger
// entry. The caller commits, rolls back and audits.
func (s *PostingService) PostTx(ctx context.Context, tx pgx.Tx, req *PostingRequest) (*PostingResult, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	// Row lock: concurrent postings against the same customer serialize here,
	// so the read-compute-write below cannot lose an update.
	customer, err := s.Customers.GetForUpdate(ctx, tx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("lock customer %d: %w", req.CustomerID, err)
	}

	rate := req.Rates.Rate(req.Currency)
	amountInHome := ledger.ToHome(req.Amount, req.Currency, req.Rates)

	newBalance, err := ledger.Post(customer.CurrentBalance, req.Kind, amountInHome)
	if err != nil {
		return nil, err
	}
	newBalance = ledger.Round2(newBalance)

	entry := &models.Transaction{
		CustomerID:      req.CustomerID,
		Type:            req.Kind,
		Amount:          ledger.Round2(req.Amount),
		Currency:        req.Currency,
		FxRateToHome:    rate,
		BalanceAfter:    newBalance,
		ReferenceID:     req.ReferenceID,
		ReferenceType:   req.ReferenceType,
		Notes:           req.Notes,
		CreatedByUserID: req.ActorUserID,
	}
	if err := s.Transactions.Insert(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("insert ledger entry: %w", err)
	}

	if err := s.Customers.SetBalance(ctx, tx, req.CustomerID, newBalance); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	result := &PostingResult{Entry: entry, NewBalance: newBalance}

	// Advisory only: the sale has already happened at the counter, blocking
	// it here would just desync the books from reality.
	if sign, _ := ledger.Sign(req.Kind); sign > 0 {
		if overage := ledger.CheckCredit(customer.CurrentBalance, customer.CreditLimit, amountInHome); overage != nil {
			result.CreditWarning = overage
			metrics.CreditLimitWarningsTotal.Inc()
		}
	}

	return result, nil
}

// Audit records the attempt on the pool connection, outside the posting
// transaction, so FAILED rows survive the rollback they describe. Callers of
// PostTx invoke it themselves after deciding the fate of their transaction.
func (s *PostingService) Audit(ctx context.Context, req *PostingRequest, entry *models.Transaction, postErr error) {
	a := &models.PostingAudit{
		CustomerID:  req.CustomerID,
		Type:        req.Kind,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Status:      models.AuditStatusCommitted,
		ActorUserID: req.ActorUserID,
	}
	if postErr != nil {
		a.Status = models.AuditStatusFailed
		a.Error = postErr.Error()
	}
	if entry != nil {
		a.TransactionID = &entry.ID
	}

	status := "committed"
	if postErr != nil {
		status = "failed"
	}
	metrics.LedgerPostingsTotal.WithLabelValues(string(req.Kind), status).Inc()

	if err := s.Audits.Insert(ctx, a); err != nil {
		log.Printf("[Posting] audit write failed for customer %d: %v", req.CustomerID, err)
	}
}

// CreditWarningText formats an overage for API responses.
func CreditWarningText(o *ledger.CreditOverage) string {
	if o == nil {
		return ""
	}
	return fmt.Sprintf("credit limit %.2f exceeded: projected balance %.2f (overage %.2f)",
		o.Limit, o.ProjectedBalance, o.Overage)
}
