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

type CustomerService struct {
	DB           *pgxpool.Pool
	Repo         *repositories.CustomerRepository
	Transactions *repositories.TransactionRepository
	Posting      *PostingService
}

func NewCustomerService(db *pgxpool.Pool, repo *repositories.CustomerRepository,
	transactions *repositories.TransactionRepository, posting *PostingService) *CustomerService {
	return &CustomerService{DB: db, Repo: repo, Transactions: transactions, Posting: posting}
}

// CreateCustomer creates the account. A positive opening balance is carried in
// as an OPENING ledger entry so the history starts from a traceable row.
func (s *CustomerService) CreateCustomer(ctx context.Context, req *models.CreateCustomerRequest, actorUserID int) (*models.Customer, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if req.RiskLevel == "" {
		req.RiskLevel = models.RiskLevelLow
	}

	customer := &models.Customer{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		TaxNumber:      req.TaxNumber,
		OpeningBalance: ledger.Round2(req.OpeningBalance),
		CurrentBalance: ledger.Round2(req.OpeningBalance),
		CreditLimit:    req.CreditLimit,
		RiskLevel:      req.RiskLevel,
		Notes:          req.Notes,
	}

	if err := s.Repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	if customer.OpeningBalance > 0 {
		tx, err := s.DB.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin opening tx: %w", err)
		}
		defer tx.Rollback(ctx)

		entry := &models.Transaction{
			CustomerID:      customer.ID,
			Type:            models.TransactionTypeOpening,
			Amount:          customer.OpeningBalance,
			Currency:        models.CurrencyTRY,
			FxRateToHome:    1,
			BalanceAfter:    customer.OpeningBalance,
			ReferenceType:   "opening",
			Notes:           "opening balance",
			CreatedByUserID: actorUserID,
		}
		if err := s.Transactions.Insert(ctx, tx, entry); err != nil {
			return nil, fmt.Errorf("insert opening entry: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit opening tx: %w", err)
		}
	}

	cache.InvalidateCustomerCaches(ctx)
	return customer, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	return s.Repo.Get(ctx, id)
}

func (s *CustomerService) ListCustomers(ctx context.Context, search string) ([]*models.Customer, error) {
	return s.Repo.List(ctx, search)
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id int, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}

	// Balances are not updatable here: they only move through postings.
	customer := &models.Customer{
		ID:          id,
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		TaxNumber:   req.TaxNumber,
		CreditLimit: req.CreditLimit,
		RiskLevel:   req.RiskLevel,
		Notes:       req.Notes,
	}

	if err := s.Repo.Update(ctx, customer); err != nil {
		return nil, err
	}

	cache.InvalidateCustomerCaches(ctx)
	return s.Repo.Get(ctx, id)
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id int) error {
	entries, err := s.Transactions.ListByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return errors.New("customer has ledger history and cannot be deleted")
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateCustomerCaches(ctx)
	return nil
}

// Statement returns the customer's full ledger with lifetime totals.
func (s *CustomerService) Statement(ctx context.Context, id int) (*models.CustomerStatement, error) {
	customer, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.Transactions.ListByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	totalSales, totalPaid, err := s.Transactions.Totals(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.CustomerStatement{
		Customer:     customer,
		Transactions: entries,
		TotalSales:   ledger.Round2(totalSales),
		TotalPaid:    ledger.Round2(totalPaid),
	}, nil
}

// Reconciliation compares the stored balance with a replay of the ledger.
type Reconciliation struct {
	CustomerID      int     `json:"customer_id"`
	StoredBalance   float64 `json:"stored_balance"`
	ReplayedBalance float64 `json:"replayed_balance"`
	Drift           float64 `json:"drift"`
	Consistent      bool    `json:"consistent"`
	Repaired        bool    `json:"repaired,omitempty"`
}

// Reconcile replays the customer's entries over the opening balance and
// reports any drift from the stored running balance. It never mutates
// anything; a non-zero drift is an operator signal.
func (s *CustomerService) Reconcile(ctx context.Context, id int) (*Reconciliation, error) {
	customer, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.Transactions.ListByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	replayed, err := ledger.Replay(customer.OpeningBalance, entries)
	if err != nil {
		return nil, fmt.Errorf("replay customer %d: %w", id, err)
	}
	replayed = ledger.Round2(replayed)

	drift := ledger.Round2(customer.CurrentBalance - replayed)
	return &Reconciliation{
		CustomerID:      id,
		StoredBalance:   customer.CurrentBalance,
		ReplayedBalance: replayed,
		Drift:           drift,
		Consistent:      drift == 0,
	}, nil
}

// RepairBalance replays the ledger under a row lock and overwrites the stored
// balance when it has drifted. The ledger itself is never touched.
func (s *CustomerService) RepairBalance(ctx context.Context, id int) (*Reconciliation, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin repair tx: %w", err)
	}
	defer tx.Rollback(ctx)

	customer, err := s.Repo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	// The row lock holds off concurrent postings, so this read is stable.
	entries, err := s.Transactions.ListByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	replayed, err := ledger.Replay(customer.OpeningBalance, entries)
	if err != nil {
		return nil, fmt.Errorf("replay customer %d: %w", id, err)
	}
	replayed = ledger.Round2(replayed)

	result := &Reconciliation{
		CustomerID:      id,
		StoredBalance:   customer.CurrentBalance,
		ReplayedBalance: replayed,
		Drift:           ledger.Round2(customer.CurrentBalance - replayed),
	}
	if result.Drift == 0 {
		result.Consistent = true
		return result, nil
	}

	if err := s.Repo.SetBalance(ctx, tx, id, replayed); err != nil {
		return nil, fmt.Errorf("repair balance: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit repair tx: %w", err)
	}
	result.Repaired = true
	cache.InvalidateCustomerCaches(ctx)
	return result, nil
}
