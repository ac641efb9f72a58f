package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"retail-backend/internal/models"
)

// TransactionRepository is the customer ledger. Entries are append-only:
// there is no Update or Delete here on purpose.
type TransactionRepository struct {
	DB *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

const transactionColumns = `id, customer_id, type, amount, currency, fx_rate_to_home,
    balance_after, reference_id, COALESCE(reference_type, '') as reference_type,
    date, COALESCE(notes, '') as notes, created_by_user_id, created_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.CustomerID, &t.Type, &t.Amount, &t.Currency,
		&t.FxRateToHome, &t.BalanceAfter, &t.ReferenceID, &t.ReferenceType,
		&t.Date, &t.Notes, &t.CreatedByUserID, &t.CreatedAt)
	return &t, err
}

// Insert writes a ledger entry inside a posting transaction.
func (r *TransactionRepository) Insert(ctx context.Context, tx pgx.Tx, t *models.Transaction) error {
	return tx.QueryRow(ctx,
		`INSERT INTO customer_transactions(customer_id, type, amount, currency,
             fx_rate_to_home, balance_after, reference_id, reference_type, notes,
             created_by_user_id)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         RETURNING id, date, created_at`,
		t.CustomerID, t.Type, t.Amount, t.Currency, t.FxRateToHome,
		t.BalanceAfter, t.ReferenceID, t.ReferenceType, t.Notes, t.CreatedByUserID,
	).Scan(&t.ID, &t.Date, &t.CreatedAt)
}

// ListByCustomer returns a customer's entries oldest first, the order balance
// replay expects.
func (r *TransactionRepository) ListByCustomer(ctx context.Context, customerID int) ([]models.Transaction, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+transactionColumns+` FROM customer_transactions
         WHERE customer_id=$1 ORDER BY date, id`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *t)
	}
	return entries, nil
}

// List returns entries matching the filter, newest first, for the audit view.
func (r *TransactionRepository) List(ctx context.Context, f *models.TransactionFilter) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM customer_transactions WHERE 1=1`
	args := []interface{}{}

	if f.CustomerID > 0 {
		args = append(args, f.CustomerID)
		query += fmt.Sprintf(` AND customer_id = $%d`, len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		query += fmt.Sprintf(` AND date <= $%d`, len(args))
	}

	query += ` ORDER BY date DESC, id DESC`

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *t)
	}
	return entries, nil
}

// Totals returns the customer's lifetime debt and payment sums in TRY.
func (r *TransactionRepository) Totals(ctx context.Context, customerID int) (totalSales, totalPaid float64, err error) {
	err = r.DB.QueryRow(ctx,
		`SELECT
             COALESCE(SUM(CASE WHEN type IN ('SALE', 'RESERVE') THEN amount * fx_rate_to_home END), 0),
             COALESCE(SUM(CASE WHEN type IN ('PAYMENT', 'REFUND') THEN amount * fx_rate_to_home END), 0)
         FROM customer_transactions WHERE customer_id=$1`, customerID,
	).Scan(&totalSales, &totalPaid)
	return totalSales, totalPaid, err
}
