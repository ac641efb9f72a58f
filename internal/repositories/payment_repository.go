package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"retail-backend/internal/models"
)

type PaymentRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

// Create writes the payment document inside a posting transaction.
func (r *PaymentRepository) Create(ctx context.Context, tx pgx.Tx, p *models.Payment) error {
	return tx.QueryRow(ctx,
		`INSERT INTO payments(customer_id, amount, currency, payment_type, notes)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, payment_date, created_at`,
		p.CustomerID, p.Amount, p.Currency, p.PaymentType, p.Notes,
	).Scan(&p.ID, &p.PaymentDate, &p.CreatedAt)
}

func (r *PaymentRepository) ListByCustomer(ctx context.Context, customerID int) ([]*models.Payment, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, customer_id, amount, currency, payment_type, payment_date,
             COALESCE(notes, '') as notes, created_at
         FROM payments WHERE customer_id=$1
         ORDER BY payment_date DESC, id DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		var p models.Payment
		err := rows.Scan(&p.ID, &p.CustomerID, &p.Amount, &p.Currency,
			&p.PaymentType, &p.PaymentDate, &p.Notes, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, nil
}
