package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"retail-backend/internal/models"
)

type AuditRepository struct {
	DB *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{DB: db}
}

// Insert writes the audit row on the pool, not the posting transaction, so a
// FAILED record survives the rollback it is describing.
func (r *AuditRepository) Insert(ctx context.Context, a *models.PostingAudit) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO posting_audit(customer_id, type, amount, currency, status,
             error, actor_user_id, transaction_id)
         VALUES($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
         RETURNING id, created_at`,
		a.CustomerID, a.Type, a.Amount, a.Currency, a.Status,
		a.Error, a.ActorUserID, a.TransactionID,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *AuditRepository) ListByCustomer(ctx context.Context, customerID, limit int) ([]*models.PostingAudit, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.DB.Query(ctx,
		`SELECT id, customer_id, type, amount, currency, status, COALESCE(error, '') as error,
             actor_user_id, transaction_id, created_at
         FROM posting_audit WHERE customer_id=$1
         ORDER BY created_at DESC LIMIT $2`, customerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []*models.PostingAudit
	for rows.Next() {
		var a models.PostingAudit
		err := rows.Scan(&a.ID, &a.CustomerID, &a.Type, &a.Amount, &a.Currency,
			&a.Status, &a.Error, &a.ActorUserID, &a.TransactionID, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		audits = append(audits, &a)
	}
	return audits, nil
}
