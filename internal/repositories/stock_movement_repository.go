package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"retail-backend/internal/models"
)

// StockMovementRepository is the append-only stock journal. Like the customer
// ledger it has no Update or Delete.
type StockMovementRepository struct {
	DB *pgxpool.Pool
}

func NewStockMovementRepository(db *pgxpool.Pool) *StockMovementRepository {
	return &StockMovementRepository{DB: db}
}

// Insert writes a movement inside the transaction that adjusted the stock.
func (r *StockMovementRepository) Insert(ctx context.Context, tx pgx.Tx, m *models.StockMovement) error {
	return tx.QueryRow(ctx,
		`INSERT INTO stock_movements(product_id, change_qty, type, reference_id,
             reference_type, unit_cost, fx_rate, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at`,
		m.ProductID, m.ChangeQty, m.Type, m.ReferenceID, m.ReferenceType,
		m.UnitCost, m.FxRate, m.Notes,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *StockMovementRepository) ListByProduct(ctx context.Context, productID, limit int) ([]*models.StockMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.DB.Query(ctx,
		`SELECT id, product_id, change_qty, type, reference_id,
             COALESCE(reference_type, '') as reference_type, unit_cost, fx_rate,
             COALESCE(notes, '') as notes, created_at
         FROM stock_movements WHERE product_id=$1
         ORDER BY created_at DESC, id DESC LIMIT $2`, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*models.StockMovement
	for rows.Next() {
		var m models.StockMovement
		err := rows.Scan(&m.ID, &m.ProductID, &m.ChangeQty, &m.Type, &m.ReferenceID,
			&m.ReferenceType, &m.UnitCost, &m.FxRate, &m.Notes, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		movements = append(movements, &m)
	}
	return movements, nil
}
