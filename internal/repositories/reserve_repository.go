package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"retail-backend/internal/models"
)

type ReserveRepository struct {
	DB *pgxpool.Pool
}

func NewReserveRepository(db *pgxpool.Pool) *ReserveRepository {
	return &ReserveRepository{DB: db}
}

const reserveColumns = `id, reserve_no, customer_id, status, is_converted, converted_at,
    expires_at, COALESCE(notes, '') as notes, created_at`

func scanReserve(row pgx.Row) (*models.Reserve, error) {
	var res models.Reserve
	err := row.Scan(&res.ID, &res.ReserveNo, &res.CustomerID, &res.Status,
		&res.IsConverted, &res.ConvertedAt, &res.ExpiresAt, &res.Notes, &res.CreatedAt)
	return &res, err
}

func (r *ReserveRepository) Create(ctx context.Context, res *models.Reserve) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO reserves(reserve_no, customer_id, status, expires_at, notes)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at`,
		res.ReserveNo, res.CustomerID, res.Status, res.ExpiresAt, res.Notes,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		return err
	}

	for i := range res.Items {
		item := &res.Items[i]
		item.ReserveID = res.ID
		err := r.DB.QueryRow(ctx,
			`INSERT INTO reserve_items(reserve_id, product_id, qty_reserved, unit_price)
             VALUES($1, $2, $3, $4) RETURNING id`,
			item.ReserveID, item.ProductID, item.QtyReserved, item.UnitPrice,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ReserveRepository) Get(ctx context.Context, id int) (*models.Reserve, error) {
	res, err := scanReserve(r.DB.QueryRow(ctx,
		`SELECT `+reserveColumns+` FROM reserves WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	res.Items = items
	return res, nil
}

// GetForUpdate locks the reserve row inside a conversion transaction so the
// same reserve cannot be converted twice concurrently.
func (r *ReserveRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int) (*models.Reserve, error) {
	res, err := scanReserve(tx.QueryRow(ctx,
		`SELECT `+reserveColumns+` FROM reserves WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx,
		`SELECT id, reserve_id, product_id, qty_reserved, unit_price
         FROM reserve_items WHERE reserve_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.ReserveItem
		err := rows.Scan(&item.ID, &item.ReserveID, &item.ProductID,
			&item.QtyReserved, &item.UnitPrice)
		if err != nil {
			return nil, err
		}
		res.Items = append(res.Items, item)
	}
	return res, nil
}

func (r *ReserveRepository) listItems(ctx context.Context, reserveID int) ([]models.ReserveItem, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, reserve_id, product_id, qty_reserved, unit_price
         FROM reserve_items WHERE reserve_id=$1 ORDER BY id`, reserveID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ReserveItem
	for rows.Next() {
		var item models.ReserveItem
		err := rows.Scan(&item.ID, &item.ReserveID, &item.ProductID,
			&item.QtyReserved, &item.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *ReserveRepository) List(ctx context.Context, status models.ReserveStatus) ([]*models.Reserve, error) {
	query := `SELECT ` + reserveColumns + ` FROM reserves`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reserves []*models.Reserve
	for rows.Next() {
		res, err := scanReserve(rows)
		if err != nil {
			return nil, err
		}
		reserves = append(reserves, res)
	}
	return reserves, nil
}

// MarkConverted flips the reserve to COMPLETED inside the conversion transaction.
func (r *ReserveRepository) MarkConverted(ctx context.Context, tx pgx.Tx, id int) error {
	_, err := tx.Exec(ctx,
		`UPDATE reserves SET status='COMPLETED', is_converted=TRUE, converted_at=NOW()
         WHERE id=$1`, id)
	return err
}

func (r *ReserveRepository) SetStatus(ctx context.Context, id int, status models.ReserveStatus) error {
	_, err := r.DB.Exec(ctx, `UPDATE reserves SET status=$1 WHERE id=$2`, status, id)
	return err
}
