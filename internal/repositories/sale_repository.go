package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"retail-backend/internal/models"
)

type SaleRepository struct {
	DB *pgxpool.Pool
}

func NewSaleRepository(db *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{DB: db}
}

const saleColumns = `id, sale_no, customer_id, sale_date, subtotal, tax, total_amount,
    tax_included, tax_rate, payment_type, currency, fx_rate, is_from_reserve,
    reserve_id, due_date, payment_status, COALESCE(notes, '') as notes, created_at`

func scanSale(row pgx.Row) (*models.Sale, error) {
	var s models.Sale
	err := row.Scan(&s.ID, &s.SaleNo, &s.CustomerID, &s.SaleDate, &s.Subtotal, &s.Tax,
		&s.TotalAmount, &s.TaxIncluded, &s.TaxRate, &s.PaymentType, &s.Currency,
		&s.FxRate, &s.IsFromReserve, &s.ReserveID, &s.DueDate, &s.PaymentStatus,
		&s.Notes, &s.CreatedAt)
	return &s, err
}

// Create writes the sale document and its items inside a posting transaction.
func (r *SaleRepository) Create(ctx context.Context, tx pgx.Tx, s *models.Sale) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO sales(sale_no, customer_id, subtotal, tax, total_amount,
             tax_included, tax_rate, payment_type, currency, fx_rate,
             is_from_reserve, reserve_id, due_date, payment_status, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
         RETURNING id, sale_date, created_at`,
		s.SaleNo, s.CustomerID, s.Subtotal, s.Tax, s.TotalAmount,
		s.TaxIncluded, s.TaxRate, s.PaymentType, s.Currency, s.FxRate,
		s.IsFromReserve, s.ReserveID, s.DueDate, s.PaymentStatus, s.Notes,
	).Scan(&s.ID, &s.SaleDate, &s.CreatedAt)
	if err != nil {
		return err
	}

	for i := range s.Items {
		item := &s.Items[i]
		item.SaleID = s.ID
		err := tx.QueryRow(ctx,
			`INSERT INTO sale_items(sale_id, product_id, quantity, unit_price, subtotal)
             VALUES($1, $2, $3, $4, $5) RETURNING id`,
			item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

func (r *SaleRepository) Get(ctx context.Context, id int) (*models.Sale, error) {
	sale, err := scanSale(r.DB.QueryRow(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, sale_id, product_id, quantity, unit_price, subtotal
         FROM sale_items WHERE sale_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.SaleItem
		err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity,
			&item.UnitPrice, &item.Subtotal)
		if err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, item)
	}
	return sale, nil
}

func (r *SaleRepository) List(ctx context.Context, customerID int, start, end *time.Time) ([]*models.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`
	args := []interface{}{}
	if customerID > 0 {
		args = append(args, customerID)
		query += fmt.Sprintf(` AND customer_id = $%d`, len(args))
	}
	if start != nil {
		args = append(args, *start)
		query += fmt.Sprintf(` AND sale_date >= $%d`, len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += fmt.Sprintf(` AND sale_date <= $%d`, len(args))
	}
	query += ` ORDER BY sale_date DESC, id DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*models.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, nil
}

func (r *SaleRepository) SetPaymentStatus(ctx context.Context, id int, status models.PaymentStatus) error {
	_, err := r.DB.Exec(ctx, `UPDATE sales SET payment_status=$1 WHERE id=$2`, status, id)
	return err
}

// ListOverdue returns unpaid credit sales past their due date.
func (r *SaleRepository) ListOverdue(ctx context.Context) ([]*models.Sale, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+saleColumns+` FROM sales
         WHERE due_date IS NOT NULL AND due_date < NOW()
           AND payment_status IN ('PENDING', 'PARTIALLY_PAID', 'OVERDUE')
         ORDER BY due_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*models.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, nil
}

// CreateReturn records a sales return line inside a posting transaction.
func (r *SaleRepository) CreateReturn(ctx context.Context, tx pgx.Tx, ret *models.SalesReturn) error {
	return tx.QueryRow(ctx,
		`INSERT INTO sales_returns(sale_id, product_id, quantity, refund_amount, is_reserve_release)
         VALUES($1, $2, $3, $4, $5) RETURNING id, created_at`,
		ret.SaleID, ret.ProductID, ret.Quantity, ret.RefundAmount, ret.IsReserveRelease,
	).Scan(&ret.ID, &ret.CreatedAt)
}

// ReturnedQuantity sums previously returned units of a product on a sale,
// used to reject over-returns. Reserve-release rows are excluded: those
// quantities were never sold, so they cannot be returned.
func (r *SaleRepository) ReturnedQuantity(ctx context.Context, tx pgx.Tx, saleID, productID int) (int, error) {
	var qty int
	err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM sales_returns
         WHERE sale_id=$1 AND product_id=$2 AND NOT is_reserve_release`, saleID, productID,
	).Scan(&qty)
	return qty, err
}

func (r *SaleRepository) ListReturns(ctx context.Context, saleID int) ([]*models.SalesReturn, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, sale_id, product_id, quantity, refund_amount, is_reserve_release, created_at
         FROM sales_returns WHERE sale_id=$1 ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var returns []*models.SalesReturn
	for rows.Next() {
		var ret models.SalesReturn
		err := rows.Scan(&ret.ID, &ret.SaleID, &ret.ProductID, &ret.Quantity,
			&ret.RefundAmount, &ret.IsReserveRelease, &ret.CreatedAt)
		if err != nil {
			return nil, err
		}
		returns = append(returns, &ret)
	}
	return returns, nil
}
