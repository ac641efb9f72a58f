package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"retail-backend/internal/models"
)

// ErrInsufficientStock is returned when a stock decrement would take the
// quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

type ProductRepository struct {
	DB *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{DB: db}
}

const productColumns = `id, category_id, name, COALESCE(description, '') as description,
    COALESCE(sku, '') as sku, COALESCE(barcode, '') as barcode, unit,
    stock_quantity, min_stock_level, purchase_price, purchase_currency,
    purchase_fx_rate, sale_price, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.SKU, &p.Barcode,
		&p.Unit, &p.StockQuantity, &p.MinStockLevel, &p.PurchasePrice,
		&p.PurchaseCurrency, &p.PurchaseFxRate, &p.SalePrice, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO products(category_id, name, description, sku, barcode, unit,
             stock_quantity, min_stock_level, purchase_price, purchase_currency,
             purchase_fx_rate, sale_price)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
         RETURNING id, created_at, updated_at`,
		p.CategoryID, p.Name, p.Description, p.SKU, p.Barcode, p.Unit,
		p.StockQuantity, p.MinStockLevel, p.PurchasePrice, p.PurchaseCurrency,
		p.PurchaseFxRate, p.SalePrice,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProductRepository) Get(ctx context.Context, id int) (*models.Product, error) {
	return scanProduct(r.DB.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id=$1`, id))
}

func (r *ProductRepository) GetByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	return scanProduct(r.DB.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE barcode=$1`, barcode))
}

func (r *ProductRepository) List(ctx context.Context, search string, categoryID int) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(` AND (name ILIKE $%d OR sku ILIKE $%d OR barcode ILIKE $%d)`,
			len(args), len(args), len(args))
	}
	if categoryID > 0 {
		args = append(args, categoryID)
		query += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	query += ` ORDER BY name`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *ProductRepository) ListLowStock(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+productColumns+` FROM products
         WHERE stock_quantity <= min_stock_level ORDER BY stock_quantity`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE products SET category_id=$1, name=$2, description=$3, sku=$4, barcode=$5,
             unit=$6, min_stock_level=$7, purchase_price=$8, purchase_currency=$9,
             purchase_fx_rate=$10, sale_price=$11, updated_at=CURRENT_TIMESTAMP
         WHERE id=$12`,
		p.CategoryID, p.Name, p.Description, p.SKU, p.Barcode, p.Unit,
		p.MinStockLevel, p.PurchasePrice, p.PurchaseCurrency,
		p.PurchaseFxRate, p.SalePrice, p.ID)
	return err
}

// AdjustStock applies a signed quantity change inside a transaction. The WHERE
// guard makes an oversell impossible even under concurrent sales.
func (r *ProductRepository) AdjustStock(ctx context.Context, tx pgx.Tx, productID, changeQty int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $1, updated_at=CURRENT_TIMESTAMP
         WHERE id=$2 AND stock_quantity + $1 >= 0`,
		changeQty, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", productID, ErrInsufficientStock)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	return err
}

// Categories

func (r *ProductRepository) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO categories(name, description) VALUES($1, $2)
         RETURNING id, created_at`,
		c.Name, c.Description,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *ProductRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, COALESCE(description, '') as description, created_at
         FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}
	return categories, nil
}

func (r *ProductRepository) DeleteCategory(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	return err
}
