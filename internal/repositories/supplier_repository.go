package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"retail-backend/internal/models"
)

type SupplierRepository struct {
	DB *pgxpool.Pool
}

func NewSupplierRepository(db *pgxpool.Pool) *SupplierRepository {
	return &SupplierRepository{DB: db}
}

func (r *SupplierRepository) Create(ctx context.Context, s *models.Supplier) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO suppliers(name, contact_person, phone, email, address)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at, updated_at`,
		s.Name, s.ContactPerson, s.Phone, s.Email, s.Address,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *SupplierRepository) Get(ctx context.Context, id int) (*models.Supplier, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, COALESCE(contact_person, '') as contact_person,
             COALESCE(phone, '') as phone, COALESCE(email, '') as email,
             COALESCE(address, '') as address, created_at, updated_at
         FROM suppliers WHERE id=$1`, id)

	var s models.Supplier
	err := row.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Phone, &s.Email,
		&s.Address, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *SupplierRepository) List(ctx context.Context) ([]*models.Supplier, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, COALESCE(contact_person, '') as contact_person,
             COALESCE(phone, '') as phone, COALESCE(email, '') as email,
             COALESCE(address, '') as address, created_at, updated_at
         FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []*models.Supplier
	for rows.Next() {
		var s models.Supplier
		err := rows.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Phone, &s.Email,
			&s.Address, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, &s)
	}
	return suppliers, nil
}

func (r *SupplierRepository) Update(ctx context.Context, s *models.Supplier) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE suppliers SET name=$1, contact_person=$2, phone=$3, email=$4, address=$5,
             updated_at=CURRENT_TIMESTAMP
         WHERE id=$6`,
		s.Name, s.ContactPerson, s.Phone, s.Email, s.Address, s.ID)
	return err
}

func (r *SupplierRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM suppliers WHERE id=$1`, id)
	return err
}

// UpsertProductSupplier records or refreshes a supplier's price for a product,
// snapshotting the fx rate at purchase time.
func (r *SupplierRepository) UpsertProductSupplier(ctx context.Context, ps *models.ProductSupplier) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO product_suppliers(product_id, supplier_id, unit_price, currency,
             fx_rate_at_purchase, last_purchase_date)
         VALUES($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
         ON CONFLICT (product_id, supplier_id) DO UPDATE SET
             unit_price=EXCLUDED.unit_price,
             currency=EXCLUDED.currency,
             fx_rate_at_purchase=EXCLUDED.fx_rate_at_purchase,
             last_purchase_date=CURRENT_TIMESTAMP,
             updated_at=CURRENT_TIMESTAMP
         RETURNING id, created_at, updated_at`,
		ps.ProductID, ps.SupplierID, ps.UnitPrice, ps.Currency, ps.FxRateAtPurchase,
	).Scan(&ps.ID, &ps.CreatedAt, &ps.UpdatedAt)
}

func (r *SupplierRepository) ListByProduct(ctx context.Context, productID int) ([]*models.ProductSupplier, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT ps.id, ps.product_id, ps.supplier_id, s.name, ps.unit_price, ps.currency,
             ps.fx_rate_at_purchase, ps.last_purchase_date, ps.created_at, ps.updated_at
         FROM product_suppliers ps
         JOIN suppliers s ON s.id = ps.supplier_id
         WHERE ps.product_id=$1
         ORDER BY s.name`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*models.ProductSupplier
	for rows.Next() {
		var ps models.ProductSupplier
		err := rows.Scan(&ps.ID, &ps.ProductID, &ps.SupplierID, &ps.SupplierName,
			&ps.UnitPrice, &ps.Currency, &ps.FxRateAtPurchase, &ps.LastPurchaseDate,
			&ps.CreatedAt, &ps.UpdatedAt)
		if err != nil {
			return nil, err
		}
		links = append(links, &ps)
	}
	return links, nil
}

func (r *SupplierRepository) DeleteProductSupplier(ctx context.Context, productID, supplierID int) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM product_suppliers WHERE product_id=$1 AND supplier_id=$2`,
		productID, supplierID)
	return err
}
