package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"retail-backend/internal/models"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

const customerColumns = `id, name, COALESCE(phone, '') as phone, COALESCE(email, '') as email,
    COALESCE(address, '') as address, COALESCE(tax_number, '') as tax_number,
    opening_balance, current_balance, credit_limit, risk_level,
    COALESCE(notes, '') as notes, created_at, updated_at`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.TaxNumber,
		&c.OpeningBalance, &c.CurrentBalance, &c.CreditLimit, &c.RiskLevel,
		&c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO customers(name, phone, email, address, tax_number,
             opening_balance, current_balance, credit_limit, risk_level, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         RETURNING id, created_at, updated_at`,
		c.Name, c.Phone, c.Email, c.Address, c.TaxNumber,
		c.OpeningBalance, c.CurrentBalance, c.CreditLimit, c.RiskLevel, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CustomerRepository) Get(ctx context.Context, id int) (*models.Customer, error) {
	return scanCustomer(r.DB.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id=$1`, id))
}

// GetForUpdate locks the customer row for the duration of the posting
// transaction so concurrent postings against the same customer serialize.
func (r *CustomerRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int) (*models.Customer, error) {
	return scanCustomer(tx.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id=$1 FOR UPDATE`, id))
}

func (r *CustomerRepository) List(ctx context.Context, search string) ([]*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR phone ILIKE $1 OR tax_number ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE customers SET name=$1, phone=$2, email=$3, address=$4, tax_number=$5,
             credit_limit=$6, risk_level=$7, notes=$8, updated_at=CURRENT_TIMESTAMP
         WHERE id=$9`,
		c.Name, c.Phone, c.Email, c.Address, c.TaxNumber,
		c.CreditLimit, c.RiskLevel, c.Notes, c.ID)
	return err
}

// SetBalance writes the new running balance inside a posting transaction.
// Only the posting service calls this, always under a row lock.
func (r *CustomerRepository) SetBalance(ctx context.Context, tx pgx.Tx, id int, balance float64) error {
	_, err := tx.Exec(ctx,
		`UPDATE customers SET current_balance=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		balance, id)
	return err
}

func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	return err
}
