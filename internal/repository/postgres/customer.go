package postgres

import (
	"context"
	"database/sql"

	"toolirent/internal/domain"
	"toolirent/internal/repository"
)

type customerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, name, email, phone_number, is_active, created_on, updated_on`

func scanCustomer(row interface{ Scan(...any) error }) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PhoneNumber, &c.IsActive, &c.CreatedOn, &c.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO customers (name, email, phone_number, is_active, created_on, updated_on)
		 VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id, created_on, updated_on`,
		c.Name, c.Email, c.PhoneNumber, c.IsActive,
	).Scan(&c.ID, &c.CreatedOn, &c.UpdatedOn)
	return mapError(err)
}

func (r *customerRepository) GetByID(ctx context.Context, id int32) (*domain.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE email = $1`, email))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE customers SET name = $1, email = $2, phone_number = $3, is_active = $4, updated_on = NOW() WHERE id = $5`,
		c.Name, c.Email, c.PhoneNumber, c.IsActive, c.ID)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, mapError(err)
		}
		customers = append(customers, *c)
	}
	return customers, mapError(rows.Err())
}
