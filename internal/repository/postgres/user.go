package postgres

import (
	"context"
	"database/sql"

	"toolirent/internal/domain"
	"toolirent/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, name, role, created_on, updated_on`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, name, role, created_on, updated_on)
		 VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id, created_on, updated_on`,
		u.Email, u.PasswordHash, u.Name, u.Role,
	).Scan(&u.ID, &u.CreatedOn, &u.UpdatedOn)
	return mapError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *userRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
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
