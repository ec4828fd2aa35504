package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"toolirent/internal/domain"
	"toolirent/internal/repository"
)

type toolRepository struct {
	db *sql.DB
}

func NewToolRepository(db *sql.DB) repository.ToolRepository {
	return &toolRepository{db: db}
}

const toolColumns = `id, name, price_cents, description, category, catalog_number, stock, status, created_on, updated_on`

func scanTool(row interface{ Scan(...any) error }) (*domain.Tool, error) {
	t := &domain.Tool{}
	err := row.Scan(&t.ID, &t.Name, &t.PriceCents, &t.Description, &t.Category,
		&t.CatalogNumber, &t.Stock, &t.Status, &t.CreatedOn, &t.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *toolRepository) Create(ctx context.Context, t *domain.Tool) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tools (name, price_cents, description, category, catalog_number, stock, status, created_on, updated_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING id, created_on, updated_on`,
		t.Name, t.PriceCents, t.Description, t.Category, t.CatalogNumber, t.Stock, t.Status,
	).Scan(&t.ID, &t.CreatedOn, &t.UpdatedOn)
	return mapError(err)
}

func (r *toolRepository) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	t, err := scanTool(r.db.QueryRowContext(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (r *toolRepository) Update(ctx context.Context, t *domain.Tool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tools SET name = $1, price_cents = $2, description = $3, category = $4,
		 catalog_number = $5, status = $6, updated_on = NOW() WHERE id = $7`,
		t.Name, t.PriceCents, t.Description, t.Category, t.CatalogNumber, t.Status, t.ID)
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

func (r *toolRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tools WHERE id = $1`, id)
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

func (r *toolRepository) List(ctx context.Context) ([]domain.Tool, error) {
	return r.queryTools(ctx, `SELECT `+toolColumns+` FROM tools ORDER BY id`)
}

func (r *toolRepository) ListAvailable(ctx context.Context) ([]domain.Tool, error) {
	return r.queryTools(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE stock > 0 AND status <> $1 ORDER BY id`,
		domain.ToolStatusBroken)
}

func (r *toolRepository) Filter(ctx context.Context, category string, status domain.ToolStatus, onlyAvailable bool) ([]domain.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE 1=1`
	args := []any{}
	argIdx := 1
	if category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, category)
		argIdx++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}
	if onlyAvailable {
		query += fmt.Sprintf(" AND stock > 0 AND status <> $%d", argIdx)
		args = append(args, domain.ToolStatusBroken)
	}
	query += " ORDER BY id"
	return r.queryTools(ctx, query, args...)
}

func (r *toolRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM tools WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, mapError(err)
		}
		categories = append(categories, c)
	}
	return categories, mapError(rows.Err())
}

// TryReserve is a single conditional update: the stock guard and the
// decrement are one atomic statement, so two concurrent reservations
// for the last unit cannot both succeed.
func (r *toolRepository) TryReserve(ctx context.Context, toolID, quantity int32) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tools SET stock = stock - $1, updated_on = NOW() WHERE id = $2 AND stock >= $1`,
		quantity, toolID)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 1 {
		return nil
	}

	var stock int32
	err = r.db.QueryRowContext(ctx, `SELECT stock FROM tools WHERE id = $1`, toolID).Scan(&stock)
	if err != nil {
		return mapError(err)
	}
	return &domain.InsufficientStockError{ToolID: toolID, Requested: quantity, Available: stock}
}

func (r *toolRepository) Release(ctx context.Context, toolID, quantity int32) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tools SET stock = stock + $1, updated_on = NOW() WHERE id = $2`,
		quantity, toolID)
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

func (r *toolRepository) queryTools(ctx context.Context, query string, args ...any) ([]domain.Tool, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var tools []domain.Tool
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, mapError(err)
		}
		tools = append(tools, *t)
	}
	return tools, mapError(rows.Err())
}
