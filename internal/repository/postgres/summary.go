package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"toolirent/internal/domain"
	"toolirent/internal/repository"
)

type summaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) repository.SummaryRepository {
	return &summaryRepository{db: db}
}

func (r *summaryRepository) GetSummary(ctx context.Context) (*repository.Summary, error) {
	s := &repository.Summary{}

	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FILTER (WHERE NOT is_returned), count(*) FROM rentals`,
	).Scan(&s.ActiveRentals, &s.TotalRentals)
	if err != nil {
		return nil, mapError(err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT count(*), COALESCE(sum(stock), 0) FROM tools`,
	).Scan(&s.TotalTools, &s.TotalStock)
	if err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

func (r *summaryRepository) TopTools(ctx context.Context, from, to *time.Time, limit int32) ([]repository.TopTool, error) {
	// A rental counts when its [start_date, end_date] range intersects
	// the requested window; an open bound matches everything.
	query := `SELECT t.id, t.name, SUM(rd.quantity) AS total_quantity
FROM rental_details rd
JOIN rentals r ON r.id = rd.rental_id
JOIN tools t ON t.id = rd.tool_id
WHERE 1=1`
	args := []any{}
	argIdx := 1
	if from != nil {
		query += fmt.Sprintf(" AND r.end_date >= $%d", argIdx)
		args = append(args, *from)
		argIdx++
	}
	if to != nil {
		query += fmt.Sprintf(" AND r.start_date <= $%d", argIdx)
		args = append(args, *to)
		argIdx++
	}
	query += fmt.Sprintf(" GROUP BY t.id, t.name ORDER BY total_quantity DESC, t.id ASC LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []repository.TopTool
	for rows.Next() {
		var tt repository.TopTool
		if err := rows.Scan(&tt.ToolID, &tt.Name, &tt.TotalQuantity); err != nil {
			return nil, mapError(err)
		}
		out = append(out, tt)
	}
	return out, mapError(rows.Err())
}

func (r *summaryRepository) ListOverdueRentals(ctx context.Context, now time.Time) ([]domain.Rental, error) {
	rows, err := r.db.QueryContext(ctx, rentalSelect+
		` WHERE NOT r.is_returned AND r.end_date < $1 ORDER BY r.end_date`, now)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, mapError(err)
		}
		rentals = append(rentals, *rt)
	}
	return rentals, mapError(rows.Err())
}
