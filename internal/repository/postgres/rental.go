package postgres

import (
	"context"
	"database/sql"
	"sort"

	"toolirent/internal/domain"
	"toolirent/internal/repository"

	"github.com/lib/pq"
)

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalSelect = `SELECT r.id, r.customer_id, r.start_date, r.end_date, r.is_returned, r.created_on, r.updated_on,
       c.id, c.name, c.email, c.phone_number, c.is_active, c.created_on, c.updated_on
FROM rentals r
JOIN customers c ON c.id = r.customer_id`

func scanRental(row interface{ Scan(...any) error }) (*domain.Rental, error) {
	rt := &domain.Rental{Customer: &domain.Customer{}}
	err := row.Scan(
		&rt.ID, &rt.CustomerID, &rt.StartDate, &rt.EndDate, &rt.IsReturned, &rt.CreatedOn, &rt.UpdatedOn,
		&rt.Customer.ID, &rt.Customer.Name, &rt.Customer.Email, &rt.Customer.PhoneNumber,
		&rt.Customer.IsActive, &rt.Customer.CreatedOn, &rt.Customer.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// snapshotTxOptions gives the rental and detail reads one consistent
// snapshot: under the default read-committed level each statement would
// see its own, and a return committing between them could pair a rental
// with details credited back already.
var snapshotTxOptions = sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	tx, err := r.db.BeginTx(ctx, &snapshotTxOptions)
	if err != nil {
		return nil, mapError(err)
	}
	defer tx.Rollback()

	rt, err := scanRental(tx.QueryRowContext(ctx, rentalSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}

	details, err := loadDetails(ctx, tx, []int32{rt.ID})
	if err != nil {
		return nil, mapError(err)
	}
	rt.Details = details[rt.ID]
	return rt, mapError(tx.Commit())
}

func (r *rentalRepository) List(ctx context.Context) ([]domain.Rental, error) {
	tx, err := r.db.BeginTx(ctx, &snapshotTxOptions)
	if err != nil {
		return nil, mapError(err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, rentalSelect+` ORDER BY r.created_on DESC, r.id DESC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rentals []domain.Rental
	var ids []int32
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, mapError(err)
		}
		rentals = append(rentals, *rt)
		ids = append(ids, rt.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	rows.Close()
	if len(rentals) == 0 {
		return rentals, mapError(tx.Commit())
	}

	details, err := loadDetails(ctx, tx, ids)
	if err != nil {
		return nil, mapError(err)
	}
	for i := range rentals {
		rentals[i].Details = details[rentals[i].ID]
	}
	return rentals, mapError(tx.Commit())
}

func loadDetails(ctx context.Context, tx *sql.Tx, rentalIDs []int32) (map[int32][]domain.RentalDetail, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, rental_id, tool_id, quantity FROM rental_details WHERE rental_id = ANY($1) ORDER BY id`,
		pq.Array(rentalIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int32][]domain.RentalDetail)
	for rows.Next() {
		var d domain.RentalDetail
		if err := rows.Scan(&d.ID, &d.RentalID, &d.ToolID, &d.Quantity); err != nil {
			return nil, err
		}
		out[d.RentalID] = append(out[d.RentalID], d)
	}
	return out, rows.Err()
}

func (r *rentalRepository) CreateWithReservations(ctx context.Context, rt *domain.Rental) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback()

	reservations := make(map[int32]int32, len(rt.Details))
	for toolID, qty := range rt.QuantityByTool() {
		reservations[toolID] = -qty
	}
	if err := applyStockDeltas(ctx, tx, reservations); err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO rentals (customer_id, start_date, end_date, is_returned, created_on, updated_on)
		 VALUES ($1, $2, $3, FALSE, NOW(), NOW()) RETURNING id, created_on, updated_on`,
		rt.CustomerID, rt.StartDate, rt.EndDate,
	).Scan(&rt.ID, &rt.CreatedOn, &rt.UpdatedOn)
	if err != nil {
		return mapError(err)
	}

	if err := insertDetails(ctx, tx, rt); err != nil {
		return err
	}
	return mapError(tx.Commit())
}

func (r *rentalRepository) UpdateWithAdjustments(ctx context.Context, rt *domain.Rental) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback()

	// Lock the rental row so concurrent updates serialize on it and the
	// old lines read below cannot change under us.
	var isReturned bool
	err = tx.QueryRowContext(ctx,
		`SELECT is_returned FROM rentals WHERE id = $1 FOR UPDATE`, rt.ID,
	).Scan(&isReturned)
	if err != nil {
		return mapError(err)
	}
	if isReturned {
		return domain.ErrInvalidState
	}

	old := make(map[int32]int32)
	rows, err := tx.QueryContext(ctx,
		`SELECT tool_id, quantity FROM rental_details WHERE rental_id = $1`, rt.ID)
	if err != nil {
		return mapError(err)
	}
	for rows.Next() {
		var toolID, qty int32
		if err := rows.Scan(&toolID, &qty); err != nil {
			rows.Close()
			return mapError(err)
		}
		old[toolID] += qty
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return mapError(err)
	}

	// Stock delta = old reservation released minus new reservation taken.
	deltas := make(map[int32]int32)
	for toolID, qty := range old {
		deltas[toolID] += qty
	}
	for toolID, qty := range rt.QuantityByTool() {
		deltas[toolID] -= qty
	}
	for toolID, delta := range deltas {
		if delta == 0 {
			delete(deltas, toolID)
		}
	}
	if err := applyStockDeltas(ctx, tx, deltas); err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx,
		`UPDATE rentals SET start_date = $1, end_date = $2, updated_on = NOW() WHERE id = $3 RETURNING updated_on`,
		rt.StartDate, rt.EndDate, rt.ID,
	).Scan(&rt.UpdatedOn)
	if err != nil {
		return mapError(err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rental_details WHERE rental_id = $1`, rt.ID); err != nil {
		return mapError(err)
	}
	if err := insertDetails(ctx, tx, rt); err != nil {
		return err
	}
	return mapError(tx.Commit())
}

func (r *rentalRepository) MarkReturned(ctx context.Context, id int32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback()

	// The is_returned guard makes the flip one-shot: a concurrent second
	// return sees zero rows and stock is credited exactly once.
	res, err := tx.ExecContext(ctx,
		`UPDATE rentals SET is_returned = TRUE, updated_on = NOW() WHERE id = $1 AND is_returned = FALSE`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM rentals WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return mapError(err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInvalidState
	}

	releases, err := detailQuantities(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := applyStockDeltas(ctx, tx, releases); err != nil {
		return err
	}
	return mapError(tx.Commit())
}

func (r *rentalRepository) DeleteWithReleases(ctx context.Context, id int32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback()

	var isReturned bool
	err = tx.QueryRowContext(ctx,
		`SELECT is_returned FROM rentals WHERE id = $1 FOR UPDATE`, id,
	).Scan(&isReturned)
	if err != nil {
		return mapError(err)
	}

	// An active rental still holds stock; reverse its effect before the
	// record disappears so the ledger invariant survives the delete.
	if !isReturned {
		releases, err := detailQuantities(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := applyStockDeltas(ctx, tx, releases); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rental_details WHERE rental_id = $1`, id); err != nil {
		return mapError(err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, id); err != nil {
		return mapError(err)
	}
	return mapError(tx.Commit())
}

func insertDetails(ctx context.Context, tx *sql.Tx, rt *domain.Rental) error {
	for i := range rt.Details {
		d := &rt.Details[i]
		d.RentalID = rt.ID
		err := tx.QueryRowContext(ctx,
			`INSERT INTO rental_details (rental_id, tool_id, quantity) VALUES ($1, $2, $3) RETURNING id`,
			d.RentalID, d.ToolID, d.Quantity,
		).Scan(&d.ID)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func detailQuantities(ctx context.Context, tx *sql.Tx, rentalID int32) (map[int32]int32, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT tool_id, quantity FROM rental_details WHERE rental_id = $1`, rentalID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make(map[int32]int32)
	for rows.Next() {
		var toolID, qty int32
		if err := rows.Scan(&toolID, &qty); err != nil {
			return nil, mapError(err)
		}
		out[toolID] += qty
	}
	return out, mapError(rows.Err())
}

// applyStockDeltas applies signed stock changes inside tx. Tool rows are
// locked in ascending id order so two transactions touching the same
// tools cannot deadlock. A negative delta is a reservation: it fails
// with InsufficientStockError when the remaining stock would drop below
// zero, and the enclosing transaction rolls back untouched.
func applyStockDeltas(ctx context.Context, tx *sql.Tx, deltas map[int32]int32) error {
	toolIDs := make([]int32, 0, len(deltas))
	for toolID := range deltas {
		toolIDs = append(toolIDs, toolID)
	}
	sort.Slice(toolIDs, func(i, j int) bool { return toolIDs[i] < toolIDs[j] })

	for _, toolID := range toolIDs {
		delta := deltas[toolID]

		var stock int32
		err := tx.QueryRowContext(ctx,
			`SELECT stock FROM tools WHERE id = $1 FOR UPDATE`, toolID,
		).Scan(&stock)
		if err != nil {
			return mapError(err)
		}
		if stock+delta < 0 {
			return &domain.InsufficientStockError{
				ToolID:    toolID,
				Requested: -delta,
				Available: stock,
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE tools SET stock = stock + $1, updated_on = NOW() WHERE id = $2`, delta, toolID)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}
