package postgres_test

import (
	"context"
	"testing"
	"time"

	"toolirent/internal/domain"
	"toolirent/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rentalCols = []string{
	"id", "customer_id", "start_date", "end_date", "is_returned", "created_on", "updated_on",
	"c_id", "c_name", "c_email", "c_phone_number", "c_is_active", "c_created_on", "c_updated_on",
}

func rentalRow(id int32, returned bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(rentalCols).AddRow(
		id, int32(7), now, now.Add(48*time.Hour), returned, now, now,
		int32(7), "Member", "member@toolirent.local", "", true, now, now,
	)
}

func TestRentalRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Both reads run inside one read-only transaction so the rental
		// and its lines come from the same snapshot.
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT r.id, r.customer_id").
			WithArgs(int32(1)).
			WillReturnRows(rentalRow(1, false))
		mock.ExpectQuery("SELECT id, rental_id, tool_id, quantity FROM rental_details").
			WillReturnRows(sqlmock.NewRows([]string{"id", "rental_id", "tool_id", "quantity"}).
				AddRow(10, 1, 3, 2))
		mock.ExpectCommit()

		rt, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int32(1), rt.ID)
		assert.Equal(t, "member@toolirent.local", rt.Customer.Email)
		require.Len(t, rt.Details, 1)
		assert.Equal(t, int32(2), rt.Details[0].Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT r.id, r.customer_id").
			WithArgs(int32(404)).
			WillReturnRows(sqlmock.NewRows(rentalCols))
		mock.ExpectRollback()

		_, err := repo.GetByID(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRentalRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT r.id, r.customer_id").
			WillReturnRows(rentalRow(2, false))
		mock.ExpectQuery("SELECT id, rental_id, tool_id, quantity FROM rental_details").
			WillReturnRows(sqlmock.NewRows([]string{"id", "rental_id", "tool_id", "quantity"}).
				AddRow(11, 2, 3, 1))
		mock.ExpectCommit()

		rentals, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, rentals, 1)
		require.Len(t, rentals[0].Details, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT r.id, r.customer_id").
			WillReturnRows(sqlmock.NewRows(rentalCols))
		mock.ExpectCommit()

		rentals, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, rentals)
	})
}

func TestRentalRepository_CreateWithReservations(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		rt := &domain.Rental{
			CustomerID: 7,
			StartDate:  now,
			EndDate:    now.Add(48 * time.Hour),
			Details:    []domain.RentalDetail{{ToolID: 3, Quantity: 2}},
		}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT stock FROM tools WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(5))
		mock.ExpectExec("UPDATE tools SET stock = stock \\+ \\$1").
			WithArgs(int32(-2), int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO rentals").
			WithArgs(rt.CustomerID, rt.StartDate, rt.EndDate).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_on", "updated_on"}).AddRow(42, now, now))
		mock.ExpectQuery("INSERT INTO rental_details").
			WithArgs(int32(42), int32(3), int32(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
		mock.ExpectCommit()

		err := repo.CreateWithReservations(ctx, rt)
		require.NoError(t, err)
		assert.Equal(t, int32(42), rt.ID)
		assert.Equal(t, int32(10), rt.Details[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insufficient Stock Rolls Back", func(t *testing.T) {
		rt := &domain.Rental{
			CustomerID: 7,
			StartDate:  now,
			EndDate:    now.Add(48 * time.Hour),
			Details:    []domain.RentalDetail{{ToolID: 3, Quantity: 4}},
		}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT stock FROM tools WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.CreateWithReservations(ctx, rt)
		require.Error(t, err)

		var stockErr *domain.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, int32(3), stockErr.ToolID)
		assert.Equal(t, int32(4), stockErr.Requested)
		assert.Equal(t, int32(1), stockErr.Available)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Locks Tools In Ascending Id Order", func(t *testing.T) {
		rt := &domain.Rental{
			CustomerID: 7,
			StartDate:  now,
			EndDate:    now.Add(48 * time.Hour),
			Details: []domain.RentalDetail{
				{ToolID: 9, Quantity: 1},
				{ToolID: 2, Quantity: 1},
			},
		}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT stock FROM tools WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(2)).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(5))
		mock.ExpectExec("UPDATE tools SET stock = stock \\+ \\$1").
			WithArgs(int32(-1), int32(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT stock FROM tools WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(9)).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(5))
		mock.ExpectExec("UPDATE tools SET stock = stock \\+ \\$1").
			WithArgs(int32(-1), int32(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO rentals").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_on", "updated_on"}).AddRow(43, now, now))
		mock.ExpectQuery("INSERT INTO rental_details").
			WithArgs(int32(43), int32(9), int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		mock.ExpectQuery("INSERT INTO rental_details").
			WithArgs(int32(43), int32(2), int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
		mock.ExpectCommit()

		err := repo.CreateWithReservations(ctx, rt)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRentalRepository_UpdateWithAdjustments(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Applies Only The Delta", func(t *testing.T) {
		// Line grows 3 -> 5, so stock moves by -2.
		rt := &domain.Rental{
			ID:        1,
			StartDate: now,
			EndDate:   now.Add(48 * time.Hour),
			Details:   []domain.RentalDetail{{ToolID: 3, Quantity: 5}},
		}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT is_returned FROM rentals WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"is_returned"}).AddRow(false))
		mock.ExpectQuery("SELECT tool_id, quantity FROM rental_details").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"tool_id", "quantity"}).AddRow(3, 3))
		mock.ExpectQuery("SELECT stock FROM tools WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(2))
		mock.ExpectExec("UPDATE tools SET stock = stock \\+ \\$1").
			WithArgs(int32(-2), int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("UPDATE rentals SET start_date").
			WithArgs(rt.StartDate, rt.EndDate, rt.ID).
			WillReturnRows(sqlmock.NewRows([]string{"updated_on"}).AddRow(now))
		mock.ExpectExec("DELETE FROM rental_details").
			WithArgs(int32(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO rental_details").
			WithArgs(int32(1), int32(3), int32(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(20))
		mock.ExpectCommit()

		err := repo.UpdateWithAdjustments(ctx, rt)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Shrinking A Line Releases Stock", func(t *testing.T) {
		// Line shrinks 3 -> 1, so stock moves by +2.
		rt := &domain.Rental{
			ID:        1,
			StartDate: now,
			EndDate:   now.Add(48 * time.Hour),
			Details:   []domain.RentalDetail{{ToolID: 3, Quantity: 1}},
		}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT is_returned FROM rentals WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"is_returned"}).AddRow(false))
		mock.ExpectQuery("SELECT tool_id, quantity FROM rental_details").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"tool_id", "quantity"}).AddRow(3, 3))
		mock.ExpectQuery("SELECT stock FROM tools WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(0))
		mock.ExpectExec("UPDATE tools SET stock = stock \\+ \\$1").
			WithArgs(int32(2), int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("UPDATE rentals SET start_date").
			WithArgs(rt.StartDate, rt.EndDate, rt.ID).
			WillReturnRows(sqlmock.NewRows([]string{"updated_on"}).AddRow(now))
		mock.ExpectExec("DELETE FROM rental_details").
			WithArgs(int32(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO rental_details").
			WithArgs(int32(1), int32(3), int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
		mock.ExpectCommit()

		err := repo.UpdateWithAdjustments(ctx, rt)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Returned Rental Is Invalid State", func(t *testing.T) {
		rt := &domain.Rental{ID: 1, StartDate: now, EndDate: now.Add(time.Hour)}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT is_returned FROM rentals WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"is_returned"}).AddRow(true))
		mock.ExpectRollback()

		err := repo.UpdateWithAdjustments(ctx, rt)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRentalRepository_MarkReturned(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Flips Once And Credits Stock", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE rentals SET is_returned = TRUE").
			WithArgs(int32(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT tool_id, quantity FROM rental_details").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"tool_id", "quantity"}).AddRow(3, 2))
		mock.ExpectQuery("SELECT stock FROM tools WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(5))
		mock.ExpectExec("UPDATE tools SET stock = stock \\+ \\$1").
			WithArgs(int32(2), int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.MarkReturned(ctx, 1)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Second Return Is Invalid State", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE rentals SET is_returned = TRUE").
			WithArgs(int32(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		err := repo.MarkReturned(ctx, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Missing Rental Is Not Found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE rentals SET is_returned = TRUE").
			WithArgs(int32(404)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int32(404)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()

		err := repo.MarkReturned(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRentalRepository_DeleteWithReleases(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Active Rental Releases Stock First", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT is_returned FROM rentals WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"is_returned"}).AddRow(false))
		mock.ExpectQuery("SELECT tool_id, quantity FROM rental_details").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"tool_id", "quantity"}).AddRow(3, 2))
		mock.ExpectQuery("SELECT stock FROM tools WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(5))
		mock.ExpectExec("UPDATE tools SET stock = stock \\+ \\$1").
			WithArgs(int32(2), int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM rental_details").
			WithArgs(int32(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM rentals").
			WithArgs(int32(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.DeleteWithReleases(ctx, 1)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Returned Rental Deletes Without Releasing", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT is_returned FROM rentals WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(2)).
			WillReturnRows(sqlmock.NewRows([]string{"is_returned"}).AddRow(true))
		mock.ExpectExec("DELETE FROM rental_details").
			WithArgs(int32(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM rentals").
			WithArgs(int32(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.DeleteWithReleases(ctx, 2)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Rental Is Not Found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT is_returned FROM rentals WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(404)).
			WillReturnRows(sqlmock.NewRows([]string{"is_returned"}))
		mock.ExpectRollback()

		err := repo.DeleteWithReleases(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
