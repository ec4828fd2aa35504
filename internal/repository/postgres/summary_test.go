package postgres_test

import (
	"context"
	"testing"
	"time"

	"toolirent/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryRepository_GetSummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewSummaryRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("FROM rentals").
		WillReturnRows(sqlmock.NewRows([]string{"active", "total"}).AddRow(3, 10))
	mock.ExpectQuery("FROM tools").
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(5, 17))

	sum, err := repo.GetSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(3), sum.ActiveRentals)
	assert.Equal(t, int32(10), sum.TotalRentals)
	assert.Equal(t, int32(5), sum.TotalTools)
	assert.Equal(t, int32(17), sum.TotalStock)
}

func TestSummaryRepository_TopTools(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewSummaryRepository(db)
	ctx := context.Background()

	t.Run("Unbounded Window", func(t *testing.T) {
		mock.ExpectQuery("ORDER BY total_quantity DESC, t.id ASC").
			WithArgs(int32(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total_quantity"}).
				AddRow(2, "Drill", 9).
				AddRow(1, "Hammer", 9).
				AddRow(4, "Saw", 3))

		top, err := repo.TopTools(ctx, nil, nil, 5)
		require.NoError(t, err)
		require.Len(t, top, 3)
		assert.Equal(t, int32(2), top[0].ToolID)
		assert.Equal(t, int32(9), top[0].TotalQuantity)
	})

	t.Run("Bounded Window", func(t *testing.T) {
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery("AND r.end_date >= \\$1 AND r.start_date <= \\$2").
			WithArgs(from, to, int32(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total_quantity"}))

		top, err := repo.TopTools(ctx, &from, &to, 5)
		require.NoError(t, err)
		assert.Empty(t, top)
	})
}

func TestSummaryRepository_ListOverdueRentals(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewSummaryRepository(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery("WHERE NOT r.is_returned AND r.end_date < \\$1").
		WithArgs(now).
		WillReturnRows(rentalRow(1, false))

	rentals, err := repo.ListOverdueRentals(ctx, now)
	require.NoError(t, err)
	require.Len(t, rentals, 1)
	assert.Equal(t, int32(1), rentals[0].ID)
}
