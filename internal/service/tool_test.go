package service_test

import (
	"context"
	"testing"

	"toolirent/internal/domain"
	"toolirent/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestToolService_CreateTool(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults status to available", func(t *testing.T) {
		toolRepo := new(MockToolRepo)
		svc := service.NewToolService(toolRepo)

		toolRepo.On("Create", ctx, mock.AnythingOfType("*domain.Tool")).Return(nil)

		tool := &domain.Tool{Name: "Hammer", PriceCents: 500, Stock: 3}
		err := svc.CreateTool(ctx, tool)
		require.NoError(t, err)
		assert.Equal(t, domain.ToolStatusAvailable, tool.Status)
	})

	t.Run("rejects invalid fields", func(t *testing.T) {
		svc := service.NewToolService(new(MockToolRepo))

		assert.ErrorIs(t, svc.CreateTool(ctx, &domain.Tool{}), domain.ErrValidation)
		assert.ErrorIs(t, svc.CreateTool(ctx, &domain.Tool{Name: "Saw", PriceCents: -1}), domain.ErrValidation)
		assert.ErrorIs(t, svc.CreateTool(ctx, &domain.Tool{Name: "Saw", Stock: -1}), domain.ErrValidation)
		assert.ErrorIs(t, svc.CreateTool(ctx, &domain.Tool{Name: "Saw", Status: "LOST"}), domain.ErrValidation)
	})
}

func TestToolService_FilterTools(t *testing.T) {
	ctx := context.Background()
	toolRepo := new(MockToolRepo)
	svc := service.NewToolService(toolRepo)

	toolRepo.On("Filter", ctx, "power", domain.ToolStatusAvailable, true).
		Return([]domain.Tool{{ID: 1, Name: "Drill"}}, nil)

	tools, err := svc.FilterTools(ctx, "power", domain.ToolStatusAvailable, true)
	require.NoError(t, err)
	assert.Len(t, tools, 1)

	_, err = svc.FilterTools(ctx, "power", "LOST", false)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestToolService_AdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("positive delta releases", func(t *testing.T) {
		toolRepo := new(MockToolRepo)
		svc := service.NewToolService(toolRepo)

		toolRepo.On("Release", ctx, int32(1), int32(3)).Return(nil)
		toolRepo.On("GetByID", ctx, int32(1)).Return(&domain.Tool{ID: 1, Stock: 8}, nil)

		tool, err := svc.AdjustStock(ctx, 1, 3)
		require.NoError(t, err)
		assert.Equal(t, int32(8), tool.Stock)
	})

	t.Run("negative delta reserves", func(t *testing.T) {
		toolRepo := new(MockToolRepo)
		svc := service.NewToolService(toolRepo)

		toolRepo.On("TryReserve", ctx, int32(1), int32(2)).Return(nil)
		toolRepo.On("GetByID", ctx, int32(1)).Return(&domain.Tool{ID: 1, Stock: 3}, nil)

		_, err := svc.AdjustStock(ctx, 1, -2)
		assert.NoError(t, err)
		toolRepo.AssertExpectations(t)
	})

	t.Run("negative delta cannot cross zero", func(t *testing.T) {
		toolRepo := new(MockToolRepo)
		svc := service.NewToolService(toolRepo)

		toolRepo.On("TryReserve", ctx, int32(1), int32(9)).
			Return(&domain.InsufficientStockError{ToolID: 1, Requested: 9, Available: 3})

		_, err := svc.AdjustStock(ctx, 1, -9)
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	})

	t.Run("zero delta rejected", func(t *testing.T) {
		svc := service.NewToolService(new(MockToolRepo))

		_, err := svc.AdjustStock(ctx, 1, 0)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
