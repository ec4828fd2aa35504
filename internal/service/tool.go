package service

import (
	"context"

	"toolirent/internal/domain"
	"toolirent/internal/repository"
)

type toolService struct {
	toolRepo repository.ToolRepository
}

func NewToolService(toolRepo repository.ToolRepository) ToolService {
	return &toolService{toolRepo: toolRepo}
}

func (s *toolService) CreateTool(ctx context.Context, tool *domain.Tool) error {
	if err := validateTool(tool); err != nil {
		return err
	}
	if tool.Status == "" {
		tool.Status = domain.ToolStatusAvailable
	}
	return s.toolRepo.Create(ctx, tool)
}

func (s *toolService) GetTool(ctx context.Context, id int32) (*domain.Tool, error) {
	return s.toolRepo.GetByID(ctx, id)
}

func (s *toolService) UpdateTool(ctx context.Context, tool *domain.Tool) error {
	if err := validateTool(tool); err != nil {
		return err
	}
	return s.toolRepo.Update(ctx, tool)
}

func (s *toolService) DeleteTool(ctx context.Context, id int32) error {
	return s.toolRepo.Delete(ctx, id)
}

func (s *toolService) ListTools(ctx context.Context) ([]domain.Tool, error) {
	return s.toolRepo.List(ctx)
}

func (s *toolService) ListAvailableTools(ctx context.Context) ([]domain.Tool, error) {
	return s.toolRepo.ListAvailable(ctx)
}

func (s *toolService) FilterTools(ctx context.Context, category string, status domain.ToolStatus, onlyAvailable bool) ([]domain.Tool, error) {
	if status != "" && !domain.ValidToolStatus(status) {
		return nil, domain.Validationf("unknown tool status %q", status)
	}
	return s.toolRepo.Filter(ctx, category, status, onlyAvailable)
}

func (s *toolService) ListCategories(ctx context.Context) ([]string, error) {
	return s.toolRepo.ListCategories(ctx)
}

func (s *toolService) AdjustStock(ctx context.Context, toolID, delta int32) (*domain.Tool, error) {
	if delta == 0 {
		return nil, domain.Validationf("stock adjustment must be non-zero")
	}
	if delta > 0 {
		if err := s.toolRepo.Release(ctx, toolID, delta); err != nil {
			return nil, err
		}
	} else {
		if err := s.toolRepo.TryReserve(ctx, toolID, -delta); err != nil {
			return nil, err
		}
	}
	return s.toolRepo.GetByID(ctx, toolID)
}

func validateTool(tool *domain.Tool) error {
	if tool.Name == "" {
		return domain.Validationf("tool name is required")
	}
	if tool.PriceCents < 0 {
		return domain.Validationf("tool price must not be negative")
	}
	if tool.Stock < 0 {
		return domain.Validationf("tool stock must not be negative")
	}
	if tool.Status != "" && !domain.ValidToolStatus(tool.Status) {
		return domain.Validationf("unknown tool status %q", tool.Status)
	}
	return nil
}
