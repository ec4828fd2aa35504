package service

import (
	"context"
	"time"

	"toolirent/internal/domain"
	"toolirent/internal/repository"
)

const defaultTopToolsTake = 5

type adminSummaryService struct {
	summaryRepo repository.SummaryRepository
}

func NewAdminSummaryService(summaryRepo repository.SummaryRepository) AdminSummaryService {
	return &adminSummaryService{summaryRepo: summaryRepo}
}

func (s *adminSummaryService) GetSummary(ctx context.Context) (*repository.Summary, error) {
	return s.summaryRepo.GetSummary(ctx)
}

func (s *adminSummaryService) TopTools(ctx context.Context, from, to *time.Time, take int32) ([]repository.TopTool, error) {
	if take <= 0 {
		take = defaultTopToolsTake
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, domain.Validationf("window end must not precede window start")
	}
	return s.summaryRepo.TopTools(ctx, from, to, take)
}
