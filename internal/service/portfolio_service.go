package service

import (
	"context"
	"time"

	"github.com/spec-kit/loan-service/internal/domain"
	"github.com/spec-kit/loan-service/internal/repository"
	apperrors "github.com/spec-kit/loan-service/pkg/util"
)

// PortfolioService computes admin portfolio metrics.
type PortfolioService struct {
	apps repository.LoanApplicationRepository
}

// NewPortfolioService builds the service.
func NewPortfolioService(apps repository.LoanApplicationRepository) *PortfolioService {
	return &PortfolioService{apps: apps}
}

// Metrics aggregates applications applied within [start, end].
func (s *PortfolioService) Metrics(ctx context.Context, start, end time.Time) (domain.PortfolioMetrics, error) {
	if !start.Before(end) {
		return domain.PortfolioMetrics{}, apperrors.NewValidationError("start date must be before end date", map[string]any{
			"startDate": start.Format(time.DateOnly),
			"endDate":   end.Format(time.DateOnly),
		})
	}

	rows, err := s.apps.AggregateByStatus(ctx, start, end)
	if err != nil {
		return domain.PortfolioMetrics{}, err
	}
	return domain.BuildPortfolioMetrics(start, end, rows), nil
}
