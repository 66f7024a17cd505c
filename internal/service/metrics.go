package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/dto"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository"
)

const maxHourlyRangeSeconds = 90 * 24 * 3600

var validGroupBy = map[string]bool{"hour": true, "day": true, "stage": true}

// MetricsService queries the analytics mirror
type MetricsService struct {
	repository repository.AnalyticsRepository
	log        *zap.Logger
}

// NewMetricsService creates a new metrics service. repo may be nil, in which
// case every query fails with ErrUnavailable.
func NewMetricsService(repo repository.AnalyticsRepository, log *zap.Logger) *MetricsService {
	return &MetricsService{
		repository: repo,
		log:        log,
	}
}

// GetMetrics retrieves aggregated metrics from the analytics mirror
func (s *MetricsService) GetMetrics(ctx context.Context, req *dto.GetMetricsRequest) (*dto.GetMetricsResponse, error) {
	if s.repository == nil {
		return nil, fmt.Errorf("%w: analytics mirror", ErrUnavailable)
	}

	if req.From > req.To {
		s.log.Warn("Invalid time range for metrics",
			zap.Int64("from", req.From),
			zap.Int64("to", req.To),
			zap.String("event_type", req.EventType))
		return nil, fmt.Errorf("%w: from must be less than or equal to to", ErrValidation)
	}

	if req.GroupBy != "" {
		if !validGroupBy[req.GroupBy] {
			s.log.Warn("Invalid group_by value", zap.String("group_by", req.GroupBy))
			return nil, fmt.Errorf("%w: invalid group_by value %q (supported: hour, day, stage)", ErrValidation, req.GroupBy)
		}

		if req.GroupBy == "hour" && req.To-req.From > maxHourlyRangeSeconds {
			days := (req.To - req.From) / (24 * 3600)
			return nil, fmt.Errorf("%w: time range too large for hourly grouping (max 90 days, got %d days)", ErrValidation, days)
		}
	}

	s.log.Info("Querying metrics",
		zap.String("event_type", req.EventType),
		zap.Int64("from", req.From),
		zap.Int64("to", req.To),
		zap.String("group_by", req.GroupBy))

	result, err := s.repository.GetMetrics(ctx, repository.MetricsQuery{
		EventType: req.EventType,
		From:      req.From,
		To:        req.To,
		GroupBy:   req.GroupBy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics from repository: %w", err)
	}

	response := &dto.GetMetricsResponse{
		EventType:   req.EventType,
		From:        req.From,
		To:          req.To,
		TotalCount:  result.TotalCount,
		UniqueCount: result.UniqueCount,
		TotalPoints: result.TotalPoints,
		GroupBy:     req.GroupBy,
		Groups:      make([]dto.MetricsGroupData, 0, len(result.Groups)),
	}

	for _, group := range result.Groups {
		response.Groups = append(response.Groups, dto.MetricsGroupData{
			GroupValue: group.GroupValue,
			TotalCount: group.TotalCount,
		})
	}

	return response, nil
}
