package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/dto"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/scoring"
)

const (
	segmentLimit       = 100
	defaultRecentLimit = 20
	topEventsLimit     = 15
	trendDays          = 7
)

// ReportService answers the read-only dashboard queries
type ReportService struct {
	repository repository.ReportRepository
	policy     *scoring.Policy
	log        *zap.Logger
	now        func() time.Time
}

// NewReportService creates a new report service
func NewReportService(repo repository.ReportRepository, policy *scoring.Policy, log *zap.Logger) *ReportService {
	return &ReportService{
		repository: repo,
		policy:     policy,
		log:        log,
		now:        time.Now,
	}
}

// Summary runs the headline counters concurrently
func (s *ReportService) Summary(ctx context.Context) (*dto.SummaryResponse, error) {
	var (
		summary       dto.SummaryResponse
		avgScore      float64
		totalDuration int64
	)

	hvpScore, _ := s.policy.MinScore(domain.StageHVP)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary.UniqueLeads, err = s.repository.CountLeads(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.HVPCount, err = s.repository.CountLeadsWithMinScore(gctx, hvpScore)
		return err
	})
	g.Go(func() (err error) {
		summary.EmailsCaptured, err = s.repository.CountLeadsWithEmail(gctx)
		return err
	})
	g.Go(func() (err error) {
		avgScore, err = s.repository.AverageLeadScore(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.TotalSessions, totalDuration, err = s.repository.SessionTotals(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard summary: %w", err)
	}

	summary.AvgLeadScore = math.Round(avgScore)
	summary.TotalDurationMs = totalDuration
	if summary.TotalSessions > 0 {
		avgMs := float64(totalDuration) / float64(summary.TotalSessions)
		summary.AvgSessionSeconds = math.Round(avgMs/10) / 100
	}

	return &summary, nil
}

// StageDistribution counts leads per stage
func (s *ReportService) StageDistribution(ctx context.Context) ([]dto.StageCount, error) {
	groups, err := s.repository.StageDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage distribution: %w", err)
	}

	out := make([]dto.StageCount, 0, len(groups))
	for _, g := range groups {
		stage := g.Stage
		if stage == "" {
			stage = "UNKNOWN"
		}
		out = append(out, dto.StageCount{Stage: stage, Count: g.Count})
	}
	return out, nil
}

// Segment lists the top leads of a segment by score. HVP is selected by
// score alone, SQL by stage within its score band, MQL by stage.
func (s *ReportService) Segment(ctx context.Context, segment string) ([]dto.LeadView, error) {
	filter, err := s.segmentFilter(segment)
	if err != nil {
		return nil, err
	}

	leads, err := s.repository.ListLeads(ctx, filter, segmentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	out := make([]dto.LeadView, 0, len(leads))
	for _, l := range leads {
		out = append(out, dto.LeadView{
			ID:          l.ID,
			AnonymousID: l.AnonymousID,
			Email:       l.Email,
			LeadScore:   l.LeadScore,
			Stage:       string(l.Stage),
			CreatedAt:   l.CreatedAt,
			LastSeen:    l.LastSeen,
		})
	}
	return out, nil
}

func (s *ReportService) segmentFilter(segment string) (repository.LeadFilter, error) {
	switch strings.ToUpper(segment) {
	case "", "ALL":
		return repository.LeadFilter{}, nil
	case string(domain.StageHVP):
		hvp, _ := s.policy.MinScore(domain.StageHVP)
		return repository.LeadFilter{MinScore: &hvp}, nil
	case string(domain.StageSQL):
		sql, _ := s.policy.MinScore(domain.StageSQL)
		hvp, _ := s.policy.MinScore(domain.StageHVP)
		return repository.LeadFilter{Stage: domain.StageSQL, MinScore: &sql, MaxScore: &hvp}, nil
	case string(domain.StageMQL):
		return repository.LeadFilter{Stage: domain.StageMQL}, nil
	default:
		return repository.LeadFilter{}, fmt.Errorf("%w: unknown segment %q (supported: HVP, SQL, MQL, ALL)", ErrValidation, segment)
	}
}

// RecentEvents lists the newest events. A non-positive limit uses the default.
func (s *ReportService) RecentEvents(ctx context.Context, limit int) ([]dto.EventView, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	events, err := s.repository.RecentEvents(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent events: %w", err)
	}

	out := make([]dto.EventView, 0, len(events))
	for _, e := range events {
		out = append(out, dto.EventView{
			ID:          e.ID,
			AnonymousID: e.AnonymousID,
			Email:       e.Email,
			EventType:   e.EventType,
			Points:      e.Points,
			PagePath:    e.PagePath,
			UTMSource:   e.UTMSource,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out, nil
}

// Trends returns per-day event counts for the last seven UTC days,
// oldest first, with empty days reported as zero
func (s *ReportService) Trends(ctx context.Context) ([]dto.DailyCount, error) {
	today := startOfUTCDay(s.now())
	from := today.AddDate(0, 0, -(trendDays - 1))
	to := today.AddDate(0, 0, 1)

	counts, err := s.repository.DailyEventCounts(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load event trends: %w", err)
	}

	byDay := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDay[c.Day.UTC().Format(time.DateOnly)] += c.Count
	}

	out := make([]dto.DailyCount, 0, trendDays)
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(time.DateOnly)
		out = append(out, dto.DailyCount{Date: key, Count: byDay[key]})
	}
	return out, nil
}

// TopEvents returns the most frequent event types
func (s *ReportService) TopEvents(ctx context.Context) ([]dto.EventTypeCount, error) {
	top, err := s.repository.TopEventTypes(ctx, topEventsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top events: %w", err)
	}

	out := make([]dto.EventTypeCount, 0, len(top))
	for _, t := range top {
		out = append(out, dto.EventTypeCount{EventType: t.EventType, Count: t.Count})
	}
	return out, nil
}
