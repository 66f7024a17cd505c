package service

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/dto"
)

const (
	directSource     = "(direct)"
	noReferrer       = "(none)"
	referrerTopLimit = 10
)

var paidMediums = map[string]bool{"paid": true, "cpc": true, "ppc": true}

// Journey summarises session sources: referrer hosts, paid share and
// average session length
func (s *ReportService) Journey(ctx context.Context) (*dto.JourneyResponse, error) {
	sources, err := s.repository.SessionSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session sources: %w", err)
	}

	journey := &dto.JourneyResponse{
		ReferrerDistribution: []dto.ReferrerShare{},
		TopReferrer:          noReferrer,
	}

	var totalDuration int64
	byHost := make(map[string]int64)
	for _, src := range sources {
		journey.TotalSessions += src.Sessions
		totalDuration += src.DurationMs
		byHost[referrerHost(src.Referrer)] += src.Sessions
		if src.UTMMedium != nil && paidMediums[strings.ToLower(*src.UTMMedium)] {
			journey.PaidTrafficCount += src.Sessions
		}
	}

	if journey.TotalSessions == 0 {
		return journey, nil
	}

	avgMs := float64(totalDuration) / float64(journey.TotalSessions)
	journey.AvgSessionSeconds = math.Round(avgMs/10) / 100
	journey.AvgSessionMinutes = math.Round(avgMs/600) / 100
	journey.PaidPercentage = percentage(journey.PaidTrafficCount, journey.TotalSessions)

	for host, count := range byHost {
		journey.ReferrerDistribution = append(journey.ReferrerDistribution, dto.ReferrerShare{
			Source:     host,
			Count:      count,
			Percentage: percentage(count, journey.TotalSessions),
		})
	}
	sort.Slice(journey.ReferrerDistribution, func(i, j int) bool {
		a, b := journey.ReferrerDistribution[i], journey.ReferrerDistribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Source < b.Source
	})
	if len(journey.ReferrerDistribution) > referrerTopLimit {
		journey.ReferrerDistribution = journey.ReferrerDistribution[:referrerTopLimit]
	}
	journey.TopReferrer = journey.ReferrerDistribution[0].Source

	return journey, nil
}

// referrerHost reduces an absolute referrer URL to its hostname without a
// leading www. Values that are not absolute URLs are kept as they are.
func referrerHost(referrer *string) string {
	if referrer == nil || *referrer == "" {
		return directSource
	}

	u, err := url.Parse(*referrer)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return *referrer
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func percentage(part, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
