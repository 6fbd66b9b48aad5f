package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Service assembles the admin dashboard snapshot.
type Service struct {
	repo   Repository
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("component", "reporting").Logger(),
	}
}

// Dashboard returns counts plus a registration trend covering the
// requested range. Every day in the window appears exactly once, zero
// counts included, oldest day first.
func (s *Service) Dashboard(ctx context.Context, trendRange TrendRange) (*Stats, error) {
	days, err := trendRange.Days()
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting dashboard counts: %w", err)
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -(days - 1))
	until := today.AddDate(0, 0, 1)

	perDay, err := s.repo.RegistrationsPerDay(ctx, from, until)
	if err != nil {
		return nil, fmt.Errorf("collecting registration trend: %w", err)
	}

	trend := make([]TrendPoint, 0, days)
	for day := from; day.Before(until); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		trend = append(trend, TrendPoint{Date: key, Count: perDay[key]})
	}

	stats.RegistrationTrend = trend
	stats.TrendRange = trendRange
	return stats, nil
}
