package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/lu-zhengda/assist/internal/api"
	"github.com/lu-zhengda/assist/internal/domain"
)

const DefaultNewsLimit = 10

// FeedClient fetches the daily feed.
type FeedClient interface {
	DailyFeed(ctx context.Context, params api.FeedParams) (*domain.DailyFeed, error)
}

// DashboardService loads the morning dashboard: locate, resolve timezone,
// then a single fetch. Nothing is retried.
type DashboardService struct {
	client   FeedClient
	locator  Locator
	timezone string
}

// NewDashboardService creates the service. timezone overrides the detected
// local zone when set.
func NewDashboardService(client FeedClient, locator Locator, timezone string) *DashboardService {
	return &DashboardService{client: client, locator: locator, timezone: timezone}
}

// Load returns the feed, or an error with no partial data.
func (s *DashboardService) Load(ctx context.Context, limit int, q string) (*domain.DailyFeed, error) {
	loc, err := s.locator.Locate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to locate: %w", err)
	}
	if limit <= 0 {
		limit = DefaultNewsLimit
	}
	params := api.FeedParams{
		Lat:      loc.Lat,
		Lon:      loc.Lon,
		Timezone: LocalTimezone(s.timezone),
		Limit:    limit,
		Query:    strings.TrimSpace(q),
	}
	feed, err := s.client.DailyFeed(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily feed: %w", err)
	}
	log.Printf("[dashboard] loaded feed with %d news items for %s", len(feed.News), params.Timezone)
	return feed, nil
}
