package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lu-zhengda/assist/internal/domain"
)

// FeedParams locate the daily feed request.
type FeedParams struct {
	Lat      float64
	Lon      float64
	Timezone string
	Limit    int
	Query    string
}

// Values encodes the parameters. q is only sent when non-blank.
func (p FeedParams) Values() url.Values {
	v := url.Values{}
	v.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	v.Set("lon", strconv.FormatFloat(p.Lon, 'f', -1, 64))
	v.Set("timezone", p.Timezone)
	v.Set("limit", strconv.Itoa(p.Limit))
	if q := strings.TrimSpace(p.Query); q != "" {
		v.Set("q", q)
	}
	return v
}

// DailyFeed fetches the weather, news and mood bundle.
func (c *Client) DailyFeed(ctx context.Context, params FeedParams) (*domain.DailyFeed, error) {
	u := c.dashboardURL + "/api/v1/dashboard/daily-feed?" + params.Values().Encode()
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var feed domain.DailyFeed
	if err := c.do(req, &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}
