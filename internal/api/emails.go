package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lu-zhengda/assist/internal/domain"
)

// EmailParams are the listing query parameters. Zero values are omitted from
// the request.
type EmailParams struct {
	Query      string
	Filter     domain.EmailFilter
	LabelIDs   []string
	MaxResults int
	PageToken  string
	Summarize  *bool
}

// Values encodes the parameters. label_ids is repeated once per label.
func (p EmailParams) Values() url.Values {
	v := url.Values{}
	if p.Query != "" {
		v.Set("query", p.Query)
	}
	if p.Filter != "" {
		v.Set("filter", string(p.Filter))
	}
	for _, l := range p.LabelIDs {
		v.Add("label_ids", l)
	}
	if p.MaxResults > 0 {
		v.Set("max_results", strconv.Itoa(p.MaxResults))
	}
	if p.PageToken != "" {
		v.Set("page_token", p.PageToken)
	}
	if p.Summarize != nil {
		v.Set("summarize", strconv.FormatBool(*p.Summarize))
	}
	return v
}

// ListEmails returns one page of messages for an integration.
func (c *Client) ListEmails(ctx context.Context, integrationID string, params EmailParams) (*domain.EmailPage, error) {
	path := integrationsPath + "/" + url.PathEscape(integrationID) + "/emails"
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint(path, params.Values()), nil)
	if err != nil {
		return nil, err
	}
	var page domain.EmailPage
	if err := c.do(req, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []domain.EmailMessage{}
	}
	return &page, nil
}
