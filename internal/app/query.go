package app

import (
	"strings"

	"github.com/lu-zhengda/assist/internal/api"
	"github.com/lu-zhengda/assist/internal/domain"
)

// BuildQuery joins the integration's stored query and the free-text search
// with a single space. Blank parts are dropped.
func BuildQuery(base, extra string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{base, extra} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// EmailParams builds the listing request for one page of an integration.
func EmailParams(in *domain.Integration, filter domain.EmailFilter, search, pageToken string) api.EmailParams {
	summarize := true
	return api.EmailParams{
		Query:      BuildQuery(in.Query(), search),
		Filter:     filter,
		LabelIDs:   in.LabelIDs(),
		MaxResults: in.MaxResults(),
		PageToken:  pageToken,
		Summarize:  &summarize,
	}
}
