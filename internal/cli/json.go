package cli

import (
	"time"

	"github.com/lu-zhengda/assist/internal/app"
	"github.com/lu-zhengda/assist/internal/domain"
)

// ---------------------------------------------------------------------------
// Profile JSON type (status)
// ---------------------------------------------------------------------------

type jsonProfile struct {
	ID       string `json:"id"`
	BaseURL  string `json:"base_url"`
	LoggedIn bool   `json:"logged_in"`
	LastUsed string `json:"last_used"`
}

func toJSONProfiles(profiles []domain.Profile, loggedIn map[string]bool) []jsonProfile {
	out := make([]jsonProfile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, jsonProfile{
			ID:       p.ID,
			BaseURL:  p.BaseURL,
			LoggedIn: loggedIn[p.ID],
			LastUsed: p.LastUsed.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Card JSON type (integrations list)
// ---------------------------------------------------------------------------

type jsonCard struct {
	ProviderType  string `json:"provider_type"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	ComingSoon    bool   `json:"coming_soon"`
	Enabled       bool   `json:"enabled"`
	Status        string `json:"status,omitempty"`
	StatusLabel   string `json:"status_label"`
	Action        string `json:"action"`
	IntegrationID string `json:"integration_id,omitempty"`
}

func toJSONCards(cards []domain.Card) []jsonCard {
	out := make([]jsonCard, 0, len(cards))
	for _, c := range cards {
		out = append(out, jsonCard{
			ProviderType:  c.ProviderType,
			Name:          c.Name,
			Description:   c.Description,
			Category:      string(c.Category),
			ComingSoon:    c.ComingSoon,
			Enabled:       c.Enabled,
			Status:        string(c.Status),
			StatusLabel:   c.StatusText(),
			Action:        c.ActionText(),
			IntegrationID: c.IntegrationID,
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Settings JSON type (integrations configure)
// ---------------------------------------------------------------------------

type jsonSettings struct {
	IntegrationID string   `json:"integration_id"`
	Query         string   `json:"query"`
	LabelIDs      []string `json:"label_ids"`
	MaxResults    int      `json:"max_results"`
}

func toJSONSettings(in *domain.Integration) jsonSettings {
	labels := in.LabelIDs()
	if labels == nil {
		labels = []string{}
	}
	return jsonSettings{
		IntegrationID: in.ID,
		Query:         in.Query(),
		LabelIDs:      labels,
		MaxResults:    in.MaxResults(),
	}
}

// ---------------------------------------------------------------------------
// Email JSON types (mail list, mail show)
// ---------------------------------------------------------------------------

type jsonEmail struct {
	ID       string      `json:"id"`
	ThreadID string      `json:"thread_id,omitempty"`
	From     jsonAddress `json:"from"`
	Subject  string      `json:"subject"`
	Date     string      `json:"date,omitempty"`
	Snippet  string      `json:"snippet,omitempty"`
	Summary  string      `json:"summary,omitempty"`
	Unread   bool        `json:"unread"`
	Labels   []string    `json:"labels,omitempty"`
}

// jsonDate normalises the backend's date header to RFC 3339, keeping the raw
// value when it cannot be parsed.
func jsonDate(raw string) string {
	if t, ok := domain.ParseDate(raw); ok {
		return t.Format(time.RFC3339)
	}
	return raw
}

func toJSONEmail(e *domain.EmailMessage) jsonEmail {
	return jsonEmail{
		ID:       e.ID,
		ThreadID: e.ThreadID,
		From:     toJSONAddress(e.Sender()),
		Subject:  e.SubjectText(),
		Date:     jsonDate(e.Date),
		Snippet:  e.Snippet,
		Summary:  e.Summary,
		Unread:   e.IsUnread(),
		Labels:   e.Labels,
	}
}

type jsonEmailDetail struct {
	jsonEmail
	To   string `json:"to,omitempty"`
	Body string `json:"body"`
}

func toJSONEmailDetail(e *domain.EmailMessage) jsonEmailDetail {
	return jsonEmailDetail{
		jsonEmail: toJSONEmail(e),
		To:        e.To,
		Body:      e.PlainBody(),
	}
}

type jsonPage struct {
	IntegrationID string      `json:"integration_id"`
	Page          int         `json:"page"`
	HasPrev       bool        `json:"has_prev"`
	HasNext       bool        `json:"has_next"`
	Filter        string      `json:"filter"`
	Search        string      `json:"search,omitempty"`
	Items         []jsonEmail `json:"items"`
}

func toJSONPage(p *app.Paginator) jsonPage {
	items := p.Items()
	out := jsonPage{
		IntegrationID: p.IntegrationID(),
		Page:          p.PageIndex() + 1,
		HasPrev:       p.HasPrev(),
		HasNext:       p.HasNext(),
		Filter:        string(p.Filter()),
		Search:        p.Search(),
		Items:         make([]jsonEmail, 0, len(items)),
	}
	for i := range items {
		out.Items = append(out.Items, toJSONEmail(&items[i]))
	}
	return out
}

// ---------------------------------------------------------------------------
// Address JSON type (shared)
// ---------------------------------------------------------------------------

type jsonAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

func toJSONAddress(a domain.Address) jsonAddress {
	return jsonAddress{Name: a.Name, Email: a.Email}
}

// ---------------------------------------------------------------------------
// Action JSON type (login, logout, connect, disconnect, enable, disable)
// ---------------------------------------------------------------------------

type jsonAction struct {
	OK            bool   `json:"ok"`
	Action        string `json:"action"`
	BaseURL       string `json:"base_url,omitempty"`
	Provider      string `json:"provider,omitempty"`
	IntegrationID string `json:"integration_id,omitempty"`
	Status        string `json:"status,omitempty"`
}
