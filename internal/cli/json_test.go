package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/lu-zhengda/assist/internal/app"
	"github.com/lu-zhengda/assist/internal/domain"
)

func TestToJSONProfiles(t *testing.T) {
	profiles := []domain.Profile{
		{ID: "p1", BaseURL: "http://localhost:8000", LastUsed: time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)},
		{ID: "p2", BaseURL: "https://assist.example.com", LastUsed: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	got := toJSONProfiles(profiles, map[string]bool{"p2": true})

	if len(got) != 2 {
		t.Fatalf("got %d profiles, want 2", len(got))
	}
	if got[0].LoggedIn || !got[1].LoggedIn {
		t.Errorf("logged_in = %v, %v; want false, true", got[0].LoggedIn, got[1].LoggedIn)
	}
	if got[0].LastUsed != "2025-01-15T09:30:00Z" {
		t.Errorf("got last_used %q", got[0].LastUsed)
	}
}

func TestToJSONProfiles_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := fprintJSON(&buf, toJSONProfiles(nil, nil)); err != nil {
		t.Fatalf("fprintJSON() error = %v", err)
	}
	if got := buf.String(); got != "[]\n" {
		t.Errorf("got %q, want %q", got, "[]\n")
	}
}

func TestToJSONCards(t *testing.T) {
	cards := domain.BuildCards(
		[]domain.AvailableProvider{{ProviderType: "gmail", Name: "Gmail"}},
		[]domain.Integration{{ID: "int-1", ProviderType: "gmail", Status: domain.StatusExpired}},
	)

	got := toJSONCards(cards)
	if len(got) != len(domain.Catalog) {
		t.Fatalf("got %d cards, want %d", len(got), len(domain.Catalog))
	}

	byType := make(map[string]jsonCard, len(got))
	for _, c := range got {
		byType[c.ProviderType] = c
	}

	gmail := byType["gmail"]
	if gmail.StatusLabel != "Action Required" || gmail.Action != "Reconnect" || gmail.IntegrationID != "int-1" {
		t.Errorf("gmail card = %+v", gmail)
	}
	if !gmail.Enabled || gmail.ComingSoon {
		t.Errorf("gmail enabled=%v coming_soon=%v", gmail.Enabled, gmail.ComingSoon)
	}

	slack := byType["slack"]
	if !slack.ComingSoon || slack.StatusLabel != "Coming Soon" || slack.Action != "Coming Soon" {
		t.Errorf("slack card = %+v", slack)
	}
}

func TestToJSONSettings(t *testing.T) {
	in := &domain.Integration{
		ID: "int-1",
		Config: map[string]any{
			"query":       "is:unread",
			"label_ids":   []any{"INBOX", "IMPORTANT"},
			"max_results": float64(50),
		},
	}

	got := toJSONSettings(in)
	if got.Query != "is:unread" || got.MaxResults != 50 || len(got.LabelIDs) != 2 {
		t.Errorf("settings = %+v", got)
	}

	empty := toJSONSettings(&domain.Integration{ID: "int-2"})
	if empty.LabelIDs == nil {
		t.Error("label_ids should encode as an empty array")
	}
	if empty.MaxResults != domain.DefaultMaxResults {
		t.Errorf("max_results = %d, want %d", empty.MaxResults, domain.DefaultMaxResults)
	}
}

func TestToJSONEmail(t *testing.T) {
	e := &domain.EmailMessage{
		ID:      "m1",
		From:    "Alice Smith <alice@example.com>",
		Date:    "Mon, 02 Jan 2006 15:04:05 +0000",
		Labels:  []string{"INBOX", "UNREAD"},
		Summary: "Lunch?",
	}

	got := toJSONEmail(e)
	if got.From.Name != "Alice Smith" || got.From.Email != "alice@example.com" {
		t.Errorf("from = %+v", got.From)
	}
	if got.Subject != "(No subject)" {
		t.Errorf("subject = %q", got.Subject)
	}
	if got.Date != "2006-01-02T15:04:05Z" {
		t.Errorf("date = %q", got.Date)
	}
	if !got.Unread {
		t.Error("unread = false, want true")
	}
}

func TestJSONDate_Unparseable(t *testing.T) {
	if got := jsonDate("yesterday"); got != "yesterday" {
		t.Errorf("jsonDate() = %q, want raw value", got)
	}
}

func TestToJSONEmailDetail(t *testing.T) {
	e := &domain.EmailMessage{
		ID:   "m1",
		To:   "demo@example.com",
		Body: "<p>Hello <b>there</b></p>",
	}

	var buf bytes.Buffer
	if err := fprintJSON(&buf, toJSONEmailDetail(e)); err != nil {
		t.Fatalf("fprintJSON() error = %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if parsed["id"] != "m1" {
		t.Errorf("embedded id = %v", parsed["id"])
	}
	if parsed["body"] != "Hello there" {
		t.Errorf("body = %q, want plain text", parsed["body"])
	}
	if parsed["to"] != "demo@example.com" {
		t.Errorf("to = %v", parsed["to"])
	}
}

func TestToJSONPage(t *testing.T) {
	p := app.NewPaginator()
	p.SetIntegration("int-1")
	p.SetSearch("invoice")
	tk := p.Begin()
	p.Succeed(tk, &domain.EmailPage{
		Items:         []domain.EmailMessage{{ID: "a"}, {ID: "b"}},
		NextPageToken: "t1",
	})

	got := toJSONPage(p)
	if got.Page != 1 || got.HasPrev || !got.HasNext {
		t.Errorf("page = %d prev = %v next = %v", got.Page, got.HasPrev, got.HasNext)
	}
	if got.Filter != "all" || got.Search != "invoice" || got.IntegrationID != "int-1" {
		t.Errorf("page = %+v", got)
	}
	if len(got.Items) != 2 || got.Items[1].ID != "b" {
		t.Errorf("items = %+v", got.Items)
	}
}

func TestJSONAction_OmitsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := fprintJSON(&buf, jsonAction{OK: true, Action: "logout"}); err != nil {
		t.Fatalf("fprintJSON() error = %v", err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if len(parsed) != 2 {
		t.Errorf("got keys %v, want only ok and action", parsed)
	}
}
