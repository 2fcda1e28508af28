package mockserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/lu-zhengda/assist/internal/api"
	"github.com/lu-zhengda/assist/internal/app"
	"github.com/lu-zhengda/assist/internal/callback"
	"github.com/lu-zhengda/assist/internal/domain"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *api.Client) {
	t.Helper()
	s := New(opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, api.New(ts.URL)
}

// browser follows the authorization URL the way a user's browser would.
func browser(ctx context.Context, authURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, authURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func gmail(id string, status domain.Status) domain.Integration {
	return domain.Integration{ID: id, ProviderType: domain.ProviderGmail, Status: status}
}

func TestConnectFlow(t *testing.T) {
	s, client := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cb, err := callback.Listen()
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	defer cb.Close()

	svc := app.NewIntegrationService(client, app.NewReconnector(client, app.NavigatorFunc(browser)))
	ov := svc.Refresh(ctx)
	if ov.Err != nil {
		t.Fatalf("Refresh() error: %v", ov.Err)
	}
	if ov.Cards[0].Status != domain.StatusDisconnected || !ov.Cards[0].Enabled {
		t.Fatalf("gmail card before connect = %+v", ov.Cards[0])
	}

	action, err := svc.PrimaryAction(ctx, ov.Cards[0], cb.RedirectURI())
	if err != nil || action != domain.ActionConnect {
		t.Fatalf("PrimaryAction() = %q, %v", action, err)
	}
	res, err := cb.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if res.Query.Get("status") != "connected" {
		t.Errorf("callback query = %v", res.Query)
	}

	ov = svc.Refresh(ctx)
	if ov.Cards[0].Status != domain.StatusActive || ov.Cards[0].IntegrationID == "" {
		t.Errorf("gmail card after connect = %+v", ov.Cards[0])
	}
	if len(s.Integrations()) != 1 {
		t.Errorf("integrations = %d, want 1", len(s.Integrations()))
	}
}

func TestConfigureAndDisconnect(t *testing.T) {
	s, client := newTestServer(t, WithIntegration(gmail("g1", domain.StatusActive)))
	ctx := context.Background()
	svc := app.NewIntegrationService(client, nil)
	svc.Refresh(ctx)

	ov, err := svc.Configure(ctx, domain.ProviderGmail, app.ParseSettings("from:boss", "INBOX, IMPORTANT", "15"))
	if err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	in := ov.ByProvider[domain.ProviderGmail]
	if in.Query() != "from:boss" || in.MaxResults() != 15 || len(in.LabelIDs()) != 2 {
		t.Errorf("config after PATCH = %+v", in.Config)
	}

	ov, err = svc.SetEnabled(ctx, ov.Cards[0], false)
	if err != nil {
		t.Fatalf("SetEnabled() error: %v", err)
	}
	if ov.Cards[0].Status != domain.StatusDisconnected {
		t.Errorf("status after disable = %q", ov.Cards[0].Status)
	}

	if _, err := svc.Disconnect(ctx, ov.Cards[0]); err != nil {
		t.Fatalf("Disconnect() error: %v", err)
	}
	if len(s.Integrations()) != 0 {
		t.Errorf("integrations after disconnect = %d", len(s.Integrations()))
	}

	err = client.Disconnect(ctx, "g1")
	if api.StatusOf(err) != http.StatusNotFound {
		t.Errorf("second Disconnect() status = %d, want 404", api.StatusOf(err))
	}
}

func TestUpdate_RejectsUnknownStatus(t *testing.T) {
	_, client := newTestServer(t, WithIntegration(gmail("g1", domain.StatusActive)))
	bogus := domain.Status("paused")
	_, err := client.UpdateIntegration(context.Background(), "g1", api.Update{Status: &bogus})
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("UpdateIntegration() error = %v, want 422", err)
	}
	if apiErr.Message != "invalid status: paused" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestInboxPaging(t *testing.T) {
	in := gmail("g1", domain.StatusActive)
	_, client := newTestServer(t, WithIntegration(in, generateEmails("g1", 45, time.Now())...))
	ctx := context.Background()

	inbox := app.NewInboxService(client, nil, "")
	if err := inbox.LoadIntegrations(ctx, ""); err != nil {
		t.Fatalf("LoadIntegrations() error: %v", err)
	}

	var sizes []int
	for {
		if err := inbox.Load(ctx); err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		sizes = append(sizes, len(inbox.Pager().Items()))
		if !inbox.Pager().Next() {
			break
		}
	}
	if len(sizes) != 3 || sizes[0] != 20 || sizes[1] != 20 || sizes[2] != 5 {
		t.Errorf("page sizes = %v, want [20 20 5]", sizes)
	}
	if sel := inbox.Pager().Selected(); sel == nil || sel.Summary == "" {
		t.Errorf("summarize=true should fill summaries, got %+v", sel)
	}

	inbox.Pager().Prev()
	if err := inbox.Load(ctx); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if inbox.Pager().PageIndex() != 1 || len(inbox.Pager().Items()) != 20 {
		t.Errorf("after Prev index = %d items = %d", inbox.Pager().PageIndex(), len(inbox.Pager().Items()))
	}

	inbox.Pager().SetFilter(domain.FilterUnread)
	if err := inbox.Load(ctx); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	for _, m := range inbox.Pager().Items() {
		if !m.IsUnread() {
			t.Errorf("unread filter returned %s", m.ID)
		}
	}
	if inbox.Pager().PageIndex() != 0 {
		t.Errorf("filter change should reset to page 0, got %d", inbox.Pager().PageIndex())
	}
}

func TestInboxExpiredReconnects(t *testing.T) {
	s, client := newTestServer(t, WithIntegration(gmail("g1", domain.StatusActive), generateEmails("g1", 3, time.Now())...))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Expire("g1")

	cb, err := callback.Listen()
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	defer cb.Close()

	inbox := app.NewInboxService(client, app.NewReconnector(client, app.NavigatorFunc(browser)), cb.RedirectURI())
	if err := inbox.LoadIntegrations(ctx, ""); err != nil {
		t.Fatalf("LoadIntegrations() error: %v", err)
	}
	if err := inbox.Load(ctx); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, err := cb.Wait(ctx); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if !inbox.Pager().ReauthAttempted() {
		t.Error("reauth should be recorded")
	}

	if err := inbox.Load(ctx); err != nil {
		t.Fatalf("Load() after reconnect error: %v", err)
	}
	if len(inbox.Pager().Items()) != 3 {
		t.Errorf("items after reconnect = %d, want 3", len(inbox.Pager().Items()))
	}
}

func TestFailureInjection(t *testing.T) {
	s, client := newTestServer(t)
	s.Fail("GET /api/v1/integrations/available", Failure{Status: 500, Message: "boom", Count: 1})
	s.Fail("GET /api/v1/integrations/", Failure{Status: 503})
	svc := app.NewIntegrationService(client, nil)

	ov := svc.Refresh(context.Background())
	if got := app.Describe(ov.Err, app.PageIntegrations); got != "boom" {
		t.Errorf("first refresh error = %q, want boom", got)
	}

	ov = svc.Refresh(context.Background())
	if api.StatusOf(ov.Err) != http.StatusServiceUnavailable {
		t.Errorf("second refresh error = %v, want the mine 503", ov.Err)
	}
	if !ov.Cards[0].Enabled {
		t.Error("available recovered, gmail should be enabled")
	}

	s.ClearFailures()
	if ov := svc.Refresh(context.Background()); ov.Err != nil {
		t.Errorf("refresh after clear error: %v", ov.Err)
	}
}

func TestBearerToken(t *testing.T) {
	s := New(WithToken("secret"))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	ctx := context.Background()

	_, err := api.New(ts.URL).ListAvailable(ctx)
	if !api.IsAuthExpired(err) {
		t.Errorf("anonymous ListAvailable() error = %v, want 401", err)
	}

	authed := api.New(ts.URL, api.WithToken(&oauth2.Token{AccessToken: "secret"}))
	if _, err := authed.ListAvailable(ctx); err != nil {
		t.Errorf("authed ListAvailable() error: %v", err)
	}
}

func TestDailyFeed(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	feed, err := client.DailyFeed(ctx, api.FeedParams{Lat: 40.7, Lon: -74, Timezone: "America/New_York", Limit: 3})
	if err != nil {
		t.Fatalf("DailyFeed() error: %v", err)
	}
	if len(feed.News) != 3 || feed.Weather.Location.Timezone != "America/New_York" {
		t.Errorf("feed = %d news, tz %q", len(feed.News), feed.Weather.Location.Timezone)
	}

	feed, err = client.DailyFeed(ctx, api.FeedParams{Lat: 1, Lon: 2, Limit: 10, Query: "library"})
	if err != nil {
		t.Fatalf("DailyFeed(q) error: %v", err)
	}
	if len(feed.News) != 1 {
		t.Errorf("filtered news = %d, want 1", len(feed.News))
	}

	_, err = client.DailyFeed(ctx, api.FeedParams{Lat: 95, Lon: 2})
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Message != "lat and lon are required" {
		t.Errorf("bad location error = %v", err)
	}
}

func TestEmailQueryMatching(t *testing.T) {
	box := []domain.EmailMessage{
		{ID: "1", Subject: "Budget review", From: "Alice <alice@example.com>", Labels: []string{"INBOX", domain.LabelUnread}},
		{ID: "2", Subject: "Team lunch", From: "Bob <bob@example.com>", Labels: []string{"INBOX", LabelTask}},
		{ID: "3", Subject: "Budget draft", From: "Bob <bob@example.com>", Labels: []string{"INBOX", "IMPORTANT"}},
	}
	tests := []struct {
		name string
		q    emailQuery
		want []string
	}{
		{"everything", emailQuery{maxResults: 20}, []string{"1", "2", "3"}},
		{"unread filter", emailQuery{filter: domain.FilterUnread, maxResults: 20}, []string{"1"}},
		{"tasks filter", emailQuery{filter: domain.FilterTasks, maxResults: 20}, []string{"2"}},
		{"free text", emailQuery{query: "budget", maxResults: 20}, []string{"1", "3"}},
		{"from operator", emailQuery{query: "budget from:bob", maxResults: 20}, []string{"3"}},
		{"label operator", emailQuery{query: "label:important", maxResults: 20}, []string{"3"}},
		{"label ids", emailQuery{labelIDs: []string{"INBOX", domain.LabelUnread}, maxResults: 20}, []string{"1"}},
		{"second page", emailQuery{maxResults: 2, offset: 2}, []string{"3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := tt.q.page(box)
			var got []string
			for _, m := range page.Items {
				got = append(got, m.ID)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ids = %v, want %v", got, tt.want)
				}
			}
		})
	}

	first := (&emailQuery{maxResults: 2}).page(box)
	if first.NextPageToken != "2" {
		t.Errorf("next token = %q, want 2", first.NextPageToken)
	}
}
