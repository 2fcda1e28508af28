package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lu-zhengda/assist/internal/domain"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, opts...)
}

func TestClient_RequestHeaders(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = io.WriteString(w, "[]")
	}, WithToken(&oauth2.Token{AccessToken: "abc", TokenType: "Bearer"}))

	if _, err := c.ListAvailable(context.Background()); err != nil {
		t.Fatalf("ListAvailable() error: %v", err)
	}
	if got.Get("Cache-Control") != "no-cache" || got.Get("Pragma") != "no-cache" {
		t.Errorf("caching headers = %q / %q", got.Get("Cache-Control"), got.Get("Pragma"))
	}
	if got.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if got.Get("Authorization") != "Bearer abc" {
		t.Errorf("Authorization = %q, want %q", got.Get("Authorization"), "Bearer abc")
	}
}

func TestClient_ErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"message field", http.StatusBadRequest, `{"message":"bad input"}`, "bad input"},
		{"detail field", http.StatusNotFound, `{"detail":"Integration not found"}`, "Integration not found"},
		{"message wins over detail", http.StatusConflict, `{"message":"m","detail":"d"}`, "m"},
		{"non-string detail", http.StatusUnprocessableEntity, `{"detail":[{"loc":["query"]}]}`, "Unprocessable Entity"},
		{"not json", http.StatusBadGateway, `<html>oops</html>`, "Bad Gateway"},
		{"empty body", http.StatusTooManyRequests, ``, "Too Many Requests"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.ListMine(context.Background())
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestReadErrorMessage_Fallback(t *testing.T) {
	resp := &http.Response{StatusCode: 599, Status: "599", Body: io.NopCloser(strings.NewReader(""))}
	if got := readErrorMessage(resp); got != "Request failed" {
		t.Errorf("readErrorMessage() = %q, want %q", got, "Request failed")
	}
}

func TestIsAuthExpired(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&Error{Status: 401}, true},
		{&Error{Status: 403}, true},
		{&Error{Status: 404}, false},
		{errors.New("boom"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsAuthExpired(tt.err); got != tt.want {
			t.Errorf("IsAuthExpired(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestClient_ListMine_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":"1","provider_type":"gmail","status":"active"}]`, 1},
		{"envelope", `{"items":[{"id":"1"},{"id":"2"}]}`, 2},
		{"envelope without items", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v1/integrations/" {
					t.Errorf("path = %q", r.URL.Path)
				}
				_, _ = io.WriteString(w, tt.body)
			})
			got, err := c.ListMine(context.Background())
			if err != nil {
				t.Fatalf("ListMine() error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestClient_ConnectGmail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/integrations/gmail/connect" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["redirect_uri"] != "http://127.0.0.1:9999/callback" {
			t.Errorf("redirect_uri = %q", body["redirect_uri"])
		}
		_, _ = io.WriteString(w, `{"authorization_url":"https://accounts.example.com/auth"}`)
	})
	got, err := c.ConnectGmail(context.Background(), "http://127.0.0.1:9999/callback")
	if err != nil {
		t.Fatalf("ConnectGmail() error: %v", err)
	}
	if got != "https://accounts.example.com/auth" {
		t.Errorf("ConnectGmail() = %q", got)
	}
}

func TestClient_UpdateIntegration(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/v1/integrations/int-1" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"id":"int-1","provider_type":"gmail","status":"disconnected"}`)
	})
	status := domain.StatusDisconnected
	got, err := c.UpdateIntegration(context.Background(), "int-1", Update{Status: &status})
	if err != nil {
		t.Fatalf("UpdateIntegration() error: %v", err)
	}
	if got.Status != domain.StatusDisconnected {
		t.Errorf("status = %q", got.Status)
	}
	if body["status"] != "disconnected" {
		t.Errorf("sent status = %v", body["status"])
	}
	if _, ok := body["config"]; ok {
		t.Error("config should be omitted when nil")
	}
}

func TestClient_Disconnect(t *testing.T) {
	var method, path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.Disconnect(context.Background(), "int-9"); err != nil {
		t.Fatalf("Disconnect() error: %v", err)
	}
	if method != http.MethodDelete || path != "/api/v1/integrations/int-9" {
		t.Errorf("request = %s %s", method, path)
	}
}

func TestEmailParams_Values(t *testing.T) {
	yes := true
	tests := []struct {
		name   string
		params EmailParams
		want   string
	}{
		{"empty", EmailParams{}, ""},
		{"all fields", EmailParams{
			Query:      "from:a",
			Filter:     domain.FilterUnread,
			LabelIDs:   []string{"INBOX", "IMPORTANT"},
			MaxResults: 20,
			PageToken:  "tok1",
			Summarize:  &yes,
		}, "filter=unread&label_ids=INBOX&label_ids=IMPORTANT&max_results=20&page_token=tok1&query=from%3Aa&summarize=true"},
		{"first page omits token", EmailParams{Filter: domain.FilterAll, MaxResults: 5}, "filter=all&max_results=5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.Values().Encode(); got != tt.want {
				t.Errorf("Values() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_ListEmails(t *testing.T) {
	var rawQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/integrations/int-1/emails" {
			t.Errorf("path = %q", r.URL.Path)
		}
		rawQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"items":[{"id":"a"},{"id":"b"}],"next_page_token":"tok1"}`)
	})
	page, err := c.ListEmails(context.Background(), "int-1", EmailParams{PageToken: "tok0"})
	if err != nil {
		t.Fatalf("ListEmails() error: %v", err)
	}
	if len(page.Items) != 2 || page.NextPageToken != "tok1" {
		t.Errorf("page = %+v", page)
	}
	if rawQuery != "page_token=tok0" {
		t.Errorf("query = %q", rawQuery)
	}
}

func TestClient_DailyFeed(t *testing.T) {
	var query map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/dashboard/daily-feed" {
			t.Errorf("path = %q", r.URL.Path)
		}
		query = r.URL.Query()
		_, _ = io.WriteString(w, `{"generated_at":"2025-01-01T08:00:00Z","weather":{"current":{"temp_c":21.5,"condition_text":"Cloudy"}},"news":[{"headline":"h","url":"u","source":"s"}],"mood":{"affirmation":"a","focus_prompt":"f"}}`)
	})
	feed, err := c.DailyFeed(context.Background(), FeedParams{Lat: 52.52, Lon: 13.405, Timezone: "Europe/Berlin", Limit: 6, Query: "  "})
	if err != nil {
		t.Fatalf("DailyFeed() error: %v", err)
	}
	if feed.WeatherLine() != "21.5°C & Cloudy" {
		t.Errorf("WeatherLine() = %q", feed.WeatherLine())
	}
	if len(feed.News) != 1 || feed.News[0].Summary != nil {
		t.Errorf("news = %+v", feed.News)
	}
	if query["lat"][0] != "52.52" || query["lon"][0] != "13.405" || query["timezone"][0] != "Europe/Berlin" || query["limit"][0] != "6" {
		t.Errorf("query = %v", query)
	}
	if _, ok := query["q"]; ok {
		t.Error("blank q should be omitted")
	}
}

func TestClient_DailyFeedError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := c.DailyFeed(context.Background(), FeedParams{Timezone: "UTC", Limit: 1})
	if StatusOf(err) != http.StatusServiceUnavailable {
		t.Errorf("StatusOf() = %d, want 503", StatusOf(err))
	}
}

func TestClient_Tracing(t *testing.T) {
	var spans strings.Builder
	tp, err := NewTracerProvider(&spans)
	if err != nil {
		t.Fatalf("NewTracerProvider() error: %v", err)
	}
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	var traceparent string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		_, _ = io.WriteString(w, "[]")
	}, WithTracerProvider(tp))

	if _, err := c.ListAvailable(context.Background()); err != nil {
		t.Fatalf("ListAvailable() error: %v", err)
	}
	if !strings.HasPrefix(traceparent, "00-") {
		t.Errorf("traceparent = %q, want a W3C trace context", traceparent)
	}
	if !strings.Contains(spans.String(), `"SpanContext"`) {
		t.Errorf("no span exported, got %q", spans.String())
	}
}

func TestClient_NoTracingByDefault(t *testing.T) {
	var traceparent string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		_, _ = io.WriteString(w, "[]")
	})

	if _, err := c.ListAvailable(context.Background()); err != nil {
		t.Fatalf("ListAvailable() error: %v", err)
	}
	if traceparent != "" {
		t.Errorf("traceparent = %q, want none without a tracer provider", traceparent)
	}
}
