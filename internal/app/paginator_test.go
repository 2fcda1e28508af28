package app

import (
	"errors"
	"testing"

	"github.com/lu-zhengda/assist/internal/api"
	"github.com/lu-zhengda/assist/internal/domain"
)

func page(next string, ids ...string) *domain.EmailPage {
	p := &domain.EmailPage{NextPageToken: next}
	for _, id := range ids {
		p.Items = append(p.Items, domain.EmailMessage{ID: id})
	}
	return p
}

func loadPage(t *testing.T, p *Paginator, pg *domain.EmailPage) Ticket {
	t.Helper()
	tk := p.Begin()
	if !p.Succeed(tk, pg) {
		t.Fatal("Succeed() rejected a current ticket")
	}
	return tk
}

func TestPaginator_InitialState(t *testing.T) {
	p := NewPaginator()
	if p.Cursor() != "" || p.PageIndex() != 0 {
		t.Errorf("cursor = %q, index = %d", p.Cursor(), p.PageIndex())
	}
	if p.State() != StateIdle {
		t.Errorf("state = %v, want idle", p.State())
	}
	if p.HasPrev() || p.HasNext() {
		t.Error("fresh paginator should have no neighbours")
	}
	if p.Filter() != domain.FilterAll {
		t.Errorf("filter = %q, want all", p.Filter())
	}
}

func TestPaginator_NextThenPrev(t *testing.T) {
	p := NewPaginator()
	p.SetIntegration("int-1")

	first := p.Begin()
	if first.Token != "" {
		t.Fatalf("first page token = %q, want empty", first.Token)
	}
	p.Succeed(first, page("tok1", "a", "b"))

	if !p.Next() {
		t.Fatal("Next() = false with a next token")
	}
	second := p.Begin()
	if second.Token != "tok1" {
		t.Errorf("second page token = %q, want %q", second.Token, "tok1")
	}
	p.Succeed(second, page("", "c"))
	if p.HasNext() {
		t.Error("HasNext() = true on last page")
	}
	if p.Next() {
		t.Error("Next() advanced without a next token")
	}

	if !p.Prev() {
		t.Fatal("Prev() = false on page 2")
	}
	again := p.Begin()
	if again.Token != "" {
		t.Errorf("previous page token = %q, want empty", again.Token)
	}
}

func TestPaginator_FilterChangeResetsHistory(t *testing.T) {
	p := NewPaginator()
	p.SetIntegration("int-1")
	loadPage(t, p, page("t1", "a"))
	p.Next()
	loadPage(t, p, page("t2", "b"))
	p.Next()

	if got := p.Tokens(); len(got) != 3 || got[1] != "t1" || got[2] != "t2" {
		t.Fatalf("tokens = %q, want [\"\" t1 t2]", got)
	}

	if !p.SetFilter(domain.FilterUnread) {
		t.Fatal("SetFilter() reported no change")
	}
	if p.Prev() {
		t.Error("Prev() after filter change should be a no-op")
	}
	if p.PageIndex() != 0 {
		t.Errorf("page index = %d, want 0", p.PageIndex())
	}
	if tk := p.Begin(); tk.Token != "" {
		t.Errorf("cursor after reset = %q, want empty", tk.Token)
	}
}

func TestPaginator_ResetTriggers(t *testing.T) {
	tests := []struct {
		name   string
		change func(p *Paginator) bool
		reset  bool
	}{
		{"same filter", func(p *Paginator) bool { return p.SetFilter(domain.FilterAll) }, false},
		{"new filter", func(p *Paginator) bool { return p.SetFilter(domain.FilterTasks) }, true},
		{"search with only whitespace change", func(p *Paginator) bool { return p.SetSearch("  ") }, false},
		{"new search", func(p *Paginator) bool { return p.SetSearch("invoice") }, true},
		{"new base query", func(p *Paginator) bool { return p.SetBaseQuery("label:work") }, true},
		{"same integration", func(p *Paginator) bool { return p.SetIntegration("int-1") }, false},
		{"new integration", func(p *Paginator) bool { return p.SetIntegration("int-2") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginator()
			p.SetIntegration("int-1")
			loadPage(t, p, page("t1", "a"))
			p.Next()

			if got := tt.change(p); got != tt.reset {
				t.Fatalf("change reported %v, want %v", got, tt.reset)
			}
			wantIndex := 1
			if tt.reset {
				wantIndex = 0
			}
			if p.PageIndex() != wantIndex {
				t.Errorf("page index = %d, want %d", p.PageIndex(), wantIndex)
			}
		})
	}
}

func TestPaginator_StaleResultsDiscarded(t *testing.T) {
	p := NewPaginator()
	p.SetIntegration("int-1")

	old := p.Begin()
	p.SetSearch("new")
	current := p.Begin()

	if p.Succeed(old, page("", "stale")) {
		t.Error("Succeed() accepted a stale ticket")
	}
	if got := p.Fail(old, errors.New("late")); got != OutcomeDiscarded {
		t.Errorf("Fail(stale) = %v, want discarded", got)
	}
	if !p.Succeed(current, page("", "fresh")) {
		t.Fatal("Succeed() rejected the current ticket")
	}
	if sel := p.Selected(); sel == nil || sel.ID != "fresh" {
		t.Errorf("selected = %+v, want fresh", sel)
	}
}

func TestPaginator_SelectionKeptAcrossReload(t *testing.T) {
	p := NewPaginator()
	p.SetIntegration("int-1")
	loadPage(t, p, page("", "a", "b", "c"))

	if !p.Select("b") {
		t.Fatal("Select(b) = false")
	}
	loadPage(t, p, page("", "c", "b"))
	if sel := p.Selected(); sel.ID != "b" {
		t.Errorf("selected = %q, want b", sel.ID)
	}

	loadPage(t, p, page("", "x", "y"))
	if sel := p.Selected(); sel.ID != "x" {
		t.Errorf("selected = %q, want first item x", sel.ID)
	}

	loadPage(t, p, page(""))
	if p.Selected() != nil {
		t.Error("selected should be nil on an empty page")
	}
	if p.Select("missing") {
		t.Error("Select() accepted an unknown id")
	}
}

func TestPaginator_ReauthOncePerIntegration(t *testing.T) {
	expired := &api.Error{Status: 401, Message: "Unauthorized"}
	p := NewPaginator()
	p.SetIntegration("int-1")

	if got := p.Fail(p.Begin(), expired); got != OutcomeReauthorize {
		t.Fatalf("first 401 = %v, want reauthorize", got)
	}
	if p.State() != StateReauthorizing {
		t.Errorf("state = %v, want reauthorizing", p.State())
	}
	if p.Err() != nil {
		t.Error("reauth should not surface the error")
	}

	if got := p.Fail(p.Begin(), expired); got != OutcomeFailed {
		t.Fatalf("second 401 = %v, want failed", got)
	}
	if !errors.Is(p.Err(), expired) {
		t.Errorf("Err() = %v", p.Err())
	}

	p.SetIntegration("int-1")
	if got := p.Fail(p.Begin(), expired); got != OutcomeFailed {
		t.Errorf("same integration again = %v, want failed", got)
	}

	p.SetIntegration("int-2")
	if got := p.Fail(p.Begin(), &api.Error{Status: 403}); got != OutcomeReauthorize {
		t.Errorf("new integration 403 = %v, want reauthorize", got)
	}
}

func TestPaginator_FailureClearsPage(t *testing.T) {
	p := NewPaginator()
	p.SetIntegration("int-1")
	loadPage(t, p, page("t1", "a"))

	if got := p.Fail(p.Begin(), &api.Error{Status: 502, Message: "Bad Gateway"}); got != OutcomeFailed {
		t.Fatalf("Fail() = %v, want failed", got)
	}
	if len(p.Items()) != 0 || p.HasNext() {
		t.Error("failure should clear items and next token")
	}
	if p.State() != StateFailed {
		t.Errorf("state = %v, want failed", p.State())
	}
}

func TestPaginator_SessionRoundTrip(t *testing.T) {
	p := NewPaginator()
	p.SetIntegration("int-1")
	p.SetSearch("invoice")
	loadPage(t, p, page("t1", "a"))
	p.Next()
	loadPage(t, p, page("t2", "b"))

	restored := NewPaginator()
	restored.Restore(p.Session())
	if restored.Cursor() != "t1" || restored.PageIndex() != 1 {
		t.Errorf("restored cursor = %q index = %d", restored.Cursor(), restored.PageIndex())
	}
	if !restored.HasNext() || restored.Search() != "invoice" || restored.IntegrationID() != "int-1" {
		t.Errorf("restored session = %+v", restored.Session())
	}
	if !restored.Next() || restored.Cursor() != "t2" {
		t.Errorf("Next() after restore cursor = %q", restored.Cursor())
	}
}

func TestPaginator_RestoreMalformed(t *testing.T) {
	tests := []domain.MailSession{
		{Tokens: nil, PageIndex: 0},
		{Tokens: []string{"x"}, PageIndex: 0},
		{Tokens: []string{""}, PageIndex: 3},
		{Tokens: []string{"", "t1"}, PageIndex: -1},
	}
	for _, s := range tests {
		p := NewPaginator()
		p.Restore(s)
		if p.Cursor() != "" || p.PageIndex() != 0 {
			t.Errorf("Restore(%+v) cursor = %q index = %d", s, p.Cursor(), p.PageIndex())
		}
	}
}
