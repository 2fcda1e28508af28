package app

import (
	"strings"

	"github.com/lu-zhengda/assist/internal/api"
	"github.com/lu-zhengda/assist/internal/domain"
)

// PageState is the paginator's fetch state.
type PageState int

const (
	StateIdle PageState = iota
	StateLoading
	StateLoaded
	StateFailed
	StateReauthorizing
)

func (s PageState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	case StateReauthorizing:
		return "reauthorizing"
	}
	return "unknown"
}

// Outcome tells the caller what happened to a fetch result.
type Outcome int

const (
	// OutcomeDiscarded means the response belonged to an older request.
	OutcomeDiscarded Outcome = iota
	// OutcomeFailed means the error is now surfaced by Err.
	OutcomeFailed
	// OutcomeReauthorize means the caller should start the reconnect flow.
	OutcomeReauthorize
	// OutcomeLoaded means the page was stored.
	OutcomeLoaded
)

// Ticket identifies one fetch. Results carrying a ticket from an older
// generation are ignored.
type Ticket struct {
	gen   uint64
	Token string
}

// Paginator tracks the cursor history, current page and selection for one
// integration + filter + search combination.
//
// tokens[0] is always "" (the first page). Changing the integration, filter,
// search or stored query discards the history.
type Paginator struct {
	integrationID string
	filter        domain.EmailFilter
	search        string
	baseQuery     string

	tokens    []string
	pageIndex int
	nextToken string

	items      []domain.EmailMessage
	selectedID string
	err        error
	state      PageState

	reauthAttempted bool
	gen             uint64
}

func NewPaginator() *Paginator {
	return &Paginator{
		filter: domain.FilterAll,
		tokens: []string{""},
	}
}

func (p *Paginator) reset() {
	p.tokens = []string{""}
	p.pageIndex = 0
	p.state = StateIdle
	p.gen++
}

// SetIntegration switches the active integration. The re-auth flag is
// cleared only when the id actually changes.
func (p *Paginator) SetIntegration(id string) bool {
	if id == p.integrationID {
		return false
	}
	p.integrationID = id
	p.reauthAttempted = false
	p.items = nil
	p.nextToken = ""
	p.selectedID = ""
	p.err = nil
	p.reset()
	return true
}

func (p *Paginator) SetFilter(f domain.EmailFilter) bool {
	if f == p.filter {
		return false
	}
	p.filter = f
	p.reset()
	return true
}

// SetSearch applies the debounced free-text search.
func (p *Paginator) SetSearch(s string) bool {
	s = strings.TrimSpace(s)
	if s == p.search {
		return false
	}
	p.search = s
	p.reset()
	return true
}

// SetBaseQuery records the integration's stored query so an edit to it
// resets the cursor history like any other query change.
func (p *Paginator) SetBaseQuery(q string) bool {
	q = strings.TrimSpace(q)
	if q == p.baseQuery {
		return false
	}
	p.baseQuery = q
	p.reset()
	return true
}

func (p *Paginator) IntegrationID() string { return p.integrationID }
func (p *Paginator) Filter() domain.EmailFilter { return p.filter }
func (p *Paginator) Search() string { return p.search }
func (p *Paginator) State() PageState { return p.state }
func (p *Paginator) PageIndex() int { return p.pageIndex }
func (p *Paginator) Err() error { return p.err }
func (p *Paginator) Items() []domain.EmailMessage {
	return p.items
}

// Cursor is the page token used by the next fetch.
func (p *Paginator) Cursor() string {
	return p.tokens[p.pageIndex]
}

// Tokens returns a copy of the cursor history.
func (p *Paginator) Tokens() []string {
	return append([]string(nil), p.tokens...)
}

func (p *Paginator) ReauthAttempted() bool { return p.reauthAttempted }

// Begin starts a fetch for the current cursor. Any fetch already in flight
// becomes stale.
func (p *Paginator) Begin() Ticket {
	p.gen++
	p.state = StateLoading
	p.err = nil
	return Ticket{gen: p.gen, Token: p.Cursor()}
}

// Current reports whether t belongs to the latest fetch.
func (p *Paginator) Current(t Ticket) bool {
	return t.gen == p.gen
}

// Succeed stores a fetched page. The previous selection is kept when the
// message is still present, otherwise the first message is selected.
func (p *Paginator) Succeed(t Ticket, page *domain.EmailPage) bool {
	if !p.Current(t) {
		return false
	}
	p.items = page.Items
	p.nextToken = page.NextPageToken
	if p.selectedID == "" || !p.contains(p.selectedID) {
		p.selectedID = ""
		if len(p.items) > 0 {
			p.selectedID = p.items[0].ID
		}
	}
	p.state = StateLoaded
	return true
}

// Fail records a fetch error. The first 401/403 for an integration asks for a
// reconnect instead of surfacing the error.
func (p *Paginator) Fail(t Ticket, err error) Outcome {
	if !p.Current(t) {
		return OutcomeDiscarded
	}
	if api.IsAuthExpired(err) && p.integrationID != "" && !p.reauthAttempted {
		p.reauthAttempted = true
		p.state = StateReauthorizing
		return OutcomeReauthorize
	}
	p.err = err
	p.items = nil
	p.nextToken = ""
	p.state = StateFailed
	return OutcomeFailed
}

// ReauthFailed surfaces an error from the reconnect flow itself.
func (p *Paginator) ReauthFailed(err error) {
	p.err = err
	p.state = StateFailed
}

// Clear empties the page without touching the cursor history. Used when the
// integration cannot be fetched.
func (p *Paginator) Clear() {
	p.gen++
	p.items = nil
	p.nextToken = ""
	p.selectedID = ""
	p.state = StateIdle
}

func (p *Paginator) HasNext() bool { return p.nextToken != "" }
func (p *Paginator) HasPrev() bool { return p.pageIndex > 0 }

// Next advances to the following page. It reports false when there is no
// next page.
func (p *Paginator) Next() bool {
	if p.nextToken == "" {
		return false
	}
	if p.pageIndex+1 < len(p.tokens) {
		p.tokens[p.pageIndex+1] = p.nextToken
	} else {
		p.tokens = append(p.tokens, p.nextToken)
	}
	p.pageIndex++
	p.state = StateIdle
	return true
}

// Prev goes back one page, reusing the stored cursor.
func (p *Paginator) Prev() bool {
	if p.pageIndex == 0 {
		return false
	}
	p.pageIndex--
	p.state = StateIdle
	return true
}

func (p *Paginator) contains(id string) bool {
	for _, m := range p.items {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Select marks a message as selected. Unknown ids are ignored.
func (p *Paginator) Select(id string) bool {
	if !p.contains(id) {
		return false
	}
	p.selectedID = id
	return true
}

// Selected returns the selected message, falling back to the first one.
func (p *Paginator) Selected() *domain.EmailMessage {
	if len(p.items) == 0 {
		return nil
	}
	for i := range p.items {
		if p.items[i].ID == p.selectedID {
			return &p.items[i]
		}
	}
	return &p.items[0]
}

// SelectedIndex is the position of the selected message, or 0.
func (p *Paginator) SelectedIndex() int {
	for i, m := range p.items {
		if m.ID == p.selectedID {
			return i
		}
	}
	return 0
}

// Session captures the cursor state for persistence.
func (p *Paginator) Session() domain.MailSession {
	return domain.MailSession{
		IntegrationID: p.integrationID,
		Filter:        p.filter,
		Search:        p.search,
		BaseQuery:     p.baseQuery,
		Tokens:        p.Tokens(),
		PageIndex:     p.pageIndex,
		NextToken:     p.nextToken,
	}
}

// Restore loads a saved session. A malformed session restores to the first
// page.
func (p *Paginator) Restore(s domain.MailSession) {
	p.integrationID = s.IntegrationID
	p.filter = s.Filter
	if p.filter == "" {
		p.filter = domain.FilterAll
	}
	p.search = strings.TrimSpace(s.Search)
	p.baseQuery = strings.TrimSpace(s.BaseQuery)
	p.nextToken = s.NextToken
	p.tokens = append([]string(nil), s.Tokens...)
	p.pageIndex = s.PageIndex
	if len(p.tokens) == 0 || p.tokens[0] != "" || p.pageIndex < 0 || p.pageIndex >= len(p.tokens) {
		p.tokens = []string{""}
		p.pageIndex = 0
	}
	p.state = StateIdle
	p.gen++
}
