package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/assist/internal/app"
	"github.com/lu-zhengda/assist/internal/callback"
	"github.com/lu-zhengda/assist/internal/domain"
)

type view int

const (
	viewDashboard view = iota
	viewIntegrations
	viewInbox
)

// parseView maps a config or flag value to a view. Unknown names start on
// the dashboard.
func parseView(s string) view {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integrations":
		return viewIntegrations
	case "inbox", "mail":
		return viewInbox
	}
	return viewDashboard
}

type pane int

const (
	paneSidebar pane = iota
	paneContent
	paneReader
)

// callbackTimeout bounds how long the app listens for the OAuth redirect.
const callbackTimeout = 5 * time.Minute

// --- async result messages ---

type dashboardLoadedMsg struct {
	feed *domain.DailyFeed
	err  error
}

type overviewMsg struct {
	overview app.Overview
	// done is the status message for a completed action; err is its failure.
	done string
	err  error
}

type integrationsListedMsg struct {
	mine []domain.Integration
	err  error
}

type emailsLoadedMsg struct {
	req  app.EmailRequest
	page *domain.EmailPage
	err  error
}

type reconnectedMsg struct {
	card    *domain.Card
	action  domain.Action
	authURL string
	err     error
}

type callbackMsg struct {
	err error
}

type searchDebouncedMsg struct {
	query string
}

type statusMsg struct {
	text string
	err  error
}

// Callback waits for the browser to return from the consent screen.
type Callback interface {
	Wait(ctx context.Context) (callback.Result, error)
}

// Navigator opens authorization URLs in the browser and remembers the last
// one so the status bar can show it when no browser is available.
type Navigator struct {
	open func(string) error

	mu   sync.Mutex
	last string
}

func NewNavigator(open func(string) error) *Navigator {
	return &Navigator{open: open}
}

// Navigate records authURL and tries to open it. A browser that fails to
// start is logged, not returned: the URL is still shown to the user.
func (n *Navigator) Navigate(ctx context.Context, authURL string) error {
	n.mu.Lock()
	n.last = authURL
	n.mu.Unlock()
	if n.open == nil {
		return nil
	}
	if err := n.open(authURL); err != nil {
		log.Printf("[tui] failed to open browser: %v", err)
	}
	return nil
}

// LastURL returns the most recent URL passed to Navigate.
func (n *Navigator) LastURL() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

// Options configures the TUI.
type Options struct {
	Inbox        *app.InboxService
	Integrations *app.IntegrationService
	Dashboard    *app.DashboardService
	Navigator    *Navigator
	Callback     Callback
	RedirectURI  string

	// Session is the saved mail cursor, or nil.
	Session     *domain.MailSession
	SaveSession func(domain.MailSession) error

	PreferredIntegration string
	StartView            string
	Name                 string
	NewsLimit            int
	NewsQuery            string
	Debounce             time.Duration
	Theme                string
}

// --- root model ---

type model struct {
	opts Options

	sidebar      sidebarModel
	dashboard    dashboardModel
	integrations integrationsModel
	inbox        inboxModel
	reader       readerModel
	search       searchModel
	settings     settingsModel
	statusBar    statusBar

	activeView view
	activePane pane

	debounce *app.Debouncer
	searchCh chan string
	done     chan struct{}
	awaiting bool
	// listed is set once the first integration listing has been applied.
	listed bool

	width  int
	height int
}

// NewModel creates the root TUI model.
func NewModel(opts Options) model {
	start := parseView(opts.StartView)

	m := model{
		opts:         opts,
		sidebar:      newSidebar(start),
		dashboard:    newDashboard(opts.Name),
		integrations: newIntegrations(),
		inbox:        newInbox(),
		reader:       newReader(),
		search:       newSearch("Search mail..."),
		settings:     newSettings(),
		statusBar:    newStatusBar(),
		debounce:     app.NewDebouncer(opts.Debounce),
		searchCh:     make(chan string, 1),
		done:         make(chan struct{}),
	}
	m.inbox.loading = true

	if opts.Session != nil {
		opts.Inbox.Pager().Restore(*opts.Session)
		m.search.SetQuery(opts.Session.Search)
	}

	m.setView(start)
	m.setFocus(paneContent)
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.loadDashboardCmd(),
		m.refreshIntegrationsCmd(),
		m.listIntegrationsCmd(),
		m.waitSearchCmd(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// --- window resize ---
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.width = msg.Width
		m.resizeSubModels()
		return m, nil

	// --- async result messages ---
	case dashboardLoadedMsg:
		m.dashboard.SetFeed(msg.feed, app.Describe(msg.err, app.PageDashboard))
		if msg.err != nil {
			log.Printf("[tui] dashboard failed: %v", msg.err)
		}
		return m, nil

	case overviewMsg:
		m.integrations.SetCards(msg.overview.Cards)
		m.integrations.errText = app.Describe(msg.overview.Err, app.PageIntegrations)
		if msg.err != nil {
			m.statusBar.setError(app.Describe(msg.err, app.PageIntegrations))
			return m, nil
		}
		if msg.done == "" {
			return m, nil
		}
		m.statusBar.setMessage(msg.done)
		// Status changes show up in the inbox too.
		return m, m.listIntegrationsCmd()

	case integrationsListedMsg:
		if msg.err != nil {
			m.inbox.loading = false
			m.inbox.errText = app.Describe(msg.err, app.PageInbox)
			return m, nil
		}
		m.opts.Inbox.SetIntegrations(msg.mine, m.preferredIntegration(msg.mine))
		m.listed = true
		return m, m.fetchCmd()

	case emailsLoadedMsg:
		return m.applyEmails(msg)

	case reconnectedMsg:
		return m.handleReconnected(msg)

	case callbackMsg:
		m.awaiting = false
		if msg.err != nil {
			if m.opts.Inbox.Pager().State() == app.StateReauthorizing {
				m.opts.Inbox.Pager().ReauthFailed(msg.err)
				m.syncInbox()
			}
			m.statusBar.setError(fmt.Sprintf("Sign-in did not complete: %v", msg.err))
			return m, nil
		}
		m.statusBar.setMessage("Signed in. Refreshing...")
		return m, tea.Batch(m.refreshIntegrationsCmd(), m.listIntegrationsCmd())

	case searchDebouncedMsg:
		cmds := []tea.Cmd{m.waitSearchCmd()}
		if m.opts.Inbox.Pager().SetSearch(msg.query) {
			m.closeReader()
			cmds = append(cmds, m.fetchCmd())
		}
		return m, tea.Batch(cmds...)

	case statusMsg:
		if msg.err != nil {
			m.statusBar.setError(msg.err.Error())
		} else {
			m.statusBar.setMessage(msg.text)
		}
		return m, nil

	// --- sub-model emitted messages ---
	case viewSelectedMsg:
		m.setView(msg.view)
		m.setFocus(paneContent)
		return m, nil

	case emailSelectedMsg:
		pager := m.opts.Inbox.Pager()
		if !pager.Select(msg.emailID) {
			return m, nil
		}
		m.reader.ShowEmail(pager.Selected())
		m.statusBar.readerVisible = true
		m.setFocus(paneReader)
		m.resizeSubModels()
		return m, nil

	case closeReaderMsg:
		m.closeReader()
		return m, nil

	case pageRequestMsg:
		return m.turnPage(msg.next)

	case openLinkMsg:
		nav := m.opts.Navigator
		return m, func() tea.Msg {
			if err := nav.Navigate(context.Background(), msg.url); err != nil {
				return statusMsg{err: err}
			}
			return statusMsg{text: "Opened " + msg.url}
		}

	case cardActionMsg:
		return m.handleCardAction(msg)

	case saveSettingsMsg:
		m.settings.Close()
		m.statusBar.setMessage("Saving settings...")
		svc := m.opts.Integrations
		return m, func() tea.Msg {
			ov, err := svc.Configure(context.Background(), msg.providerType, msg.config)
			return overviewMsg{overview: ov, done: "Settings saved", err: err}
		}

	case cancelSettingsMsg:
		m.settings.Close()
		return m, nil

	case searchChangedMsg:
		if m.activeView == viewIntegrations {
			var cmd tea.Cmd
			m.integrations, cmd = m.integrations.Update(msg)
			return m, cmd
		}
		ch := m.searchCh
		q := msg.query
		m.debounce.Trigger(func() {
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- q:
			default:
			}
		})
		return m, nil

	case closeSearchMsg:
		if m.activeView == viewIntegrations {
			m.integrations.search.Close()
		} else {
			m.search.Close()
		}
		return m, nil

	// --- key events ---
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The settings form gets all key events when visible.
	if m.settings.IsVisible() {
		var cmd tea.Cmd
		m.settings, cmd = m.settings.Update(msg)
		return m, cmd
	}
	if m.activeView == viewInbox && m.search.IsActive() {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	if m.activeView == viewIntegrations && m.integrations.search.IsActive() {
		var cmd tea.Cmd
		m.integrations, cmd = m.integrations.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.saveSession()
		m.debounce.Stop()
		return m, tea.Quit

	case key.Matches(msg, keys.Dashboard):
		m.setView(viewDashboard)
		return m, nil

	case key.Matches(msg, keys.Integrations):
		m.setView(viewIntegrations)
		return m, nil

	case key.Matches(msg, keys.Inbox):
		m.setView(viewInbox)
		return m, nil

	case key.Matches(msg, keys.Tab):
		switch {
		case m.activeView == viewInbox && m.reader.IsVisible() && m.activePane == paneContent:
			m.setFocus(paneReader)
		case m.activePane == paneSidebar:
			m.setFocus(paneContent)
		default:
			m.setFocus(paneSidebar)
		}
		return m, nil
	}

	if m.activePane != paneSidebar {
		if cmd, ok := m.viewKey(msg); ok {
			return m, cmd
		}
	}

	// Delegate to the focused sub-model.
	var cmd tea.Cmd
	switch {
	case m.activePane == paneSidebar:
		m.sidebar, cmd = m.sidebar.Update(msg)
	case m.activePane == paneReader:
		m.reader, cmd = m.reader.Update(msg)
	case m.activeView == viewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case m.activeView == viewIntegrations:
		m.integrations, cmd = m.integrations.Update(msg)
	default:
		m.inbox, cmd = m.inbox.Update(msg)
	}
	return m, cmd
}

// viewKey handles keys that belong to the active view rather than to one
// pane inside it.
func (m *model) viewKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch m.activeView {
	case viewDashboard:
		if key.Matches(msg, keys.Reload) {
			m.dashboard.loading = true
			m.statusBar.setMessage("Reloading dashboard...")
			return m.loadDashboardCmd(), true
		}

	case viewIntegrations:
		if key.Matches(msg, keys.Reload) {
			m.integrations.loading = true
			m.statusBar.setMessage("Refreshing integrations...")
			return m.refreshIntegrationsCmd(), true
		}

	case viewInbox:
		switch {
		case key.Matches(msg, keys.Search):
			m.search.Open()
			return nil, true

		case key.Matches(msg, keys.Filter):
			pager := m.opts.Inbox.Pager()
			next := domain.Filters[0]
			for i, f := range domain.Filters {
				if f == pager.Filter() {
					next = domain.Filters[(i+1)%len(domain.Filters)]
				}
			}
			pager.SetFilter(next)
			m.closeReader()
			m.statusBar.setMessage("Filter: " + filterNames[next])
			return m.fetchCmd(), true

		case key.Matches(msg, keys.SwitchAccount):
			accounts := m.opts.Inbox.Integrations()
			if len(accounts) < 2 {
				m.statusBar.setMessage("Only one Gmail account connected")
				return nil, true
			}
			idx := (m.opts.Inbox.ActiveIndex() + 1) % len(accounts)
			m.opts.Inbox.SwitchIntegration(accounts[idx].ID)
			m.closeReader()
			m.statusBar.setMessage("Switched to " + accounts[idx].AccountLabel(idx))
			return m.fetchCmd(), true

		case m.activePane == paneReader && key.Matches(msg, keys.NextPage, keys.PrevPage):
			next := key.Matches(msg, keys.NextPage)
			return func() tea.Msg { return pageRequestMsg{next: next} }, true

		case key.Matches(msg, keys.Reload):
			m.inbox.loading = true
			m.statusBar.setMessage("Reloading...")
			return m.listIntegrationsCmd(), true
		}
	}
	return nil, false
}

func (m model) turnPage(next bool) (tea.Model, tea.Cmd) {
	pager := m.opts.Inbox.Pager()
	if pager.State() == app.StateLoading {
		return m, nil
	}
	if next && !pager.Next() {
		m.statusBar.setMessage("Already on the last page")
		return m, nil
	}
	if !next && !pager.Prev() {
		m.statusBar.setMessage("Already on the first page")
		return m, nil
	}
	m.closeReader()
	return m, m.fetchCmd()
}

func (m model) applyEmails(msg emailsLoadedMsg) (tea.Model, tea.Cmd) {
	switch m.opts.Inbox.Apply(msg.req, msg.page, msg.err) {
	case app.OutcomeDiscarded:
		return m, nil

	case app.OutcomeReauthorize:
		m.syncInbox()
		m.statusBar.setMessage("Gmail session expired. Reconnecting...")
		svc := m.opts.Inbox
		nav := m.opts.Navigator
		return m, func() tea.Msg {
			err := svc.Reconnect(context.Background())
			return reconnectedMsg{action: domain.ActionReconnect, authURL: nav.LastURL(), err: err}
		}

	case app.OutcomeFailed:
		m.syncInbox()
		m.statusBar.setError(m.inbox.errText)
		return m, nil
	}

	m.syncInbox()
	m.saveSession()
	m.statusBar.setMessage(fmt.Sprintf("Loaded %d emails", len(msg.page.Items)))
	return m, nil
}

func (m model) handleReconnected(msg reconnectedMsg) (tea.Model, tea.Cmd) {
	if msg.card == nil && msg.err != nil {
		m.opts.Inbox.Pager().ReauthFailed(msg.err)
		m.syncInbox()
		m.statusBar.setError(m.inbox.errText)
		return m, nil
	}
	if msg.err != nil {
		m.statusBar.setError(app.Describe(msg.err, app.PageIntegrations))
		return m, nil
	}
	if msg.action == domain.ActionConfigure {
		in := m.opts.Integrations.Last().ByProvider[msg.card.ProviderType]
		m.openSettings(*msg.card, &in)
		return m, nil
	}

	m.statusBar.setMessage("Finish signing in in your browser: " + msg.authURL)
	if m.awaiting || m.opts.Callback == nil {
		return m, nil
	}
	m.awaiting = true
	cb := m.opts.Callback
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
		defer cancel()
		_, err := cb.Wait(ctx)
		return callbackMsg{err: err}
	}
}

func (m model) handleCardAction(msg cardActionMsg) (tea.Model, tea.Cmd) {
	svc := m.opts.Integrations
	card := msg.card

	switch msg.action {
	case actPrimary:
		if card.Enabled && !card.ComingSoon && domain.PrimaryAction(string(card.Status)) != domain.ActionConfigure {
			m.statusBar.setMessage(fmt.Sprintf("Starting %s sign-in...", card.Name))
		}
		redirect := m.opts.RedirectURI
		nav := m.opts.Navigator
		return m, func() tea.Msg {
			action, err := svc.PrimaryAction(context.Background(), card, redirect)
			return reconnectedMsg{card: &card, action: action, authURL: nav.LastURL(), err: err}
		}

	case actToggle:
		on := !domain.ToggleOn(string(card.Status))
		state := "disabled"
		if on {
			state = "enabled"
		}
		return m, func() tea.Msg {
			ov, err := svc.SetEnabled(context.Background(), card, on)
			return overviewMsg{overview: ov, done: fmt.Sprintf("%s %s", card.Name, state), err: err}
		}

	case actDisconnect:
		m.statusBar.setMessage(fmt.Sprintf("Disconnecting %s...", card.Name))
		return m, func() tea.Msg {
			ov, err := svc.Disconnect(context.Background(), card)
			return overviewMsg{overview: ov, done: card.Name + " disconnected", err: err}
		}

	case actSettings:
		var err error
		in, ok := svc.Last().ByProvider[card.ProviderType]
		switch {
		case card.ProviderType != domain.ProviderGmail:
			err = app.ErrUnsupportedProvider
		case !ok:
			err = app.ErrNotConnected
		}
		if err != nil {
			m.statusBar.setError(app.Describe(err, app.PageIntegrations))
			return m, nil
		}
		m.openSettings(card, &in)
	}
	return m, nil
}

func (m *model) openSettings(card domain.Card, in *domain.Integration) {
	m.settings.Open(card, in)
	_, contentWidth := m.layoutWidths()
	m.settings.SetSize(contentWidth, m.height-3)
}

// syncInbox copies the paginator and integration state into the inbox and
// sidebar views.
func (m *model) syncInbox() {
	svc := m.opts.Inbox
	pager := svc.Pager()
	active := svc.Active()

	m.inbox.loading = pager.State() == app.StateLoading
	m.inbox.notice = app.Notice(active)
	m.inbox.errText = ""
	if err := pager.Err(); err != nil {
		m.inbox.errText = app.Describe(err, app.PageInbox)
	}

	switch {
	case active == nil:
		m.inbox.empty = app.Describe(app.ErrNoEmailIntegration, app.PageInbox)
		m.sidebar.account = ""
	case active.Status == domain.StatusDisconnected:
		m.inbox.empty = "This Gmail account is disconnected. Enable it from the integrations view."
	default:
		m.inbox.empty = "No messages"
	}
	if active != nil {
		m.sidebar.account = active.AccountLabel(svc.ActiveIndex())
	}
	m.sidebar.filter = pager.Filter()
	m.sidebar.page = pager.PageIndex() + 1
	m.statusBar.multiAccount = len(svc.Integrations()) > 1

	m.inbox.footer = ""
	if len(pager.Items()) > 0 {
		var nav []string
		if pager.HasPrev() {
			nav = append(nav, "p:prev")
		}
		if pager.HasNext() {
			nav = append(nav, "n:next")
		}
		m.inbox.footer = fmt.Sprintf("Page %d  %s", pager.PageIndex()+1, strings.Join(nav, "  "))
	}
	m.inbox.SetEmails(pager.Items(), max(pager.SelectedIndex(), 0))
}

// preferredIntegration picks the account to show. The configured account wins
// on the first listing while it is still connected; afterwards the current
// selection sticks so reloads keep an account switched with '@'.
func (m model) preferredIntegration(mine []domain.Integration) string {
	current := m.opts.Inbox.Pager().IntegrationID()
	cfg := m.opts.PreferredIntegration
	if m.listed && current != "" {
		return current
	}
	for _, in := range mine {
		if cfg != "" && in.ID == cfg && in.ProviderType == domain.ProviderGmail {
			return cfg
		}
	}
	if current != "" {
		return current
	}
	return cfg
}

func (m *model) saveSession() {
	if m.opts.SaveSession == nil || m.opts.Inbox.Pager().IntegrationID() == "" {
		return
	}
	if err := m.opts.SaveSession(m.opts.Inbox.Pager().Session()); err != nil {
		log.Printf("[tui] failed to save mail session: %v", err)
	}
}

func (m *model) closeReader() {
	if !m.reader.IsVisible() {
		return
	}
	m.reader.Close()
	m.statusBar.readerVisible = false
	if m.activePane == paneReader {
		m.setFocus(paneContent)
	}
	m.resizeSubModels()
}

// --- focus management ---

func (m *model) setView(v view) {
	m.activeView = v
	m.sidebar.activeView = v
	m.statusBar.view = v
	m.setFocus(m.activePane)
}

func (m *model) setFocus(p pane) {
	if p == paneReader && !m.reader.IsVisible() {
		p = paneContent
	}
	m.activePane = p
	m.sidebar.focused = p == paneSidebar
	content := p == paneContent
	m.dashboard.focused = content && m.activeView == viewDashboard
	m.integrations.focused = content && m.activeView == viewIntegrations
	m.inbox.focused = content && m.activeView == viewInbox
	m.reader.focused = p == paneReader && m.activeView == viewInbox
}

// --- rendering ---

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sidebarWidth, contentWidth := m.layoutWidths()
	contentHeight := m.height - 3 // reserve space for status bar

	sidebarView := sidebarStyle.
		Width(sidebarWidth).
		Height(contentHeight).
		Render(m.sidebar.View())

	var contentView string
	switch {
	case m.settings.IsVisible():
		contentView = lipgloss.NewStyle().
			Width(contentWidth).
			Height(contentHeight).
			Render(m.settings.View())

	case m.activeView == viewDashboard:
		contentView = listStyle.
			Width(contentWidth).
			Height(contentHeight).
			Render(m.dashboard.View())

	case m.activeView == viewIntegrations:
		contentView = listStyle.
			Width(contentWidth).
			Height(contentHeight).
			Render(m.integrations.View())

	default:
		contentView = m.inboxView(contentWidth, contentHeight)
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top, sidebarView, contentView)
	return lipgloss.JoinVertical(lipgloss.Left, main, m.statusBar.View())
}

func (m model) inboxView(width, height int) string {
	list := m.inbox.View()
	if s := m.search.View(); s != "" {
		list = s + "\n" + list
	}

	if !m.reader.IsVisible() {
		return listStyle.Width(width).Height(height).Render(list)
	}

	// Split view: list (top half) + reader (bottom half).
	listHeight := height / 2
	readerHeight := height - listHeight
	listView := listStyle.Width(width).Height(listHeight).Render(list)
	readerView := readerStyle.Width(width).Height(readerHeight).Render(m.reader.View())
	return lipgloss.JoinVertical(lipgloss.Left, listView, readerView)
}

// --- layout helpers ---

func (m model) layoutWidths() (sidebarWidth, contentWidth int) {
	sidebarWidth = max(m.width/5, 20)
	contentWidth = m.width - sidebarWidth - 2
	return
}

func (m *model) resizeSubModels() {
	sidebarWidth, contentWidth := m.layoutWidths()
	contentHeight := m.height - 3

	// sidebarStyle: Border(2h + 2v) + Padding(2h + 2v) = 4h, 4v
	m.sidebar.SetSize(sidebarWidth-4, contentHeight-4)

	// listStyle: Border(2h + 2v) + Padding(2h + 0v) = 4h, 2v
	m.dashboard.width, m.dashboard.height = contentWidth-4, contentHeight-2
	m.integrations.width, m.integrations.height = contentWidth-4, contentHeight-2
	m.integrations.search.SetSize(contentWidth - 4)
	m.search.SetSize(contentWidth - 4)

	// one line for the search bar above the list
	if m.reader.IsVisible() {
		listHeight := contentHeight / 2
		readerHeight := contentHeight - listHeight
		m.inbox.SetSize(contentWidth-4, listHeight-3)
		// readerStyle: Border(2h + 2v) + Padding(4h + 2v) = 6h, 4v
		m.reader.SetSize(contentWidth-6, readerHeight-4)
	} else {
		m.inbox.SetSize(contentWidth-4, contentHeight-3)
	}

	m.settings.SetSize(contentWidth, contentHeight)
}

// --- async commands ---

func (m model) loadDashboardCmd() tea.Cmd {
	svc := m.opts.Dashboard
	limit, q := m.opts.NewsLimit, m.opts.NewsQuery
	return func() tea.Msg {
		feed, err := svc.Load(context.Background(), limit, q)
		return dashboardLoadedMsg{feed: feed, err: err}
	}
}

func (m model) refreshIntegrationsCmd() tea.Cmd {
	svc := m.opts.Integrations
	return func() tea.Msg {
		return overviewMsg{overview: svc.Refresh(context.Background())}
	}
}

func (m model) listIntegrationsCmd() tea.Cmd {
	svc := m.opts.Inbox
	return func() tea.Msg {
		mine, err := svc.ListIntegrations(context.Background())
		return integrationsListedMsg{mine: mine, err: err}
	}
}

// fetchCmd starts a fetch for the paginator's cursor. Inbox state is only
// touched here and in applyEmails, both on the update goroutine.
func (m *model) fetchCmd() tea.Cmd {
	svc := m.opts.Inbox
	req, ok := svc.Prepare()
	m.syncInbox()
	if !ok {
		if svc.Active() == nil {
			log.Printf("[tui] no gmail integration connected")
		}
		return nil
	}
	return func() tea.Msg {
		page, err := svc.Fetch(context.Background(), req)
		return emailsLoadedMsg{req: req, page: page, err: err}
	}
}

// waitSearchCmd delivers the next debounced query. It is re-armed after
// every delivery and gives up when the program exits.
func (m model) waitSearchCmd() tea.Cmd {
	ch, done := m.searchCh, m.done
	return func() tea.Msg {
		select {
		case q := <-ch:
			return searchDebouncedMsg{query: q}
		case <-done:
			return nil
		}
	}
}

// Run starts the Bubble Tea TUI application.
func Run(opts Options) error {
	if opts.Inbox == nil || opts.Integrations == nil || opts.Dashboard == nil {
		return errors.New("tui: services are required")
	}
	if opts.Navigator == nil {
		opts.Navigator = NewNavigator(nil)
	}
	applyTheme(opts.Theme)

	m := NewModel(opts)
	defer close(m.done)
	defer m.debounce.Stop()

	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
