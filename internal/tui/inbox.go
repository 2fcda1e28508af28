package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/assist/internal/domain"
)

// Messages emitted by inboxModel.

type emailSelectedMsg struct {
	emailID string
}

type pageRequestMsg struct {
	next bool
}

// inboxModel displays one page of the email listing.
type inboxModel struct {
	emails  []domain.EmailMessage
	cursor  int
	offset  int
	loading bool
	empty   string
	notice  string
	errText string
	footer  string
	width   int
	height  int
	focused bool
	now     func() time.Time
}

func newInbox() inboxModel {
	return inboxModel{now: time.Now, empty: "No messages"}
}

func (m inboxModel) Update(msg tea.Msg) (inboxModel, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustScroll()
			}

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.emails)-1 {
				m.cursor++
				m.adjustScroll()
			}

		case key.Matches(msg, keys.Enter):
			id := m.SelectedEmailID()
			if id == "" {
				return m, nil
			}
			return m, func() tea.Msg { return emailSelectedMsg{emailID: id} }

		case key.Matches(msg, keys.NextPage):
			return m, func() tea.Msg { return pageRequestMsg{next: true} }

		case key.Matches(msg, keys.PrevPage):
			return m, func() tea.Msg { return pageRequestMsg{next: false} }
		}
	}

	return m, nil
}

func (m inboxModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var header []string
	if m.notice != "" {
		header = append(header, noticeStyle.Render(truncate(m.notice, m.width)))
	}
	if m.errText != "" {
		header = append(header, lipgloss.NewStyle().Foreground(errorColor).Render(truncate(m.errText, m.width)))
	}

	var b strings.Builder
	for _, h := range header {
		b.WriteString(h)
		b.WriteByte('\n')
	}

	switch {
	case m.loading && len(m.emails) == 0:
		b.WriteString(mutedTextStyle.Render("Loading..."))
		return b.String()
	case len(m.emails) == 0:
		b.WriteString(mutedTextStyle.Render(m.empty))
		return b.String()
	}

	visible := m.visibleRows() - len(header)
	if visible < 1 {
		visible = 1
	}
	end := min(m.offset+visible, len(m.emails))
	now := m.now()
	for i := m.offset; i < end; i++ {
		if i > m.offset {
			b.WriteByte('\n')
		}
		line := m.renderRow(i, now)
		if i == m.cursor && m.focused {
			line = selectedStyle.Width(m.width).Render(line)
		}
		b.WriteString(line)
	}
	if m.footer != "" {
		b.WriteByte('\n')
		b.WriteString(mutedTextStyle.Render(m.footer))
	}
	return b.String()
}

// SetEmails replaces the page and moves the cursor to selected.
func (m *inboxModel) SetEmails(emails []domain.EmailMessage, selected int) {
	m.emails = emails
	m.cursor = selected
	m.clampCursor()
}

// SetSize updates the dimensions available for rendering.
func (m *inboxModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.adjustScroll()
}

// SelectedEmailID returns the ID of the highlighted email.
func (m inboxModel) SelectedEmailID() string {
	if len(m.emails) == 0 || m.cursor >= len(m.emails) {
		return ""
	}
	return m.emails[m.cursor].ID
}

// --- internal helpers ---

func (m inboxModel) visibleRows() int {
	// one row for the page footer
	if m.height < 2 {
		return 1
	}
	return m.height - 1
}

func (m *inboxModel) adjustScroll() {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m *inboxModel) clampCursor() {
	if len(m.emails) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.emails) {
		m.cursor = len(m.emails) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = 0
	}
	m.adjustScroll()
}

func (m inboxModel) renderRow(idx int, now time.Time) string {
	e := &m.emails[idx]

	marker := "  "
	if hasLabel(e, "TASK") {
		marker = accentStyle.Render("● ")
	}

	from := e.Sender().DisplayName()
	date := e.ListDate(now)

	fromWidth := 18
	dateWidth := len(date)
	subjectWidth := m.width - fromWidth - dateWidth - 6 // marker(2) + two "  " gaps(4)
	if subjectWidth < 10 {
		subjectWidth = 10
	}

	from = truncate(from, fromWidth)
	subject := truncate(e.SubjectText(), subjectWidth)

	fromCol := lipgloss.NewStyle().Width(fromWidth).Render(from)
	subjectCol := lipgloss.NewStyle().Width(subjectWidth).Render(subject)
	dateCol := mutedTextStyle.Width(dateWidth).Render(date)

	line := marker + fromCol + "  " + subjectCol + "  " + dateCol

	if e.IsUnread() {
		line = unreadStyle.Render(line)
	}

	return line
}

// --- utility functions ---

func hasLabel(e *domain.EmailMessage, label string) bool {
	for _, l := range e.Labels {
		if l == label {
			return true
		}
	}
	return false
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
