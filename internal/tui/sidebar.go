package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/assist/internal/domain"
)

// viewSelectedMsg is sent when the user picks a view via Enter.
type viewSelectedMsg struct {
	view view
}

var viewOrder = []view{viewDashboard, viewIntegrations, viewInbox}

var viewNames = map[view]string{
	viewDashboard:    "Dashboard",
	viewIntegrations: "Integrations",
	viewInbox:        "Inbox",
}

var filterNames = map[domain.EmailFilter]string{
	domain.FilterAll:    "All",
	domain.FilterUnread: "Unread",
	domain.FilterTasks:  "Tasks",
}

// sidebarModel lists the views and, below them, the inbox context: the
// active Gmail account and filter.
type sidebarModel struct {
	cursor     int
	activeView view
	account    string
	filter     domain.EmailFilter
	page       int
	width      int
	height     int
	focused    bool
}

func newSidebar(start view) sidebarModel {
	s := sidebarModel{activeView: start, filter: domain.FilterAll}
	for i, v := range viewOrder {
		if v == start {
			s.cursor = i
		}
	}
	return s
}

// SetSize updates the sidebar dimensions.
func (s *sidebarModel) SetSize(w, h int) {
	s.width = w
	s.height = h
}

// Update handles key events for sidebar navigation.
func (s sidebarModel) Update(msg tea.Msg) (sidebarModel, tea.Cmd) {
	if !s.focused {
		return s, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			s.cursor--
			if s.cursor < 0 {
				s.cursor = len(viewOrder) - 1
			}
		case key.Matches(msg, keys.Down):
			s.cursor++
			if s.cursor >= len(viewOrder) {
				s.cursor = 0
			}
		case key.Matches(msg, keys.Enter):
			v := viewOrder[s.cursor]
			return s, func() tea.Msg {
				return viewSelectedMsg{view: v}
			}
		}
	}

	return s, nil
}

// View renders the sidebar.
func (s sidebarModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("assist"))
	b.WriteString("\n\n")

	for i, v := range viewOrder {
		b.WriteString(s.renderLine(viewNames[v], v == s.activeView, i))
		b.WriteString("\n")
	}

	if s.account == "" {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(mutedTextStyle.Render(strings.Repeat("─", max(s.width, 10))))
	b.WriteString("\n")
	b.WriteString(mutedTextStyle.Render(truncate(s.account, max(s.width, 10))))
	b.WriteString("\n")
	b.WriteString(mutedTextStyle.Render(fmt.Sprintf("Filter: %s", filterNames[s.filter])))
	b.WriteString("\n")
	b.WriteString(mutedTextStyle.Render(fmt.Sprintf("Page %d", s.page)))
	return b.String()
}

// renderLine renders one view entry with cursor highlighting and active marker.
func (s sidebarModel) renderLine(name string, active bool, idx int) string {
	prefix := "  "
	if active {
		prefix = lipgloss.NewStyle().Foreground(secondaryColor).Render("▶ ")
	}

	padded := lipgloss.NewStyle().Width(max(s.width, 10)).Render(prefix + name)

	if s.focused && idx == s.cursor {
		return selectedStyle.Render(padded)
	}
	return padded
}
