package tui

import "github.com/charmbracelet/lipgloss"

type statusBar struct {
	message       string
	width         int
	isError       bool
	view          view
	multiAccount  bool
	readerVisible bool
}

func newStatusBar() statusBar {
	return statusBar{message: "Ready"}
}

func (s *statusBar) setMessage(msg string) {
	s.message = msg
	s.isError = false
}

func (s *statusBar) setError(msg string) {
	s.message = msg
	s.isError = true
}

func (s statusBar) View() string {
	msgStyle := statusBarStyle
	if s.isError {
		msgStyle = msgStyle.Foreground(errorColor)
	}

	left := s.message
	shortcuts := s.shortcuts()

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(shortcuts) - 2
	if gap < 0 {
		gap = 0
	}

	content := left + lipgloss.NewStyle().Width(gap).Render("") + mutedTextStyle.Render(shortcuts)
	return msgStyle.Width(s.width).Render(content)
}

func (s statusBar) shortcuts() string {
	switch s.view {
	case viewDashboard:
		return "j/k:nav  enter:open  r:reload  1-3:views  q:quit"
	case viewIntegrations:
		return "h/l:category  /:search  enter:action  t:toggle  x:disconnect  e:settings"
	}
	if s.readerVisible {
		return "j/k:scroll  esc:back  n/p:page"
	}
	base := "j/k:nav  enter:open  /:search  f:filter  n/p:page"
	if s.multiAccount {
		return base + "  @:account"
	}
	return base
}
