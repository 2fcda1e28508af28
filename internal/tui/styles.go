package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#6366F1")
	mutedColor     = lipgloss.Color("#6B7280")
	accentColor    = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	successColor   = lipgloss.Color("#10B981")

	sidebarStyle   lipgloss.Style
	listStyle      lipgloss.Style
	readerStyle    lipgloss.Style
	statusBarStyle lipgloss.Style
	titleStyle     lipgloss.Style
	selectedStyle  lipgloss.Style
	unreadStyle    lipgloss.Style
	accentStyle    lipgloss.Style
	mutedTextStyle lipgloss.Style
	noticeStyle    lipgloss.Style
)

func init() {
	applyTheme("default")
}

// applyTheme rebuilds the shared styles. "mono" drops every color for
// terminals that render them poorly; anything else is the default palette.
func applyTheme(name string) {
	primary, muted, accent := lipgloss.TerminalColor(primaryColor), lipgloss.TerminalColor(mutedColor), lipgloss.TerminalColor(accentColor)
	barBg, barFg := lipgloss.TerminalColor(lipgloss.Color("#1F2937")), lipgloss.TerminalColor(lipgloss.Color("#D1D5DB"))
	selFg := lipgloss.TerminalColor(lipgloss.Color("#FFFFFF"))
	if name == "mono" {
		none := lipgloss.NoColor{}
		primary, muted, accent, barBg, barFg, selFg = none, none, none, none, none, none
	}

	sidebarStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Padding(1, 1)

	listStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Padding(0, 1)

	readerStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Padding(1, 2)

	statusBarStyle = lipgloss.NewStyle().
		Background(barBg).
		Foreground(barFg).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
		Foreground(primary).
		Bold(true)

	selectedStyle = lipgloss.NewStyle().
		Background(primary).
		Foreground(selFg)
	if name == "mono" {
		selectedStyle = selectedStyle.Reverse(true)
	}

	unreadStyle = lipgloss.NewStyle().
		Bold(true)

	accentStyle = lipgloss.NewStyle().
		Foreground(accent)

	mutedTextStyle = lipgloss.NewStyle().
		Foreground(muted)

	noticeStyle = lipgloss.NewStyle().
		Foreground(accent).
		Bold(true)
}

// statusStyle colors a card's status label.
func statusStyle(label string) lipgloss.Style {
	switch label {
	case "In Sync":
		return lipgloss.NewStyle().Foreground(successColor)
	case "Action Required":
		return lipgloss.NewStyle().Foreground(accentColor)
	case "Error":
		return lipgloss.NewStyle().Foreground(errorColor)
	}
	return mutedTextStyle
}
