package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/assist/internal/domain"
)

type cardAction int

const (
	actPrimary cardAction = iota
	actToggle
	actDisconnect
	actSettings
)

type cardActionMsg struct {
	card   domain.Card
	action cardAction
}

// integrationsModel is the card grid, rendered as a list, with category
// tabs and a name/description search.
type integrationsModel struct {
	cards    []domain.Card
	category int
	search   searchModel
	cursor   int
	offset   int
	loading  bool
	errText  string
	width    int
	height   int
	focused  bool
}

func newIntegrations() integrationsModel {
	return integrationsModel{
		search:  newSearch("Search integrations..."),
		loading: true,
	}
}

// SetCards replaces the reconciled cards, keeping the cursor on the same
// provider when it is still visible.
func (m *integrationsModel) SetCards(cards []domain.Card) {
	current := m.SelectedCard()
	m.cards = cards
	m.loading = false
	m.cursor = 0
	if current != nil {
		for i, c := range m.visible() {
			if c.ProviderType == current.ProviderType {
				m.cursor = i
			}
		}
	}
	m.adjustScroll()
}

func (m integrationsModel) activeCategory() domain.Category {
	return domain.Categories[m.category]
}

func (m integrationsModel) visible() []domain.Card {
	return domain.FilterCards(m.cards, m.activeCategory(), m.search.Query())
}

// SelectedCard returns the highlighted card, or nil.
func (m integrationsModel) SelectedCard() *domain.Card {
	v := m.visible()
	if m.cursor < 0 || m.cursor >= len(v) {
		return nil
	}
	return &v[m.cursor]
}

func (m integrationsModel) Update(msg tea.Msg) (integrationsModel, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	switch msg := msg.(type) {
	case searchChangedMsg:
		m.cursor = 0
		m.offset = 0
		return m, nil

	case tea.KeyMsg:
		if m.search.IsActive() {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, keys.Search):
			m.search.Open()
			return m, nil
		case key.Matches(msg, keys.Left):
			m.category = (m.category + len(domain.Categories) - 1) % len(domain.Categories)
			m.cursor, m.offset = 0, 0
		case key.Matches(msg, keys.Right):
			m.category = (m.category + 1) % len(domain.Categories)
			m.cursor, m.offset = 0, 0
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustScroll()
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.visible())-1 {
				m.cursor++
				m.adjustScroll()
			}
		case key.Matches(msg, keys.Enter):
			return m, m.actionCmd(actPrimary)
		case key.Matches(msg, keys.Toggle):
			return m, m.actionCmd(actToggle)
		case key.Matches(msg, keys.Disconnect):
			return m, m.actionCmd(actDisconnect)
		case key.Matches(msg, keys.Configure):
			return m, m.actionCmd(actSettings)
		}
	}

	return m, nil
}

func (m integrationsModel) actionCmd(a cardAction) tea.Cmd {
	card := m.SelectedCard()
	if card == nil {
		return nil
	}
	c := *card
	return func() tea.Msg { return cardActionMsg{card: c, action: a} }
}

// rowHeight is the lines one card takes: title, description, blank.
const rowHeight = 3

func (m integrationsModel) visibleCards() int {
	// tabs + search + error lines
	return max((m.height-3)/rowHeight, 1)
}

func (m *integrationsModel) adjustScroll() {
	n := m.visibleCards()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+n {
		m.offset = m.cursor - n + 1
	}
}

func (m integrationsModel) View() string {
	if m.width == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteByte('\n')
	if s := m.search.View(); s != "" {
		b.WriteString(s)
	}
	b.WriteByte('\n')
	if m.errText != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(errorColor).Render(truncate(m.errText, m.width)))
	}
	b.WriteByte('\n')

	if m.loading && len(m.cards) == 0 {
		b.WriteString(mutedTextStyle.Render("Loading integrations..."))
		return b.String()
	}

	cards := m.visible()
	if len(cards) == 0 {
		b.WriteString(mutedTextStyle.Render("No integrations match."))
		return b.String()
	}

	end := min(m.offset+m.visibleCards(), len(cards))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderCard(cards[i], i == m.cursor && m.focused))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m integrationsModel) renderTabs() string {
	parts := make([]string, 0, len(domain.Categories))
	for i, c := range domain.Categories {
		name := domain.CategoryNames[c]
		if i == m.category {
			parts = append(parts, titleStyle.Render("["+name+"]"))
		} else {
			parts = append(parts, mutedTextStyle.Render(" "+name+" "))
		}
	}
	return strings.Join(parts, " ")
}

func (m integrationsModel) renderCard(c domain.Card, selected bool) string {
	label := c.StatusText()
	action := c.ActionText()
	if !c.Enabled && !c.ComingSoon {
		action = "Unavailable"
	}
	right := statusStyle(label).Render(label) + mutedTextStyle.Render("  ["+action+"]")

	name := c.Name
	if selected {
		name = "▶ " + name
	} else {
		name = "  " + name
	}
	gap := max(m.width-lipgloss.Width(name)-lipgloss.Width(right), 1)
	title := lipgloss.NewStyle().Bold(true).Render(name) + strings.Repeat(" ", gap) + right
	if selected {
		title = selectedStyle.Width(m.width).Render(name + strings.Repeat(" ", gap) + label + "  [" + action + "]")
	}

	desc := fmt.Sprintf("  %s · %s", domain.CategoryNames[c.Category], c.Description)
	return title + "\n" + mutedTextStyle.Render(truncate(desc, m.width))
}
