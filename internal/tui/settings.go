package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/assist/internal/api"
	"github.com/lu-zhengda/assist/internal/app"
	"github.com/lu-zhengda/assist/internal/domain"
)

// Messages emitted by settingsModel.

type saveSettingsMsg struct {
	providerType string
	config       api.GmailConfig
}

type cancelSettingsMsg struct{}

// Field indices within the settings form.
const (
	fieldQuery      = 0
	fieldLabels     = 1
	fieldMaxResults = 2
	fieldCount      = 3
)

// settingsModel is the Gmail sync settings form opened by a card's
// Configure action.
type settingsModel struct {
	queryInput  textinput.Model
	labelsInput textinput.Model
	maxInput    textinput.Model

	activeField  int
	providerType string
	title        string

	width   int
	height  int
	visible bool
}

func newSettings() settingsModel {
	query := textinput.New()
	query.Placeholder = "e.g. is:unread category:primary"
	query.CharLimit = 500
	query.Prompt = ""

	labels := textinput.New()
	labels.Placeholder = "INBOX, IMPORTANT"
	labels.CharLimit = 500
	labels.Prompt = ""

	maxResults := textinput.New()
	maxResults.Placeholder = fmt.Sprintf("%d", domain.DefaultMaxResults)
	maxResults.CharLimit = 6
	maxResults.Prompt = ""

	return settingsModel{
		queryInput:  query,
		labelsInput: labels,
		maxInput:    maxResults,
	}
}

// Update handles key events for the form.
func (c settingsModel) Update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if !c.visible {
		return c, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			c.activeField = (c.activeField + 1) % fieldCount
			c.updateFocus()
			return c, nil

		case "shift+tab", "up":
			c.activeField = (c.activeField + fieldCount - 1) % fieldCount
			c.updateFocus()
			return c, nil

		case "esc":
			return c, func() tea.Msg { return cancelSettingsMsg{} }

		case "ctrl+s", "enter":
			save := saveSettingsMsg{providerType: c.providerType, config: c.Config()}
			return c, func() tea.Msg { return save }
		}
	}

	var cmd tea.Cmd
	switch c.activeField {
	case fieldQuery:
		c.queryInput, cmd = c.queryInput.Update(msg)
	case fieldLabels:
		c.labelsInput, cmd = c.labelsInput.Update(msg)
	case fieldMaxResults:
		c.maxInput, cmd = c.maxInput.Update(msg)
	}

	return c, cmd
}

// View renders the form inside a bordered box.
func (c settingsModel) View() string {
	if !c.visible {
		return ""
	}

	innerWidth := max(c.width-4, 20)
	labelWidth := 14
	inputWidth := max(innerWidth-labelWidth, 10)

	c.queryInput.Width = inputWidth
	c.labelsInput.Width = inputWidth
	c.maxInput.Width = inputWidth

	label := func(s string) string {
		return mutedTextStyle.Render(fmt.Sprintf("%-*s", labelWidth-1, s))
	}

	rows := []string{
		label("Query:") + c.queryInput.View(),
		label("Labels:") + c.labelsInput.View(),
		label("Max results:") + c.maxInput.View(),
		"",
		mutedTextStyle.Render(fmt.Sprintf("Labels are comma separated. Max results is clamped to %d-%d.",
			domain.MinMaxResults, domain.MaxMaxResults)),
		mutedTextStyle.Render(strings.Repeat("─", innerWidth)),
		mutedTextStyle.Render("Tab:fields  Enter:save  Esc:cancel"),
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(0, 1).
		Width(max(c.width-2, 10))

	header := titleStyle.Render(" " + c.title + " ")
	return header + "\n" + boxStyle.Render(strings.Join(rows, "\n"))
}

// Open shows the form pre-filled from the integration's current config.
func (c *settingsModel) Open(card domain.Card, in *domain.Integration) {
	query, labels, maxResults := app.SettingsFields(in)
	c.providerType = card.ProviderType
	c.title = card.Name + " settings"
	c.queryInput.SetValue(query)
	c.labelsInput.SetValue(labels)
	c.maxInput.SetValue(maxResults)
	c.visible = true
	c.activeField = fieldQuery
	c.updateFocus()
}

// Close hides the form.
func (c *settingsModel) Close() {
	c.visible = false
	c.queryInput.Blur()
	c.labelsInput.Blur()
	c.maxInput.Blur()
}

// SetSize updates the available dimensions for the form.
func (c *settingsModel) SetSize(w, h int) {
	c.width = w
	c.height = h
}

// IsVisible reports whether the form is displayed.
func (c settingsModel) IsVisible() bool {
	return c.visible
}

// Config parses the current field values.
func (c settingsModel) Config() api.GmailConfig {
	return app.ParseSettings(c.queryInput.Value(), c.labelsInput.Value(), c.maxInput.Value())
}

// updateFocus sets the focus state on all inputs.
func (c *settingsModel) updateFocus() {
	c.queryInput.Blur()
	c.labelsInput.Blur()
	c.maxInput.Blur()

	switch c.activeField {
	case fieldQuery:
		c.queryInput.Focus()
	case fieldLabels:
		c.labelsInput.Focus()
	case fieldMaxResults:
		c.maxInput.Focus()
	}
}
