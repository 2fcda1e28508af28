package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Messages emitted by searchModel.

// searchChangedMsg carries the input after every edit. The inbox debounces
// it; the integrations view filters immediately.
type searchChangedMsg struct {
	query string
}

type closeSearchMsg struct{}

// searchModel is the one-line search box shown above a list.
type searchModel struct {
	input  textinput.Model
	active bool
	width  int
}

func newSearch(placeholder string) searchModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "/ "
	ti.CharLimit = 256
	return searchModel{input: ti}
}

func (s searchModel) Update(msg tea.Msg) (searchModel, tea.Cmd) {
	if !s.active {
		return s, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Back):
			cleared := s.input.Value() != ""
			s.input.SetValue("")
			s.Close()
			if !cleared {
				return s, func() tea.Msg { return closeSearchMsg{} }
			}
			return s, tea.Batch(
				func() tea.Msg { return searchChangedMsg{query: ""} },
				func() tea.Msg { return closeSearchMsg{} },
			)

		case key.Matches(msg, keys.Enter):
			s.Close()
			return s, func() tea.Msg { return closeSearchMsg{} }
		}
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if q := s.input.Value(); q != before {
		return s, tea.Batch(cmd, func() tea.Msg { return searchChangedMsg{query: q} })
	}
	return s, cmd
}

func (s searchModel) View() string {
	if !s.active && s.input.Value() == "" {
		return ""
	}
	if !s.active {
		return mutedTextStyle.Render("/ " + s.input.Value())
	}
	return s.input.View()
}

// Open focuses the input, keeping any previous query for editing.
func (s *searchModel) Open() {
	s.active = true
	s.input.Focus()
}

// Close blurs the input. The query stays applied.
func (s *searchModel) Close() {
	s.active = false
	s.input.Blur()
}

// SetSize updates the width available for the input.
func (s *searchModel) SetSize(w int) {
	s.width = w
	s.input.Width = max(w-4, 10)
}

// IsActive reports whether the search box has focus.
func (s searchModel) IsActive() bool {
	return s.active
}

// SetQuery replaces the text without emitting a change.
func (s *searchModel) SetQuery(q string) {
	s.input.SetValue(q)
}

// Query returns the current search text.
func (s searchModel) Query() string {
	return s.input.Value()
}
