package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/assist/internal/domain"
)

type closeReaderMsg struct{}

// readerModel shows one message in a scrollable pane.
type readerModel struct {
	email        *domain.EmailMessage
	content      string
	scrollOffset int
	maxScroll    int
	width        int
	height       int
	focused      bool
	visible      bool
}

func newReader() readerModel {
	return readerModel{}
}

func (r readerModel) Update(msg tea.Msg) (readerModel, tea.Cmd) {
	if !r.focused || !r.visible {
		return r, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if r.scrollOffset > 0 {
				r.scrollOffset--
			}

		case key.Matches(msg, keys.Down):
			if r.scrollOffset < r.maxScroll {
				r.scrollOffset++
			}

		case key.Matches(msg, keys.Back):
			return r, func() tea.Msg {
				return closeReaderMsg{}
			}
		}
	}

	return r, nil
}

func (r readerModel) View() string {
	if !r.visible || r.width == 0 || r.height == 0 {
		return ""
	}

	if r.content == "" {
		return mutedTextStyle.Render("No email selected")
	}

	lines := strings.Split(r.content, "\n")
	visibleHeight := max(r.height, 1)
	start := min(r.scrollOffset, len(lines))
	end := min(start+visibleHeight, len(lines))
	return strings.Join(lines[start:end], "\n")
}

// ShowEmail displays a message in the reader pane.
func (r *readerModel) ShowEmail(email *domain.EmailMessage) {
	r.email = email
	r.visible = true
	r.scrollOffset = 0
	r.content = renderEmail(email, r.width)
	r.recalcMaxScroll()
}

// Close hides the reader and clears its content.
func (r *readerModel) Close() {
	r.visible = false
	r.email = nil
	r.content = ""
	r.scrollOffset = 0
	r.maxScroll = 0
}

// SetSize updates the reader dimensions and recalculates scroll bounds.
func (r *readerModel) SetSize(w, h int) {
	r.width = w
	r.height = h
	if r.email != nil {
		r.content = renderEmail(r.email, r.width)
	}
	r.recalcMaxScroll()
}

// IsVisible returns whether the reader pane is currently shown.
func (r readerModel) IsVisible() bool {
	return r.visible
}

func (r *readerModel) recalcMaxScroll() {
	if r.content == "" {
		r.maxScroll = 0
		r.scrollOffset = 0
		return
	}

	lines := strings.Split(r.content, "\n")
	r.maxScroll = max(len(lines)-max(r.height, 1), 0)
	if r.scrollOffset > r.maxScroll {
		r.scrollOffset = r.maxScroll
	}
}

// renderEmail formats a message with headers, the summary and the body
// paragraphs wrapped to width.
func renderEmail(email *domain.EmailMessage, width int) string {
	var b strings.Builder
	width = max(width, 20)

	b.WriteString(mutedTextStyle.Render("From:    "))
	b.WriteString(email.Sender().String())
	b.WriteByte('\n')

	if email.To != "" {
		b.WriteString(mutedTextStyle.Render("To:      "))
		b.WriteString(email.To)
		b.WriteByte('\n')
	}

	b.WriteString(mutedTextStyle.Render("Date:    "))
	b.WriteString(email.DetailDate())
	b.WriteByte('\n')

	b.WriteString(mutedTextStyle.Render("Subject: "))
	b.WriteString(email.SubjectText())
	b.WriteByte('\n')

	b.WriteString(mutedTextStyle.Render(strings.Repeat("─", width)))
	b.WriteByte('\n')

	wrap := lipgloss.NewStyle().Width(width)
	b.WriteString(titleStyle.Render("Summary"))
	b.WriteByte('\n')
	b.WriteString(wrap.Render(email.SummaryText()))
	b.WriteString("\n\n")

	paras := email.Paragraphs()
	if len(paras) == 0 && email.Snippet != "" {
		paras = []string{email.Snippet}
	}
	for i, p := range paras {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(wrap.Render(p))
	}

	return b.String()
}
