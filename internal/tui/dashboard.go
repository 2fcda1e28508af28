package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/assist/internal/domain"
)

type openLinkMsg struct {
	url string
}

// dashboardModel shows the greeting, weather, mood and the news list.
type dashboardModel struct {
	feed    *domain.DailyFeed
	name    string
	loading bool
	errText string
	cursor  int
	width   int
	height  int
	focused bool
	now     func() time.Time
}

func newDashboard(name string) dashboardModel {
	return dashboardModel{name: name, loading: true, now: time.Now}
}

// SetFeed stores a loaded feed. A nil feed with errText is a failed load;
// the previous feed is dropped since partial data is never shown.
func (d *dashboardModel) SetFeed(feed *domain.DailyFeed, errText string) {
	d.feed = feed
	d.errText = errText
	d.loading = false
	d.cursor = 0
}

func (d dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if !d.focused || d.feed == nil {
		return d, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.feed.News)-1 {
				d.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if d.cursor < len(d.feed.News) && d.feed.News[d.cursor].URL != "" {
				u := d.feed.News[d.cursor].URL
				return d, func() tea.Msg { return openLinkMsg{url: u} }
			}
		}
	}
	return d, nil
}

func (d dashboardModel) View() string {
	if d.width == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(domain.Greeting(d.name, d.now().Hour())))
	b.WriteString("\n\n")

	switch {
	case d.loading:
		b.WriteString(mutedTextStyle.Render("Loading your day..."))
		return b.String()
	case d.feed == nil:
		b.WriteString(lipgloss.NewStyle().Foreground(errorColor).Render(d.errText))
		b.WriteString("\n\n")
		b.WriteString(mutedTextStyle.Render("Press r to try again."))
		return b.String()
	}

	f := d.feed
	b.WriteString(f.WeatherLine())
	if tz := f.Weather.Location.Timezone; tz != "" {
		b.WriteString(mutedTextStyle.Render("  " + tz))
	}
	b.WriteString("\n\n")

	wrap := lipgloss.NewStyle().Width(max(d.width, 20))
	if f.Mood.Affirmation != "" {
		b.WriteString(wrap.Render(accentStyle.Render(f.Mood.Affirmation)))
		b.WriteByte('\n')
	}
	if f.Mood.FocusPrompt != "" {
		b.WriteString(wrap.Render(mutedTextStyle.Render("Focus: ") + f.Mood.FocusPrompt))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(titleStyle.Render("News"))
	b.WriteByte('\n')
	if len(f.News) == 0 {
		b.WriteString(mutedTextStyle.Render("No news right now."))
		return b.String()
	}

	// the header above takes roughly eight lines
	rows := max(d.height-8, 1)
	start := 0
	if d.cursor >= rows {
		start = d.cursor - rows + 1
	}
	end := min(start+rows, len(f.News))
	for i := start; i < end; i++ {
		n := f.News[i]
		line := truncate(fmt.Sprintf("%d. %s", i+1, n.Headline), max(d.width-len(n.Source)-2, 10))
		if n.Source != "" {
			line += "  " + mutedTextStyle.Render(n.Source)
		}
		if i == d.cursor && d.focused {
			line = selectedStyle.Width(d.width).Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
