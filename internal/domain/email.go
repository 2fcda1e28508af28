package domain

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// EmailFilter narrows the backend email listing.
type EmailFilter string

const (
	FilterAll    EmailFilter = "all"
	FilterUnread EmailFilter = "unread"
	FilterTasks  EmailFilter = "tasks"
)

// Filters lists the email filters in display order.
var Filters = []EmailFilter{FilterAll, FilterUnread, FilterTasks}

const LabelUnread = "UNREAD"

type Address struct {
	Name  string
	Email string
}

func (a Address) String() string {
	if a.Email == "" {
		return a.Name
	}
	if a.Name == "" {
		return a.Email
	}
	return a.Name + " <" + a.Email + ">"
}

// DisplayName prefers the name over the bare address.
func (a Address) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}

// EmailMessage is one message as returned by the backend listing. Every
// field other than ID may be absent.
type EmailMessage struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"thread_id,omitempty"`
	Subject  string   `json:"subject,omitempty"`
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
	Date     string   `json:"date,omitempty"`
	Snippet  string   `json:"snippet,omitempty"`
	Body     string   `json:"body,omitempty"`
	Labels   []string `json:"labels,omitempty"`
	Summary  string   `json:"summary,omitempty"`
}

// EmailPage is one page of the email listing.
type EmailPage struct {
	Items         []EmailMessage `json:"items"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

func (e *EmailMessage) IsUnread() bool {
	for _, l := range e.Labels {
		if l == LabelUnread {
			return true
		}
	}
	return false
}

// SubjectText returns the subject or a placeholder.
func (e *EmailMessage) SubjectText() string {
	if s := strings.TrimSpace(e.Subject); s != "" {
		return s
	}
	return "(No subject)"
}

// SummaryText returns the AI summary or a placeholder.
func (e *EmailMessage) SummaryText() string {
	if s := strings.TrimSpace(e.Summary); s != "" {
		return s
	}
	return "No summary available."
}

// Sender parses the From header.
func (e *EmailMessage) Sender() Address {
	return ParseFrom(e.From)
}

// ParseFrom splits a "Name <email>" header. A header without a name yields
// the whole value as the name.
func ParseFrom(s string) Address {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{Name: "Unknown Sender"}
	}
	if addr, err := mail.ParseAddress(s); err == nil && addr.Name != "" {
		return Address{Name: addr.Name, Email: addr.Address}
	}
	open := strings.LastIndex(s, "<")
	if open >= 0 && strings.HasSuffix(s, ">") && open < len(s)-2 {
		name := strings.TrimSpace(s[:open])
		email := s[open+1 : len(s)-1]
		if name == "" {
			name = s
		}
		return Address{Name: name, Email: email}
	}
	return Address{Name: s}
}

// PlainBody returns the body as text. HTML bodies are reduced to their text
// content.
func (e *EmailMessage) PlainBody() string {
	return plainText(e.Body)
}

var paragraphBreak = regexp.MustCompile(`\n{2,}`)

// Paragraphs splits the plain body on blank lines, dropping empty segments.
func (e *EmailMessage) Paragraphs() []string {
	var out []string
	for _, p := range paragraphBreak.Split(e.PlainBody(), -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func plainText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var (
		b    strings.Builder
		skip int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "br", "p", "div", "li", "tr":
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "div":
				b.WriteByte('\n')
			}
		case html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				b.WriteByte('\n')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses the backend's date field. It accepts ISO 8601 and RFC 5322
// forms.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if t, err := mail.ParseDate(s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// ListDate formats the date for a list row: time only for today, otherwise
// month, day and time.
func (e *EmailMessage) ListDate(now time.Time) string {
	t, ok := ParseDate(e.Date)
	if !ok {
		return "Unknown"
	}
	t = t.In(now.Location())
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	if ty == ny && tm == nm && td == nd {
		return t.Format("03:04 PM")
	}
	return t.Format("Jan 2, 03:04 PM")
}

// DetailDate formats the date for the reader.
func (e *EmailMessage) DetailDate() string {
	t, ok := ParseDate(e.Date)
	if !ok {
		return "Unknown date"
	}
	return t.Local().Format("Jan 2, 2006, 3:04 PM")
}
