package mockserver

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lu-zhengda/assist/internal/domain"
)

// LabelTask marks messages the backend classified as action items.
const LabelTask = "TASK"

var (
	firstNames = []string{"John", "Jane", "Bob", "Alice", "Charlie", "Diana", "Eve", "Frank"}
	lastNames  = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis"}
	domains    = []string{"example.com", "company.com", "business.org", "enterprise.net"}
	subjects   = []string{
		"Meeting tomorrow",
		"Project update",
		"Budget review",
		"Team lunch",
		"Quarterly report",
		"Client feedback",
		"Urgent: Action required",
		"Follow up",
	}
	headlines = []string{
		"City council approves new bike lanes",
		"Researchers map the deep ocean floor",
		"Local bakery wins national award",
		"Space telescope spots distant galaxy cluster",
		"Markets steady ahead of rate decision",
		"New library branch opens downtown",
		"Rainy weekend expected across the region",
		"Open source project reaches version 2.0",
	}
)

// generateEmails builds a deterministic mailbox of n messages, newest first,
// spaced an hour apart before now.
func generateEmails(integrationID string, n int, now time.Time) []domain.EmailMessage {
	out := make([]domain.EmailMessage, 0, n)
	for i := 0; i < n; i++ {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames))%len(lastNames)]
		subject := subjects[i%len(subjects)]

		labels := []string{"INBOX"}
		if i%3 == 0 {
			labels = append(labels, domain.LabelUnread)
		}
		if strings.Contains(subject, "Action") || i%5 == 0 {
			labels = append(labels, LabelTask)
		}
		if i%7 == 0 {
			labels = append(labels, "IMPORTANT")
		}

		out = append(out, domain.EmailMessage{
			ID:       fmt.Sprintf("%s-msg-%03d", integrationID[:min(8, len(integrationID))], i),
			ThreadID: fmt.Sprintf("thread-%03d", i/2),
			Subject:  fmt.Sprintf("%s [%d]", subject, i),
			From:     fmt.Sprintf("%s %s <%s.%s@%s>", first, last, strings.ToLower(first), strings.ToLower(last), domains[i%len(domains)]),
			To:       "demo@example.com",
			Date:     now.Add(-time.Duration(i) * time.Hour).UTC().Format(time.RFC1123Z),
			Snippet:  fmt.Sprintf("This is a snippet for: %s. Reply when you can.", subject),
			Body: fmt.Sprintf("<p>Hi,</p><p>Full email body for: <b>%s</b>.</p><p>Best regards,<br>%s</p>",
				subject, first),
			Labels: labels,
		})
	}
	return out
}

func defaultNews() []domain.NewsItem {
	out := make([]domain.NewsItem, 0, len(headlines))
	for i, h := range headlines {
		out = append(out, domain.NewsItem{
			Headline: h,
			URL:      fmt.Sprintf("https://news.example.com/story/%d", i+1),
			Source:   "Example News",
		})
	}
	return out
}

type emailQuery struct {
	query      string
	filter     domain.EmailFilter
	labelIDs   []string
	maxResults int
	offset     int
	summarize  bool
}

func parseEmailQuery(c *gin.Context) (*emailQuery, error) {
	q := &emailQuery{
		query:      strings.TrimSpace(c.Query("query")),
		filter:     domain.EmailFilter(c.DefaultQuery("filter", string(domain.FilterAll))),
		labelIDs:   c.QueryArray("label_ids"),
		maxResults: 20,
		summarize:  c.Query("summarize") == "true",
	}
	switch q.filter {
	case domain.FilterAll, domain.FilterUnread, domain.FilterTasks:
	default:
		return nil, fmt.Errorf("invalid filter: %s", q.filter)
	}
	if s := c.Query("max_results"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid max_results: %s", s)
		}
		q.maxResults = max(1, min(100, n))
	}
	if s := c.Query("page_token"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid page_token")
		}
		q.offset = n
	}
	return q, nil
}

func (q *emailQuery) matches(m *domain.EmailMessage) bool {
	switch q.filter {
	case domain.FilterUnread:
		if !hasLabel(m, domain.LabelUnread) {
			return false
		}
	case domain.FilterTasks:
		if !hasLabel(m, LabelTask) {
			return false
		}
	}
	for _, l := range q.labelIDs {
		if !hasLabel(m, l) {
			return false
		}
	}

	haystack := strings.ToLower(m.Subject + " " + m.From + " " + m.Snippet)
	for _, term := range strings.Fields(q.query) {
		key, val, ok := strings.Cut(term, ":")
		switch {
		case ok && key == "is" && val == "unread":
			if !hasLabel(m, domain.LabelUnread) {
				return false
			}
		case ok && key == "label":
			if !hasLabel(m, strings.ToUpper(val)) {
				return false
			}
		case ok && key == "from":
			if !strings.Contains(strings.ToLower(m.From), strings.ToLower(val)) {
				return false
			}
		default:
			if !strings.Contains(haystack, strings.ToLower(term)) {
				return false
			}
		}
	}
	return true
}

func (q *emailQuery) page(box []domain.EmailMessage) domain.EmailPage {
	var hits []domain.EmailMessage
	for i := range box {
		if q.matches(&box[i]) {
			hits = append(hits, box[i])
		}
	}

	page := domain.EmailPage{Items: []domain.EmailMessage{}}
	if q.offset >= len(hits) {
		return page
	}
	end := min(q.offset+q.maxResults, len(hits))
	page.Items = append(page.Items, hits[q.offset:end]...)
	if end < len(hits) {
		page.NextPageToken = strconv.Itoa(end)
	}
	if q.summarize {
		for i := range page.Items {
			if page.Items[i].Summary == "" {
				page.Items[i].Summary = firstSentence(page.Items[i].Snippet)
			}
		}
	}
	return page
}

func hasLabel(m *domain.EmailMessage, label string) bool {
	for _, l := range m.Labels {
		if l == label {
			return true
		}
	}
	return false
}

func firstSentence(s string) string {
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}

type feedQuery struct {
	lat, lon float64
	timezone string
	limit    int
	q        string
}

func parseFeedQuery(c *gin.Context) (*feedQuery, error) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil || math.Abs(lat) > 90 || math.Abs(lon) > 180 {
		return nil, fmt.Errorf("lat and lon are required")
	}
	f := &feedQuery{
		lat:      lat,
		lon:      lon,
		timezone: c.DefaultQuery("timezone", "UTC"),
		limit:    6,
		q:        strings.ToLower(strings.TrimSpace(c.Query("q"))),
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid limit: %s", s)
		}
		f.limit = max(1, min(20, n))
	}
	return f, nil
}

func (f *feedQuery) feed(news []domain.NewsItem, now time.Time) domain.DailyFeed {
	stamp := now.UTC().Format(time.RFC3339)
	items := []domain.NewsItem{}
	for _, n := range news {
		if f.q != "" && !strings.Contains(strings.ToLower(n.Headline), f.q) {
			continue
		}
		items = append(items, n)
		if len(items) == f.limit {
			break
		}
	}

	feels := 19.5
	cond := "Partly cloudy"
	code := 2
	return domain.DailyFeed{
		GeneratedAt: stamp,
		Weather: domain.Weather{
			Location:    domain.WeatherLocation{Lat: f.lat, Lon: f.lon, Timezone: f.timezone},
			Current:     domain.WeatherCurrent{TempC: 21, FeelsLikeC: &feels, ConditionCode: &code, ConditionText: &cond},
			GeneratedAt: stamp,
		},
		News: items,
		Mood: domain.Mood{
			Affirmation: "You have done hard things before.",
			FocusPrompt: "What is the one task that would make today a win?",
		},
	}
}
