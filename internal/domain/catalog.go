package domain

// Category groups providers in the integrations view.
type Category string

const (
	CategoryAll          Category = "all"
	CategoryMail         Category = "mail"
	CategoryProductivity Category = "productivity"
	CategoryFamily       Category = "family"
	CategoryCalendar     Category = "calendar"
)

// Categories lists the category filters in display order.
var Categories = []Category{
	CategoryAll,
	CategoryMail,
	CategoryProductivity,
	CategoryFamily,
	CategoryCalendar,
}

// CategoryNames maps categories to filter labels.
var CategoryNames = map[Category]string{
	CategoryAll:          "All Apps",
	CategoryMail:         "Mail",
	CategoryProductivity: "Productivity",
	CategoryFamily:       "Family",
	CategoryCalendar:     "Calendar",
}

// CatalogEntry is a provider known to the client.
type CatalogEntry struct {
	ProviderType string
	Name         string
	Description  string
	Category     Category
	ComingSoon   bool
}

// Catalog is the universe of providers shown in the integrations view.
// Integrations for providers missing here are never displayed.
var Catalog = []CatalogEntry{
	{
		ProviderType: ProviderGmail,
		Name:         "Gmail",
		Description:  "Read, draft, and manage emails.",
		Category:     CategoryMail,
	},
	{
		ProviderType: "microsoft",
		Name:         "Microsoft Outlook",
		Description:  "Sync work emails and calendar.",
		Category:     CategoryMail,
		ComingSoon:   true,
	},
	{
		ProviderType: "notion",
		Name:         "Notion",
		Description:  "Connect your workspace and notes.",
		Category:     CategoryProductivity,
		ComingSoon:   true,
	},
	{
		ProviderType: "slack",
		Name:         "Slack",
		Description:  "Get alerts and send messages.",
		Category:     CategoryProductivity,
		ComingSoon:   true,
	},
	{
		ProviderType: "google_calendar",
		Name:         "Google Calendar",
		Description:  "Sync events and reminders.",
		Category:     CategoryCalendar,
		ComingSoon:   true,
	},
}
