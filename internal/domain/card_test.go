package domain

import (
	"testing"
)

func findCard(t *testing.T, cards []Card, providerType string) Card {
	t.Helper()
	for _, c := range cards {
		if c.ProviderType == providerType {
			return c
		}
	}
	t.Fatalf("no card for %q", providerType)
	return Card{}
}

func TestBuildCards_PreservesCatalogOrder(t *testing.T) {
	inputs := []struct {
		name      string
		available []AvailableProvider
		mine      []Integration
	}{
		{"empty", nil, nil},
		{"reversed available", []AvailableProvider{
			{ProviderType: "google_calendar"}, {ProviderType: "slack"}, {ProviderType: "gmail"},
		}, nil},
		{"unknown providers", []AvailableProvider{{ProviderType: "dropbox"}}, []Integration{
			{ID: "x", ProviderType: "dropbox", Status: StatusActive},
			{ID: "y", ProviderType: "notion", Status: StatusError},
		}},
	}
	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			cards := BuildCards(tt.available, tt.mine)
			if len(cards) != len(Catalog) {
				t.Fatalf("got %d cards, want %d", len(cards), len(Catalog))
			}
			for i := range Catalog {
				if cards[i].ProviderType != Catalog[i].ProviderType {
					t.Errorf("cards[%d] = %q, want %q", i, cards[i].ProviderType, Catalog[i].ProviderType)
				}
			}
		})
	}
}

func TestBuildCards_EnabledRule(t *testing.T) {
	available := []AvailableProvider{{ProviderType: "gmail"}, {ProviderType: "slack"}}
	cards := BuildCards(available, nil)

	set := map[string]bool{"gmail": true, "slack": true}
	for i, c := range cards {
		want := set[c.ProviderType] && !Catalog[i].ComingSoon
		if c.Enabled != want {
			t.Errorf("%s: enabled = %v, want %v", c.ProviderType, c.Enabled, want)
		}
	}
	if findCard(t, cards, "slack").Enabled {
		t.Error("coming soon provider must not be enabled even when available")
	}
}

func TestBuildCards_GmailAvailableNotConnected(t *testing.T) {
	cards := BuildCards([]AvailableProvider{{ProviderType: "gmail", Name: "Gmail"}}, nil)
	gmail := findCard(t, cards, "gmail")

	if gmail.Status != StatusDisconnected {
		t.Errorf("status = %q, want %q", gmail.Status, StatusDisconnected)
	}
	if !gmail.Enabled {
		t.Error("enabled = false, want true")
	}
	if gmail.IntegrationID != "" {
		t.Errorf("integration id = %q, want empty", gmail.IntegrationID)
	}
	if got := gmail.ActionText(); got != "Connect" {
		t.Errorf("action = %q, want %q", got, "Connect")
	}
}

func TestBuildCards_ConnectedButUnavailable(t *testing.T) {
	cards := BuildCards(nil, []Integration{{ID: "int-1", ProviderType: "gmail", Status: StatusActive}})
	gmail := findCard(t, cards, "gmail")

	if gmail.Enabled {
		t.Error("enabled = true, want false when provider is not available")
	}
	if gmail.Status != StatusActive {
		t.Errorf("status = %q, want %q", gmail.Status, StatusActive)
	}
	if gmail.IntegrationID != "int-1" {
		t.Errorf("integration id = %q, want %q", gmail.IntegrationID, "int-1")
	}
}

func TestBuildCards_DropsUnknownIntegrations(t *testing.T) {
	cards := BuildCards(nil, []Integration{{ID: "z", ProviderType: "dropbox", Status: StatusActive}})
	for _, c := range cards {
		if c.IntegrationID == "z" {
			t.Errorf("integration for unknown provider leaked into card %q", c.ProviderType)
		}
	}
}

func TestBuildCards_LastDuplicateWins(t *testing.T) {
	mine := []Integration{
		{ID: "first", ProviderType: "gmail", Status: StatusExpired},
		{ID: "second", ProviderType: "gmail", Status: StatusActive},
	}
	gmail := findCard(t, BuildCards(nil, mine), "gmail")
	if gmail.IntegrationID != "second" {
		t.Errorf("integration id = %q, want %q", gmail.IntegrationID, "second")
	}
}

func TestBuildCards_Idempotent(t *testing.T) {
	available := []AvailableProvider{{ProviderType: "gmail"}}
	mine := []Integration{{ID: "a", ProviderType: "gmail", Status: StatusError}}
	first := BuildCards(available, mine)
	second := BuildCards(available, mine)
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("card %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestCard_ComingSoonLabels(t *testing.T) {
	c := Card{ComingSoon: true, Status: StatusActive}
	if got := c.StatusText(); got != "Coming Soon" {
		t.Errorf("StatusText() = %q, want %q", got, "Coming Soon")
	}
	if got := c.ActionText(); got != "Coming Soon" {
		t.Errorf("ActionText() = %q, want %q", got, "Coming Soon")
	}
}

func TestFilterCards(t *testing.T) {
	cards := BuildCards(nil, nil)

	tests := []struct {
		name     string
		category Category
		search   string
		want     []string
	}{
		{"all", CategoryAll, "", []string{"gmail", "microsoft", "notion", "slack", "google_calendar"}},
		{"mail", CategoryMail, "", []string{"gmail", "microsoft"}},
		{"family is empty", CategoryFamily, "", nil},
		{"search name", CategoryAll, "  NOTION ", []string{"notion"}},
		{"search description", CategoryAll, "calendar", []string{"microsoft", "google_calendar"}},
		{"category and search", CategoryMail, "emails", []string{"gmail", "microsoft"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterCards(cards, tt.category, tt.search)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d cards, want %d", len(got), len(tt.want))
			}
			for i, c := range got {
				if c.ProviderType != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, c.ProviderType, tt.want[i])
				}
			}
		})
	}
}
