package domain

import "strings"

// Card is the display-ready view of one catalog provider merged with the
// user's live integration state. Cards are rebuilt on every refresh.
type Card struct {
	ProviderType  string
	Name          string
	Description   string
	Category      Category
	ComingSoon    bool
	IntegrationID string
	Status        Status
	Enabled       bool
}

// StatusText is the label shown on the card.
func (c Card) StatusText() string {
	if c.ComingSoon {
		return comingSoonLabel
	}
	return StatusLabel(string(c.Status))
}

// ActionText is the label of the card's primary button.
func (c Card) ActionText() string {
	if c.ComingSoon {
		return comingSoonLabel
	}
	return string(PrimaryAction(string(c.Status)))
}

// BuildCards merges the catalog with the providers enabled for this
// deployment and the user's integrations. It returns exactly one card per
// catalog entry, in catalog order.
func BuildCards(available []AvailableProvider, mine []Integration) []Card {
	availableSet := make(map[string]struct{}, len(available))
	for _, p := range available {
		availableSet[p.ProviderType] = struct{}{}
	}
	byProvider := IntegrationsByProvider(mine)

	cards := make([]Card, 0, len(Catalog))
	for _, item := range Catalog {
		card := Card{
			ProviderType: item.ProviderType,
			Name:         item.Name,
			Description:  item.Description,
			Category:     item.Category,
			ComingSoon:   item.ComingSoon,
			Status:       StatusDisconnected,
		}
		if in, ok := byProvider[item.ProviderType]; ok {
			card.IntegrationID = in.ID
			card.Status = in.Status
		}
		_, isAvailable := availableSet[item.ProviderType]
		card.Enabled = isAvailable && !item.ComingSoon
		cards = append(cards, card)
	}
	return cards
}

// IntegrationsByProvider indexes integrations by provider type. When the
// backend returns several integrations for one provider the last one wins.
func IntegrationsByProvider(mine []Integration) map[string]Integration {
	out := make(map[string]Integration, len(mine))
	for _, in := range mine {
		out[in.ProviderType] = in
	}
	return out
}

// FilterCards keeps cards matching the category and a case-insensitive search
// over name and description.
func FilterCards(cards []Card, category Category, search string) []Card {
	q := strings.ToLower(strings.TrimSpace(search))
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if category != "" && category != CategoryAll && c.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.Description), q) {
			continue
		}
		out = append(out, c)
	}
	return out
}
