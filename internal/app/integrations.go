package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/lu-zhengda/assist/internal/api"
	"github.com/lu-zhengda/assist/internal/domain"
)

var (
	// ErrActionUnavailable is returned for cards that are disabled or coming soon.
	ErrActionUnavailable = errors.New("integration is not available")
	// ErrUnsupportedProvider is returned for providers without a connect flow.
	ErrUnsupportedProvider = errors.New("integration not yet supported")
	// ErrNotConnected is returned when configuring a provider with no integration.
	ErrNotConnected = errors.New("integration not connected")
)

// IntegrationsClient is the subset of the API the integrations view needs.
type IntegrationsClient interface {
	ListAvailable(ctx context.Context) ([]domain.AvailableProvider, error)
	ListMine(ctx context.Context) ([]domain.Integration, error)
	Disconnect(ctx context.Context, integrationID string) error
	UpdateIntegration(ctx context.Context, integrationID string, update api.Update) (*domain.Integration, error)
}

// Overview is one reconciled snapshot of the integrations view.
type Overview struct {
	Cards      []domain.Card
	ByProvider map[string]domain.Integration
	// Err is the available-call error if it failed, else the mine-call error.
	Err error
}

// IntegrationService drives the integrations view.
type IntegrationService struct {
	client      IntegrationsClient
	reconnector *Reconnector

	mu   sync.Mutex
	last Overview
}

func NewIntegrationService(client IntegrationsClient, reconnector *Reconnector) *IntegrationService {
	return &IntegrationService{
		client:      client,
		reconnector: reconnector,
		last: Overview{
			Cards:      domain.BuildCards(nil, nil),
			ByProvider: map[string]domain.Integration{},
		},
	}
}

// Last returns the most recent overview.
func (s *IntegrationService) Last() Overview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Refresh fetches available providers and the user's integrations
// concurrently and waits for both. A failed call contributes an empty list.
func (s *IntegrationService) Refresh(ctx context.Context) Overview {
	var (
		wg           sync.WaitGroup
		available    []domain.AvailableProvider
		mine         []domain.Integration
		availableErr error
		mineErr      error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		available, availableErr = s.client.ListAvailable(ctx)
	}()
	go func() {
		defer wg.Done()
		mine, mineErr = s.client.ListMine(ctx)
	}()
	wg.Wait()

	if availableErr != nil {
		log.Printf("[integrations] failed to list available providers: %v", availableErr)
		available = nil
	}
	if mineErr != nil {
		log.Printf("[integrations] failed to list integrations: %v", mineErr)
		mine = nil
	}

	ov := Overview{
		Cards:      domain.BuildCards(available, mine),
		ByProvider: domain.IntegrationsByProvider(mine),
		Err:        availableErr,
	}
	if ov.Err == nil {
		ov.Err = mineErr
	}

	s.mu.Lock()
	s.last = ov
	s.mu.Unlock()
	return ov
}

// PrimaryAction performs the card's main button. Configure is returned to the
// caller to open the settings form; Connect and Reconnect start the OAuth
// handoff.
func (s *IntegrationService) PrimaryAction(ctx context.Context, card domain.Card, redirectURI string) (domain.Action, error) {
	if !card.Enabled || card.ComingSoon {
		return "", ErrActionUnavailable
	}
	if card.ProviderType != domain.ProviderGmail {
		return "", ErrUnsupportedProvider
	}
	action := domain.PrimaryAction(string(card.Status))
	if action == domain.ActionConfigure {
		if card.IntegrationID == "" {
			return action, ErrNotConnected
		}
		return action, nil
	}
	if s.reconnector == nil {
		return action, errors.New("reconnect is not available")
	}
	log.Printf("[integrations] %s %s", strings.ToLower(string(action)), card.ProviderType)
	return action, s.reconnector.Reconnect(ctx, redirectURI)
}

// Disconnect removes the card's integration and refreshes. On failure the
// previous overview is kept.
func (s *IntegrationService) Disconnect(ctx context.Context, card domain.Card) (Overview, error) {
	if card.IntegrationID == "" {
		return s.Last(), ErrNotConnected
	}
	if err := s.client.Disconnect(ctx, card.IntegrationID); err != nil {
		return s.Last(), fmt.Errorf("failed to disconnect %s: %w", card.ProviderType, err)
	}
	log.Printf("[integrations] disconnected %s (%s)", card.ProviderType, card.IntegrationID)
	return s.Refresh(ctx), nil
}

// SetEnabled flips the card's toggle: on maps to active, off to disconnected.
func (s *IntegrationService) SetEnabled(ctx context.Context, card domain.Card, on bool) (Overview, error) {
	if card.IntegrationID == "" {
		return s.Last(), ErrNotConnected
	}
	if !card.Enabled || card.ComingSoon {
		return s.Last(), ErrActionUnavailable
	}
	status := domain.StatusDisconnected
	if on {
		status = domain.StatusActive
	}
	if _, err := s.client.UpdateIntegration(ctx, card.IntegrationID, api.Update{Status: &status}); err != nil {
		return s.Last(), fmt.Errorf("failed to update %s: %w", card.ProviderType, err)
	}
	return s.Refresh(ctx), nil
}

// Configure stores new sync settings on the provider's integration.
func (s *IntegrationService) Configure(ctx context.Context, providerType string, cfg api.GmailConfig) (Overview, error) {
	in, ok := s.Last().ByProvider[providerType]
	if !ok {
		return s.Last(), ErrNotConnected
	}
	if _, err := s.client.UpdateIntegration(ctx, in.ID, api.Update{Config: &cfg}); err != nil {
		return s.Last(), fmt.Errorf("failed to configure %s: %w", providerType, err)
	}
	log.Printf("[integrations] saved settings for %s (%s)", providerType, in.ID)
	return s.Refresh(ctx), nil
}

// ParseSettings turns the settings form fields into a config update. Labels
// are comma separated. A max results value that does not start with digits
// is left unset.
func ParseSettings(query, labels, maxResults string) api.GmailConfig {
	cfg := api.GmailConfig{
		Query:    strings.TrimSpace(query),
		LabelIDs: domain.CleanLabelIDs(strings.Split(labels, ",")),
	}
	if n, ok := parseLeadingInt(maxResults); ok {
		cfg.MaxResults = &n
	}
	return cfg
}

// SettingsFields returns the form values for an integration's current config.
func SettingsFields(in *domain.Integration) (query, labels, maxResults string) {
	labels = "INBOX"
	maxResults = strconv.Itoa(domain.DefaultMaxResults)
	if in == nil {
		return "", labels, maxResults
	}
	if q, ok := in.Config["query"].(string); ok {
		query = q
	}
	if ids := in.LabelIDs(); ids != nil {
		labels = strings.Join(ids, ", ")
	}
	if n, ok := in.Config["max_results"].(float64); ok {
		maxResults = strconv.FormatFloat(n, 'f', -1, 64)
	}
	return query, labels, maxResults
}

// parseLeadingInt parses an optional sign and leading digits, ignoring
// leading whitespace and anything after the digits.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
