package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lu-zhengda/assist/internal/domain"
)

const integrationsPath = "/api/v1/integrations"

// ListAvailable returns the providers enabled for this deployment.
func (c *Client) ListAvailable(ctx context.Context) ([]domain.AvailableProvider, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint(integrationsPath+"/available", nil), nil)
	if err != nil {
		return nil, err
	}
	var out []domain.AvailableProvider
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMine returns the current user's integrations. The backend may answer
// with a bare array or an {"items": [...]} envelope.
func (c *Client) ListMine(ctx context.Context) ([]domain.Integration, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint(integrationsPath+"/", nil), nil)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.do(req, &raw); err != nil {
		return nil, err
	}
	return decodeIntegrations(raw)
}

func decodeIntegrations(raw json.RawMessage) ([]domain.Integration, error) {
	var list []domain.Integration
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var envelope struct {
		Items []domain.Integration `json:"items"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode integrations: %w", err)
	}
	if envelope.Items == nil {
		return []domain.Integration{}, nil
	}
	return envelope.Items, nil
}

// ConnectGmail asks the backend to start the Gmail OAuth flow and returns the
// provider authorization URL. The backend sends the browser back to
// redirectURI when the flow completes.
func (c *Client) ConnectGmail(ctx context.Context, redirectURI string) (string, error) {
	body := map[string]string{"redirect_uri": redirectURI}
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint(integrationsPath+"/gmail/connect", nil), body)
	if err != nil {
		return "", err
	}
	var out struct {
		AuthorizationURL string `json:"authorization_url"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.AuthorizationURL == "" {
		return "", fmt.Errorf("failed to connect gmail: empty authorization url")
	}
	return out.AuthorizationURL, nil
}

// Disconnect removes an integration.
func (c *Client) Disconnect(ctx context.Context, integrationID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.endpoint(integrationsPath+"/"+url.PathEscape(integrationID), nil), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// GmailConfig is the sync configuration stored on a Gmail integration.
type GmailConfig struct {
	Query      string   `json:"query,omitempty"`
	LabelIDs   []string `json:"label_ids,omitempty"`
	MaxResults *int     `json:"max_results,omitempty"`
}

// Update is a partial integration update. Nil fields are left untouched.
type Update struct {
	Status *domain.Status `json:"status,omitempty"`
	Config *GmailConfig   `json:"config,omitempty"`
}

// UpdateIntegration patches an integration and returns the stored result.
func (c *Client) UpdateIntegration(ctx context.Context, integrationID string, update Update) (*domain.Integration, error) {
	req, err := c.newRequest(ctx, http.MethodPatch, c.endpoint(integrationsPath+"/"+url.PathEscape(integrationID), nil), update)
	if err != nil {
		return nil, err
	}
	var out domain.Integration
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
