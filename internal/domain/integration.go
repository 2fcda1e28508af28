package domain

import (
	"fmt"
	"math"
	"strings"
)

// Status is the connection state of an integration as reported by the backend.
type Status string

const (
	StatusActive       Status = "active"
	StatusExpired      Status = "expired"
	StatusError        Status = "error"
	StatusDisconnected Status = "disconnected"
)

const (
	ProviderGmail = "gmail"
)

// Integration is one user's connected account for a provider.
type Integration struct {
	ID           string         `json:"id"`
	ProviderType string         `json:"provider_type"`
	Status       Status         `json:"status"`
	Config       map[string]any `json:"config"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

// AvailableProvider is a provider type enabled for the current deployment.
type AvailableProvider struct {
	ProviderType string `json:"provider_type"`
	Name         string `json:"name"`
	Description  string `json:"description"`
}

const (
	DefaultMaxResults = 20
	MinMaxResults     = 1
	MaxMaxResults     = 100
)

// Query returns the trimmed stored search query, or "".
func (i *Integration) Query() string {
	q, _ := i.Config["query"].(string)
	return strings.TrimSpace(q)
}

// LabelIDs returns the configured label filter with blank entries dropped.
// A nil result means no label filter.
func (i *Integration) LabelIDs() []string {
	switch v := i.Config["label_ids"].(type) {
	case []string:
		return CleanLabelIDs(v)
	case []any:
		labels := make([]string, 0, len(v))
		for _, l := range v {
			if s, ok := l.(string); ok {
				labels = append(labels, s)
			}
		}
		return CleanLabelIDs(labels)
	}
	return nil
}

// MaxResults returns the configured page size, clamped.
func (i *Integration) MaxResults() int {
	return ResolveMaxResults(i.Config["max_results"])
}

// AccountLabel returns the name shown in the account switcher. index is the
// position of the integration among the user's email integrations.
func (i *Integration) AccountLabel(index int) string {
	var email string
	for _, k := range []string{"email", "account_email", "user_email"} {
		if s, ok := i.Config[k].(string); ok && s != "" {
			email = s
			break
		}
	}
	provider := strings.ReplaceAll(i.ProviderType, "_", " ")
	if i.ProviderType == ProviderGmail {
		provider = "Gmail"
	}
	if email != "" {
		return provider + " • " + email
	}
	return fmt.Sprintf("%s Account %d", provider, index+1)
}

// CleanLabelIDs trims label ids and drops blanks. It returns nil when nothing
// is left so callers can omit the parameter entirely.
func CleanLabelIDs(ids []string) []string {
	var out []string
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// ResolveMaxResults clamps a configured max_results value to [1, 100].
// Anything that is not a finite number yields the default of 20.
func ResolveMaxResults(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return DefaultMaxResults
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return DefaultMaxResults
	}
	f = math.Floor(f)
	return int(math.Min(MaxMaxResults, math.Max(MinMaxResults, f)))
}
