package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lu-zhengda/assist/internal/api"
)

// Page selects the error copy for a view.
type Page int

const (
	PageInbox Page = iota
	PageIntegrations
	PageDashboard
)

const genericMessage = "Something went wrong."

// Describe turns err into the message shown to the user on page.
func Describe(err error, page Page) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnsupportedProvider):
		return "This integration is not yet supported."
	case errors.Is(err, ErrNotConnected):
		return "Connect Gmail before configuring it."
	case errors.Is(err, ErrLocationUnavailable):
		return "Location is unavailable. Set [location] lat and lon in the config file or pass --lat and --lon."
	case errors.Is(err, ErrNoEmailIntegration):
		return "No Gmail account connected. Connect Gmail from the integrations view."
	}

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return genericMessage
	}

	switch page {
	case PageInbox:
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "Your session has expired. Please sign in again."
		case http.StatusNotFound:
			return "Email integration not found. Connect Gmail to continue."
		case http.StatusTooManyRequests:
			return "You're making requests too quickly. Please try again shortly."
		case http.StatusBadGateway:
			return "Gmail is temporarily unavailable. Please retry in a moment."
		}
	case PageIntegrations:
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "Your session has expired. Please refresh the page."
		case http.StatusTooManyRequests:
			return "You are making requests too quickly. Please try again shortly."
		}
	case PageDashboard:
		return fmt.Sprintf("Failed to fetch dashboard: %d", apiErr.Status)
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return genericMessage
}
