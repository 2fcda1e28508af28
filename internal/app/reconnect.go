package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
)

// ErrReconnectInProgress is returned when a reconnect is already running.
var ErrReconnectInProgress = errors.New("reconnect already in progress")

// Connector starts the provider OAuth flow on the backend.
type Connector interface {
	ConnectGmail(ctx context.Context, redirectURI string) (string, error)
}

// Navigator sends the user to an authorization URL.
type Navigator interface {
	Navigate(ctx context.Context, authURL string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, authURL string) error

func (f NavigatorFunc) Navigate(ctx context.Context, authURL string) error {
	return f(ctx, authURL)
}

// Reconnector hands the user off to the Gmail consent screen. Resuming after
// the consent screen is up to whatever listens on the redirect URI.
type Reconnector struct {
	connector Connector
	navigator Navigator
	busy      atomic.Bool
}

func NewReconnector(c Connector, n Navigator) *Reconnector {
	return &Reconnector{connector: c, navigator: n}
}

// Reconnect requests an authorization URL for redirectURI and navigates to it.
func (r *Reconnector) Reconnect(ctx context.Context, redirectURI string) error {
	if !r.busy.CompareAndSwap(false, true) {
		return ErrReconnectInProgress
	}
	defer r.busy.Store(false)

	authURL, err := r.connector.ConnectGmail(ctx, redirectURI)
	if err != nil {
		return fmt.Errorf("failed to start gmail connect: %w", err)
	}
	log.Printf("[reconnect] handing off to provider consent screen")
	if err := r.navigator.Navigate(ctx, authURL); err != nil {
		return fmt.Errorf("failed to open authorization url: %w", err)
	}
	return nil
}
