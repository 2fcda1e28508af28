package app

import (
	"context"
	"sync"

	"github.com/lu-zhengda/assist/internal/api"
	"github.com/lu-zhengda/assist/internal/domain"
)

// fakeBackend implements every client interface in this package.
type fakeBackend struct {
	mu sync.Mutex

	available    []domain.AvailableProvider
	availableErr error
	mine         []domain.Integration
	mineErr      error

	pages      map[string]*domain.EmailPage
	emailErrs  []error
	emailCalls []api.EmailParams

	authURL    string
	connectErr error
	redirects  []string

	disconnectErr error
	disconnected  []string
	updateErr     error
	updates       []api.Update

	feed      *domain.DailyFeed
	feedErr   error
	feedCalls []api.FeedParams
}

func (f *fakeBackend) ListAvailable(ctx context.Context) ([]domain.AvailableProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available, f.availableErr
}

func (f *fakeBackend) ListMine(ctx context.Context) ([]domain.Integration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mine, f.mineErr
}

func (f *fakeBackend) ListEmails(ctx context.Context, integrationID string, params api.EmailParams) (*domain.EmailPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailCalls = append(f.emailCalls, params)
	if len(f.emailErrs) > 0 {
		err := f.emailErrs[0]
		f.emailErrs = f.emailErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if pg, ok := f.pages[params.PageToken]; ok {
		return pg, nil
	}
	return &domain.EmailPage{Items: []domain.EmailMessage{}}, nil
}

func (f *fakeBackend) ConnectGmail(ctx context.Context, redirectURI string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redirects = append(f.redirects, redirectURI)
	return f.authURL, f.connectErr
}

func (f *fakeBackend) Disconnect(ctx context.Context, integrationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disconnectErr != nil {
		return f.disconnectErr
	}
	f.disconnected = append(f.disconnected, integrationID)
	return nil
}

func (f *fakeBackend) UpdateIntegration(ctx context.Context, integrationID string, update api.Update) (*domain.Integration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates = append(f.updates, update)
	return &domain.Integration{ID: integrationID}, nil
}

func (f *fakeBackend) DailyFeed(ctx context.Context, params api.FeedParams) (*domain.DailyFeed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedCalls = append(f.feedCalls, params)
	return f.feed, f.feedErr
}

// recordingNavigator remembers every URL it was asked to open.
type recordingNavigator struct {
	urls []string
	err  error
}

func (n *recordingNavigator) Navigate(ctx context.Context, authURL string) error {
	n.urls = append(n.urls, authURL)
	return n.err
}
