package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/lu-zhengda/assist/internal/api"
	"github.com/lu-zhengda/assist/internal/domain"
)

// ErrNoEmailIntegration is returned when the user has no Gmail integration.
var ErrNoEmailIntegration = errors.New("no email integration connected")

// MailClient is the subset of the API the inbox needs.
type MailClient interface {
	ListMine(ctx context.Context) ([]domain.Integration, error)
	ListEmails(ctx context.Context, integrationID string, params api.EmailParams) (*domain.EmailPage, error)
}

// EmailRequest is one prepared fetch. It is safe to run Fetch for it off the
// UI goroutine.
type EmailRequest struct {
	Ticket        Ticket
	IntegrationID string
	Params        api.EmailParams
}

// InboxService couples the paginator with the backend and the reconnect flow.
// Its methods other than Fetch must be called from a single goroutine.
type InboxService struct {
	client      MailClient
	reconnector *Reconnector
	redirectURI string
	pager       *Paginator

	integrations []domain.Integration
}

func NewInboxService(client MailClient, reconnector *Reconnector, redirectURI string) *InboxService {
	return &InboxService{
		client:      client,
		reconnector: reconnector,
		redirectURI: redirectURI,
		pager:       NewPaginator(),
	}
}

func (s *InboxService) Pager() *Paginator { return s.pager }

// Integrations returns the user's Gmail integrations.
func (s *InboxService) Integrations() []domain.Integration { return s.integrations }

// PickIntegration keeps Gmail integrations only and picks preferredID when it
// is still present, else the first one.
func PickIntegration(mine []domain.Integration, preferredID string) ([]domain.Integration, *domain.Integration) {
	var gmail []domain.Integration
	for _, in := range mine {
		if in.ProviderType == domain.ProviderGmail {
			gmail = append(gmail, in)
		}
	}
	if len(gmail) == 0 {
		return nil, nil
	}
	for i := range gmail {
		if gmail[i].ID == preferredID {
			return gmail, &gmail[i]
		}
	}
	return gmail, &gmail[0]
}

// ListIntegrations fetches the user's integrations without touching service
// state. Pair it with SetIntegrations.
func (s *InboxService) ListIntegrations(ctx context.Context) ([]domain.Integration, error) {
	mine, err := s.client.ListMine(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	return mine, nil
}

// LoadIntegrations fetches the user's integrations and selects the active one.
func (s *InboxService) LoadIntegrations(ctx context.Context, preferredID string) error {
	mine, err := s.ListIntegrations(ctx)
	if err != nil {
		return err
	}
	s.SetIntegrations(mine, preferredID)
	return nil
}

// SetIntegrations applies an integration listing fetched elsewhere.
func (s *InboxService) SetIntegrations(mine []domain.Integration, preferredID string) {
	if preferredID == "" {
		preferredID = s.pager.IntegrationID()
	}
	gmail, active := PickIntegration(mine, preferredID)
	s.integrations = gmail
	if active == nil {
		s.pager.SetIntegration("")
		s.pager.Clear()
		return
	}
	s.pager.SetIntegration(active.ID)
	s.pager.SetBaseQuery(active.Query())
}

// Active returns the selected integration, or nil.
func (s *InboxService) Active() *domain.Integration {
	id := s.pager.IntegrationID()
	for i := range s.integrations {
		if s.integrations[i].ID == id {
			return &s.integrations[i]
		}
	}
	return nil
}

// ActiveIndex is the position of the active integration in Integrations.
func (s *InboxService) ActiveIndex() int {
	id := s.pager.IntegrationID()
	for i := range s.integrations {
		if s.integrations[i].ID == id {
			return i
		}
	}
	return -1
}

// SwitchIntegration activates another Gmail integration by id.
func (s *InboxService) SwitchIntegration(id string) bool {
	for i := range s.integrations {
		if s.integrations[i].ID == id {
			changed := s.pager.SetIntegration(id)
			s.pager.SetBaseQuery(s.integrations[i].Query())
			return changed
		}
	}
	return false
}

// Notice is the banner text for an integration that needs attention.
func Notice(in *domain.Integration) string {
	if in == nil {
		return ""
	}
	switch in.Status {
	case domain.StatusExpired:
		return "Gmail access has expired. Reconnect to resume syncing."
	case domain.StatusError:
		return "Gmail reported an error. Check connection settings."
	}
	return ""
}

// Unavailable reports whether there is nothing to fetch: no integration or a
// disconnected one.
func (s *InboxService) Unavailable() bool {
	in := s.Active()
	return in == nil || in.Status == domain.StatusDisconnected
}

// Prepare starts a fetch for the current cursor. It returns false and clears
// the page when the active integration cannot be fetched.
func (s *InboxService) Prepare() (EmailRequest, bool) {
	if s.Unavailable() {
		s.pager.Clear()
		return EmailRequest{}, false
	}
	in := s.Active()
	t := s.pager.Begin()
	return EmailRequest{
		Ticket:        t,
		IntegrationID: in.ID,
		Params:        EmailParams(in, s.pager.Filter(), s.pager.Search(), t.Token),
	}, true
}

// Fetch performs the request. It does not touch service state.
func (s *InboxService) Fetch(ctx context.Context, req EmailRequest) (*domain.EmailPage, error) {
	return s.client.ListEmails(ctx, req.IntegrationID, req.Params)
}

// Apply records the result of Fetch.
func (s *InboxService) Apply(req EmailRequest, page *domain.EmailPage, err error) Outcome {
	if err != nil {
		outcome := s.pager.Fail(req.Ticket, err)
		if outcome == OutcomeFailed {
			log.Printf("[inbox] failed to list emails for %s: %v", req.IntegrationID, err)
		}
		return outcome
	}
	if !s.pager.Succeed(req.Ticket, page) {
		return OutcomeDiscarded
	}
	log.Printf("[inbox] loaded %d emails for %s (page %d)", len(page.Items), req.IntegrationID, s.pager.PageIndex()+1)
	return OutcomeLoaded
}

// Reconnect starts the consent handoff. Like Fetch it does not touch service
// state, so it may run off the UI goroutine.
func (s *InboxService) Reconnect(ctx context.Context) error {
	if s.reconnector == nil {
		return errors.New("reconnect is not available")
	}
	return s.reconnector.Reconnect(ctx, s.redirectURI)
}

// Reauthorize runs the reconnect flow after an expired session. Failures are
// surfaced on the paginator.
func (s *InboxService) Reauthorize(ctx context.Context) error {
	if err := s.Reconnect(ctx); err != nil {
		s.pager.ReauthFailed(err)
		return err
	}
	return nil
}

// Load fetches the current page synchronously, reconnecting once on an
// expired session.
func (s *InboxService) Load(ctx context.Context) error {
	req, ok := s.Prepare()
	if !ok {
		if s.Active() == nil {
			return ErrNoEmailIntegration
		}
		return nil
	}
	page, err := s.Fetch(ctx, req)
	switch s.Apply(req, page, err) {
	case OutcomeReauthorize:
		log.Printf("[inbox] session expired for %s, reconnecting", req.IntegrationID)
		return s.Reauthorize(ctx)
	case OutcomeFailed:
		return s.pager.Err()
	}
	return nil
}
