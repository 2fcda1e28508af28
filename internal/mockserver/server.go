// Package mockserver is an in-memory stand-in for the assistant backend.
// It serves the same REST routes as the real service so the CLI and TUI can
// be driven locally, and lets tests inject failures per route.
package mockserver

import (
	"io"
	"maps"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lu-zhengda/assist/internal/domain"
)

// Failure is an injected error response for one route.
type Failure struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	// Count is how many requests fail before the route recovers; 0 means
	// until cleared.
	Count int `json:"count"`
}

// Server holds the mock backend state.
type Server struct {
	mu           sync.Mutex
	token        string
	available    []domain.AvailableProvider
	integrations []*domain.Integration
	emails       map[string][]domain.EmailMessage
	news         []domain.NewsItem
	failures     map[string]*Failure
	now          func() time.Time

	engine *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithToken requires every API request to carry this bearer token.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithAvailable replaces the providers enabled for the deployment.
func WithAvailable(providers ...domain.AvailableProvider) Option {
	return func(s *Server) { s.available = providers }
}

// WithIntegration adds an existing integration with its mailbox.
func WithIntegration(in domain.Integration, emails ...domain.EmailMessage) Option {
	return func(s *Server) {
		in := in
		if in.ID == "" {
			in.ID = uuid.NewString()
		}
		s.integrations = append(s.integrations, &in)
		s.emails[in.ID] = emails
	}
}

// WithDemoMailbox adds an active Gmail integration with n generated messages.
func WithDemoMailbox(n int) Option {
	return func(s *Server) {
		id := uuid.NewString()
		stamp := s.stamp()
		s.integrations = append(s.integrations, &domain.Integration{
			ID:           id,
			ProviderType: domain.ProviderGmail,
			Status:       domain.StatusActive,
			Config:       map[string]any{"email": "demo@example.com"},
			CreatedAt:    stamp,
			UpdatedAt:    stamp,
		})
		s.emails[id] = generateEmails(id, n, s.now())
	}
}

// WithNews replaces the news items served by the daily feed.
func WithNews(items ...domain.NewsItem) Option {
	return func(s *Server) { s.news = items }
}

// WithRequestLog writes one access log line per request to w.
func WithRequestLog(w io.Writer) Option {
	return func(s *Server) { s.engine.Use(gin.LoggerWithWriter(w)) }
}

// New builds a mock backend. Without options it offers Gmail as the only
// available provider and has no connected integrations.
func New(opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		available: []domain.AvailableProvider{{
			ProviderType: domain.ProviderGmail,
			Name:         "Gmail",
			Description:  "Read and summarize your inbox.",
		}},
		emails:   make(map[string][]domain.EmailMessage),
		news:     defaultNews(),
		failures: make(map[string]*Failure),
		now:      time.Now,
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery())
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// Handler returns the HTTP handler serving the mock API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Fail makes route (for example "GET /api/v1/integrations/available")
// answer with f until cleared or f.Count requests have failed.
func (s *Server) Fail(route string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = &f
}

// ClearFailures removes every injected failure.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]*Failure)
}

// Expire marks an integration's provider token as expired, so mail
// listing answers 401 until it is reconnected.
func (s *Server) Expire(integrationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.find(integrationID)
	if in == nil {
		return false
	}
	in.Status = domain.StatusExpired
	in.UpdatedAt = s.stamp()
	return true
}

// Integrations returns a copy of the current integrations.
func (s *Server) Integrations() []domain.Integration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Integration, 0, len(s.integrations))
	for _, in := range s.integrations {
		cp := *in
		cp.Config = maps.Clone(in.Config)
		out = append(out, cp)
	}
	return out
}

func (s *Server) routes() {
	r := s.engine

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Browser leg of the OAuth handoff
	r.GET("/mock/oauth/authorize", s.handleAuthorize)

	// Admin endpoints for testing
	admin := r.Group("/mock")
	{
		admin.POST("/failures", s.handleAddFailure)
		admin.DELETE("/failures", s.handleClearFailures)
		admin.POST("/integrations/:id/expire", s.handleExpire)
	}

	v1 := r.Group("/api/v1", s.authenticate, s.injectFailures)
	{
		v1.GET("/integrations/available", s.handleAvailable)
		v1.GET("/integrations/", s.handleListMine)
		v1.POST("/integrations/gmail/connect", s.handleConnect)
		v1.DELETE("/integrations/:id", s.handleDisconnect)
		v1.PATCH("/integrations/:id", s.handleUpdate)
		v1.GET("/integrations/:id/emails", s.handleEmails)
		v1.GET("/dashboard/daily-feed", s.handleDailyFeed)
	}
}

func (s *Server) authenticate(c *gin.Context) {
	if s.token == "" {
		return
	}
	if c.GetHeader("Authorization") != "Bearer "+s.token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
	}
}

func (s *Server) injectFailures(c *gin.Context) {
	route := c.Request.Method + " " + c.FullPath()

	s.mu.Lock()
	f, ok := s.failures[route]
	var status int
	var message string
	if ok {
		status, message = f.Status, f.Message
		if f.Count > 0 {
			f.Count--
			if f.Count == 0 {
				delete(s.failures, route)
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	if message == "" {
		c.AbortWithStatus(status)
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

func (s *Server) handleAvailable(c *gin.Context) {
	s.mu.Lock()
	out := append([]domain.AvailableProvider{}, s.available...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleListMine(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": s.Integrations()})
}

func (s *Server) handleConnect(c *gin.Context) {
	var req struct {
		RedirectURI string `json:"redirect_uri"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RedirectURI == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "redirect_uri is required"})
		return
	}

	q := url.Values{}
	q.Set("state", uuid.NewString())
	q.Set("redirect_uri", req.RedirectURI)
	authURL := "http://" + c.Request.Host + "/mock/oauth/authorize?" + q.Encode()
	c.JSON(http.StatusOK, gin.H{"authorization_url": authURL})
}

// handleAuthorize plays the provider consent screen: it activates (or
// creates) the Gmail integration and sends the browser back.
func (s *Server) handleAuthorize(c *gin.Context) {
	redirect, err := url.Parse(c.Query("redirect_uri"))
	if err != nil || redirect.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid redirect_uri"})
		return
	}

	s.mu.Lock()
	var in *domain.Integration
	for _, existing := range s.integrations {
		if existing.ProviderType == domain.ProviderGmail {
			in = existing
			break
		}
	}
	if in == nil {
		in = &domain.Integration{
			ID:           uuid.NewString(),
			ProviderType: domain.ProviderGmail,
			Config:       map[string]any{"email": "demo@example.com"},
			CreatedAt:    s.stamp(),
		}
		s.integrations = append(s.integrations, in)
		s.emails[in.ID] = generateEmails(in.ID, 45, s.now())
	}
	in.Status = domain.StatusActive
	in.UpdatedAt = s.stamp()
	s.mu.Unlock()

	back := redirect.Query()
	back.Set("status", "connected")
	back.Set("state", c.Query("state"))
	redirect.RawQuery = back.Encode()
	c.Redirect(http.StatusFound, redirect.String())
}

func (s *Server) handleDisconnect(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, in := range s.integrations {
		if in.ID == id {
			s.integrations = append(s.integrations[:i], s.integrations[i+1:]...)
			delete(s.emails, id)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Integration not found"})
}

func (s *Server) handleUpdate(c *gin.Context) {
	var req struct {
		Status *domain.Status  `json:"status"`
		Config *map[string]any `json:"config"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid body"})
		return
	}
	if req.Status != nil && !knownStatus(*req.Status) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid status: " + string(*req.Status)})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.find(c.Param("id"))
	if in == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Integration not found"})
		return
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.Config != nil {
		if in.Config == nil {
			in.Config = make(map[string]any)
		}
		for k, v := range *req.Config {
			in.Config[k] = v
		}
	}
	in.UpdatedAt = s.stamp()
	c.JSON(http.StatusOK, in)
}

func (s *Server) handleEmails(c *gin.Context) {
	s.mu.Lock()
	in := s.find(c.Param("id"))
	if in == nil {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"detail": "Integration not found"})
		return
	}
	status := in.Status
	box := append([]domain.EmailMessage{}, s.emails[in.ID]...)
	s.mu.Unlock()

	switch status {
	case domain.StatusExpired:
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Gmail authorization expired"})
		return
	case domain.StatusError:
		c.JSON(http.StatusBadGateway, gin.H{"detail": "Gmail upstream error"})
		return
	}

	req, err := parseEmailQuery(c)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, req.page(box))
}

func (s *Server) handleDailyFeed(c *gin.Context) {
	req, err := parseFeedQuery(c)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	news := append([]domain.NewsItem{}, s.news...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, req.feed(news, s.now()))
}

func (s *Server) handleAddFailure(c *gin.Context) {
	var req struct {
		Route string `json:"route"`
		Failure
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Route == "" || req.Status < 400 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "route and an error status are required"})
		return
	}
	s.Fail(req.Route, req.Failure)
	c.JSON(http.StatusOK, gin.H{"route": req.Route, "status": req.Status})
}

func (s *Server) handleClearFailures(c *gin.Context) {
	s.ClearFailures()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleExpire(c *gin.Context) {
	if !s.Expire(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "integration not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// find must be called with s.mu held.
func (s *Server) find(id string) *domain.Integration {
	for _, in := range s.integrations {
		if in.ID == id {
			return in
		}
	}
	return nil
}

func (s *Server) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func knownStatus(st domain.Status) bool {
	switch st {
	case domain.StatusActive, domain.StatusExpired, domain.StatusError, domain.StatusDisconnected:
		return true
	}
	return false
}
