package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

const defaultTimeout = 30 * time.Second

// Client talks to the assistant backend REST API.
type Client struct {
	baseURL      string
	dashboardURL string
	httpClient   *http.Client
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	dashboardURL string
	token        *oauth2.Token
	timeout      time.Duration
	httpClient   *http.Client
	tracer       trace.TracerProvider
}

// WithDashboardURL sets a separate base URL for the daily feed.
func WithDashboardURL(u string) Option {
	return func(o *clientOptions) { o.dashboardURL = u }
}

// WithToken authenticates every request with a bearer token.
func WithToken(tok *oauth2.Token) Option {
	return func(o *clientOptions) { o.token = tok }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithTracerProvider records a client span per request and sends the W3C
// traceparent header to the backend.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *clientOptions) { o.tracer = tp }
}

// WithHTTPClient replaces the transport stack entirely. Used by tests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	o := clientOptions{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	hc := o.httpClient
	if hc == nil {
		transport := http.DefaultTransport
		if o.tracer != nil {
			transport = otelhttp.NewTransport(transport,
				otelhttp.WithTracerProvider(o.tracer),
				otelhttp.WithPropagators(propagation.TraceContext{}),
			)
		}
		if o.token != nil && o.token.AccessToken != "" {
			transport = &oauth2.Transport{
				Source: oauth2.StaticTokenSource(o.token),
				Base:   transport,
			}
		}
		hc = &http.Client{Transport: transport, Timeout: o.timeout}
	}

	base := strings.TrimRight(baseURL, "/")
	dash := strings.TrimRight(o.dashboardURL, "/")
	if dash == "" {
		dash = base
	}
	return &Client{baseURL: base, dashboardURL: dash, httpClient: hc}
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// do sends the request and decodes a 2xx JSON body into out. out may be nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", strings.ToLower(req.Method), req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}
