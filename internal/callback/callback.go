package callback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// Result is what the backend reported when it redirected the browser back.
type Result struct {
	Query url.Values
}

// Err returns the provider error carried by the redirect, if any.
func (r Result) Err() error {
	if msg := r.Query.Get("error"); msg != "" {
		if desc := r.Query.Get("error_description"); desc != "" {
			msg += ": " + desc
		}
		return fmt.Errorf("authorization failed: %s", msg)
	}
	return nil
}

// Server is a loopback listener used as the OAuth redirect target. The path
// carries a random nonce so unrelated requests are ignored. At most one
// redirect is buffered; later ones are dropped until Wait consumes it.
type Server struct {
	listener net.Listener
	server   *http.Server
	path     string

	resultCh chan Result
}

// Listen starts the listener on a random loopback port.
func Listen() (*Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}
	s := &Server{
		listener: listener,
		path:     "/callback/" + uuid.NewString(),
		resultCh: make(chan Result, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(s.path, func(w http.ResponseWriter, r *http.Request) {
		res := Result{Query: r.URL.Query()}
		if res.Err() != nil {
			fmt.Fprint(w, "Connection failed. You can close this tab.")
		} else {
			fmt.Fprint(w, "Connection complete! You can close this tab and return to assist.")
		}
		select {
		case s.resultCh <- res:
		default:
		}
	})
	s.server = &http.Server{Handler: mux}
	go func() { _ = s.server.Serve(listener) }()
	return s, nil
}

// RedirectURI is the URL to hand to the backend as redirect_uri.
func (s *Server) RedirectURI() string {
	port := s.listener.Addr().(*net.TCPAddr).Port
	return fmt.Sprintf("http://127.0.0.1:%d%s", port, s.path)
}

// Wait blocks until the browser hits the redirect URI or ctx is done.
func (s *Server) Wait(ctx context.Context) (Result, error) {
	select {
	case res := <-s.resultCh:
		return res, res.Err()
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Close stops the listener.
func (s *Server) Close() error {
	if err := s.server.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to stop callback server: %w", err)
	}
	return nil
}
