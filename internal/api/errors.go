package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const fallbackMessage = "Request failed"

// Error is returned for every non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an
// *Error.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsAuthExpired reports whether err is a 401 or 403 from the backend.
func IsAuthExpired(err error) bool {
	switch StatusOf(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}

// errorFromResponse drains resp and builds an *Error. The message comes from
// a JSON "message" or "detail" string, then the status line text.
func errorFromResponse(resp *http.Response) *Error {
	return &Error{Status: resp.StatusCode, Message: readErrorMessage(resp)}
}

func readErrorMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil {
		var payload map[string]any
		if json.Unmarshal(body, &payload) == nil {
			if msg, ok := payload["message"].(string); ok {
				return msg
			}
			if detail, ok := payload["detail"].(string); ok {
				return detail
			}
		}
	}
	if text := statusText(resp); text != "" {
		return text
	}
	return fallbackMessage
}

// statusText returns the reason phrase of the status line, e.g. "Not Found"
// for "404 Not Found".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
