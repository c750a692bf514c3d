package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/naveenspark/moneta/pkg/session"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsSessionExpired reports whether err comes from a session that can no
// longer be refreshed, either short-circuited or answered with 401.
func IsSessionExpired(err error) bool {
	return errors.Is(err, session.ErrSessionExpired) || IsStatus(err, 401)
}

// newHTTPError extracts the message of a FastAPI error body. detail is
// either a string or a list of validation problems.
func newHTTPError(status int, body []byte) *HTTPError {
	var apiErr struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &apiErr) == nil && len(apiErr.Detail) > 0 {
		var msg string
		if json.Unmarshal(apiErr.Detail, &msg) == nil && msg != "" {
			return &HTTPError{StatusCode: status, Message: msg}
		}
		var problems []struct {
			Loc []any  `json:"loc"`
			Msg string `json:"msg"`
		}
		if json.Unmarshal(apiErr.Detail, &problems) == nil && len(problems) > 0 {
			parts := make([]string, 0, len(problems))
			for _, p := range problems {
				if field := lastLoc(p.Loc); field != "" {
					parts = append(parts, field+": "+p.Msg)
				} else {
					parts = append(parts, p.Msg)
				}
			}
			return &HTTPError{StatusCode: status, Message: strings.Join(parts, "; ")}
		}
	}
	return &HTTPError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}

func lastLoc(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	if s, ok := loc[len(loc)-1].(string); ok {
		return s
	}
	return ""
}
