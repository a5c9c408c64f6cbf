package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrBackendUnavailable = errors.New("products backend unavailable")
	ErrInvalidResponse    = errors.New("invalid backend response")
)

// APIError is a non-2xx reply from the products backend.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
}

func (e *APIError) Is(target error) bool {
	return target == ErrProductNotFound && e.StatusCode == http.StatusNotFound
}

// DetailOf returns the backend's detail text carried by err, or fallback.
func DetailOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Detail) != "" {
		return apiErr.Detail
	}
	return fallback
}

type validationIssue struct {
	Msg string `json:"msg"`
}

// parseDetail understands {"detail": "..."} and {"detail": [{"msg": ...}]}
// bodies. Anything else, including non-JSON proxy pages, yields "" so callers
// fall back to their generic message.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	var issues []validationIssue
	if err := json.Unmarshal(payload.Detail, &issues); err == nil {
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			if issue.Msg != "" {
				msgs = append(msgs, issue.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
