package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sandeepkv93/invotrac/internal/observability"
)

type loggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	observability.RecordBackendRequest(req.Context(), req.Method, observability.StatusClass(status), elapsed)

	attrs := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
		"request_id", req.Header.Get(headerRequestID),
	}
	if err != nil {
		t.logger.WarnContext(req.Context(), "backend request failed", append(attrs, "error", err)...)
		return resp, err
	}
	t.logger.DebugContext(req.Context(), "backend request", attrs...)
	return resp, nil
}
