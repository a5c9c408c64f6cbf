package observability

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const auditEventVersion = 1

// AuditInput describes a product mutation issued from this client.
type AuditInput struct {
	Action    string
	ProductID string
	Outcome   string
	Reason    string
	RequestID string
}

type AuditEvent struct {
	EventVersion int
	EventName    string
	ProductID    string
	Action       string
	Outcome      string
	Reason       string
	RequestID    string
	TS           string
}

func BuildAuditEvent(in AuditInput) AuditEvent {
	action := strings.TrimSpace(in.Action)
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "none"
	}
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		productID = "new"
	}
	return AuditEvent{
		EventVersion: auditEventVersion,
		EventName:    "product." + action,
		ProductID:    productID,
		Action:       action,
		Outcome:      strings.TrimSpace(in.Outcome),
		Reason:       reason,
		RequestID:    in.RequestID,
		TS:           time.Now().UTC().Format(time.RFC3339),
	}
}

func (e AuditEvent) Validate() error {
	var missing []string
	if e.EventVersion <= 0 {
		missing = append(missing, "event_version")
	}
	if e.Action == "" {
		missing = append(missing, "action")
	}
	if e.Outcome == "" {
		missing = append(missing, "outcome")
	}
	if e.TS == "" {
		missing = append(missing, "ts")
	}
	if len(missing) > 0 {
		return errors.New("audit event missing " + strings.Join(missing, ","))
	}
	return nil
}

// Audit writes the event at info level. Invalid events are logged as warnings
// instead of being dropped.
func Audit(ctx context.Context, logger *slog.Logger, in AuditInput) {
	if logger == nil {
		logger = slog.Default()
	}
	ev := BuildAuditEvent(in)
	attrs := []any{
		"event_version", ev.EventVersion,
		"event_name", ev.EventName,
		"product_id", ev.ProductID,
		"action", ev.Action,
		"outcome", ev.Outcome,
		"reason", ev.Reason,
		"request_id", ev.RequestID,
		"ts", ev.TS,
	}
	if err := ev.Validate(); err != nil {
		logger.WarnContext(ctx, "invalid audit event", append(attrs, "error", err)...)
		return
	}
	msg := "audit"
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		msg = "audit trace_id=" + sc.TraceID().String()
	}
	logger.InfoContext(ctx, msg, attrs...)
}
