package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/reputation-management/internal/auth"
	"github.com/frahmantamala/reputation-management/internal/core/events"
)

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// BusSink forwards authentication audit events onto the event bus. Delivery
// to the subscribers happens asynchronously.
type BusSink struct {
	bus    Publisher
	logger *slog.Logger
}

func NewBusSink(bus Publisher, logger *slog.Logger) *BusSink {
	return &BusSink{
		bus:    bus,
		logger: logger,
	}
}

var _ auth.AuditSink = (*BusSink)(nil)

func (s *BusSink) Log(ctx context.Context, event auth.AuditEvent) {
	auditEvent := events.NewAuditEvent(
		string(event.Type),
		event.UserID,
		event.IP,
		event.UserAgent,
		event.Success,
		event.Error,
		event.Metadata,
	)
	if err := s.bus.Publish(ctx, auditEvent); err != nil {
		s.logger.Warn("failed to publish audit event", "action", event.Type, "error", err)
	}
}

// Subscribe attaches every handler to the audit event type.
func Subscribe(bus *events.EventBus, handlers ...events.Handler) {
	for _, h := range handlers {
		bus.Subscribe(events.EventTypeAudit, h)
	}
}

func asAuditEvent(event events.Event) (*events.AuditEvent, error) {
	auditEvent, ok := event.(*events.AuditEvent)
	if !ok {
		return nil, fmt.Errorf("expected AuditEvent, got %T", event)
	}
	return auditEvent, nil
}

// LogHandler writes audit events to the structured log.
func LogHandler(logger *slog.Logger) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		auditEvent, err := asAuditEvent(event)
		if err != nil {
			return err
		}

		attrs := []any{
			"action", auditEvent.Action,
			"user_id", auditEvent.UserID,
			"ip", auditEvent.IP,
			"user_agent", auditEvent.UserAgent,
			"success", auditEvent.Success,
			"event_id", auditEvent.EventID(),
		}
		if auditEvent.Error != "" {
			attrs = append(attrs, "reason", auditEvent.Error)
		}

		if auditEvent.Success {
			logger.InfoContext(ctx, "audit", attrs...)
		} else {
			logger.WarnContext(ctx, "audit", attrs...)
		}
		return nil
	}
}
