package reputation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/reputation-management/internal/core/events"
)

type Enqueuer interface {
	Enqueue(job RecalculationJob) error
}

// EventHandler turns feedback changes into recalculation jobs.
type EventHandler struct {
	queue  Enqueuer
	logger *slog.Logger
}

func NewEventHandler(queue Enqueuer, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		queue:  queue,
		logger: logger,
	}
}

func (h *EventHandler) HandleFeedbackEvent(ctx context.Context, event events.Event) error {
	feedbackEvent, ok := event.(*events.FeedbackEvent)
	if !ok {
		h.logger.Error("invalid event type for feedback handler", "event_type", event.EventType())
		return fmt.Errorf("expected FeedbackEvent, got %T", event)
	}

	h.logger.Debug("handling feedback event",
		"event_type", feedbackEvent.EventType(),
		"company_id", feedbackEvent.CompanyID,
		"feedback_id", feedbackEvent.FeedbackID,
		"event_id", feedbackEvent.EventID())

	if err := h.queue.Enqueue(RecalculationJob{CompanyID: feedbackEvent.CompanyID, SaveHistory: true}); err != nil {
		return fmt.Errorf("enqueue recalculation for company %s: %w", feedbackEvent.CompanyID, err)
	}
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeFeedbackSubmitted, h.HandleFeedbackEvent)
	eventBus.Subscribe(events.EventTypeFeedbackChanged, h.HandleFeedbackEvent)

	h.logger.Info("reputation event handlers registered",
		"handlers", []string{events.EventTypeFeedbackSubmitted, events.EventTypeFeedbackChanged})
}
