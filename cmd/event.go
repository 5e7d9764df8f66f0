package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/reputation-management/internal/audit"
	"github.com/frahmantamala/reputation-management/internal/core/events"
	"github.com/frahmantamala/reputation-management/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish test events through the in-process event bus`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [audit|feedback]",
	Short: "Publish a test event",
	Long:  `Publish a test event to the event bus and log what the handlers receive`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := publishTestEvent(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var (
	eventData      string
	eventCompanyID string
)

func publishTestEvent(kind string) error {
	logger := logger.LoggerWrapper()

	eventBus := events.NewEventBus(logger)
	audit.Subscribe(eventBus, audit.LogHandler(logger))

	logFeedback := func(ctx context.Context, event events.Event) error {
		logger.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	}
	eventBus.Subscribe(events.EventTypeFeedbackSubmitted, logFeedback)

	var event events.Event
	switch kind {
	case "audit":
		event = events.NewAuditEvent("cli.test", "", "", "cli", true, "", map[string]interface{}{
			"message": eventData,
		})
	case "feedback":
		event = events.NewFeedbackSubmittedEvent("cli-test", eventCompanyID, 5)
	default:
		return fmt.Errorf("unknown event kind %q", kind)
	}

	logger.Info("publishing test event", "event_type", event.EventType(), "event_id", event.EventID())

	if err := eventBus.PublishSync(context.Background(), event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	logger.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Audit event message")
	publishEventCmd.Flags().StringVar(&eventCompanyID, "company-id", "", "Company id carried by feedback events")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
