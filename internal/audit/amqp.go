package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/frahmantamala/reputation-management/internal/core/events"
)

const DefaultQueue = "audit.events"

// AMQPPublisher ships audit events to a durable RabbitMQ queue as persistent
// JSON messages.
type AMQPPublisher struct {
	url    string
	queue  string
	logger *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url, queue string, logger *slog.Logger) (*AMQPPublisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	p := &AMQPPublisher{
		url:    url,
		queue:  queue,
		logger: logger,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect must be called with mu held.
func (p *AMQPPublisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("amqp channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		p.queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("amqp queue declare: %w", err)
	}

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event *events.AuditEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		p.logger.Warn("amqp connection lost, reconnecting", "queue", p.queue)
		if err := p.connect(); err != nil {
			return err
		}
	}

	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			MessageId:    event.EventID(),
			Type:         event.Action,
			Body:         body,
		},
	)
}

func (p *AMQPPublisher) Handle(ctx context.Context, event events.Event) error {
	auditEvent, err := asAuditEvent(event)
	if err != nil {
		return err
	}
	return p.Publish(ctx, auditEvent)
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// AMQPConsumer drains the audit queue into a handler, typically Store.Save.
type AMQPConsumer struct {
	url    string
	queue  string
	logger *slog.Logger
}

func NewAMQPConsumer(url, queue string, logger *slog.Logger) *AMQPConsumer {
	if queue == "" {
		queue = DefaultQueue
	}
	return &AMQPConsumer{
		url:    url,
		queue:  queue,
		logger: logger,
	}
}

// Run blocks until ctx is done or the connection drops. Messages that fail to
// decode are dropped; handler failures are requeued once.
func (c *AMQPConsumer) Run(ctx context.Context, handle func(context.Context, *events.AuditEvent) error) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("amqp queue declare: %w", err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return fmt.Errorf("amqp qos: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqp consume: %w", err)
	}

	c.logger.Info("audit consumer started", "queue", c.queue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("amqp delivery channel closed")
			}
			c.deliver(ctx, d, handle)
		}
	}
}

func (c *AMQPConsumer) deliver(ctx context.Context, d amqp.Delivery, handle func(context.Context, *events.AuditEvent) error) {
	var event events.AuditEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		c.logger.Error("dropping malformed audit message", "message_id", d.MessageId, "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := handle(ctx, &event); err != nil {
		c.logger.Error("audit handler failed", "message_id", d.MessageId, "error", err)
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
}
