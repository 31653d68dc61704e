package events

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Merchandising event types
const (
	OrderSaved = "merchandising.order.saved"
	OrderReset = "merchandising.order.reset"
)

// OrderEvent represents a display-order change event
type OrderEvent struct {
	EventType     string    `json:"eventType"`
	TenantID      string    `json:"tenantId"`
	CategoryCount int       `json:"categoryCount"`
	Scoped        bool      `json:"scoped"`
	CategoryID    string    `json:"categoryId,omitempty"`
	ActorID       string    `json:"actorId,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher publishes merchandising events to NATS
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher creates a new merchandising events publisher
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		return nil, fmt.Errorf("NATS_URL not set")
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("merchandising-service"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "events.publisher"),
	}, nil
}

// PublishOrderSaved publishes an order saved event. Scoped saves carry the
// edited category's id.
func (p *Publisher) PublishOrderSaved(tenantID string, categoryCount int, scoped bool, categoryID, actorID string) error {
	return p.publish(&OrderEvent{
		EventType:     OrderSaved,
		TenantID:      tenantID,
		CategoryCount: categoryCount,
		Scoped:        scoped,
		CategoryID:    categoryID,
		ActorID:       actorID,
		Timestamp:     time.Now().UTC(),
	})
}

// PublishOrderReset publishes an order reset event
func (p *Publisher) PublishOrderReset(tenantID, actorID string) error {
	return p.publish(&OrderEvent{
		EventType: OrderReset,
		TenantID:  tenantID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
	})
}

func (p *Publisher) publish(event *OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(event.EventType, data); err != nil {
		p.logger.WithError(err).WithField("event_type", event.EventType).Error("Failed to publish event")
		return err
	}
	p.logger.WithFields(logrus.Fields{
		"event_type": event.EventType,
		"tenant_id":  event.TenantID,
	}).Info("Published merchandising event")
	return nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
