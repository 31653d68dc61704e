package subscribers

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"merchandising-service/internal/repository"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// CatalogDeletedEvent is the shape shared by category.deleted and
// product.deleted events from the catalog services.
type CatalogDeletedEvent struct {
	EventType  string `json:"eventType"`
	TenantID   string `json:"tenantId"`
	CategoryID string `json:"categoryId,omitempty"`
	ProductID  string `json:"productId,omitempty"`
}

// CatalogSubscriber prunes stored display orders when catalog entities are
// deleted. Reconciliation on read drops orphans regardless; this keeps the
// stored rows from accumulating references to entities that no longer exist.
type CatalogSubscriber struct {
	conn   *nats.Conn
	repo   *repository.OrderRepository
	logger *logrus.Entry
	subs   []*nats.Subscription
}

// NewCatalogSubscriber creates a new catalog event subscriber
func NewCatalogSubscriber(repo *repository.OrderRepository, logger *logrus.Logger) (*CatalogSubscriber, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		return nil, fmt.Errorf("NATS_URL not set")
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("merchandising-service-subscriber"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &CatalogSubscriber{
		conn:   conn,
		repo:   repo,
		logger: logger.WithField("component", "subscribers.catalog"),
	}, nil
}

// Start begins listening for catalog deletion events
func (s *CatalogSubscriber) Start() error {
	sub, err := s.conn.Subscribe("category.deleted", s.handleCategoryDeleted)
	if err != nil {
		return fmt.Errorf("failed to subscribe to category.deleted: %w", err)
	}
	s.subs = append(s.subs, sub)

	sub, err = s.conn.Subscribe("product.deleted", s.handleProductDeleted)
	if err != nil {
		return fmt.Errorf("failed to subscribe to product.deleted: %w", err)
	}
	s.subs = append(s.subs, sub)

	s.logger.Info("Subscribed to catalog deletion events for display-order pruning")
	return nil
}

// Stop unsubscribes and closes the NATS connection
func (s *CatalogSubscriber) Stop() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	if s.conn != nil {
		s.conn.Close()
	}
}

func (s *CatalogSubscriber) handleCategoryDeleted(msg *nats.Msg) {
	var event CatalogDeletedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		s.logger.WithError(err).Error("Failed to unmarshal category.deleted event")
		return
	}
	if event.TenantID == "" || event.CategoryID == "" {
		s.logger.Warn("category.deleted event missing tenant or category id, skipping")
		return
	}
	categoryID, err := uuid.Parse(event.CategoryID)
	if err != nil {
		s.logger.WithError(err).WithField("category_id", event.CategoryID).
			Warn("category.deleted event carries unparsable id, skipping")
		return
	}

	if err := s.repo.RemoveCategory(event.TenantID, categoryID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"tenant_id":   event.TenantID,
			"category_id": event.CategoryID,
		}).Error("Failed to prune display order for deleted category")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"tenant_id":   event.TenantID,
		"category_id": event.CategoryID,
	}).Info("Pruned display order for deleted category")
}

func (s *CatalogSubscriber) handleProductDeleted(msg *nats.Msg) {
	var event CatalogDeletedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		s.logger.WithError(err).Error("Failed to unmarshal product.deleted event")
		return
	}
	if event.TenantID == "" || event.ProductID == "" {
		s.logger.Warn("product.deleted event missing tenant or product id, skipping")
		return
	}
	productID, err := uuid.Parse(event.ProductID)
	if err != nil {
		s.logger.WithError(err).WithField("product_id", event.ProductID).
			Warn("product.deleted event carries unparsable id, skipping")
		return
	}

	if err := s.repo.RemoveProduct(event.TenantID, productID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"tenant_id":  event.TenantID,
			"product_id": event.ProductID,
		}).Error("Failed to prune display order for deleted product")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"tenant_id":  event.TenantID,
		"product_id": event.ProductID,
	}).Info("Pruned display order for deleted product")
}
