package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"merchandising-service/internal/models"
	"merchandising-service/internal/ordering"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderCacheTTL bounds staleness of the cached persisted order. Saved orders
// change rarely outside an active editing session.
const OrderCacheTTL = 15 * time.Minute

type OrderRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewOrderRepository(db *gorm.DB, redis *redis.Client) *OrderRepository {
	return &OrderRepository{
		db:    db,
		redis: redis,
	}
}

func orderCacheKey(tenantID string) string {
	return fmt.Sprintf("merchandising:order:%s", tenantID)
}

// invalidateOrderCache invalidates the cached persisted order for a tenant
func (r *OrderRepository) invalidateOrderCache(ctx context.Context, tenantID string) {
	if r.redis == nil {
		return
	}
	r.redis.Del(ctx, orderCacheKey(tenantID))
}

// GetEntries returns the tenant's persisted order sorted by category
// position. An empty slice means no customization has been saved (default
// state). Rows whose product payload no longer decodes are skipped; the next
// save rewrites them.
func (r *OrderRepository) GetEntries(tenantID string) ([]ordering.OrderEntry, error) {
	ctx := context.Background()
	cacheKey := orderCacheKey(tenantID)

	// Try to get from cache first
	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var entries []ordering.OrderEntry
			if err := json.Unmarshal([]byte(val), &entries); err == nil {
				return entries, nil
			}
		}
	}

	var rows []models.DisplayOrder
	err := r.db.Where("tenant_id = ?", tenantID).Order("position ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]ordering.OrderEntry, 0, len(rows))
	for _, row := range rows {
		var products []ordering.ProductOrder
		if len(row.Products) > 0 {
			if err := json.Unmarshal(row.Products, &products); err != nil {
				continue
			}
		}
		entries = append(entries, ordering.OrderEntry{
			CategoryID:   ordering.EntityRef{ID: row.CategoryID},
			SerialNumber: row.Position,
			Products:     products,
		})
	}

	// Cache the result
	if r.redis != nil {
		data, err := json.Marshal(entries)
		if err == nil {
			r.redis.Set(ctx, cacheKey, data, OrderCacheTTL)
		}
	}

	return entries, nil
}

// ReplaceAll replaces the tenant's entire persisted order with the given
// entries in a single transaction, so overlapping full saves serialize at the
// database rather than interleaving rows.
func (r *OrderRepository) ReplaceAll(tenantID string, entries []ordering.OrderEntry) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", tenantID).Delete(&models.DisplayOrder{}).Error; err != nil {
			return err
		}
		for _, entry := range entries {
			row, err := rowFromEntry(tenantID, entry)
			if err != nil {
				return err
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		r.invalidateOrderCache(context.Background(), tenantID)
	}
	return err
}

// UpsertCategory writes one category's entry without touching any other
// category's row (scoped, edit-mode save).
func (r *OrderRepository) UpsertCategory(tenantID string, entry ordering.OrderEntry) error {
	row, err := rowFromEntry(tenantID, entry)
	if err != nil {
		return err
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.DisplayOrder
		findErr := tx.Where("tenant_id = ? AND category_id = ?", tenantID, entry.CategoryID.ID).
			First(&existing).Error
		if findErr == nil {
			existing.Position = row.Position
			existing.Products = row.Products
			return tx.Save(&existing).Error
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}
		return tx.Create(row).Error
	})
	if err == nil {
		r.invalidateOrderCache(context.Background(), tenantID)
	}
	return err
}

// DeleteAll clears the tenant's persisted order; the next read falls back to
// catalog-natural order.
func (r *OrderRepository) DeleteAll(tenantID string) error {
	result := r.db.Where("tenant_id = ?", tenantID).Delete(&models.DisplayOrder{})
	if result.Error != nil {
		return result.Error
	}
	r.invalidateOrderCache(context.Background(), tenantID)
	return nil
}

// RemoveCategory drops a deleted category's row from every stored order of
// the tenant. Reconciliation on read would drop it anyway; this keeps the
// stored form from accumulating orphans.
func (r *OrderRepository) RemoveCategory(tenantID string, categoryID uuid.UUID) error {
	result := r.db.Where("tenant_id = ? AND category_id = ?", tenantID, categoryID).
		Delete(&models.DisplayOrder{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		r.invalidateOrderCache(context.Background(), tenantID)
	}
	return nil
}

// RemoveProduct strips a deleted product from every stored order row of the
// tenant.
func (r *OrderRepository) RemoveProduct(tenantID string, productID uuid.UUID) error {
	var touched bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var rows []models.DisplayOrder
		if err := tx.Where("tenant_id = ?", tenantID).Find(&rows).Error; err != nil {
			return err
		}
		for i := range rows {
			var products []ordering.ProductOrder
			if len(rows[i].Products) == 0 {
				continue
			}
			if err := json.Unmarshal(rows[i].Products, &products); err != nil {
				continue
			}
			kept := make([]ordering.ProductOrder, 0, len(products))
			for _, p := range products {
				if p.ProductID.ID != productID {
					kept = append(kept, p)
				}
			}
			if len(kept) == len(products) {
				continue
			}
			data, err := json.Marshal(kept)
			if err != nil {
				return err
			}
			rows[i].Products = datatypes.JSON(data)
			if err := tx.Save(&rows[i]).Error; err != nil {
				return err
			}
			touched = true
		}
		return nil
	})
	if err == nil && touched {
		r.invalidateOrderCache(context.Background(), tenantID)
	}
	return err
}

func rowFromEntry(tenantID string, entry ordering.OrderEntry) (*models.DisplayOrder, error) {
	products := entry.Products
	if products == nil {
		products = []ordering.ProductOrder{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return nil, err
	}
	return &models.DisplayOrder{
		ID:         uuid.New(),
		TenantID:   tenantID,
		CategoryID: entry.CategoryID.ID,
		Position:   entry.SerialNumber,
		Products:   datatypes.JSON(data),
	}, nil
}
