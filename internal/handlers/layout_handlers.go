package handlers

import (
	"net/http"

	"merchandising-service/internal/clients"
	"merchandising-service/internal/events"
	"merchandising-service/internal/models"
	"merchandising-service/internal/ordering"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CatalogGateway fetches the live catalog from the catalog service.
type CatalogGateway interface {
	GetCategories(tenantID string) ([]clients.CatalogCategory, error)
}

// OrderStore persists display-order customizations.
type OrderStore interface {
	GetEntries(tenantID string) ([]ordering.OrderEntry, error)
	ReplaceAll(tenantID string, entries []ordering.OrderEntry) error
	UpsertCategory(tenantID string, entry ordering.OrderEntry) error
	DeleteAll(tenantID string) error
}

type LayoutHandler struct {
	catalog CatalogGateway
	orders  OrderStore
	events  *events.Publisher
	logger  *logrus.Entry
}

func NewLayoutHandler(catalog CatalogGateway, orders OrderStore, eventsPublisher *events.Publisher, logger *logrus.Logger) *LayoutHandler {
	return &LayoutHandler{
		catalog: catalog,
		orders:  orders,
		events:  eventsPublisher,
		logger:  logger.WithField("component", "handlers.layout"),
	}
}

// getTenantID extracts tenant ID from context - fails if not present
// SECURITY: This ensures all operations are tenant-scoped
func (h *LayoutHandler) getTenantID(c *gin.Context) (string, bool) {
	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TENANT_REQUIRED",
				"message": "Tenant context is required for this operation",
			},
		})
		return "", false
	}
	return tenantID, true
}

type catalogResult struct {
	categories []clients.CatalogCategory
	err        error
}

type orderResult struct {
	entries []ordering.OrderEntry
	err     error
}

// fetchBoth issues the catalog and persisted-order reads concurrently and
// waits for both to settle before anything is built from them.
func (h *LayoutHandler) fetchBoth(tenantID string) (catalogResult, orderResult) {
	catCh := make(chan catalogResult, 1)
	ordCh := make(chan orderResult, 1)
	go func() {
		categories, err := h.catalog.GetCategories(tenantID)
		catCh <- catalogResult{categories: categories, err: err}
	}()
	go func() {
		entries, err := h.orders.GetEntries(tenantID)
		ordCh <- orderResult{entries: entries, err: err}
	}()
	return <-catCh, <-ordCh
}

// loadLayout fetches both data sources and reconciles them. A false return
// means an error response has already been written.
func (h *LayoutHandler) loadLayout(c *gin.Context, tenantID string) (ordering.Layout, bool) {
	cat, ord := h.fetchBoth(tenantID)
	if cat.err != nil {
		h.logger.WithError(cat.err).WithField("tenant_id", tenantID).Error("Failed to fetch catalog")
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CATALOG_UNAVAILABLE",
				"message": "Failed to fetch catalog from catalog service",
			},
		})
		return ordering.Layout{}, false
	}
	if ord.err != nil {
		h.logger.WithError(ord.err).WithField("tenant_id", tenantID).Error("Failed to fetch persisted order")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_FETCH_FAILED",
				"message": "Failed to load saved display order",
			},
		})
		return ordering.Layout{}, false
	}

	return ordering.Build(toOrderingCatalog(cat.categories), ord.entries), true
}

// GetLayout returns the reconciled merchandising layout for the tenant.
// With ?categoryId= the reconciliation is scoped to that one category
// (edit mode).
// GET /api/v1/merchandising/layout
func (h *LayoutHandler) GetLayout(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	cat, ord := h.fetchBoth(tenantID)
	if cat.err != nil {
		h.logger.WithError(cat.err).WithField("tenant_id", tenantID).Error("Failed to fetch catalog")
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CATALOG_UNAVAILABLE",
				"message": "Failed to fetch catalog from catalog service",
			},
		})
		return
	}
	if ord.err != nil {
		h.logger.WithError(ord.err).WithField("tenant_id", tenantID).Error("Failed to fetch persisted order")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_FETCH_FAILED",
				"message": "Failed to load saved display order",
			},
		})
		return
	}

	// Catalog-empty is a terminal UI state, not an error
	if len(cat.categories) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    ordering.Layout{Categories: []ordering.CategoryView{}, State: ordering.StateDefault},
			"message": "No categories exist yet. Create categories and products before arranging them.",
		})
		return
	}

	catalog := toOrderingCatalog(cat.categories)

	if rawID := c.Query("categoryId"); rawID != "" {
		categoryID, err := uuid.Parse(rawID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_CATEGORY_ID",
					"message": "categoryId must be a valid UUID",
				},
			})
			return
		}
		layout := ordering.BuildScoped(catalog, ord.entries, categoryID)
		if len(layout.Categories) == 0 {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CATEGORY_NOT_FOUND",
					"message": "Category not found in catalog",
				},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": layout})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": ordering.Build(catalog, ord.entries)})
}

// ApplyMove applies one drag-and-drop gesture to the current reconciled
// layout and returns the result without persisting it. Invalid moves
// (cross-kind, self-drop, stale ids) return the layout unchanged.
// POST /api/v1/merchandising/layout/moves
func (h *LayoutHandler) ApplyMove(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request format: " + err.Error(),
			},
		})
		return
	}

	source, err := toDragItem(req.Source)
	if err == nil {
		var target ordering.DragItem
		target, err = toDragItem(req.Target)
		if err == nil {
			layout, loaded := h.loadLayout(c, tenantID)
			if !loaded {
				return
			}
			manager := ordering.NewManager(&layout)
			manager.StartDrag(source)
			manager.HandleDrop(target)
			c.JSON(http.StatusOK, gin.H{"success": true, "data": layout})
			return
		}
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INVALID_DRAG_REF",
			"message": err.Error(),
		},
	})
}

// SaveOrder replaces the tenant's entire persisted order with the flattened
// layout in the request body.
// POST /api/v1/merchandising/order
func (h *LayoutHandler) SaveOrder(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	var entries []ordering.OrderEntry
	if err := c.ShouldBindJSON(&entries); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request format: " + err.Error(),
			},
		})
		return
	}

	if err := h.orders.ReplaceAll(tenantID, entries); err != nil {
		h.logger.WithError(err).WithField("tenant_id", tenantID).Error("Failed to save display order")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_SAVE_FAILED",
				"message": "Failed to save display order",
			},
		})
		return
	}

	if h.events != nil {
		_ = h.events.PublishOrderSaved(tenantID, len(entries), false, "", c.GetString("user_id"))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Display order saved"})
}

// SaveCategoryOrder saves the product order of one category without touching
// any other category's saved entry (edit-mode save).
// PUT /api/v1/merchandising/order/categories/:id
func (h *LayoutHandler) SaveCategoryOrder(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CATEGORY_ID",
				"message": "Category id must be a valid UUID",
			},
		})
		return
	}

	var req models.ScopedOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request format: " + err.Error(),
			},
		})
		return
	}

	entry := ordering.OrderEntry{
		CategoryID: ordering.EntityRef{ID: categoryID},
		Products:   make([]ordering.ProductOrder, 0, len(req.Products)),
	}
	for _, slot := range req.Products {
		entry.Products = append(entry.Products, ordering.ProductOrder{
			ProductID:    ordering.EntityRef{ID: slot.ProductID},
			SerialNumber: slot.SerialNumber,
		})
	}

	existing, err := h.orders.GetEntries(tenantID)
	if err != nil {
		h.logger.WithError(err).WithField("tenant_id", tenantID).Error("Failed to fetch persisted order")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_FETCH_FAILED",
				"message": "Failed to load saved display order",
			},
		})
		return
	}

	merged := ordering.MergeScoped(existing, entry)
	for _, m := range merged {
		if m.CategoryID.ID != categoryID {
			continue
		}
		if err := h.orders.UpsertCategory(tenantID, m); err != nil {
			h.logger.WithError(err).WithFields(logrus.Fields{
				"tenant_id":   tenantID,
				"category_id": categoryID,
			}).Error("Failed to save category display order")
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ORDER_SAVE_FAILED",
					"message": "Failed to save category display order",
				},
			})
			return
		}
		break
	}

	if h.events != nil {
		_ = h.events.PublishOrderSaved(tenantID, 1, true, categoryID.String(), c.GetString("user_id"))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category display order saved"})
}

// ResetOrder deletes the tenant's persisted order entirely; the next read
// falls back to catalog-natural order.
// DELETE /api/v1/merchandising/order
func (h *LayoutHandler) ResetOrder(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	if err := h.orders.DeleteAll(tenantID); err != nil {
		h.logger.WithError(err).WithField("tenant_id", tenantID).Error("Failed to reset display order")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_RESET_FAILED",
				"message": "Failed to reset display order",
			},
		})
		return
	}

	if h.events != nil {
		_ = h.events.PublishOrderReset(tenantID, c.GetString("user_id"))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Display order reset to catalog defaults"})
}
