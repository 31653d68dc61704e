package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DisplayOrder is one category's saved merchandising order for a tenant: the
// category's rank plus the ordered product slots as JSONB. One row per
// (tenant, category) so a scoped save touches exactly one row and leaves the
// other categories' stored entries byte-for-byte unchanged.
type DisplayOrder struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID   string         `json:"tenantId" gorm:"not null;index;uniqueIndex:idx_tenant_category"`
	CategoryID uuid.UUID      `json:"categoryId" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_category"`
	Position   int            `json:"position" gorm:"not null;default:1"`
	Products   datatypes.JSON `json:"products" gorm:"type:jsonb"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// TableName returns the table name for the DisplayOrder model
func (DisplayOrder) TableName() string {
	return "display_orders"
}

// DragRefKind discriminates what a DragRef points at.
type DragRefKind string

const (
	DragKindCategory DragRefKind = "category"
	DragKindProduct  DragRefKind = "product"
)

// DragRef identifies one end of a drag gesture in a move request. ProductID
// is required when Kind is "product"; CategoryID is always required (for a
// product it names the category the product currently lives in).
type DragRef struct {
	Kind       DragRefKind `json:"kind" binding:"required"`
	CategoryID uuid.UUID   `json:"categoryId" binding:"required"`
	ProductID  *uuid.UUID  `json:"productId,omitempty"`
}

// MoveRequest applies one drag-and-drop gesture to the current layout.
type MoveRequest struct {
	Source DragRef `json:"source" binding:"required"`
	Target DragRef `json:"target" binding:"required"`
}

// ScopedOrderRequest is the body of an edit-mode save: the ordered product
// slots for the one category being edited. An empty list is valid (the
// category currently has no products).
type ScopedOrderRequest struct {
	Products []ScopedProductSlot `json:"products"`
}

// ScopedProductSlot is one product's rank in a scoped save.
type ScopedProductSlot struct {
	ProductID    uuid.UUID `json:"productId" binding:"required"`
	SerialNumber int       `json:"serialNumber" binding:"required"`
}
