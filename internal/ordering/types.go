package ordering

import (
	"encoding/json"

	"github.com/google/uuid"
)

// LayoutState reports whether a layout reflects a saved customization or the
// catalog's natural order.
type LayoutState string

const (
	StateDefault LayoutState = "default"
	StateCustom  LayoutState = "custom"
)

// ProductView is a product as presented on the merchandising page, carrying
// its 1-based display position within its owning category.
type ProductView struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Code       string    `json:"code"`
	Price      float64   `json:"price"`
	OfferPrice *float64  `json:"offerPrice,omitempty"`
	Images     []string  `json:"images,omitempty"`
	Position   int       `json:"position"`
}

// CategoryView is a category with its ordered products.
type CategoryView struct {
	ID       uuid.UUID     `json:"id"`
	Name     string        `json:"name"`
	Position int           `json:"position"`
	Products []ProductView `json:"products"`
}

// Layout is the fully reconciled view model: exactly the categories and
// products currently in the catalog, in display order.
type Layout struct {
	Categories []CategoryView `json:"categories"`
	State      LayoutState    `json:"state"`
}

// CatalogProduct is a product as reported by the catalog service, in catalog
// order and without any display positions.
type CatalogProduct struct {
	ID         uuid.UUID
	Name       string
	Code       string
	Price      float64
	OfferPrice *float64
	Images     []string
}

// CatalogCategory is a category with nested products as reported by the
// catalog service.
type CatalogCategory struct {
	ID       uuid.UUID
	Name     string
	Products []CatalogProduct
}

// DragItem identifies the entity involved in a drag gesture. It is a closed
// union over CategoryDrag and ProductDrag so move handling can type-switch
// instead of comparing kind strings.
type DragItem interface {
	dragItem()
}

// CategoryDrag identifies a dragged (or drop-target) category.
type CategoryDrag struct {
	CategoryID uuid.UUID
}

// ProductDrag identifies a dragged (or drop-target) product together with the
// category it currently lives in.
type ProductDrag struct {
	ProductID  uuid.UUID
	CategoryID uuid.UUID
}

func (CategoryDrag) dragItem() {}
func (ProductDrag) dragItem()  {}

// EntityRef is a category or product identifier as stored in a persisted
// order. Older records embed the referenced object instead of the bare id, so
// unmarshalling accepts either a plain id string or an object with an "id"
// field. Marshalling always emits the bare id.
type EntityRef struct {
	ID uuid.UUID
}

func (r EntityRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

func (r *EntityRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		id, err := uuid.Parse(s)
		if err != nil {
			return err
		}
		r.ID = id
		return nil
	}
	var obj struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.ID = obj.ID
	return nil
}

// ProductOrder is one product's slot in a persisted order entry.
type ProductOrder struct {
	ProductID    EntityRef `json:"productId"`
	SerialNumber int       `json:"serialNumber"`
}

// OrderEntry is the persisted ordering of one category and its products. A
// persisted order is a list of entries; an empty list means no customization
// has been saved.
type OrderEntry struct {
	CategoryID   EntityRef      `json:"categoryId"`
	SerialNumber int            `json:"serialNumber"`
	Products     []ProductOrder `json:"products"`
}
