package handlers

import (
	"fmt"

	"merchandising-service/internal/clients"
	"merchandising-service/internal/models"
	"merchandising-service/internal/ordering"

	"github.com/google/uuid"
)

// toOrderingCatalog converts the catalog service's DTOs into the ordering
// package's catalog input. Entries with unparsable ids are skipped: stale
// catalog data is a normal condition and the next refresh corrects it.
func toOrderingCatalog(categories []clients.CatalogCategory) []ordering.CatalogCategory {
	catalog := make([]ordering.CatalogCategory, 0, len(categories))
	for _, c := range categories {
		categoryID, err := uuid.Parse(c.ID)
		if err != nil {
			continue
		}
		cat := ordering.CatalogCategory{
			ID:       categoryID,
			Name:     c.Name,
			Products: make([]ordering.CatalogProduct, 0, len(c.Products)),
		}
		for _, p := range c.Products {
			productID, err := uuid.Parse(p.ID)
			if err != nil {
				continue
			}
			cat.Products = append(cat.Products, ordering.CatalogProduct{
				ID:         productID,
				Name:       p.Name,
				Code:       p.Code,
				Price:      p.Price,
				OfferPrice: p.OfferPrice,
				Images:     p.Images,
			})
		}
		catalog = append(catalog, cat)
	}
	return catalog
}

// toDragItem converts a request DragRef into the ordering package's tagged
// union.
func toDragItem(ref models.DragRef) (ordering.DragItem, error) {
	switch ref.Kind {
	case models.DragKindCategory:
		return ordering.CategoryDrag{CategoryID: ref.CategoryID}, nil
	case models.DragKindProduct:
		if ref.ProductID == nil {
			return nil, fmt.Errorf("productId is required when kind is %q", models.DragKindProduct)
		}
		return ordering.ProductDrag{ProductID: *ref.ProductID, CategoryID: ref.CategoryID}, nil
	default:
		return nil, fmt.Errorf("unknown drag kind %q", ref.Kind)
	}
}
