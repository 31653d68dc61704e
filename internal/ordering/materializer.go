package ordering

import (
	"sort"

	"github.com/google/uuid"
)

// Build reconciles the live catalog against the persisted order into a fully
// materialized layout. With no persisted entries the result is the catalog in
// natural order (default state). Otherwise entries are applied by stored
// serial number, entries referencing entities no longer in the catalog are
// dropped, and catalog entities missing from the persisted order are appended
// after the ordered ones in catalog order. Positions come out dense 1..N on
// every sibling list, so building twice from the same inputs is idempotent.
func Build(catalog []CatalogCategory, saved []OrderEntry) Layout {
	if len(saved) == 0 {
		return defaultLayout(catalog)
	}

	byID := make(map[uuid.UUID]*CatalogCategory, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}

	entries := make([]OrderEntry, len(saved))
	copy(entries, saved)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SerialNumber < entries[j].SerialNumber
	})

	layout := Layout{
		State:      StateCustom,
		Categories: make([]CategoryView, 0, len(catalog)),
	}
	seen := make(map[uuid.UUID]bool, len(catalog))
	for _, entry := range entries {
		cat, ok := byID[entry.CategoryID.ID]
		if !ok {
			// orphan: the category was deleted since the order was saved
			continue
		}
		if seen[cat.ID] {
			continue
		}
		seen[cat.ID] = true
		layout.Categories = append(layout.Categories, buildCategory(cat, entry.Products))
	}
	for i := range catalog {
		if seen[catalog[i].ID] {
			continue
		}
		layout.Categories = append(layout.Categories, buildCategory(&catalog[i], nil))
	}
	renumberCategories(layout.Categories)
	return layout
}

// BuildScoped performs the same reconciliation restricted to a single
// category, for the edit-mode view. Only that category appears in the result;
// the rest of the persisted order is not consulted. The zero Layout is
// returned when the category is not in the catalog.
func BuildScoped(catalog []CatalogCategory, saved []OrderEntry, categoryID uuid.UUID) Layout {
	var scopedCatalog []CatalogCategory
	for i := range catalog {
		if catalog[i].ID == categoryID {
			scopedCatalog = catalog[i : i+1]
			break
		}
	}
	if scopedCatalog == nil {
		return Layout{}
	}
	var scopedSaved []OrderEntry
	for _, entry := range saved {
		if entry.CategoryID.ID == categoryID {
			scopedSaved = []OrderEntry{entry}
			break
		}
	}
	return Build(scopedCatalog, scopedSaved)
}

// Flatten converts a layout back into the persisted shape for a wholesale
// save.
func Flatten(l Layout) []OrderEntry {
	entries := make([]OrderEntry, 0, len(l.Categories))
	for _, cat := range l.Categories {
		entry := OrderEntry{
			CategoryID:   EntityRef{ID: cat.ID},
			SerialNumber: cat.Position,
			Products:     make([]ProductOrder, 0, len(cat.Products)),
		}
		for _, p := range cat.Products {
			entry.Products = append(entry.Products, ProductOrder{
				ProductID:    EntityRef{ID: p.ID},
				SerialNumber: p.Position,
			})
		}
		entries = append(entries, entry)
	}
	return entries
}

// MergeScoped merges a single category's entry into an existing persisted
// order for the scoped (edit-mode) save. The matching entry is replaced in
// place, keeping its stored serial number so editing one category's products
// never changes that category's rank among the others; a category not yet
// customized is appended with a trailing serial number. All other entries are
// returned untouched.
func MergeScoped(existing []OrderEntry, entry OrderEntry) []OrderEntry {
	merged := make([]OrderEntry, len(existing))
	copy(merged, existing)

	maxSerial := 0
	for i := range merged {
		if merged[i].SerialNumber > maxSerial {
			maxSerial = merged[i].SerialNumber
		}
		if merged[i].CategoryID.ID == entry.CategoryID.ID {
			entry.SerialNumber = merged[i].SerialNumber
			merged[i] = entry
			return merged
		}
	}
	entry.SerialNumber = maxSerial + 1
	return append(merged, entry)
}

func defaultLayout(catalog []CatalogCategory) Layout {
	layout := Layout{
		State:      StateDefault,
		Categories: make([]CategoryView, 0, len(catalog)),
	}
	for i := range catalog {
		layout.Categories = append(layout.Categories, buildCategory(&catalog[i], nil))
	}
	renumberCategories(layout.Categories)
	return layout
}

// buildCategory orders cat's products by the saved slots, dropping slots
// whose product no longer exists and appending catalog products the saved
// order does not mention.
func buildCategory(cat *CatalogCategory, saved []ProductOrder) CategoryView {
	view := CategoryView{
		ID:       cat.ID,
		Name:     cat.Name,
		Products: make([]ProductView, 0, len(cat.Products)),
	}

	byID := make(map[uuid.UUID]*CatalogProduct, len(cat.Products))
	for i := range cat.Products {
		byID[cat.Products[i].ID] = &cat.Products[i]
	}

	slots := make([]ProductOrder, len(saved))
	copy(slots, saved)
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].SerialNumber < slots[j].SerialNumber
	})

	seen := make(map[uuid.UUID]bool, len(cat.Products))
	for _, slot := range slots {
		p, ok := byID[slot.ProductID.ID]
		if !ok {
			continue
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		view.Products = append(view.Products, productView(p))
	}
	for i := range cat.Products {
		if seen[cat.Products[i].ID] {
			continue
		}
		view.Products = append(view.Products, productView(&cat.Products[i]))
	}
	renumberProducts(view.Products)
	return view
}

func productView(p *CatalogProduct) ProductView {
	return ProductView{
		ID:         p.ID,
		Name:       p.Name,
		Code:       p.Code,
		Price:      p.Price,
		OfferPrice: p.OfferPrice,
		Images:     p.Images,
	}
}
