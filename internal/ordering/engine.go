package ordering

import (
	"sort"

	"github.com/google/uuid"
)

// The move functions are total over the in-memory layout: unknown ids,
// self-drops and cross-kind targets leave the layout untouched. Malformed
// input only occurs from stale view state, which the next refresh corrects.

func categoryIndex(l *Layout, id uuid.UUID) int {
	for i := range l.Categories {
		if l.Categories[i].ID == id {
			return i
		}
	}
	return -1
}

func productIndex(c *CategoryView, id uuid.UUID) int {
	for i := range c.Products {
		if c.Products[i].ID == id {
			return i
		}
	}
	return -1
}

func renumberCategories(cats []CategoryView) {
	for i := range cats {
		cats[i].Position = i + 1
	}
}

func renumberProducts(products []ProductView) {
	for i := range products {
		products[i].Position = i + 1
	}
}

// MoveCategory removes the source category from its slot and re-inserts it at
// the slot the target occupied before the removal, then renumbers all
// categories 1..N.
func MoveCategory(l *Layout, srcID, dstID uuid.UUID) {
	if srcID == dstID {
		return
	}
	src := categoryIndex(l, srcID)
	dst := categoryIndex(l, dstID)
	if src < 0 || dst < 0 {
		return
	}

	moved := l.Categories[src]
	l.Categories = append(l.Categories[:src], l.Categories[src+1:]...)
	if dst > len(l.Categories) {
		dst = len(l.Categories)
	}
	l.Categories = append(l.Categories, CategoryView{})
	copy(l.Categories[dst+1:], l.Categories[dst:])
	l.Categories[dst] = moved

	renumberCategories(l.Categories)
}

// MoveProduct removes the source product from its category's list and inserts
// it at the slot the target product occupied before the removal. Works within
// a single category or across two; both affected lists are renumbered 1..N.
func MoveProduct(l *Layout, src, dst ProductDrag) {
	if src.ProductID == dst.ProductID {
		return
	}
	srcCat := categoryIndex(l, src.CategoryID)
	dstCat := categoryIndex(l, dst.CategoryID)
	if srcCat < 0 || dstCat < 0 {
		return
	}
	srcIdx := productIndex(&l.Categories[srcCat], src.ProductID)
	dstIdx := productIndex(&l.Categories[dstCat], dst.ProductID)
	if srcIdx < 0 || dstIdx < 0 {
		return
	}

	moved := l.Categories[srcCat].Products[srcIdx]
	l.Categories[srcCat].Products = append(
		l.Categories[srcCat].Products[:srcIdx],
		l.Categories[srcCat].Products[srcIdx+1:]...,
	)

	target := &l.Categories[dstCat].Products
	if dstIdx > len(*target) {
		dstIdx = len(*target)
	}
	*target = append(*target, ProductView{})
	copy((*target)[dstIdx+1:], (*target)[dstIdx:])
	(*target)[dstIdx] = moved

	renumberProducts(l.Categories[srcCat].Products)
	if srcCat != dstCat {
		renumberProducts(l.Categories[dstCat].Products)
	}
}

// SetCategoryPosition overwrites a single category's position number and
// re-settles the category list around it with a stable sort. Unlike the move
// functions it does not renumber, so a typed rank like 99 sorts last while
// everything else keeps its relative order.
func SetCategoryPosition(l *Layout, id uuid.UUID, position int) {
	idx := categoryIndex(l, id)
	if idx < 0 {
		return
	}
	l.Categories[idx].Position = position
	sort.SliceStable(l.Categories, func(i, j int) bool {
		return l.Categories[i].Position < l.Categories[j].Position
	})
}

// SetProductPosition overwrites a single product's position number within its
// category and stably re-sorts that category's product list.
func SetProductPosition(l *Layout, categoryID, productID uuid.UUID, position int) {
	catIdx := categoryIndex(l, categoryID)
	if catIdx < 0 {
		return
	}
	cat := &l.Categories[catIdx]
	idx := productIndex(cat, productID)
	if idx < 0 {
		return
	}
	cat.Products[idx].Position = position
	sort.SliceStable(cat.Products, func(i, j int) bool {
		return cat.Products[i].Position < cat.Products[j].Position
	})
}
