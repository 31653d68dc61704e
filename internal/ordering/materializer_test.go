package ordering

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// Helper to create a catalog category with n products
func testCategory(name string, productNames ...string) CatalogCategory {
	cat := CatalogCategory{
		ID:   uuid.New(),
		Name: name,
	}
	for i, pn := range productNames {
		cat.Products = append(cat.Products, CatalogProduct{
			ID:    uuid.New(),
			Name:  pn,
			Code:  pn + "-code",
			Price: float64(100 * (i + 1)),
		})
	}
	return cat
}

func categoryIDs(l Layout) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(l.Categories))
	for _, c := range l.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

func productIDs(c CategoryView) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Products))
	for _, p := range c.Products {
		ids = append(ids, p.ID)
	}
	return ids
}

// ===========================================
// Build Tests
// ===========================================

func TestBuild_NoSavedOrder_DefaultState(t *testing.T) {
	a := testCategory("A", "a1", "a2")
	b := testCategory("B", "b1")
	catalog := []CatalogCategory{a, b}

	layout := Build(catalog, nil)

	assert.Equal(t, StateDefault, layout.State)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, categoryIDs(layout))
	assert.Equal(t, 1, layout.Categories[0].Position)
	assert.Equal(t, 2, layout.Categories[1].Position)
	assert.Equal(t, 1, layout.Categories[0].Products[0].Position)
	assert.Equal(t, 2, layout.Categories[0].Products[1].Position)
}

func TestBuild_SavedOrder_CustomState(t *testing.T) {
	a := testCategory("A")
	b := testCategory("B")
	catalog := []CatalogCategory{a, b}

	saved := []OrderEntry{
		{CategoryID: EntityRef{ID: b.ID}, SerialNumber: 1},
		{CategoryID: EntityRef{ID: a.ID}, SerialNumber: 2},
	}

	layout := Build(catalog, saved)

	assert.Equal(t, StateCustom, layout.State)
	assert.Equal(t, []uuid.UUID{b.ID, a.ID}, categoryIDs(layout))
	assert.Equal(t, 1, layout.Categories[0].Position)
	assert.Equal(t, 2, layout.Categories[1].Position)
}

func TestBuild_Idempotent(t *testing.T) {
	a := testCategory("A", "a1", "a2", "a3")
	b := testCategory("B", "b1")
	catalog := []CatalogCategory{a, b}

	saved := []OrderEntry{
		{
			CategoryID:   EntityRef{ID: b.ID},
			SerialNumber: 1,
			Products:     []ProductOrder{{ProductID: EntityRef{ID: b.Products[0].ID}, SerialNumber: 1}},
		},
		{CategoryID: EntityRef{ID: a.ID}, SerialNumber: 2},
	}

	first := Build(catalog, saved)
	second := Build(catalog, saved)

	assert.Equal(t, first, second)
}

func TestBuild_OrphanCategoryDropped(t *testing.T) {
	a := testCategory("A")
	catalog := []CatalogCategory{a}

	deletedID := uuid.New()
	saved := []OrderEntry{
		{CategoryID: EntityRef{ID: deletedID}, SerialNumber: 1},
		{CategoryID: EntityRef{ID: a.ID}, SerialNumber: 2},
	}

	layout := Build(catalog, saved)

	assert.Equal(t, []uuid.UUID{a.ID}, categoryIDs(layout))
	assert.Equal(t, 1, layout.Categories[0].Position)
}

func TestBuild_NewCategoryAppended(t *testing.T) {
	a := testCategory("A")
	b := testCategory("B")
	c := testCategory("C")
	catalog := []CatalogCategory{a, b, c}

	saved := []OrderEntry{
		{CategoryID: EntityRef{ID: b.ID}, SerialNumber: 1},
	}

	layout := Build(catalog, saved)

	// B leads, then A and C in catalog order with trailing positions
	assert.Equal(t, []uuid.UUID{b.ID, a.ID, c.ID}, categoryIDs(layout))
	assert.Equal(t, []int{1, 2, 3}, []int{
		layout.Categories[0].Position,
		layout.Categories[1].Position,
		layout.Categories[2].Position,
	})
}

func TestBuild_MembershipMatchesCatalogExactly(t *testing.T) {
	a := testCategory("A", "a1", "a2")
	b := testCategory("B", "b1", "b2", "b3")
	catalog := []CatalogCategory{a, b}

	saved := []OrderEntry{
		{
			CategoryID:   EntityRef{ID: uuid.New()}, // orphan
			SerialNumber: 1,
		},
		{
			CategoryID:   EntityRef{ID: b.ID},
			SerialNumber: 2,
			Products: []ProductOrder{
				{ProductID: EntityRef{ID: uuid.New()}, SerialNumber: 1}, // orphan product
				{ProductID: EntityRef{ID: b.Products[2].ID}, SerialNumber: 2},
			},
		},
	}

	layout := Build(catalog, saved)

	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, categoryIDs(layout))
	assert.ElementsMatch(t, []uuid.UUID{b.Products[0].ID, b.Products[1].ID, b.Products[2].ID},
		productIDs(layout.Categories[0]))
}

func TestBuild_ProductOrderWithinCategory(t *testing.T) {
	a := testCategory("A", "a1", "a2", "a3")
	catalog := []CatalogCategory{a}

	// saved order lists a3 first, omits a1 and a2
	saved := []OrderEntry{
		{
			CategoryID:   EntityRef{ID: a.ID},
			SerialNumber: 1,
			Products: []ProductOrder{
				{ProductID: EntityRef{ID: a.Products[2].ID}, SerialNumber: 1},
			},
		},
	}

	layout := Build(catalog, saved)

	want := []uuid.UUID{a.Products[2].ID, a.Products[0].ID, a.Products[1].ID}
	assert.Equal(t, want, productIDs(layout.Categories[0]))
	assert.Equal(t, []int{1, 2, 3}, []int{
		layout.Categories[0].Products[0].Position,
		layout.Categories[0].Products[1].Position,
		layout.Categories[0].Products[2].Position,
	})
}

// ===========================================
// BuildScoped Tests
// ===========================================

func TestBuildScoped_OnlyScopedCategoryPresent(t *testing.T) {
	a := testCategory("A", "a1")
	b := testCategory("B", "b1", "b2")
	catalog := []CatalogCategory{a, b}

	saved := []OrderEntry{
		{CategoryID: EntityRef{ID: a.ID}, SerialNumber: 1},
		{
			CategoryID:   EntityRef{ID: b.ID},
			SerialNumber: 2,
			Products: []ProductOrder{
				{ProductID: EntityRef{ID: b.Products[1].ID}, SerialNumber: 1},
				{ProductID: EntityRef{ID: b.Products[0].ID}, SerialNumber: 2},
			},
		},
	}

	layout := BuildScoped(catalog, saved, b.ID)

	assert.Equal(t, StateCustom, layout.State)
	assert.Equal(t, []uuid.UUID{b.ID}, categoryIDs(layout))
	assert.Equal(t, []uuid.UUID{b.Products[1].ID, b.Products[0].ID}, productIDs(layout.Categories[0]))
}

func TestBuildScoped_UncustomizedCategoryIsDefault(t *testing.T) {
	a := testCategory("A", "a1")
	b := testCategory("B")
	catalog := []CatalogCategory{a, b}

	saved := []OrderEntry{
		{CategoryID: EntityRef{ID: b.ID}, SerialNumber: 1},
	}

	layout := BuildScoped(catalog, saved, a.ID)

	assert.Equal(t, StateDefault, layout.State)
	assert.Equal(t, []uuid.UUID{a.ID}, categoryIDs(layout))
}

func TestBuildScoped_UnknownCategory(t *testing.T) {
	catalog := []CatalogCategory{testCategory("A")}

	layout := BuildScoped(catalog, nil, uuid.New())

	assert.Empty(t, layout.Categories)
}

// ===========================================
// Flatten Tests
// ===========================================

func TestFlatten_RoundTripsThroughBuild(t *testing.T) {
	a := testCategory("A", "a1", "a2")
	b := testCategory("B", "b1")
	catalog := []CatalogCategory{a, b}

	saved := []OrderEntry{
		{CategoryID: EntityRef{ID: b.ID}, SerialNumber: 1},
		{CategoryID: EntityRef{ID: a.ID}, SerialNumber: 2},
	}

	layout := Build(catalog, saved)
	entries := Flatten(layout)

	assert.Len(t, entries, 2)
	assert.Equal(t, b.ID, entries[0].CategoryID.ID)
	assert.Equal(t, 1, entries[0].SerialNumber)
	assert.Equal(t, a.ID, entries[1].CategoryID.ID)
	assert.Equal(t, 2, entries[1].SerialNumber)
	assert.Len(t, entries[1].Products, 2)

	rebuilt := Build(catalog, entries)
	assert.Equal(t, layout.Categories, rebuilt.Categories)
}

// ===========================================
// MergeScoped Tests
// ===========================================

func TestMergeScoped_ReplacesOnlyEditedEntry(t *testing.T) {
	x := uuid.New()
	y := uuid.New()
	p := uuid.New()

	existing := []OrderEntry{
		{CategoryID: EntityRef{ID: y}, SerialNumber: 1, Products: []ProductOrder{
			{ProductID: EntityRef{ID: uuid.New()}, SerialNumber: 1},
		}},
		{CategoryID: EntityRef{ID: x}, SerialNumber: 2},
	}

	edited := OrderEntry{
		CategoryID: EntityRef{ID: x},
		Products:   []ProductOrder{{ProductID: EntityRef{ID: p}, SerialNumber: 1}},
	}

	merged := MergeScoped(existing, edited)

	assert.Len(t, merged, 2)
	// Y's entry is untouched
	assert.Equal(t, existing[0], merged[0])
	// X keeps its stored serial number but carries the new products
	assert.Equal(t, x, merged[1].CategoryID.ID)
	assert.Equal(t, 2, merged[1].SerialNumber)
	assert.Equal(t, p, merged[1].Products[0].ProductID.ID)
}

func TestMergeScoped_AppendsUncustomizedCategory(t *testing.T) {
	y := uuid.New()
	x := uuid.New()

	existing := []OrderEntry{
		{CategoryID: EntityRef{ID: y}, SerialNumber: 3},
	}

	merged := MergeScoped(existing, OrderEntry{CategoryID: EntityRef{ID: x}})

	assert.Len(t, merged, 2)
	assert.Equal(t, existing[0], merged[0])
	assert.Equal(t, x, merged[1].CategoryID.ID)
	assert.Equal(t, 4, merged[1].SerialNumber)
}

func TestMergeScoped_EmptyExisting(t *testing.T) {
	x := uuid.New()

	merged := MergeScoped(nil, OrderEntry{CategoryID: EntityRef{ID: x}})

	assert.Len(t, merged, 1)
	assert.Equal(t, 1, merged[0].SerialNumber)
}

// ===========================================
// EntityRef Normalization Tests
// ===========================================

func TestOrderEntry_DecodesBareAndEmbeddedIDs(t *testing.T) {
	catID := uuid.New()
	prodID := uuid.New()

	raw := `{
		"categoryId": {"id": "` + catID.String() + `", "name": "Watches"},
		"serialNumber": 1,
		"products": [
			{"productId": "` + prodID.String() + `", "serialNumber": 1}
		]
	}`

	var entry OrderEntry
	err := json.Unmarshal([]byte(raw), &entry)

	assert.NoError(t, err)
	assert.Equal(t, catID, entry.CategoryID.ID)
	assert.Equal(t, prodID, entry.Products[0].ProductID.ID)

	// marshalling always emits the bare id
	out, err := json.Marshal(entry)
	assert.NoError(t, err)
	assert.Contains(t, string(out), `"categoryId":"`+catID.String()+`"`)
}

func TestEntityRef_RejectsGarbage(t *testing.T) {
	var ref EntityRef
	err := json.Unmarshal([]byte(`"not-a-uuid"`), &ref)
	assert.Error(t, err)
}
