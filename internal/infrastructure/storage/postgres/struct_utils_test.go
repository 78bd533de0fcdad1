package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktrack/internal/core/entity"
	"stocktrack/internal/core/id"
)

type testCatalogEntity struct {
	entity.Catalog

	SKU      string  `db:"sku"`
	Barcode  *string `db:"barcode"`
	Internal string  `db:"-"`
	NoTag    string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[testCatalogEntity]()

	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "deletion_mark")
	assert.Contains(t, cols, "version")
	assert.Contains(t, cols, "code")
	assert.Contains(t, cols, "name")
	assert.Contains(t, cols, "sku")
	assert.Contains(t, cols, "barcode")
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "Internal")
	assert.NotContains(t, cols, "NoTag")
}

func TestExtractDBColumns_PointerType(t *testing.T) {
	assert.Equal(t, ExtractDBColumns[testCatalogEntity](), ExtractDBColumns[*testCatalogEntity]())
}

func TestStructToMap(t *testing.T) {
	e := testCatalogEntity{
		Catalog:  entity.NewCatalog("PR-001", "Test product"),
		SKU:      "SKU-1",
		Internal: "hidden",
		NoTag:    "hidden",
	}

	m := StructToMap(&e)
	require.NotNil(t, m)

	assert.Equal(t, "PR-001", m["code"])
	assert.Equal(t, "Test product", m["name"])
	assert.Equal(t, "SKU-1", m["sku"])
	assert.Equal(t, e.ID, m["id"])
	assert.Equal(t, 1, m["version"])

	// Untagged and ignored fields never leak into SQL
	_, ok := m["Internal"]
	assert.False(t, ok)
	_, ok = m["NoTag"]
	assert.False(t, ok)

	// Nil pointer columns survive as nil values
	assert.Nil(t, m["barcode"])
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("nope"))
	assert.Nil(t, StructToMap(id.New()))
}
