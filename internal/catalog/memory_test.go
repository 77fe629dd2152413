package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
)

func TestMemoryStoreFilters(t *testing.T) {
	s := NewMemoryStore()
	s.Seed("products", []internal.CatalogRecord{
		{ID: 10, SupplierID: 1, Name: "Portátil HP ProBook 450 G9"},
		{ID: 11, SupplierID: 2, Name: "Portátil HP ProBook 450 G9"},
		{ID: 12, SupplierID: 1, Name: "Rato sem fios Logitech"},
	})

	rows, err := s.Query(t.Context(), "products", internal.Query{Filters: []internal.Filter{
		{Column: internal.ColSupplierID, Op: internal.FilterEq, Value: int64(1)},
		{Column: internal.ColName, Op: internal.FilterILike, Value: "hp probook"},
	}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(10), rows[0].ID)

	rows, err = s.Query(t.Context(), "products", internal.Query{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = s.Query(t.Context(), "products", internal.Query{Filters: []internal.Filter{{Column: "nope", Op: internal.FilterEq, Value: 1}}})
	assert.Error(t, err)
}

func TestMemoryStoreNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	s.Seed("products", []internal.CatalogRecord{
		{ID: 1, SupplierID: 4, Name: "Toner HP 85A"},
		{ID: 2, SupplierID: 5, Name: "Rato Logitech"},
		{ID: 3, SupplierID: 4, Name: "Impressora Térmica Epson"},
	})

	rows, err := s.Query(t.Context(), "products", internal.Query{
		Filters:     []internal.Filter{{Column: internal.ColSupplierID, Op: internal.FilterEq, Value: int64(4)}},
		NewestFirst: true,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(3), rows[0].ID)
	assert.Equal(t, int64(1), rows[1].ID)

	rows, err = s.Query(t.Context(), "products", internal.Query{Filters: []internal.Filter{
		{Column: internal.ColName, Op: internal.FilterILike, Value: "IMPRESSORA TÉRMICA"},
	}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestMemoryStoreInsertContinuesSeededIDs(t *testing.T) {
	s := NewMemoryStore()
	s.Seed("products", []internal.CatalogRecord{{ID: 41, SupplierID: 1, Name: "a"}})

	saved, err := s.Insert(t.Context(), "products", internal.CatalogRecord{SupplierID: 1, Name: "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), saved.ID)
	assert.Equal(t, 2, s.Len("products"))
	assert.Equal(t, 0, s.Len("other"))
}
