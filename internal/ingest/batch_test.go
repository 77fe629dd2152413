package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/catalog"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/logger"
)

func newTestIngestor(store CatalogStore) *BatchIngestor {
	return NewBatchIngestor(store, "products", logger.NewNop(), WithClock(fixedClock(1760486400123)))
}

func TestIngestEmptyBatchTouchesNothing(t *testing.T) {
	store := &fakeStore{}
	summary, err := newTestIngestor(store).Ingest(t.Context(), nil, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.SavedCount)
	assert.Equal(t, 0, summary.ErrorCount)
	assert.NotNil(t, summary.Details)
	assert.Empty(t, summary.Details)
	assert.Empty(t, store.queries)
	assert.Empty(t, store.inserted)
}

func TestIngestRejectsMissingSupplier(t *testing.T) {
	_, err := newTestIngestor(&fakeStore{}).Ingest(t.Context(), []internal.DiscoveredProduct{product("x", "1")}, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidSupplier)
}

func TestIngestExistingProductIsNotInserted(t *testing.T) {
	store := catalog.NewMemoryStore()
	store.Seed("products", []internal.CatalogRecord{{ID: 77, SupplierID: 2, Name: "Toner HP 85A Original"}})

	summary, err := newTestIngestor(store).Ingest(t.Context(), []internal.DiscoveredProduct{product("Toner HP 85A", "15.000,00")}, 2, 4)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SavedCount)
	assert.Equal(t, 0, summary.InsertedCount())
	assert.Equal(t, 1, store.Len("products"))

	require.Len(t, summary.Details, 1)
	d := summary.Details[0]
	assert.Equal(t, internal.StatusExists, d.Status)
	require.NotNil(t, d.ID)
	assert.Equal(t, int64(77), *d.ID)
	assert.Nil(t, d.Price)
}

func TestIngestNewProductReportsNormalizedPrice(t *testing.T) {
	store := &fakeStore{}
	summary, err := newTestIngestor(store).Ingest(t.Context(), []internal.DiscoveredProduct{product(`HP ProBook 15.6" i5`, "AOA 2.713.791,77")}, 9, 0)
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	rec := store.inserted[0]
	assert.Equal(t, 2713791.77, rec.Price)
	assert.Equal(t, DefaultOperatorID, rec.CreatedBy)
	assert.Equal(t, DefaultOperatorID, rec.UpdatedBy)
	assert.Equal(t, internal.OriginExternal, rec.Origin)

	d := summary.Details[0]
	assert.Equal(t, internal.StatusSaved, d.Status)
	require.NotNil(t, d.Price)
	assert.Equal(t, 2713791.77, *d.Price)
	require.NotNil(t, d.ID)
	assert.Equal(t, int64(1), *d.ID)
}

func TestIngestContinuesAfterInsertFailure(t *testing.T) {
	store := &fakeStore{}
	store.insertFunc = func(_ context.Context, _ string, r internal.CatalogRecord) (internal.CatalogRecord, error) {
		if r.Name == "B" {
			return internal.CatalogRecord{}, errors.New("unique violation")
		}
		r.ID = int64(100 + len(store.inserted))
		return r, nil
	}

	items := []internal.DiscoveredProduct{product("A", "1"), product("B", "2"), product("C", "3")}
	summary, err := newTestIngestor(store).Ingest(t.Context(), items, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SavedCount)
	assert.Equal(t, 1, summary.ErrorCount)
	assert.Equal(t, 3, summary.Processed())
	require.Len(t, summary.Details, 3)

	assert.Equal(t, "A", summary.Details[0].ProductName)
	assert.Equal(t, internal.StatusSaved, summary.Details[0].Status)
	assert.Equal(t, internal.StatusError, summary.Details[1].Status)
	assert.Equal(t, "unique violation", summary.Details[1].ErrorMessage)
	assert.Nil(t, summary.Details[1].ID)
	assert.Equal(t, internal.StatusSaved, summary.Details[2].Status)
	assert.Equal(t, int64(103), *summary.Details[2].ID)
}

func TestIngestInsertsWhenDuplicateLookupFails(t *testing.T) {
	store := &fakeStore{queryFunc: func(context.Context, string, internal.Query) ([]internal.CatalogRecord, error) {
		return nil, errors.New("connection reset by peer")
	}}

	summary, err := newTestIngestor(store).Ingest(t.Context(), []internal.DiscoveredProduct{product("Toner HP 85A", "15.000,00")}, 2, 1)
	require.NoError(t, err)

	require.Len(t, store.queries, 1)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, 1, summary.SavedCount)
	assert.Equal(t, 0, summary.ErrorCount)
	assert.Equal(t, internal.StatusSaved, summary.Details[0].Status)
	require.NotNil(t, summary.Details[0].ID)
	assert.Equal(t, int64(1), *summary.Details[0].ID)
}

func TestIngestTruncatesLongModel(t *testing.T) {
	store := &fakeStore{}
	name := "Lote monitores " + strings.Repeat("15,6” ", 60)

	_, err := newTestIngestor(store).Ingest(t.Context(), []internal.DiscoveredProduct{product(name, "")}, 1, 1)
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	rec := store.inserted[0]
	assert.Equal(t, MaxTextLen, utf8.RuneCountInString(rec.Model))
	assert.True(t, strings.HasPrefix(rec.Model, "15,6” 15,6”"))
	assert.True(t, utf8.ValidString(rec.Model))
	assert.Equal(t, MaxTextLen, utf8.RuneCountInString(rec.Name))
}

func TestIngestRecoversFromPanickingStore(t *testing.T) {
	store := &fakeStore{queryFunc: func(_ context.Context, _ string, q internal.Query) ([]internal.CatalogRecord, error) {
		if q.Filters[1].Value == "boom" {
			panic("driver exploded")
		}
		return nil, nil
	}}

	items := []internal.DiscoveredProduct{product("boom", ""), product("fine", "")}
	summary, err := newTestIngestor(store).Ingest(t.Context(), items, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ErrorCount)
	assert.Equal(t, 1, summary.SavedCount)
	assert.Contains(t, summary.Details[0].ErrorMessage, "driver exploded")
	assert.Equal(t, 0.0, *summary.Details[1].Price)
}
