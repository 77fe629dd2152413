package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/config"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/ingest"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/storage"
)

func testConfig(t *testing.T) config.Config {
	return config.Config{
		DBDriver:       storage.DriverSQLite,
		DBPath:         filepath.Join(t.TempDir(), "app.db"),
		CatalogBackend: config.BackendSQL,
		CatalogTable:   "products",
		LogLevel:       "error",
	}
}

func TestDryRunStoreSeedsSupplierCatalogOnly(t *testing.T) {
	a, err := New(testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	ctx := t.Context()
	_, err = a.DB.Insert(ctx, "products", internal.CatalogRecord{SupplierID: 5, Name: "Toner HP 85A", Origin: internal.OriginLocal})
	require.NoError(t, err)
	_, err = a.DB.Insert(ctx, "products", internal.CatalogRecord{SupplierID: 6, Name: "Papel A4", Origin: internal.OriginLocal})
	require.NoError(t, err)

	mem, err := a.DryRunStore(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Len("products"))

	summary, err := a.Ingestor(mem).Ingest(ctx, []internal.DiscoveredProduct{{Name: "Toner HP 85A"}, {Name: "Papel A4"}}, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, internal.StatusExists, summary.Details[0].Status)
	assert.Equal(t, internal.StatusSaved, summary.Details[1].Status)

	stored, err := a.DB.Query(ctx, "products", internal.Query{})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestSupplierProductsNewestFirst(t *testing.T) {
	a, err := New(testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	ctx := t.Context()
	for _, rec := range []internal.CatalogRecord{
		{SupplierID: 5, Name: "Toner HP 85A"},
		{SupplierID: 6, Name: "Papel A4"},
		{SupplierID: 5, Name: "Rato Logitech"},
		{SupplierID: 5, Name: "Cabo HDMI 2m"},
	} {
		rec.Origin = internal.OriginLocal
		_, err := a.DB.Insert(ctx, "products", rec)
		require.NoError(t, err)
	}

	all, err := a.SupplierProducts(ctx, 5, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Cabo HDMI 2m", all[0].Name)
	assert.Equal(t, "Toner HP 85A", all[2].Name)

	latest, err := a.SupplierProducts(ctx, 5, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "Cabo HDMI 2m", latest[0].Name)

	_, err = a.SupplierProducts(ctx, 0, 10)
	assert.ErrorIs(t, err, ingest.ErrInvalidSupplier)
}

func TestNewRejectsIncompleteBackends(t *testing.T) {
	cfg := testConfig(t)
	cfg.CatalogBackend = config.BackendREST
	_, err := New(cfg)
	assert.ErrorContains(t, err, "CATALOG_API")

	cfg = testConfig(t)
	cfg.CatalogBackend = "ftp"
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.DBDriver = storage.DriverPostgres
	_, err = New(cfg)
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestListenerWithoutMailProvider(t *testing.T) {
	a, err := New(testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	svc, err := a.Listener(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, svc)

	a.Cfg.MailProvider = "pop3"
	_, err = a.Listener(t.Context())
	assert.ErrorContains(t, err, "unsupported mail provider")

	a.Cfg.MailProvider = "imap"
	_, err = a.Listener(t.Context())
	assert.ErrorContains(t, err, "IMAP_")
}
