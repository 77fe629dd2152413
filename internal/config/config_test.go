package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CATALOG_BACKEND", "REST")
	t.Setenv("CATALOG_RATE_LIMIT_RPS", "not-a-number")
	t.Setenv("LISTENER_AUTO_EXPORT", "off")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendREST, cfg.CatalogBackend)
	assert.Equal(t, 5, cfg.CatalogRateLimitRPS)
	assert.False(t, cfg.ListenerAutoExport)
	assert.Equal(t, "products", cfg.CatalogTable)
	assert.Equal(t, int64(1), cfg.DefaultOperatorID)
}

func TestLoadPriceRange(t *testing.T) {
	t.Setenv("PRICE_MIN", " 1500.5 ")
	t.Setenv("PRICE_MAX", "barato")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.PriceMin)
	assert.Equal(t, 1500.5, *cfg.PriceMin)
	assert.Nil(t, cfg.PriceMax)
}

func TestDSNFollowsDriver(t *testing.T) {
	cfg := Config{DBDriver: "postgres", DatabaseURL: "postgres://x", DBPath: "/tmp/app.db"}
	assert.Equal(t, "postgres://x", cfg.DSN())
	cfg.DBDriver = "sqlite"
	assert.Equal(t, "/tmp/app.db", cfg.DSN())
}

func TestParseSupplierMap(t *testing.T) {
	got := parseSupplierMap(" Vendas@Loja.ao = 7 ,@tech.ao=9,broken,x=0,y=abc,")
	assert.Equal(t, map[string]int64{"vendas@loja.ao": 7, "@tech.ao": 9}, got)
}

func TestRequire(t *testing.T) {
	assert.Error(t, Config{}.Require("CATALOG_API_KEY", "  "))
	assert.NoError(t, Config{}.Require("CATALOG_API_KEY", "k"))
}
