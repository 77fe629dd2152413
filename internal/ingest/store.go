package ingest

import (
	"context"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
)

// CatalogStore is the persistence the pipeline writes through. Implementations
// live in internal/storage (SQL), internal/catalog (REST and in-memory).
type CatalogStore interface {
	Insert(ctx context.Context, table string, record internal.CatalogRecord) (internal.CatalogRecord, error)
	Query(ctx context.Context, table string, q internal.Query) ([]internal.CatalogRecord, error)
}
