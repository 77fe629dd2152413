package ingest

import (
	"context"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
)

type fakeStore struct {
	queryFunc  func(ctx context.Context, table string, q internal.Query) ([]internal.CatalogRecord, error)
	insertFunc func(ctx context.Context, table string, record internal.CatalogRecord) (internal.CatalogRecord, error)

	queries  []internal.Query
	inserted []internal.CatalogRecord
}

func (f *fakeStore) Query(ctx context.Context, table string, q internal.Query) ([]internal.CatalogRecord, error) {
	f.queries = append(f.queries, q)
	if f.queryFunc != nil {
		return f.queryFunc(ctx, table, q)
	}
	return nil, nil
}

func (f *fakeStore) Insert(ctx context.Context, table string, record internal.CatalogRecord) (internal.CatalogRecord, error) {
	f.inserted = append(f.inserted, record)
	if f.insertFunc != nil {
		return f.insertFunc(ctx, table, record)
	}
	record.ID = int64(len(f.inserted))
	return record, nil
}

func product(name, price string) internal.DiscoveredProduct {
	p := internal.DiscoveredProduct{Name: name}
	if price != "" {
		p.Price = &price
	}
	return p
}
