package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
)

// MemoryStore keeps catalog tables in memory. It backs dry runs and tests and
// applies the same filter semantics as the SQL store.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]internal.CatalogRecord
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: map[string][]internal.CatalogRecord{}}
}

// Seed loads existing records verbatim, keeping their ids.
func (s *MemoryStore) Seed(table string, records []internal.CatalogRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if r.ID > s.nextID {
			s.nextID = r.ID
		}
		s.tables[table] = append(s.tables[table], r)
	}
}

func (s *MemoryStore) Insert(_ context.Context, table string, record internal.CatalogRecord) (internal.CatalogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	record.ID = s.nextID
	s.tables[table] = append(s.tables[table], record)
	return record, nil
}

func (s *MemoryStore) Query(_ context.Context, table string, q internal.Query) ([]internal.CatalogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.tables[table]
	out := []internal.CatalogRecord{}
	for i := range rows {
		r := rows[i]
		if q.NewestFirst {
			r = rows[len(rows)-1-i]
		}
		ok, err := matchesAll(r, q.Filters)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, r)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

// Len reports how many records a table holds.
func (s *MemoryStore) Len(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

func matchesAll(r internal.CatalogRecord, filters []internal.Filter) (bool, error) {
	for _, f := range filters {
		value, ok := columnValue(r, f.Column)
		if !ok {
			return false, fmt.Errorf("unknown column: %s", f.Column)
		}
		switch f.Op {
		case internal.FilterEq:
			if fmt.Sprint(value) != fmt.Sprint(f.Value) {
				return false, nil
			}
		case internal.FilterILike:
			if !strings.Contains(strings.ToLower(fmt.Sprint(value)), strings.ToLower(fmt.Sprint(f.Value))) {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported filter op: %s", f.Op)
		}
	}
	return true, nil
}

func columnValue(r internal.CatalogRecord, column string) (any, bool) {
	switch column {
	case internal.ColID:
		return r.ID, true
	case internal.ColSupplierID:
		return r.SupplierID, true
	case internal.ColCode:
		return r.Code, true
	case internal.ColName:
		return r.Name, true
	case internal.ColModel:
		return r.Model, true
	case internal.ColDescription:
		return r.Description, true
	case internal.ColPrice:
		return r.Price, true
	case internal.ColStock:
		return r.Stock, true
	case internal.ColOrigin:
		return string(r.Origin), true
	case internal.ColCreatedBy:
		return r.CreatedBy, true
	case internal.ColUpdatedBy:
		return r.UpdatedBy, true
	case internal.ColCreatedAt:
		return r.CreatedAt, true
	case internal.ColUpdatedAt:
		return r.UpdatedAt, true
	case internal.ColImageURL:
		return derefString(r.ImageURL), true
	case internal.ColProductURL:
		return derefString(r.ProductURL), true
	case internal.ColCategory:
		return derefString(r.Category), true
	default:
		return nil, false
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
