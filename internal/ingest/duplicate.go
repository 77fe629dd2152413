package ingest

import (
	"context"
	"errors"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/logger"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/util"
)

// duplicatePrefixLen is how much of the product name is used for the
// contains-match against stored names.
const duplicatePrefixLen = 50

// DuplicateChecker looks for a stored product of the same supplier whose name
// contains the start of the candidate name. It is a heuristic: unrelated
// products sharing a long prefix match, renamed products do not.
type DuplicateChecker struct {
	store CatalogStore
	table string
	log   logger.Logger
}

func NewDuplicateChecker(store CatalogStore, table string, log logger.Logger) *DuplicateChecker {
	return &DuplicateChecker{store: store, table: table, log: log}
}

// Exists returns the matching record or nil. Store faults are logged and
// reported as "not found" so a flaky store never blocks ingestion.
func (c *DuplicateChecker) Exists(ctx context.Context, name string, supplierID int64) *internal.CatalogRecord {
	rows, err := c.store.Query(ctx, c.table, internal.Query{
		Filters: []internal.Filter{
			{Column: internal.ColSupplierID, Op: internal.FilterEq, Value: supplierID},
			{Column: internal.ColName, Op: internal.FilterILike, Value: util.Truncate(name, duplicatePrefixLen)},
		},
		Limit: 1,
	})
	if errors.Is(err, internal.ErrNoRows) {
		return nil
	}
	if err != nil {
		c.log.Warn("duplicate check failed, assuming new product",
			logger.String("product", name),
			logger.Int64("supplier_id", supplierID),
			logger.Error(err),
		)
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	found := rows[0]
	return &found
}
