package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/logger"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/util"
)

// DefaultOperatorID is recorded as creator when the caller does not name one.
const DefaultOperatorID int64 = 1

var ErrInvalidSupplier = errors.New("supplier id is required")

// BatchIngestor merges discovered products into the catalog one item at a
// time. A failing item never stops the batch.
type BatchIngestor struct {
	store      CatalogStore
	table      string
	duplicates *DuplicateChecker
	mapper     *RecordMapper
	log        logger.Logger
}

type Option func(*BatchIngestor)

// WithClock replaces time.Now for code suffixes and record dates.
func WithClock(now func() time.Time) Option {
	return func(b *BatchIngestor) {
		b.mapper = NewRecordMapper(now)
	}
}

func NewBatchIngestor(store CatalogStore, table string, log logger.Logger, opts ...Option) *BatchIngestor {
	b := &BatchIngestor{
		store:      store,
		table:      table,
		duplicates: NewDuplicateChecker(store, table, log),
		mapper:     NewRecordMapper(nil),
		log:        log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *BatchIngestor) Ingest(ctx context.Context, items []internal.DiscoveredProduct, supplierID, operatorID int64) (internal.IngestionSummary, error) {
	if supplierID <= 0 {
		return internal.IngestionSummary{}, ErrInvalidSupplier
	}
	if operatorID <= 0 {
		operatorID = DefaultOperatorID
	}

	summary := internal.IngestionSummary{Details: make([]internal.IngestionOutcome, 0, len(items))}
	if len(items) == 0 {
		return summary, nil
	}

	log := b.log.With(logger.Int64("supplier_id", supplierID))
	log.Info("ingesting discovered products", logger.Int("count", len(items)))

	for _, item := range items {
		outcome := b.ingestOne(ctx, item, supplierID, operatorID, log)
		if outcome.Status == internal.StatusError {
			summary.ErrorCount++
		} else {
			summary.SavedCount++
		}
		summary.Details = append(summary.Details, outcome)
	}

	log.Info("ingestion finished",
		logger.Int("saved", summary.SavedCount),
		logger.Int("inserted", summary.InsertedCount()),
		logger.Int("errors", summary.ErrorCount),
	)
	return summary, nil
}

func (b *BatchIngestor) ingestOne(ctx context.Context, item internal.DiscoveredProduct, supplierID, operatorID int64, log logger.Logger) (outcome internal.IngestionOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = failed(item.Name, fmt.Errorf("unexpected fault: %v", r))
			log.Error("product processing panicked", logger.String("product", item.Name), logger.Any("panic", r))
		}
	}()

	if existing := b.duplicates.Exists(ctx, item.Name, supplierID); existing != nil {
		log.Info("product already exists", logger.String("product", item.Name), logger.Int64("id", existing.ID))
		return internal.IngestionOutcome{
			ProductName: item.Name,
			Status:      internal.StatusExists,
			ID:          util.Int64Ptr(existing.ID),
		}
	}

	record := b.mapper.Map(item, supplierID, operatorID)
	saved, err := b.store.Insert(ctx, b.table, record)
	if err != nil {
		log.Error("product save failed", logger.String("product", item.Name), logger.Error(err))
		return failed(item.Name, err)
	}

	log.Debug("product saved", logger.String("product", saved.Name), logger.Int64("id", saved.ID))
	return internal.IngestionOutcome{
		ProductName: item.Name,
		Status:      internal.StatusSaved,
		ID:          util.Int64Ptr(saved.ID),
		Price:       util.FloatPtr(record.Price),
	}
}

func failed(name string, err error) internal.IngestionOutcome {
	return internal.IngestionOutcome{
		ProductName:  name,
		Status:       internal.StatusError,
		ErrorMessage: err.Error(),
	}
}
