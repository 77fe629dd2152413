package ingest

import (
	"time"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/util"
)

const (
	// MaxTextLen is the column limit for name and model.
	MaxTextLen = 250
	// DiscoveredStock seeds the stock of every externally discovered product.
	DiscoveredStock = 200

	defaultDescription = "Produto encontrado via busca automática"
)

type RecordMapper struct {
	codes *CodeGenerator
	now   func() time.Time
}

func NewRecordMapper(now func() time.Time) *RecordMapper {
	if now == nil {
		now = time.Now
	}
	return &RecordMapper{codes: NewCodeGenerator(now), now: now}
}

func (m *RecordMapper) Map(item internal.DiscoveredProduct, supplierID, operatorID int64) internal.CatalogRecord {
	today := m.now().UTC().Format(time.DateOnly)

	price := 0.0
	if p := util.NormalizePrice(item.Price); p != nil && *p >= 0 {
		price = *p
	}

	description := defaultDescription
	if d := util.NonBlank(item.Description); d != nil {
		description = *d
	}

	return internal.CatalogRecord{
		SupplierID:  supplierID,
		Code:        m.codes.Generate(item.Name, supplierID),
		Name:        util.Truncate(item.Name, MaxTextLen),
		Model:       util.Truncate(ExtractModel(item.Name), MaxTextLen),
		Description: description,
		Price:       price,
		Stock:       DiscoveredStock,
		Origin:      internal.OriginExternal,
		ImageURL:    util.NonBlank(item.ImageURL),
		ProductURL:  util.NonBlank(item.ProductURL),
		CreatedBy:   operatorID,
		UpdatedBy:   operatorID,
		CreatedAt:   today,
		UpdatedAt:   today,
		Category:    util.NonBlank(item.Category),
	}
}
