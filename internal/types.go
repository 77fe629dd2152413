package internal

import "errors"

// ErrNoRows is returned by a catalog store when a read matched nothing and
// the store reports that as a fault rather than an empty result.
var ErrNoRows = errors.New("no rows")

type Origin string

const (
	OriginLocal    Origin = "local"
	OriginExternal Origin = "external"
)

type OutcomeStatus string

const (
	StatusExists OutcomeStatus = "exists"
	StatusSaved  OutcomeStatus = "saved"
	StatusError  OutcomeStatus = "error"
)

// Catalog column names, shared by every store implementation.
const (
	ColID          = "id"
	ColSupplierID  = "supplier_id"
	ColCode        = "code"
	ColName        = "name"
	ColModel       = "model"
	ColDescription = "description"
	ColPrice       = "price"
	ColStock       = "stock"
	ColOrigin      = "origin"
	ColImageURL    = "image_url"
	ColProductURL  = "product_url"
	ColCreatedBy   = "created_by"
	ColUpdatedBy   = "updated_by"
	ColCreatedAt   = "created_at"
	ColUpdatedAt   = "updated_at"
	ColCategory    = "category"
)

// DiscoveredProduct is a raw product as produced by the crawler. Only Name is
// guaranteed; everything else is free text or absent.
type DiscoveredProduct struct {
	Name        string  `json:"name"`
	Price       *string `json:"price,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	ProductURL  *string `json:"product_url,omitempty"`
	Category    *string `json:"category,omitempty"`
}

type CatalogRecord struct {
	ID          int64   `json:"id,omitempty"`
	SupplierID  int64   `json:"supplier_id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Model       string  `json:"model"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Origin      Origin  `json:"origin"`
	ImageURL    *string `json:"image_url,omitempty"`
	ProductURL  *string `json:"product_url,omitempty"`
	CreatedBy   int64   `json:"created_by"`
	UpdatedBy   int64   `json:"updated_by"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	Category    *string `json:"category,omitempty"`
}

type IngestionOutcome struct {
	ProductName  string        `json:"productName"`
	Status       OutcomeStatus `json:"status"`
	ID           *int64        `json:"id,omitempty"`
	Price        *float64      `json:"price,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
}

// IngestionSummary aggregates one batch. SavedCount counts both "exists" and
// "saved" outcomes.
type IngestionSummary struct {
	SavedCount int                `json:"savedCount"`
	ErrorCount int                `json:"errorCount"`
	Details    []IngestionOutcome `json:"details"`
}

func (s IngestionSummary) Processed() int {
	return s.SavedCount + s.ErrorCount
}

// InsertedCount is the number of records actually written by the batch.
func (s IngestionSummary) InsertedCount() int {
	n := 0
	for _, d := range s.Details {
		if d.Status == StatusSaved {
			n++
		}
	}
	return n
}

type FilterOp string

const (
	FilterEq FilterOp = "eq"
	// FilterILike matches rows whose column contains Value, ignoring case.
	FilterILike FilterOp = "ilike"
)

type Filter struct {
	Column string
	Op     FilterOp
	Value  any
}

// Query results are ordered by id, oldest first unless NewestFirst is set.
type Query struct {
	Filters     []Filter
	Limit       int
	NewestFirst bool
}

const (
	BatchPending = "pending"
	BatchDone    = "done"
	BatchFailed  = "failed"
)

// BatchRow tracks one discovery file by content hash.
type BatchRow struct {
	ID         int64
	Hash       string
	FileName   string
	SupplierID int64
	Status     string
	CreatedAt  string
}

type RunRow struct {
	ID         int64
	TraceID    string
	BatchID    *int64
	SupplierID int64
	Counts     map[string]int
	Timings    map[string]float64
	CreatedAt  string
}

// MailMessage is one raw supplier e-mail pulled from a mailbox.
type MailMessage struct {
	Provider  string
	MessageID string
	From      string
	Subject   string
	Raw       []byte
}
