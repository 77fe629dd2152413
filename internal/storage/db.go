package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"modernc.org/sqlite"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const productColumns = `id, supplier_id, code, name, model, description, price, stock, origin,
  image_url, product_url, created_by, updated_by, created_at, updated_at, category`

var validIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var filterableColumns = map[string]bool{
	internal.ColID: true, internal.ColSupplierID: true, internal.ColCode: true, internal.ColName: true,
	internal.ColModel: true, internal.ColDescription: true, internal.ColPrice: true, internal.ColStock: true,
	internal.ColOrigin: true, internal.ColImageURL: true, internal.ColProductURL: true,
	internal.ColCreatedBy: true, internal.ColUpdatedBy: true, internal.ColCreatedAt: true,
	internal.ColUpdatedAt: true, internal.ColCategory: true,
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SQLite's lower() only folds ASCII. unicode_lower folds the full range so
// "TÉRMICA" and "térmica" compare equal, as they do on Postgres.
const sqliteLower = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteLower, 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return strings.ToLower(fmt.Sprint(v)), nil
	}
}

type DB struct {
	conn *sqlx.DB
}

type productRow struct {
	ID          int64   `db:"id"`
	SupplierID  int64   `db:"supplier_id"`
	Code        string  `db:"code"`
	Name        string  `db:"name"`
	Model       string  `db:"model"`
	Description string  `db:"description"`
	Price       float64 `db:"price"`
	Stock       int     `db:"stock"`
	Origin      string  `db:"origin"`
	ImageURL    *string `db:"image_url"`
	ProductURL  *string `db:"product_url"`
	CreatedBy   int64   `db:"created_by"`
	UpdatedBy   int64   `db:"updated_by"`
	CreatedAt   string  `db:"created_at"`
	UpdatedAt   string  `db:"updated_at"`
	Category    *string `db:"category"`
}

func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, err
		}
	case DriverPostgres:
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("missing DATABASE_URL for postgres driver")
		}
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", driver)
	}

	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	db := &DB{conn: conn}
	if err := db.init(driver); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

// NewWithConn wraps an existing connection without touching the schema.
func NewWithConn(conn *sqlx.DB) *DB {
	return &DB{conn: conn}
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init(driver string) error {
	schema := sqliteSchema
	if driver == DriverPostgres {
		schema = postgresSchema
	}
	_, err := d.conn.Exec(schema)
	return err
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  supplier_id INTEGER NOT NULL,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  model TEXT NOT NULL,
  description TEXT NOT NULL,
  price REAL NOT NULL DEFAULT 0 CHECK (price >= 0),
  stock INTEGER NOT NULL DEFAULT 0,
  origin TEXT NOT NULL DEFAULT 'local',
  image_url TEXT,
  product_url TEXT,
  created_by INTEGER NOT NULL,
  updated_by INTEGER NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  category TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_supplier ON products(supplier_id);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);

CREATE TABLE IF NOT EXISTS batches (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  hash TEXT NOT NULL UNIQUE,
  file_name TEXT NOT NULL,
  supplier_id INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  trace_id TEXT NOT NULL,
  batch_id INTEGER,
  supplier_id INTEGER NOT NULL,
  counts_json TEXT NOT NULL,
  timings_json TEXT NOT NULL,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(batch_id) REFERENCES batches(id)
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS products (
  id BIGSERIAL PRIMARY KEY,
  supplier_id BIGINT NOT NULL,
  code TEXT NOT NULL,
  name VARCHAR(255) NOT NULL,
  model VARCHAR(255) NOT NULL,
  description TEXT NOT NULL,
  price DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (price >= 0),
  stock INTEGER NOT NULL DEFAULT 0,
  origin TEXT NOT NULL DEFAULT 'local',
  image_url TEXT,
  product_url TEXT,
  created_by BIGINT NOT NULL,
  updated_by BIGINT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  category TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_supplier ON products(supplier_id);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);

CREATE TABLE IF NOT EXISTS batches (
  id BIGSERIAL PRIMARY KEY,
  hash TEXT NOT NULL UNIQUE,
  file_name TEXT NOT NULL,
  supplier_id BIGINT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS runs (
  id BIGSERIAL PRIMARY KEY,
  trace_id TEXT NOT NULL,
  batch_id BIGINT REFERENCES batches(id),
  supplier_id BIGINT NOT NULL,
  counts_json TEXT NOT NULL,
  timings_json TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Insert stores a catalog record in table and returns it with its new id.
func (d *DB) Insert(ctx context.Context, table string, record internal.CatalogRecord) (internal.CatalogRecord, error) {
	if !validIdent.MatchString(table) {
		return internal.CatalogRecord{}, fmt.Errorf("invalid table name: %q", table)
	}

	query := d.conn.Rebind(fmt.Sprintf(`
INSERT INTO %s (
  supplier_id, code, name, model, description, price, stock, origin,
  image_url, product_url, created_by, updated_by, created_at, updated_at, category
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`, table))

	var id int64
	err := d.conn.QueryRowxContext(ctx, query,
		record.SupplierID, record.Code, record.Name, record.Model, record.Description,
		record.Price, record.Stock, string(record.Origin),
		nullable(record.ImageURL), nullable(record.ProductURL), record.CreatedBy, record.UpdatedBy,
		record.CreatedAt, record.UpdatedAt, nullable(record.Category),
	).Scan(&id)
	if err != nil {
		return internal.CatalogRecord{}, fmt.Errorf("insert into %s: %w", table, err)
	}

	record.ID = id
	return record, nil
}

// Query returns the records of table matching every filter, ordered by id.
func (d *DB) Query(ctx context.Context, table string, q internal.Query) ([]internal.CatalogRecord, error) {
	query, args, err := buildSelect(d.conn.DriverName(), table, q)
	if err != nil {
		return nil, err
	}

	var rows []productRow
	if err := d.conn.SelectContext(ctx, &rows, d.conn.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	out := make([]internal.CatalogRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toRecord())
	}
	return out, nil
}

func buildSelect(driverName, table string, q internal.Query) (string, []any, error) {
	if !validIdent.MatchString(table) {
		return "", nil, fmt.Errorf("invalid table name: %q", table)
	}

	lower := "LOWER"
	if driverName == DriverSQLite {
		lower = sqliteLower
	}

	where := make([]string, 0, len(q.Filters))
	args := make([]any, 0, len(q.Filters))
	for _, f := range q.Filters {
		if !filterableColumns[f.Column] {
			return "", nil, fmt.Errorf("unknown column: %s", f.Column)
		}
		switch f.Op {
		case internal.FilterEq:
			where = append(where, f.Column+" = ?")
			args = append(args, f.Value)
		case internal.FilterILike:
			where = append(where, lower+"("+f.Column+`) LIKE ? ESCAPE '\'`)
			args = append(args, "%"+likeEscaper.Replace(strings.ToLower(fmt.Sprint(f.Value)))+"%")
		default:
			return "", nil, fmt.Errorf("unsupported filter op: %s", f.Op)
		}
	}

	var b strings.Builder
	b.WriteString("SELECT " + productColumns + " FROM " + table)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY id")
	if q.NewestFirst {
		b.WriteString(" DESC")
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	return b.String(), args, nil
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func (r productRow) toRecord() internal.CatalogRecord {
	return internal.CatalogRecord{
		ID:          r.ID,
		SupplierID:  r.SupplierID,
		Code:        r.Code,
		Name:        r.Name,
		Model:       r.Model,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Origin:      internal.Origin(r.Origin),
		ImageURL:    r.ImageURL,
		ProductURL:  r.ProductURL,
		CreatedBy:   r.CreatedBy,
		UpdatedBy:   r.UpdatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Category:    r.Category,
	}
}

func (d *DB) UpsertBatch(hash, fileName string, supplierID int64) (internal.BatchRow, error) {
	_, err := d.conn.Exec(d.conn.Rebind(`
INSERT INTO batches (hash, file_name, supplier_id)
VALUES (?, ?, ?)
ON CONFLICT(hash) DO UPDATE SET
  file_name=excluded.file_name,
  updated_at=CURRENT_TIMESTAMP
`), hash, fileName, supplierID)
	if err != nil {
		return internal.BatchRow{}, err
	}

	row, err := d.GetBatchByHash(hash)
	if err != nil {
		return internal.BatchRow{}, err
	}
	if row == nil {
		return internal.BatchRow{}, errors.New("failed to upsert batch")
	}
	return *row, nil
}

func (d *DB) GetBatchByHash(hash string) (*internal.BatchRow, error) {
	var row internal.BatchRow
	err := d.conn.QueryRow(d.conn.Rebind(`
SELECT id, hash, file_name, supplier_id, status, created_at
FROM batches WHERE hash = ?
`), hash).Scan(&row.ID, &row.Hash, &row.FileName, &row.SupplierID, &row.Status, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) UpdateBatchStatus(batchID int64, status string) error {
	_, err := d.conn.Exec(d.conn.Rebind(`UPDATE batches SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`), status, batchID)
	return err
}

func (d *DB) InsertRun(traceID string, batchID *int64, supplierID int64, counts map[string]int, timings map[string]float64) error {
	countsJSON, _ := json.Marshal(counts)
	timingsJSON, _ := json.Marshal(timings)
	_, err := d.conn.Exec(d.conn.Rebind(`
INSERT INTO runs (trace_id, batch_id, supplier_id, counts_json, timings_json) VALUES (?, ?, ?, ?, ?)
`), traceID, nullable(batchID), supplierID, string(countsJSON), string(timingsJSON))
	return err
}

func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	rows, err := d.conn.Query(d.conn.Rebind(`
SELECT id, trace_id, batch_id, supplier_id, counts_json, timings_json, created_at
FROM runs ORDER BY id DESC LIMIT ?
`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		var countsJSON, timingsJSON string
		if err := rows.Scan(&row.ID, &row.TraceID, &row.BatchID, &row.SupplierID, &countsJSON, &timingsJSON, &row.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
		_ = json.Unmarshal([]byte(timingsJSON), &row.Timings)
		out = append(out, row)
	}
	return out, rows.Err()
}
