package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/config"
)

// codeNoRows is PostgREST's "JSON object requested, multiple (or no) rows returned".
const codeNoRows = "PGRST116"

var validTable = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgREST turns every * in an ilike pattern into %, so a literal * can only
// be matched by the single-character wildcard.
var ilikeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`, `*`, `_`)

// Client talks to a PostgREST-compatible catalog API (Supabase's REST
// endpoint). Requests are rate limited and never retried.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

// APIError is the error body PostgREST sends with non-2xx responses.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog api error: status=%d code=%s message=%s", e.Status, e.Code, e.Message)
}

// Unwrap lets callers test for internal.ErrNoRows with errors.Is.
func (e *APIError) Unwrap() error {
	if e.Code == codeNoRows {
		return internal.ErrNoRows
	}
	return nil
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.CatalogTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.CatalogRateLimitRPS),
	}
}

func (c *Client) Insert(ctx context.Context, table string, record internal.CatalogRecord) (internal.CatalogRecord, error) {
	record.ID = 0
	payload, err := json.Marshal([]internal.CatalogRecord{record})
	if err != nil {
		return internal.CatalogRecord{}, err
	}

	headers := map[string]string{"Prefer": "return=representation"}
	body, err := c.do(ctx, http.MethodPost, table, nil, payload, headers)
	if err != nil {
		return internal.CatalogRecord{}, err
	}

	var rows []internal.CatalogRecord
	if err := json.Unmarshal(body, &rows); err != nil {
		return internal.CatalogRecord{}, fmt.Errorf("decode insert response: %w", err)
	}
	if len(rows) == 0 {
		return internal.CatalogRecord{}, errors.New("catalog api returned no inserted row")
	}
	return rows[0], nil
}

func (c *Client) Query(ctx context.Context, table string, q internal.Query) ([]internal.CatalogRecord, error) {
	params := url.Values{}
	params.Set("select", "*")
	for _, f := range q.Filters {
		switch f.Op {
		case internal.FilterEq:
			params.Add(f.Column, "eq."+fmt.Sprint(f.Value))
		case internal.FilterILike:
			params.Add(f.Column, "ilike.*"+ilikeEscaper.Replace(fmt.Sprint(f.Value))+"*")
		default:
			return nil, fmt.Errorf("unsupported filter op: %s", f.Op)
		}
	}
	order := ".asc"
	if q.NewestFirst {
		order = ".desc"
	}
	params.Set("order", internal.ColID+order)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	body, err := c.do(ctx, http.MethodGet, table, params, nil, nil)
	if err != nil {
		return nil, err
	}

	var rows []internal.CatalogRecord
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	return rows, nil
}

func (c *Client) do(ctx context.Context, method, table string, params url.Values, payload []byte, headers map[string]string) ([]byte, error) {
	if strings.TrimSpace(c.cfg.CatalogAPIBaseURL) == "" {
		return nil, errors.New("missing CATALOG_API_BASE_URL")
	}
	if strings.TrimSpace(c.cfg.CatalogAPIKey) == "" {
		return nil, errors.New("missing CATALOG_API_KEY")
	}
	if !validTable.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}

	u, err := url.Parse(strings.TrimRight(c.cfg.CatalogAPIBaseURL, "/") + "/" + table)
	if err != nil {
		return nil, err
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	if err := c.limiter.WaitTurn(ctx); err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.cfg.CatalogAPIKey)
	req.Header.Set("Authorization", "Bearer "+c.cfg.CatalogAPIKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return nil, apiErr
	}
	return body, nil
}
