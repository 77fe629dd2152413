package catalog

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testClient(t *testing.T, fn roundTripFunc) *Client {
	t.Helper()
	cfg, _ := config.Load()
	cfg.CatalogAPIBaseURL = "https://example.test/rest/v1"
	cfg.CatalogAPIKey = "test-key"
	cfg.CatalogRateLimitRPS = 1000

	client := NewClient(cfg)
	client.httpClient = &http.Client{Transport: fn}
	return client
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestClientQueryBuildsPostgrestFilters(t *testing.T) {
	calls := 0
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		calls++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/products", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "eq.7", q.Get("supplier_id"))
		assert.Equal(t, "ilike.*HP ProBook*", q.Get("name"))
		assert.Equal(t, "1", q.Get("limit"))
		assert.Equal(t, "id.asc", q.Get("order"))
		return jsonResponse(http.StatusOK, `[{"id":42,"supplier_id":7,"name":"HP ProBook 450","price":10.5,"origin":"external"}]`), nil
	})

	rows, err := client.Query(t.Context(), "products", internal.Query{
		Filters: []internal.Filter{
			{Column: internal.ColSupplierID, Op: internal.FilterEq, Value: int64(7)},
			{Column: internal.ColName, Op: internal.FilterILike, Value: "HP ProBook"},
		},
		Limit: 1,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(42), rows[0].ID)
	assert.Equal(t, internal.OriginExternal, rows[0].Origin)
	assert.Equal(t, 1, calls)
}

func TestClientQueryEscapesPatternCharacters(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		q := r.URL.Query()
		assert.Equal(t, `ilike.*Cabo 2_1.5 10\% off\_x*`, q.Get("name"))
		assert.Equal(t, "id.desc", q.Get("order"))
		return jsonResponse(http.StatusOK, `[]`), nil
	})

	rows, err := client.Query(t.Context(), "products", internal.Query{
		Filters:     []internal.Filter{{Column: internal.ColName, Op: internal.FilterILike, Value: "Cabo 2*1.5 10% off_x"}},
		NewestFirst: true,
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestClientInsertReturnsRepresentation(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var sent []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		require.Len(t, sent, 1)
		assert.NotContains(t, sent[0], "id")
		assert.Equal(t, "external", sent[0]["origin"])

		sent[0]["id"] = 101
		blob, _ := json.Marshal(sent)
		return jsonResponse(http.StatusCreated, string(blob)), nil
	})

	saved, err := client.Insert(t.Context(), "products", internal.CatalogRecord{
		SupplierID: 7,
		Name:       "Toner HP 85A",
		Origin:     internal.OriginExternal,
		Stock:      200,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(101), saved.ID)
	assert.Equal(t, "Toner HP 85A", saved.Name)
}

func TestClientDoesNotRetryServerErrors(t *testing.T) {
	calls := 0
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusServiceUnavailable, `{"code":"503","message":"upstream down"}`), nil
	})

	_, err := client.Insert(t.Context(), "products", internal.CatalogRecord{Name: "x"})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.False(t, errors.Is(err, internal.ErrNoRows))
}

func TestClientMapsNoRowsCode(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotAcceptable, `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`), nil
	})

	_, err := client.Query(t.Context(), "products", internal.Query{})
	assert.ErrorIs(t, err, internal.ErrNoRows)
}

func TestClientRejectsBadTableAndMissingConfig(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected request to %s", r.URL)
		return nil, nil
	})

	_, err := client.Query(t.Context(), "products;drop", internal.Query{})
	require.Error(t, err)

	client.cfg.CatalogAPIKey = ""
	_, err = client.Query(t.Context(), "products", internal.Query{})
	require.Error(t, err)
}
