package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storesync/backend/internal/domain/sync"
)

func testServerConfig(baseURL string) *sync.Server {
	return &sync.Server{
		Scope:          "shop",
		BaseURL:        baseURL,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		EnableSync:     true,
	}
}

func TestWooAdapter_GetProduct(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/products/42", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "ck_test", user)
		assert.Equal(t, "cs_test", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 42,
			"type": "simple",
			"name": "Brake Pad Set",
			"sku": "ITEM-001",
			"regular_price": "120.00",
			"status": "publish",
			"stock_quantity": 5,
			"stock_status": "instock",
			"date_modified_gmt": "2024-06-01T12:00:00",
			"meta_data": [{"key": "mark_spare_part", "value": "1"}]
		}`))
	}))
	defer ts.Close()

	adapter := NewWooAdapter(time.Second, nil)
	product, found, err := adapter.GetProduct(context.Background(), testServerConfig(ts.URL), "42")

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "42", product.ID)
	assert.Equal(t, "shop:42", product.RecordID())
	assert.Equal(t, sync.ProductTypeSimple, product.Type)
	assert.Equal(t, "ITEM-001", product.SKU)
	assert.Equal(t, int64(5), product.StockQuantity)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), product.DateModified)
	require.Len(t, product.MetaData, 1)
	assert.Equal(t, "mark_spare_part", product.MetaData[0].Key)
}

func TestWooAdapter_GetProduct_NotFoundIsAbsence(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"woocommerce_rest_product_invalid_id","message":"Invalid ID."}`))
	}))
	defer ts.Close()

	adapter := NewWooAdapter(time.Second, nil)
	product, found, err := adapter.GetProduct(context.Background(), testServerConfig(ts.URL), "42")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, product)
}

func TestWooAdapter_GetProduct_RejectsNonNumericID(t *testing.T) {
	adapter := NewWooAdapter(time.Second, nil)
	_, _, err := adapter.GetProduct(context.Background(), testServerConfig("http://unused"), "abc")
	assert.ErrorIs(t, err, sync.ErrRemoteRequestFailed)
}

func TestWooAdapter_CreateProduct(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Brake Pad Set", payload["name"])
		assert.Equal(t, "woosb", payload["type"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 101, "type": "woosb", "name": "Brake Pad Set", "date_modified_gmt": "2024-06-01T12:00:01"}`))
	}))
	defer ts.Close()

	adapter := NewWooAdapter(time.Second, nil)
	product, err := adapter.CreateProduct(context.Background(), testServerConfig(ts.URL), map[string]any{
		"name": "Brake Pad Set",
		"type": "woosb",
	})

	require.NoError(t, err)
	assert.Equal(t, "101", product.ID)
	assert.Equal(t, sync.ProductTypeBundle, product.Type)
}

func TestWooAdapter_UpdateProduct_SparseFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/products/42", r.URL.Path)

		var fields map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		assert.Equal(t, map[string]any{"regular_price": "99.50"}, fields)

		_, _ = w.Write([]byte(`{"id": 42, "regular_price": "99.50", "date_modified_gmt": "2024-06-01T12:00:02"}`))
	}))
	defer ts.Close()

	adapter := NewWooAdapter(time.Second, nil)
	product, err := adapter.UpdateProduct(context.Background(), testServerConfig(ts.URL), "42",
		map[string]any{"regular_price": "99.50"})

	require.NoError(t, err)
	assert.Equal(t, "99.50", product.RegularPrice)
}

func TestWooAdapter_UpdateProduct_ServerErrorIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	adapter := NewWooAdapter(time.Second, nil)
	_, err := adapter.UpdateProduct(context.Background(), testServerConfig(ts.URL), "42",
		map[string]any{"name": "x"})

	assert.ErrorIs(t, err, sync.ErrRemoteUnavailable)
}

func TestWooAdapter_ListCategories(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products/categories", r.URL.Path)
		assert.Equal(t, "Brakes", r.URL.Query().Get("search"))

		_, _ = w.Write([]byte(`[{"id": 7, "name": "Brakes", "slug": "brakes", "parent": 0}]`))
	}))
	defer ts.Close()

	adapter := NewWooAdapter(time.Second, nil)
	categories, err := adapter.ListCategories(context.Background(), testServerConfig(ts.URL), "Brakes")

	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, sync.RemoteCategory{ID: 7, Name: "Brakes", Slug: "brakes"}, categories[0])
}

func TestWooAdapter_CreateCategory_Nested(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Discs", payload["name"])
		assert.Equal(t, float64(7), payload["parent"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 8, "name": "Discs", "slug": "discs", "parent": 7}`))
	}))
	defer ts.Close()

	adapter := NewWooAdapter(time.Second, nil)
	category, err := adapter.CreateCategory(context.Background(), testServerConfig(ts.URL), "Discs", 7)

	require.NoError(t, err)
	assert.Equal(t, int64(8), category.ID)
	assert.Equal(t, int64(7), category.Parent)
}

func TestWooAdapter_ListOfferCategories(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wp/v2/offer_category", r.URL.Path)

		_, _ = w.Write([]byte(`[{"id": 3, "name": "Summer Sale", "slug": "summer-sale"}]`))
	}))
	defer ts.Close()

	adapter := NewWooAdapter(time.Second, nil)
	terms, err := adapter.ListOfferCategories(context.Background(), testServerConfig(ts.URL), "Summer Sale")

	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "summer-sale", terms[0].Slug)
}
