package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/sync"
)

// maxResponseSize is the maximum allowed response size from the storefront
// API (10MB)
const maxResponseSize = 10 * 1024 * 1024

const (
	// catalogBasePath is the product catalog REST namespace
	catalogBasePath = "/wp-json/wc/v3"
	// offerTaxonomyPath is the promotional taxonomy endpoint
	offerTaxonomyPath = "/wp-json/wp/v2/offer_category"
	// defaultTimeout keeps remote calls short relative to batch sizes; a
	// timeout is a regular per-group failure, never retried here
	defaultTimeout = 15 * time.Second
	// listPageSize caps category list responses
	listPageSize = 100
)

// WooAdapter implements the storefront gateway against a
// WooCommerce-compatible REST API. Credentials come from the server
// configuration on every call; the adapter itself is stateless and safe for
// concurrent use.
type WooAdapter struct {
	httpClient *http.Client
	logger     *zap.Logger
}

var _ sync.StorefrontGateway = (*WooAdapter)(nil)

// NewWooAdapter creates a storefront adapter. A zero timeout selects the
// default.
func NewWooAdapter(timeout time.Duration, logger *zap.Logger) *WooAdapter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WooAdapter{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// GetProduct fetches a product by remote ID; a 404 is reported as absent,
// not as an error.
func (a *WooAdapter) GetProduct(ctx context.Context, server *sync.Server, remoteID string) (*sync.RemoteProduct, bool, error) {
	if err := validateNumericID(remoteID); err != nil {
		return nil, false, err
	}

	body, status, err := a.doRequest(ctx, server, http.MethodGet,
		catalogBasePath+"/products/"+remoteID, nil, nil)
	if status == http.StatusNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var product wooProduct
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, false, fmt.Errorf("%w: %v", sync.ErrRemoteInvalidResponse, err)
	}
	return product.toDomain(server.Scope), true, nil
}

// CreateProduct creates a product from a sparse payload
func (a *WooAdapter) CreateProduct(ctx context.Context, server *sync.Server, payload map[string]any) (*sync.RemoteProduct, error) {
	body, _, err := a.doRequest(ctx, server, http.MethodPost,
		catalogBasePath+"/products", nil, payload)
	if err != nil {
		return nil, err
	}

	var product wooProduct
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("%w: %v", sync.ErrRemoteInvalidResponse, err)
	}
	return product.toDomain(server.Scope), nil
}

// UpdateProduct applies a sparse partial update, merged server-side
func (a *WooAdapter) UpdateProduct(ctx context.Context, server *sync.Server, remoteID string, fields map[string]any) (*sync.RemoteProduct, error) {
	if err := validateNumericID(remoteID); err != nil {
		return nil, err
	}

	body, _, err := a.doRequest(ctx, server, http.MethodPut,
		catalogBasePath+"/products/"+remoteID, nil, fields)
	if err != nil {
		return nil, err
	}

	var product wooProduct
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("%w: %v", sync.ErrRemoteInvalidResponse, err)
	}
	return product.toDomain(server.Scope), nil
}

// ---------------------------------------------------------------------------
// Category Operations
// ---------------------------------------------------------------------------

// ListCategories returns catalog categories matching the search term
func (a *WooAdapter) ListCategories(ctx context.Context, server *sync.Server, search string) ([]sync.RemoteCategory, error) {
	return a.listTerms(ctx, server, catalogBasePath+"/products/categories", search)
}

// CreateCategory creates a catalog category, optionally nested under
// parentID.
func (a *WooAdapter) CreateCategory(ctx context.Context, server *sync.Server, name string, parentID int64) (*sync.RemoteCategory, error) {
	payload := map[string]any{"name": name}
	if parentID > 0 {
		payload["parent"] = parentID
	}

	body, _, err := a.doRequest(ctx, server, http.MethodPost,
		catalogBasePath+"/products/categories", nil, payload)
	if err != nil {
		return nil, err
	}

	var category wooCategory
	if err := json.Unmarshal(body, &category); err != nil {
		return nil, fmt.Errorf("%w: %v", sync.ErrRemoteInvalidResponse, err)
	}
	result := category.toDomain()
	return &result, nil
}

// ListOfferCategories returns promotional taxonomy terms matching the
// search term. The taxonomy is managed manually on the storefront, so there
// is no create counterpart.
func (a *WooAdapter) ListOfferCategories(ctx context.Context, server *sync.Server, search string) ([]sync.RemoteCategory, error) {
	return a.listTerms(ctx, server, offerTaxonomyPath, search)
}

// listTerms fetches one page of taxonomy terms from the given endpoint
func (a *WooAdapter) listTerms(ctx context.Context, server *sync.Server, path, search string) ([]sync.RemoteCategory, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(listPageSize))
	if search != "" {
		query.Set("search", search)
	}

	body, _, err := a.doRequest(ctx, server, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	var terms []wooCategory
	if err := json.Unmarshal(body, &terms); err != nil {
		return nil, fmt.Errorf("%w: %v", sync.ErrRemoteInvalidResponse, err)
	}
	out := make([]sync.RemoteCategory, 0, len(terms))
	for i := range terms {
		out = append(out, terms[i].toDomain())
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Request Plumbing
// ---------------------------------------------------------------------------

// doRequest performs one authenticated API call and returns the response
// body and status. Non-2xx statuses other than 404 are returned as errors;
// the caller decides what a 404 means for its operation.
func (a *WooAdapter) doRequest(
	ctx context.Context,
	server *sync.Server,
	method, path string,
	query url.Values,
	payload any,
) ([]byte, int, error) {
	endpoint := server.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", sync.ErrRemoteRequestFailed, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", sync.ErrRemoteRequestFailed, err)
	}
	req.SetBasicAuth(server.ConsumerKey, server.ConsumerSecret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", sync.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: %v", sync.ErrRemoteInvalidResponse, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, resp.StatusCode, fmt.Errorf("%w: %s %s", sync.ErrRemoteRequestFailed, method, path)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, resp.StatusCode, fmt.Errorf("%w: status %d", sync.ErrRemoteUnavailable, resp.StatusCode)
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		var apiErr wooError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return nil, resp.StatusCode, fmt.Errorf("%w: %s - %s",
				sync.ErrRemoteRequestFailed, apiErr.Code, apiErr.Message)
		}
		return nil, resp.StatusCode, fmt.Errorf("%w: status %d", sync.ErrRemoteRequestFailed, resp.StatusCode)
	}
	return body, resp.StatusCode, nil
}

// validateNumericID checks that a remote product ID is numeric, which the
// storefront requires in URL paths.
func validateNumericID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty remote ID", sync.ErrRemoteRequestFailed)
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return fmt.Errorf("%w: invalid remote ID %q", sync.ErrRemoteRequestFailed, id)
	}
	return nil
}
