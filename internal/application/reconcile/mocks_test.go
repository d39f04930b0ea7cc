package reconcile

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/sync"
)

// MockItemRepository is a mock implementation of catalog.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Get(ctx context.Context, code string) (*catalog.Item, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) List(ctx context.Context, filter catalog.ItemFilter) ([]catalog.Item, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockBundleRepository is a mock implementation of catalog.BundleRepository
type MockBundleRepository struct {
	mock.Mock
}

func (m *MockBundleRepository) GetByParent(ctx context.Context, parentCode string) (*catalog.BundleDefinition, error) {
	args := m.Called(ctx, parentCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.BundleDefinition), args.Error(1)
}

func (m *MockBundleRepository) ExistsByParent(ctx context.Context, parentCode string) (bool, error) {
	args := m.Called(ctx, parentCode)
	return args.Bool(0), args.Error(1)
}

// MockSalesHistoryRepository is a mock implementation of catalog.SalesHistoryRepository
type MockSalesHistoryRepository struct {
	mock.Mock
}

func (m *MockSalesHistoryRepository) RecentInvoicesForItem(ctx context.Context, itemCode string, limit int) ([]string, error) {
	args := m.Called(ctx, itemCode, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSalesHistoryRepository) LinesForInvoices(ctx context.Context, invoiceIDs []string, excludeItemCode string) ([]catalog.SalesLine, error) {
	args := m.Called(ctx, invoiceIDs, excludeItemCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.SalesLine), args.Error(1)
}

// MockTranslationRepository is a mock implementation of catalog.TranslationRepository
type MockTranslationRepository struct {
	mock.Mock
}

func (m *MockTranslationRepository) Lookup(ctx context.Context, sourceText string) (string, bool, error) {
	args := m.Called(ctx, sourceText)
	return args.String(0), args.Bool(1), args.Error(2)
}

// MockLinkRepository is a mock implementation of sync.LinkRepository
type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) Get(ctx context.Context, id uuid.UUID) (*sync.Link, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.Link), args.Error(1)
}

func (m *MockLinkRepository) FindByItemAndServer(ctx context.Context, itemCode string, serverID uuid.UUID) (*sync.Link, bool, error) {
	args := m.Called(ctx, itemCode, serverID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*sync.Link), args.Bool(1), args.Error(2)
}

func (m *MockLinkRepository) FindByRemote(ctx context.Context, serverID uuid.UUID, remoteID string) (*sync.Link, bool, error) {
	args := m.Called(ctx, serverID, remoteID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*sync.Link), args.Bool(1), args.Error(2)
}

func (m *MockLinkRepository) ListByItem(ctx context.Context, itemCode string) ([]sync.Link, error) {
	args := m.Called(ctx, itemCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sync.Link), args.Error(1)
}

func (m *MockLinkRepository) ListBound(ctx context.Context, serverID uuid.UUID, limit int) ([]sync.Link, error) {
	args := m.Called(ctx, serverID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sync.Link), args.Error(1)
}

func (m *MockLinkRepository) FindBoundByItems(ctx context.Context, serverID uuid.UUID, itemCodes []string) (map[string]sync.Link, error) {
	args := m.Called(ctx, serverID, itemCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]sync.Link), args.Error(1)
}

func (m *MockLinkRepository) Save(ctx context.Context, link *sync.Link) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockLinkRepository) RecordMarker(ctx context.Context, linkID uuid.UUID, marker string) error {
	args := m.Called(ctx, linkID, marker)
	return args.Error(0)
}

func (m *MockLinkRepository) ClearMarker(ctx context.Context, linkID uuid.UUID) error {
	args := m.Called(ctx, linkID)
	return args.Error(0)
}

// MockServerRepository is a mock implementation of sync.ServerRepository
type MockServerRepository struct {
	mock.Mock
}

func (m *MockServerRepository) Get(ctx context.Context, id uuid.UUID) (*sync.Server, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.Server), args.Error(1)
}

func (m *MockServerRepository) GetByScope(ctx context.Context, scope string) (*sync.Server, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.Server), args.Error(1)
}

func (m *MockServerRepository) List(ctx context.Context, enabledOnly bool) ([]sync.Server, error) {
	args := m.Called(ctx, enabledOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sync.Server), args.Error(1)
}

func (m *MockServerRepository) Save(ctx context.Context, server *sync.Server) error {
	args := m.Called(ctx, server)
	return args.Error(0)
}

// MockStorefrontGateway is a mock implementation of sync.StorefrontGateway
type MockStorefrontGateway struct {
	mock.Mock
}

func (m *MockStorefrontGateway) GetProduct(ctx context.Context, server *sync.Server, remoteID string) (*sync.RemoteProduct, bool, error) {
	args := m.Called(ctx, server, remoteID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*sync.RemoteProduct), args.Bool(1), args.Error(2)
}

func (m *MockStorefrontGateway) CreateProduct(ctx context.Context, server *sync.Server, payload map[string]any) (*sync.RemoteProduct, error) {
	args := m.Called(ctx, server, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.RemoteProduct), args.Error(1)
}

func (m *MockStorefrontGateway) UpdateProduct(ctx context.Context, server *sync.Server, remoteID string, fields map[string]any) (*sync.RemoteProduct, error) {
	args := m.Called(ctx, server, remoteID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.RemoteProduct), args.Error(1)
}

func (m *MockStorefrontGateway) ListCategories(ctx context.Context, server *sync.Server, search string) ([]sync.RemoteCategory, error) {
	args := m.Called(ctx, server, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sync.RemoteCategory), args.Error(1)
}

func (m *MockStorefrontGateway) CreateCategory(ctx context.Context, server *sync.Server, name string, parentID int64) (*sync.RemoteCategory, error) {
	args := m.Called(ctx, server, name, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.RemoteCategory), args.Error(1)
}

func (m *MockStorefrontGateway) ListOfferCategories(ctx context.Context, server *sync.Server, search string) ([]sync.RemoteCategory, error) {
	args := m.Called(ctx, server, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sync.RemoteCategory), args.Error(1)
}
