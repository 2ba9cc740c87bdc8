package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/backend/internal/domain/audit"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/shared"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCodeForUpdate(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByStatus(ctx context.Context, status catalog.ProductStatus, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindLowStock(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockAuditRecorder is a mock implementation of audit.Recorder
type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, log *audit.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a product and records an audit fact", func(t *testing.T) {
		repo := new(MockProductRepository)
		recorder := new(MockAuditRecorder)
		service := NewProductService(repo, recorder)

		repo.On("ExistsByCode", ctx, "SKU-001").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)
		recorder.On("Record", ctx, mock.MatchedBy(func(log *audit.AuditLog) bool {
			return log.Action == audit.ActionCreate && log.EntityType == "Product"
		})).Return(nil)

		resp, err := service.Create(ctx, CreateProductRequest{
			Code:      "SKU-001",
			Name:      "Widget",
			UnitPrice: decimal.NewFromFloat(9.99),
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "SKU-001", resp.Code)
		assert.Equal(t, "Widget", resp.Name)
		assert.Equal(t, 0, resp.CurrentStock)
		assert.Equal(t, "active", resp.Status)
		repo.AssertExpectations(t)
		recorder.AssertExpectations(t)
	})

	t.Run("rejects duplicate code", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := NewProductService(repo, nil)

		repo.On("ExistsByCode", ctx, "SKU-001").Return(true, nil)

		_, err := service.Create(ctx, CreateProductRequest{
			Code:      "SKU-001",
			Name:      "Widget",
			UnitPrice: decimal.NewFromInt(1),
		}, nil)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("applies optional fields", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := NewProductService(repo, nil)

		repo.On("ExistsByCode", ctx, "SKU-002").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		maxStock := 500
		resp, err := service.Create(ctx, CreateProductRequest{
			Code:        "SKU-002",
			Name:        "Gadget",
			Description: "A gadget",
			Unit:        "box",
			UnitPrice:   decimal.NewFromInt(25),
			MinStock:    10,
			MaxStock:    &maxStock,
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "box", resp.Unit)
		assert.Equal(t, 10, resp.MinStock)
		require.NotNil(t, resp.MaxStock)
		assert.Equal(t, 500, *resp.MaxStock)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("updates name and price with audit before state", func(t *testing.T) {
		product, err := catalog.NewProduct("SKU-001", "Widget", decimal.NewFromInt(10))
		require.NoError(t, err)
		product.ClearDomainEvents()

		repo := new(MockProductRepository)
		recorder := new(MockAuditRecorder)
		service := NewProductService(repo, recorder)

		repo.On("FindByID", ctx, product.ID).Return(product, nil)
		repo.On("SaveWithLock", ctx, product).Return(nil)
		recorder.On("Record", ctx, mock.MatchedBy(func(log *audit.AuditLog) bool {
			return log.Action == audit.ActionUpdate &&
				log.Before["name"] == "Widget" &&
				log.After["name"] == "Widget Mk2"
		})).Return(nil)

		newPrice := decimal.NewFromInt(12)
		resp, err := service.Update(ctx, product.ID, UpdateProductRequest{
			Name:      "Widget Mk2",
			UnitPrice: &newPrice,
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "Widget Mk2", resp.Name)
		assert.True(t, resp.UnitPrice.Equal(newPrice))
		recorder.AssertExpectations(t)
	})

	t.Run("propagates not found", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := NewProductService(repo, nil)

		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := service.Update(ctx, id, UpdateProductRequest{Name: "x"}, nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("lists products with pagination", func(t *testing.T) {
		p1, _ := catalog.NewProduct("SKU-001", "Widget", decimal.NewFromInt(10))
		p2, _ := catalog.NewProduct("SKU-002", "Gadget", decimal.NewFromInt(20))

		repo := new(MockProductRepository)
		service := NewProductService(repo, nil)

		repo.On("FindAll", ctx, mock.AnythingOfType("shared.Filter")).Return([]catalog.Product{*p1, *p2}, nil)
		repo.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(2), nil)

		result, err := service.List(ctx, ProductListFilter{Page: 1, PageSize: 20})
		require.NoError(t, err)

		assert.Len(t, result.Items, 2)
		assert.Equal(t, int64(2), result.Total)
	})

	t.Run("filters low stock products", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := NewProductService(repo, nil)

		repo.On("FindLowStock", ctx, mock.AnythingOfType("shared.Filter")).Return([]catalog.Product{}, nil)
		repo.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(0), nil)

		result, err := service.List(ctx, ProductListFilter{LowStock: true})
		require.NoError(t, err)
		assert.Empty(t, result.Items)
		repo.AssertCalled(t, "FindLowStock", ctx, mock.AnythingOfType("shared.Filter"))
	})
}

func TestProductService_Deactivate(t *testing.T) {
	ctx := context.Background()

	product, err := catalog.NewProduct("SKU-001", "Widget", decimal.NewFromInt(10))
	require.NoError(t, err)
	product.ClearDomainEvents()

	repo := new(MockProductRepository)
	recorder := new(MockAuditRecorder)
	service := NewProductService(repo, recorder)

	repo.On("FindByID", ctx, product.ID).Return(product, nil)
	repo.On("SaveWithLock", ctx, product).Return(nil)
	recorder.On("Record", ctx, mock.MatchedBy(func(log *audit.AuditLog) bool {
		return log.Action == audit.ActionUpdate && log.After["status"] == "inactive"
	})).Return(nil)

	resp, err := service.Deactivate(ctx, product.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)
	recorder.AssertExpectations(t)
}
