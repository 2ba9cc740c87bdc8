package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/backend/internal/domain/audit"
	"github.com/stockledger/backend/internal/domain/partner"
	"github.com/stockledger/backend/internal/domain/shared"
)

// MockSupplierRepository is a mock implementation of partner.SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByCode(ctx context.Context, code string) (*partner.Supplier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByStatus(ctx context.Context, status partner.SupplierStatus, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) SaveWithLock(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
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

func TestSupplierService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a supplier with contact details", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		recorder := new(MockAuditRecorder)
		service := NewSupplierService(repo, recorder)

		repo.On("ExistsByCode", ctx, "SUP-001").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*partner.Supplier")).Return(nil)
		recorder.On("Record", ctx, mock.MatchedBy(func(log *audit.AuditLog) bool {
			return log.Action == audit.ActionCreate && log.EntityType == "Supplier"
		})).Return(nil)

		resp, err := service.Create(ctx, CreateSupplierRequest{
			Code:        "SUP-001",
			Name:        "Acme Supply Co",
			ContactName: "Jane Doe",
			Phone:       "+1 555 0100",
			Email:       "jane@acme.example",
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "SUP-001", resp.Code)
		assert.Equal(t, "Jane Doe", resp.ContactName)
		assert.Equal(t, "active", resp.Status)
		repo.AssertExpectations(t)
		recorder.AssertExpectations(t)
	})

	t.Run("rejects duplicate code", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		service := NewSupplierService(repo, nil)

		repo.On("ExistsByCode", ctx, "SUP-001").Return(true, nil)

		_, err := service.Create(ctx, CreateSupplierRequest{Code: "SUP-001", Name: "Acme"}, nil)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})
}

func TestSupplierService_Update(t *testing.T) {
	ctx := context.Background()

	supplier, err := partner.NewSupplier("SUP-001", "Acme Supply Co")
	require.NoError(t, err)
	supplier.ClearDomainEvents()

	repo := new(MockSupplierRepository)
	recorder := new(MockAuditRecorder)
	service := NewSupplierService(repo, recorder)

	repo.On("FindByID", ctx, supplier.ID).Return(supplier, nil)
	repo.On("SaveWithLock", ctx, supplier).Return(nil)
	recorder.On("Record", ctx, mock.MatchedBy(func(log *audit.AuditLog) bool {
		return log.Action == audit.ActionUpdate && log.Before["name"] == "Acme Supply Co"
	})).Return(nil)

	resp, err := service.Update(ctx, supplier.ID, UpdateSupplierRequest{Name: "Acme Industrial"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme Industrial", resp.Name)
	recorder.AssertExpectations(t)
}

func TestSupplierService_Deactivate(t *testing.T) {
	ctx := context.Background()

	supplier, err := partner.NewSupplier("SUP-001", "Acme Supply Co")
	require.NoError(t, err)
	supplier.ClearDomainEvents()

	repo := new(MockSupplierRepository)
	service := NewSupplierService(repo, nil)

	repo.On("FindByID", ctx, supplier.ID).Return(supplier, nil)
	repo.On("SaveWithLock", ctx, supplier).Return(nil)

	resp, err := service.Deactivate(ctx, supplier.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)
}

func TestSupplierService_List(t *testing.T) {
	ctx := context.Background()

	s1, _ := partner.NewSupplier("SUP-001", "Acme Supply Co")
	s2, _ := partner.NewSupplier("SUP-002", "Globex Materials")

	repo := new(MockSupplierRepository)
	service := NewSupplierService(repo, nil)

	repo.On("FindAll", ctx, mock.AnythingOfType("shared.Filter")).Return([]partner.Supplier{*s1, *s2}, nil)
	repo.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(2), nil)

	result, err := service.List(ctx, SupplierListFilter{})
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, int64(2), result.Total)
}
