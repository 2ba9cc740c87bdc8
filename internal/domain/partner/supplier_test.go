package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSupplier(t *testing.T) {
	t.Run("creates supplier with valid inputs", func(t *testing.T) {
		supplier, err := NewSupplier("SUP-001", "Acme Supply Co")
		require.NoError(t, err)
		require.NotNil(t, supplier)

		assert.Equal(t, "SUP-001", supplier.Code)
		assert.Equal(t, "Acme Supply Co", supplier.Name)
		assert.Equal(t, SupplierStatusActive, supplier.Status)
		assert.NotEmpty(t, supplier.ID)
		assert.Equal(t, 1, supplier.GetVersion())
	})

	t.Run("converts code to uppercase", func(t *testing.T) {
		supplier, err := NewSupplier("sup-001", "Acme Supply Co")
		require.NoError(t, err)
		assert.Equal(t, "SUP-001", supplier.Code)
	})

	t.Run("publishes SupplierCreated event", func(t *testing.T) {
		supplier, err := NewSupplier("SUP-002", "Acme Supply Co")
		require.NoError(t, err)

		events := supplier.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeSupplierCreated, events[0].EventType())
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewSupplier("", "Acme Supply Co")
		require.Error(t, err)
	})

	t.Run("fails with invalid code characters", func(t *testing.T) {
		_, err := NewSupplier("SUP 001", "Acme Supply Co")
		require.Error(t, err)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewSupplier("SUP-001", "")
		require.Error(t, err)
	})
}

func TestSupplier_SetContact(t *testing.T) {
	supplier, err := NewSupplier("SUP-001", "Acme Supply Co")
	require.NoError(t, err)

	t.Run("accepts valid contact info", func(t *testing.T) {
		err := supplier.SetContact("Jane Doe", "+1 (555) 123-4567", "jane@acme.example")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", supplier.ContactName)
		assert.Equal(t, "+1 (555) 123-4567", supplier.Phone)
		assert.Equal(t, "jane@acme.example", supplier.Email)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		require.Error(t, supplier.SetContact("Jane Doe", "", "not-an-email"))
	})

	t.Run("rejects phone with letters", func(t *testing.T) {
		require.Error(t, supplier.SetContact("Jane Doe", "call-me", ""))
	})
}

func TestSupplier_StatusTransitions(t *testing.T) {
	supplier, err := NewSupplier("SUP-001", "Acme Supply Co")
	require.NoError(t, err)

	require.Error(t, supplier.Activate())

	require.NoError(t, supplier.Deactivate())
	assert.False(t, supplier.IsActive())
	require.Error(t, supplier.Deactivate())

	require.NoError(t, supplier.Activate())
	assert.True(t, supplier.IsActive())
}
