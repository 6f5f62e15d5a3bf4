package kernel_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCurrencyCode(t *testing.T) {
	t.Run("should accept upper-case ISO codes", func(t *testing.T) {
		c, err := kernel.NewCurrencyCode("USD")

		require.NoError(t, err)
		assert.Equal(t, "USD", c.String())
	})

	for _, in := range []string{"", "us", "usd", "EURO", "U1D"} {
		t.Run("should reject "+in, func(t *testing.T) {
			_, err := kernel.NewCurrencyCode(in)

			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
			assert.Contains(t, err.Error(), "currency code")
		})
	}
}

func TestActor(t *testing.T) {
	t.Run("static actor holds only granted permissions", func(t *testing.T) {
		admin := kernel.NewActor("admin-1", kernel.PermissionUpdateOrder)

		assert.Equal(t, "admin-1", admin.ID())
		assert.True(t, admin.HasPermission(kernel.PermissionUpdateOrder))
		assert.False(t, admin.HasPermission(kernel.PermissionUpdateCatalog))
	})

	t.Run("system actor holds every permission", func(t *testing.T) {
		sys := kernel.SystemActor()

		assert.Equal(t, "system", sys.ID())
		assert.True(t, sys.HasPermission(kernel.PermissionOwner))
		assert.True(t, sys.HasPermission(kernel.PermissionUpdateOrder))
	})
}
