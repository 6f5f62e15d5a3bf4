package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	cause := errors.New("row locked")

	tests := []struct {
		name     string
		err      error
		sentinel error
		want     string
	}{
		{
			name:     "order not found",
			err:      errs.NewObjectNotFoundError("orderId", "7f1c"),
			sentinel: errs.ErrObjectNotFound,
			want:     "object not found: 7f1c",
		},
		{
			name:     "variant not found with cause",
			err:      errs.NewObjectNotFoundErrorWithCause("variantId", "a9", cause),
			sentinel: errs.ErrObjectNotFound,
			want:     "object not found: param is: variantId, ID is: a9 (cause: row locked)",
		},
		{
			name:     "non-string id",
			err:      errs.NewObjectNotFoundError("sequence", 42),
			sentinel: errs.ErrObjectNotFound,
			want:     "object not found: %!s(int=42)",
		},
		{
			name:     "invalid currency",
			err:      errs.NewValueIsInvalidError("currency"),
			sentinel: errs.ErrValueIsInvalid,
			want:     "value is invalid: currency",
		},
		{
			name:     "invalid sku with cause",
			err:      errs.NewValueIsInvalidErrorWithCause("sku", errors.New("already registered")),
			sentinel: errs.ErrValueIsInvalid,
			want:     "value is invalid: sku (cause: already registered)",
		},
		{
			name:     "quantity out of range",
			err:      errs.NewValueIsOutOfRangeError("quantity", 0, 1, 999),
			sentinel: errs.ErrValueIsOutOfRange,
			want:     "value is invalid: 0 is quantity, min value is 1, max value is 999",
		},
		{
			name:     "page out of range with cause",
			err:      errs.NewValueIsOutOfRangeErrorWithCause("page", -2, 1, 10, cause),
			sentinel: errs.ErrValueIsOutOfRange,
			want:     "value is invalid: -2 is page, min value is 1, max value is 10 (cause: row locked)",
		},
		{
			name:     "method code required",
			err:      errs.NewValueIsRequiredError("methodCode"),
			sentinel: errs.ErrValueIsRequired,
			want:     "value is required: methodCode",
		},
		{
			name:     "address required with cause",
			err:      errs.NewValueIsRequiredErrorWithCause("shippingAddress", cause),
			sentinel: errs.ErrValueIsRequired,
			want:     "value is required: shippingAddress (cause: row locked)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			require.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.sentinel, errors.Unwrap(tt.err))
		})
	}
}

func TestErrorFields(t *testing.T) {
	cause := errors.New("timeout")

	notFound := errs.NewObjectNotFoundErrorWithCause("orderId", "o-1", cause)
	assert.Equal(t, "orderId", notFound.ParamName)
	assert.Equal(t, "o-1", notFound.ID)
	assert.Equal(t, cause, notFound.Cause)

	outOfRange := errs.NewValueIsOutOfRangeError("pageSize", 900, 1, 500)
	assert.Equal(t, 900, outOfRange.Value)
	assert.Equal(t, 1, outOfRange.Min)
	assert.Equal(t, 500, outOfRange.Max)
	require.NoError(t, outOfRange.Cause)

	// The cause is kept for messages only; errors.Is matches the sentinel.
	invalid := errs.NewValueIsInvalidErrorWithCause("state", cause)
	assert.NotErrorIs(t, invalid, cause)
}

func TestValuesAreRenderedOnOneLine(t *testing.T) {
	err := errs.NewValueIsOutOfRangeError("trackingCode", "TRK\nINJECTED", 0, 10)
	assert.Contains(t, err.Error(), "TRK INJECTED")
	assert.NotContains(t, err.Error(), "\n")
}

func TestSentinelMessages(t *testing.T) {
	assert.Equal(t, "object not found", errs.ErrObjectNotFound.Error())
	assert.Equal(t, "value is invalid", errs.ErrValueIsInvalid.Error())
	assert.Equal(t, "value is out of range", errs.ErrValueIsOutOfRange.Error())
	assert.Equal(t, "value is required", errs.ErrValueIsRequired.Error())
}

func TestKindedErrors(t *testing.T) {
	t.Run("illegal state transition is NoSuchEdge", func(t *testing.T) {
		err := errs.NewIllegalStateTransitionError("AddingItems", "Delivered")

		kind, ok := errs.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, errs.KindNoSuchEdge, kind)
		require.ErrorIs(t, err, errs.ErrIllegalStateTransition)
		assert.Equal(t, `Cannot transition Order from "AddingItems" to "Delivered"`, err.Error())
	})

	t.Run("invalid transition keeps guard message verbatim", func(t *testing.T) {
		msg := `Cannot transition Order to the "Cancelled" state unless all OrderItems are cancelled`
		err := errs.NewInvalidTransitionError("PaymentSettled", "Cancelled", msg)

		kind, ok := errs.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, errs.KindGuardFailed, kind)
		assert.Equal(t, msg, err.Error())
		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("negative stock", func(t *testing.T) {
		err := errs.NewNegativeStockError(-1)

		kind, ok := errs.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, errs.KindNegativeStockRejected, kind)
		assert.Equal(t, "stockOnHand cannot be a negative value", err.Error())
	})

	t.Run("permission denied", func(t *testing.T) {
		err := errs.NewPermissionDeniedError("UpdateOrder")

		kind, ok := errs.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, errs.KindPermissionDenied, kind)
		require.ErrorIs(t, err, errs.ErrPermissionDenied)
	})

	t.Run("kind survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("transition order: %w", errs.NewIllegalStateTransitionError("A", "B"))

		kind, ok := errs.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, errs.KindNoSuchEdge, kind)
	})

	t.Run("unclassified errors have no kind", func(t *testing.T) {
		_, ok := errs.KindOf(errs.NewValueIsRequiredError("x"))
		assert.False(t, ok)
	})
}
