package commands_test

import (
	"log/slog"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func variantUoW(t *testing.T, v *stock.Variant) (*MockVariantUoWFactory, *MockUoW, *MockVariantRepository) {
	t.Helper()
	repo := new(MockVariantRepository)
	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("VariantRepository").Return(repo).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()
	if v != nil {
		repo.On("GetForUpdate", mock.Anything, []kernel.UUID{v.ID()}).Return([]*stock.Variant{v}, nil).Once()
	}

	factory := new(MockVariantUoWFactory)
	factory.On("Create").Return(uow).Once()
	return factory, uow, repo
}

func TestAdjustStockOnHandCommandHandler_Handle(t *testing.T) {
	t.Run("records an adjustment for the difference", func(t *testing.T) {
		v := newVariant(t, 10)
		factory, uow, repo := variantUoW(t, v)
		repo.On("Update", mock.Anything, v).Return(nil).Once()
		uow.On("Commit", mock.Anything).Return(nil).Once()

		handler := commands.NewAdjustStockOnHandCommandHandler(factory, &recordingLocker{}, slog.Default())
		cmd, err := commands.NewAdjustStockOnHandCommand(v.ID(), 15)
		require.NoError(t, err)

		result, err := handler.Handle(t.Context(), cmd)
		require.NoError(t, err)
		assert.Equal(t, commands.AdjustStockOnHandResult{StockOnHand: 15, MovementsCreated: 1}, result)

		require.Len(t, v.UncommittedMovements(), 1)
		mv := v.UncommittedMovements()[0]
		assert.Equal(t, stock.Adjustment, mv.Type())
		assert.Equal(t, 5, mv.Quantity())
		uow.AssertExpectations(t)
	})

	t.Run("same value writes nothing", func(t *testing.T) {
		v := newVariant(t, 10)
		factory, uow, repo := variantUoW(t, v)

		handler := commands.NewAdjustStockOnHandCommandHandler(factory, &recordingLocker{}, slog.Default())
		cmd, err := commands.NewAdjustStockOnHandCommand(v.ID(), 10)
		require.NoError(t, err)

		result, err := handler.Handle(t.Context(), cmd)
		require.NoError(t, err)
		assert.Equal(t, commands.AdjustStockOnHandResult{StockOnHand: 10}, result)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		uow.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("negative value is rejected", func(t *testing.T) {
		v := newVariant(t, 10)
		factory, uow, repo := variantUoW(t, v)

		handler := commands.NewAdjustStockOnHandCommandHandler(factory, &recordingLocker{}, slog.Default())
		cmd, err := commands.NewAdjustStockOnHandCommand(v.ID(), -1)
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), cmd)
		require.EqualError(t, err, "stockOnHand cannot be a negative value")
		kind, _ := errs.KindOf(err)
		assert.Equal(t, errs.KindNegativeStockRejected, kind)

		assert.Equal(t, 10, v.StockOnHand())
		assert.Empty(t, v.UncommittedMovements())
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		uow.AssertNotCalled(t, "Commit", mock.Anything)
	})
}

func TestRecordStockMovementCommandHandler_Handle_Return(t *testing.T) {
	v := newVariant(t, 4)
	factory, uow, repo := variantUoW(t, v)
	repo.On("Update", mock.Anything, v).Return(nil).Once()
	uow.On("Commit", mock.Anything).Return(nil).Once()

	orderRef := kernel.NewUUID()
	handler := commands.NewRecordStockMovementCommandHandler(factory, &recordingLocker{})
	cmd, err := commands.NewRecordStockMovementCommand(v.ID(), stock.Return, 2, &orderRef)
	require.NoError(t, err)

	result, err := handler.Handle(t.Context(), cmd)
	require.NoError(t, err)

	assert.Equal(t, 6, result.StockOnHand)
	assert.Equal(t, stock.Return, result.Movement.Type())
	assert.Equal(t, &orderRef, result.Movement.OrderRef())
	uow.AssertExpectations(t)
}

func TestRegisterVariantCommandHandler_Handle_RecordsOpeningStock(t *testing.T) {
	repo := new(MockVariantRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("VariantRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*stock.Variant")).Return(nil).Once(),
		uow.On("Commit", mock.Anything).Return(nil).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)
	factory := new(MockVariantUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewRegisterVariantCommandHandler(factory)
	cmd, err := commands.NewRegisterVariantCommand(kernel.NewUUID(), "MUG-01", 1299, "EUR", 7, true)
	require.NoError(t, err)

	v, err := handler.Handle(t.Context(), cmd)
	require.NoError(t, err)

	assert.Equal(t, 7, v.StockOnHand())
	require.Len(t, v.UncommittedMovements(), 1)
	assert.Equal(t, stock.Adjustment, v.UncommittedMovements()[0].Type())
	assert.Equal(t, 7, v.UncommittedMovements()[0].Quantity())
	uow.AssertExpectations(t)
}
