package commands_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type addPaymentFixture struct {
	variant     *stock.Variant
	order       *order.Order
	orderRepo   *MockOrderRepository
	variantRepo *MockVariantRepository
	uow         *MockUoW
	factory     *MockUoWFactory
	registry    *MockPaymentMethodRegistry
	method      *MockPaymentMethodHandler
}

func newAddPaymentFixture(t *testing.T) *addPaymentFixture {
	t.Helper()
	f := &addPaymentFixture{
		variant:     newVariant(t, 10),
		orderRepo:   new(MockOrderRepository),
		variantRepo: new(MockVariantRepository),
		uow:         new(MockUoW),
		factory:     new(MockUoWFactory),
		registry:    new(MockPaymentMethodRegistry),
		method:      new(MockPaymentMethodHandler),
	}
	f.order = newArrangingPaymentOrder(t, f.variant, 2)

	f.factory.On("Create").Return(f.uow)
	f.uow.On("OrderRepository").Return(f.orderRepo)
	f.uow.On("VariantRepository").Return(f.variantRepo)
	f.registry.On("Get", "card").Return(f.method, nil)
	f.method.On("Code").Return("card")
	f.orderRepo.On("Get", mock.Anything, f.order.ID()).Return(f.order, nil)
	return f
}

func (f *addPaymentFixture) expectTransaction() {
	f.uow.On("Begin", mock.Anything).Return(nil).Once()
	f.orderRepo.On("GetForUpdate", mock.Anything, f.order.ID()).Return(f.order, nil).Once()
	f.orderRepo.On("Update", mock.Anything, f.order).Return(nil).Once()
	f.uow.On("Commit", mock.Anything).Return(nil).Once()
	f.uow.On("Rollback", mock.Anything).Return(nil).Once()
}

func (f *addPaymentFixture) handler(timeout time.Duration) commands.AddPaymentCommandHandler {
	return commands.NewAddPaymentCommandHandler(f.factory, &recordingLocker{}, f.registry, timeout, slog.Default())
}

func TestAddPaymentCommandHandler_Handle_SettledPaymentAdvancesOrder(t *testing.T) {
	f := newAddPaymentFixture(t)
	total := f.order.Total()
	metadata := map[string]string{"token": "tok_1"}

	f.method.On("Attempt", mock.Anything, f.order, total, metadata).Return(
		paymentAttempt(order.PaymentStateSettled, "tx-1"), nil).Once()
	f.expectTransaction()
	f.variantRepo.On("GetForUpdate", mock.Anything, []kernel.UUID{f.variant.ID()}).
		Return([]*stock.Variant{f.variant}, nil).Once()
	f.variantRepo.On("Update", mock.Anything, f.variant).Return(nil).Once()

	cmd, err := commands.NewAddPaymentCommand(f.order.ID(), "card", metadata)
	require.NoError(t, err)

	p, err := f.handler(time.Second).Handle(t.Context(), cmd)
	require.NoError(t, err)

	assert.Equal(t, order.PaymentStateSettled, p.State())
	assert.Equal(t, total, p.Amount())
	assert.Equal(t, "tx-1", p.TransactionID())
	assert.Equal(t, order.PaymentSettled, f.order.State())
	assert.Equal(t, 8, f.variant.StockOnHand())

	f.uow.AssertExpectations(t)
	f.orderRepo.AssertExpectations(t)
	f.variantRepo.AssertExpectations(t)
}

func TestAddPaymentCommandHandler_Handle_HandlerErrorIsDeclined(t *testing.T) {
	f := newAddPaymentFixture(t)

	f.method.On("Attempt", mock.Anything, f.order, f.order.Total(), mock.Anything).
		Return(paymentAttempt(order.UnknownPaymentState, ""), errors.New("card expired")).Once()
	f.expectTransaction()

	cmd, err := commands.NewAddPaymentCommand(f.order.ID(), "card", nil)
	require.NoError(t, err)

	p, err := f.handler(time.Second).Handle(t.Context(), cmd)
	require.NoError(t, err)

	assert.Equal(t, order.PaymentStateDeclined, p.State())
	assert.Equal(t, "card expired", p.ErrorMessage())
	assert.Equal(t, order.ArrangingPayment, f.order.State())
	assert.Len(t, f.order.Payments(), 1)
	assert.Equal(t, 10, f.variant.StockOnHand())
	f.variantRepo.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
}

func TestAddPaymentCommandHandler_Handle_TimeoutIsDeclined(t *testing.T) {
	f := newAddPaymentFixture(t)

	f.method.On("Attempt", mock.Anything, f.order, f.order.Total(), mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(paymentAttempt(order.UnknownPaymentState, ""), context.DeadlineExceeded).Once()
	f.expectTransaction()

	cmd, err := commands.NewAddPaymentCommand(f.order.ID(), "card", nil)
	require.NoError(t, err)

	p, err := f.handler(20*time.Millisecond).Handle(t.Context(), cmd)
	require.NoError(t, err)

	assert.Equal(t, order.PaymentStateDeclined, p.State())
	assert.Contains(t, p.ErrorMessage(), "timed out")
	assert.Equal(t, order.ArrangingPayment, f.order.State())
}

func TestAddPaymentCommandHandler_Handle_PartialAuthorizationKeepsWaiting(t *testing.T) {
	f := newAddPaymentFixture(t)
	half := f.order.Total() / 2

	attempt := paymentAttempt(order.PaymentStateAuthorized, "tx-2")
	attempt.Amount = half
	f.method.On("Attempt", mock.Anything, f.order, f.order.Total(), mock.Anything).Return(attempt, nil).Once()
	f.expectTransaction()
	f.variantRepo.On("GetForUpdate", mock.Anything, []kernel.UUID{f.variant.ID()}).
		Return([]*stock.Variant{f.variant}, nil).Once()

	cmd, err := commands.NewAddPaymentCommand(f.order.ID(), "card", nil)
	require.NoError(t, err)

	p, err := f.handler(time.Second).Handle(t.Context(), cmd)
	require.NoError(t, err)

	assert.Equal(t, half, p.Amount())
	assert.Equal(t, order.ArrangingPayment, f.order.State())
	assert.Equal(t, 10, f.variant.StockOnHand())
	f.variantRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAddPaymentCommandHandler_Handle_KeepsPaymentWhenOrderSettledMeanwhile(t *testing.T) {
	f := newAddPaymentFixture(t)
	total := f.order.Total()

	// Another payment settled the order while the provider was being called.
	locked := newSettledOrder(t, newVariant(t, 10), 2)
	require.Len(t, locked.Payments(), 1)

	f.method.On("Attempt", mock.Anything, f.order, total, mock.Anything).Return(
		paymentAttempt(order.PaymentStateSettled, "tx-late"), nil).Once()
	f.uow.On("Begin", mock.Anything).Return(nil).Once()
	f.orderRepo.On("GetForUpdate", mock.Anything, f.order.ID()).Return(locked, nil).Once()
	f.orderRepo.On("Update", mock.Anything, locked).Return(nil).Once()
	f.uow.On("Commit", mock.Anything).Return(nil).Once()
	f.uow.On("Rollback", mock.Anything).Return(nil).Once()

	cmd, err := commands.NewAddPaymentCommand(f.order.ID(), "card", nil)
	require.NoError(t, err)

	p, err := f.handler(time.Second).Handle(t.Context(), cmd)
	require.NoError(t, err)

	assert.Equal(t, order.PaymentStateSettled, p.State())
	assert.Equal(t, "tx-late", p.TransactionID())
	require.Len(t, locked.Payments(), 2)
	assert.Equal(t, p.ID(), locked.Payments()[1].ID())
	assert.Equal(t, order.PaymentSettled, locked.State())
	assert.Empty(t, locked.UncommittedTransitions())
	assert.Equal(t, order.ArrangingPayment, f.order.State())

	f.uow.AssertExpectations(t)
	f.orderRepo.AssertExpectations(t)
	f.variantRepo.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
	f.variantRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAddPaymentCommandHandler_Handle_OrderNotAwaitingPayment(t *testing.T) {
	f := newAddPaymentFixture(t)
	require.NoError(t, f.order.TransitionTo(order.AddingItems, customerActor))

	cmd, err := commands.NewAddPaymentCommand(f.order.ID(), "card", nil)
	require.NoError(t, err)

	_, err = f.handler(time.Second).Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	f.method.AssertNotCalled(t, "Attempt", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestAddPaymentCommandHandler_Handle_UnknownMethod(t *testing.T) {
	registry := new(MockPaymentMethodRegistry)
	registry.On("Get", "cash").Return(nil, errs.NewObjectNotFoundError("paymentMethod", "cash")).Once()

	handler := commands.NewAddPaymentCommandHandler(new(MockUoWFactory), &recordingLocker{}, registry, 0, slog.Default())
	cmd, err := commands.NewAddPaymentCommand(kernel.NewUUID(), "cash", nil)
	require.NoError(t, err)

	_, err = handler.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}
