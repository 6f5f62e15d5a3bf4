package commands_test

import (
	"context"
	"sync"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockVariantRepository struct{ mock.Mock }

func (m *MockVariantRepository) Add(ctx context.Context, v *stock.Variant) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVariantRepository) Update(ctx context.Context, v *stock.Variant) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVariantRepository) Get(ctx context.Context, id kernel.UUID) (*stock.Variant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.Variant), args.Error(1)
}

func (m *MockVariantRepository) GetForUpdate(ctx context.Context, ids ...kernel.UUID) ([]*stock.Variant, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stock.Variant), args.Error(1)
}

// MockUoW satisfies every unit of work flavour used by the handlers.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) VariantRepository() ports.VariantRepository {
	args := m.Called()
	return args.Get(0).(ports.VariantRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockVariantUoWFactory struct{ mock.Mock }

func (m *MockVariantUoWFactory) Create() commands.VariantUoW {
	args := m.Called()
	return args.Get(0).(commands.VariantUoW)
}

type MockPaymentMethodRegistry struct{ mock.Mock }

func (m *MockPaymentMethodRegistry) Get(code string) (ports.PaymentMethodHandler, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.PaymentMethodHandler), args.Error(1)
}

type MockPaymentMethodHandler struct{ mock.Mock }

func (m *MockPaymentMethodHandler) Code() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPaymentMethodHandler) Attempt(
	ctx context.Context,
	o *order.Order,
	amount int64,
	metadata map[string]string,
) (ports.PaymentAttempt, error) {
	args := m.Called(ctx, o, amount, metadata)
	return args.Get(0).(ports.PaymentAttempt), args.Error(1)
}

// recordingLocker grants every lock and remembers the keys in request order.
type recordingLocker struct {
	mu    sync.Mutex
	calls [][]string
}

func (l *recordingLocker) Lock(_ context.Context, keys ...string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, keys)
	return func() {}, nil
}

func (l *recordingLocker) keys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, c := range l.calls {
		out = append(out, c...)
	}
	return out
}

var (
	customerActor = kernel.NewActor("customer-1", kernel.PermissionOwner)
	adminActor    = kernel.NewActor("admin-1", kernel.PermissionUpdateOrder)
)

func newVariant(t *testing.T, onHand int) *stock.Variant {
	t.Helper()
	v, err := stock.RestoreVariant(kernel.NewUUID(), "TSHIRT-M", 2500, "USD", onHand, true)
	require.NoError(t, err)
	return v
}

// newArrangingPaymentOrder returns an order for quantity units of v waiting for payment.
func newArrangingPaymentOrder(t *testing.T, v *stock.Variant, quantity int) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), v.Currency())
	require.NoError(t, err)
	_, err = o.AddItem(v.ID(), v.Price(), quantity)
	require.NoError(t, err)
	require.NoError(t, o.SetCustomer(kernel.NewUUID()))
	address, err := order.NewAddress("Jane Doe", "1 Main St", "", "Springfield", "12345", "US")
	require.NoError(t, err)
	require.NoError(t, o.SetShippingAddress(address))
	method, err := order.NewShippingMethod("standard", 500)
	require.NoError(t, err)
	require.NoError(t, o.SetShippingMethod(method))
	require.NoError(t, o.TransitionTo(order.ArrangingPayment, customerActor))
	return o
}

func addPayment(t *testing.T, o *order.Order, state order.PaymentState, amount int64) {
	t.Helper()
	p, err := order.NewPayment("test-method", amount, state, "", "", nil)
	require.NoError(t, err)
	require.NoError(t, o.AddPayment(p))
}

// newSettledOrder returns an order past the sale point. The sale has been taken
// from v.
func newSettledOrder(t *testing.T, v *stock.Variant, quantity int) *order.Order {
	t.Helper()
	o := newArrangingPaymentOrder(t, v, quantity)
	addPayment(t, o, order.PaymentStateSettled, o.Total())
	require.NoError(t, o.TransitionTo(order.PaymentSettled, kernel.SystemActor()))
	orderID := o.ID()
	_, err := v.RecordMovement(stock.Sale, -quantity, &orderID)
	require.NoError(t, err)
	v.MarkMovementsCommitted()
	o.MarkSaleRecorded()
	o.MarkTransitionsCommitted()
	return o
}

func itemIDs(o *order.Order) []kernel.UUID {
	var ids []kernel.UUID
	for _, l := range o.Lines() {
		for _, it := range l.Items() {
			ids = append(ids, it.ID())
		}
	}
	return ids
}

func paymentAttempt(state order.PaymentState, transactionID string) ports.PaymentAttempt {
	return ports.PaymentAttempt{State: state, TransactionID: transactionID}
}
