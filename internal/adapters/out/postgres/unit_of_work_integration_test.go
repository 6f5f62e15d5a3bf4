package postgres_test

import (
	"context"
	"errors"
	"testing"

	postgres_adapter "fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/stockrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...kernel.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// UnitOfWorkIntegrationTestSuite runs the GORM unit of work against a real
// PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	publisher *MockEventPublisher
	factory   *postgres_adapter.GormUnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	models := append(orderrepo.Models(), stockrepo.Models()...)
	suite.Require().NoError(db.AutoMigrate(models...))
}

// SetupTest truncates every table and installs a fresh publisher mock.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec(`TRUNCATE TABLE orders, order_lines, order_items, payments, order_adjustments,
		fulfillments, order_state_transitions, variants, stock_movements`).Error
	suite.Require().NoError(err)

	suite.publisher = new(MockEventPublisher)
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(suite.db, suite.publisher, nil)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_WritesBothAggregatesAndPublishesEvents() {
	ctx := context.Background()
	v := newVariant(suite, 5)
	o := newOrder(suite, v)

	var published []kernel.DomainEvent
	suite.publisher.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			published = args.Get(1).([]kernel.DomainEvent)
		}).
		Return(nil).Once()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.VariantRepository().Add(ctx, v))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))

	suite.publisher.AssertExpectations(suite.T())
	suite.Require().Len(published, 1)
	suite.Equal(stock.StockMovementRecordedEvent, published[0].EventName())
	suite.Empty(v.UncommittedMovements())
	suite.Empty(v.DomainEvents())

	gotOrder, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(1, gotOrder.ActiveItemCount())
	gotVariant, err := suite.factory.Create().VariantRepository().Get(ctx, v.ID())
	suite.Require().NoError(err)
	suite.Equal(5, gotVariant.StockOnHand())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_MarksTransitionsCommitted() {
	ctx := context.Background()
	v := newVariant(suite, 5)
	o := newOrder(suite, v)
	suite.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.VariantRepository().Add(ctx, v))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(o.CancelAllItems())
	suite.Require().NoError(o.TransitionTo(order.Cancelled, kernel.SystemActor()))
	suite.Require().Len(o.UncommittedTransitions(), 1)

	uow = suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))

	suite.Empty(o.UncommittedTransitions())
	var count int64
	suite.Require().NoError(suite.db.Model(&orderrepo.StateTransitionDTO{}).
		Where("order_id = ?", o.ID().Bytes()).Count(&count).Error)
	suite.Equal(int64(1), count)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_DiscardsWritesAndEvents() {
	ctx := context.Background()
	v := newVariant(suite, 5)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.VariantRepository().Add(ctx, v))
	suite.Require().NoError(uow.Rollback(ctx))

	_, err := suite.factory.Create().VariantRepository().Get(ctx, v.ID())
	suite.ErrorIs(err, errs.ErrObjectNotFound)
	suite.publisher.AssertNotCalled(suite.T(), "Publish", mock.Anything, mock.Anything)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_PublishFailureKeepsTransaction() {
	ctx := context.Background()
	v := newVariant(suite, 3)
	suite.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.VariantRepository().Add(ctx, v))
	suite.Require().NoError(uow.Commit(ctx))

	got, err := suite.factory.Create().VariantRepository().Get(ctx, v.ID())
	suite.Require().NoError(err)
	suite.Equal(3, got.StockOnHand())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RepositoryIsolation() {
	ctx := context.Background()
	v := newVariant(suite, 1)

	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()
	suite.Require().NoError(uow1.Begin(ctx))
	suite.Require().NoError(uow2.Begin(ctx))

	suite.Require().NoError(uow1.VariantRepository().Add(ctx, v))
	_, err := uow2.VariantRepository().Get(ctx, v.ID())
	suite.ErrorIs(err, errs.ErrObjectNotFound)

	suite.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	suite.Require().NoError(uow1.Commit(ctx))
	suite.Require().NoError(uow2.Rollback(ctx))
}

func newVariant(suite *UnitOfWorkIntegrationTestSuite, onHand int) *stock.Variant {
	v, err := stock.NewVariant(kernel.NewUUID(), "SKU-"+kernel.NewUUID().String()[:8], 1500, "USD", true)
	suite.Require().NoError(err)
	_, err = v.SetStockOnHand(onHand)
	suite.Require().NoError(err)
	return v
}

func newOrder(suite *UnitOfWorkIntegrationTestSuite, v *stock.Variant) *order.Order {
	o, err := order.NewOrder(kernel.NewUUID(), v.Currency())
	suite.Require().NoError(err)
	_, err = o.AddItem(v.ID(), v.Price(), 1)
	suite.Require().NoError(err)
	return o
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
