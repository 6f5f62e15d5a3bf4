package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	httpadapter "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/eventbus"
	"fulfillment/internal/adapters/out/kafka"
	"fulfillment/internal/adapters/out/metrics"
	"fulfillment/internal/adapters/out/payment"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/stockrepo"
	"fulfillment/internal/adapters/out/redislock"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"
	"fulfillment/internal/pkg/keylock"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	logger     *slog.Logger
	uowFactory *postgres.GormUnitOfWorkFactory
	locker     ports.AggregateLocker
	registry   *payment.Registry
	metricsReg *prometheus.Registry

	closers []func() error
}

// NewCompositionRoot wires the adapters selected by cfg. Kafka publishing is
// enabled by KAFKA_HOST and distributed locking by REDIS_ADDR; Prometheus
// recording is always on.
func NewCompositionRoot(ctx context.Context, cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		logger:     logger,
		metricsReg: prometheus.NewRegistry(),
	}

	recorder, err := metrics.NewEventRecorder(c.metricsReg)
	if err != nil {
		return nil, err
	}
	publishers := []ports.EventPublisher{recorder}
	if cfg.KafkaHost != "" {
		kp := kafka.NewEventPublisher(kafka.ParseBrokers(cfg.KafkaHost), cfg.KafkaOrderChangedTopic, cfg.KafkaStockMovedTopic)
		publishers = append(publishers, kp)
		c.closers = append(c.closers, kp.Close)
	}
	c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB, eventbus.NewFanOut(logger, publishers...), logger)

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err = client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, err
		}
		c.locker = redislock.New(client)
		c.closers = append(c.closers, client.Close)
	} else {
		c.locker = keylock.New()
	}

	c.registry, err = payment.NewRegistry(payment.NewAuthorizeOnlyHandler(), payment.NewInstantSettlementHandler())
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases broker and lock connections.
func (c *CompositionRoot) Close() error {
	var err error
	for _, closeFn := range c.closers {
		err = errors.Join(err, closeFn())
	}
	return err
}

// Migrate creates or updates the schema.
func (c *CompositionRoot) Migrate(ctx context.Context) error {
	models := append(orderrepo.Models(), stockrepo.Models()...)
	return c.gormDB.WithContext(ctx).AutoMigrate(models...)
}

func (c *CompositionRoot) MetricsHandler() http.Handler {
	return metrics.Handler(c.metricsReg)
}

func (c *CompositionRoot) PaymentRegistry() *payment.Registry {
	return c.registry
}

func (c *CompositionRoot) uowFactoryFunc() FuncUoWFactory {
	return func() commands.UoW { return c.uowFactory.Create() }
}

func (c *CompositionRoot) orderUoWFactoryFunc() FuncOrderUoWFactory {
	return func() commands.OrderUoW { return c.uowFactory.Create() }
}

func (c *CompositionRoot) variantUoWFactoryFunc() FuncVariantUoWFactory {
	return func() commands.VariantUoW { return c.uowFactory.Create() }
}

func (c *CompositionRoot) CreateAddItemToOrderCommandHandler() commands.AddItemToOrderCommandHandler {
	return commands.NewAddItemToOrderCommandHandler(c.uowFactoryFunc(), c.locker)
}

func (c *CompositionRoot) CreateCheckoutCommandHandler() commands.CheckoutCommandHandler {
	return commands.NewCheckoutCommandHandler(c.orderUoWFactoryFunc(), c.locker)
}

func (c *CompositionRoot) CreateApplyAdjustmentsCommandHandler() commands.ApplyAdjustmentsCommandHandler {
	return commands.NewApplyAdjustmentsCommandHandler(c.orderUoWFactoryFunc(), c.locker)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(c.uowFactoryFunc(), c.locker, c.logger)
}

func (c *CompositionRoot) CreateAddPaymentCommandHandler() commands.AddPaymentCommandHandler {
	return commands.NewAddPaymentCommandHandler(
		c.uowFactoryFunc(), c.locker, c.registry, c.cfg.PaymentAttemptTimeout, c.logger)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.uowFactoryFunc(), c.locker, c.logger)
}

func (c *CompositionRoot) CreateFulfillmentCommandHandler() commands.FulfillmentCommandHandler {
	return commands.NewFulfillmentCommandHandler(c.orderUoWFactoryFunc(), c.locker)
}

func (c *CompositionRoot) CreateRegisterVariantCommandHandler() commands.RegisterVariantCommandHandler {
	return commands.NewRegisterVariantCommandHandler(c.variantUoWFactoryFunc())
}

func (c *CompositionRoot) CreateAdjustStockOnHandCommandHandler() commands.AdjustStockOnHandCommandHandler {
	return commands.NewAdjustStockOnHandCommandHandler(c.variantUoWFactoryFunc(), c.locker, c.logger)
}

func (c *CompositionRoot) CreateRecordStockMovementCommandHandler() commands.RecordStockMovementCommandHandler {
	return commands.NewRecordStockMovementCommandHandler(c.variantUoWFactoryFunc(), c.locker)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListStockMovementsQueryHandler() queries.ListStockMovementsQueryHandler {
	return queries.NewListStockMovementsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateFindStockDiscrepanciesQueryHandler() queries.FindStockDiscrepanciesQueryHandler {
	return queries.NewFindStockDiscrepanciesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateFindStockDiscrepanciesQueryHandler(), c.cfg.ReconcileSchedule, c.logger)
}

func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	return httpadapter.NewServer(httpadapter.Handlers{
		AddItem:                c.CreateAddItemToOrderCommandHandler(),
		Checkout:               c.CreateCheckoutCommandHandler(),
		ApplyAdjustments:       c.CreateApplyAdjustmentsCommandHandler(),
		TransitionOrder:        c.CreateTransitionOrderCommandHandler(),
		AddPayment:             c.CreateAddPaymentCommandHandler(),
		CancelOrder:            c.CreateCancelOrderCommandHandler(),
		Fulfillment:            c.CreateFulfillmentCommandHandler(),
		RegisterVariant:        c.CreateRegisterVariantCommandHandler(),
		AdjustStockOnHand:      c.CreateAdjustStockOnHandCommandHandler(),
		RecordStockMovement:    c.CreateRecordStockMovementCommandHandler(),
		GetOrder:               c.CreateGetOrderQueryHandler(),
		ListStockMovements:     c.CreateListStockMovementsQueryHandler(),
		FindStockDiscrepancies: c.CreateFindStockDiscrepanciesQueryHandler(),
	}, c.logger)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncVariantUoWFactory func() commands.VariantUoW

func (f FuncVariantUoWFactory) Create() commands.VariantUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
