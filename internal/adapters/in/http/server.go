// Package http exposes the order and stock operations over a JSON API served
// by echo.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"

	"github.com/labstack/echo/v4"
)

// The use cases the server dispatches to. The command and query handler types
// satisfy them.
type (
	AddItemHandler interface {
		Handle(ctx context.Context, command commands.AddItemToOrderCommand) (*order.Order, error)
	}
	CheckoutHandler interface {
		HandleSetCustomer(ctx context.Context, command commands.SetCustomerCommand) (*order.Order, error)
		HandleSetShippingAddress(ctx context.Context, command commands.SetShippingAddressCommand) (*order.Order, error)
		HandleSetShippingMethod(ctx context.Context, command commands.SetShippingMethodCommand) (*order.Order, error)
	}
	ApplyAdjustmentsHandler interface {
		Handle(ctx context.Context, command commands.ApplyAdjustmentsCommand) (*order.Order, error)
	}
	TransitionOrderHandler interface {
		Handle(ctx context.Context, command commands.TransitionOrderCommand) (*order.Order, error)
	}
	AddPaymentHandler interface {
		Handle(ctx context.Context, command commands.AddPaymentCommand) (*order.Payment, error)
	}
	CancelOrderHandler interface {
		HandleCancelItems(ctx context.Context, command commands.CancelOrderItemsCommand) (*order.Order, error)
		HandleCancelOrder(ctx context.Context, command commands.CancelOrderCommand) (*order.Order, error)
	}
	FulfillmentHandler interface {
		HandleCreate(ctx context.Context, command commands.CreateFulfillmentCommand) (commands.CreateFulfillmentResult, error)
		HandleTransition(ctx context.Context, command commands.TransitionFulfillmentCommand) (*order.Order, error)
	}
	RegisterVariantHandler interface {
		Handle(ctx context.Context, command commands.RegisterVariantCommand) (*stock.Variant, error)
	}
	AdjustStockOnHandHandler interface {
		Handle(ctx context.Context, command commands.AdjustStockOnHandCommand) (commands.AdjustStockOnHandResult, error)
	}
	RecordStockMovementHandler interface {
		Handle(ctx context.Context, command commands.RecordStockMovementCommand) (commands.RecordStockMovementResult, error)
	}
	GetOrderHandler interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (*queries.GetOrderQueryResponse, error)
	}
	ListStockMovementsHandler interface {
		Handle(ctx context.Context, query queries.ListStockMovementsQuery) (*queries.ListStockMovementsQueryResponse, error)
	}
	FindStockDiscrepanciesHandler interface {
		Handle(ctx context.Context, query queries.FindStockDiscrepanciesQuery) ([]queries.FindStockDiscrepanciesQueryResponse, error)
	}
)

// Handlers groups the use cases served by Server.
type Handlers struct {
	AddItem                AddItemHandler
	Checkout               CheckoutHandler
	ApplyAdjustments       ApplyAdjustmentsHandler
	TransitionOrder        TransitionOrderHandler
	AddPayment             AddPaymentHandler
	CancelOrder            CancelOrderHandler
	Fulfillment            FulfillmentHandler
	RegisterVariant        RegisterVariantHandler
	AdjustStockOnHand      AdjustStockOnHandHandler
	RecordStockMovement    RecordStockMovementHandler
	GetOrder               GetOrderHandler
	ListStockMovements     ListStockMovementsHandler
	FindStockDiscrepancies FindStockDiscrepanciesHandler
}

type Server struct {
	h      Handlers
	logger *slog.Logger
}

func NewServer(h Handlers, logger *slog.Logger) *Server {
	return &Server{h: h, logger: logger.With("component", "HTTPServer")}
}

// Register mounts the API under /api/v1 plus /health. metrics, when not nil,
// is served at /metrics.
func (s *Server) Register(e *echo.Echo, metrics http.Handler) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	api := e.Group("/api/v1", resolveActor)

	orders := api.Group("/orders")
	orders.GET("/:id", s.GetOrder)
	orders.POST("/:id/items", s.AddItem)
	orders.PUT("/:id/customer", s.SetCustomer)
	orders.PUT("/:id/shipping-address", s.SetShippingAddress)
	orders.PUT("/:id/shipping-method", s.SetShippingMethod)
	orders.PUT("/:id/adjustments", s.ApplyAdjustments)
	orders.POST("/:id/transitions", s.TransitionOrder)
	orders.POST("/:id/payments", s.AddPayment)
	orders.POST("/:id/cancellation", s.CancelOrder)
	orders.POST("/:id/fulfillments", s.CreateFulfillment)
	orders.POST("/:id/fulfillments/:fulfillmentId/transitions", s.TransitionFulfillment)

	catalog := requirePermission(kernel.PermissionUpdateCatalog)
	api.POST("/variants", s.RegisterVariant, catalog)
	api.PUT("/variants/:id/stock", s.AdjustStockOnHand, catalog)
	api.POST("/variants/:id/movements", s.RecordStockMovement, catalog)
	api.GET("/variants/:id/movements", s.ListStockMovements)
	api.GET("/stock/discrepancies", s.FindStockDiscrepancies, catalog)
}
