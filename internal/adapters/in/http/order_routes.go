package http

import (
	"fmt"
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(c echo.Context) error {
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return s.fail(c, err)
	}

	view, err := s.h.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(view))
}

// AddItem handles POST /api/v1/orders/:id/items. The order is created on first
// use of an unknown id.
func (s *Server) AddItem(c echo.Context) error {
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req addItemRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	variantID, err := kernel.UUIDFromString(req.VariantID)
	if err != nil {
		return badRequest(c, "Invalid variantId")
	}

	cmd, err := commands.NewAddItemToOrderCommand(orderID, variantID, req.Quantity)
	if err != nil {
		return s.fail(c, err)
	}
	o, err := s.h.AddItem.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, orderBody(o))
}

func (s *Server) SetCustomer(c echo.Context) error {
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req setCustomerRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	customerID, err := kernel.UUIDFromString(req.CustomerID)
	if err != nil {
		return badRequest(c, "Invalid customerId")
	}

	cmd, err := commands.NewSetCustomerCommand(orderID, customerID)
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, func() (*order.Order, error) {
		return s.h.Checkout.HandleSetCustomer(c.Request().Context(), cmd)
	})
}

func (s *Server) SetShippingAddress(c echo.Context) error {
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req addressBody
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	address, err := order.NewAddress(req.FullName, req.StreetLine1, req.StreetLine2, req.City, req.PostalCode, req.CountryCode)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewSetShippingAddressCommand(orderID, address)
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, func() (*order.Order, error) {
		return s.h.Checkout.HandleSetShippingAddress(c.Request().Context(), cmd)
	})
}

func (s *Server) SetShippingMethod(c echo.Context) error {
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req shippingMethodBody
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	method, err := order.NewShippingMethod(req.Code, req.Price)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewSetShippingMethodCommand(orderID, method)
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, func() (*order.Order, error) {
		return s.h.Checkout.HandleSetShippingMethod(c.Request().Context(), cmd)
	})
}

// ApplyAdjustments handles PUT /api/v1/orders/:id/adjustments. The body is the
// complete list produced by the promotion and shipping evaluators; it replaces
// the current one.
func (s *Server) ApplyAdjustments(c echo.Context) error {
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req []adjustmentBody
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	adjustments := make([]order.Adjustment, 0, len(req))
	for _, a := range req {
		adj, aErr := order.NewAdjustment(a.SourceID, a.Description, a.Amount)
		if aErr != nil {
			return s.fail(c, aErr)
		}
		adjustments = append(adjustments, adj)
	}

	cmd, err := commands.NewApplyAdjustmentsCommand(orderID, adjustments)
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, func() (*order.Order, error) {
		return s.h.ApplyAdjustments.Handle(c.Request().Context(), cmd)
	})
}

func (s *Server) TransitionOrder(c echo.Context) error {
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req transitionRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	target, err := order.ParseState(req.State)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewTransitionOrderCommand(orderID, target, actorFrom(c))
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, func() (*order.Order, error) {
		return s.h.TransitionOrder.Handle(c.Request().Context(), cmd)
	})
}

// AddPayment handles POST /api/v1/orders/:id/payments. A declined payment is a
// normal outcome and is returned with 201 like any other.
func (s *Server) AddPayment(c echo.Context) error {
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req addPaymentRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	cmd, err := commands.NewAddPaymentCommand(orderID, req.Method, req.Metadata)
	if err != nil {
		return s.fail(c, err)
	}
	p, err := s.h.AddPayment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, paymentBody(p))
}

func (s *Server) CancelOrder(c echo.Context) error {
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req cancelRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if len(req.ItemIDs) == 0 {
		cmd, cErr := commands.NewCancelOrderCommand(orderID, actorFrom(c))
		if cErr != nil {
			return s.fail(c, cErr)
		}
		return s.respondOrder(c, func() (*order.Order, error) {
			return s.h.CancelOrder.HandleCancelOrder(c.Request().Context(), cmd)
		})
	}

	itemIDs, err := uuids(req.ItemIDs)
	if err != nil {
		return badRequest(c, "Invalid itemIds")
	}
	cmd, err := commands.NewCancelOrderItemsCommand(orderID, itemIDs)
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, func() (*order.Order, error) {
		return s.h.CancelOrder.HandleCancelItems(c.Request().Context(), cmd)
	})
}

func (s *Server) CreateFulfillment(c echo.Context) error {
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req createFulfillmentRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	itemIDs, err := uuids(req.ItemIDs)
	if err != nil {
		return badRequest(c, "Invalid itemIds")
	}

	cmd, err := commands.NewCreateFulfillmentCommand(orderID, itemIDs, req.Method, req.TrackingCode)
	if err != nil {
		return s.fail(c, err)
	}
	result, err := s.h.Fulfillment.HandleCreate(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, orderBody(result.Order))
}

func (s *Server) TransitionFulfillment(c echo.Context) error {
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	fulfillmentID, err := uuidParam(c, "fulfillmentId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req transitionRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	target, err := order.ParseFulfillmentState(req.State)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewTransitionFulfillmentCommand(orderID, fulfillmentID, target)
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, func() (*order.Order, error) {
		return s.h.Fulfillment.HandleTransition(c.Request().Context(), cmd)
	})
}

func (s *Server) respondOrder(c echo.Context, run func() (*order.Order, error)) error {
	o, err := run()
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, orderBody(o))
}

func uuidParam(c echo.Context, name string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(c.Param(name))
	if err != nil {
		return kernel.UUID{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}

func uuids(raw []string) ([]kernel.UUID, error) {
	out := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := kernel.UUIDFromString(r)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
