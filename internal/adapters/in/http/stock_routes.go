package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"

	"github.com/labstack/echo/v4"
)

// RegisterVariant handles POST /api/v1/variants. Inventory is tracked unless
// trackInventory is false.
func (s *Server) RegisterVariant(c echo.Context) error {
	var req registerVariantRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	variantID := kernel.NewUUID()
	if req.ID != "" {
		id, err := kernel.UUIDFromString(req.ID)
		if err != nil {
			return badRequest(c, "Invalid id")
		}
		variantID = id
	}
	track := true
	if req.TrackInventory != nil {
		track = *req.TrackInventory
	}

	cmd, err := commands.NewRegisterVariantCommand(
		variantID, req.SKU, req.Price, kernel.CurrencyCode(req.Currency), req.InitialStock, track)
	if err != nil {
		return s.fail(c, err)
	}
	v, err := s.h.RegisterVariant.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, variantBody(v))
}

// AdjustStockOnHand handles PUT /api/v1/variants/:id/stock.
func (s *Server) AdjustStockOnHand(c echo.Context) error {
	variantID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req adjustStockRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	cmd, err := commands.NewAdjustStockOnHandCommand(variantID, req.StockOnHand)
	if err != nil {
		return s.fail(c, err)
	}
	result, err := s.h.AdjustStockOnHand.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, stockResponse{
		StockOnHand:      result.StockOnHand,
		MovementsCreated: result.MovementsCreated,
	})
}

func (s *Server) RecordStockMovement(c echo.Context) error {
	variantID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req recordMovementRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	movementType, err := stock.ParseMovementType(req.Type)
	if err != nil {
		return s.fail(c, err)
	}
	var orderRef *kernel.UUID
	if req.OrderRef != nil {
		ref, refErr := kernel.UUIDFromString(*req.OrderRef)
		if refErr != nil {
			return badRequest(c, "Invalid orderRef")
		}
		orderRef = &ref
	}

	cmd, err := commands.NewRecordStockMovementCommand(variantID, movementType, req.Quantity, orderRef)
	if err != nil {
		return s.fail(c, err)
	}
	result, err := s.h.RecordStockMovement.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	m := result.Movement
	return c.JSON(http.StatusCreated, movementResponse{
		ID:        m.ID().String(),
		Sequence:  m.Sequence(),
		Type:      m.Type().String(),
		Quantity:  m.Quantity(),
		OrderRef:  idPtr(m.OrderRef()),
		CreatedAt: m.CreatedAt(),
	})
}

// ListStockMovements handles GET /api/v1/variants/:id/movements?page=&pageSize=&type=.
// type may be repeated.
func (s *Server) ListStockMovements(c echo.Context) error {
	variantID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	page, pageSize := 1, 0
	var typeNames []string
	if err = echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("pageSize", &pageSize).
		Strings("type", &typeNames).
		BindError(); err != nil {
		return badRequest(c, "Invalid query parameters")
	}

	types := make([]stock.MovementType, 0, len(typeNames))
	for _, name := range typeNames {
		t, pErr := stock.ParseMovementType(name)
		if pErr != nil {
			return s.fail(c, pErr)
		}
		types = append(types, t)
	}

	query, err := queries.NewListStockMovementsQuery(variantID, page, pageSize, types...)
	if err != nil {
		return s.fail(c, err)
	}
	result, err := s.h.ListStockMovements.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	resp := movementPageResponse{
		Items:      make([]movementResponse, 0, len(result.Items)),
		TotalItems: result.TotalItems,
		Page:       result.Page,
		PageSize:   result.PageSize,
	}
	for _, m := range result.Items {
		resp.Items = append(resp.Items, movementResponse{
			ID:        m.ID.String(),
			Sequence:  m.Sequence,
			Type:      m.Type,
			Quantity:  m.Quantity,
			OrderRef:  idPtr(m.OrderRef),
			CreatedAt: m.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) FindStockDiscrepancies(c echo.Context) error {
	result, err := s.h.FindStockDiscrepancies.Handle(c.Request().Context(), queries.NewFindStockDiscrepanciesQuery())
	if err != nil {
		return s.fail(c, err)
	}

	resp := make([]discrepancyResponse, 0, len(result))
	for _, d := range result {
		resp = append(resp, discrepancyResponse{
			VariantID:   d.VariantID.String(),
			SKU:         d.SKU,
			StockOnHand: d.StockOnHand,
			LedgerSum:   d.LedgerSum,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
