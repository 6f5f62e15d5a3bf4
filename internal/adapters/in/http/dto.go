package http

import (
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"
)

type addItemRequest struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type setCustomerRequest struct {
	CustomerID string `json:"customerId"`
}

type addressBody struct {
	FullName    string `json:"fullName"`
	StreetLine1 string `json:"streetLine1"`
	StreetLine2 string `json:"streetLine2,omitempty"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	CountryCode string `json:"countryCode"`
}

type shippingMethodBody struct {
	Code  string `json:"code"`
	Price int64  `json:"price"`
}

type adjustmentBody struct {
	SourceID    string `json:"sourceId"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

type transitionRequest struct {
	State string `json:"state"`
}

type addPaymentRequest struct {
	Method   string            `json:"method"`
	Metadata map[string]string `json:"metadata"`
}

// cancelRequest cancels the listed items, or the whole order when ItemIDs is
// empty.
type cancelRequest struct {
	ItemIDs []string `json:"itemIds"`
}

type createFulfillmentRequest struct {
	ItemIDs      []string `json:"itemIds"`
	Method       string   `json:"method"`
	TrackingCode string   `json:"trackingCode"`
}

type registerVariantRequest struct {
	ID             string `json:"id"`
	SKU            string `json:"sku"`
	Price          int64  `json:"price"`
	Currency       string `json:"currency"`
	InitialStock   int    `json:"initialStock"`
	TrackInventory *bool  `json:"trackInventory"`
}

type adjustStockRequest struct {
	StockOnHand int `json:"stockOnHand"`
}

type recordMovementRequest struct {
	Type     string  `json:"type"`
	Quantity int     `json:"quantity"`
	OrderRef *string `json:"orderRef"`
}

type orderResponse struct {
	ID              string                `json:"id"`
	State           string                `json:"state"`
	Currency        string                `json:"currency"`
	CustomerID      *string               `json:"customerId,omitempty"`
	ShippingAddress *addressBody          `json:"shippingAddress,omitempty"`
	ShippingMethod  *shippingMethodBody   `json:"shippingMethod,omitempty"`
	SubTotal        int64                 `json:"subTotal"`
	ShippingTotal   int64                 `json:"shippingTotal"`
	AdjustmentTotal int64                 `json:"adjustmentTotal"`
	Total           int64                 `json:"total"`
	Lines           []lineResponse        `json:"lines"`
	Payments        []paymentResponse     `json:"payments"`
	Adjustments     []adjustmentBody      `json:"adjustments"`
	Fulfillments    []fulfillmentResponse `json:"fulfillments"`
	History         []transitionResponse  `json:"history,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

type lineResponse struct {
	ID        string         `json:"id"`
	VariantID string         `json:"variantId"`
	UnitPrice int64          `json:"unitPrice"`
	Quantity  int            `json:"quantity"`
	Items     []itemResponse `json:"items"`
}

type itemResponse struct {
	ID            string  `json:"id"`
	Cancelled     bool    `json:"cancelled"`
	FulfillmentID *string `json:"fulfillmentId,omitempty"`
}

type paymentResponse struct {
	ID            string            `json:"id"`
	Method        string            `json:"method"`
	Amount        int64             `json:"amount"`
	State         string            `json:"state"`
	ErrorMessage  string            `json:"errorMessage,omitempty"`
	TransactionID string            `json:"transactionId,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

type fulfillmentResponse struct {
	ID           string    `json:"id"`
	Method       string    `json:"method"`
	TrackingCode string    `json:"trackingCode,omitempty"`
	State        string    `json:"state"`
	CreatedAt    time.Time `json:"createdAt"`
}

type transitionResponse struct {
	From    string    `json:"from"`
	To      string    `json:"to"`
	ActorID string    `json:"actorId"`
	At      time.Time `json:"at"`
}

type variantResponse struct {
	ID             string `json:"id"`
	SKU            string `json:"sku"`
	Price          int64  `json:"price"`
	Currency       string `json:"currency"`
	StockOnHand    int    `json:"stockOnHand"`
	TrackInventory bool   `json:"trackInventory"`
}

type stockResponse struct {
	StockOnHand      int `json:"stockOnHand"`
	MovementsCreated int `json:"movementsCreated"`
}

type movementResponse struct {
	ID        string    `json:"id"`
	Sequence  int64     `json:"sequence"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	OrderRef  *string   `json:"orderRef,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type movementPageResponse struct {
	Items      []movementResponse `json:"items"`
	TotalItems int64              `json:"totalItems"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
}

type discrepancyResponse struct {
	VariantID   string `json:"variantId"`
	SKU         string `json:"sku"`
	StockOnHand int    `json:"stockOnHand"`
	LedgerSum   int    `json:"ledgerSum"`
}

func idPtr(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toOrderResponse(v *queries.GetOrderQueryResponse) orderResponse {
	resp := orderResponse{
		ID:              v.ID.String(),
		State:           v.State,
		Currency:        v.Currency,
		CustomerID:      idPtr(v.CustomerRef),
		SubTotal:        v.SubTotal,
		ShippingTotal:   v.ShippingTotal,
		AdjustmentTotal: v.AdjustmentTotal,
		Total:           v.Total,
		Lines:           make([]lineResponse, 0, len(v.Lines)),
		Payments:        make([]paymentResponse, 0, len(v.Payments)),
		Adjustments:     make([]adjustmentBody, 0, len(v.Adjustments)),
		Fulfillments:    make([]fulfillmentResponse, 0, len(v.Fulfillments)),
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
	if a := v.ShippingAddress; a != nil {
		resp.ShippingAddress = &addressBody{
			FullName:    a.FullName,
			StreetLine1: a.StreetLine1,
			StreetLine2: a.StreetLine2,
			City:        a.City,
			PostalCode:  a.PostalCode,
			CountryCode: a.CountryCode,
		}
	}
	if m := v.ShippingMethod; m != nil {
		resp.ShippingMethod = &shippingMethodBody{Code: m.Code, Price: m.Price}
	}
	for _, l := range v.Lines {
		lr := lineResponse{
			ID:        l.ID.String(),
			VariantID: l.VariantID.String(),
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Items:     make([]itemResponse, 0, len(l.Items)),
		}
		for _, it := range l.Items {
			lr.Items = append(lr.Items, itemResponse{
				ID:            it.ID.String(),
				Cancelled:     it.Cancelled,
				FulfillmentID: idPtr(it.FulfillmentID),
			})
		}
		resp.Lines = append(resp.Lines, lr)
	}
	for _, p := range v.Payments {
		resp.Payments = append(resp.Payments, paymentResponse{
			ID:            p.ID.String(),
			Method:        p.Method,
			Amount:        p.Amount,
			State:         p.State,
			ErrorMessage:  p.ErrorMessage,
			TransactionID: p.TransactionID,
			Metadata:      p.Metadata,
			CreatedAt:     p.CreatedAt,
		})
	}
	for _, a := range v.Adjustments {
		resp.Adjustments = append(resp.Adjustments, adjustmentBody(a))
	}
	for _, f := range v.Fulfillments {
		resp.Fulfillments = append(resp.Fulfillments, fulfillmentResponse{
			ID:           f.ID.String(),
			Method:       f.Method,
			TrackingCode: f.TrackingCode,
			State:        f.State,
			CreatedAt:    f.CreatedAt,
		})
	}
	for _, t := range v.History {
		resp.History = append(resp.History, transitionResponse(t))
	}
	return resp
}

func orderBody(o *order.Order) orderResponse {
	return toOrderResponse(queries.NewOrderView(o))
}

func paymentBody(p *order.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID().String(),
		Method:        p.Method(),
		Amount:        p.Amount(),
		State:         p.State().String(),
		ErrorMessage:  p.ErrorMessage(),
		TransactionID: p.TransactionID(),
		Metadata:      p.Metadata(),
		CreatedAt:     p.CreatedAt(),
	}
}

func variantBody(v *stock.Variant) variantResponse {
	return variantResponse{
		ID:             v.ID().String(),
		SKU:            v.SKU(),
		Price:          v.Price(),
		Currency:       v.Currency().String(),
		StockOnHand:    v.StockOnHand(),
		TrackInventory: v.TracksInventory(),
	}
}
