package queries

import (
	"context"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GetOrderQueryHandler loads the aggregate through the order repository, so the
// read model shows exactly what the write side restores, and reads the history
// table directly.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns errs.ObjectNotFoundError when the order does not exist.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	o, err := orderrepo.NewGormOrderRepository(h.db, untracked{}).Get(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}

	resp := NewOrderView(o)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT from_state, to_state, actor_id, at
		FROM order_state_transitions
		WHERE order_id = ?
		ORDER BY id
	`, o.ID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t TransitionView
		if err = rows.Scan(&t.From, &t.To, &t.ActorID, &t.At); err != nil {
			return nil, err
		}
		resp.History = append(resp.History, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return resp, nil
}

// untracked satisfies the repository's tracker for read-only use.
type untracked struct{}

func (untracked) TrackAggregate(kernel.UUID, any) {}

// NewOrderView builds the read model of an aggregate already in memory, as
// returned by a command. History is left empty.
func NewOrderView(o *order.Order) *GetOrderQueryResponse {
	resp := &GetOrderQueryResponse{
		ID:              o.ID(),
		State:           o.State().String(),
		Currency:        o.Currency().String(),
		CustomerRef:     o.CustomerRef(),
		SubTotal:        o.SubTotal(),
		ShippingTotal:   o.ShippingTotal(),
		AdjustmentTotal: o.AdjustmentTotal(),
		Total:           o.Total(),
		Lines:           make([]LineView, 0, len(o.Lines())),
		Payments:        make([]PaymentView, 0, len(o.Payments())),
		Adjustments:     make([]AdjustmentView, 0, len(o.Adjustments())),
		Fulfillments:    make([]FulfillmentView, 0, len(o.Fulfillments())),
		History:         make([]TransitionView, 0),
		CreatedAt:       o.CreatedAt(),
		UpdatedAt:       o.UpdatedAt(),
	}

	if a := o.ShippingAddress(); a != nil {
		resp.ShippingAddress = &AddressView{
			FullName:    a.FullName(),
			StreetLine1: a.StreetLine1(),
			StreetLine2: a.StreetLine2(),
			City:        a.City(),
			PostalCode:  a.PostalCode(),
			CountryCode: a.CountryCode(),
		}
	}
	if m := o.ShippingMethod(); m != nil {
		resp.ShippingMethod = &ShippingMethodView{Code: m.Code(), Price: m.Price()}
	}

	for _, l := range o.Lines() {
		lv := LineView{
			ID:        l.ID(),
			VariantID: l.VariantID(),
			UnitPrice: l.UnitPrice(),
			Quantity:  l.Quantity(),
		}
		for _, it := range l.Items() {
			lv.Items = append(lv.Items, ItemView{
				ID:            it.ID(),
				Cancelled:     it.IsCancelled(),
				FulfillmentID: it.FulfillmentRef(),
			})
		}
		resp.Lines = append(resp.Lines, lv)
	}
	for _, p := range o.Payments() {
		resp.Payments = append(resp.Payments, PaymentView{
			ID:            p.ID(),
			Method:        p.Method(),
			Amount:        p.Amount(),
			State:         p.State().String(),
			ErrorMessage:  p.ErrorMessage(),
			TransactionID: p.TransactionID(),
			Metadata:      p.Metadata(),
			CreatedAt:     p.CreatedAt(),
		})
	}
	for _, a := range o.Adjustments() {
		resp.Adjustments = append(resp.Adjustments, AdjustmentView{
			SourceID:    a.SourceID(),
			Description: a.Description(),
			Amount:      a.Amount(),
		})
	}
	for _, f := range o.Fulfillments() {
		resp.Fulfillments = append(resp.Fulfillments, FulfillmentView{
			ID:           f.ID(),
			Method:       f.Method(),
			TrackingCode: f.TrackingCode(),
			State:        f.State().String(),
			CreatedAt:    f.CreatedAt(),
		})
	}

	return resp
}
