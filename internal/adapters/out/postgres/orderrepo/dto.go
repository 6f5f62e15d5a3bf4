// Package orderrepo persists the order aggregate: the orders row and its lines,
// items, payments, adjustments and fulfillments, plus the append-only history of
// state transitions.
package orderrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the orders row. Totals are stored for reporting queries; they are
// recomputed by the aggregate on restore.
type OrderDTO struct {
	ID                  uuid.UUID   `gorm:"type:uuid;primaryKey"`
	State               string      `gorm:"type:varchar(32);not null;index"`
	Currency            string      `gorm:"type:char(3);not null"`
	CustomerRef         *uuid.UUID  `gorm:"type:uuid;index"`
	ShippingAddress     *AddressDTO `gorm:"type:jsonb;serializer:json"`
	ShippingMethodCode  *string     `gorm:"type:varchar(64)"`
	ShippingMethodPrice int64       `gorm:"not null;default:0"`
	SubTotal            int64       `gorm:"not null"`
	ShippingTotal       int64       `gorm:"not null"`
	AdjustmentTotal     int64       `gorm:"not null"`
	Total               int64       `gorm:"not null"`
	SaleRecorded        bool        `gorm:"not null"`
	CreatedAt           time.Time   `gorm:"not null"`
	UpdatedAt           time.Time   `gorm:"not null"`

	Lines        []LineDTO        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments     []PaymentDTO     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Adjustments  []AdjustmentDTO  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Fulfillments []FulfillmentDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

type AddressDTO struct {
	FullName    string `json:"fullName"`
	StreetLine1 string `json:"streetLine1"`
	StreetLine2 string `json:"streetLine2,omitempty"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	CountryCode string `json:"countryCode"`
}

type LineDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	VariantID uuid.UUID `gorm:"type:uuid;not null;index"`
	UnitPrice int64     `gorm:"not null"`
	Position  int       `gorm:"not null"`

	Items []ItemDTO `gorm:"foreignKey:LineID;constraint:OnDelete:CASCADE"`
}

func (LineDTO) TableName() string {
	return "order_lines"
}

type ItemDTO struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LineID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	Position      int        `gorm:"not null"`
	Cancelled     bool       `gorm:"not null"`
	FulfillmentID *uuid.UUID `gorm:"type:uuid;index"`
	Sold          bool       `gorm:"not null"`
	Restocked     bool       `gorm:"not null"`
}

func (ItemDTO) TableName() string {
	return "order_items"
}

type PaymentDTO struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	Method        string            `gorm:"type:varchar(64);not null"`
	Amount        int64             `gorm:"not null"`
	State         string            `gorm:"type:varchar(32);not null"`
	ErrorMessage  string            `gorm:"type:text"`
	TransactionID string            `gorm:"type:varchar(255)"`
	Metadata      map[string]string `gorm:"type:jsonb;serializer:json"`
	Position      int               `gorm:"not null"`
	CreatedAt     time.Time         `gorm:"not null"`
}

func (PaymentDTO) TableName() string {
	return "payments"
}

// AdjustmentDTO rows are replaced as a set whenever the order's adjustments change.
type AdjustmentDTO struct {
	OrderID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position    int       `gorm:"primaryKey"`
	SourceID    string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	Amount      int64     `gorm:"not null"`
}

func (AdjustmentDTO) TableName() string {
	return "order_adjustments"
}

type FulfillmentDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Method       string    `gorm:"type:varchar(64);not null"`
	TrackingCode string    `gorm:"type:varchar(255)"`
	State        string    `gorm:"type:varchar(32);not null"`
	Position     int       `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (FulfillmentDTO) TableName() string {
	return "fulfillments"
}

// StateTransitionDTO is one row of the order history. Rows are only inserted.
type StateTransitionDTO struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	FromState string    `gorm:"type:varchar(32);not null"`
	ToState   string    `gorm:"type:varchar(32);not null"`
	ActorID   string    `gorm:"type:varchar(255);not null"`
	At        time.Time `gorm:"not null"`
}

func (StateTransitionDTO) TableName() string {
	return "order_state_transitions"
}

// Models lists every table of the package, for AutoMigrate.
func Models() []any {
	return []any{
		&OrderDTO{},
		&LineDTO{},
		&ItemDTO{},
		&PaymentDTO{},
		&AdjustmentDTO{},
		&FulfillmentDTO{},
		&StateTransitionDTO{},
	}
}

func fromDomain(o *order.Order) OrderDTO {
	orderID := o.ID().Bytes()

	dto := OrderDTO{
		ID:              orderID,
		State:           o.State().String(),
		Currency:        o.Currency().String(),
		CustomerRef:     uuidPtr(o.CustomerRef()),
		SubTotal:        o.SubTotal(),
		ShippingTotal:   o.ShippingTotal(),
		AdjustmentTotal: o.AdjustmentTotal(),
		Total:           o.Total(),
		SaleRecorded:    o.SaleRecorded(),
		CreatedAt:       o.CreatedAt(),
		UpdatedAt:       o.UpdatedAt(),
	}

	if a := o.ShippingAddress(); a != nil {
		dto.ShippingAddress = &AddressDTO{
			FullName:    a.FullName(),
			StreetLine1: a.StreetLine1(),
			StreetLine2: a.StreetLine2(),
			City:        a.City(),
			PostalCode:  a.PostalCode(),
			CountryCode: a.CountryCode(),
		}
	}
	if m := o.ShippingMethod(); m != nil {
		code := m.Code()
		dto.ShippingMethodCode = &code
		dto.ShippingMethodPrice = m.Price()
	}

	for i, l := range o.Lines() {
		line := LineDTO{
			ID:        l.ID().Bytes(),
			OrderID:   orderID,
			VariantID: l.VariantID().Bytes(),
			UnitPrice: l.UnitPrice(),
			Position:  i,
		}
		for j, it := range l.Items() {
			line.Items = append(line.Items, ItemDTO{
				ID:            it.ID().Bytes(),
				LineID:        line.ID,
				OrderID:       orderID,
				Position:      j,
				Cancelled:     it.IsCancelled(),
				FulfillmentID: uuidPtr(it.FulfillmentRef()),
				Sold:          it.IsSold(),
				Restocked:     it.IsRestocked(),
			})
		}
		dto.Lines = append(dto.Lines, line)
	}

	for i, p := range o.Payments() {
		dto.Payments = append(dto.Payments, PaymentDTO{
			ID:            p.ID().Bytes(),
			OrderID:       orderID,
			Method:        p.Method(),
			Amount:        p.Amount(),
			State:         p.State().String(),
			ErrorMessage:  p.ErrorMessage(),
			TransactionID: p.TransactionID(),
			Metadata:      p.Metadata(),
			Position:      i,
			CreatedAt:     p.CreatedAt(),
		})
	}

	for i, a := range o.Adjustments() {
		dto.Adjustments = append(dto.Adjustments, AdjustmentDTO{
			OrderID:     orderID,
			Position:    i,
			SourceID:    a.SourceID(),
			Description: a.Description(),
			Amount:      a.Amount(),
		})
	}

	for i, f := range o.Fulfillments() {
		dto.Fulfillments = append(dto.Fulfillments, FulfillmentDTO{
			ID:           f.ID().Bytes(),
			OrderID:      orderID,
			Method:       f.Method(),
			TrackingCode: f.TrackingCode(),
			State:        f.State().String(),
			Position:     i,
			CreatedAt:    f.CreatedAt(),
		})
	}

	return dto
}

func transitionsFromDomain(o *order.Order) []StateTransitionDTO {
	changes := o.UncommittedTransitions()
	out := make([]StateTransitionDTO, 0, len(changes))
	for _, c := range changes {
		out = append(out, StateTransitionDTO{
			OrderID:   c.OrderID.Bytes(),
			FromState: c.From.String(),
			ToState:   c.To.String(),
			ActorID:   c.ActorID,
			At:        c.At,
		})
	}
	return out
}

// toDomain expects the children of dto to be sorted by position.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	state, err := order.ParseState(dto.State)
	if err != nil {
		return nil, err
	}
	currency, err := kernel.NewCurrencyCode(dto.Currency)
	if err != nil {
		return nil, err
	}

	s := order.Snapshot{
		ID:           id,
		State:        state,
		Currency:     currency,
		SaleRecorded: dto.SaleRecorded,
		CreatedAt:    dto.CreatedAt,
		UpdatedAt:    dto.UpdatedAt,
	}

	if s.CustomerRef, err = kernelPtr(dto.CustomerRef); err != nil {
		return nil, err
	}
	if a := dto.ShippingAddress; a != nil {
		address, aErr := order.NewAddress(a.FullName, a.StreetLine1, a.StreetLine2, a.City, a.PostalCode, a.CountryCode)
		if aErr != nil {
			return nil, aErr
		}
		s.ShippingAddress = &address
	}
	if dto.ShippingMethodCode != nil {
		method, mErr := order.NewShippingMethod(*dto.ShippingMethodCode, dto.ShippingMethodPrice)
		if mErr != nil {
			return nil, mErr
		}
		s.ShippingMethod = &method
	}

	for _, l := range dto.Lines {
		line, lErr := lineToDomain(l)
		if lErr != nil {
			return nil, lErr
		}
		s.Lines = append(s.Lines, line)
	}
	for _, p := range dto.Payments {
		payment, pErr := paymentToDomain(p)
		if pErr != nil {
			return nil, pErr
		}
		s.Payments = append(s.Payments, payment)
	}
	for _, a := range dto.Adjustments {
		adjustment, aErr := order.NewAdjustment(a.SourceID, a.Description, a.Amount)
		if aErr != nil {
			return nil, aErr
		}
		s.Adjustments = append(s.Adjustments, adjustment)
	}
	for _, f := range dto.Fulfillments {
		fulfillment, fErr := fulfillmentToDomain(f)
		if fErr != nil {
			return nil, fErr
		}
		s.Fulfillments = append(s.Fulfillments, fulfillment)
	}

	return order.RestoreOrder(s)
}

func lineToDomain(dto LineDTO) (*order.Line, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	variantID, err := kernel.UUIDFromBytes(dto.VariantID[:])
	if err != nil {
		return nil, err
	}

	items := make([]*order.Item, 0, len(dto.Items))
	for _, it := range dto.Items {
		itemID, idErr := kernel.UUIDFromBytes(it.ID[:])
		if idErr != nil {
			return nil, idErr
		}
		fulfillmentRef, refErr := kernelPtr(it.FulfillmentID)
		if refErr != nil {
			return nil, refErr
		}
		item, itemErr := order.RestoreItem(itemID, it.Cancelled, fulfillmentRef, it.Sold, it.Restocked)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreLine(id, variantID, dto.UnitPrice, items)
}

func paymentToDomain(dto PaymentDTO) (*order.Payment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	state, err := order.ParsePaymentState(dto.State)
	if err != nil {
		return nil, err
	}
	return order.RestorePayment(id, dto.Method, dto.Amount, state, dto.ErrorMessage, dto.TransactionID, dto.Metadata, dto.CreatedAt)
}

func fulfillmentToDomain(dto FulfillmentDTO) (*order.Fulfillment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	state, err := order.ParseFulfillmentState(dto.State)
	if err != nil {
		return nil, err
	}
	return order.RestoreFulfillment(id, dto.Method, dto.TrackingCode, state, dto.CreatedAt)
}

func uuidPtr(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func kernelPtr(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
