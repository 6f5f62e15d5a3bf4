// Package kafka publishes domain events to Kafka topics: order events to one
// topic, stock movements to another, keyed by aggregate id so that the events of
// one aggregate stay ordered within a partition.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"

	"github.com/segmentio/kafka-go"
)

// Writer is the part of *kafka.Writer the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type EventPublisher struct {
	orders Writer
	stock  Writer
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewEventPublisher(brokers []string, orderTopic, stockTopic string) *EventPublisher {
	return NewEventPublisherWithWriters(newWriter(brokers, orderTopic), newWriter(brokers, stockTopic))
}

func NewEventPublisherWithWriters(orders, stock Writer) *EventPublisher {
	return &EventPublisher{orders: orders, stock: stock}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// Envelope is the message value.
type Envelope struct {
	EventName   string    `json:"eventName"`
	AggregateID string    `json:"aggregateId"`
	OccurredAt  time.Time `json:"occurredAt"`
	Payload     any       `json:"payload"`
}

type orderStateChangedPayload struct {
	OrderID string `json:"orderId"`
	From    string `json:"from"`
	To      string `json:"to"`
	ActorID string `json:"actorId"`
}

type paymentAddedPayload struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Method    string `json:"method"`
	Amount    int64  `json:"amount"`
	State     string `json:"state"`
}

type stockMovementRecordedPayload struct {
	VariantID   string  `json:"variantId"`
	SKU         string  `json:"sku"`
	MovementID  string  `json:"movementId"`
	Type        string  `json:"type"`
	Quantity    int     `json:"quantity"`
	OrderRef    *string `json:"orderRef,omitempty"`
	StockOnHand int     `json:"stockOnHand"`
}

// Publish writes order and stock events in one batch per topic. Events of other
// types are ignored.
func (p *EventPublisher) Publish(ctx context.Context, events ...kernel.DomainEvent) error {
	var orderMsgs, stockMsgs []kafka.Message
	for _, e := range events {
		payload, ok := toPayload(e)
		if !ok {
			continue
		}
		value, err := json.Marshal(Envelope{
			EventName:   e.EventName(),
			AggregateID: e.AggregateID().String(),
			OccurredAt:  e.OccurredAt().UTC(),
			Payload:     payload,
		})
		if err != nil {
			return err
		}
		msg := kafka.Message{
			Key:   []byte(e.AggregateID().String()),
			Value: value,
			Time:  e.OccurredAt().UTC(),
			Headers: []kafka.Header{
				{Key: "event-name", Value: []byte(e.EventName())},
			},
		}
		if _, isStock := e.(stock.StockMovementRecorded); isStock {
			stockMsgs = append(stockMsgs, msg)
		} else {
			orderMsgs = append(orderMsgs, msg)
		}
	}

	var err error
	if len(orderMsgs) > 0 {
		err = errors.Join(err, p.orders.WriteMessages(ctx, orderMsgs...))
	}
	if len(stockMsgs) > 0 {
		err = errors.Join(err, p.stock.WriteMessages(ctx, stockMsgs...))
	}
	return err
}

func (p *EventPublisher) Close() error {
	return errors.Join(p.orders.Close(), p.stock.Close())
}

func toPayload(e kernel.DomainEvent) (any, bool) {
	switch ev := e.(type) {
	case order.OrderStateChanged:
		return orderStateChangedPayload{
			OrderID: ev.OrderID.String(),
			From:    ev.From.String(),
			To:      ev.To.String(),
			ActorID: ev.ActorID,
		}, true
	case order.PaymentAdded:
		return paymentAddedPayload{
			OrderID:   ev.OrderID.String(),
			PaymentID: ev.PaymentID.String(),
			Method:    ev.Method,
			Amount:    ev.Amount,
			State:     ev.State.String(),
		}, true
	case stock.StockMovementRecorded:
		p := stockMovementRecordedPayload{
			VariantID:   ev.VariantID.String(),
			SKU:         ev.SKU,
			MovementID:  ev.MovementID.String(),
			Type:        ev.Type.String(),
			Quantity:    ev.Quantity,
			StockOnHand: ev.StockOnHand,
		}
		if ev.OrderRef != nil {
			ref := ev.OrderRef.String()
			p.OrderRef = &ref
		}
		return p, true
	}
	return nil, false
}
