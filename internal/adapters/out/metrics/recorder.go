// Package metrics turns domain events into Prometheus counters.
package metrics

import (
	"context"
	"net/http"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fulfillment"

// EventRecorder implements ports.EventPublisher by counting events.
type EventRecorder struct {
	Transitions      *prometheus.CounterVec
	Movements        *prometheus.CounterVec
	MovementQuantity *prometheus.CounterVec
	Payments         *prometheus.CounterVec
}

func NewEventRecorder(reg prometheus.Registerer) (*EventRecorder, error) {
	r := &EventRecorder{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Committed order state transitions.",
		}, []string{"from", "to"}),
		Movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "Stock movements appended to the ledger.",
		}, []string{"type"}),
		MovementQuantity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movement_quantity_total",
			Help:      "Absolute quantity moved, per movement type.",
		}, []string{"type"}),
		Payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Payments recorded on orders, per method and resulting state.",
		}, []string{"method", "state"}),
	}

	for _, c := range []prometheus.Collector{r.Transitions, r.Movements, r.MovementQuantity, r.Payments} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *EventRecorder) Publish(_ context.Context, events ...kernel.DomainEvent) error {
	for _, e := range events {
		switch ev := e.(type) {
		case order.OrderStateChanged:
			r.Transitions.WithLabelValues(ev.From.String(), ev.To.String()).Inc()
		case order.PaymentAdded:
			r.Payments.WithLabelValues(ev.Method, ev.State.String()).Inc()
		case stock.StockMovementRecorded:
			t := ev.Type.String()
			r.Movements.WithLabelValues(t).Inc()
			q := ev.Quantity
			if q < 0 {
				q = -q
			}
			r.MovementQuantity.WithLabelValues(t).Add(float64(q))
		}
	}
	return nil
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
