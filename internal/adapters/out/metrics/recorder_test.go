package metrics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"fulfillment/internal/adapters/out/metrics"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRecorder_CountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewEventRecorder(reg)
	require.NoError(t, err)

	orderID := kernel.NewUUID()
	err = recorder.Publish(context.Background(),
		order.OrderStateChanged{OrderID: orderID, From: order.AddingItems, To: order.ArrangingPayment},
		order.OrderStateChanged{OrderID: orderID, From: order.AddingItems, To: order.ArrangingPayment},
		order.PaymentAdded{OrderID: orderID, Method: "instant-settlement", State: order.PaymentStateSettled},
		stock.StockMovementRecorded{Type: stock.Sale, Quantity: -3},
		stock.StockMovementRecorded{Type: stock.Sale, Quantity: -2},
		stock.StockMovementRecorded{Type: stock.Return, Quantity: 1},
	)
	require.NoError(t, err)

	assert.InDelta(t, 2, testutil.ToFloat64(recorder.Transitions.WithLabelValues("AddingItems", "ArrangingPayment")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(recorder.Payments.WithLabelValues("instant-settlement", "Settled")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(recorder.Movements.WithLabelValues("SALE")), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(recorder.MovementQuantity.WithLabelValues("SALE")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(recorder.MovementQuantity.WithLabelValues("RETURN")), 0)
}

func TestEventRecorder_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewEventRecorder(reg)
	require.NoError(t, err)

	_, err = metrics.NewEventRecorder(reg)
	assert.Error(t, err)
}

func TestHandler_ExposesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewEventRecorder(reg)
	require.NoError(t, err)
	require.NoError(t, recorder.Publish(context.Background(), stock.StockMovementRecorded{Type: stock.Adjustment, Quantity: 4}))

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fulfillment_stock_movements_total{type="ADJUSTMENT"} 1`)
}
