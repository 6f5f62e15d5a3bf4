// Package order provides the Order aggregate and its lifecycle state machine.
//
// The package includes:
//   - Order: the aggregate root holding lines, items, payments, adjustments and fulfillments
//   - State: the lifecycle states and the static table of guarded transitions between them
//   - Payment, Adjustment, Fulfillment, Address, ShippingMethod: entities and value objects of the order
//
// Key business rules:
//   - A transition is taken only along a declared edge, by an actor holding the edge
//     permission, when the edge guard holds; otherwise the order is left unchanged
//   - Totals are derived: total == subTotal + shippingTotal + adjustmentTotal
//   - Payments are append-only and coverage is computed from their states
//   - Items are cancelled and fulfilled one unit at a time
//
// Stock movements caused by transitions are coordinated by services.OrderStateMachine;
// this package only exposes the quantities involved (SaleQuantities, RestockQuantities).
package order
