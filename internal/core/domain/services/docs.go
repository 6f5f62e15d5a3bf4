// Package services provides domain services that coordinate more than one
// aggregate.
//
// The package includes:
//   - OrderStateMachine: executes order transitions together with the stock
//     movements they cause (sale on first payment, restock on cancellation)
//   - AdjustmentApplier: applies promotion and shipping adjustments to an order
//
// Services mutate aggregates in memory only; application handlers persist the
// results inside a single unit of work.
package services
