// Package stock models the stock ledger of a product variant.
//
// A Variant is an event-sourced pair: an append-only sequence of Movements and a
// materialized stockOnHand counter that is only ever changed together with a new
// movement. For tracked variants the counter always equals the sum of movement
// quantities.
//
// Movement quantities are signed: positive adds stock, negative removes it.
//   - ADJUSTMENT: administrative correction, any non-zero quantity
//   - SALE: negative, recorded once per order line when the order reaches its sale point
//   - CANCELLATION: positive, restores sold items that were cancelled before fulfillment
//   - RETURN: positive, goods coming back after fulfillment
package stock
