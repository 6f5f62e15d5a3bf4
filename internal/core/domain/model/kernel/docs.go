// Package kernel provides the value objects shared by every aggregate of the
// fulfillment core:
//   - UUID: identifiers for orders, lines, items, payments, variants and movements
//   - CurrencyCode: ISO 4217 code attached to orders and variants
//   - Permission and Actor: who is asking, and what they may do
package kernel
