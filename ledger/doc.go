// Package ledger holds the order/payment reconciliation core.
//
// Key functions:
//   - ComputeLineValue, ComputeOrderTotal: price line items and total an order
//   - Normalize: upgrade legacy single-product orders to the line-items shape
//   - RecomputeSettlement: derive amount paid and status from the full payment history
//
// Everything here is pure; callers load a Ledger, call in, and persist the results.
package ledger
