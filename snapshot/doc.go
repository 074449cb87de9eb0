// Package snapshot converts a ledger to and from its tabular backup form: four sheets
// (Products, Customers, Orders, Payments) that reference each other by human-readable
// names instead of ids, so a backup can be read, edited and restored into any account.
package snapshot
