// Package models defines the persistent entities of the inventory
// store: products, inventory items, stock count sessions, scanned items
// and the reconciliation ledger.
package models
