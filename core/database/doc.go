// Package database manages the MySQL connection used by the inventory
// store. It also provides a small schema inspector used at startup to
// verify that the tables the reconciliation engine mutates exist with
// the expected columns.
package database
