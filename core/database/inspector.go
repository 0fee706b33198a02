package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches one row of SHOW COLUMNS output.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // pointer because a NULL default is possible
	Extra   string
}

// RequiredTables lists the tables the reconciliation applier mutates and
// the columns it depends on. Used when automatic migration is disabled
// and the schema is managed externally.
var RequiredTables = map[string][]string{
	"products":               {"id", "name", "gtin"},
	"inventory_items":        {"id", "product_id", "location", "quantity", "tracking_mode", "serial_number", "lot_number", "status"},
	"stock_count_sessions":   {"id", "count_type", "status"},
	"scanned_items":          {"id", "session_id", "product_id", "scanned_location", "quantity"},
	"reconciliation_entries": {"session_id", "adjustment_key", "kind"},
}

// GetTableColumns retrieves the column definitions for a given table.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	query := fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)
	if err := db.Raw(query).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	return columns, nil
}

// VerifySchema checks that every required table exists and carries the
// columns the applier writes. It returns a list of human-readable
// problems; an empty list means the schema is usable.
func VerifySchema(db *gorm.DB) []string {
	var problems []string

	for table, required := range RequiredTables {
		if !db.Migrator().HasTable(table) {
			problems = append(problems, fmt.Sprintf("missing table: %s", table))
			continue
		}

		columns, err := GetTableColumns(db, table)
		if err != nil {
			problems = append(problems, fmt.Sprintf("cannot inspect table %s: %v", table, err))
			continue
		}

		have := make(map[string]struct{}, len(columns))
		for _, col := range columns {
			have[strings.ToLower(col.Field)] = struct{}{}
		}

		for _, col := range required {
			if _, ok := have[col]; !ok {
				problems = append(problems, fmt.Sprintf("table %s: missing column %s", table, col))
			}
		}
	}

	return problems
}
