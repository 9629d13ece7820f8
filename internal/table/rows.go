package table

import (
	"database/sql"
	"strconv"
	"strings"
)

// RowScanner is the part of *sqlx.Rows needed to materialize a result set.
type RowScanner interface {
	Columns() ([]string, error)
	ColumnTypes() ([]*sql.ColumnType, error)
	Next() bool
	SliceScan() ([]any, error)
	Err() error
}

// FromRows drains rows into a Table. The MySQL text protocol hands back
// []byte for most columns; those are decoded by the column's database type.
func FromRows(rows RowScanner) (*Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types := make([]string, len(cols))
	if cts, err := rows.ColumnTypes(); err == nil {
		for i, ct := range cts {
			if i < len(types) && ct != nil {
				types[i] = strings.ToUpper(ct.DatabaseTypeName())
			}
		}
	}

	t := New(cols...)
	for rows.Next() {
		cells, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		for i, v := range cells {
			cells[i] = decode(v, types[i])
		}
		t.Rows = append(t.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func decode(v any, dbType string) any {
	switch x := v.(type) {
	case []byte:
		return decodeText(string(x), dbType)
	case int32:
		return int64(x)
	case int:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

func decodeText(s, dbType string) any {
	switch dbType {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "YEAR",
		"UNSIGNED TINYINT", "UNSIGNED SMALLINT", "UNSIGNED MEDIUMINT", "UNSIGNED INT", "UNSIGNED BIGINT":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case "DECIMAL", "FLOAT", "DOUBLE":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
