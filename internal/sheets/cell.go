package sheets

import (
	"fmt"
	"strings"
)

// Cell provides type-safe access to Google Sheets cell values.
// The Google Sheets API returns [][]interface{}; Cell keeps the type switch
// in one place.
type Cell struct {
	raw interface{}
}

// NewCell creates a Cell from a raw interface{} value from Google Sheets API
func NewCell(raw interface{}) Cell {
	return Cell{raw: raw}
}

// cellAt returns the cell at index i, or an empty cell when the API dropped
// trailing cells of a short row.
func cellAt(row []interface{}, i int) Cell {
	if i < 0 || i >= len(row) {
		return Cell{}
	}
	return NewCell(row[i])
}

// String returns the cell value as a string
func (c Cell) String() string {
	if c.raw == nil {
		return ""
	}
	if s, ok := c.raw.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", c.raw)
}

// IsBlank returns true if the cell is nil, empty, or whitespace only
func (c Cell) IsBlank() bool {
	return strings.TrimSpace(c.String()) == ""
}
