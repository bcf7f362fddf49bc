package sheets

import (
	"fmt"
	"strings"
)

// Range helpers for the complaint tab. Column A is author, G is status.
const (
	firstColumn = "A"
	lastColumn  = "G"
	// Row 1 holds the header; data starts on row 2.
	firstDataRow = 2
)

// quoteSheetName quotes a tab name for A1 notation. Embedded single quotes are doubled.
func quoteSheetName(sheetName string) string {
	return "'" + strings.ReplaceAll(sheetName, "'", "''") + "'"
}

// headerRange is the single header row.
func headerRange(sheetName string) string {
	return fmt.Sprintf("%s!%s1:%s1", quoteSheetName(sheetName), firstColumn, lastColumn)
}

// appendRange is the whole column span; the API appends after the last row.
func appendRange(sheetName string) string {
	return fmt.Sprintf("%s!%s:%s", quoteSheetName(sheetName), firstColumn, lastColumn)
}

// scanRange is every data row below the header.
func scanRange(sheetName string) string {
	return fmt.Sprintf("%s!%s%d:%s", quoteSheetName(sheetName), firstColumn, firstDataRow, lastColumn)
}

// dataRange is the bounded block holding rowCount data rows.
func dataRange(sheetName string, rowCount int) string {
	lastRow := firstDataRow + rowCount - 1
	return fmt.Sprintf("%s!%s%d:%s%d", quoteSheetName(sheetName), firstColumn, firstDataRow, lastColumn, lastRow)
}
