package sheets

import (
	"context"
)

// SheetsAPI is the subset of the Google Sheets API the complaint store needs.
//
// Note on interface{} usage:
// google.golang.org/api/sheets/v4 uses [][]interface{} for cell values. That
// type stays at this boundary; the codec reads cells through the Cell wrapper.
type SheetsAPI interface {
	// ReadSheet reads values from a sheet range. Trailing empty cells and
	// trailing empty rows are omitted by the API.
	ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error)

	// UpdateRange overwrites the cells of a sheet range.
	UpdateRange(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error

	// AppendRows appends rows after the last non-empty row of a range.
	AppendRows(ctx context.Context, spreadsheetID, range_ string, rows [][]interface{}) error

	// CreateSheet adds a tab to the spreadsheet.
	CreateSheet(ctx context.Context, spreadsheetID, sheetName string) error

	// SheetExists checks whether a tab with the given name exists.
	SheetExists(ctx context.Context, spreadsheetID, sheetName string) (bool, error)
}
