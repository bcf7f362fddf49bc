package sheets

import (
	"context"
	"strconv"
	"strings"
)

// MockSheetsAPI implements SheetsAPI for testing.
// Each sheet is held as full rows starting at row 1 (the header).
type MockSheetsAPI struct {
	sheets map[string]bool
	data   map[string][][]interface{}

	readErr   error
	appendErr error
	updateErr error
	existsErr error

	// beforeUpdate runs inside UpdateRange before the write is applied,
	// standing in for another writer acting during the read-modify-write window.
	beforeUpdate func()

	readCalls       int
	appendCalls     int
	updateCalls     int
	lastAppendRange string
	lastUpdateRange string
}

func NewMockSheetsAPI() *MockSheetsAPI {
	return &MockSheetsAPI{
		sheets: make(map[string]bool),
		data:   make(map[string][][]interface{}),
	}
}

// parseRange splits "'Sheet'!A2:G5" into the sheet name and 1-based rows.
// end is 0 when the range is open-ended.
func parseRange(range_ string) (sheet string, start, end int) {
	sheet = range_
	cells := ""
	if i := strings.LastIndex(range_, "!"); i != -1 {
		sheet, cells = range_[:i], range_[i+1:]
	}
	if strings.HasPrefix(sheet, "'") && strings.HasSuffix(sheet, "'") && len(sheet) >= 2 {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}

	from, to, _ := strings.Cut(cells, ":")
	start = rowNumber(from)
	if start == 0 {
		start = 1
	}
	end = rowNumber(to)
	return sheet, start, end
}

func rowNumber(ref string) int {
	digits := strings.TrimLeft(ref, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

func copyRow(row []interface{}) []interface{} {
	out := make([]interface{}, len(row))
	copy(out, row)
	return out
}

func (m *MockSheetsAPI) ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error) {
	m.readCalls++
	if m.readErr != nil {
		return nil, m.readErr
	}

	sheet, start, end := parseRange(range_)
	rows := m.data[sheet]
	last := len(rows)
	if end != 0 && end < last {
		last = end
	}

	out := [][]interface{}{}
	for i := start - 1; i < last; i++ {
		out = append(out, copyRow(rows[i]))
	}

	// the API omits trailing empty rows
	for len(out) > 0 && isBlankRow(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *MockSheetsAPI) UpdateRange(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error {
	m.updateCalls++
	m.lastUpdateRange = range_
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	if m.updateErr != nil {
		return m.updateErr
	}

	sheet, start, _ := parseRange(range_)
	rows := m.data[sheet]
	for len(rows) < start-1+len(values) {
		rows = append(rows, []interface{}{})
	}
	for i, v := range values {
		rows[start-1+i] = copyRow(v)
	}
	m.data[sheet] = rows
	return nil
}

func (m *MockSheetsAPI) AppendRows(ctx context.Context, spreadsheetID, range_ string, rows [][]interface{}) error {
	m.appendCalls++
	m.lastAppendRange = range_
	if m.appendErr != nil {
		return m.appendErr
	}

	sheet, _, _ := parseRange(range_)
	existing := m.data[sheet]
	for len(existing) > 0 && isBlankRow(existing[len(existing)-1]) {
		existing = existing[:len(existing)-1]
	}
	for _, r := range rows {
		existing = append(existing, copyRow(r))
	}
	m.data[sheet] = existing
	return nil
}

func (m *MockSheetsAPI) CreateSheet(ctx context.Context, spreadsheetID, sheetName string) error {
	m.sheets[sheetName] = true
	return nil
}

func (m *MockSheetsAPI) SheetExists(ctx context.Context, spreadsheetID, sheetName string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.sheets[sheetName], nil
}

// SetSheetData replaces a sheet's rows, header included.
func (m *MockSheetsAPI) SetSheetData(sheetName string, rows [][]interface{}) {
	m.sheets[sheetName] = true
	m.data[sheetName] = rows
}

func (m *MockSheetsAPI) GetSheetData(sheetName string) [][]interface{} {
	return m.data[sheetName]
}
