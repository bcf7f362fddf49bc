package sheets

import (
	"complaint_map/internal/domain/complaint"
)

// Column positions on the complaint tab.
const (
	colAuthor = iota
	colProblem
	colDescription
	colDate
	colTime
	colLocation
	colStatus

	columnCount
)

// ComplaintHeaders returns the header row written to row 1.
func ComplaintHeaders() [][]interface{} {
	return [][]interface{}{
		{
			"Author",
			"Problem Title",
			"Description",
			"Date",
			"Time",
			"Location",
			"Status",
		},
	}
}

// EncodeRow converts a complaint into the 7-column row layout.
// An empty status is written as Pending; the status cell is never left blank.
func EncodeRow(c complaint.Complaint) []interface{} {
	status := c.Status
	if status == "" {
		status = complaint.StatusPending
	}

	row := make([]interface{}, columnCount)
	row[colAuthor] = c.Author
	row[colProblem] = c.Problem
	row[colDescription] = c.Description
	row[colDate] = c.Date
	row[colTime] = c.Time
	row[colLocation] = c.Location.String()
	row[colStatus] = string(status)
	return row
}

// DecodeRow converts a sheet row back into a complaint.
//
// Rows shorter than 7 cells are padded with empty values and a missing status
// decodes as Pending. Only an empty location cell decodes as no location.
// When the location cell cannot be parsed the complaint is still returned, with the raw text kept in its Location, together with an
// error wrapping complaint.ErrMalformedLocation.
func DecodeRow(row []interface{}) (complaint.Complaint, error) {
	c := complaint.Complaint{
		Author:      cellAt(row, colAuthor).String(),
		Problem:     cellAt(row, colProblem).String(),
		Description: cellAt(row, colDescription).String(),
		Date:        cellAt(row, colDate).String(),
		Time:        cellAt(row, colTime).String(),
		Status:      complaint.Status(cellAt(row, colStatus).String()),
	}
	if c.Status == "" {
		c.Status = complaint.StatusPending
	}

	locationText := cellAt(row, colLocation).String()
	if locationText == "" {
		return c, nil
	}

	loc, err := complaint.ParseLocation(locationText)
	c.Location = loc
	return c, err
}

// isBlankRow reports whether every cell of the row is empty.
func isBlankRow(row []interface{}) bool {
	for _, v := range row {
		if !NewCell(v).IsBlank() {
			return false
		}
	}
	return true
}

// blankRow is written back in place of a blank row so positions do not shift.
func blankRow() []interface{} {
	row := make([]interface{}, columnCount)
	for i := range row {
		row[i] = ""
	}
	return row
}
