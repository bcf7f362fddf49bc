// Package complaint defines the complaint entity stored in the spreadsheet,
// its validation rules, and pure helpers used when listing complaints.
package complaint

import (
	"fmt"
	"strings"
	"time"
)

// Wire layouts for the date and time columns.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Complaint is one reported problem.
type Complaint struct {
	Author      string
	Problem     string
	Description string
	Date        string
	Time        string
	Location    Location
	Status      Status
}

// New creates a pending complaint for an incident that happened at `when`.
// The time of day is kept at minute resolution.
func New(author, problem, description string, when time.Time, loc Location) Complaint {
	minute := time.Date(0, 1, 1, when.Hour(), when.Minute(), 0, 0, time.UTC)
	return Complaint{
		Author:      author,
		Problem:     problem,
		Description: description,
		Date:        when.Format(DateLayout),
		Time:        minute.Format(TimeLayout),
		Location:    loc,
		Status:      StatusPending,
	}
}

// IncidentTime combines an optional date (YYYY-MM-DD) and clock time (HH:MM or
// HH:MM:SS) into the moment passed to New. Missing parts come from now.
func IncidentTime(date, clock string, now time.Time) (time.Time, error) {
	day := now
	if date != "" {
		d, err := time.Parse(DateLayout, date)
		if err != nil {
			return time.Time{}, ValidationError(fmt.Sprintf("date must be YYYY-MM-DD, got %q", date))
		}
		day = d
	}

	hour, minute := now.Hour(), now.Minute()
	if clock != "" {
		t, err := time.Parse(TimeLayout, clock)
		if err != nil {
			t, err = time.Parse("15:04", clock)
		}
		if err != nil {
			return time.Time{}, ValidationError(fmt.Sprintf("time must be HH:MM or HH:MM:SS, got %q", clock))
		}
		hour, minute = t.Hour(), t.Minute()
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()), nil
}

// Key returns the natural composite key of the complaint.
func (c Complaint) Key() RecordKey {
	return RecordKey{Problem: c.Problem, Date: c.Date, Time: c.Time}
}

// Validate checks that the complaint may be inserted.
func (c Complaint) Validate() error {
	if strings.TrimSpace(c.Author) == "" {
		return ValidationError("author is required")
	}
	if strings.TrimSpace(c.Problem) == "" {
		return ValidationError("problem title is required")
	}
	if strings.TrimSpace(c.Description) == "" {
		return ValidationError("description is required")
	}
	if c.Date == "" {
		return ValidationError("date is required")
	}
	if _, err := time.Parse(DateLayout, c.Date); err != nil {
		return ValidationError(fmt.Sprintf("date must be YYYY-MM-DD, got %q", c.Date))
	}
	if c.Time == "" {
		return ValidationError("time is required")
	}
	if _, err := time.Parse(TimeLayout, c.Time); err != nil {
		return ValidationError(fmt.Sprintf("time must be HH:MM:SS, got %q", c.Time))
	}
	if !c.Location.Valid() {
		return ValidationError("location is required")
	}
	if !c.Location.InRange() {
		return ValidationError("location coordinates are out of range")
	}
	if !c.Status.IsValid() {
		return ValidationError(fmt.Sprintf("status must be one of Pending, In Progress, Resolved, Closed, got %q", c.Status))
	}
	return nil
}

// IsValid reports whether Validate succeeds.
func (c Complaint) IsValid() bool {
	return c.Validate() == nil
}

func (c Complaint) String() string {
	return fmt.Sprintf("Complaint by %s on %s at %s: %s - %s (Location: %s)",
		c.Author, c.Date, c.Time, c.Problem, c.Description, c.Location)
}
