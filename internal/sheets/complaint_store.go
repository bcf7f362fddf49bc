package sheets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"complaint_map/internal/domain/complaint"

	"github.com/rs/zerolog/log"
)

// ComplaintStore persists complaints in one spreadsheet tab.
//
// The tab is used as a table with a header row and seven columns. The API
// offers append, range read and range overwrite only, so:
//
//   - Insert appends one row.
//   - ScanAll reads every data row in one request.
//   - UpdateStatusBatch reads the whole table, patches it in memory, and
//     overwrites the block of rows it read.
//
// Concurrency: UpdateStatusBatch is a read-modify-write with no version check.
// The overwrite is bounded to the rows that were read, so rows appended by a
// concurrent Insert survive. Two batch updates from different processes still
// race and the later overwrite wins over every row in its range. Updates from
// the same ComplaintStore are serialized.
//
// The store keeps no table snapshot between calls.
type ComplaintStore struct {
	api           SheetsAPI
	spreadsheetID string
	sheetName     string
	metrics       *Metrics

	updateMu sync.Mutex
}

// NewComplaintStore creates a store over the given tab. metrics may be nil.
func NewComplaintStore(api SheetsAPI, spreadsheetID, sheetName string, metrics *Metrics) *ComplaintStore {
	return &ComplaintStore{
		api:           api,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		metrics:       metrics,
	}
}

// storedRow is one data row as read, kept positionally for the overwrite.
type storedRow struct {
	complaint complaint.Complaint
	blank     bool
}

// EnsureComplaintSheet creates the complaint tab if it doesn't exist and
// writes the header row when the tab has none.
func (s *ComplaintStore) EnsureComplaintSheet(ctx context.Context) error {
	exists, err := s.api.SheetExists(ctx, s.spreadsheetID, s.sheetName)
	if err != nil {
		return classify("check if complaint sheet exists", err)
	}

	if !exists {
		log.Info().
			Str("sheet_name", s.sheetName).
			Msg("Creating complaint sheet")

		if err := s.api.CreateSheet(ctx, s.spreadsheetID, s.sheetName); err != nil {
			return classify("create complaint sheet", err)
		}
	}

	header, err := s.api.ReadSheet(ctx, s.spreadsheetID, headerRange(s.sheetName))
	if err != nil {
		return classify("read complaint sheet header", err)
	}
	if len(header) > 0 && !isBlankRow(header[0]) {
		log.Debug().
			Str("sheet_name", s.sheetName).
			Msg("Complaint sheet already has headers")
		return nil
	}

	if err := s.api.UpdateRange(ctx, s.spreadsheetID, headerRange(s.sheetName), ComplaintHeaders()); err != nil {
		return classify("write complaint sheet headers", err)
	}

	log.Info().
		Str("sheet_name", s.sheetName).
		Msg("Initialized complaint sheet with headers")

	return nil
}

// Insert appends the complaint as a new row.
//
// The complaint is not validated here; callers validate before inserting.
// Nothing is retried. On error the append did not happen.
func (s *ComplaintStore) Insert(ctx context.Context, c complaint.Complaint) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe("insert", start, err) }()

	row := EncodeRow(c)
	if err := s.api.AppendRows(ctx, s.spreadsheetID, appendRange(s.sheetName), [][]interface{}{row}); err != nil {
		log.Error().
			Err(err).
			Str("sheet_name", s.sheetName).
			Str("problem", c.Problem).
			Msg("Failed to append complaint")
		return classify("append complaint", err)
	}

	log.Info().
		Str("sheet_name", s.sheetName).
		Str("author", c.Author).
		Str("problem", c.Problem).
		Str("date", c.Date).
		Str("time", c.Time).
		Msg("Appended complaint")

	return nil
}

// ScanAll reads every complaint in insertion order.
//
// Blank rows are skipped. An empty table returns an empty slice and no error.
// Rows with an unparsable location are returned with the raw location text.
func (s *ComplaintStore) ScanAll(ctx context.Context) (_ []complaint.Complaint, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("scan", start, err) }()

	rows, err := s.readRows(ctx)
	if err != nil {
		return nil, err
	}

	complaints := make([]complaint.Complaint, 0, len(rows))
	for _, r := range rows {
		if r.blank {
			continue
		}
		complaints = append(complaints, r.complaint)
	}

	log.Debug().
		Str("sheet_name", s.sheetName).
		Int("rows_read", len(rows)).
		Int("complaints", len(complaints)).
		Msg("Scanned complaints")

	return complaints, nil
}

// UpdateStatusBatch sets status on every complaint whose key is in keys and
// returns how many rows matched. Rows already at status still count.
//
// An invalid status is rejected before any request is made. When nothing
// matches no write is made and (0, nil) is returned.
func (s *ComplaintStore) UpdateStatusBatch(ctx context.Context, keys []complaint.RecordKey, status complaint.Status) (_ int, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("update_status", start, err) }()

	if !status.IsValid() {
		return 0, fmt.Errorf("%w: %q", complaint.ErrInvalidStatus, status)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	rows, err := s.readRows(ctx)
	if err != nil {
		return 0, err
	}

	selected := complaint.NewKeySet(keys...)
	count := 0
	for i := range rows {
		if rows[i].blank {
			continue
		}
		if selected.Contains(rows[i].complaint.Key()) {
			rows[i].complaint.Status = status
			count++
		}
	}

	if count == 0 {
		log.Info().
			Str("sheet_name", s.sheetName).
			Int("selectors", len(selected)).
			Msg("No complaints matched status update")
		return 0, nil
	}

	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		if r.blank {
			values[i] = blankRow()
			continue
		}
		values[i] = EncodeRow(r.complaint)
	}

	rangeSpec := dataRange(s.sheetName, len(rows))
	if err := s.api.UpdateRange(ctx, s.spreadsheetID, rangeSpec, values); err != nil {
		log.Error().
			Err(err).
			Str("range", rangeSpec).
			Msg("Failed to overwrite complaint rows")
		return 0, classify("overwrite complaint rows", err)
	}

	s.metrics.rowsUpdated(count)

	log.Info().
		Str("sheet_name", s.sheetName).
		Str("range", rangeSpec).
		Str("status", string(status)).
		Int("selectors", len(selected)).
		Int("updated", count).
		Msg("Updated complaint status")

	return count, nil
}

// readRows reads the data block and decodes it positionally.
func (s *ComplaintStore) readRows(ctx context.Context) ([]storedRow, error) {
	values, err := s.api.ReadSheet(ctx, s.spreadsheetID, scanRange(s.sheetName))
	if err != nil {
		return nil, classify("read complaints", err)
	}

	rows := make([]storedRow, len(values))
	for i, v := range values {
		if isBlankRow(v) {
			rows[i] = storedRow{blank: true}
			continue
		}

		c, err := DecodeRow(v)
		if errors.Is(err, complaint.ErrMalformedLocation) {
			s.metrics.malformedRow()
			log.Warn().
				Int("row", i+firstDataRow).
				Str("location", c.Location.Raw()).
				Msg("Unparsable location; keeping raw value")
		}
		rows[i] = storedRow{complaint: c}
	}

	return rows, nil
}
