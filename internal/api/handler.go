// Package api serves the complaint store over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"complaint_map/internal/config"
	"complaint_map/internal/domain/complaint"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Store is the subset of the complaint store the handlers use.
type Store interface {
	Insert(ctx context.Context, c complaint.Complaint) error
	ScanAll(ctx context.Context) ([]complaint.Complaint, error)
	UpdateStatusBatch(ctx context.Context, keys []complaint.RecordKey, status complaint.Status) (int, error)
}

// Handler holds the complaint endpoints.
type Handler struct {
	Store Store
	// Now defaults to time.Now; it fills a missing date or time on create.
	Now func() time.Time
}

// NewHandler creates a handler over store.
func NewHandler(store Store) *Handler {
	return &Handler{Store: store, Now: time.Now}
}

// CreateComplaint handles POST /complaints.
func (h *Handler) CreateComplaint(c *gin.Context) {
	var req CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "validation_error", "invalid json")
		return
	}

	record, err := req.toComplaint(h.now())
	if err != nil {
		writeError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	ctx, cancel := config.WithWriteTimeout(c.Request.Context())
	defer cancel()

	if err := h.Store.Insert(ctx, record); err != nil {
		storeFailure(c, "insert", err)
		return
	}

	c.JSON(http.StatusCreated, newComplaintResponse(record))
}

// ListComplaints handles GET /complaints with optional author, status and date filters.
func (h *Handler) ListComplaints(c *gin.Context) {
	filter := complaint.Filter{
		Author: c.Query("author"),
		Date:   c.Query("date"),
	}
	if s := c.Query("status"); s != "" {
		status, err := complaint.ParseStatus(s)
		if err != nil {
			writeError(c, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		filter.Status = status
	}

	all, ok := h.scan(c)
	if !ok {
		return
	}

	matched := complaint.FilterComplaints(all, filter)
	c.JSON(http.StatusOK, ListComplaintsResponse{
		Complaints: newComplaintResponses(matched),
		Count:      len(matched),
	})
}

// ListAuthors handles GET /complaints/authors.
func (h *Handler) ListAuthors(c *gin.Context) {
	all, ok := h.scan(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, AuthorsResponse{Authors: complaint.UniqueAuthors(all)})
}

// ListMarkers handles GET /complaints/markers.
func (h *Handler) ListMarkers(c *gin.Context) {
	all, ok := h.scan(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newMarkersResponse(complaint.GroupByLocation(all)))
}

// UpdateStatus handles PATCH /complaints/status.
// A request matching nothing succeeds with updated 0.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "validation_error", "invalid json")
		return
	}

	status, err := complaint.ParseStatus(req.Status)
	if err != nil {
		writeError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	keys, err := req.recordKeys()
	if err != nil {
		writeError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	ctx, cancel := config.WithWriteTimeout(c.Request.Context())
	defer cancel()

	updated, err := h.Store.UpdateStatusBatch(ctx, keys, status)
	if err != nil {
		if errors.Is(err, complaint.ErrInvalidStatus) {
			writeError(c, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		storeFailure(c, "update_status", err)
		return
	}

	c.JSON(http.StatusOK, UpdateStatusResponse{Updated: updated})
}

func (h *Handler) scan(c *gin.Context) ([]complaint.Complaint, bool) {
	ctx, cancel := config.WithReadTimeout(c.Request.Context())
	defer cancel()

	all, err := h.Store.ScanAll(ctx)
	if err != nil {
		storeFailure(c, "scan", err)
		return nil, false
	}
	return all, true
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func storeFailure(c *gin.Context, operation string, err error) {
	log.Error().
		Err(err).
		Str("request_id", requestID(c)).
		Str("operation", operation).
		Msg("Complaint store call failed")
	writeError(c, http.StatusServiceUnavailable, "store_unavailable", "complaint store is unavailable")
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: ErrorDetail{
		Code:      code,
		Message:   message,
		RequestID: requestID(c),
	}})
}
