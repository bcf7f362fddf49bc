package api

import (
	"strings"
	"time"

	"complaint_map/internal/domain/complaint"
)

// LocationDTO is a coordinate pair in request bodies.
type LocationDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CreateComplaintRequest is the body of POST /complaints.
// Date and time default to the current minute when omitted.
type CreateComplaintRequest struct {
	Author      string       `json:"author"`
	Problem     string       `json:"problem"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
	Time        string       `json:"time"`
	Location    *LocationDTO `json:"location"`
	Status      string       `json:"status"`
}

// toComplaint builds the complaint to insert. now fills a missing date or time.
func (r CreateComplaintRequest) toComplaint(now time.Time) (complaint.Complaint, error) {
	if r.Location == nil {
		return complaint.Complaint{}, complaint.ValidationError("location is required")
	}

	when, err := complaint.IncidentTime(r.Date, r.Time, now)
	if err != nil {
		return complaint.Complaint{}, err
	}

	c := complaint.New(
		strings.TrimSpace(r.Author),
		strings.TrimSpace(r.Problem),
		strings.TrimSpace(r.Description),
		when,
		complaint.NewLocation(r.Location.Lat, r.Location.Lng),
	)

	if r.Status != "" {
		status, err := complaint.ParseStatus(r.Status)
		if err != nil {
			return complaint.Complaint{}, err
		}
		c.Status = status
	}

	return c, c.Validate()
}

// ComplaintResponse is one complaint as returned by the API.
type ComplaintResponse struct {
	Key           string `json:"key"`
	Author        string `json:"author"`
	Problem       string `json:"problem"`
	Description   string `json:"description"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Location      string `json:"location"`
	LocationShort string `json:"location_short"`
	Status        string `json:"status"`
}

func newComplaintResponse(c complaint.Complaint) ComplaintResponse {
	return ComplaintResponse{
		Key:           c.Key().String(),
		Author:        c.Author,
		Problem:       c.Problem,
		Description:   c.Description,
		Date:          c.Date,
		Time:          c.Time,
		Location:      c.Location.String(),
		LocationShort: c.Location.Short(),
		Status:        string(c.Status),
	}
}

func newComplaintResponses(complaints []complaint.Complaint) []ComplaintResponse {
	out := make([]ComplaintResponse, 0, len(complaints))
	for _, c := range complaints {
		out = append(out, newComplaintResponse(c))
	}
	return out
}

// ListComplaintsResponse is the body of GET /complaints.
type ListComplaintsResponse struct {
	Complaints []ComplaintResponse `json:"complaints"`
	Count      int                 `json:"count"`
}

// AuthorsResponse is the body of GET /complaints/authors.
type AuthorsResponse struct {
	Authors []string `json:"authors"`
}

// MarkerResponse is every complaint at one map point.
type MarkerResponse struct {
	Lat        float64             `json:"lat"`
	Lng        float64             `json:"lng"`
	Location   string              `json:"location"`
	Count      int                 `json:"count"`
	Complaints []ComplaintResponse `json:"complaints"`
}

// MarkersResponse is the body of GET /complaints/markers.
type MarkersResponse struct {
	Markers []MarkerResponse `json:"markers"`
}

func newMarkersResponse(markers []complaint.Marker) MarkersResponse {
	out := make([]MarkerResponse, 0, len(markers))
	for _, m := range markers {
		out = append(out, MarkerResponse{
			Lat:        m.Location.Lat(),
			Lng:        m.Location.Lng(),
			Location:   m.Location.String(),
			Count:      len(m.Complaints),
			Complaints: newComplaintResponses(m.Complaints),
		})
	}
	return MarkersResponse{Markers: out}
}

// KeyDTO addresses complaints by their natural key.
type KeyDTO struct {
	Problem string `json:"problem"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// UpdateStatusRequest is the body of PATCH /complaints/status.
type UpdateStatusRequest struct {
	Keys   []KeyDTO `json:"keys"`
	Status string   `json:"status"`
}

func (r UpdateStatusRequest) recordKeys() ([]complaint.RecordKey, error) {
	if len(r.Keys) == 0 {
		return nil, complaint.ValidationError("at least one key is required")
	}
	keys := make([]complaint.RecordKey, 0, len(r.Keys))
	for _, k := range r.Keys {
		if k.Problem == "" || k.Date == "" || k.Time == "" {
			return nil, complaint.ValidationError("keys need problem, date and time")
		}
		keys = append(keys, complaint.RecordKey{Problem: k.Problem, Date: k.Date, Time: k.Time})
	}
	return keys, nil
}

// UpdateStatusResponse is the body returned by PATCH /complaints/status.
type UpdateStatusResponse struct {
	Updated int `json:"updated"`
}

// ErrorBody is the body of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a message.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
