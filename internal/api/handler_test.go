package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"complaint_map/internal/domain/complaint"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore keeps complaints in insertion order.
type memoryStore struct {
	mu         sync.Mutex
	complaints []complaint.Complaint
	err        error
}

func (s *memoryStore) Insert(ctx context.Context, c complaint.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.complaints = append(s.complaints, c)
	return nil
}

func (s *memoryStore) ScanAll(ctx context.Context) ([]complaint.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]complaint.Complaint, len(s.complaints))
	copy(out, s.complaints)
	return out, nil
}

func (s *memoryStore) UpdateStatusBatch(ctx context.Context, keys []complaint.RecordKey, status complaint.Status) (int, error) {
	if !status.IsValid() {
		return 0, complaint.ErrInvalidStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	selected := complaint.NewKeySet(keys...)
	count := 0
	for i := range s.complaints {
		if selected.Contains(s.complaints[i].Key()) {
			s.complaints[i].Status = status
			count++
		}
	}
	return count, nil
}

var fixedNow = time.Date(2025, 6, 1, 9, 30, 45, 0, time.UTC)

func newTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store)
	h.Now = func() time.Time { return fixedNow }
	return NewRouter(h, nil, nil)
}

func seed(author, problem, date, tod string, lat, lng float64) complaint.Complaint {
	return complaint.Complaint{
		Author:      author,
		Problem:     problem,
		Description: problem + " description",
		Date:        date,
		Time:        tod,
		Location:    complaint.NewLocation(lat, lng),
		Status:      complaint.StatusPending,
	}
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestCreateComplaint(t *testing.T) {
	store := &memoryStore{}
	r := newTestRouter(store)

	rec := do(t, r, http.MethodPost, "/complaints", map[string]interface{}{
		"author":      "Kim",
		"problem":     "Leak",
		"description": "Water on the stairs",
		"date":        "2025-06-01",
		"time":        "09:00",
		"location":    map[string]float64{"lat": 37.563256, "lng": 126.937537},
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[ComplaintResponse](t, rec)
	assert.Equal(t, "Leak|2025-06-01|09:00:00", got.Key)
	assert.Equal(t, "Pending", got.Status)
	assert.Equal(t, "[37.563256, 126.937537]", got.Location)
	assert.Equal(t, "[37.563, 126.938]", got.LocationShort)

	require.Len(t, store.complaints, 1)
	assert.Equal(t, "09:00:00", store.complaints[0].Time)
}

func TestCreateComplaintDefaultsToNow(t *testing.T) {
	store := &memoryStore{}
	r := newTestRouter(store)

	rec := do(t, r, http.MethodPost, "/complaints", map[string]interface{}{
		"author":      "Kim",
		"problem":     "Noise",
		"description": "Drilling",
		"location":    map[string]float64{"lat": 1, "lng": 2},
		"status":      "In Progress",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[ComplaintResponse](t, rec)
	assert.Equal(t, "2025-06-01", got.Date)
	assert.Equal(t, "09:30:00", got.Time, "seconds are dropped")
	assert.Equal(t, "In Progress", got.Status)
}

func TestCreateComplaintValidation(t *testing.T) {
	valid := func() map[string]interface{} {
		return map[string]interface{}{
			"author":      "Kim",
			"problem":     "Leak",
			"description": "Water",
			"date":        "2025-06-01",
			"time":        "09:00:00",
			"location":    map[string]float64{"lat": 1, "lng": 2},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(map[string]interface{})
		message string
	}{
		{"missing author", func(b map[string]interface{}) { delete(b, "author") }, "author"},
		{"blank problem", func(b map[string]interface{}) { b["problem"] = "   " }, "problem title"},
		{"missing description", func(b map[string]interface{}) { b["description"] = "" }, "description"},
		{"bad date", func(b map[string]interface{}) { b["date"] = "06/01/2025" }, "date"},
		{"bad time", func(b map[string]interface{}) { b["time"] = "9am" }, "time"},
		{"missing location", func(b map[string]interface{}) { delete(b, "location") }, "location"},
		{"out of range", func(b map[string]interface{}) { b["location"] = map[string]float64{"lat": 91, "lng": 0} }, "out of range"},
		{"bad status", func(b map[string]interface{}) { b["status"] = "Done" }, "status"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memoryStore{}
			r := newTestRouter(store)
			body := valid()
			tc.mutate(body)

			rec := do(t, r, http.MethodPost, "/complaints", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			got := decode[ErrorBody](t, rec)
			assert.Equal(t, "validation_error", got.Error.Code)
			assert.Contains(t, got.Error.Message, tc.message)
			assert.Empty(t, store.complaints, "nothing is inserted")
		})
	}
}

func TestCreateComplaintInvalidJSON(t *testing.T) {
	r := newTestRouter(&memoryStore{})

	rec := do(t, r, http.MethodPost, "/complaints", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreFailureIsUnavailable(t *testing.T) {
	store := &memoryStore{err: errors.New("could not reach the store")}
	r := newTestRouter(store)

	requests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, "/complaints", nil},
		{http.MethodGet, "/complaints/authors", nil},
		{http.MethodGet, "/complaints/markers", nil},
		{http.MethodPost, "/complaints", map[string]interface{}{
			"author": "Kim", "problem": "Leak", "description": "Water",
			"location": map[string]float64{"lat": 1, "lng": 2},
		}},
		{http.MethodPatch, "/complaints/status", map[string]interface{}{
			"keys":   []map[string]string{{"problem": "Leak", "date": "2025-06-01", "time": "09:00:00"}},
			"status": "Resolved",
		}},
	}

	for _, req := range requests {
		rec := do(t, r, req.method, req.path, req.body)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "%s %s", req.method, req.path)
		got := decode[ErrorBody](t, rec)
		assert.Equal(t, "store_unavailable", got.Error.Code)
	}
}

func TestListComplaints(t *testing.T) {
	store := &memoryStore{complaints: []complaint.Complaint{
		seed("Kim", "Leak", "2025-06-01", "09:00:00", 37.5, 126.9),
		seed("Lee", "Noise", "2025-06-01", "22:00:00", 37.6, 127.0),
		seed("Kim", "Pothole", "2025-06-02", "08:00:00", 37.5, 126.9),
	}}
	store.complaints[2].Status = complaint.StatusClosed
	r := newTestRouter(store)

	testCases := []struct {
		query    string
		expected []string
	}{
		{"", []string{"Leak", "Noise", "Pothole"}},
		{"?author=Kim", []string{"Leak", "Pothole"}},
		{"?status=Closed", []string{"Pothole"}},
		{"?date=2025-06-01&author=Lee", []string{"Noise"}},
		{"?author=Nobody", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			rec := do(t, r, http.MethodGet, "/complaints"+tc.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			got := decode[ListComplaintsResponse](t, rec)
			assert.Equal(t, len(tc.expected), got.Count)
			problems := make([]string, 0, len(got.Complaints))
			for _, c := range got.Complaints {
				problems = append(problems, c.Problem)
				assert.NotEmpty(t, c.LocationShort)
			}
			assert.Equal(t, tc.expected, problems)
		})
	}
}

func TestListComplaintsEmptyTable(t *testing.T) {
	r := newTestRouter(&memoryStore{})

	rec := do(t, r, http.MethodGet, "/complaints", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"complaints":[],"count":0}`, rec.Body.String())
}

func TestListComplaintsInvalidStatusFilter(t *testing.T) {
	r := newTestRouter(&memoryStore{})

	rec := do(t, r, http.MethodGet, "/complaints?status=pending", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAuthors(t *testing.T) {
	store := &memoryStore{complaints: []complaint.Complaint{
		seed("Park", "A", "2025-06-01", "09:00:00", 1, 2),
		seed("Kim", "B", "2025-06-01", "09:00:00", 1, 2),
		seed("Park", "C", "2025-06-01", "09:00:00", 1, 2),
	}}
	r := newTestRouter(store)

	rec := do(t, r, http.MethodGet, "/complaints/authors", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Kim", "Park"}, decode[AuthorsResponse](t, rec).Authors)
}

func TestListMarkers(t *testing.T) {
	malformed := seed("Lee", "Broken", "2025-06-01", "10:00:00", 0, 0)
	malformed.Location, _ = complaint.ParseLocation("somewhere")
	store := &memoryStore{complaints: []complaint.Complaint{
		seed("Kim", "Leak", "2025-06-01", "09:00:00", 37.5, 126.9),
		malformed,
		seed("Park", "Noise", "2025-06-01", "11:00:00", 37.5, 126.9),
		seed("Choi", "Light", "2025-06-01", "12:00:00", 37.6, 127.0),
	}}
	r := newTestRouter(store)

	rec := do(t, r, http.MethodGet, "/complaints/markers", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[MarkersResponse](t, rec)
	require.Len(t, got.Markers, 2)
	assert.Equal(t, 2, got.Markers[0].Count)
	assert.Equal(t, 37.5, got.Markers[0].Lat)
	assert.Equal(t, 126.9, got.Markers[0].Lng)
	assert.Equal(t, 1, got.Markers[1].Count)
}

func TestUpdateStatus(t *testing.T) {
	store := &memoryStore{complaints: []complaint.Complaint{
		seed("Kim", "Leak", "2025-06-01", "09:00:00", 1, 2),
		seed("Lee", "Leak", "2025-06-01", "09:00:00", 1, 2),
		seed("Park", "Broken Light", "2025-06-01", "09:00:00", 1, 2),
	}}
	r := newTestRouter(store)

	rec := do(t, r, http.MethodPatch, "/complaints/status", map[string]interface{}{
		"keys":   []map[string]string{{"problem": "Leak", "date": "2025-06-01", "time": "09:00:00"}},
		"status": "Resolved",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"updated":2}`, rec.Body.String())
	assert.Equal(t, complaint.StatusResolved, store.complaints[0].Status)
	assert.Equal(t, complaint.StatusResolved, store.complaints[1].Status)
	assert.Equal(t, complaint.StatusPending, store.complaints[2].Status)
}

func TestUpdateStatusMinutePrecisionKey(t *testing.T) {
	store := &memoryStore{complaints: []complaint.Complaint{
		seed("Kim", "Leak", "2025-06-01", "09:00:00", 1, 2),
		seed("Lee", "Leak", "2025-06-01", "09:00:00", 1, 2),
	}}
	r := newTestRouter(store)

	rec := do(t, r, http.MethodPatch, "/complaints/status", map[string]interface{}{
		"keys":   []map[string]string{{"problem": "Leak", "date": "2025-06-01", "time": "09:00"}},
		"status": "Closed",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"updated":2}`, rec.Body.String())
	assert.Equal(t, complaint.StatusClosed, store.complaints[0].Status)
	assert.Equal(t, complaint.StatusClosed, store.complaints[1].Status)
}

func TestUpdateStatusNoMatchIsSuccess(t *testing.T) {
	r := newTestRouter(&memoryStore{})

	rec := do(t, r, http.MethodPatch, "/complaints/status", map[string]interface{}{
		"keys":   []map[string]string{{"problem": "Leak", "date": "2025-06-01", "time": "09:00:00"}},
		"status": "Closed",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":0}`, rec.Body.String())
}

func TestUpdateStatusValidation(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"invalid status", `{"keys":[{"problem":"Leak","date":"2025-06-01","time":"09:00:00"}],"status":"Done"}`},
		{"missing status", `{"keys":[{"problem":"Leak","date":"2025-06-01","time":"09:00:00"}]}`},
		{"empty keys", `{"keys":[],"status":"Closed"}`},
		{"incomplete key", `{"keys":[{"problem":"Leak"}],"status":"Closed"}`},
		{"invalid json", `{"keys":`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&memoryStore{})
			rec := do(t, r, http.MethodPatch, "/complaints/status", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(&memoryStore{})

	rec := do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36, "generated IDs are UUIDs")

	req := httptest.NewRequest(http.MethodGet, "/complaints?status=bogus", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc-123", decode[ErrorBody](t, rec).Error.RequestID)
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)
	r := NewRouter(NewHandler(&memoryStore{}), metrics, reg)

	do(t, r, http.MethodGet, "/complaints", nil)
	do(t, r, http.MethodGet, "/complaints", nil)
	do(t, r, http.MethodGet, "/nope", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/complaints", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("unmatched", "GET", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.RequestLatency))

	rec := do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "complaint_api_requests_total"))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/complaints", "GET", "200")),
		"scrapes of /metrics are not recorded")
}

func TestMetricsRecordStoreFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)
	r := NewRouter(NewHandler(&memoryStore{err: errors.New("quota exceeded")}), metrics, reg)

	rec := do(t, r, http.MethodGet, "/complaints/authors", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/complaints/authors", "GET", "503")))
}

func TestNilHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var metrics *HTTPMetrics
	r := gin.New()
	r.Use(metrics.Middleware())
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	rec := do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
