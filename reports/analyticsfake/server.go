// Package analyticsfake is an in-process stand-in for the Analytics Data API
// runReport endpoint, for tests.
package analyticsfake

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"google.golang.org/api/analyticsdata/v1beta"
)

// Request is one recorded runReport call.
type Request struct {
	Path          string
	Authorization string
	Body          analyticsdata.RunReportRequest
}

type failure struct {
	status  int
	message string
}

// Server answers runReport calls with canned rows keyed by the request's first
// dimension name ("" for dimensionless reports).
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	rows     map[string][]*analyticsdata.Row
	failures map[string]failure
	requests []Request
}

func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		rows:     map[string][]*analyticsdata.Row{},
		failures: map[string]failure{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Endpoint is the base URL to hand to the gateway.
func (s *Server) Endpoint() string {
	return s.URL + "/"
}

// SetRows sets the rows returned for reports whose first dimension is dimension.
func (s *Server) SetRows(dimension string, rows ...*analyticsdata.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[dimension] = rows
}

// Fail makes calls for the given dimension answer with a Google API error.
func (s *Server) Fail(dimension string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[dimension] = failure{status: status, message: message}
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Row builds a result row.
func Row(dimensions []string, metrics ...string) *analyticsdata.Row {
	r := &analyticsdata.Row{}
	for _, d := range dimensions {
		r.DimensionValues = append(r.DimensionValues, &analyticsdata.DimensionValue{Value: d})
	}
	for _, m := range metrics {
		r.MetricValues = append(r.MetricValues, &analyticsdata.MetricValue{Value: m})
	}
	return r
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, ":runReport") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		writeError(w, http.StatusUnauthorized, "Request is missing required authentication credential.")
		return
	}

	var body analyticsdata.RunReportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := ""
	if len(body.Dimensions) > 0 && body.Dimensions[0] != nil {
		key = body.Dimensions[0].Name
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	})
	fail, failing := s.failures[key]
	rows := s.rows[key]
	s.mu.Unlock()

	if failing {
		writeError(w, fail.status, fail.message)
		return
	}

	resp := analyticsdata.RunReportResponse{Kind: "analyticsData#runReport", Rows: rows, RowCount: int64(len(rows))}
	for _, d := range body.Dimensions {
		resp.DimensionHeaders = append(resp.DimensionHeaders, &analyticsdata.DimensionHeader{Name: d.Name})
	}
	for _, m := range body.Metrics {
		resp.MetricHeaders = append(resp.MetricHeaders, &analyticsdata.MetricHeader{Name: m.Name, Type: "TYPE_INTEGER"})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(&resp)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": message,
			"status":  http.StatusText(status),
		},
	})
}
