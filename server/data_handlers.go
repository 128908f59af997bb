package server

import (
	"net/http"
	"sync"

	apperrors "github.com/jrsteele09/ga-dashboard/internal/errors"
	"github.com/jrsteele09/ga-dashboard/internal/logging"
	"github.com/jrsteele09/ga-dashboard/reports"
	"github.com/jrsteele09/ga-dashboard/shaper"
	"golang.org/x/sync/errgroup"
)

const (
	reportFailedMessage    = "Failed to fetch report"
	dashboardFailedMessage = "Failed to fetch data. You might need to log in again."
)

// ReportHandler runs one named report and returns the upstream JSON unchanged.
func (s *Server) ReportHandler(name string) http.HandlerFunc {
	spec := reports.MustLookup(name)

	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := clientFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		res, err := s.reports.Run(r.Context(), spec, client, reports.ResolveDateRange(r.URL.Query()))
		if err != nil {
			writeJSONError(w, s.reportErrorMessage(err), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, res.Raw)
	}
}

func (s *Server) reportErrorMessage(err error) string {
	var gerr *reports.GatewayError
	if s.config.GetExposeUpstreamErrors() && apperrors.As(err, &gerr) {
		return gerr.Message
	}
	return reportFailedMessage
}

// DashboardHandler runs every report concurrently and returns the shaped
// payload. One failure fails the whole batch.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := clientFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		dr := reports.ResolveDateRange(r.URL.Query())

		var (
			mu   sync.Mutex
			rows = make(map[string][]reports.Row, len(reports.Names()))
		)
		g, ctx := errgroup.WithContext(r.Context())
		for _, name := range reports.Names() {
			spec := reports.MustLookup(name)
			g.Go(func() error {
				res, err := s.reports.Run(ctx, spec, client, dr)
				if err != nil {
					return err
				}
				mu.Lock()
				rows[spec.Name] = res.Rows
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("[server] dashboard fetch failed")
			writeJSONError(w, dashboardFailedMessage, http.StatusInternalServerError)
			return
		}

		dashboard, err := shaper.BuildDashboard(rows, s.printer)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("[server] dashboard shaping failed")
			writeJSONError(w, dashboardFailedMessage, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, dashboard)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// PreflightHandler only runs for OPTIONS requests the cors middleware let through.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
