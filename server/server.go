package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/ga-dashboard/authflow"
	"github.com/jrsteele09/ga-dashboard/credentials"
	"github.com/jrsteele09/ga-dashboard/internal/config"
	"github.com/jrsteele09/ga-dashboard/internal/logging"
	"github.com/jrsteele09/ga-dashboard/reports"
	"github.com/jrsteele09/ga-dashboard/sessions"
	"github.com/jrsteele09/ga-dashboard/shaper"
	"golang.org/x/text/message"
)

// ReportRunner executes one report for an authorized client.
type ReportRunner interface {
	Run(ctx context.Context, spec reports.Spec, client credentials.AuthorizedClient, dr reports.DateRange) (*reports.Result, error)
}

// Deps are the collaborators the HTTP surface is built on.
type Deps struct {
	Sessions    sessions.Repo
	Auth        *authflow.Controller
	Credentials *credentials.Store
	Reports     ReportRunner
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	cookies *sessions.CookieCodec
	printer *message.Printer

	cors      func(http.Handler) http.Handler
	rateLimit func(http.Handler) http.Handler

	sessions sessions.Repo
	auth     *authflow.Controller
	creds    *credentials.Store
	reports  ReportRunner
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Sessions == nil || deps.Auth == nil || deps.Credentials == nil || deps.Reports == nil {
		return nil, fmt.Errorf("[Server New] sessions, auth, credentials and reports are required")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		cookies:  sessions.NewCookieCodec(cfg.GetSessionSecret(), cfg.GetMaxSessionAge()),
		printer:  shaper.NewPrinter(cfg.GetDisplayLocale()),
		sessions: deps.Sessions,
		auth:     deps.Auth,
		creds:    deps.Credentials,
		reports:  deps.Reports,
	}
	s.cors = newCors(cfg)
	s.rateLimit = newRateLimiter(cfg)

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	log := logging.Logger()
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			log.Debug().Str("path", parts[0]).Msg("route")
		}
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
