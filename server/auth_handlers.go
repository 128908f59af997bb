package server

import (
	"net/http"

	"github.com/jrsteele09/ga-dashboard/authflow"
	"github.com/jrsteele09/ga-dashboard/internal/logging"
)

const authFailedMessage = "Authentication failed"

// LoginHandler sends the browser to Google's consent screen.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authURL, err := s.auth.Begin(r.Context(), sessionFromContext(r.Context()))
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("[server] login failed")
			http.Error(w, authFailedMessage, http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// CallbackHandler completes the authorization code flow and lands the
// browser on the dashboard.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		params := authflow.CallbackParams{
			Code:             q.Get("code"),
			State:            q.Get("state"),
			Error:            q.Get("error"),
			ErrorDescription: q.Get("error_description"),
		}

		if err := s.auth.Complete(r.Context(), sessionFromContext(r.Context()), params); err != nil {
			// Details are logged by the controller; the browser only learns that it failed.
			http.Error(w, authFailedMessage, http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, s.config.GetDashboardURL(), http.StatusFound)
	}
}

// LogoutHandler forgets the session and clears the cookie.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		if err := s.auth.Logout(r.Context(), session.ID); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("[server] logout failed")
		}
		http.SetCookie(w, s.cookies.ExpiredCookie(getScheme(r) == "https"))
		http.Redirect(w, r, s.config.GetFrontendURL()+"/", http.StatusFound)
	}
}

type statusResponse struct {
	Authenticated bool   `json:"authenticated"`
	State         string `json:"state"`
	Email         string `json:"email,omitempty"`
}

// StatusHandler reports whether the browser's session can call the data routes.
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		writeJSON(w, http.StatusOK, statusResponse{
			Authenticated: session.HasCredentials(),
			State:         string(session.State),
			Email:         session.Email,
		})
	}
}
