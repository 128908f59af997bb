package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/ga-dashboard/credentials"
	apperrors "github.com/jrsteele09/ga-dashboard/internal/errors"
	"github.com/jrsteele09/ga-dashboard/internal/logging"
	"github.com/jrsteele09/ga-dashboard/internal/metrics"
	"github.com/jrsteele09/ga-dashboard/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the request's *sessions.Session
	ContextKeySession ContextKey = "session"
	// ContextKeyClient stores the credentials.AuthorizedClient attached by the gate
	ContextKeyClient ContextKey = "authorized_client"
)

// LoadSession resolves the session cookie, creating a fresh anonymous session
// when the cookie is missing, forged, expired or points at a forgotten session.
// A failing session store answers 500 and leaves the cookie alone.
func (s *Server) LoadSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		session, err := s.sessionFromCookie(r)
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Msg("[server] session lookup failed")
			writeJSONError(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if session == nil {
			now := sessions.NowTimeFunc()
			session = sessions.New(sessions.NewID(), now, s.config.GetMaxSessionAge())
			if err := s.sessions.Upsert(ctx, session); err != nil {
				logging.Ctx(ctx).Error().Err(err).Msg("[server] failed to create session")
				writeJSONError(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			value, err := s.cookies.Encode(session.ID, now)
			if err != nil {
				logging.Ctx(ctx).Error().Err(err).Msg("[server] failed to sign session cookie")
				writeJSONError(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, s.cookies.Cookie(value, getScheme(r) == "https"))
			metrics.SessionsCreated.Inc()
		}

		ctx = context.WithValue(ctx, ContextKeySession, session)
		ctx = logging.ContextWithSessionID(ctx, session.ID)
		next(w, r.WithContext(ctx))
	}
}

// sessionFromCookie returns nil, nil when there is no usable session and an
// error only when the store itself failed.
func (s *Server) sessionFromCookie(r *http.Request) (*sessions.Session, error) {
	cookie, err := r.Cookie(sessions.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	sessionID, err := s.cookies.Decode(cookie.Value)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("[server] ignoring session cookie")
		return nil, nil
	}
	session, err := s.sessions.Get(r.Context(), sessionID)
	switch {
	case err == nil:
		return session, nil
	case apperrors.Is(err, apperrors.ErrSessionNotFound), apperrors.Is(err, apperrors.ErrSessionExpired):
		return nil, nil
	default:
		return nil, err
	}
}

// RequireCredentials is the authentication gate for the data routes: the
// session must hold a credential set, otherwise the request ends with 401
// before any upstream call is made.
func (s *Server) RequireCredentials() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session := sessionFromContext(r.Context())
			if session == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			client, err := s.creds.Attach(r.Context(), session.ID)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClient, client)
			next(w, r.WithContext(ctx))
		}
	}
}

func sessionFromContext(ctx context.Context) *sessions.Session {
	session, _ := ctx.Value(ContextKeySession).(*sessions.Session)
	return session
}

func clientFromContext(ctx context.Context) (credentials.AuthorizedClient, bool) {
	client, ok := ctx.Value(ContextKeyClient).(credentials.AuthorizedClient)
	return client, ok
}
