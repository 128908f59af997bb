package logging

import (
	"context"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type contextKey string

const sessionIDKey contextKey = "session_id"

// ContextWithSessionID tags the context so log lines can be correlated per browser session.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext returns the tagged session id or "".
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger enriched with the request and session ids found in ctx.
//
//	logging.Ctx(r.Context()).Error().Err(err).Msg("token exchange failed")
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := Logger().With()
	if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
		logCtx = logCtx.Str("request_id", reqID)
	}
	if sid := SessionIDFromContext(ctx); sid != "" {
		// Only a prefix; the full id is a bearer secret once signed into the cookie.
		if len(sid) > 8 {
			sid = sid[:8]
		}
		logCtx = logCtx.Str("session", sid)
	}
	l := logCtx.Logger()
	return &l
}
