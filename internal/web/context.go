package web

// context.go assigns each browser a stable session id via a signed cookie
// and makes it available to handlers through the request context.

import (
	"context"
	"net/http"

	"github.com/datanova/workbench/internal/logging"
	"github.com/google/uuid"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

// withSession ensures the request carries a session id, minting one for
// first-time visitors. The id keys the session store and the persisted
// artifact row.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(r, s.cfg.Session.CookieName)
		if err != nil {
			// A cookie signed with an old secret decodes to a fresh session.
			logging.FromContext(r.Context()).Debug("session cookie rejected", "error", err)
		}

		sid, ok := sess.Values["sid"].(string)
		if !ok || sid == "" {
			sid = uuid.NewString()
			sess.Values["sid"] = sid
			if err := sess.Save(r, w); err != nil {
				logging.FromContext(r.Context()).Error("session cookie save failed", "error", err)
			}
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionID returns the request's session id. Empty outside withSession.
func sessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}
