package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/DevDeP100/Shalom.pt/internal/http/response"
	"github.com/DevDeP100/Shalom.pt/internal/security"
)

type contextKey string

const sessionClaimsKey contextKey = "session_claims"

// SessionClaimsFrom returns the authenticated session claims, if any.
func SessionClaimsFrom(ctx context.Context) (*security.SessionClaims, bool) {
	claims, ok := ctx.Value(sessionClaimsKey).(*security.SessionClaims)
	return claims, ok && claims != nil
}

// AccountIDFrom returns the authenticated account id, or 0 when the request
// carries no valid session.
func AccountIDFrom(ctx context.Context) uint {
	claims, ok := SessionClaimsFrom(ctx)
	if !ok {
		return 0
	}
	id, err := claims.AccountID()
	if err != nil {
		return 0
	}
	return id
}

func sessionToken(r *http.Request) string {
	if token := security.SessionCookie(r); token != "" {
		return token
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > len("bearer ") && strings.EqualFold(auth[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(auth[len("bearer "):])
	}
	return ""
}

// Session attaches session claims to the request context when a valid token
// is presented. Requests without a token pass through anonymously.
func Session(sessions *security.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := sessions.Parse(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests that lack an authenticated session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionClaimsFrom(r.Context()); !ok {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff rejects requests whose session does not carry the staff flag.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := SessionClaimsFrom(r.Context())
		if !ok {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
			return
		}
		if !claims.Staff {
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "staff access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
