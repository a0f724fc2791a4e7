package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DevDeP100/Shalom.pt/internal/security"
)

func newSessionManagerForTest() *security.SessionManager {
	return security.NewSessionManager(strings.Repeat("s", 32), "community-events-service", time.Minute)
}

func claimsEchoHandler(t *testing.T, wantAccountID uint) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := AccountIDFrom(r.Context()); got != wantAccountID {
			t.Fatalf("expected account id %d in context, got %d", wantAccountID, got)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestSession_AttachesClaimsFromCookie(t *testing.T) {
	sessions := newSessionManagerForTest()
	token, err := sessions.Sign(42, false, true)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	rr := httptest.NewRecorder()

	Session(sessions)(claimsEchoHandler(t, 42)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestSession_AttachesClaimsFromBearerHeader(t *testing.T) {
	sessions := newSessionManagerForTest()
	token, err := sessions.Sign(7, true, true)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := SessionClaimsFrom(r.Context())
		if !ok {
			t.Fatal("expected claims in context")
		}
		if !claims.Staff {
			t.Fatal("expected staff flag to carry over")
		}
		w.WriteHeader(http.StatusOK)
	})
	Session(sessions)(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestSession_ForgedTokenStaysAnonymous(t *testing.T) {
	sessions := newSessionManagerForTest()
	other := security.NewSessionManager(strings.Repeat("x", 32), "community-events-service", time.Minute)
	forged, err := other.Sign(42, true, true)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: forged})
	rr := httptest.NewRecorder()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionClaimsFrom(r.Context()); ok {
			t.Fatal("expected no claims for forged token")
		}
		w.WriteHeader(http.StatusOK)
	})
	Session(sessions)(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequireSession_RejectsAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rr := httptest.NewRecorder()

	RequireSession(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireStaff_RejectsNonStaffSession(t *testing.T) {
	sessions := newSessionManagerForTest()
	token, err := sessions.Sign(42, false, true)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/events", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	rr := httptest.NewRecorder()

	chain := Session(sessions)(RequireStaff(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	})))
	chain.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestRequireStaff_AllowsStaffSession(t *testing.T) {
	sessions := newSessionManagerForTest()
	token, err := sessions.Sign(1, true, true)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/events", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	rr := httptest.NewRecorder()

	chain := Session(sessions)(RequireStaff(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))
	chain.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
}
