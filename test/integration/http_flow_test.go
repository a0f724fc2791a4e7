package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DevDeP100/Shalom.pt/internal/database"
	"github.com/DevDeP100/Shalom.pt/internal/http/handler"
	"github.com/DevDeP100/Shalom.pt/internal/http/router"
	"github.com/DevDeP100/Shalom.pt/internal/repository"
	"github.com/DevDeP100/Shalom.pt/internal/security"
	"github.com/DevDeP100/Shalom.pt/internal/service"
	"github.com/DevDeP100/Shalom.pt/internal/validation"
)

func newRouterStackForTest(t *testing.T) (*chi.Mux, *stack) {
	t.Helper()
	s := newStackForTest(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cookies := security.NewCookieManager(false)
	storage := service.NewDisabledStorageService()
	articles := service.NewArticleService(repository.NewArticleRepository(s.db), validation.New(), log)

	mux := router.New(router.Dependencies{
		Auth:             handler.NewAuthHandler(s.accounts, s.sessions, cookies),
		Accounts:         handler.NewAccountHandler(s.accounts, storage),
		Events:           handler.NewEventHandler(s.events, s.evaluations, storage),
		Enrollments:      handler.NewEnrollmentHandler(s.enrollments, s.certificates, s.evaluations),
		Articles:         handler.NewArticleHandler(articles, storage),
		Sessions:         s.sessions,
		Logger:           log,
		CORSOrigins:      []string{"http://localhost:3000"},
		AuthRateLimitRPM: 1000,
		APIRateLimitRPM:  1000,
	})
	return mux, s
}

func doJSON(t *testing.T, mux *chi.Mux, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	req.RemoteAddr = "203.0.113.7:40000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	if !envelope.Success {
		t.Fatalf("expected success envelope, got %s", rec.Body.String())
	}
	return envelope.Data
}

func TestHTTPRegistrationToEnrollmentFlow(t *testing.T) {
	mux, s := newRouterStackForTest(t)

	// Register.
	rec := doJSON(t, mux, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"handle":           "joana",
		"email":            "joana@example.org",
		"password":         "correct-horse-battery",
		"password_confirm": "correct-horse-battery",
		"full_name":        "Joana Silva",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if sent, _ := data["email_sent"].(bool); !sent {
		t.Fatalf("expected email_sent true, got %v", data["email_sent"])
	}
	account, _ := data["account"].(map[string]any)
	accountID := uint(account["id"].(float64))

	// Login before verification must be rejected.
	rec = doJSON(t, mux, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"login": "joana@example.org", "password": "correct-horse-battery",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("pre-verification login: expected 422, got %d", rec.Code)
	}

	// Verify with the emailed code, then log in.
	rec = doJSON(t, mux, http.MethodPost, "/api/v1/auth/verify", "", map[string]any{
		"email": "joana@example.org", "code": latestCode(t, s.db, accountID),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, mux, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"login": "joana@example.org", "password": "correct-horse-battery",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	token, _ := decodeData(t, rec)["token"].(string)
	if token == "" {
		t.Fatal("expected a session token in the login response")
	}
	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_token" {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value != token {
		t.Fatal("expected the session cookie to carry the login token")
	}

	// The member surface is open now, the staff surface is not.
	if rec = doJSON(t, mux, http.MethodGet, "/api/v1/me", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}
	if rec = doJSON(t, mux, http.MethodGet, "/api/v1/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without session: expected 401, got %d", rec.Code)
	}
	if rec = doJSON(t, mux, http.MethodPost, "/api/v1/events", token, map[string]any{}); rec.Code != http.StatusForbidden {
		t.Fatalf("member creating event: expected 403, got %d", rec.Code)
	}

	// Staff publishes an event.
	if _, err := database.SeedStaff(s.db, "admin", "admin@example.org", "staff-password-1"); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	rec = doJSON(t, mux, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"login": "admin", "password": "staff-password-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("staff login: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	staffToken, _ := decodeData(t, rec)["token"].(string)

	rec = doJSON(t, mux, http.MethodPost, "/api/v1/events", staffToken, map[string]any{
		"title":       "Vigília de Oração",
		"category_id": firstCategoryID(t, s.db),
		"starts_at":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"ends_at":     time.Now().Add(26 * time.Hour).Format(time.RFC3339),
		"capacity":    50,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create event: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var created struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created event: %v", err)
	}
	eventPath := fmt.Sprintf("/api/v1/events/%d", created.Data.ID)

	if rec = doJSON(t, mux, http.MethodPost, eventPath+"/publish", staffToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("publish: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	// Member enrolls through the API.
	if rec = doJSON(t, mux, http.MethodPost, eventPath+"/enroll", token, nil); rec.Code != http.StatusCreated {
		t.Fatalf("enroll: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if rec = doJSON(t, mux, http.MethodPost, eventPath+"/enroll", token, nil); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate enroll: expected 409, got %d (%s)", rec.Code, rec.Body.String())
	}

	// Public event page shows the seat taken is still pending, so the full
	// capacity remains available.
	rec = doJSON(t, mux, http.MethodGet, eventPath, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get event: expected 200, got %d", rec.Code)
	}
	detail := decodeData(t, rec)
	if seats, _ := detail["available_seats"].(float64); int(seats) != 50 {
		t.Fatalf("expected 50 available seats, got %v", detail["available_seats"])
	}
}

func TestHTTPProblemDetailsNegotiation(t *testing.T) {
	mux, _ := newRouterStackForTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/999999", nil)
	req.RemoteAddr = "203.0.113.8:40000"
	req.Header.Set("Accept", "application/problem+json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/problem+json") {
		t.Fatalf("expected problem+json content type, got %q", ct)
	}
	var problem struct {
		Type   string `json:"type"`
		Status int    `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	if problem.Status != http.StatusNotFound || !strings.HasSuffix(problem.Type, "not-found") {
		t.Fatalf("unexpected problem payload: %+v", problem)
	}
}
