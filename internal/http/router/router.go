// Package router assembles the chi route tree for the API.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/DevDeP100/Shalom.pt/internal/http/handler"
	"github.com/DevDeP100/Shalom.pt/internal/http/middleware"
	"github.com/DevDeP100/Shalom.pt/internal/http/response"
	"github.com/DevDeP100/Shalom.pt/internal/security"
)

// Dependencies carries everything the route tree needs.
type Dependencies struct {
	Auth        *handler.AuthHandler
	Accounts    *handler.AccountHandler
	Events      *handler.EventHandler
	Enrollments *handler.EnrollmentHandler
	Articles    *handler.ArticleHandler

	Sessions *security.SessionManager
	Limiter  middleware.Limiter
	Logger   *slog.Logger

	CORSOrigins      []string
	AuthRateLimitRPM int
	APIRateLimitRPM  int
}

// New builds the full /api/v1 route tree.
func New(dep Dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(dep.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   dep.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Session(dep.Sessions))

	limiter := dep.Limiter
	if limiter == nil {
		limiter = middleware.NewLocalFixedWindowLimiter()
	}
	keyFunc := middleware.SubjectOrIPKeyFunc(dep.Sessions)
	authLimit := middleware.NewRateLimiterWith(limiter, dep.AuthRateLimitRPM, time.Minute, middleware.FailClosed, "auth", nil)
	apiLimit := middleware.NewRateLimiterWith(limiter, dep.APIRateLimitRPM, time.Minute, middleware.FailOpen, "api", keyFunc)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiLimit.Middleware())

		r.Group(func(r chi.Router) {
			r.Use(authLimit.Middleware())
			r.Post("/auth/register", dep.Auth.Register)
			r.Post("/auth/verify", dep.Auth.Verify)
			r.Post("/auth/resend-code", dep.Auth.ResendCode)
			r.Post("/auth/login", dep.Auth.Login)
			r.Post("/auth/logout", dep.Auth.Logout)
		})

		// Public browsing.
		r.Get("/home", dep.Events.Home)
		r.Get("/events", dep.Events.List)
		r.Get("/events/{event_id}", dep.Events.Get)
		r.Get("/events/{event_id}/evaluations", dep.Events.EvaluationSummary)
		r.Get("/categories", dep.Events.ListCategories)
		r.Get("/articles", dep.Articles.List)
		r.Get("/articles/{article_id}", dep.Articles.Get)
		r.Get("/certificates/{code}", dep.Enrollments.LookupCertificate)

		// Member surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Get("/me", dep.Accounts.Me)
			r.Put("/me/profile", dep.Accounts.UpdateProfile)
			r.Post("/me/photo", dep.Accounts.UploadPhoto)
			r.Get("/me/enrollments", dep.Enrollments.MyEnrollments)
			r.Post("/events/{event_id}/enroll", dep.Enrollments.Enroll)
			r.Delete("/events/{event_id}/enroll", dep.Enrollments.Cancel)
			r.Post("/enrollments/{enrollment_id}/evaluation", dep.Enrollments.SubmitEvaluation)
		})

		// Staff surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession, middleware.RequireStaff)
			r.Post("/events", dep.Events.Create)
			r.Put("/events/{event_id}", dep.Events.Update)
			r.Post("/events/{event_id}/publish", dep.Events.Publish)
			r.Post("/events/{event_id}/cancel", dep.Events.Cancel)
			r.Post("/events/{event_id}/finish", dep.Events.Finish)
			r.Post("/events/{event_id}/image", dep.Events.UploadImage)
			r.Get("/events/{event_id}/enrollments", dep.Enrollments.ListForEvent)
			r.Post("/categories", dep.Events.CreateCategory)
			r.Post("/enrollments/{enrollment_id}/confirm", dep.Enrollments.Confirm)
			r.Post("/enrollments/{enrollment_id}/present", dep.Enrollments.MarkPresent)
			r.Post("/enrollments/{enrollment_id}/certificate", dep.Enrollments.IssueCertificate)
			r.Post("/articles", dep.Articles.Create)
			r.Put("/articles/{article_id}", dep.Articles.Update)
			r.Post("/articles/{article_id}/publish", dep.Articles.Publish)
			r.Post("/articles/{article_id}/archive", dep.Articles.Archive)
			r.Post("/articles/{article_id}/image", dep.Articles.UploadImage)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusMethodNotAllowed, "BAD_REQUEST", "method not allowed", nil)
	})

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logger == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}
