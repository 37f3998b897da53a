// Package router sets up all HTTP routes and middleware chains for the
// HS Architects content API. It organizes routes into public and admin
// groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"hsarchitects/internal/handlers"
	"hsarchitects/internal/middleware"
	"hsarchitects/internal/session"
)

// Per-IP limits for the anonymous write endpoints.
const (
	loginLimit   = 10
	messageLimit = 5
	limitWindow  = time.Minute
)

// Deps carries everything the router wires together.
type Deps struct {
	Sessions session.Manager
	Content  *handlers.Content
	Users    *handlers.Users
	Auth     *handlers.Auth
	Media    *handlers.Media

	// AllowedOrigins lists the browser origins allowed to call the API with
	// credentials.
	AllowedOrigins []string

	// Secure marks cookies Secure (production).
	Secure bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.CSRFHeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.LoadSession(d.Sessions))
	r.Use(middleware.NewCSRF(d.Secure))

	// Health check, no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Public reads.
		r.Get("/categories", d.Content.CategoriesList)
		r.Get("/categories/{slug}", d.Content.CategoryBySlug)
		r.Get("/projects", d.Content.ProjectsList)
		r.Get("/home-grid", d.Content.HomeGridList)
		r.Get("/contact", d.Content.ContactGet)
		r.Get("/settings", d.Content.SettingsGet)

		// Anonymous writes, rate limited per client IP.
		r.With(middleware.RateLimit(messageLimit, limitWindow)).Post("/messages", d.Content.MessageCreate)
		r.With(middleware.RateLimit(loginLimit, limitWindow)).Post("/auth/login", d.Auth.Login)

		// Authenticated admin API.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/auth/session", d.Auth.Session)
			r.Post("/auth/logout", d.Auth.Logout)
			r.Post("/auth/2fa/setup", d.Auth.TwoFASetup)
			r.Post("/auth/2fa/enable", d.Auth.TwoFAEnable)
			r.Post("/auth/2fa/disable", d.Auth.TwoFADisable)

			r.Post("/categories", d.Content.CategoryCreate)
			r.Put("/categories", d.Content.CategoryUpdate)
			r.Delete("/categories", d.Content.CategoryDelete)

			r.Post("/projects", d.Content.ProjectCreate)
			r.Put("/projects", d.Content.ProjectUpdate)
			r.Delete("/projects", d.Content.ProjectDelete)

			r.Put("/home-grid", d.Content.HomeGridPut)
			r.Post("/home-grid", d.Content.HomeGridReorder)

			r.Put("/contact", d.Content.ContactUpdate)

			r.Get("/messages", d.Content.MessagesList)
			r.Put("/messages", d.Content.MessageMarkRead)
			r.Delete("/messages", d.Content.MessageDelete)

			r.Put("/settings", d.Content.SettingsPut)

			r.Route("/cloudinary", func(r chi.Router) {
				r.Post("/upload-image", d.Media.UploadGridImage)
				r.Post("/upload-project-image", d.Media.UploadProjectImage)
				r.Get("/upload", d.Media.SignUpload)
				r.Post("/upload", d.Media.UploadRemote)
				r.Delete("/image", d.Media.DeleteImage)
			})

			// User management, admin only.
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", d.Users.List)
				r.Post("/", d.Users.Create)
				r.Put("/", d.Users.Update)
				r.Delete("/", d.Users.Delete)
				r.Post("/2fa-reset", d.Users.ResetTwoFactor)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
