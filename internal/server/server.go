// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"flightshots/internal/app"
	"flightshots/internal/handlers"
	"flightshots/internal/i18n"
	"flightshots/internal/metrics"
	authmw "flightshots/internal/middleware"
	"flightshots/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	JWTSecret       string
	LoginRatePerSec float64
	LoginBurst      int
	StaticDir       string
}

func NewRouter(a *app.App, opts Options, m *metrics.Metrics) http.Handler {
	auth := authmw.NewAuth(opts.JWTSecret, a.Users)
	limiter := authmw.NewRateLimiter(opts.LoginRatePerSec, opts.LoginBurst, a.Log)

	authHandler := handlers.NewAuthHandler(a.Users, a.Settings, auth, m, a.Log)
	photoHandler := handlers.NewPhotoHandler(a.Photos, a.Users, a.Settings, m, a.Log)
	facetHandler := handlers.NewFacetHandler(a.Photos)
	userHandler := handlers.NewUserHandler(a.Users, a.Photos)
	reviewHandler := handlers.NewReviewHandler(a.Photos, a.Users, m, a.Log)
	feedbackHandler := handlers.NewFeedbackHandler(a.Feedback, m)
	adminHandler := handlers.NewAdminHandler(a.Users, a.Photos, a.Feedback, a.Log)
	settingsHandler := handlers.NewSettingsHandler(a.Settings, a)
	langHandler := handlers.NewLangHandler()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(authmw.RequestLogger(a.Log))
	r.Use(middleware.Recoverer)
	r.Use(m.Instrument)
	r.Use(i18n.Middleware)
	r.Use(auth.Authenticate)

	if opts.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(opts.StaticDir))
		r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	r.Get("/healthz", handlers.Healthz)
	r.Handle("/metrics", m.Handler())
	r.Get("/lang", langHandler.SetLang)

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Get("/site", settingsHandler.Site)
		r.Get("/levels", facetHandler.Levels)
		r.Get("/photos", photoHandler.Search)
		r.Get("/photos/facets", facetHandler.Facets)
		r.Get("/photos/{id}", photoHandler.Get)
		r.Get("/users/{id}", userHandler.Profile)
		r.Get("/users/{id}/photos", userHandler.Photos)
		r.Get("/users/{id}/favorites", userHandler.Favorites)
		r.Post("/feedback", feedbackHandler.Submit)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Handler)
			r.Post("/setup", authHandler.Setup)
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		// Any signed-in member
		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAuth)

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)
			r.Put("/profile", userHandler.UpdateProfile)

			r.Post("/photos", photoHandler.Upload)
			r.Delete("/photos/{id}", photoHandler.Delete)
			r.Post("/photos/{id}/like", photoHandler.Like)
			r.Post("/photos/{id}/favorite", photoHandler.Favorite)
			r.Post("/photos/{id}/download", photoHandler.Download)
			r.Post("/photos/{id}/comments", photoHandler.AddComment)
			r.Delete("/photos/{id}/comments/{cid}", photoHandler.DeleteComment)
		})

		// Moderators
		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(models.RoleAdmin, models.RoleReviewer))

			r.Get("/review/pending", reviewHandler.Pending)
			r.Put("/review/{id}", reviewHandler.Review)
		})

		// Administrators
		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(models.RoleAdmin))

			r.Get("/admin/stats", adminHandler.Stats)
			r.Get("/admin/users", adminHandler.Users)
			r.Put("/admin/users/{id}/ban", adminHandler.ToggleBan)
			r.Delete("/admin/users/{id}", adminHandler.DeleteUser)
			r.Post("/admin/reviewers", adminHandler.RegisterReviewer)

			r.Get("/admin/feedback", feedbackHandler.List)
			r.Put("/admin/feedback/{id}/read", feedbackHandler.MarkRead)
			r.Post("/admin/feedback/{id}/reply", feedbackHandler.Reply)
			r.Delete("/admin/feedback/{id}", feedbackHandler.Delete)

			r.Put("/admin/site", settingsHandler.Update)
			r.Post("/admin/site/reset", settingsHandler.Reset)
		})
	})

	return r
}
