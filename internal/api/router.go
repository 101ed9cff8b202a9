// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lectern-app/lectern/internal/auth"
	"github.com/lectern-app/lectern/internal/authz"
	"github.com/lectern-app/lectern/internal/middleware"
)

// Route requirements. Declared once so an undeclared capability pair
// panics at startup, not on first request.
var (
	requirePublishersRead   = authz.Requirement{authz.ResourcePublishers: {authz.ActionRead}}
	requirePublishersCreate = authz.Requirement{authz.ResourcePublishers: {authz.ActionCreate}}
	requirePublishersUpdate = authz.Requirement{authz.ResourcePublishers: {authz.ActionUpdate}}
	requirePublishersDelete = authz.Requirement{authz.ResourcePublishers: {authz.ActionDelete}}

	requireSpeakersRead   = authz.Requirement{authz.ResourceSpeakers: {authz.ActionRead}}
	requireSpeakersCreate = authz.Requirement{authz.ResourceSpeakers: {authz.ActionCreate}}
	requireSpeakersUpdate = authz.Requirement{authz.ResourceSpeakers: {authz.ActionUpdate}}
	requireSpeakersDelete = authz.Requirement{authz.ResourceSpeakers: {authz.ActionDelete}}

	requireWeekendRead      = authz.Requirement{authz.ResourceWeekendMeetings: {authz.ActionRead}}
	requireManageExceptions = authz.Requirement{authz.ResourceWeekendMeetings: {authz.ActionManageExceptions}}

	requireAuditRead      = authz.Requirement{authz.ResourceAuditLog: {authz.ActionRead}}
	requireSettingsUpdate = authz.Requirement{authz.ResourceSettings: {authz.ActionUpdate}}
)

// appFallback is where a denied section request is redirected.
const appFallback = "/app"

// NewRouter builds the full route tree with middleware and per-route
// authorization requirements.
func NewRouter(h *Handler, authn *auth.Middleware) http.Handler {
	guard := h.guard
	cfg := h.config

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Recoverer)

	if len(cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if !cfg.Server.RateLimitDisabled {
		r.Use(httprate.LimitByIP(cfg.Server.RateLimitReqs, cfg.Server.RateLimitWindow))
	}

	r.Use(authn.Authenticate)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/api/v1/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)

		r.Get("/permissions", h.Permissions)
		r.With(guard.RequirePermission(requireSettingsUpdate)).
			Post("/permissions/invalidate", h.InvalidatePermissions)

		r.Route("/publishers", func(r chi.Router) {
			r.With(guard.RequirePermission(requirePublishersRead)).Get("/", h.ListPublishers)
			r.With(guard.RequirePermission(requirePublishersRead)).Get("/{id}", h.GetPublisher)
			r.With(guard.RequirePermission(requirePublishersCreate)).Post("/", h.CreatePublisher)
			r.With(guard.RequirePermission(requirePublishersUpdate)).Put("/{id}", h.UpdatePublisher)
			r.With(guard.RequirePermission(requirePublishersDelete)).Delete("/{id}", h.DeletePublisher)
		})

		r.Route("/speakers", func(r chi.Router) {
			r.With(guard.RequirePermission(requireSpeakersRead)).Get("/", h.ListSpeakers)
			r.With(guard.RequirePermission(requireSpeakersRead)).Get("/{id}", h.GetSpeaker)
			r.With(guard.RequirePermission(requireSpeakersCreate)).Post("/", h.CreateSpeaker)
			r.With(guard.RequirePermission(requireSpeakersUpdate)).Put("/{id}", h.UpdateSpeaker)
			r.With(guard.RequirePermission(requireSpeakersDelete)).Delete("/{id}", h.DeleteSpeaker)
		})

		r.Route("/meeting-exceptions", func(r chi.Router) {
			r.With(guard.RequirePermission(requireWeekendRead)).Get("/", h.ListMeetingExceptions)
			r.With(guard.RequirePermission(requireWeekendRead)).Get("/{id}", h.GetMeetingException)
			r.With(guard.RequirePermission(requireManageExceptions)).Post("/", h.CreateMeetingException)
			r.With(guard.RequirePermission(requireManageExceptions)).Put("/{id}", h.UpdateMeetingException)

			// Deletion checks its requirement inside the handler so a
			// request that fails to name an ID is rejected before any
			// authorization or store work. Both route shapes land in the
			// same handler; the bare one simply has no ID to find.
			r.Delete("/{id}", h.DeleteMeetingException)
			r.Delete("/", h.DeleteMeetingException)
		})

		r.With(guard.RequirePermission(requireAuditRead)).Get("/audit", h.ListAuditEvents)
	})

	// Browser app sections. Each navigable section carries an entry
	// guard; a denied visit bounces back to the app root instead of
	// receiving a JSON error.
	r.Route("/app", func(r chi.Router) {
		r.Get("/", h.AppShell)
		r.With(guard.RequireSection(requirePublishersRead, appFallback)).
			Get("/publishers", h.AppShell)
		r.With(guard.RequireSection(requireSpeakersRead, appFallback)).
			Get("/speakers", h.AppShell)
		r.With(guard.RequireSection(requireWeekendRead, appFallback)).
			Get("/weekend-meetings", h.AppShell)
		r.With(guard.RequireSection(requireAuditRead, appFallback)).
			Get("/audit", h.AppShell)
	})

	return r
}

// AppShell serves the single-page app entry point. The client router
// takes over from here; section access was already decided by the entry
// guards.
func (h *Handler) AppShell(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // nothing left to do if the response writer fails
	w.Write([]byte(appShellHTML))
}

const appShellHTML = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Lectern</title></head>
<body><div id="root"></div><script src="/assets/app.js"></script></body>
</html>
`
