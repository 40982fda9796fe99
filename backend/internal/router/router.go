package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mecho90/BuildingManagement/backend/internal/setup"
	mw "github.com/Mecho90/BuildingManagement/shared/middleware"
	"github.com/Mecho90/BuildingManagement/shared/middleware/metrics"
	rl "github.com/Mecho90/BuildingManagement/shared/middleware/ratelimiter"
)

// New creates and configures the router with all the routes.
// IMPORTANT! ratelimiters set with .Use limit requests for all endpoints in that subtree
func New(deps *setup.Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(chimw.Compress(5))
	r.Use(metrics.Middleware)

	// setup CORS for frontend
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.Config.Public.WebOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Backend CSP: strict policy (JSON API only, no scripts/styles needed)
	backendCSP := "default-src 'none'; frame-ancestors 'none'"
	r.Use(mw.SecurityHeadersWithCSP(deps.Config.Public.SecureCookies, backendCSP))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	// Probes and metrics bypass auth
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		// Login (rate limited by IP to slow credential stuffing)
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit(rl.New(1, 5, 1*time.Hour), mw.IPIdentity)) // 1 per second by IP, burst 5
			r.Post("/auth/login", h.Login)
		})

		// Logout (no rate limits)
		r.Post("/auth/logout", h.Logout)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMw.AdminOnly())
			r.Post("/admin/users", h.CreateUser)
		})

		// Logged-in user routes
		r.Group(func(r chi.Router) {
			r.Use(authMw.NeedAuth())

			r.Get("/auth/me", h.Me)

			r.Route("/buildings", func(r chi.Router) {
				r.Get("/", h.GetBuildings)
				r.Post("/", h.CreateBuilding)
				r.Get("/choices", h.GetBuildingChoices)
				r.Route("/{buildingId}", func(r chi.Router) {
					r.Get("/", h.GetBuilding)
					r.Put("/", h.UpdateBuilding)
					r.Delete("/", h.DeleteBuilding)
					r.Get("/units", h.GetUnits)
					r.Post("/units", h.CreateUnit)
				})
			})

			r.Route("/units", func(r chi.Router) {
				r.Get("/", h.GetUnitChoices) // ?building= narrows to one building
				r.Route("/{unitId}", func(r chi.Router) {
					r.Put("/", h.UpdateUnit)
					r.Delete("/", h.DeleteUnit)
					r.Put("/tenant", h.SetTenant)
					r.Delete("/tenant", h.RemoveTenant)
				})
			})

			r.Route("/work-orders", func(r chi.Router) {
				r.Get("/", h.GetWorkOrders)
				r.Post("/", h.CreateWorkOrder)
				r.Get("/owners", h.GetOwnerChoices)
				r.Post("/mass-assign", h.MassAssignWorkOrders)
				r.Route("/{workOrderId}", func(r chi.Router) {
					r.Get("/", h.GetWorkOrder)
					r.Put("/", h.UpdateWorkOrder)
					r.Delete("/", h.DeleteWorkOrder)
					r.Post("/archive", h.ArchiveWorkOrder)

					r.Route("/attachments", func(r chi.Router) {
						r.Get("/", h.GetAttachments)
						r.Get("/{attachmentId}/content", h.GetAttachmentContent)
						r.Delete("/{attachmentId}", h.DeleteAttachment)

						// Uploads hit disk/object storage; throttled per user, admins bypass
						r.Group(func(r chi.Router) {
							r.Use(mw.RateLimit(rl.New(0.5, 10, 1*time.Hour), mw.UserIdentity)) // 1 per 2 seconds, burst 10
							r.Post("/", h.UploadAttachments)
						})
					})
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.GetNotifications)
				r.Post("/acknowledge", h.AcknowledgeNotifications)
				r.Post("/{notificationId}/snooze", h.SnoozeNotification)
			})
		})
	})

	return r
}
