package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Mecho90/BuildingManagement/frontend/internal/handler"
	"github.com/Mecho90/BuildingManagement/frontend/internal/middleware"
	"github.com/Mecho90/BuildingManagement/frontend/internal/setup"
	mw "github.com/Mecho90/BuildingManagement/shared/middleware"
)

// New builds the web process route tree: public login, authenticated pages,
// and the same-origin attachment endpoints the work order page talks to.
func New(deps *setup.Dependencies) chi.Router {
	r := chi.NewRouter()

	secureCookies := deps.Config.Public.SecureCookies

	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(chimw.Compress(5))

	// Pages render same-origin scripts and styles only; previews iframe
	// same-origin attachment content.
	webCSP := "default-src 'self'; img-src 'self' data:; frame-ancestors 'self'"
	r.Use(mw.SecurityHeadersWithCSP(secureCookies, webCSP))

	// Every page gets a csrftoken cookie; every mutating request must echo
	// it back in the X-CSRFToken header or the form body.
	r.Use(middleware.GenerateCSRFToken(middleware.CSRFConfig{SecureCookies: secureCookies}))
	r.Use(middleware.ValidateCSRFToken())

	h := deps.Handler
	auth := middleware.NewAuth(mw.NewAuth(deps.Jwt), secureCookies)

	// Public routes
	r.Get("/favicon.ico", handler.FaviconHandler)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))))
	r.Get("/login", h.LoginGetHandler)
	r.Post("/login", h.LoginPostHandler)

	// Authenticated pages; 401/403 redirect to the login form
	r.Group(func(r chi.Router) {
		r.Use(auth.NeedAuth())

		r.Get("/", h.RootHandler)
		r.Post("/logout", h.LogoutHandler)

		// Filesystem-backed media, served same-origin so attachment URLs
		// and lightbox loads stay on this host.
		if h.MediaPath != "" {
			r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(h.MediaPath))))
		}

		r.Route("/buildings", func(r chi.Router) {
			r.Get("/", h.BuildingsGetHandler)
			r.Get("/new", h.BuildingNewGetHandler)
			r.Post("/new", h.BuildingNewPostHandler)

			r.Route("/{buildingId}", func(r chi.Router) {
				r.Get("/", h.BuildingGetHandler)
				r.Get("/edit", h.BuildingEditGetHandler)
				r.Post("/edit", h.BuildingEditPostHandler)
				r.Post("/delete", h.BuildingDeleteHandler)

				r.Get("/units/new", h.UnitNewGetHandler)
				r.Post("/units/new", h.UnitNewPostHandler)
				r.Route("/units/{unitId}", func(r chi.Router) {
					r.Get("/edit", h.UnitEditGetHandler)
					r.Post("/edit", h.UnitEditPostHandler)
					r.Post("/delete", h.UnitDeleteHandler)
					r.Get("/tenant", h.TenantGetHandler)
					r.Post("/tenant", h.TenantPostHandler)
					r.Post("/tenant/remove", h.TenantRemoveHandler)
				})
			})
		})

		r.Route("/work-orders", func(r chi.Router) {
			r.Get("/", h.WorkOrdersGetHandler)
			r.Get("/new", h.WorkOrderNewGetHandler)
			r.Post("/new", h.WorkOrderNewPostHandler)
			r.Get("/mass-assign", h.MassAssignGetHandler)
			r.Post("/mass-assign", h.MassAssignPostHandler)

			r.Route("/{workOrderId}", func(r chi.Router) {
				r.Get("/", h.WorkOrderGetHandler)
				r.Get("/edit", h.WorkOrderEditGetHandler)
				r.Post("/edit", h.WorkOrderEditPostHandler)
				r.Post("/delete", h.WorkOrderDeleteHandler)
				r.Post("/archive", h.WorkOrderArchiveHandler)

				r.Route("/attachments", func(r chi.Router) {
					r.Get("/", h.AttachmentsGetHandler)
					r.Post("/", h.AttachmentsUploadHandler)
					r.Delete("/{attachmentId}", h.AttachmentDeleteHandler)
					// No-script fallback for the delete confirmation form
					r.Post("/{attachmentId}/delete", h.AttachmentDeleteFormHandler)
					r.Get("/{attachmentId}/preview", h.AttachmentPreviewHandler)
				})
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.NotificationsGetHandler)
			r.Post("/acknowledge", h.NotificationsAcknowledgeHandler)
			r.Post("/{notificationId}/snooze", h.NotificationSnoozeHandler)
		})
	})

	return r
}
