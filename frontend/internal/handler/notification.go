package handler

import (
	"html/template"
	"net/http"
	"strings"

	frontend_domain "github.com/Mecho90/BuildingManagement/frontend/internal/domain"
	"github.com/Mecho90/BuildingManagement/shared/logger"
)

func (h *Handler) NotificationsGetHandler(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.APIClient.GetNotifications(r)
	if err != nil {
		logger.Log.Error("getting notifications from API", "error", err)
		h.renderTemplateWithError(w, r, "notifications.html", frontend_domain.NotificationsPageData{}, "Could not load notifications. Please try again later.")
		return
	}

	h.renderTemplate(w, r, "notifications.html", frontend_domain.NotificationsPageData{Notifications: notifications})
}

func (h *Handler) NotificationSnoozeHandler(w http.ResponseWriter, r *http.Request) {
	notificationId, ok := idParam(r, "notificationId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	until := strings.TrimSpace(r.FormValue("until"))
	if err := h.APIClient.SnoozeNotification(r, notificationId, until); err != nil {
		logger.Log.Error("snoozing notification via API", "notificationId", notificationId, "error", err)
		h.redirectWithFlash(w, r, "/notifications", flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, "/notifications", flashCookieSuccess, "Notification snoozed.")
}

func (h *Handler) NotificationsAcknowledgeHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithFlash(w, r, "/notifications", flashCookieError, "Invalid form data.")
		return
	}

	keys := r.PostForm["keys"]
	if len(keys) == 0 {
		h.redirectWithFlash(w, r, "/notifications", flashCookieError, "Select at least one notification.")
		return
	}

	if err := h.APIClient.AcknowledgeNotifications(r, keys); err != nil {
		logger.Log.Error("acknowledging notifications via API", "error", err)
		h.redirectWithFlash(w, r, "/notifications", flashCookieError, template.HTMLEscapeString(err.Error()))
		return
	}

	h.redirectWithFlash(w, r, "/notifications", flashCookieSuccess, "Notifications acknowledged.")
}
