package handler

import (
	"net/http"
	"time"

	"github.com/Mecho90/BuildingManagement/shared/api"
	"github.com/Mecho90/BuildingManagement/shared/domain"
	mw "github.com/Mecho90/BuildingManagement/shared/middleware"
	"github.com/Mecho90/BuildingManagement/shared/utils"
)

// defaultSnoozeDays is how far a snooze without an explicit date pushes a
// notification out.
const defaultSnoozeDays = 7

func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		utils.WriteErrorAndStatusCode(w, errNotAuthorized)
		return
	}

	notifications, err := h.notifications.Active(r.Context(), user.Id, time.Now())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := api.NotificationListResponse{Notifications: make([]api.NotificationResponse, len(notifications))}
	for i, n := range notifications {
		resp.Notifications[i] = notificationResponse(n)
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) SnoozeNotification(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		utils.WriteErrorAndStatusCode(w, errNotAuthorized)
		return
	}
	id, err := idParam(r, "notificationId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.SnoozeNotificationRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	until := time.Now().AddDate(0, 0, defaultSnoozeDays)
	if body.Until != "" {
		parsed, err := parseDate(body.Until)
		if err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
		until = *parsed
	}

	if err := h.notifications.Snooze(r.Context(), user.Id, id, until); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) AcknowledgeNotifications(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		utils.WriteErrorAndStatusCode(w, errNotAuthorized)
		return
	}

	var body api.AcknowledgeNotificationsRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	count, err := h.notifications.Acknowledge(r.Context(), user.Id, body.Keys, time.Now())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.AcknowledgeNotificationsResponse{Acknowledged: count})
}

func notificationResponse(n domain.Notification) api.NotificationResponse {
	resp := api.NotificationResponse{
		Id:        n.Id,
		Key:       n.Key,
		Category:  n.Category,
		Level:     string(n.Level),
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: utils.CreatedDisplay(n.CreatedAt),
	}
	if n.SnoozedUntil != nil {
		resp.SnoozedUntil = n.SnoozedUntil.Format(dateLayout)
	}
	return resp
}
