package api

type NotificationResponse struct {
	Id           int64  `json:"id"`
	Key          string `json:"key"`
	Category     string `json:"category"`
	Level        string `json:"level"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	SnoozedUntil string `json:"snoozed_until,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type SnoozeNotificationRequest struct {
	Until string `json:"until,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type AcknowledgeNotificationsRequest struct {
	Keys []string `json:"keys" validate:"required,min=1"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

type AcknowledgeNotificationsResponse struct {
	Acknowledged int `json:"acknowledged"`
}
