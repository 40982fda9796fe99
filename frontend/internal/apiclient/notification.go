package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Mecho90/BuildingManagement/shared/api"
	"github.com/Mecho90/BuildingManagement/shared/utils"
)

func (c *APIClient) GetNotifications(r *http.Request) ([]api.NotificationResponse, error) {
	var response api.NotificationListResponse
	resp, err := c.do("GET", "/v1/notifications", nil, r.Cookies()...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	if err := utils.Decode(resp.Body, &response); err != nil {
		return nil, fmt.Errorf("cannot decode notifications response: %w", err)
	}
	return response.Notifications, nil
}

// SnoozeNotification hides a notification until the given date; an empty
// until lets the backend pick its default window.
func (c *APIClient) SnoozeNotification(r *http.Request, notificationId int64, until string) error {
	jsonBody, err := json.Marshal(api.SnoozeNotificationRequest{Until: until})
	if err != nil {
		return fmt.Errorf("failed to marshal snooze data: %w", err)
	}

	path := fmt.Sprintf("/v1/notifications/%d/snooze", notificationId)
	resp, err := c.do("POST", path, bytes.NewBuffer(jsonBody), r.Cookies()...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError("snooze notification", resp)
	}
	return nil
}

func (c *APIClient) AcknowledgeNotifications(r *http.Request, keys []string) error {
	jsonBody, err := json.Marshal(api.AcknowledgeNotificationsRequest{Keys: keys})
	if err != nil {
		return fmt.Errorf("failed to marshal acknowledge data: %w", err)
	}

	resp, err := c.do("POST", "/v1/notifications/acknowledge", bytes.NewBuffer(jsonBody), r.Cookies()...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError("acknowledge notifications", resp)
	}
	return nil
}
