package apiclient

import (
	"fmt"
	"io"
	"net/http"

	"github.com/Mecho90/BuildingManagement/shared/api"
	"github.com/Mecho90/BuildingManagement/shared/utils"
)

// GetAttachments fetches the newest-first attachment list for server-side
// rendering of the gallery.
func (c *APIClient) GetAttachments(r *http.Request, workOrderId int64) ([]api.AttachmentMetadata, error) {
	var data struct {
		Attachments []api.AttachmentMetadata `json:"attachments"`
	}
	path := fmt.Sprintf("/v1/work-orders/%d/attachments", workOrderId)

	resp, err := c.do("GET", path, nil, r.Cookies()...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	if err := utils.Decode(resp.Body, &data); err != nil {
		return nil, fmt.Errorf("cannot decode attachments response: %w", err)
	}
	return data.Attachments, nil
}

// UploadAttachments relays a multipart upload to the backend without
// interpreting it. The caller supplies the body and its Content-Type
// (boundary included); the response is returned raw so the proxy handler can
// copy status and JSON straight back to the browser.
func (c *APIClient) UploadAttachments(r *http.Request, workOrderId int64, contentType string, body io.Reader) (*http.Response, error) {
	path := fmt.Sprintf("/v1/work-orders/%d/attachments", workOrderId)
	return c.doContentType("POST", path, contentType, body, r.Cookies()...)
}

// DeleteAttachment returns the raw response; the proxy handler relays status
// and body so the browser sees exactly what the backend decided.
func (c *APIClient) DeleteAttachment(r *http.Request, workOrderId, attachmentId int64) (*http.Response, error) {
	path := fmt.Sprintf("/v1/work-orders/%d/attachments/%d", workOrderId, attachmentId)
	return c.do("DELETE", path, nil, r.Cookies()...)
}

// OpenAttachment streams attachment content through the backend's
// authorization check, for the same-origin preview frame.
func (c *APIClient) OpenAttachment(r *http.Request, workOrderId, attachmentId int64) (*http.Response, error) {
	path := fmt.Sprintf("/v1/work-orders/%d/attachments/%d/content", workOrderId, attachmentId)
	return c.do("GET", path, nil, r.Cookies()...)
}
