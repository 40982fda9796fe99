package api

// AttachmentMetadata is the wire projection of one stored attachment.
// DeleteUrl is present only when the caller may manage attachments on the
// owning work order.
type AttachmentMetadata struct {
	Id             int64  `json:"id"`
	Name           string `json:"name"`
	Url            string `json:"url"`
	SizeDisplay    string `json:"size_display"`
	ContentType    string `json:"content_type"`
	Category       string `json:"category"`
	IsImage        bool   `json:"is_image"`
	Extension      string `json:"extension"`
	CreatedDisplay string `json:"created_display"`
	DeleteUrl      string `json:"delete_url,omitempty"`
}

// UploadError reports why one file in an upload batch was rejected.
type UploadError struct {
	Filename string   `json:"filename"`
	Errors   []string `json:"errors"`
}

// UploadResponse reconciles a multi-file upload: accepted files land in
// Attachments, rejected ones in Errors. Both can be non-empty at once.
type UploadResponse struct {
	Attachments []AttachmentMetadata `json:"attachments"`
	Errors      []UploadError        `json:"errors"`
}
