// Package widget implements the attachment components of the work order page
// as explicit state machines: the upload queue, the attachment gallery, the
// image lightbox and the document preview modal.
//
// The components hold no hidden globals. Everything they need arrives through
// Config (labels, capability flag, endpoint URLs) which the page embeds as a
// JSON document, and every side effect on the surrounding page goes through
// the Host interface, so each transition stays testable in isolation.
package widget

import (
	"context"
	"fmt"

	"github.com/Mecho90/BuildingManagement/shared/api"
)

// Labels carries every user-facing string the components render. The server
// resolves translations and embeds the result in the widget config, so the
// components never hardcode copy.
type Labels struct {
	Zoom             string `json:"zoom"`
	Close            string `json:"close"`
	Reset            string `json:"reset"`
	Open             string `json:"open"`
	Loading          string `json:"loading"`
	Download         string `json:"download"`
	Delete           string `json:"delete"`
	Preview          string `json:"preview"`
	TapHint          string `json:"tap_hint"`
	UploadedTemplate string `json:"uploaded_template"` // "Uploaded {date}"
	EmptyState       string `json:"empty_state"`
	FilePlaceholder  string `json:"file_placeholder"`
	ConfirmDelete    string `json:"confirm_delete"`
	UploadFailed     string `json:"upload_failed"`
}

// DefaultLabels returns the english fallback set. Pages normally override
// these from their translation catalog before embedding the config.
func DefaultLabels() Labels {
	return Labels{
		Zoom:             "Zoom",
		Close:            "Close",
		Reset:            "Reset",
		Open:             "Open",
		Loading:          "Loading...",
		Download:         "Download",
		Delete:           "Delete",
		Preview:          "Preview",
		TapHint:          "Tap to view",
		UploadedTemplate: "Uploaded {date}",
		EmptyState:       "No attachments yet.",
		FilePlaceholder:  "File",
		ConfirmDelete:    "Delete this attachment?",
		UploadFailed:     "Upload failed. Please try again.",
	}
}

// Config is the page-provided configuration for one work order's attachment
// area. It replaces scattered data attributes with a single typed document.
type Config struct {
	Labels    Labels `json:"labels"`
	CanManage bool   `json:"can_manage"`
	UploadURL string `json:"upload_url"`
	ListURL   string `json:"list_url"`
	// PreviewURLTemplate is the same-origin preview endpoint with an "{id}"
	// placeholder, e.g. "/work-orders/7/attachments/{id}/preview".
	PreviewURLTemplate string `json:"preview_url_template"`
}

// Host performs the side effects the components need from the surrounding
// page. Implementations bind to the real page; tests inject fakes.
type Host interface {
	// LockScroll prevents the page behind a modal from scrolling.
	LockScroll()
	UnlockScroll()

	// FocusClose moves keyboard focus to the active modal's close control.
	FocusClose()
	// RestoreFocus returns focus to the element identified by trigger,
	// typically the gallery card that opened the modal.
	RestoreFocus(trigger string)

	// LoadImage starts an asynchronous image load. The host reports the
	// outcome through Lightbox.ImageLoaded or Lightbox.ImageFailed.
	LoadImage(url string)
	// ClearImage cancels any in-flight load and drops the current image.
	ClearImage()

	// LoadFrame points the preview frame at url. The host reports the
	// outcome through DocModal.FrameLoaded or DocModal.FrameFailed.
	LoadFrame(url string)
	// ClearFrame resets the preview frame to a blank document, cancelling
	// any load still in progress.
	ClearFrame()

	// OpenExternal opens url in a new browsing context.
	OpenExternal(url string)

	// Confirm asks the user to confirm a destructive action.
	Confirm(message string) bool
}

// Uploader sends one file to the upload endpoint. Progress is reported with
// sent and total byte counts; total may be zero when unknown.
type Uploader interface {
	Upload(ctx context.Context, file File, progress func(sent, total int64)) (*api.UploadResponse, error)
}

// Deleter removes a previously uploaded attachment via its delete URL.
type Deleter interface {
	DeleteAttachment(ctx context.Context, deleteURL string) error
}

// RequestError is a failed attachment request. Message carries the server's
// structured error field when the response body had one; PerFile carries the
// per-file validation errors of a rejected upload.
type RequestError struct {
	StatusCode int
	Message    string
	PerFile    []api.UploadError
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Attachments owns the four cooperating components for one work order page.
// It is constructed once when the page initializes and shared by every card.
type Attachments struct {
	Queue    *UploadQueue
	Gallery  *Gallery
	Lightbox *Lightbox
	DocModal *DocModal
}

// New wires the components together. Completed uploads flow from the queue
// into the gallery; card activation routes to the lightbox or the modal.
func New(cfg Config, host Host, uploader Uploader, deleter Deleter) *Attachments {
	gallery := NewGallery(cfg, host, deleter)
	return &Attachments{
		Queue:    NewUploadQueue(cfg, uploader, gallery),
		Gallery:  gallery,
		Lightbox: NewLightbox(host),
		DocModal: NewDocModal(host),
	}
}

// OpenCard activates a gallery card: images open in the lightbox, documents
// in the preview modal, and externally viewed files in a new context.
func (a *Attachments) OpenCard(card Card) {
	if card.IsImage {
		a.Lightbox.Show(card)
		return
	}
	a.DocModal.Show(card)
}
