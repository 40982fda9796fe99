package widget

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mecho90/BuildingManagement/shared/api"
)

// fakeHost records every side effect so tests can assert on the exact
// interaction with the page.
type fakeHost struct {
	scrollLocks   int
	scrollUnlocks int
	focusClose    int
	restoredTo    []string
	loadedImages  []string
	clearedImages int
	loadedFrames  []string
	clearedFrames int
	external      []string
	confirmed     []string
	confirmResult bool
}

func newFakeHost() *fakeHost { return &fakeHost{confirmResult: true} }

func (h *fakeHost) LockScroll()   { h.scrollLocks++ }
func (h *fakeHost) UnlockScroll() { h.scrollUnlocks++ }
func (h *fakeHost) FocusClose()   { h.focusClose++ }

func (h *fakeHost) RestoreFocus(trigger string) { h.restoredTo = append(h.restoredTo, trigger) }
func (h *fakeHost) LoadImage(url string)        { h.loadedImages = append(h.loadedImages, url) }
func (h *fakeHost) ClearImage()                 { h.clearedImages++ }
func (h *fakeHost) LoadFrame(url string)        { h.loadedFrames = append(h.loadedFrames, url) }
func (h *fakeHost) ClearFrame()                 { h.clearedFrames++ }
func (h *fakeHost) OpenExternal(url string)     { h.external = append(h.external, url) }
func (h *fakeHost) Confirm(message string) bool {
	h.confirmed = append(h.confirmed, message)
	return h.confirmResult
}

type fakeUploader struct {
	uploadFunc func(ctx context.Context, file File, progress func(sent, total int64)) (*api.UploadResponse, error)
}

func (u *fakeUploader) Upload(ctx context.Context, file File, progress func(sent, total int64)) (*api.UploadResponse, error) {
	return u.uploadFunc(ctx, file, progress)
}

type fakeDeleter struct {
	deleteFunc func(ctx context.Context, deleteURL string) error
	deleted    []string
}

func (d *fakeDeleter) DeleteAttachment(ctx context.Context, deleteURL string) error {
	d.deleted = append(d.deleted, deleteURL)
	if d.deleteFunc != nil {
		return d.deleteFunc(ctx, deleteURL)
	}
	return nil
}

func testConfig() Config {
	return Config{
		Labels:             DefaultLabels(),
		CanManage:          true,
		UploadURL:          "/work-orders/7/attachments/",
		ListURL:            "/work-orders/7/attachments/",
		PreviewURLTemplate: "/work-orders/7/attachments/{id}/preview",
	}
}

func imageMeta(id int64, name string) api.AttachmentMetadata {
	return api.AttachmentMetadata{
		Id:             id,
		Name:           name,
		Url:            fmt.Sprintf("/media/work-orders/7/%s", name),
		SizeDisplay:    "1.2 MB",
		ContentType:    "image/jpeg",
		Category:       "image",
		IsImage:        true,
		Extension:      "jpg",
		CreatedDisplay: "2026-08-26 14:05",
		DeleteUrl:      fmt.Sprintf("/v1/work-orders/7/attachments/%d", id),
	}
}

func pdfMeta(id int64, name string) api.AttachmentMetadata {
	return api.AttachmentMetadata{
		Id:             id,
		Name:           name,
		Url:            fmt.Sprintf("/media/work-orders/7/%s", name),
		SizeDisplay:    "340.0 KB",
		ContentType:    "application/pdf",
		Category:       "file",
		Extension:      "pdf",
		CreatedDisplay: "2026-08-26 14:06",
		DeleteUrl:      fmt.Sprintf("/v1/work-orders/7/attachments/%d", id),
	}
}

// TestAttachmentsEndToEnd walks the full page lifecycle: upload two files,
// inspect both in their viewers, then delete one.
func TestAttachmentsEndToEnd(t *testing.T) {
	host := newFakeHost()
	deleter := &fakeDeleter{}
	uploader := &fakeUploader{
		uploadFunc: func(ctx context.Context, file File, progress func(sent, total int64)) (*api.UploadResponse, error) {
			progress(512, 1024)
			progress(1024, 1024)
			meta := imageMeta(1, file.Name)
			if file.ContentType == "application/pdf" {
				meta = pdfMeta(2, file.Name)
			}
			return &api.UploadResponse{Attachments: []api.AttachmentMetadata{meta}}, nil
		},
	}

	w := New(testConfig(), host, uploader, deleter)
	require.True(t, w.Gallery.EmptyStateVisible())

	w.Queue.Add(context.Background(), []File{
		{Name: "boiler.jpg", Size: 1024, ContentType: "image/jpeg"},
		{Name: "invoice.pdf", Size: 2048, ContentType: "application/pdf"},
	})
	w.Queue.Wait()

	cards := w.Gallery.Cards()
	require.Len(t, cards, 2)
	assert.False(t, w.Gallery.EmptyStateVisible())

	image, ok := w.Gallery.Card(1)
	require.True(t, ok)
	require.True(t, image.IsImage)
	doc, ok := w.Gallery.Card(2)
	require.True(t, ok)
	require.False(t, doc.IsImage)
	assert.Equal(t, "/work-orders/7/attachments/2/preview", doc.PreviewURL)
	assert.Equal(t, "PDF", doc.Badge)
	assert.Equal(t, "Uploaded 2026-08-26 14:06", doc.Uploaded)

	// Image card opens the lightbox.
	w.OpenCard(image)
	require.True(t, w.Lightbox.IsOpen())
	assert.True(t, w.Lightbox.Loading())
	assert.Equal(t, 1, host.scrollLocks)
	assert.Equal(t, []string{image.URL}, host.loadedImages)

	w.Lightbox.ImageLoaded()
	assert.False(t, w.Lightbox.Loading())

	w.Lightbox.ZoomIn()
	w.Lightbox.ZoomIn()
	assert.InDelta(t, 1.5, w.Lightbox.Scale(), 1e-9)

	w.Lightbox.PointerDown(1, Point{X: 100, Y: 100})
	w.Lightbox.PointerMove(1, Point{X: 130, Y: 80})
	assert.Equal(t, Point{X: 30, Y: -20}, w.Lightbox.Pan())
	w.Lightbox.PointerUp(1)

	w.Lightbox.KeyDown("0")
	assert.Equal(t, MinScale, w.Lightbox.Scale())
	assert.Equal(t, Point{}, w.Lightbox.Pan())

	w.Lightbox.KeyDown("Escape")
	require.False(t, w.Lightbox.IsOpen())
	assert.Equal(t, 1, host.clearedImages)
	assert.Equal(t, 1, host.scrollUnlocks)
	assert.Equal(t, []string{image.DOMId}, host.restoredTo)

	// Document card opens the preview modal.
	w.OpenCard(doc)
	require.True(t, w.DocModal.IsOpen())
	assert.Equal(t, []string{doc.PreviewURL}, host.loadedFrames)
	w.DocModal.FrameLoaded()
	assert.False(t, w.DocModal.Loading())
	w.DocModal.Close()
	assert.Equal(t, 1, host.clearedFrames)
	assert.Equal(t, []string{image.DOMId, doc.DOMId}, host.restoredTo)

	// Delete the document after confirmation.
	require.NoError(t, w.Gallery.Delete(context.Background(), 2))
	assert.Equal(t, []string{doc.DeleteURL}, deleter.deleted)
	assert.Len(t, w.Gallery.Cards(), 1)
	assert.False(t, w.Gallery.EmptyStateVisible())
}

func TestOpenCardExternal(t *testing.T) {
	host := newFakeHost()
	w := New(testConfig(), host, &fakeUploader{}, &fakeDeleter{})

	meta := api.AttachmentMetadata{
		Id:          9,
		Name:        "floorplan.dwg",
		Url:         "/media/work-orders/7/floorplan.dwg",
		ContentType: "application/octet-stream",
		Category:    "file",
		Extension:   "dwg",
	}
	card := NewCard(meta, "/work-orders/7/attachments/9/preview", DefaultLabels())
	require.True(t, card.External)

	w.OpenCard(card)
	assert.False(t, w.DocModal.IsOpen())
	assert.Equal(t, []string{card.URL}, host.external)
}

func TestNewCardBadgeFallback(t *testing.T) {
	meta := api.AttachmentMetadata{Id: 3, Name: "README", ContentType: "text/plain", Category: "file"}
	card := NewCard(meta, "", DefaultLabels())
	assert.Equal(t, DefaultLabels().FilePlaceholder, card.Badge)
	assert.False(t, card.External, "text files preview inline")

	meta.Name = "notes.txt"
	meta.Extension = "txt"
	assert.Equal(t, "TXT", NewCard(meta, "", DefaultLabels()).Badge)
}

func TestRequestErrorMessage(t *testing.T) {
	err := &RequestError{StatusCode: 403, Message: "forbidden"}
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "forbidden")

	var asErr *RequestError
	assert.True(t, errors.As(fmt.Errorf("upload: %w", err), &asErr))
}
