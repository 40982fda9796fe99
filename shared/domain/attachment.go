package domain

import (
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"
)

const (
	AttachmentCategoryImage = "image"
	AttachmentCategoryFile  = "file"
)

// Attachment is one stored file bound to a work order. StoredPath addresses
// the object in the storage backend and never derives from OriginalName, so
// identically named uploads cannot collide.
type Attachment struct {
	Id           int64
	WorkOrderId  int64
	OriginalName string
	StoredPath   string
	ContentType  string
	SizeBytes    int64
	ImageWidth   *int
	ImageHeight  *int
	UploadedBy   *int64
	CreatedAt    time.Time
}

func (a *Attachment) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(a.ContentType), "image/")
}

// Category drives gallery rendering: inline thumbnail vs. badge card.
func (a *Attachment) Category() string {
	if a.IsImage() {
		return AttachmentCategoryImage
	}
	return AttachmentCategoryFile
}

// Extension returns the lowercased original-name extension without the dot.
func (a *Attachment) Extension() string {
	ext := strings.TrimPrefix(filepath.Ext(a.OriginalName), ".")
	return strings.ToLower(ext)
}

// PendingUpload is a validated file that has not been persisted yet.
// Data stays open until the storage backend consumes it.
type PendingUpload struct {
	OriginalName string
	SizeBytes    int64
	ContentType  string
	ImageWidth   *int
	ImageHeight  *int
	Data         multipart.File
}
