package service

import (
	"context"
	"io"
)

// ObjectStorage persists attachment payloads. One implementation backs onto
// the local filesystem, another onto an S3-compatible store; config selects
// the active one at startup.
type ObjectStorage interface {
	// Save writes the object at storedPath, creating parent scopes as needed.
	// storedPath is slash-separated and relative, e.g. "work-orders/7/<uuid>.pdf".
	Save(ctx context.Context, fileData io.Reader, storedPath string) error

	// Open returns the object's content for reading. The caller closes it.
	Open(ctx context.Context, storedPath string) (io.ReadCloser, error)

	// Delete removes the object. Deleting an object that is already gone is
	// not an error; anything else is.
	Delete(ctx context.Context, storedPath string) error

	// URL returns the address clients fetch the object from.
	URL(storedPath string) string
}
