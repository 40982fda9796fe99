package validation

import "errors"

// ErrFileTooLarge is returned when a single file exceeds the size limit
var ErrFileTooLarge = errors.New("file too large")

// ErrUnsupportedType is returned when an uploaded file has a disallowed content type
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrScanRejected is the conventional sentinel for scan hooks to wrap
var ErrScanRejected = errors.New("file rejected by scan")

// ErrPayloadTooLarge is returned when the whole request body exceeds size limits
var ErrPayloadTooLarge = errors.New("payload too large")
