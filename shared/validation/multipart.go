package validation

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

// ValidateAndParseMultipart bounds the request body and parses the multipart
// form. MaxBytesReader stops reading once maxRequestSize is hit, so an
// oversized request cannot exhaust the server; per-file size limits are the
// gate's job, this cap only bounds the whole batch.
func ValidateAndParseMultipart(r *http.Request, w http.ResponseWriter, maxRequestSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)

	if err := r.ParseMultipartForm(maxRequestSize); err != nil {
		return fmt.Errorf("%w: failed to parse multipart form", ErrPayloadTooLarge)
	}

	return nil
}

// DetectMimeType resolves an upload's content type: the declared header when
// it is specific, otherwise a guess from the filename extension. Returns ""
// when nothing can be determined; the gate then rejects with "unknown".
func DetectMimeType(fileHeader *multipart.FileHeader) string {
	mimeType := strings.ToLower(strings.TrimSpace(fileHeader.Header.Get("Content-Type")))

	if mimeType == "" || mimeType == "application/octet-stream" {
		ext := filepath.Ext(fileHeader.Filename)
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			mimeType = strings.ToLower(guessed)
		}
	}

	// mime.TypeByExtension may append parameters ("text/plain; charset=utf-8")
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	return mimeType
}

// ExtractImageDimensions decodes image dimensions for image uploads. Returns
// nils for non-images or undecodable data; the file offset is rewound either
// way so the bytes can still be persisted.
func ExtractImageDimensions(file multipart.File, mimeType string) (*int, *int) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, nil
	}

	img, _, err := image.DecodeConfig(file)
	file.Seek(0, 0)
	if err != nil {
		return nil, nil
	}

	width, height := img.Width, img.Height
	return &width, &height
}
