package validation

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeFileHeader builds a parsed multipart file header the way a real upload
// request would produce it.
func makeFileHeader(t *testing.T, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	files := form.File["files"]
	require.Len(t, files, 1)
	return files[0]
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func TestNewConfig(t *testing.T) {
	t.Run("normalizes type lists", func(t *testing.T) {
		cfg, err := NewConfig(1024, []string{" Application/PDF ", "image/png", "application/pdf", ""}, []string{"IMAGE/"})
		require.NoError(t, err)

		assert.Equal(t, []string{"application/pdf", "image/png"}, cfg.AllowedTypes)
		assert.Equal(t, []string{"image/"}, cfg.AllowedPrefixes)
	})

	t.Run("rejects non-positive max size", func(t *testing.T) {
		_, err := NewConfig(0, nil, nil)
		assert.Error(t, err)

		_, err = NewConfig(-1, nil, nil)
		assert.Error(t, err)
	})
}

func TestValidateAttachmentSizeBoundary(t *testing.T) {
	cfg, err := NewConfig(64, nil, []string{"image/", "text/"})
	require.NoError(t, err)

	t.Run("exactly at limit accepted", func(t *testing.T) {
		fh := makeFileHeader(t, "ok.txt", "text/plain", bytes.Repeat([]byte("a"), 64))

		pending, err := ValidateAttachment(cfg, fh)
		require.NoError(t, err)
		defer pending.Data.Close()

		assert.Equal(t, int64(64), pending.SizeBytes)
	})

	t.Run("one byte over limit rejected", func(t *testing.T) {
		fh := makeFileHeader(t, "big.txt", "text/plain", bytes.Repeat([]byte("a"), 65))

		_, err := ValidateAttachment(cfg, fh)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFileTooLarge)
		assert.Contains(t, err.Error(), "files must be smaller than")
	})
}

func TestValidateAttachmentTypeRules(t *testing.T) {
	cfg, err := NewConfig(1<<20, []string{"application/pdf"}, []string{"image/"})
	require.NoError(t, err)

	t.Run("exact type allowed", func(t *testing.T) {
		fh := makeFileHeader(t, "doc.pdf", "application/pdf", []byte("%PDF-1.4"))

		pending, err := ValidateAttachment(cfg, fh)
		require.NoError(t, err)
		defer pending.Data.Close()

		assert.Equal(t, "application/pdf", pending.ContentType)
	})

	t.Run("prefix match allowed", func(t *testing.T) {
		fh := makeFileHeader(t, "pic.png", "image/png", pngBytes(t, 3, 2))

		pending, err := ValidateAttachment(cfg, fh)
		require.NoError(t, err)
		defer pending.Data.Close()

		assert.Equal(t, "image/png", pending.ContentType)
	})

	t.Run("declared type is case-insensitive", func(t *testing.T) {
		fh := makeFileHeader(t, "doc.pdf", "Application/PDF", []byte("%PDF-1.4"))

		pending, err := ValidateAttachment(cfg, fh)
		require.NoError(t, err)
		defer pending.Data.Close()

		assert.Equal(t, "application/pdf", pending.ContentType)
	})

	t.Run("octet-stream falls back to extension", func(t *testing.T) {
		fh := makeFileHeader(t, "report.pdf", "application/octet-stream", []byte("%PDF-1.4"))

		pending, err := ValidateAttachment(cfg, fh)
		require.NoError(t, err)
		defer pending.Data.Close()

		assert.Equal(t, "application/pdf", pending.ContentType)
	})

	t.Run("disallowed type rejected", func(t *testing.T) {
		fh := makeFileHeader(t, "evil.exe", "application/x-msdownload", []byte("MZ"))

		_, err := ValidateAttachment(cfg, fh)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedType)
		assert.Contains(t, err.Error(), "application/x-msdownload")
	})

	t.Run("undetectable type reported as unknown", func(t *testing.T) {
		fh := makeFileHeader(t, "mystery.zzzz-unknown", "", []byte{0x00, 0x01})

		_, err := ValidateAttachment(cfg, fh)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedType)
		assert.Contains(t, err.Error(), "unknown")
	})

	t.Run("empty allow lists skip the type rule", func(t *testing.T) {
		open, err := NewConfig(1<<20, nil, nil)
		require.NoError(t, err)

		fh := makeFileHeader(t, "anything.bin", "application/x-whatever", []byte{0x00})

		pending, err := ValidateAttachment(open, fh)
		require.NoError(t, err)
		pending.Data.Close()
	})
}

func TestValidateAttachmentRuleOrder(t *testing.T) {
	cfg, err := NewConfig(8, []string{"application/pdf"}, nil)
	require.NoError(t, err)

	// Oversized AND wrong type: the size rule fires first.
	fh := makeFileHeader(t, "big.exe", "application/x-msdownload", bytes.Repeat([]byte("x"), 100))

	_, err = ValidateAttachment(cfg, fh)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.NotErrorIs(t, err, ErrUnsupportedType)
}

func TestValidateAttachmentScanHook(t *testing.T) {
	base, err := NewConfig(1<<20, nil, []string{"image/", "text/"})
	require.NoError(t, err)

	t.Run("scan runs last and sees the file", func(t *testing.T) {
		cfg := base
		var scannedName string
		cfg.Scan = func(file multipart.File, header *multipart.FileHeader) error {
			scannedName = header.Filename
			buf := make([]byte, 4)
			file.Read(buf)
			return nil
		}

		fh := makeFileHeader(t, "clean.txt", "text/plain", []byte("hello"))

		pending, err := ValidateAttachment(cfg, fh)
		require.NoError(t, err)
		defer pending.Data.Close()

		assert.Equal(t, "clean.txt", scannedName)

		// Gate rewound the file after the scan read from it.
		data := make([]byte, 5)
		n, _ := pending.Data.Read(data)
		assert.Equal(t, "hello", string(data[:n]))
	})

	t.Run("scan rejection surfaced verbatim", func(t *testing.T) {
		cfg := base
		cfg.Scan = func(file multipart.File, header *multipart.FileHeader) error {
			return fmt.Errorf("%w: EICAR signature found", ErrScanRejected)
		}

		fh := makeFileHeader(t, "infected.txt", "text/plain", []byte("X5O!"))

		_, err := ValidateAttachment(cfg, fh)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrScanRejected)
		assert.Contains(t, err.Error(), "EICAR signature found")
	})

	t.Run("scan skipped when type rule already failed", func(t *testing.T) {
		cfg := base
		cfg.AllowedPrefixes = []string{"image/"}
		scanCalled := false
		cfg.Scan = func(file multipart.File, header *multipart.FileHeader) error {
			scanCalled = true
			return nil
		}

		fh := makeFileHeader(t, "notes.txt", "text/plain", []byte("hello"))

		_, err := ValidateAttachment(cfg, fh)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedType)
		assert.False(t, scanCalled)
	})
}

func TestValidateAttachmentImageDimensions(t *testing.T) {
	cfg, err := NewConfig(1<<20, nil, []string{"image/"})
	require.NoError(t, err)

	t.Run("dimensions extracted for images", func(t *testing.T) {
		fh := makeFileHeader(t, "pic.png", "image/png", pngBytes(t, 7, 5))

		pending, err := ValidateAttachment(cfg, fh)
		require.NoError(t, err)
		defer pending.Data.Close()

		require.NotNil(t, pending.ImageWidth)
		require.NotNil(t, pending.ImageHeight)
		assert.Equal(t, 7, *pending.ImageWidth)
		assert.Equal(t, 5, *pending.ImageHeight)
	})

	t.Run("undecodable image still accepted", func(t *testing.T) {
		fh := makeFileHeader(t, "broken.png", "image/png", []byte("not a png"))

		pending, err := ValidateAttachment(cfg, fh)
		require.NoError(t, err)
		defer pending.Data.Close()

		assert.Nil(t, pending.ImageWidth)
		assert.Nil(t, pending.ImageHeight)

		// Bytes still readable from the start for persistence.
		data := make([]byte, 9)
		n, _ := pending.Data.Read(data)
		assert.Equal(t, "not a png", string(data[:n]))
	})
}

func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		declared    string
		expected    string
	}{
		{"declared type wins", "file.bin", "image/png", "image/png"},
		{"declared type lowercased", "file.bin", "IMAGE/PNG", "image/png"},
		{"octet-stream falls back to extension", "doc.pdf", "application/octet-stream", "application/pdf"},
		{"missing type falls back to extension", "pic.png", "", "image/png"},
		{"parameters stripped", "notes.txt", "text/plain; charset=utf-8", "text/plain"},
		{"unknown everything", "mystery.zzzz-unknown", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fh := makeFileHeader(t, tt.filename, tt.declared, []byte("data"))
			assert.Equal(t, tt.expected, DetectMimeType(fh))
		})
	}
}
