package validation

import (
	"fmt"
	"mime/multipart"
	"sort"
	"strings"

	"github.com/Mecho90/BuildingManagement/shared/domain"
	"github.com/Mecho90/BuildingManagement/shared/utils"
)

// ScanFunc inspects an upload that already passed the size and type rules.
// A non-nil error rejects the file; the error text is surfaced to the
// uploader verbatim. Implementations should leave the read offset anywhere,
// the gate rewinds afterwards.
type ScanFunc func(file multipart.File, header *multipart.FileHeader) error

// Config is the upload acceptance policy. AllowedTypes match content types
// exactly, AllowedPrefixes by prefix; both lists are normalized to lowercase.
// When both lists are empty the type rule is skipped entirely.
type Config struct {
	MaxBytes        int64
	AllowedTypes    []string
	AllowedPrefixes []string
	Scan            ScanFunc
}

func NewConfig(maxBytes int64, allowedTypes, allowedPrefixes []string) (Config, error) {
	if maxBytes <= 0 {
		return Config{}, fmt.Errorf("max attachment size must be positive, got %d", maxBytes)
	}
	return Config{
		MaxBytes:        maxBytes,
		AllowedTypes:    normalizeTokens(allowedTypes),
		AllowedPrefixes: normalizeTokens(allowedPrefixes),
	}, nil
}

// normalizeTokens lowercases, trims, dedupes and sorts a type list.
func normalizeTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, token := range tokens {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

func (c Config) enforceTypeCheck() bool {
	return len(c.AllowedTypes) > 0 || len(c.AllowedPrefixes) > 0
}

func (c Config) typeAllowed(mimeType string) bool {
	if mimeType == "" {
		return false
	}
	for _, t := range c.AllowedTypes {
		if mimeType == t {
			return true
		}
	}
	for _, prefix := range c.AllowedPrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}

// ValidateAttachment runs the acceptance rules in order: size, then content
// type, then the scan hook. The first violation wins and is returned as the
// rejection reason. Files in one request are validated independently, so the
// caller loops and collects per-file results.
//
// On acceptance the opened file is returned with detected metadata; the
// caller owns closing it.
func ValidateAttachment(cfg Config, fileHeader *multipart.FileHeader) (*domain.PendingUpload, error) {
	if fileHeader.Size > cfg.MaxBytes {
		return nil, fmt.Errorf("%w: files must be smaller than %s", ErrFileTooLarge, utils.SizeDisplay(cfg.MaxBytes))
	}

	mimeType := DetectMimeType(fileHeader)
	if cfg.enforceTypeCheck() && !cfg.typeAllowed(mimeType) {
		display := mimeType
		if display == "" {
			display = "unknown"
		}
		return nil, fmt.Errorf("%w: %s, allowed types: %s or %s", ErrUnsupportedType,
			display, strings.Join(cfg.AllowedTypes, ", "), strings.Join(cfg.AllowedPrefixes, ", "))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}

	if cfg.Scan != nil {
		if err := cfg.Scan(file, fileHeader); err != nil {
			file.Close()
			return nil, err
		}
		if _, err := file.Seek(0, 0); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to rewind uploaded file: %w", err)
		}
	}

	width, height := ExtractImageDimensions(file, mimeType)

	return &domain.PendingUpload{
		OriginalName: fileHeader.Filename,
		SizeBytes:    fileHeader.Size,
		ContentType:  mimeType,
		ImageWidth:   width,
		ImageHeight:  height,
		Data:         file,
	}, nil
}
