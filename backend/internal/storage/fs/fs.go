package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Mecho90/BuildingManagement/backend/internal/service"
)

type Storage struct {
	rootPath string
	baseURL  string
}

// Ensure Storage implements the interface at compile time.
var _ service.ObjectStorage = (*Storage)(nil)
var _ service.SweepObjects = (*Storage)(nil)

// New prepares a media root on the local filesystem. baseURL is prepended to
// stored paths when building public URLs, e.g. "/media".
func New(rootPath, baseURL string) (*Storage, error) {
	// Use filepath.Clean to prevent path traversal issues like "media/../"
	p := filepath.Clean(rootPath)

	// os.ModePerm (0777) is masked by the system's umask. 0755 is a common, safer default.
	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &Storage{rootPath: p, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// fullPath resolves a slash-separated stored path under the root, rejecting
// anything that would escape it.
func (s *Storage) fullPath(storedPath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(storedPath))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid stored path %q", storedPath)
	}
	return filepath.Join(s.rootPath, cleaned), nil
}

// Save writes the object's bytes under the media root, lazily creating the
// owning scope directories.
func (s *Storage) Save(_ context.Context, fileData io.Reader, storedPath string) error {
	fullPath, err := s.fullPath(storedPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create subdirectories: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, fileData); err != nil {
		// If the copy fails, try to clean up the partial file.
		os.Remove(fullPath) // Best effort, ignore error here.
		return fmt.Errorf("failed to copy file data: %w", err)
	}

	return nil
}

// Open opens a stored object for reading.
func (s *Storage) Open(_ context.Context, storedPath string) (io.ReadCloser, error) {
	fullPath, err := s.fullPath(storedPath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("attachment not found: %w", err)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes a single stored object.
func (s *Storage) Delete(_ context.Context, storedPath string) error {
	fullPath, err := s.fullPath(storedPath)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		// We don't error if the file is already gone, but we do for other errors.
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URL joins the public media base with the stored path.
func (s *Storage) URL(storedPath string) string {
	return s.baseURL + "/" + strings.TrimLeft(storedPath, "/")
}

// ListObjects walks the media root and returns every stored path,
// slash-separated and relative to the root.
func (s *Storage) ListObjects(_ context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.rootPath, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.rootPath, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk media root: %w", err)
	}
	return paths, nil
}

// ObjectModTime reports when a stored object last changed.
func (s *Storage) ObjectModTime(_ context.Context, storedPath string) (time.Time, error) {
	fullPath, err := s.fullPath(storedPath)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat %s: %w", storedPath, err)
	}
	return info.ModTime(), nil
}
