// Package storage abstracts where uploaded images live. The local driver
// serves files straight from disk; the s3 driver keeps the same layout in
// a bucket for multi-instance deployments.
package storage

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFileTypeNotAllowed = errors.New("file type is not allowed")
	ErrFileTooLarge       = errors.New("file is too large")
	ErrPathOutsideRoot    = errors.New("path escapes the upload directory")
)

// allowedExtensions is the image allowlist. Anything else is rejected
// before a byte is written.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// FileInfo describes one stored upload, used by the orphan sweeper.
type FileInfo struct {
	Path    string
	ModTime time.Time
}

type Storage interface {
	// Save validates and stores the upload under a fresh unique name,
	// returning the relative path to persist in the database.
	Save(originalName string, r io.Reader, size, maxSize int64) (string, error)

	// Remove deletes a previously stored file. Removing a missing file
	// is not an error.
	Remove(path string) error

	// List enumerates all stored uploads.
	List() ([]FileInfo, error)
}

// AllowedExtension reports whether the file name carries an image
// extension from the allowlist.
func AllowedExtension(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// uniqueName keeps the original extension but replaces the base name
// with a UUID so uploads never collide or overwrite each other.
func uniqueName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s%s", uuid.New().String(), ext)
}

// validate runs the shared pre-write checks.
func validate(originalName string, size, maxSize int64) error {
	if !AllowedExtension(originalName) {
		return ErrFileTypeNotAllowed
	}
	if maxSize > 0 && size > maxSize {
		return ErrFileTooLarge
	}
	return nil
}
