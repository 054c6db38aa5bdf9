package storage

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dkushnir/lavka-backend/config"
	"github.com/dkushnir/lavka-backend/pkg/logger"
)

// LocalStorage writes uploads to a directory on disk. Paths returned to
// callers are relative to the application base dir so they double as URL
// paths (e.g. "uploads/abc.png").
type LocalStorage struct {
	baseDir   string
	uploadDir string
}

func NewLocalStorage(cfg *config.StorageConfig) (*LocalStorage, error) {
	baseDir, err := filepath.Abs(cfg.BaseDir)
	if err != nil {
		return nil, err
	}

	s := &LocalStorage{
		baseDir:   baseDir,
		uploadDir: cfg.UploadDir,
	}
	if err := os.MkdirAll(filepath.Join(baseDir, cfg.UploadDir), 0o755); err != nil {
		return nil, err
	}

	logger.Info("Local storage initialized", map[string]interface{}{
		"dir": filepath.Join(baseDir, cfg.UploadDir),
	})
	return s, nil
}

func (s *LocalStorage) Save(originalName string, r io.Reader, size, maxSize int64) (string, error) {
	if err := validate(originalName, size, maxSize); err != nil {
		return "", err
	}

	relPath := filepath.ToSlash(filepath.Join(s.uploadDir, uniqueName(originalName)))

	absPath, err := s.resolve(relPath)
	if err != nil {
		return "", err
	}

	dst, err := os.Create(absPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(absPath)
		return "", err
	}

	logger.Debug("File stored", map[string]interface{}{
		"path": relPath,
		"size": size,
	})
	return relPath, nil
}

func (s *LocalStorage) Remove(path string) error {
	absPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStorage) List() ([]FileInfo, error) {
	root := filepath.Join(s.baseDir, s.uploadDir)

	var files []FileInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		files = append(files, FileInfo{
			Path:    filepath.ToSlash(rel),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// resolve turns a stored relative path into an absolute one and rejects
// anything that would land outside the upload directory.
func (s *LocalStorage) resolve(path string) (string, error) {
	uploadRoot := filepath.Join(s.baseDir, s.uploadDir)

	absPath, err := filepath.Abs(filepath.Join(s.baseDir, filepath.FromSlash(path)))
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(absPath, uploadRoot+string(os.PathSeparator)) {
		return "", ErrPathOutsideRoot
	}
	return absPath, nil
}
