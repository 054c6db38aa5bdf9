package scheduler

import (
	"time"

	"github.com/dkushnir/lavka-backend/config"
	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/internal/storage"
	"github.com/dkushnir/lavka-backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// UploadSweeper periodically deletes stored files that no database row
// references anymore. Crash windows between a commit and the post-commit
// file cleanup leave such orphans behind; the sweeper closes that gap.
type UploadSweeper struct {
	cron  *cron.Cron
	db    *gorm.DB
	store storage.Storage
	cfg   *config.SweeperConfig
}

func NewUploadSweeper(db *gorm.DB, store storage.Storage, cfg *config.SweeperConfig) *UploadSweeper {
	return &UploadSweeper{
		cron:  cron.New(),
		db:    db,
		store: store,
		cfg:   cfg,
	}
}

func (s *UploadSweeper) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		if err := s.Sweep(); err != nil {
			logger.Error("Scheduled upload sweep failed", err)
		}
	})
	if err != nil {
		logger.Error("Failed to register upload sweeper cron job", err)
		return err
	}

	s.cron.Start()
	logger.Info("Upload sweeper started", map[string]interface{}{
		"schedule": s.cfg.Schedule,
		"min_age":  s.cfg.MinAge.String(),
	})
	return nil
}

func (s *UploadSweeper) Stop() {
	logger.Info("Stopping upload sweeper", nil)
	s.cron.Stop()
}

// Sweep removes unreferenced uploads older than the configured minimum
// age. Young files are skipped: they may belong to a form that has not
// been submitted yet.
func (s *UploadSweeper) Sweep() error {
	logger.Info("Starting upload sweep", nil)

	referenced, err := s.referencedPaths()
	if err != nil {
		return err
	}

	files, err := s.store.List()
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-s.cfg.MinAge)
	removed := 0
	for _, file := range files {
		if referenced[file.Path] || file.ModTime.After(cutoff) {
			continue
		}
		if err := s.store.Remove(file.Path); err != nil {
			logger.Warn("Failed to remove orphaned upload", map[string]interface{}{
				"path":  file.Path,
				"error": err.Error(),
			})
			continue
		}
		removed++
	}

	logger.Info("Upload sweep finished", map[string]interface{}{
		"scanned": len(files),
		"removed": removed,
	})
	return nil
}

// referencedPaths collects every file path currently stored in the
// database.
func (s *UploadSweeper) referencedPaths() (map[string]bool, error) {
	referenced := make(map[string]bool)

	collect := func(modelValue interface{}, column string) error {
		var paths []string
		if err := s.db.Model(modelValue).Where(column+" <> ''").Pluck(column, &paths).Error; err != nil {
			return err
		}
		for _, p := range paths {
			referenced[p] = true
		}
		return nil
	}

	if err := collect(&model.Category{}, "image_path"); err != nil {
		return nil, err
	}
	if err := collect(&model.Product{}, "preview"); err != nil {
		return nil, err
	}
	if err := collect(&model.ProductImage{}, "path"); err != nil {
		return nil, err
	}
	if err := collect(&model.AddOnItem{}, "image_path"); err != nil {
		return nil, err
	}
	return referenced, nil
}
