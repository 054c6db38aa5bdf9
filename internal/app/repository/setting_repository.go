package repository

import (
	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/pkg/logger"
	"gorm.io/gorm"
)

type SettingRepository interface {
	Get() (*model.StorefrontSetting, error)
	Update(setting *model.StorefrontSetting) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

// Get returns the storefront settings singleton, creating the empty row
// on first access.
func (r *settingRepository) Get() (*model.StorefrontSetting, error) {
	var setting model.StorefrontSetting
	err := r.db.Where(model.StorefrontSetting{ID: 1}).FirstOrCreate(&setting).Error
	if err != nil {
		logger.Error("Failed to load storefront settings", err, nil)
		return nil, err
	}
	return &setting, nil
}

func (r *settingRepository) Update(setting *model.StorefrontSetting) error {
	setting.ID = 1

	if err := r.db.Save(setting).Error; err != nil {
		logger.Error("Failed to update storefront settings", err, nil)
		return err
	}
	return nil
}
