package repository

import (
	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/pkg/logger"
	"gorm.io/gorm"
)

// CategoryRepository owns the tier invariant: the tiers of all categories
// must stay a contiguous zero-based range, so every operation that touches
// tiers runs inside a single transaction.
type CategoryRepository interface {
	Create(category *model.Category) error
	FindByID(id uint) (*model.Category, error)
	FindByName(name string) (*model.Category, error)
	FindByIDs(ids []uint) ([]model.Category, error)
	FindAll() ([]model.Category, error)
	Update(category *model.Category) error
	CountProducts(categoryID uint) (int64, error)
	DeleteCascade(category *model.Category, cascade bool) (*CascadeResult, error)
	ReorderByNames(names []string) (int, error)
}

// CascadeResult reports what a category delete removed. OrphanedFiles are
// paths whose rows are gone; the caller removes the files best-effort
// after the transaction commits.
type CascadeResult struct {
	DeletedProducts int
	OrphanedFiles   []string
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create appends the category at the end of the ordering: its tier is the
// category count observed in the same transaction.
func (r *categoryRepository) Create(category *model.Category) error {
	logger.Debug("Creating category in database", map[string]interface{}{
		"name": category.Name,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Category{}).Count(&count).Error; err != nil {
			return err
		}
		category.Tier = int(count)
		return tx.Create(category).Error
	})
	if err != nil {
		logger.Error("Failed to create category in database", err, map[string]interface{}{
			"name": category.Name,
		})
		return err
	}

	logger.Debug("Category created in database", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
		"tier":        category.Tier,
	})
	return nil
}

func (r *categoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByName(name string) (*model.Category, error) {
	var category model.Category
	if err := r.db.Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByIDs(ids []uint) ([]model.Category, error) {
	var categories []model.Category
	if len(ids) == 0 {
		return categories, nil
	}
	if err := r.db.Where("id IN ?", ids).Order("tier asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindAll() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Order("tier asc").Find(&categories).Error; err != nil {
		logger.Error("Failed to list categories", err, nil)
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Update(category *model.Category) error {
	if err := r.db.Save(category).Error; err != nil {
		logger.Error("Failed to update category in database", err, map[string]interface{}{
			"category_id": category.ID,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) CountProducts(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	if err != nil {
		logger.Error("Failed to count products in category", err, map[string]interface{}{
			"category_id": categoryID,
		})
		return 0, err
	}
	return count, nil
}

// DeleteCascade removes the category and closes the tier gap. With cascade
// set it also removes every product in the category together with their
// images and add-ons; without it the category must already be empty
// (the service checks and reports the conflict before calling here).
func (r *categoryRepository) DeleteCascade(category *model.Category, cascade bool) (*CascadeResult, error) {
	logger.Debug("Deleting category from database", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
		"tier":        category.Tier,
		"cascade":     cascade,
	})

	result := &CascadeResult{}
	if category.ImagePath != "" {
		result.OrphanedFiles = append(result.OrphanedFiles, category.ImagePath)
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if cascade {
			var products []model.Product
			if err := tx.Where("category_id = ?", category.ID).Find(&products).Error; err != nil {
				return err
			}
			for i := range products {
				paths, err := deleteProductTx(tx, &products[i])
				if err != nil {
					return err
				}
				result.OrphanedFiles = append(result.OrphanedFiles, paths...)
			}
			result.DeletedProducts = len(products)
		}

		if err := tx.Delete(&model.Category{}, category.ID).Error; err != nil {
			return err
		}

		// Close the gap: everything ranked below the deleted tier moves up.
		return tx.Model(&model.Category{}).
			Where("tier > ?", category.Tier).
			UpdateColumn("tier", gorm.Expr("tier - 1")).Error
	})
	if err != nil {
		logger.Error("Failed to delete category from database", err, map[string]interface{}{
			"category_id": category.ID,
			"name":        category.Name,
		})
		return nil, err
	}

	logger.Debug("Category deleted from database", map[string]interface{}{
		"category_id":      category.ID,
		"deleted_products": result.DeletedProducts,
	})
	return result, nil
}

// ReorderByNames assigns each named category the tier equal to its position
// in the sequence. Unknown names are skipped; omitted categories keep their
// previous tier. Returns how many categories were updated.
func (r *categoryRepository) ReorderByNames(names []string) (int, error) {
	logger.Debug("Reordering categories", map[string]interface{}{
		"count": len(names),
	})

	updated := 0
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for tier, name := range names {
			res := tx.Model(&model.Category{}).Where("name = ?", name).UpdateColumn("tier", tier)
			if res.Error != nil {
				return res.Error
			}
			updated += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to reorder categories", err, nil)
		return 0, err
	}

	logger.Debug("Categories reordered", map[string]interface{}{
		"updated": updated,
	})
	return updated, nil
}

// deleteProductTx removes one product with all owned rows inside tx and
// returns the file paths those rows referenced. Shared by the category
// cascade and ProductRepository.DeleteCascade.
func deleteProductTx(tx *gorm.DB, product *model.Product) ([]string, error) {
	var paths []string
	if product.Preview != "" {
		paths = append(paths, product.Preview)
	}

	var images []model.ProductImage
	if err := tx.Where("product_id = ?", product.ID).Find(&images).Error; err != nil {
		return nil, err
	}
	for _, img := range images {
		if img.Path != "" {
			paths = append(paths, img.Path)
		}
	}
	if err := tx.Where("product_id = ?", product.ID).Delete(&model.ProductImage{}).Error; err != nil {
		return nil, err
	}

	var addons []model.AddOnCategory
	if err := tx.Where("product_id = ?", product.ID).Find(&addons).Error; err != nil {
		return nil, err
	}
	for _, addon := range addons {
		var items []model.AddOnItem
		if err := tx.Where("add_on_category_id = ?", addon.ID).Find(&items).Error; err != nil {
			return nil, err
		}
		for _, item := range items {
			if item.ImagePath != "" {
				paths = append(paths, item.ImagePath)
			}
		}
		if err := tx.Where("add_on_category_id = ?", addon.ID).Delete(&model.AddOnItem{}).Error; err != nil {
			return nil, err
		}
	}
	if err := tx.Where("product_id = ?", product.ID).Delete(&model.AddOnCategory{}).Error; err != nil {
		return nil, err
	}

	// Cart lines pointing at the product go with it.
	if err := tx.Where("product_id = ?", product.ID).Delete(&model.CartItem{}).Error; err != nil {
		return nil, err
	}

	if err := tx.Delete(&model.Product{}, product.ID).Error; err != nil {
		return nil, err
	}
	return paths, nil
}
