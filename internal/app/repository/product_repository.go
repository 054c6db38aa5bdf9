package repository

import (
	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindByIDs(ids []uint) ([]model.Product, error)
	FindAll(categoryID *uint) ([]model.Product, error)
	Update(product *model.Product) error
	DeleteCascade(product *model.Product) ([]string, error)

	CreateImage(image *model.ProductImage) error
	DeleteImage(id uint) error
	MaxImageSortOrder(productID uint) (int, error)

	CreateAddOnCategory(addon *model.AddOnCategory) error
	UpdateAddOnCategory(addon *model.AddOnCategory) error
	DeleteAddOnCategory(id uint) error
	CreateAddOnItem(item *model.AddOnItem) error
	UpdateAddOnItem(item *model.AddOnItem) error
	DeleteAddOnItem(id uint) error

	// Transaction runs fn against a repository bound to one transaction.
	Transaction(fn func(txRepo ProductRepository) error) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Transaction(fn func(txRepo ProductRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&productRepository{db: tx})
	})
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name": product.Name,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc")
		}).
		Preload("AddOns.Items").
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ids []uint) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc")
		}).
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindAll(categoryID *uint) ([]model.Product, error) {
	var products []model.Product
	query := r.db.
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc")
		}).
		Order("id desc")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to list products", err, nil)
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

// DeleteCascade hard-deletes the product with its images, add-ons and cart
// lines in one transaction and returns the orphaned file paths.
func (r *productRepository) DeleteCascade(product *model.Product) ([]string, error) {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	var paths []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		paths, err = deleteProductTx(tx, product)
		return err
	})
	if err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return nil, err
	}

	logger.Debug("Product deleted from database", map[string]interface{}{
		"product_id":     product.ID,
		"orphaned_files": len(paths),
	})
	return paths, nil
}

func (r *productRepository) CreateImage(image *model.ProductImage) error {
	if err := r.db.Create(image).Error; err != nil {
		logger.Error("Failed to create product image in database", err, map[string]interface{}{
			"product_id": image.ProductID,
			"path":       image.Path,
		})
		return err
	}
	return nil
}

func (r *productRepository) DeleteImage(id uint) error {
	if err := r.db.Delete(&model.ProductImage{}, id).Error; err != nil {
		logger.Error("Failed to delete product image from database", err, map[string]interface{}{
			"image_id": id,
		})
		return err
	}
	return nil
}

func (r *productRepository) MaxImageSortOrder(productID uint) (int, error) {
	var max *int
	err := r.db.Model(&model.ProductImage{}).
		Where("product_id = ?", productID).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

func (r *productRepository) CreateAddOnCategory(addon *model.AddOnCategory) error {
	if err := r.db.Create(addon).Error; err != nil {
		logger.Error("Failed to create add-on category in database", err, map[string]interface{}{
			"product_id": addon.ProductID,
			"name":       addon.Name,
		})
		return err
	}
	return nil
}

func (r *productRepository) UpdateAddOnCategory(addon *model.AddOnCategory) error {
	if err := r.db.Save(addon).Error; err != nil {
		logger.Error("Failed to update add-on category in database", err, map[string]interface{}{
			"addon_id": addon.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) DeleteAddOnCategory(id uint) error {
	if err := r.db.Delete(&model.AddOnCategory{}, id).Error; err != nil {
		logger.Error("Failed to delete add-on category from database", err, map[string]interface{}{
			"addon_id": id,
		})
		return err
	}
	return nil
}

func (r *productRepository) CreateAddOnItem(item *model.AddOnItem) error {
	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create add-on item in database", err, map[string]interface{}{
			"addon_category_id": item.AddOnCategoryID,
			"name":              item.Name,
		})
		return err
	}
	return nil
}

func (r *productRepository) UpdateAddOnItem(item *model.AddOnItem) error {
	if err := r.db.Save(item).Error; err != nil {
		logger.Error("Failed to update add-on item in database", err, map[string]interface{}{
			"item_id": item.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) DeleteAddOnItem(id uint) error {
	if err := r.db.Delete(&model.AddOnItem{}, id).Error; err != nil {
		logger.Error("Failed to delete add-on item from database", err, map[string]interface{}{
			"item_id": id,
		})
		return err
	}
	return nil
}
