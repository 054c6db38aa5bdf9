package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/internal/app/repository"
	"github.com/dkushnir/lavka-backend/internal/storage"
	"github.com/dkushnir/lavka-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryNameRequired = errors.New("category name is required")
)

// CategoryConflictError is returned when a non-cascading delete hits a
// category that still has products. ProductCount lets the client render
// the confirmation prompt.
type CategoryConflictError struct {
	Name         string
	ProductCount int64
}

func (e *CategoryConflictError) Error() string {
	return fmt.Sprintf("category %q still has %d products", e.Name, e.ProductCount)
}

// DeleteOutcome reports what a cascading delete removed.
type DeleteOutcome struct {
	DeletedProducts int
}

type CategoryService interface {
	ListCategories() ([]model.Category, error)
	AddCategory(name, imagePath string) (*model.Category, bool, error)
	SetCategoryImage(name, imagePath string) (*model.Category, error)
	DeleteCategory(name string, cascade bool) (*DeleteOutcome, error)
	ReorderCategories(names []string) (int, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	store        storage.Storage
}

func NewCategoryService(categoryRepo repository.CategoryRepository, store storage.Storage) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		store:        store,
	}
}

func (s *categoryService) ListCategories() ([]model.Category, error) {
	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list categories", err, nil)
		return nil, err
	}
	return categories, nil
}

// AddCategory creates a category at the end of the display order. Adding
// an existing name is not an error: the existing category is returned
// with created=false so repeated form submissions stay harmless.
func (s *categoryService) AddCategory(name, imagePath string) (*model.Category, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, ErrCategoryNameRequired
	}

	logger.Info("Adding category", map[string]interface{}{
		"name": name,
	})

	existing, err := s.categoryRepo.FindByName(name)
	if err == nil {
		logger.Info("Category already exists", map[string]interface{}{
			"category_id": existing.ID,
			"name":        name,
		})
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check category name", err, map[string]interface{}{
			"name": name,
		})
		return nil, false, err
	}

	category := &model.Category{
		Name:      name,
		ImagePath: imagePath,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		logger.Error("Failed to create category", err, map[string]interface{}{
			"name": name,
		})
		return nil, false, err
	}

	logger.Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"name":        name,
		"tier":        category.Tier,
	})
	return category, true, nil
}

// SetCategoryImage points a category at a freshly uploaded image and
// removes the previous file once the row is updated.
func (s *categoryService) SetCategoryImage(name, imagePath string) (*model.Category, error) {
	category, err := s.categoryRepo.FindByName(strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		logger.Error("Failed to fetch category", err, map[string]interface{}{
			"name": name,
		})
		return nil, err
	}

	oldPath := category.ImagePath
	category.ImagePath = imagePath
	if err := s.categoryRepo.Update(category); err != nil {
		logger.Error("Failed to update category image", err, map[string]interface{}{
			"category_id": category.ID,
		})
		return nil, err
	}

	if oldPath != "" && oldPath != imagePath {
		s.removeFiles([]string{oldPath})
	}

	logger.Info("Category image updated", map[string]interface{}{
		"category_id": category.ID,
		"path":        imagePath,
	})
	return category, nil
}

// DeleteCategory removes a category by name. Without cascade the call
// fails with CategoryConflictError when products remain, and nothing is
// mutated. With cascade the category, its products and everything
// hanging off them go in one transaction; files are removed from
// storage only after the commit.
func (s *categoryService) DeleteCategory(name string, cascade bool) (*DeleteOutcome, error) {
	logger.Info("Deleting category", map[string]interface{}{
		"name":    name,
		"cascade": cascade,
	})

	category, err := s.categoryRepo.FindByName(strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		logger.Error("Failed to fetch category", err, map[string]interface{}{
			"name": name,
		})
		return nil, err
	}

	if !cascade {
		count, err := s.categoryRepo.CountProducts(category.ID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			logger.Warn("Category delete blocked by existing products", map[string]interface{}{
				"category_id":    category.ID,
				"products_count": count,
			})
			return nil, &CategoryConflictError{Name: category.Name, ProductCount: count}
		}
	}

	result, err := s.categoryRepo.DeleteCascade(category, cascade)
	if err != nil {
		logger.Error("Failed to delete category", err, map[string]interface{}{
			"category_id": category.ID,
		})
		return nil, err
	}

	orphaned := result.OrphanedFiles
	if category.ImagePath != "" {
		orphaned = append(orphaned, category.ImagePath)
	}
	s.removeFiles(orphaned)

	logger.Info("Category deleted", map[string]interface{}{
		"category_id":      category.ID,
		"deleted_products": result.DeletedProducts,
	})
	return &DeleteOutcome{DeletedProducts: result.DeletedProducts}, nil
}

// ReorderCategories rewrites tiers to match the given name order. Names
// that do not resolve to a category are skipped; the count of updated
// rows is returned.
func (s *categoryService) ReorderCategories(names []string) (int, error) {
	logger.Info("Reordering categories", map[string]interface{}{
		"count": len(names),
	})

	updated, err := s.categoryRepo.ReorderByNames(names)
	if err != nil {
		logger.Error("Failed to reorder categories", err, nil)
		return 0, err
	}

	logger.Info("Categories reordered", map[string]interface{}{
		"updated": updated,
	})
	return updated, nil
}

// removeFiles deletes orphaned uploads best effort. Failures are logged
// and never fail the request: the database state is already committed.
func (s *categoryService) removeFiles(paths []string) {
	if s.store == nil {
		return
	}
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := s.store.Remove(path); err != nil {
			logger.Warn("Failed to remove orphaned file", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
	}
}
