package controller

import (
	"errors"
	"net/http"

	"github.com/dkushnir/lavka-backend/config"
	"github.com/dkushnir/lavka-backend/internal/app/service"
	apperrors "github.com/dkushnir/lavka-backend/internal/errors"
	"github.com/dkushnir/lavka-backend/internal/middleware"
	"github.com/dkushnir/lavka-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	categoryService service.CategoryService
	store           storage.Storage
	storageCfg      *config.StorageConfig
}

func NewCategoryController(
	categoryService service.CategoryService,
	store storage.Storage,
	storageCfg *config.StorageConfig,
) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
		store:           store,
		storageCfg:      storageCfg,
	}
}

type DeleteCategoryRequest struct {
	Name    string `json:"name" binding:"required"`
	Cascade bool   `json:"cascade"`
}

type ReorderCategoriesRequest struct {
	Order []string `json:"order"`
}

// ListCategories returns all categories in display order
// GET /admin-panel/categories
func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	categories, err := ctrl.categoryService.ListCategories()
	if err != nil {
		apperrors.InternalError(c, "Failed to load categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// AddCategory creates a category from the admin form, accepting either
// a multipart form or a JSON body. The optional image is stored first
// so a storage failure never leaves a category pointing at nothing.
// Posting an existing name returns the existing row with 200 instead
// of an error.
// POST /admin-panel/add-category
func (ctrl *CategoryController) AddCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	name := c.PostForm("name")
	if name == "" && c.ContentType() == "application/json" {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err == nil {
			name = req.Name
		}
	}
	if name == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Category name is required")
		return
	}

	imagePath := ""
	if file, err := c.FormFile("image"); err == nil {
		path, err := saveUpload(ctrl.store, file, ctrl.storageCfg.MaxCategorySize)
		if err != nil {
			respondUploadError(c, err)
			return
		}
		imagePath = path
	}

	category, created, err := ctrl.categoryService.AddCategory(name, imagePath)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNameRequired) {
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Category name is required")
			return
		}
		log.Error("Failed to add category", err, map[string]interface{}{
			"name": name,
		})
		apperrors.InternalError(c, "Failed to add category")
		return
	}

	status := http.StatusCreated
	message := "Category created"
	if !created {
		// The image stored above has no owner now; drop it
		if imagePath != "" {
			if err := ctrl.store.Remove(imagePath); err != nil {
				log.Warn("Failed to remove unused category image", map[string]interface{}{
					"path": imagePath,
				})
			}
		}
		status = http.StatusOK
		message = "Category already exists"
	}

	c.JSON(status, gin.H{
		"message":  message,
		"category": category,
	})
}

// DeleteCategory removes a category. Without cascade=true a category
// that still has products is refused with the product count.
// POST /admin-panel/delete-category
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req DeleteCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Category name is required")
		return
	}

	outcome, err := ctrl.categoryService.DeleteCategory(req.Name, req.Cascade)
	if err != nil {
		var conflict *service.CategoryConflictError
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
		case errors.As(err, &conflict):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":          apperrors.CategoryHasProducts,
				"message":        "Category still has products",
				"products_count": conflict.ProductCount,
			})
		default:
			log.Error("Failed to delete category", err, map[string]interface{}{
				"name": req.Name,
			})
			apperrors.InternalError(c, "Failed to delete category")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Category deleted",
		"deleted_products": outcome.DeletedProducts,
	})
}

// ReorderCategories rewrites the display order to match the submitted
// name list.
// POST /admin-panel/reorder
func (ctrl *CategoryController) ReorderCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ReorderCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Order == nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "order list is required")
		return
	}

	updated, err := ctrl.categoryService.ReorderCategories(req.Order)
	if err != nil {
		log.Error("Failed to reorder categories", err, nil)
		apperrors.InternalError(c, "Failed to reorder categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Categories reordered",
		"updated": updated,
	})
}
