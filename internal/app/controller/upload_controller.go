package controller

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/dkushnir/lavka-backend/config"
	"github.com/dkushnir/lavka-backend/internal/app/service"
	apperrors "github.com/dkushnir/lavka-backend/internal/errors"
	"github.com/dkushnir/lavka-backend/internal/middleware"
	"github.com/dkushnir/lavka-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

type UploadController struct {
	categoryService service.CategoryService
	store           storage.Storage
	storageCfg      *config.StorageConfig
}

func NewUploadController(
	categoryService service.CategoryService,
	store storage.Storage,
	storageCfg *config.StorageConfig,
) *UploadController {
	return &UploadController{
		categoryService: categoryService,
		store:           store,
		storageCfg:      storageCfg,
	}
}

// UploadImage stores an admin image upload. With a category_name field
// the image becomes that category's picture; without one the stored
// path is returned for the caller to reference from a product form.
// POST /admin-panel/upload-image
func (ctrl *UploadController) UploadImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	file, err := c.FormFile("image")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "image file is required")
		return
	}

	path, err := saveUpload(ctrl.store, file, ctrl.storageCfg.MaxCategorySize)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	if categoryName := c.PostForm("category_name"); categoryName != "" {
		if _, err := ctrl.categoryService.SetCategoryImage(categoryName, path); err != nil {
			// The row was never updated, so the stored file is ours to discard.
			if removeErr := ctrl.store.Remove(path); removeErr != nil {
				log.Warn("Failed to remove unattached upload", map[string]interface{}{
					"path":  path,
					"error": removeErr.Error(),
				})
			}
			if errors.Is(err, service.ErrCategoryNotFound) {
				apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
				return
			}
			apperrors.InternalError(c, "Failed to update category image")
			return
		}
	}

	log.Info("Image uploaded", map[string]interface{}{
		"path": path,
		"size": file.Size,
	})
	c.JSON(http.StatusOK, gin.H{"path": path})
}

// saveUpload streams one multipart file into storage.
func saveUpload(store storage.Storage, file *multipart.FileHeader, maxSize int64) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	return store.Save(file.Filename, src, file.Size, maxSize)
}

func respondUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrFileTypeNotAllowed):
		apperrors.BadRequest(c, apperrors.ValidationFileType, "File type is not allowed")
	case errors.Is(err, storage.ErrFileTooLarge):
		apperrors.BadRequest(c, apperrors.ValidationFileTooLarge, "File is too large")
	default:
		apperrors.InternalError(c, "Failed to store file")
	}
}
