package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dkushnir/lavka-backend/config"
	"github.com/dkushnir/lavka-backend/internal/app/service"
	apperrors "github.com/dkushnir/lavka-backend/internal/errors"
	"github.com/dkushnir/lavka-backend/internal/middleware"
	"github.com/dkushnir/lavka-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService service.ProductService
	store          storage.Storage
	storageCfg     *config.StorageConfig
}

func NewProductController(
	productService service.ProductService,
	store storage.Storage,
	storageCfg *config.StorageConfig,
) *ProductController {
	return &ProductController{
		productService: productService,
		store:          store,
		storageCfg:     storageCfg,
	}
}

// addOnForm mirrors the JSON blob the admin form posts alongside the
// files. Item images are uploaded separately and referenced by path.
type addOnForm struct {
	ID    *uint           `json:"id"`
	Name  string          `json:"name"`
	Price float64         `json:"price"`
	Items []addOnItemForm `json:"items"`
}

type addOnItemForm struct {
	ID        *uint  `json:"id"`
	Name      string `json:"name"`
	ImagePath string `json:"image_path"`
}

// ListProducts returns products, optionally filtered by category
// GET /admin-panel/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	var categoryID *uint
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "category_id must be a number")
			return
		}
		v := uint(id)
		categoryID = &v
	}

	products, err := ctrl.productService.ListProducts(categoryID)
	if err != nil {
		apperrors.InternalError(c, "Failed to load products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// AddProduct creates a product from the admin multipart form
// POST /admin-panel/add-product
func (ctrl *ProductController) AddProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	input, err := ctrl.parseProductForm(c)
	if err != nil {
		return
	}

	product, err := ctrl.productService.CreateProduct(*input)
	if err != nil {
		ctrl.respondProductError(c, err, "Failed to create product")
		return
	}

	log.Info("Product created via admin panel", map[string]interface{}{
		"product_id": product.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct replaces a product with the submitted form state
// POST /admin-panel/update-product/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	input, err := ctrl.parseProductForm(c)
	if err != nil {
		return
	}

	product, err := ctrl.productService.UpdateProduct(id, *input)
	if err != nil {
		ctrl.respondProductError(c, err, "Failed to update product")
		return
	}

	log.Info("Product updated via admin panel", map[string]interface{}{
		"product_id": product.ID,
	})
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct removes a product with everything attached to it
// POST /admin-panel/delete-product/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		ctrl.respondProductError(c, err, "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// ExportProducts streams the catalog as an .xlsx download
// GET /admin-panel/export-products
func (ctrl *ProductController) ExportProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	f, err := ctrl.productService.ExportProducts()
	if err != nil {
		apperrors.InternalError(c, "Failed to export products")
		return
	}

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		log.Error("Failed to write export", err, nil)
	}
}

// parseProductForm builds the service input from the multipart form.
// A nil return means the error response was already written.
func (ctrl *ProductController) parseProductForm(c *gin.Context) (*service.ProductInput, error) {
	name := c.PostForm("product-name")
	if name == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "product-name is required")
		return nil, errBadForm
	}

	price, err := parseFloatField(c, "product-price")
	if err != nil {
		return nil, err
	}
	discount, err := parseFloatField(c, "product-discount")
	if err != nil {
		return nil, err
	}

	input := &service.ProductInput{
		Name:            name,
		Description:     c.PostForm("product-description"),
		Price:           price,
		DiscountPercent: discount,
		CategoryName:    c.PostForm("product-category"),
		Attributes:      c.PostFormArray("attributes"),
	}

	for _, raw := range c.PostFormArray("existing_image_ids") {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "existing_image_ids must be numbers")
			return nil, errBadForm
		}
		input.KeepImageIDs = append(input.KeepImageIDs, uint(id))
	}

	if rawAddOns := c.PostForm("addons"); rawAddOns != "" {
		var forms []addOnForm
		if err := json.Unmarshal([]byte(rawAddOns), &forms); err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "addons must be valid JSON")
			return nil, errBadForm
		}
		for _, form := range forms {
			addon := service.AddOnCategoryInput{
				ID:    form.ID,
				Name:  form.Name,
				Price: form.Price,
			}
			for _, item := range form.Items {
				addon.Items = append(addon.Items, service.AddOnItemInput{
					ID:        item.ID,
					Name:      item.Name,
					ImagePath: item.ImagePath,
				})
			}
			input.AddOns = append(input.AddOns, addon)
		}
	}

	if file, err := c.FormFile("preview"); err == nil {
		path, err := saveUpload(ctrl.store, file, ctrl.storageCfg.MaxRequestSize)
		if err != nil {
			respondUploadError(c, err)
			return nil, errBadForm
		}
		input.PreviewPath = path
	}

	form, err := c.MultipartForm()
	if err == nil && form != nil {
		for _, file := range form.File["images"] {
			path, err := saveUpload(ctrl.store, file, ctrl.storageCfg.MaxRequestSize)
			if err != nil {
				respondUploadError(c, err)
				return nil, errBadForm
			}
			input.NewImagePaths = append(input.NewImagePaths, path)
		}
	}

	return input, nil
}

var errBadForm = errors.New("invalid product form")

func parseFloatField(c *gin.Context, field string) (float64, error) {
	raw := c.PostForm(field)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, field+" must be a number")
		return 0, errBadForm
	}
	return v, nil
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "id must be a number")
		return 0, false
	}
	return uint(id), true
}

func (ctrl *ProductController) respondProductError(c *gin.Context, err error, fallback string) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, service.ErrProductNameRequired):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Product name is required")
	case errors.Is(err, service.ErrInvalidPrice):
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Price must not be negative")
	default:
		log.Error(fallback, err, nil)
		apperrors.InternalError(c, fallback)
	}
}
