package controller

import (
	"errors"
	"net/http"

	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/internal/app/pricing"
	"github.com/dkushnir/lavka-backend/internal/app/service"
	apperrors "github.com/dkushnir/lavka-backend/internal/errors"
	"github.com/dkushnir/lavka-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type StorefrontController struct {
	storefrontService service.StorefrontService
	productService    service.ProductService
}

func NewStorefrontController(
	storefrontService service.StorefrontService,
	productService service.ProductService,
) *StorefrontController {
	return &StorefrontController{
		storefrontService: storefrontService,
		productService:    productService,
	}
}

type UpdateSettingsRequest struct {
	CategoryIDs []uint `json:"category_ids"`
	ProductIDs  []uint `json:"product_ids"`
}

// productView decorates a product with its discounted price for the
// public pages.
type productView struct {
	model.Product
	EffectivePrice float64  `json:"effective_price"`
	Attributes     []string `json:"attributes"`
}

func toView(p model.Product) productView {
	return productView{
		Product:        p,
		EffectivePrice: pricing.EffectivePrice(&p),
		Attributes:     p.AttributeList(),
	}
}

func toViews(products []model.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toView(p))
	}
	return views
}

// Home returns the landing page content
// GET /
func (ctrl *StorefrontController) Home(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	home, err := ctrl.storefrontService.HomeContent()
	if err != nil {
		log.Error("Failed to build home content", err, nil)
		apperrors.InternalError(c, "Failed to load home page")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": home.Categories,
		"products":   toViews(home.Products),
	})
}

// Shop returns the full catalog grouped by category
// GET /shop
func (ctrl *StorefrontController) Shop(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sections, err := ctrl.storefrontService.ShopCatalog()
	if err != nil {
		log.Error("Failed to build shop catalog", err, nil)
		apperrors.InternalError(c, "Failed to load shop")
		return
	}

	type sectionView struct {
		Category *model.Category `json:"category"`
		Products []productView   `json:"products"`
	}
	views := make([]sectionView, 0, len(sections))
	for _, s := range sections {
		views = append(views, sectionView{
			Category: s.Category,
			Products: toViews(s.Products),
		})
	}

	c.JSON(http.StatusOK, gin.H{"sections": views})
}

// ProductDetail returns one product with images, add-ons and the
// discounted price
// GET /product/:id
func (ctrl *StorefrontController) ProductDetail(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProduct(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		apperrors.InternalError(c, "Failed to load product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": toView(*product)})
}

// StaticPage serves the fixed info pages
// GET /about, /services, /contact
func (ctrl *StorefrontController) StaticPage(page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": page})
	}
}

// GetSettings returns the admin's home page selections
// GET /admin-panel/storefront-settings
func (ctrl *StorefrontController) GetSettings(c *gin.Context) {
	setting, err := ctrl.storefrontService.GetSettings()
	if err != nil {
		apperrors.InternalError(c, "Failed to load storefront settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category_ids": setting.CategoryIDs(),
		"product_ids":  setting.ProductIDs(),
		"updated_at":   setting.UpdatedAt,
	})
}

// UpdateSettings replaces the home page selections
// PUT /admin-panel/storefront-settings
func (ctrl *StorefrontController) UpdateSettings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid settings payload")
		return
	}

	setting, err := ctrl.storefrontService.UpdateSettings(req.CategoryIDs, req.ProductIDs)
	if err != nil {
		log.Error("Failed to update storefront settings", err, nil)
		apperrors.InternalError(c, "Failed to update storefront settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Settings updated",
		"category_ids": setting.CategoryIDs(),
		"product_ids":  setting.ProductIDs(),
	})
}
