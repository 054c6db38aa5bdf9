package router

import (
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dkushnir/lavka-backend/config"
	"github.com/dkushnir/lavka-backend/internal/app/controller"
	"github.com/dkushnir/lavka-backend/internal/middleware"
)

type Router struct {
	storefrontController *controller.StorefrontController
	authController       *controller.AuthController
	cartController       *controller.CartController
	categoryController   *controller.CategoryController
	productController    *controller.ProductController
	uploadController     *controller.UploadController
	authMiddleware       *middleware.AuthMiddleware
	config               *config.Config
}

func NewRouter(
	storefrontController *controller.StorefrontController,
	authController *controller.AuthController,
	cartController *controller.CartController,
	categoryController *controller.CategoryController,
	productController *controller.ProductController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		storefrontController: storefrontController,
		authController:       authController,
		cartController:       cartController,
		categoryController:   categoryController,
		productController:    productController,
		uploadController:     uploadController,
		authMiddleware:       authMiddleware,
		config:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()
	router.MaxMultipartMemory = r.config.Storage.MaxRequestSize

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     r.config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Lavka API is running",
		})
	})

	// Uploaded images are served straight from disk with the local driver;
	// the S3 driver serves them from the bucket URL instead.
	if r.config.Storage.Driver == "local" {
		router.Static("/"+r.config.Storage.UploadDir, filepath.Join(r.config.Storage.BaseDir, r.config.Storage.UploadDir))
	}

	router.GET("/", r.storefrontController.Home)
	router.GET("/shop", r.storefrontController.Shop)
	router.GET("/product/:id", r.storefrontController.ProductDetail)
	router.GET("/about", r.storefrontController.StaticPage("about"))
	router.GET("/services", r.storefrontController.StaticPage("services"))
	router.GET("/contact", r.storefrontController.StaticPage("contact"))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
		}

		cart := api.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("/get", r.cartController.GetCart)
			cart.POST("/add", r.cartController.AddToCart)
			cart.POST("/update", r.cartController.UpdateCartItem)
			cart.POST("/remove", r.cartController.RemoveFromCart)
		}
	}

	admin := router.Group("/admin-panel")
	admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
	{
		admin.GET("/categories", r.categoryController.ListCategories)
		admin.POST("/add-category", r.categoryController.AddCategory)
		admin.POST("/delete-category", r.categoryController.DeleteCategory)
		admin.POST("/reorder", r.categoryController.ReorderCategories)

		admin.GET("/products", r.productController.ListProducts)
		admin.POST("/add-product", r.productController.AddProduct)
		admin.POST("/update-product/:id", r.productController.UpdateProduct)
		admin.POST("/delete-product/:id", r.productController.DeleteProduct)
		admin.GET("/export-products", r.productController.ExportProducts)

		admin.POST("/upload-image", r.uploadController.UploadImage)

		admin.GET("/storefront-settings", r.storefrontController.GetSettings)
		admin.PUT("/storefront-settings", r.storefrontController.UpdateSettings)
	}

	return router
}
