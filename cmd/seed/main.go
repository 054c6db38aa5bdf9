package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/dkushnir/lavka-backend/config"
	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/internal/app/repository"
	"github.com/dkushnir/lavka-backend/internal/db"
	"github.com/dkushnir/lavka-backend/pkg/util"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if err := seedAdmin(&cfg.Admin); err != nil {
		log.Fatal("Failed to seed admin user:", err)
	}

	if err := seedCatalog(); err != nil {
		log.Fatal("Failed to seed catalog:", err)
	}

	fmt.Println("Seeding completed successfully!")
}

func seedAdmin(cfg *config.AdminConfig) error {
	if cfg.Username == "" || cfg.Password == "" {
		fmt.Println("Admin credentials not configured, skipping admin user")
		return nil
	}

	userRepo := repository.NewUserRepository(db.GetDB())

	if _, err := userRepo.FindByUsername(cfg.Username); err == nil {
		fmt.Printf("Admin user %q already exists, skipping\n", cfg.Username)
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := util.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	admin := &model.User{
		Username:     cfg.Username,
		Phone:        util.NormalizePhone(cfg.Phone),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := userRepo.Create(admin); err != nil {
		return err
	}

	fmt.Printf("Created admin user %q (id=%d)\n", admin.Username, admin.ID)
	return nil
}

func seedCatalog() error {
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())

	existing, err := categoryRepo.FindAll()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Printf("Catalog already has %d categories, skipping samples\n", len(existing))
		return nil
	}

	samples := []struct {
		category string
		products []model.Product
	}{
		{
			category: "Bouquets",
			products: []model.Product{
				{Name: "Spring Bouquet", Description: "Tulips and daffodils", Price: 450},
				{Name: "Classic Roses", Description: "11 red roses", Price: 780, DiscountPercent: 10},
			},
		},
		{
			category: "Gift Baskets",
			products: []model.Product{
				{Name: "Sweet Basket", Description: "Chocolate and fruit", Price: 620},
			},
		},
		{
			category: "Houseplants",
			products: nil,
		},
	}

	created := 0
	for _, sample := range samples {
		category := &model.Category{Name: sample.category}
		if err := categoryRepo.Create(category); err != nil {
			return err
		}
		for i := range sample.products {
			product := sample.products[i]
			product.CategoryID = &category.ID
			if err := productRepo.Create(&product); err != nil {
				return err
			}
			created++
		}
	}

	fmt.Printf("Created %d sample categories and %d products\n", len(samples), created)
	return nil
}
