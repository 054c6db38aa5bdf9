package service

import (
	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/internal/app/repository"
	"github.com/dkushnir/lavka-backend/pkg/logger"
)

// maxFeaturedProducts caps the home page fallback when no products were
// hand-picked in the admin panel.
const maxFeaturedProducts = 8

// HomeContent is what the landing page renders: the featured category
// strip and the featured product grid.
type HomeContent struct {
	Categories []model.Category `json:"categories"`
	Products   []model.Product  `json:"products"`
}

// ShopSection groups one category with its products for the shop page.
// A nil Category holds products that belong to no category.
type ShopSection struct {
	Category *model.Category `json:"category"`
	Products []model.Product `json:"products"`
}

type StorefrontService interface {
	HomeContent() (*HomeContent, error)
	ShopCatalog() ([]ShopSection, error)
	GetSettings() (*model.StorefrontSetting, error)
	UpdateSettings(categoryIDs, productIDs []uint) (*model.StorefrontSetting, error)
}

type storefrontService struct {
	settingRepo  repository.SettingRepository
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewStorefrontService(
	settingRepo repository.SettingRepository,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
) StorefrontService {
	return &storefrontService{
		settingRepo:  settingRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

// HomeContent resolves the configured selections, falling back to the
// full category order and the newest products when nothing is selected
// or the selections no longer exist.
func (s *storefrontService) HomeContent() (*HomeContent, error) {
	setting, err := s.settingRepo.Get()
	if err != nil {
		return nil, err
	}

	categories, err := s.selectedCategories(setting.CategoryIDs())
	if err != nil {
		return nil, err
	}

	products, err := s.selectedProducts(setting.ProductIDs())
	if err != nil {
		return nil, err
	}

	return &HomeContent{Categories: categories, Products: products}, nil
}

func (s *storefrontService) selectedCategories(ids []uint) ([]model.Category, error) {
	if len(ids) > 0 {
		categories, err := s.categoryRepo.FindByIDs(ids)
		if err != nil {
			return nil, err
		}
		if len(categories) > 0 {
			return orderByIDs(categories, ids, func(c model.Category) uint { return c.ID }), nil
		}
		logger.Warn("Selected home categories no longer exist, falling back to all", map[string]interface{}{
			"selected": len(ids),
		})
	}
	return s.categoryRepo.FindAll()
}

func (s *storefrontService) selectedProducts(ids []uint) ([]model.Product, error) {
	if len(ids) > 0 {
		products, err := s.productRepo.FindByIDs(ids)
		if err != nil {
			return nil, err
		}
		if len(products) > 0 {
			return orderByIDs(products, ids, func(p model.Product) uint { return p.ID }), nil
		}
		logger.Warn("Selected home products no longer exist, falling back to newest", map[string]interface{}{
			"selected": len(ids),
		})
	}

	products, err := s.productRepo.FindAll(nil)
	if err != nil {
		return nil, err
	}
	if len(products) > maxFeaturedProducts {
		products = products[:maxFeaturedProducts]
	}
	return products, nil
}

// ShopCatalog returns every category in display order with its products,
// plus a trailing section for uncategorized products when any exist.
func (s *storefrontService) ShopCatalog() ([]ShopSection, error) {
	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.FindAll(nil)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uint][]model.Product)
	var uncategorized []model.Product
	for _, p := range products {
		if p.CategoryID == nil {
			uncategorized = append(uncategorized, p)
			continue
		}
		byCategory[*p.CategoryID] = append(byCategory[*p.CategoryID], p)
	}

	sections := make([]ShopSection, 0, len(categories)+1)
	for i := range categories {
		category := categories[i]
		sections = append(sections, ShopSection{
			Category: &category,
			Products: byCategory[category.ID],
		})
	}
	if len(uncategorized) > 0 {
		sections = append(sections, ShopSection{Products: uncategorized})
	}
	return sections, nil
}

func (s *storefrontService) GetSettings() (*model.StorefrontSetting, error) {
	return s.settingRepo.Get()
}

// UpdateSettings persists the admin's home page selections. IDs that do
// not resolve to an existing row are dropped silently so stale form
// state cannot poison the stored selection.
func (s *storefrontService) UpdateSettings(categoryIDs, productIDs []uint) (*model.StorefrontSetting, error) {
	logger.Info("Updating storefront settings", map[string]interface{}{
		"categories": len(categoryIDs),
		"products":   len(productIDs),
	})

	setting, err := s.settingRepo.Get()
	if err != nil {
		return nil, err
	}

	validCategories, err := s.categoryRepo.FindByIDs(categoryIDs)
	if err != nil {
		return nil, err
	}
	validProducts, err := s.productRepo.FindByIDs(productIDs)
	if err != nil {
		return nil, err
	}

	setting.SetCategoryIDs(keepKnown(categoryIDs, validCategories, func(c model.Category) uint { return c.ID }))
	setting.SetProductIDs(keepKnown(productIDs, validProducts, func(p model.Product) uint { return p.ID }))

	if err := s.settingRepo.Update(setting); err != nil {
		return nil, err
	}

	logger.Info("Storefront settings updated", nil)
	return setting, nil
}

// orderByIDs reorders rows to match the requested ID order, dropping IDs
// that resolved to nothing.
func orderByIDs[T any](rows []T, ids []uint, idOf func(T) uint) []T {
	byID := make(map[uint]T, len(rows))
	for _, row := range rows {
		byID[idOf(row)] = row
	}
	ordered := make([]T, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered
}

func keepKnown[T any](ids []uint, rows []T, idOf func(T) uint) []uint {
	known := make(map[uint]bool, len(rows))
	for _, row := range rows {
		known[idOf(row)] = true
	}
	kept := make([]uint, 0, len(ids))
	for _, id := range ids {
		if known[id] {
			kept = append(kept, id)
		}
	}
	return kept
}
