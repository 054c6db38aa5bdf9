package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/internal/app/pricing"
	"github.com/dkushnir/lavka-backend/internal/app/repository"
	"github.com/dkushnir/lavka-backend/internal/storage"
	"github.com/dkushnir/lavka-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNameRequired = errors.New("product name is required")
	ErrInvalidPrice        = errors.New("price must not be negative")
)

// AddOnItemInput describes one selectable item inside an add-on group.
// A nil ID means a new item; a set ID updates the existing one.
type AddOnItemInput struct {
	ID        *uint
	Name      string
	ImagePath string
}

// AddOnCategoryInput describes one add-on group on the product form.
type AddOnCategoryInput struct {
	ID    *uint
	Name  string
	Price float64
	Items []AddOnItemInput
}

// ProductInput carries everything the admin product form submits. On
// update the stored state is reconciled against it: images whose IDs are
// missing from KeepImageIDs are deleted, add-on groups absent from
// AddOns are deleted with their items.
type ProductInput struct {
	Name            string
	Description     string
	Price           float64
	DiscountPercent float64
	CategoryName    string
	Attributes      []string
	PreviewPath     string
	NewImagePaths   []string
	KeepImageIDs    []uint
	AddOns          []AddOnCategoryInput
}

type ProductService interface {
	GetProduct(id uint) (*model.Product, error)
	ListProducts(categoryID *uint) ([]model.Product, error)
	CreateProduct(input ProductInput) (*model.Product, error)
	UpdateProduct(id uint, input ProductInput) (*model.Product, error)
	DeleteProduct(id uint) error
	ExportProducts() (*excelize.File, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	store        storage.Storage
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	store storage.Storage,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		store:        store,
	}
}

func (s *productService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

func (s *productService) ListProducts(categoryID *uint) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(categoryID)
	if err != nil {
		logger.Error("Failed to list products", err, nil)
		return nil, err
	}
	return products, nil
}

func (s *productService) CreateProduct(input ProductInput) (*model.Product, error) {
	logger.Info("Creating product", map[string]interface{}{
		"name": input.Name,
	})

	if err := validateProductInput(&input); err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(input.CategoryName)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:            input.Name,
		Description:     input.Description,
		Price:           input.Price,
		DiscountPercent: input.DiscountPercent,
		Preview:         input.PreviewPath,
		CategoryID:      categoryID,
	}
	product.SetAttributes(input.Attributes)

	err = s.productRepo.Transaction(func(txRepo repository.ProductRepository) error {
		if err := txRepo.Create(product); err != nil {
			return err
		}

		for i, path := range input.NewImagePaths {
			image := &model.ProductImage{
				ProductID: product.ID,
				Path:      path,
				SortOrder: i,
			}
			if err := txRepo.CreateImage(image); err != nil {
				return err
			}
		}

		for _, addonInput := range input.AddOns {
			addon := &model.AddOnCategory{
				ProductID: product.ID,
				Name:      addonInput.Name,
				Price:     addonInput.Price,
			}
			if err := txRepo.CreateAddOnCategory(addon); err != nil {
				return err
			}
			for _, itemInput := range addonInput.Items {
				item := &model.AddOnItem{
					AddOnCategoryID: addon.ID,
					Name:            itemInput.Name,
					ImagePath:       itemInput.ImagePath,
				}
				if err := txRepo.CreateAddOnItem(item); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": input.Name,
		})
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return s.GetProduct(product.ID)
}

// UpdateProduct replaces the stored product with the submitted form
// state in one transaction. Files that lost their last database
// reference are removed from storage after the commit.
func (s *productService) UpdateProduct(id uint, input ProductInput) (*model.Product, error) {
	logger.Info("Updating product", map[string]interface{}{
		"product_id": id,
	})

	if err := validateProductInput(&input); err != nil {
		return nil, err
	}

	existing, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(input.CategoryName)
	if err != nil {
		return nil, err
	}

	var orphaned []string

	err = s.productRepo.Transaction(func(txRepo repository.ProductRepository) error {
		existing.Name = input.Name
		existing.Description = input.Description
		existing.Price = input.Price
		existing.DiscountPercent = input.DiscountPercent
		existing.CategoryID = categoryID
		existing.SetAttributes(input.Attributes)

		if input.PreviewPath != "" && input.PreviewPath != existing.Preview {
			if existing.Preview != "" {
				orphaned = append(orphaned, existing.Preview)
			}
			existing.Preview = input.PreviewPath
		}

		if err := txRepo.Update(existing); err != nil {
			return err
		}

		removed, err := reconcileImages(txRepo, existing, input)
		if err != nil {
			return err
		}
		orphaned = append(orphaned, removed...)

		removed, err = reconcileAddOns(txRepo, existing, input.AddOns)
		if err != nil {
			return err
		}
		orphaned = append(orphaned, removed...)
		return nil
	})
	if err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	s.removeFiles(orphaned)

	logger.Info("Product updated", map[string]interface{}{
		"product_id": id,
	})
	return s.GetProduct(id)
}

func (s *productService) DeleteProduct(id uint) error {
	logger.Info("Deleting product", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.GetProduct(id)
	if err != nil {
		return err
	}

	orphaned, err := s.productRepo.DeleteCascade(product)
	if err != nil {
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	s.removeFiles(orphaned)

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

// ExportProducts renders the full catalog into a spreadsheet for the
// back office.
func (s *productService) ExportProducts() (*excelize.File, error) {
	products, err := s.productRepo.FindAll(nil)
	if err != nil {
		logger.Error("Failed to load products for export", err, nil)
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Products"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"ID", "Name", "Category", "Price", "Discount %", "Effective Price", "Attributes", "Images"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, p := range products {
		categoryName := ""
		if p.Category != nil {
			categoryName = p.Category.Name
		}
		values := []interface{}{
			p.ID,
			p.Name,
			categoryName,
			p.Price,
			p.DiscountPercent,
			pricing.EffectivePrice(&p),
			strings.Join(p.AttributeList(), ", "),
			len(p.Images),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	logger.Info("Products exported", map[string]interface{}{
		"count": len(products),
	})
	return f, nil
}

// resolveCategory maps the form's category name to an ID, creating the
// category at the end of the order when it does not exist yet. An empty
// name leaves the product uncategorized.
func (s *productService) resolveCategory(name string) (*uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	category, err := s.categoryRepo.FindByName(name)
	if err == nil {
		return &category.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category = &model.Category{Name: name}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}

	logger.Info("Category auto-created for product", map[string]interface{}{
		"category_id": category.ID,
		"name":        name,
	})
	return &category.ID, nil
}

func validateProductInput(input *ProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return ErrProductNameRequired
	}
	if input.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// reconcileImages deletes gallery images missing from the keep list and
// appends the newly uploaded ones after the highest surviving sort
// position. Paths of deleted images are returned for cleanup.
func reconcileImages(txRepo repository.ProductRepository, product *model.Product, input ProductInput) ([]string, error) {
	keep := make(map[uint]bool, len(input.KeepImageIDs))
	for _, id := range input.KeepImageIDs {
		keep[id] = true
	}

	var orphaned []string
	for _, image := range product.Images {
		if keep[image.ID] {
			continue
		}
		if err := txRepo.DeleteImage(image.ID); err != nil {
			return nil, err
		}
		orphaned = append(orphaned, image.Path)
	}

	next, err := txRepo.MaxImageSortOrder(product.ID)
	if err != nil {
		return nil, err
	}
	next++

	for i, path := range input.NewImagePaths {
		image := &model.ProductImage{
			ProductID: product.ID,
			Path:      path,
			SortOrder: next + i,
		}
		if err := txRepo.CreateImage(image); err != nil {
			return nil, err
		}
	}
	return orphaned, nil
}

// reconcileAddOns syncs add-on groups and their items against the form.
// Groups and items whose IDs are absent from the input are deleted.
func reconcileAddOns(txRepo repository.ProductRepository, product *model.Product, inputs []AddOnCategoryInput) ([]string, error) {
	keepGroups := make(map[uint]bool)
	for _, in := range inputs {
		if in.ID != nil {
			keepGroups[*in.ID] = true
		}
	}

	existingGroups := make(map[uint]*model.AddOnCategory, len(product.AddOns))
	var orphaned []string

	for i := range product.AddOns {
		group := &product.AddOns[i]
		existingGroups[group.ID] = group
		if keepGroups[group.ID] {
			continue
		}
		// Items go first so the group row never outlives them
		for _, item := range group.Items {
			if item.ImagePath != "" {
				orphaned = append(orphaned, item.ImagePath)
			}
			if err := txRepo.DeleteAddOnItem(item.ID); err != nil {
				return nil, err
			}
		}
		if err := txRepo.DeleteAddOnCategory(group.ID); err != nil {
			return nil, err
		}
	}

	for _, in := range inputs {
		if in.ID == nil {
			group := &model.AddOnCategory{
				ProductID: product.ID,
				Name:      in.Name,
				Price:     in.Price,
			}
			if err := txRepo.CreateAddOnCategory(group); err != nil {
				return nil, err
			}
			for _, itemIn := range in.Items {
				item := &model.AddOnItem{
					AddOnCategoryID: group.ID,
					Name:            itemIn.Name,
					ImagePath:       itemIn.ImagePath,
				}
				if err := txRepo.CreateAddOnItem(item); err != nil {
					return nil, err
				}
			}
			continue
		}

		group, ok := existingGroups[*in.ID]
		if !ok || group.ProductID != product.ID {
			return nil, fmt.Errorf("add-on category %d does not belong to product %d", *in.ID, product.ID)
		}

		group.Name = in.Name
		group.Price = in.Price
		if err := txRepo.UpdateAddOnCategory(group); err != nil {
			return nil, err
		}

		removed, err := reconcileAddOnItems(txRepo, group, in.Items)
		if err != nil {
			return nil, err
		}
		orphaned = append(orphaned, removed...)
	}
	return orphaned, nil
}

func reconcileAddOnItems(txRepo repository.ProductRepository, group *model.AddOnCategory, inputs []AddOnItemInput) ([]string, error) {
	keep := make(map[uint]bool)
	for _, in := range inputs {
		if in.ID != nil {
			keep[*in.ID] = true
		}
	}

	existing := make(map[uint]*model.AddOnItem, len(group.Items))
	var orphaned []string

	for i := range group.Items {
		item := &group.Items[i]
		existing[item.ID] = item
		if keep[item.ID] {
			continue
		}
		if item.ImagePath != "" {
			orphaned = append(orphaned, item.ImagePath)
		}
		if err := txRepo.DeleteAddOnItem(item.ID); err != nil {
			return nil, err
		}
	}

	for _, in := range inputs {
		if in.ID == nil {
			item := &model.AddOnItem{
				AddOnCategoryID: group.ID,
				Name:            in.Name,
				ImagePath:       in.ImagePath,
			}
			if err := txRepo.CreateAddOnItem(item); err != nil {
				return nil, err
			}
			continue
		}

		item, ok := existing[*in.ID]
		if !ok {
			return nil, fmt.Errorf("add-on item %d does not belong to group %d", *in.ID, group.ID)
		}

		item.Name = in.Name
		if in.ImagePath != "" && in.ImagePath != item.ImagePath {
			if item.ImagePath != "" {
				orphaned = append(orphaned, item.ImagePath)
			}
			item.ImagePath = in.ImagePath
		}
		if err := txRepo.UpdateAddOnItem(item); err != nil {
			return nil, err
		}
	}
	return orphaned, nil
}

func (s *productService) removeFiles(paths []string) {
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
