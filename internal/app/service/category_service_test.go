package service

import (
	"strings"
	"testing"

	"github.com/dkushnir/lavka-backend/config"
	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/internal/app/repository"
	"github.com/dkushnir/lavka-backend/internal/db"
	"github.com/dkushnir/lavka-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCategoryServiceTest(t *testing.T) (CategoryService, *storage.LocalStorage, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	store, err := storage.NewLocalStorage(&config.StorageConfig{
		BaseDir:   t.TempDir(),
		UploadDir: "uploads",
	})
	require.NoError(t, err)

	svc := NewCategoryService(repository.NewCategoryRepository(testDB), store)
	return svc, store, testDB
}

func TestCategoryService_AddCategory(t *testing.T) {
	svc, _, _ := setupCategoryServiceTest(t)

	category, created, err := svc.AddCategory("Flowers", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 0, category.Tier)

	second, created, err := svc.AddCategory("Gifts", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, second.Tier)
}

func TestCategoryService_AddCategory_ExistingNameIsIdempotent(t *testing.T) {
	svc, _, _ := setupCategoryServiceTest(t)

	first, created, err := svc.AddCategory("Flowers", "")
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := svc.AddCategory("Flowers", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	categories, err := svc.ListCategories()
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestCategoryService_AddCategory_EmptyName(t *testing.T) {
	svc, _, _ := setupCategoryServiceTest(t)

	_, _, err := svc.AddCategory("   ", "")
	assert.ErrorIs(t, err, ErrCategoryNameRequired)
}

func TestCategoryService_SetCategoryImage(t *testing.T) {
	svc, store, _ := setupCategoryServiceTest(t)

	oldPath, err := store.Save("old.png", strings.NewReader("img"), 3, 0)
	require.NoError(t, err)
	_, _, err = svc.AddCategory("Flowers", oldPath)
	require.NoError(t, err)

	newPath, err := store.Save("new.png", strings.NewReader("img"), 3, 0)
	require.NoError(t, err)

	category, err := svc.SetCategoryImage("Flowers", newPath)
	require.NoError(t, err)
	assert.Equal(t, newPath, category.ImagePath)

	// Only the new file survives the swap
	files, err := store.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, newPath, files[0].Path)
}

func TestCategoryService_SetCategoryImage_NotFound(t *testing.T) {
	svc, _, _ := setupCategoryServiceTest(t)

	_, err := svc.SetCategoryImage("Missing", "uploads/x.png")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryService_DeleteCategory_NotFound(t *testing.T) {
	svc, _, _ := setupCategoryServiceTest(t)

	_, err := svc.DeleteCategory("Ghost", false)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryService_DeleteCategory_ConflictWithoutCascade(t *testing.T) {
	svc, _, testDB := setupCategoryServiceTest(t)

	category, _, err := svc.AddCategory("Flowers", "")
	require.NoError(t, err)
	require.NoError(t, testDB.Create(&model.Product{Name: "Rose", Price: 25, CategoryID: &category.ID}).Error)
	require.NoError(t, testDB.Create(&model.Product{Name: "Tulip", Price: 15, CategoryID: &category.ID}).Error)

	_, err = svc.DeleteCategory("Flowers", false)

	var conflict *CategoryConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(2), conflict.ProductCount)

	// Nothing may change on a refused delete
	categories, err := svc.ListCategories()
	require.NoError(t, err)
	assert.Len(t, categories, 1)
	var productCount int64
	testDB.Model(&model.Product{}).Count(&productCount)
	assert.Equal(t, int64(2), productCount)
}

func TestCategoryService_DeleteCategory_Cascade(t *testing.T) {
	svc, store, testDB := setupCategoryServiceTest(t)

	preview, err := store.Save("rose.png", strings.NewReader("img"), 3, 0)
	require.NoError(t, err)

	category, _, err := svc.AddCategory("Flowers", "")
	require.NoError(t, err)
	require.NoError(t, testDB.Create(&model.Product{Name: "Rose", Price: 25, CategoryID: &category.ID, Preview: preview}).Error)

	outcome, err := svc.DeleteCategory("Flowers", true)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.DeletedProducts)

	files, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCategoryService_DeleteCategory_RemovesOwnImage(t *testing.T) {
	svc, store, _ := setupCategoryServiceTest(t)

	image, err := store.Save("cat.png", strings.NewReader("img"), 3, 0)
	require.NoError(t, err)

	_, created, err := svc.AddCategory("Flowers", image)
	require.NoError(t, err)
	require.True(t, created)

	_, err = svc.DeleteCategory("Flowers", false)
	require.NoError(t, err)

	files, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCategoryService_DeleteCategory_MissingFileDoesNotFail(t *testing.T) {
	svc, _, _ := setupCategoryServiceTest(t)

	_, created, err := svc.AddCategory("Flowers", "uploads/already-gone.png")
	require.NoError(t, err)
	require.True(t, created)

	_, err = svc.DeleteCategory("Flowers", false)
	assert.NoError(t, err)
}

func TestCategoryService_ReorderCategories(t *testing.T) {
	svc, _, _ := setupCategoryServiceTest(t)

	for _, name := range []string{"A", "B", "C"} {
		_, _, err := svc.AddCategory(name, "")
		require.NoError(t, err)
	}

	updated, err := svc.ReorderCategories([]string{"C", "A", "B"})
	require.NoError(t, err)
	assert.Equal(t, 3, updated)

	categories, err := svc.ListCategories()
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, []string{"C", "A", "B"}, []string{categories[0].Name, categories[1].Name, categories[2].Name})
}

func TestCategoryService_DeleteKeepsRemainingOrderDense(t *testing.T) {
	svc, _, _ := setupCategoryServiceTest(t)

	for _, name := range []string{"A", "B", "C"} {
		_, _, err := svc.AddCategory(name, "")
		require.NoError(t, err)
	}

	_, err := svc.DeleteCategory("B", false)
	require.NoError(t, err)

	categories, err := svc.ListCategories()
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, 0, categories[0].Tier)
	assert.Equal(t, 1, categories[1].Tier)
}
