package controller

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dkushnir/lavka-backend/config"
	"github.com/dkushnir/lavka-backend/internal/app/model"
	"github.com/dkushnir/lavka-backend/internal/app/repository"
	"github.com/dkushnir/lavka-backend/internal/app/service"
	"github.com/dkushnir/lavka-backend/internal/db"
	"github.com/dkushnir/lavka-backend/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUploadControllerTest(t *testing.T) (*gin.Engine, *gorm.DB, *storage.LocalStorage) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	storageCfg := &config.StorageConfig{
		BaseDir:         t.TempDir(),
		UploadDir:       "uploads",
		MaxCategorySize: 5 << 20,
	}
	store, err := storage.NewLocalStorage(storageCfg)
	require.NoError(t, err)

	categoryService := service.NewCategoryService(repository.NewCategoryRepository(testDB), store)
	controller := NewUploadController(categoryService, store, storageCfg)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/admin-panel/upload-image", controller.UploadImage)

	return router, testDB, store
}

func TestUploadController_Standalone(t *testing.T) {
	router, _, store := setupUploadControllerTest(t)

	w := postMultipart(t, router, "/admin-panel/upload-image", nil,
		map[string][]byte{"photo.png": []byte("png-bytes")})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Path string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Path)

	files, err := store.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, resp.Path, files[0].Path)
}

func TestUploadController_AttachesToCategory(t *testing.T) {
	router, testDB, store := setupUploadControllerTest(t)

	repo := repository.NewCategoryRepository(testDB)
	require.NoError(t, repo.Create(&model.Category{Name: "Flowers", ImagePath: "uploads/old.png"}))

	w := postMultipart(t, router, "/admin-panel/upload-image",
		map[string]string{"category_name": "Flowers"},
		map[string][]byte{"new.png": []byte("png-bytes")})
	require.Equal(t, http.StatusOK, w.Code)

	category, err := repo.FindByName("Flowers")
	require.NoError(t, err)
	assert.NotEqual(t, "uploads/old.png", category.ImagePath)

	files, err := store.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, category.ImagePath, files[0].Path)
}

func TestUploadController_CategoryNotFound(t *testing.T) {
	router, _, store := setupUploadControllerTest(t)

	w := postMultipart(t, router, "/admin-panel/upload-image",
		map[string]string{"category_name": "Missing"},
		map[string][]byte{"new.png": []byte("png-bytes")})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "CATEGORY_NOT_FOUND")

	// The stored file must not survive a failed attach
	files, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestUploadController_RejectsBadInput(t *testing.T) {
	router, _, _ := setupUploadControllerTest(t)

	w := postMultipart(t, router, "/admin-panel/upload-image", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postMultipart(t, router, "/admin-panel/upload-image", nil,
		map[string][]byte{"script.exe": []byte("mz")})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_FILE_TYPE")
}
