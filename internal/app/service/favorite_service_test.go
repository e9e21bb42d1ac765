package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/internal/db"
)

func setupFavoriteServiceTest(t *testing.T) (FavoriteService, *model.Admin, *model.Product, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	favoriteService := NewFavoriteService(
		repository.NewFavoriteRepository(testDB),
		repository.NewProductRepository(testDB),
	)

	admin := &model.Admin{Email: "admin@example.com", PasswordHash: "hash", Name: "Test Admin"}
	require.NoError(t, testDB.Create(admin).Error)

	product := &model.Product{
		Name:     "Caramel Latte",
		Category: model.CategoryCoffees,
		Price:    50000,
		Stock:    10,
		Sizes: []model.ProductSize{
			{Size: "S", Price: 45000},
			{Size: "M", Price: 50000},
		},
	}
	require.NoError(t, testDB.Create(product).Error)

	return favoriteService, admin, product, testDB
}

func TestFavoriteService_AddFavorite(t *testing.T) {
	favoriteService, admin, product, _ := setupFavoriteServiceTest(t)

	favorite, err := favoriteService.AddFavorite(admin.ID, product.ID)

	assert.NoError(t, err)
	assert.NotZero(t, favorite.ID)
	assert.Equal(t, admin.ID, favorite.AdminID)
}

func TestFavoriteService_AddFavorite_Duplicate(t *testing.T) {
	favoriteService, admin, product, _ := setupFavoriteServiceTest(t)

	_, err := favoriteService.AddFavorite(admin.ID, product.ID)
	require.NoError(t, err)

	_, err = favoriteService.AddFavorite(admin.ID, product.ID)
	assert.ErrorIs(t, err, ErrFavoriteExists)
}

func TestFavoriteService_AddFavorite_UnknownProduct(t *testing.T) {
	favoriteService, admin, _, _ := setupFavoriteServiceTest(t)

	_, err := favoriteService.AddFavorite(admin.ID, 9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestFavoriteService_ListFavorites(t *testing.T) {
	favoriteService, admin, product, _ := setupFavoriteServiceTest(t)

	_, err := favoriteService.AddFavorite(admin.ID, product.ID)
	require.NoError(t, err)

	entries, err := favoriteService.ListFavorites(admin.ID)

	assert.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, product.ID, entries[0].ProductID)
	// The listing surfaces the size-M price.
	assert.Equal(t, 50000, entries[0].PriceM)
	assert.Zero(t, entries[0].AverageRating)
}

func TestFavoriteService_ListFavorites_PerAdmin(t *testing.T) {
	favoriteService, admin, product, testDB := setupFavoriteServiceTest(t)

	other := &model.Admin{Email: "admin2@example.com", PasswordHash: "hash", Name: "Second Admin"}
	require.NoError(t, testDB.Create(other).Error)

	_, err := favoriteService.AddFavorite(admin.ID, product.ID)
	require.NoError(t, err)

	entries, err := favoriteService.ListFavorites(other.ID)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFavoriteService_RemoveFavorite(t *testing.T) {
	favoriteService, admin, product, _ := setupFavoriteServiceTest(t)

	_, err := favoriteService.AddFavorite(admin.ID, product.ID)
	require.NoError(t, err)

	assert.NoError(t, favoriteService.RemoveFavorite(admin.ID, product.ID))

	err = favoriteService.RemoveFavorite(admin.ID, product.ID)
	assert.ErrorIs(t, err, ErrFavoriteNotFound)
}
