package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/db"
)

func setupProductTest(t *testing.T) (*gorm.DB, ProductRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	return testDB, NewProductRepository(testDB)
}

func latteFixture() *model.Product {
	return &model.Product{
		Name:     "Caramel Latte",
		Category: model.CategoryCoffees,
		Price:    50000,
		Discount: 10,
		Stock:    10,
		Sizes: []model.ProductSize{
			{Size: "S", Price: 45000},
			{Size: "M", Price: 50000},
		},
	}
}

func TestProductRepository_Create(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product := latteFixture()
	err := repo.Create(product)

	assert.NoError(t, err)
	assert.NotZero(t, product.ID)
	// Sizes are created with the product.
	assert.NotZero(t, product.Sizes[0].ID)
}

func TestProductRepository_FindByID(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product := latteFixture()
	require.NoError(t, repo.Create(product))

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Caramel Latte", found.Name)
	assert.Len(t, found.Sizes, 2)

	_, err = repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_FindAll_CategoryFilter(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Create(latteFixture()))
	require.NoError(t, repo.Create(&model.Product{
		Name:     "Mango Smoothie",
		Category: model.CategoryDrinks,
		Price:    40000,
		Stock:    5,
	}))

	products, err := repo.FindAll("")
	assert.NoError(t, err)
	assert.Len(t, products, 2)

	products, err = repo.FindAll(string(model.CategoryCoffees))
	assert.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Caramel Latte", products[0].Name)
}

func TestProductRepository_ReconcileSizes(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product := latteFixture()
	require.NoError(t, repo.Create(product))

	// Reprice S, drop M, add L.
	keep := []model.ProductSize{
		{ID: product.Sizes[0].ID, Size: "S", Price: 47000},
		{Size: "L", Price: 58000},
	}
	err := repo.ReconcileSizes(product.ID, keep, func(sizeID uint) (bool, error) {
		return true, nil
	})
	require.NoError(t, err)

	sizes, err := repo.FindSizesByProductID(product.ID)
	require.NoError(t, err)
	require.Len(t, sizes, 2)

	byName := map[string]model.ProductSize{}
	for _, size := range sizes {
		byName[size.Size] = size
	}
	assert.Equal(t, 47000, byName["S"].Price)
	assert.Equal(t, product.Sizes[0].ID, byName["S"].ID)
	assert.Equal(t, 58000, byName["L"].Price)
}

func TestProductRepository_ReconcileSizes_KeepsReferencedSizes(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product := latteFixture()
	require.NoError(t, repo.Create(product))
	pinnedID := product.Sizes[1].ID

	err := repo.ReconcileSizes(product.ID, []model.ProductSize{
		{ID: product.Sizes[0].ID, Size: "S", Price: 45000},
	}, func(sizeID uint) (bool, error) {
		// Pretend M is referenced by an order line.
		return sizeID != pinnedID, nil
	})
	require.NoError(t, err)

	sizes, err := repo.FindSizesByProductID(product.ID)
	require.NoError(t, err)
	assert.Len(t, sizes, 2)
}

func TestProductRepository_BestSellers(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	latte := latteFixture()
	require.NoError(t, repo.Create(latte))
	smoothie := &model.Product{
		Name:     "Mango Smoothie",
		Category: model.CategoryDrinks,
		Price:    40000,
		Stock:    5,
		Sizes:    []model.ProductSize{{Size: "M", Price: 40000}},
	}
	require.NoError(t, repo.Create(smoothie))

	store := &model.Store{Name: "Main Branch"}
	require.NoError(t, testDB.Create(store).Error)
	user := &model.User{Email: "buyer@example.com", PasswordHash: "hash", Name: "Buyer"}
	require.NoError(t, testDB.Create(user).Error)

	// Delivered: 3 lattes, 1 smoothie. Pending orders do not count.
	delivered := &model.Order{
		UserID: user.ID, StoreID: store.ID,
		Status: model.OrderStatusDelivered, OrderDate: time.Now(),
		Details: []model.OrderDetail{
			{ProductID: latte.ID, SizeID: latte.Sizes[0].ID, Quantity: 3, UnitPrice: 45000, TotalPrice: 135000},
			{ProductID: smoothie.ID, SizeID: smoothie.Sizes[0].ID, Quantity: 1, UnitPrice: 40000, TotalPrice: 40000},
		},
	}
	require.NoError(t, testDB.Create(delivered).Error)

	pending := &model.Order{
		UserID: user.ID, StoreID: store.ID,
		Status: model.OrderStatusPending, OrderDate: time.Now(),
		Details: []model.OrderDetail{
			{ProductID: smoothie.ID, SizeID: smoothie.Sizes[0].ID, Quantity: 10, UnitPrice: 40000, TotalPrice: 400000},
		},
	}
	require.NoError(t, testDB.Create(pending).Error)

	sellers, err := repo.BestSellers(5)
	require.NoError(t, err)
	require.Len(t, sellers, 2)
	assert.Equal(t, latte.ID, sellers[0].ProductID)
	assert.Equal(t, 3, sellers[0].Quantity)
	assert.Equal(t, 1, sellers[1].Quantity)
}

func TestProductRepository_DeleteWithSizes(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product := latteFixture()
	require.NoError(t, repo.Create(product))

	require.NoError(t, repo.DeleteWithSizes(product.ID))

	_, err := repo.FindByID(product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	sizes, err := repo.FindSizesByProductID(product.ID)
	assert.NoError(t, err)
	assert.Empty(t, sizes)
}
