package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/internal/db"
)

type adminOrderServiceFixture struct {
	adminOrderService AdminOrderService
	user              *model.User
	product           *model.Product
	store             *model.Store
	db                *gorm.DB
}

func setupAdminOrderServiceTest(t *testing.T) *adminOrderServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	store := &model.Store{Name: "Main Branch", Address: "12 Nguyen Hue"}
	require.NoError(t, testDB.Create(store).Error)

	user := &model.User{Email: "customer@example.com", PasswordHash: "hash", Name: "Test Customer"}
	require.NoError(t, testDB.Create(user).Error)

	product := &model.Product{
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
	require.NoError(t, testDB.Create(product).Error)

	adminOrderService := NewAdminOrderService(
		repository.NewOrderRepository(testDB),
		repository.NewUserRepository(testDB),
		testDB,
		store.ID,
	)

	return &adminOrderServiceFixture{
		adminOrderService: adminOrderService,
		user:              user,
		product:           product,
		store:             store,
		db:                testDB,
	}
}

func (f *adminOrderServiceFixture) orderInput() AdminOrderInput {
	return AdminOrderInput{
		UserID:        f.user.ID,
		PaymentMethod: "cash",
		Items: []OrderItemInput{
			{ProductID: f.product.ID, SizeID: f.product.Sizes[1].ID, Quantity: 2},
		},
	}
}

func TestAdminOrderService_CreateOrder(t *testing.T) {
	f := setupAdminOrderServiceTest(t)

	order, err := f.adminOrderService.CreateOrder(f.orderInput())

	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, f.store.ID, order.StoreID)
	require.Len(t, order.Details, 1)
	// Size M costs 50000 minus the 10% product discount.
	assert.Equal(t, 45000, order.Details[0].UnitPrice)
	assert.Equal(t, 90000, order.Details[0].TotalPrice)
	require.NotNil(t, order.Payment)
	assert.Equal(t, "cash", order.Payment.Method)
	assert.Equal(t, 90000, order.Payment.Amount)
}

func TestAdminOrderService_CreateOrder_PriceOverride(t *testing.T) {
	f := setupAdminOrderServiceTest(t)

	input := f.orderInput()
	input.Items[0].PriceOverride = 30000

	order, err := f.adminOrderService.CreateOrder(input)

	assert.NoError(t, err)
	assert.Equal(t, 30000, order.Details[0].UnitPrice)
	assert.Equal(t, 60000, order.Payment.Amount)
}

func TestAdminOrderService_CreateOrder_UnknownUser(t *testing.T) {
	f := setupAdminOrderServiceTest(t)

	input := f.orderInput()
	input.UserID = 9999
	_, err := f.adminOrderService.CreateOrder(input)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminOrderService_CreateOrder_Empty(t *testing.T) {
	f := setupAdminOrderServiceTest(t)

	input := f.orderInput()
	input.Items = nil
	_, err := f.adminOrderService.CreateOrder(input)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestAdminOrderService_UpdateOrder_ReplacesLines(t *testing.T) {
	f := setupAdminOrderServiceTest(t)

	order, err := f.adminOrderService.CreateOrder(f.orderInput())
	require.NoError(t, err)

	updated, err := f.adminOrderService.UpdateOrder(order.ID, AdminOrderInput{
		PaymentMethod: "card",
		Items: []OrderItemInput{
			{ProductID: f.product.ID, SizeID: f.product.Sizes[0].ID, Quantity: 1},
		},
	})

	assert.NoError(t, err)
	require.Len(t, updated.Details, 1)
	// Size S costs 45000 minus the 10% product discount.
	assert.Equal(t, 40500, updated.Details[0].UnitPrice)
	require.NotNil(t, updated.Payment)
	assert.Equal(t, "card", updated.Payment.Method)
	assert.Equal(t, 40500, updated.Payment.Amount)
}

func TestAdminOrderService_CreateOrder_DecrementsStock(t *testing.T) {
	f := setupAdminOrderServiceTest(t)

	_, err := f.adminOrderService.CreateOrder(f.orderInput())
	require.NoError(t, err)

	var product model.Product
	require.NoError(t, f.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 8, product.Stock)
}

func TestAdminOrderService_CreateOrder_InsufficientStock(t *testing.T) {
	f := setupAdminOrderServiceTest(t)

	input := f.orderInput()
	input.Items[0].Quantity = 11
	_, err := f.adminOrderService.CreateOrder(input)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// A rejected order must not consume any stock.
	var product model.Product
	require.NoError(t, f.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 10, product.Stock)
}

func TestAdminOrderService_UpdateOrder_RebalancesStock(t *testing.T) {
	f := setupAdminOrderServiceTest(t)

	order, err := f.adminOrderService.CreateOrder(f.orderInput())
	require.NoError(t, err)

	// Replacing two units with five keeps the ledger consistent: 10 - 5.
	_, err = f.adminOrderService.UpdateOrder(order.ID, AdminOrderInput{
		Items: []OrderItemInput{
			{ProductID: f.product.ID, SizeID: f.product.Sizes[0].ID, Quantity: 5},
		},
	})
	require.NoError(t, err)

	var product model.Product
	require.NoError(t, f.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 5, product.Stock)
}

func TestAdminOrderService_UpdateOrder_TerminalState(t *testing.T) {
	f := setupAdminOrderServiceTest(t)

	order, err := f.adminOrderService.CreateOrder(f.orderInput())
	require.NoError(t, err)
	_, err = f.adminOrderService.MarkDelivered(order.ID)
	require.NoError(t, err)

	_, err = f.adminOrderService.UpdateOrder(order.ID, f.orderInput())
	assert.ErrorIs(t, err, ErrOrderTerminalState)
}

func TestAdminOrderService_MarkDelivered(t *testing.T) {
	f := setupAdminOrderServiceTest(t)

	order, err := f.adminOrderService.CreateOrder(f.orderInput())
	require.NoError(t, err)

	delivered, err := f.adminOrderService.MarkDelivered(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, delivered.Status)

	// Terminal states admit no further transitions.
	_, err = f.adminOrderService.MarkCancelled(order.ID)
	assert.ErrorIs(t, err, ErrOrderTerminalState)
	_, err = f.adminOrderService.MarkDelivered(order.ID)
	assert.ErrorIs(t, err, ErrOrderTerminalState)
}

func TestAdminOrderService_MarkCancelled(t *testing.T) {
	f := setupAdminOrderServiceTest(t)

	order, err := f.adminOrderService.CreateOrder(f.orderInput())
	require.NoError(t, err)

	cancelled, err := f.adminOrderService.MarkCancelled(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
}

func TestAdminOrderService_DeleteOrder(t *testing.T) {
	f := setupAdminOrderServiceTest(t)

	order, err := f.adminOrderService.CreateOrder(f.orderInput())
	require.NoError(t, err)

	assert.NoError(t, f.adminOrderService.DeleteOrder(order.ID))

	err = f.adminOrderService.DeleteOrder(order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestAdminOrderService_ExportXLSX(t *testing.T) {
	f := setupAdminOrderServiceTest(t)

	order, err := f.adminOrderService.CreateOrder(f.orderInput())
	require.NoError(t, err)

	data, err := f.adminOrderService.ExportXLSX()
	assert.NoError(t, err)
	require.NotEmpty(t, data)

	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Order ID", rows[0][0])
	assert.Equal(t, f.user.Name, rows[1][1])
	assert.Equal(t, string(model.OrderStatusPending), rows[1][2])
	assert.Equal(t, order.OrderDate.Format(time.DateOnly), rows[1][3])
}
