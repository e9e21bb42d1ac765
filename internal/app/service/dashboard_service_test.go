package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/internal/db"
)

type dashboardServiceFixture struct {
	dashboardService DashboardService
	user             *model.User
	store            *model.Store
	db               *gorm.DB
}

func setupDashboardServiceTest(t *testing.T) *dashboardServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	dashboardService := NewDashboardService(
		repository.NewOrderRepository(testDB),
		repository.NewProductRepository(testDB),
		repository.NewSnapshotRepository(testDB),
		testDB,
	)

	store := &model.Store{Name: "Main Branch"}
	require.NoError(t, testDB.Create(store).Error)
	user := &model.User{Email: "customer@example.com", PasswordHash: "hash", Name: "Test Customer"}
	require.NoError(t, testDB.Create(user).Error)

	return &dashboardServiceFixture{
		dashboardService: dashboardService,
		user:             user,
		store:            store,
		db:               testDB,
	}
}

// seedOrder inserts an order with a payment directly, bypassing checkout.
func (f *dashboardServiceFixture) seedOrder(t *testing.T, status model.OrderStatus, amount int, date time.Time) *model.Order {
	t.Helper()
	order := &model.Order{
		UserID:    f.user.ID,
		StoreID:   f.store.ID,
		Status:    status,
		OrderDate: date,
	}
	require.NoError(t, f.db.Create(order).Error)
	require.NoError(t, f.db.Create(&model.Payment{
		OrderID: order.ID,
		Method:  "cash",
		Amount:  amount,
	}).Error)
	return order
}

func TestDashboardService_GetSummary(t *testing.T) {
	f := setupDashboardServiceTest(t)

	now := time.Now()
	f.seedOrder(t, model.OrderStatusDelivered, 90000, now)
	f.seedOrder(t, model.OrderStatusDelivered, 50000, now)
	f.seedOrder(t, model.OrderStatusPending, 45000, now)

	summary, err := f.dashboardService.GetSummary(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalUsers)
	assert.Equal(t, int64(2), summary.DeliveredOrders)
	assert.Equal(t, int64(1), summary.PendingOrders)
	// Only delivered orders count toward sales.
	assert.Equal(t, int64(140000), summary.TotalSales)
	require.Len(t, summary.RecentDeals, 3)
	assert.Equal(t, f.user.Name, summary.RecentDeals[0].CustomerName)
}

func TestDashboardService_GetSummary_Empty(t *testing.T) {
	f := setupDashboardServiceTest(t)

	summary, err := f.dashboardService.GetSummary(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalUsers)
	assert.Zero(t, summary.DeliveredOrders)
	assert.Zero(t, summary.TotalSales)
	assert.Empty(t, summary.RecentDeals)
}

func TestDashboardService_SnapshotDay(t *testing.T) {
	f := setupDashboardServiceTest(t)

	day := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	f.seedOrder(t, model.OrderStatusDelivered, 90000, day)
	f.seedOrder(t, model.OrderStatusPending, 45000, day)
	// A different day stays out of the aggregate.
	f.seedOrder(t, model.OrderStatusDelivered, 70000, day.AddDate(0, 0, -1))

	require.NoError(t, f.dashboardService.SnapshotDay(day))

	var snapshot model.SalesSnapshot
	require.NoError(t, f.db.Where("date = ?", "2026-08-30").First(&snapshot).Error)
	assert.Equal(t, 90000, snapshot.TotalSales)
	assert.Equal(t, 1, snapshot.DeliveredCount)
	assert.Equal(t, 1, snapshot.PendingCount)
}

func TestDashboardService_SnapshotDay_Upsert(t *testing.T) {
	f := setupDashboardServiceTest(t)

	day := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	f.seedOrder(t, model.OrderStatusDelivered, 90000, day)

	require.NoError(t, f.dashboardService.SnapshotDay(day))
	f.seedOrder(t, model.OrderStatusDelivered, 50000, day)
	// Re-running the same day overwrites instead of duplicating.
	require.NoError(t, f.dashboardService.SnapshotDay(day))

	var count int64
	require.NoError(t, f.db.Model(&model.SalesSnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var snapshot model.SalesSnapshot
	require.NoError(t, f.db.Where("date = ?", "2026-08-30").First(&snapshot).Error)
	assert.Equal(t, 140000, snapshot.TotalSales)
}
