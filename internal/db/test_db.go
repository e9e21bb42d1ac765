package db

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB() (*gorm.DB, error) {
	// A plain ":memory:" DSN gives every pooled connection its own empty
	// database; a uniquely named shared-cache DSN keeps one database per
	// test while staying visible to all connections in the pool.
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&model.User{},
		&model.Admin{},
		&model.Store{},
		&model.Product{},
		&model.ProductSize{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderDetail{},
		&model.Payment{},
		&model.Review{},
		&model.Favorite{},
		&model.Message{},
		&model.UserAdminAssignment{},
		&model.Address{},
		&model.StockItem{},
		&model.Event{},
		&model.SalesSnapshot{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return db, nil
}

// CleanupTestDB cleans up the test database
func CleanupTestDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Failed to get DB instance: %v", err)
		return
	}
	sqlDB.Close()
}

// TruncateAllTables removes all data from tables
func TruncateAllTables(db *gorm.DB) error {
	tables := []string{
		"reviews", "favorites", "payments", "order_details", "orders",
		"cart_items", "product_sizes", "products", "messages",
		"user_admin_assignments", "addresses", "stock_items", "events",
		"stores", "admins", "users",
	}
	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return err
		}
	}
	return nil
}
