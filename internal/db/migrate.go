package db

import (
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
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
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData()
}

func seedInitialData() error {
	logger.Info("Seeding initial data...")

	// Orders need a store to fall back to when none is specified.
	if err := seedDefaultStore(); err != nil {
		logger.Error("Failed to seed default store", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

// seedDefaultStore creates the default store when no stores exist yet.
func seedDefaultStore() error {
	var count int64
	if err := DB.Model(&model.Store{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Stores already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	store := model.Store{
		Name:    "Coffee Corner Central",
		Address: "1 Market Street",
		Phone:   "000-000-0000",
	}
	if err := DB.Create(&store).Error; err != nil {
		return err
	}

	logger.Info("Default store seeded successfully", map[string]interface{}{
		"store_id": store.ID,
	})
	return nil
}
