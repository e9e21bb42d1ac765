package repository

import (
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SnapshotRepository interface {
	Upsert(snapshot *model.SalesSnapshot) error
	FindRecent(limit int) ([]model.SalesSnapshot, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Upsert writes the snapshot for its date, replacing an existing row so the
// scheduler can re-run within a day.
func (r *snapshotRepository) Upsert(snapshot *model.SalesSnapshot) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_sales", "delivered_count", "pending_count", "top_products",
		}),
	}).Create(snapshot).Error
	if err != nil {
		logger.Error("Failed to upsert sales snapshot in database", err, map[string]interface{}{
			"date": snapshot.Date,
		})
		return err
	}
	return nil
}

func (r *snapshotRepository) FindRecent(limit int) ([]model.SalesSnapshot, error) {
	var snapshots []model.SalesSnapshot
	err := r.db.Order("date DESC").Limit(limit).Find(&snapshots).Error
	if err != nil {
		logger.Error("Failed to list sales snapshots in database", err)
		return nil, err
	}
	return snapshots, nil
}
