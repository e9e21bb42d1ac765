package scheduler

import (
	"time"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/service"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// SnapshotScheduler rolls the previous day's sales into a snapshot row
// every night, so the dashboard reads aggregates instead of scanning
// order history.
type SnapshotScheduler struct {
	cron             *cron.Cron
	dashboardService service.DashboardService
}

func NewSnapshotScheduler(dashboardService service.DashboardService) *SnapshotScheduler {
	return &SnapshotScheduler{
		cron:             cron.New(),
		dashboardService: dashboardService,
	}
}

// Start registers the nightly job. Runs at 00:10 so late order status
// changes from the previous day are included.
func (s *SnapshotScheduler) Start() error {
	_, err := s.cron.AddFunc("10 0 * * *", func() {
		day := time.Now().AddDate(0, 0, -1)
		logger.Info("Starting scheduled sales snapshot", map[string]interface{}{
			"day": day.Format("2006-01-02"),
		})

		if err := s.dashboardService.SnapshotDay(day); err != nil {
			logger.Error("Failed to snapshot sales from scheduler", err)
			return
		}

		logger.Info("Successfully snapshotted daily sales", nil)
	})

	if err != nil {
		logger.Error("Failed to add cron job for sales snapshot", err)
		return err
	}

	s.cron.Start()
	logger.Info("Sales snapshot scheduler started (daily at 00:10)", nil)

	return nil
}

// Stop halts the scheduler.
func (s *SnapshotScheduler) Stop() {
	logger.Info("Stopping sales snapshot scheduler...", nil)
	s.cron.Stop()
	logger.Info("Sales snapshot scheduler stopped", nil)
}
