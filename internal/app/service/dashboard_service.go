package service

import (
	"context"
	"time"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"github.com/ptnguyen/coffeecorner-backend/pkg/redis"
	"gorm.io/gorm"
)

const (
	dashboardCacheKey = "dashboard:summary"
	dashboardCacheTTL = 60 * time.Second
)

// DashboardDeal is one row of the recent-deals table.
type DashboardDeal struct {
	OrderID      uint   `json:"order_id"`
	CustomerName string `json:"customer_name"`
	Status       string `json:"status"`
	StatusColor  string `json:"status_color"`
	Amount       int    `json:"amount"`
	OrderDate    string `json:"order_date"`
}

// DashboardSummary is the admin landing-page payload.
type DashboardSummary struct {
	TotalUsers      int64                     `json:"total_users"`
	DeliveredOrders int64                     `json:"delivered_orders"`
	PendingOrders   int64                     `json:"pending_orders"`
	TotalSales      int64                     `json:"total_sales"`
	MonthlySales    []repository.MonthlySales `json:"monthly_sales"`
	RecentDeals     []DashboardDeal           `json:"recent_deals"`
}

type DashboardService interface {
	GetSummary(ctx context.Context) (*DashboardSummary, error)
	// SnapshotDay aggregates one day's sales into a snapshot row; the
	// scheduler runs it nightly.
	SnapshotDay(day time.Time) error
}

type dashboardService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	snapshotRepo repository.SnapshotRepository
	db           *gorm.DB
}

func NewDashboardService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	snapshotRepo repository.SnapshotRepository,
	db *gorm.DB,
) DashboardService {
	return &dashboardService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		snapshotRepo: snapshotRepo,
		db:           db,
	}
}

func (s *dashboardService) GetSummary(ctx context.Context) (*DashboardSummary, error) {
	// Serve from cache when Redis is up; the dashboard tolerates a
	// minute of staleness.
	if redis.GetClient() != nil {
		var cached DashboardSummary
		if err := redis.GetJSON(ctx, dashboardCacheKey, &cached); err == nil {
			logger.Debug("Dashboard summary served from cache")
			return &cached, nil
		}
	}

	summary, err := s.buildSummary()
	if err != nil {
		return nil, err
	}

	if redis.GetClient() != nil {
		if err := redis.SetJSON(ctx, dashboardCacheKey, summary, dashboardCacheTTL); err != nil {
			logger.Warn("Failed to cache dashboard summary", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return summary, nil
}

func (s *dashboardService) buildSummary() (*DashboardSummary, error) {
	var totalUsers int64
	if err := s.db.Model(&model.User{}).Count(&totalUsers).Error; err != nil {
		logger.Error("Failed to count users for dashboard", err)
		return nil, err
	}

	statusCounts, err := s.orderRepo.StatusCounts()
	if err != nil {
		return nil, err
	}

	totalSales, err := s.orderRepo.TotalDeliveredSales()
	if err != nil {
		return nil, err
	}

	monthly, err := s.orderRepo.MonthlySalesByYear(time.Now().Year())
	if err != nil {
		return nil, err
	}

	recent, err := s.orderRepo.RecentDeals(10)
	if err != nil {
		return nil, err
	}

	deals := make([]DashboardDeal, 0, len(recent))
	for _, order := range recent {
		amount := 0
		if order.Payment != nil {
			amount = order.Payment.Amount
		}
		deals = append(deals, DashboardDeal{
			OrderID:      order.ID,
			CustomerName: order.User.Name,
			Status:       string(order.Status),
			StatusColor:  order.Status.Color(),
			Amount:       amount,
			OrderDate:    order.OrderDate.Format("2006-01-02"),
		})
	}

	return &DashboardSummary{
		TotalUsers:      totalUsers,
		DeliveredOrders: statusCounts[model.OrderStatusDelivered],
		PendingOrders:   statusCounts[model.OrderStatusPending],
		TotalSales:      totalSales,
		MonthlySales:    monthly,
		RecentDeals:     deals,
	}, nil
}

func (s *dashboardService) SnapshotDay(day time.Time) error {
	logger.Info("Building sales snapshot", map[string]interface{}{
		"date": day.Format("2006-01-02"),
	})

	total, delivered, pending, err := s.orderRepo.SalesForDate(day)
	if err != nil {
		return err
	}

	sellers, err := s.productRepo.BestSellers(5)
	if err != nil {
		return err
	}
	topProducts := make([]string, 0, len(sellers))
	for _, seller := range sellers {
		topProducts = append(topProducts, seller.Name)
	}

	snapshot := &model.SalesSnapshot{
		Date:           day.Format("2006-01-02"),
		TotalSales:     int(total),
		DeliveredCount: int(delivered),
		PendingCount:   int(pending),
		TopProducts:    topProducts,
	}
	if err := s.snapshotRepo.Upsert(snapshot); err != nil {
		return err
	}

	logger.Info("Sales snapshot stored", map[string]interface{}{
		"date":        snapshot.Date,
		"total_sales": snapshot.TotalSales,
	})
	return nil
}
