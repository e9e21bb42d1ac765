package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/service"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
)

type DashboardController struct {
	dashboardService service.DashboardService
}

func NewDashboardController(dashboardService service.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// GetSummary returns the back-office dashboard aggregates (Admin only)
// GET /api/v1/admin/dashboard
func (ctrl *DashboardController) GetSummary(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	summary, err := ctrl.dashboardService.GetSummary(c.Request.Context())
	if err != nil {
		log.Error("Failed to build dashboard summary", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load dashboard",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dashboard": summary,
	})
}
