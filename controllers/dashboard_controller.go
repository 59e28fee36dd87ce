package controllers

import (
	"log"
	"net/http"
	"time"

	"rental-backend/services"
	"rental-backend/utils"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Dashboard *services.DashboardService
}

func NewDashboardController(dashboard *services.DashboardService) *DashboardController {
	return &DashboardController{Dashboard: dashboard}
}

// GET /api/dashboard/performance?month=2026-08
func (dc *DashboardController) GetPerformance(c *gin.Context) {
	asOf := time.Now().UTC()
	if raw := c.Query("month"); raw != "" {
		t, err := utils.ParseMonth(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		asOf = t
	}

	summary, err := dc.Dashboard.Performance(asOf)
	if err != nil {
		log.Printf("❌ dashboard build failed: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, summary)
}
