package controllers

import (
	"time"

	"github.com/Govind-619/InfuseDesk/services"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
)

// loadSalesReport resolves the period query parameters and builds the report.
// ok is false when a response has already been written.
func loadSalesReport(c *gin.Context) (*services.SalesReport, bool) {
	period := c.DefaultQuery("period", "day")
	utils.LogDebug("Generating sales report for period: %s", period)

	p, err := utils.ResolvePeriod(period, c.Query("start_date"), c.Query("end_date"), time.Now())
	if err != nil {
		utils.LogError("Invalid report period: %v", err)
		utils.BadRequest(c, "Invalid period", err.Error())
		return nil, false
	}
	utils.LogDebug("Date range: %s to %s", p.Start.Format("2006-01-02 15:04:05"), p.End.Format("2006-01-02 15:04:05"))

	report, err := reportService.Sales(c.Request.Context(), p)
	if err != nil {
		utils.LogError("Failed to build sales report: %v", err)
		utils.InternalServerError(c, "Failed to generate sales report", nil)
		return nil, false
	}
	utils.LogDebug("Sales report has %d completed orders", len(report.Sales))
	return report, true
}

// GenerateSalesReport returns the sales report for a period
func GenerateSalesReport(c *gin.Context) {
	utils.LogInfo("GenerateSalesReport called")
	report, ok := loadSalesReport(c)
	if !ok {
		return
	}
	utils.Success(c, "Sales report generated successfully", report)
}

// GetDashboard returns the back office landing page summary
func GetDashboard(c *gin.Context) {
	utils.LogInfo("GetDashboard called")
	dashboard, err := reportService.Dashboard(c.Request.Context())
	if err != nil {
		utils.LogError("Failed to build dashboard: %v", err)
		utils.InternalServerError(c, "Failed to load dashboard", nil)
		return
	}
	utils.Success(c, "Dashboard retrieved successfully", dashboard)
}
