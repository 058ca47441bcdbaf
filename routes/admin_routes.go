package routes

import (
	"github.com/Govind-619/InfuseDesk/controllers"
	"github.com/Govind-619/InfuseDesk/middleware"
	"github.com/gin-gonic/gin"
)

// initAdminRoutes initializes all admin-only routes
func initAdminRoutes(router *gin.RouterGroup, jwtSecret string) {
	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtSecret), middleware.AdminMiddleware())
	{
		// Staff management
		admin.GET("/users", controllers.GetUsers)
		admin.POST("/users", controllers.CreateUser)
		admin.GET("/users/:id", controllers.GetUser)
		admin.PATCH("/users/:id", controllers.UpdateUser)

		// Package maintenance
		admin.POST("/packages/expire", controllers.ExpirePackages)
		admin.POST("/packages/backfill", controllers.BackfillPackages)

		// Sales reports
		admin.GET("/reports/sales", controllers.GenerateSalesReport)
		admin.GET("/reports/sales/csv", controllers.DownloadSalesReportCSV)
		admin.GET("/reports/sales/excel", controllers.DownloadSalesReportExcel)
		admin.GET("/reports/sales/pdf", controllers.DownloadSalesReportPDF)
	}
}
