package routes

import (
	"github.com/Govind-619/InfuseDesk/controllers"
	"github.com/Govind-619/InfuseDesk/middleware"
	"github.com/gin-gonic/gin"
)

// initAuthRoutes initializes sign in and sign out
func initAuthRoutes(router *gin.RouterGroup, jwtSecret string) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", controllers.Login)
		auth.POST("/logout", controllers.Logout)
		auth.GET("/google/login", controllers.GoogleLogin)
		auth.GET("/google/callback", controllers.GoogleCallback)

		auth.GET("/me", middleware.AuthMiddleware(jwtSecret), controllers.Me)
		auth.PUT("/password", middleware.AuthMiddleware(jwtSecret), controllers.ChangePassword)
	}
}

// initStaffRoutes initializes the routes every signed in staff member can use.
// A few write routes in these groups additionally require an administrator.
func initStaffRoutes(router *gin.RouterGroup, jwtSecret string) {
	staff := router.Group("")
	staff.Use(middleware.AuthMiddleware(jwtSecret))
	adminOnly := middleware.AdminMiddleware()

	staff.GET("/dashboard", controllers.GetDashboard)

	customers := staff.Group("/customers")
	{
		customers.GET("", controllers.ListCustomers)
		customers.POST("", controllers.CreateCustomer)
		customers.GET("/:id", controllers.GetCustomer)
		customers.PUT("/:id", controllers.UpdateCustomer)
		customers.DELETE("/:id", adminOnly, controllers.DeleteCustomer)
		customers.GET("/:id/packages", controllers.ListCustomerPackages)
	}

	services := staff.Group("/services")
	{
		services.GET("", controllers.ListServices)
		services.GET("/:id", controllers.GetService)
		services.POST("", adminOnly, controllers.CreateService)
		services.PUT("/:id", adminOnly, controllers.UpdateService)
		services.DELETE("/:id", adminOnly, controllers.DeleteService)
	}

	visits := staff.Group("/visits")
	{
		visits.GET("", controllers.ListVisits)
		visits.POST("", controllers.CreateVisit)
		visits.PUT("/:id", controllers.UpdateVisit)
		visits.DELETE("/:id", controllers.DeleteVisit)
	}

	notes := staff.Group("/monthly-notes")
	{
		notes.GET("", controllers.ListMonthlyNotes)
		notes.GET("/:year/:month", controllers.GetMonthlyNote)
		notes.PUT("/:year/:month", controllers.SaveMonthlyNote)
		notes.DELETE("/:year/:month", controllers.DeleteMonthlyNote)
	}

	orders := staff.Group("/orders")
	{
		orders.GET("", controllers.ListOrders)
		orders.POST("", controllers.CreateOrder)
		orders.GET("/:id", controllers.GetOrder)
		orders.POST("/:id/start", controllers.StartOrder)
		orders.POST("/:id/complete", controllers.CompleteOrder)
		orders.POST("/:id/cancel", controllers.CancelOrder)
		orders.POST("/:id/use-package", controllers.UsePackage)
		orders.POST("/:id/mark-paid", controllers.MarkOrderPaid)
		orders.POST("/:id/payment/initiate", controllers.InitiateRazorpayPayment)
		orders.POST("/:id/payment/verify", controllers.VerifyRazorpayPayment)
	}

	packages := staff.Group("/packages")
	{
		packages.GET("", controllers.ListPackages)
		packages.GET("/:id", controllers.GetPackage)
		packages.POST("/:id/adjust", controllers.AdjustPackage)
		packages.POST("/:id/cancel", adminOnly, controllers.CancelPackage)
	}

	approvals := staff.Group("/discount-approvals")
	{
		approvals.GET("", controllers.ListApprovals)
		approvals.POST("", controllers.FileApproval)
		approvals.GET("/:id", controllers.GetApproval)
		approvals.PATCH("/:id/resolve", adminOnly, controllers.ResolveApproval)
	}

	coupons := staff.Group("/coupons")
	{
		coupons.GET("", controllers.ListCoupons)
		coupons.POST("/validate", controllers.ValidateCoupon)
		coupons.GET("/:id", controllers.GetCoupon)
		coupons.GET("/:id/allocations", controllers.ListCouponAllocations)
		coupons.GET("/:id/usages", controllers.ListCouponUsages)
		coupons.POST("", adminOnly, controllers.CreateCoupon)
		coupons.PUT("/:id", adminOnly, controllers.UpdateCoupon)
		coupons.DELETE("/:id", adminOnly, controllers.DeleteCoupon)
		coupons.POST("/:id/allocations", adminOnly, controllers.AllocateCoupon)
	}
}
