package controllers

import (
	"fmt"
	"testing"
	"time"

	"github.com/Govind-619/InfuseDesk/config"
	"github.com/Govind-619/InfuseDesk/events"
	"github.com/Govind-619/InfuseDesk/lock"
	"github.com/Govind-619/InfuseDesk/middleware"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testJWTSecret      = "test-jwt-secret"
	testRazorpayKey    = "rzp_test_key"
	testRazorpaySecret = "rzp_test_secret"
	testPassword       = "Secret123"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	events *events.Recorder
	admin  models.User
	staff  models.User
}

func (e *testEnv) adminToken(t *testing.T) string { return tokenFor(t, e.admin) }
func (e *testEnv) staffToken(t *testing.T) string { return tokenFor(t, e.staff) }

// setupTest points config.DB at a fresh in-memory database and wires the
// handlers to it
func setupTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))
	config.DB = db

	rec := &events.Recorder{}
	Setup(db, Deps{
		Publisher:       rec,
		Locker:          lock.NewLocal(),
		PackageValidity: 180 * 24 * time.Hour,
		JWTSecret:       testJWTSecret,
		FrontendURL:     "http://localhost:3000",
		Razorpay:        config.RazorpayConfig{Key: testRazorpayKey, Secret: testRazorpaySecret},
	})

	return &testEnv{
		router: newTestRouter(),
		db:     db,
		events: rec,
		admin:  seedUser(t, db, "admin", models.RoleAdmin, true),
		staff:  seedUser(t, db, "nurse_kim", models.RoleStaff, true),
	}
}

func newTestRouter() *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions(utils.SessionName, cookie.NewStore([]byte("test-session-secret"))))
	r.GET("/health", Health)

	api := r.Group("/api/v1")
	api.POST("/auth/login", Login)
	api.POST("/auth/logout", Logout)

	auth := middleware.AuthMiddleware(testJWTSecret)
	adminOnly := middleware.AdminMiddleware()

	staff := api.Group("", auth)
	staff.GET("/auth/me", Me)
	staff.POST("/customers", CreateCustomer)
	staff.GET("/customers/:id", GetCustomer)
	staff.GET("/customers/:id/packages", ListCustomerPackages)
	staff.POST("/orders", CreateOrder)
	staff.GET("/orders/:id", GetOrder)
	staff.POST("/orders/:id/start", StartOrder)
	staff.POST("/orders/:id/complete", CompleteOrder)
	staff.POST("/orders/:id/cancel", CancelOrder)
	staff.POST("/orders/:id/use-package", UsePackage)
	staff.POST("/orders/:id/payment/initiate", InitiateRazorpayPayment)
	staff.POST("/orders/:id/payment/verify", VerifyRazorpayPayment)
	staff.GET("/packages/:id", GetPackage)
	staff.POST("/packages/:id/adjust", AdjustPackage)
	staff.POST("/packages/:id/cancel", adminOnly, CancelPackage)
	staff.GET("/discount-approvals", ListApprovals)
	staff.POST("/discount-approvals", FileApproval)
	staff.PATCH("/discount-approvals/:id/resolve", adminOnly, ResolveApproval)
	staff.POST("/coupons/validate", ValidateCoupon)

	admin := api.Group("/admin", auth, adminOnly)
	admin.GET("/reports/sales/csv", DownloadSalesReportCSV)
	admin.POST("/packages/backfill", BackfillPackages)
	return r
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, _, err := utils.GenerateToken(&user, testJWTSecret)
	require.NoError(t, err)
	return token
}

func seedUser(t *testing.T, db *gorm.DB, username string, role models.Role, active bool) models.User {
	t.Helper()
	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)
	user := models.User{
		Username: username,
		Email:    username + "@clinic.test",
		Password: hash,
		FullName: "Test " + username,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	if !active {
		require.NoError(t, db.Model(&user).Update("is_active", false).Error)
		user.IsActive = false
	}
	return user
}

var phoneSeq int

func seedCustomer(t *testing.T, db *gorm.DB, discount models.CustomerDiscountType) models.Customer {
	t.Helper()
	phoneSeq++
	c := models.Customer{
		Name:         fmt.Sprintf("Customer %d", phoneSeq),
		Phone:        fmt.Sprintf("010-5555-%04d", phoneSeq),
		DiscountType: discount,
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedService(t *testing.T, db *gorm.DB, name string, price int64) models.Service {
	t.Helper()
	s := models.Service{Name: name, Category: "IV", Price: price, DurationMinutes: 60, IsActive: true}
	require.NoError(t, db.Create(&s).Error)
	return s
}

func seedOrder(t *testing.T, db *gorm.DB, customer models.Customer, staff models.User, status models.OrderStatus, amount int64) models.Order {
	t.Helper()
	o := models.Order{
		CustomerID:    customer.ID,
		StaffID:       staff.ID,
		Status:        status,
		OrderDate:     time.Now().Add(-time.Hour),
		TotalAmount:   amount,
		FinalAmount:   amount,
		PaymentStatus: models.PaymentStatusUnpaid,
	}
	if status == models.OrderStatusCompleted {
		completed := time.Now()
		o.CompletedAt = &completed
	}
	require.NoError(t, db.Omit("Customer").Create(&o).Error)
	return o
}

func seedPackage(t *testing.T, db *gorm.DB, order models.Order, service models.Service, total, remaining int) models.PackagePurchase {
	t.Helper()
	p := models.PackagePurchase{
		CustomerID:     order.CustomerID,
		ServiceID:      service.ID,
		OrderID:        order.ID,
		PackageType:    fmt.Sprintf("PACKAGE_%d", total),
		TotalCount:     total,
		RemainingCount: remaining,
		Status:         models.StatusForRemaining(remaining),
		PurchasePrice:  service.Price * int64(total),
		PurchasedAt:    time.Now().AddDate(0, -1, 0),
	}
	require.NoError(t, db.Omit("Customer", "Service").Create(&p).Error)
	return p
}

// paginated is the data envelope of a paginated listing
type paginated[T any] struct {
	Data       []T   `json:"data"`
	TotalItems int64 `json:"total_items"`
}
