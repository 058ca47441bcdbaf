package services

import (
	"testing"
	"time"

	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedReportData leaves two orders completed today, one completed ten days
// ago, one pending order and an active package with two sessions and one
// manual correction recorded today
func seedReportData(t *testing.T, db *gorm.DB) (packaged, discounted models.Order) {
	t.Helper()
	drip := seedService(t, db, "Myers cocktail", 15000)
	shot := seedService(t, db, "B12 shot", 3000)
	first := seedCustomer(t, db, models.DiscountTypeRegular)
	second := seedCustomer(t, db, models.DiscountTypeVIP)

	packaged = seedOrder(t, db, first, models.OrderStatusCompleted, lineItem(drip, 2, "PACKAGE_5"))
	discounted = seedOrder(t, db, second, models.OrderStatusCompleted, lineItem(shot, 1, models.SinglePackageType))
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", discounted.ID).
		Updates(map[string]interface{}{"customer_discount": 300, "final_amount": 2700, "payment_method": "card"}).Error)

	old := seedOrder(t, db, first, models.OrderStatusCompleted, lineItem(shot, 4, models.SinglePackageType))
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", old.ID).
		Update("completed_at", testNow.AddDate(0, 0, -10)).Error)
	seedOrder(t, db, second, models.OrderStatusPending, lineItem(drip, 1, models.SinglePackageType))

	pkg := seedPackage(t, db, packaged, drip, 5, 2, models.PackageStatusActive)
	require.NoError(t, db.Model(&models.PackagePurchase{}).Where("id = ?", pkg.ID).
		Update("expires_at", testNow.AddDate(0, 0, 3)).Error)
	for _, u := range []models.PackageUsage{
		{UsedCount: 1, UsedAt: testNow.Add(-20 * time.Minute)},
		{UsedCount: 1, UsedAt: testNow.Add(-10 * time.Minute)},
	} {
		u.PackagePurchaseID, u.OrderID, u.UsedBy = pkg.ID, packaged.ID, alice.ID
		require.NoError(t, db.Create(&u).Error)
	}
	// corrections are not sessions and stay out of the usage figures
	require.NoError(t, db.Create(&models.PackageAdjustment{
		PackagePurchaseID: pkg.ID,
		Action:            models.AdjustmentUse,
		Count:             1,
		AdjustedBy:        alice.ID,
		AdjustedAt:        testNow.Add(-5 * time.Minute),
	}).Error)
	return packaged, discounted
}

func TestSalesReport(t *testing.T) {
	db := newTestDB(t)
	packaged, discounted := seedReportData(t, db)
	svc := NewReportService(db)
	svc.SetClock(testClock)

	period, err := utils.ResolvePeriod("day", "", "", testNow)
	require.NoError(t, err)
	report, err := svc.Sales(ctx, period)
	require.NoError(t, err)

	s := report.Summary
	assert.Equal(t, 2, s.TotalSales)
	assert.Equal(t, int64(33000), s.TotalRevenue)
	assert.Equal(t, 3, s.TotalItems)
	assert.Equal(t, 2, s.TotalCustomers)
	assert.Equal(t, int64(300), s.CustomerDiscounts)
	assert.Equal(t, int64(32700), s.NetRevenue)
	assert.Equal(t, int64(16350), s.AverageOrderValue)
	assert.Equal(t, 2, s.PackagesSold)
	assert.Equal(t, 2, s.SessionsUsed)

	require.Len(t, report.Sales, 2)
	assert.Equal(t, discounted.ID, report.Sales[0].OrderID)
	assert.Equal(t, int64(300), report.Sales[0].Discount)
	assert.Equal(t, "card", report.Sales[0].PaymentMethod)
	assert.Equal(t, packaged.ID, report.Sales[1].OrderID)
	assert.NotEmpty(t, report.Sales[1].CustomerName)

	require.Len(t, report.PackageUsage, 1)
	assert.Equal(t, "Myers cocktail", report.PackageUsage[0].ServiceName)
	assert.Equal(t, 2, report.PackageUsage[0].Sessions)

	month, err := utils.ResolvePeriod("month", "", "", testNow)
	require.NoError(t, err)
	report, err = svc.Sales(ctx, month)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Summary.TotalSales)
}

func TestSalesReportEmptyPeriod(t *testing.T) {
	db := newTestDB(t)
	seedReportData(t, db)
	svc := NewReportService(db)

	period, err := utils.ResolvePeriod("custom", "2025-01-01", "2025-01-31", testNow)
	require.NoError(t, err)
	report, err := svc.Sales(ctx, period)
	require.NoError(t, err)
	assert.Zero(t, report.Summary.TotalSales)
	assert.Zero(t, report.Summary.AverageOrderValue)
	assert.NotNil(t, report.Sales)
	assert.NotNil(t, report.PackageUsage)
}

func TestDashboard(t *testing.T) {
	db := newTestDB(t)
	_, discounted := seedReportData(t, db)
	require.NoError(t, db.Create(&models.Visit{CustomerID: discounted.CustomerID, StaffID: alice.ID, VisitDate: testNow}).Error)
	require.NoError(t, db.Create(&models.DiscountApprovalRequest{
		CustomerID:     discounted.CustomerID,
		ConflictReason: "VIP and coupon",
		RequestedBy:    alice.ID,
		Status:         models.ApprovalPending,
		RequestedAt:    testNow,
	}).Error)
	coupon := activeCoupon(models.DiscountAmount, 500)
	require.NoError(t, db.Create(coupon).Error)

	svc := NewReportService(db)
	svc.SetClock(testClock)
	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), d.ActivePackages)
	assert.Equal(t, int64(1), d.ExpiringPackages)
	assert.Equal(t, int64(1), d.PendingApprovals)
	assert.Equal(t, int64(1), d.OpenOrders)
	assert.Equal(t, int64(1), d.TodayVisits)
	assert.Equal(t, int64(2), d.TodayCompleted)
	assert.Equal(t, int64(32700), d.TodayRevenue)
	assert.Equal(t, int64(1), d.ActiveCoupons)
	assert.Equal(t, int64(2), d.TotalCustomers)
	assert.Equal(t, int64(2), d.SessionsUsedToday)
}
