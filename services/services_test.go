package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Govind-619/InfuseDesk/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	testNow   = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	testClock = func() time.Time { return testNow }
	ctx       = context.Background()
	alice     = Actor{ID: 7, Username: "alice", Role: models.RoleStaff}
	admin     = Actor{ID: 1, Username: "admin", Role: models.RoleAdmin}
)

// newTestDB opens a fresh in-memory database. A single connection keeps
// every query on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

var phoneSeq int

func seedCustomer(t *testing.T, db *gorm.DB, discount models.CustomerDiscountType) models.Customer {
	t.Helper()
	phoneSeq++
	c := models.Customer{
		Name:         fmt.Sprintf("Customer %d", phoneSeq),
		Phone:        fmt.Sprintf("010-0000-%04d", phoneSeq),
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

func seedOrder(t *testing.T, db *gorm.DB, customer models.Customer, status models.OrderStatus, items ...models.OrderItem) models.Order {
	t.Helper()
	o := models.Order{
		CustomerID:    customer.ID,
		StaffID:       alice.ID,
		Status:        status,
		OrderDate:     testNow.Add(-time.Hour),
		PaymentStatus: models.PaymentStatusUnpaid,
		Items:         items,
	}
	for _, item := range items {
		o.TotalAmount += item.TotalPrice
	}
	o.FinalAmount = o.TotalAmount
	if status == models.OrderStatusCompleted {
		completed := testNow.Add(-30 * time.Minute)
		o.CompletedAt = &completed
	}
	require.NoError(t, db.Omit("Customer").Create(&o).Error)
	return o
}

func lineItem(service models.Service, quantity int, packageType string) models.OrderItem {
	return models.OrderItem{
		ServiceID:   service.ID,
		Quantity:    quantity,
		UnitPrice:   service.Price,
		TotalPrice:  service.Price * int64(quantity),
		PackageType: packageType,
	}
}

func seedPackage(t *testing.T, db *gorm.DB, order models.Order, service models.Service, total, remaining int, status models.PackageStatus) models.PackagePurchase {
	t.Helper()
	p := models.PackagePurchase{
		CustomerID:     order.CustomerID,
		ServiceID:      service.ID,
		OrderID:        order.ID,
		PackageType:    fmt.Sprintf("PACKAGE_%d", total),
		TotalCount:     total,
		RemainingCount: remaining,
		Status:         status,
		PurchasePrice:  service.Price * int64(total),
		PurchasedAt:    testNow.AddDate(0, -1, 0),
	}
	require.NoError(t, db.Omit("Customer", "Service").Create(&p).Error)
	return p
}

func reloadPackage(t *testing.T, db *gorm.DB, id uint) models.PackagePurchase {
	t.Helper()
	var p models.PackagePurchase
	require.NoError(t, db.First(&p, id).Error)
	return p
}

func reloadOrder(t *testing.T, db *gorm.DB, id uint) models.Order {
	t.Helper()
	var o models.Order
	require.NoError(t, db.First(&o, id).Error)
	return o
}

// ledgerSum is the number of sessions the usage and adjustment rows of a
// package account for
func ledgerSum(t *testing.T, db *gorm.DB, packageID uint) int {
	t.Helper()
	var usages []models.PackageUsage
	require.NoError(t, db.Where("package_purchase_id = ?", packageID).Find(&usages).Error)
	total := 0
	for _, u := range usages {
		require.Equal(t, 1, u.UsedCount, "usage %d", u.ID)
		total += u.UsedCount
	}
	var adjustments []models.PackageAdjustment
	require.NoError(t, db.Where("package_purchase_id = ?", packageID).Find(&adjustments).Error)
	for _, a := range adjustments {
		require.Positive(t, a.Count, "adjustment %d", a.ID)
		total += a.Consumed()
	}
	return total
}

// requireLedgerInvariants checks the bounds and status rules of a package
func requireLedgerInvariants(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	p := reloadPackage(t, db, id)
	require.GreaterOrEqual(t, p.RemainingCount, 0)
	require.LessOrEqual(t, p.RemainingCount, p.TotalCount)
	if !p.Status.IsTerminal() {
		require.Equal(t, p.RemainingCount == 0, p.Status == models.PackageStatusCompleted)
	}
	require.Equal(t, p.TotalCount-p.RemainingCount, ledgerSum(t, db, id))
}

func ptr[T any](v T) *T {
	return &v
}
