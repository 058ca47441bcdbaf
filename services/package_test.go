package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Govind-619/InfuseDesk/events"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type packageFixture struct {
	db       *gorm.DB
	svc      *PackageService
	rec      *events.Recorder
	customer models.Customer
	service  models.Service
	order    models.Order
}

func newPackageFixture(t *testing.T) *packageFixture {
	t.Helper()
	db := newTestDB(t)
	rec := &events.Recorder{}
	svc := NewPackageService(db, rec)
	svc.SetClock(testClock)

	customer := seedCustomer(t, db, models.DiscountTypeRegular)
	service := seedService(t, db, "Vitamin C drip", 80000)
	order := seedOrder(t, db, customer, models.OrderStatusInProgress, lineItem(service, 1, models.SinglePackageType))
	return &packageFixture{db: db, svc: svc, rec: rec, customer: customer, service: service, order: order}
}

func (f *packageFixture) purchase(t *testing.T, total, remaining int, status models.PackageStatus) models.PackagePurchase {
	t.Helper()
	origin := seedOrder(t, f.db, f.customer, models.OrderStatusCompleted, lineItem(f.service, 1, "PACKAGE_10"))
	return seedPackage(t, f.db, origin, f.service, total, remaining, status)
}

func TestRecordUsage(t *testing.T) {
	f := newPackageFixture(t)
	pkg := f.purchase(t, 5, 5, models.PackageStatusActive)

	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", f.order.ID).Update("notes", "allergic to latex").Error)

	res, err := f.svc.RecordUsage(ctx, f.order.ID, pkg.ID, alice)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Package.RemainingCount)
	assert.Equal(t, models.PackageStatusActive, res.Package.Status)
	assert.Equal(t, 1, res.Usage.UsedCount)
	assert.Equal(t, 1, res.Usage.UsedCount)
	assert.Equal(t, alice.ID, res.Usage.UsedBy)
	require.NotNil(t, res.Usage.OrderItemID)
	assert.Equal(t, f.order.Items[0].ID, *res.Usage.OrderItemID)

	order := reloadOrder(t, f.db, f.order.ID)
	assert.Equal(t, models.OrderStatusInProgress, order.Status)
	assert.Nil(t, order.CompletedAt)
	assert.Equal(t, "allergic to latex", order.Notes)
	require.NotNil(t, order.SessionInfo)
	assert.Equal(t, pkg.ID, order.SessionInfo.PackagePurchaseID)
	assert.Equal(t, "Vitamin C drip", order.SessionInfo.ServiceName)
	assert.Equal(t, 5, order.SessionInfo.TotalCount)
	assert.Equal(t, 1, order.SessionInfo.UsedInSession)
	assert.Equal(t, 4, order.SessionInfo.RemainingCount)

	res, err = f.svc.RecordUsage(ctx, f.order.ID, pkg.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Package.RemainingCount)
	assert.Equal(t, 2, res.Order.SessionInfo.UsedInSession)

	requireLedgerInvariants(t, f.db, pkg.ID)
	assert.Equal(t, []string{events.TypePackageUsed, events.TypePackageUsed}, f.rec.Types())
}

func TestRecordUsageLastSessionCompletesOrder(t *testing.T) {
	f := newPackageFixture(t)
	pkg := f.purchase(t, 3, 3, models.PackageStatusActive)
	for i := 0; i < 2; i++ {
		_, err := f.svc.RecordUsage(ctx, f.order.ID, pkg.ID, alice)
		require.NoError(t, err)
	}

	res, err := f.svc.RecordUsage(ctx, f.order.ID, pkg.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Package.RemainingCount)
	assert.Equal(t, models.PackageStatusCompleted, res.Package.Status)
	assert.Equal(t, models.OrderStatusCompleted, res.Order.Status)

	stored := reloadPackage(t, f.db, pkg.ID)
	assert.Equal(t, models.PackageStatusCompleted, stored.Status)
	order := reloadOrder(t, f.db, f.order.ID)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	require.NotNil(t, order.CompletedAt)
	assert.True(t, order.CompletedAt.Equal(testNow))
	assert.Equal(t, 0, order.SessionInfo.RemainingCount)
	assert.Equal(t, 3, order.SessionInfo.UsedInSession)

	requireLedgerInvariants(t, f.db, pkg.ID)
	assert.Contains(t, f.rec.Types(), events.TypePackageCompleted)
	assert.Contains(t, f.rec.Types(), events.TypeOrderCompleted)
}

func TestRecordUsageLastSessionIssuesPackagesSold(t *testing.T) {
	f := newPackageFixture(t)
	f.svc.PackageValidity = 90 * 24 * time.Hour
	old := f.purchase(t, 5, 1, models.PackageStatusActive)
	// the visit that spends the last session also renews the package
	visit := seedOrder(t, f.db, f.customer, models.OrderStatusInProgress, lineItem(f.service, 1, "PACKAGE_10"))

	res, err := f.svc.RecordUsage(ctx, visit.ID, old.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, res.Order.Status)
	assert.Equal(t, 1, res.IssuedPackages)

	var issued []models.PackagePurchase
	require.NoError(t, f.db.Where("order_id = ?", visit.ID).Find(&issued).Error)
	require.Len(t, issued, 1)
	assert.Equal(t, 10, issued[0].TotalCount)
	assert.Equal(t, 10, issued[0].RemainingCount)
	assert.Equal(t, models.PackageStatusActive, issued[0].Status)
	assert.True(t, issued[0].PurchasedAt.Equal(testNow))
	require.NotNil(t, issued[0].ExpiresAt)
	assert.True(t, issued[0].ExpiresAt.Equal(testNow.Add(90*24*time.Hour)))

	// the order is already complete, so a backfill owes nothing more
	missing, err := missingPackages(f.db, reloadOrder(t, f.db, visit.ID), lineItem(f.service, 1, "PACKAGE_10"))
	require.NoError(t, err)
	assert.Zero(t, missing)
}

func TestRecordUsageNotLastSessionIssuesNothing(t *testing.T) {
	f := newPackageFixture(t)
	pkg := f.purchase(t, 5, 3, models.PackageStatusActive)
	visit := seedOrder(t, f.db, f.customer, models.OrderStatusInProgress, lineItem(f.service, 1, "PACKAGE_10"))

	res, err := f.svc.RecordUsage(ctx, visit.ID, pkg.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusInProgress, res.Order.Status)
	assert.Zero(t, res.IssuedPackages)

	var count int64
	require.NoError(t, f.db.Model(&models.PackagePurchase{}).Where("order_id = ?", visit.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecordUsageRejections(t *testing.T) {
	f := newPackageFixture(t)
	active := f.purchase(t, 5, 5, models.PackageStatusActive)
	exhausted := f.purchase(t, 5, 0, models.PackageStatusCompleted)
	cancelled := f.purchase(t, 5, 2, models.PackageStatusCancelled)
	expired := f.purchase(t, 5, 2, models.PackageStatusExpired)
	pending := seedOrder(t, f.db, f.customer, models.OrderStatusPending, lineItem(f.service, 1, ""))

	other := seedCustomer(t, f.db, models.DiscountTypeRegular)
	otherOrder := seedOrder(t, f.db, other, models.OrderStatusInProgress, lineItem(f.service, 1, ""))

	tests := []struct {
		name      string
		orderID   uint
		packageID uint
		sentinel  *Error
		kind      ErrorKind
	}{
		{"missing order", 9999, active.ID, ErrOrderNotFound, KindNotFound},
		{"order not in progress", pending.ID, active.ID, ErrOrderNotInProgress, KindState},
		{"missing package", f.order.ID, 9999, ErrPackageNotFound, KindNotFound},
		{"exhausted package", f.order.ID, exhausted.ID, ErrPackageExhausted, KindExhausted},
		{"cancelled package", f.order.ID, cancelled.ID, ErrPackageTerminal, KindState},
		{"expired package", f.order.ID, expired.ID, ErrPackageTerminal, KindState},
		{"other customer's order", otherOrder.ID, active.ID, ErrPackageNotOwned, KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RecordUsage(ctx, tt.orderID, tt.packageID, alice)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}

	var usages int64
	require.NoError(t, f.db.Model(&models.PackageUsage{}).Count(&usages).Error)
	assert.Zero(t, usages)
	assert.Equal(t, 5, reloadPackage(t, f.db, active.ID).RemainingCount)
	assert.Nil(t, reloadOrder(t, f.db, f.order.ID).SessionInfo)
	assert.Empty(t, f.rec.Events)
}

func TestRecordUsageConcurrent(t *testing.T) {
	f := newPackageFixture(t)
	pkg := f.purchase(t, 3, 3, models.PackageStatusActive)

	const workers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.RecordUsage(ctx, f.order.ID, pkg.ID, alice); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	stored := reloadPackage(t, f.db, pkg.ID)
	assert.Equal(t, 0, stored.RemainingCount)
	assert.Equal(t, models.PackageStatusCompleted, stored.Status)
	requireLedgerInvariants(t, f.db, pkg.ID)
}

func TestAdjust(t *testing.T) {
	f := newPackageFixture(t)
	pkg := f.purchase(t, 5, 5, models.PackageStatusActive)

	got, err := f.svc.Adjust(ctx, pkg.ID, AdjustRequest{Action: AdjustUse, Count: 2, Note: "paper record"}, alice)
	require.NoError(t, err)
	assert.Equal(t, 3, got.RemainingCount)
	assert.Equal(t, models.PackageStatusActive, got.Status)
	assert.Equal(t, "[2026-03-15 10:00] use 2 by alice: paper record", got.Notes)
	requireLedgerInvariants(t, f.db, pkg.ID)

	got, err = f.svc.Adjust(ctx, pkg.ID, AdjustRequest{Action: AdjustUse, Count: 3}, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, got.RemainingCount)
	assert.Equal(t, models.PackageStatusCompleted, got.Status)
	requireLedgerInvariants(t, f.db, pkg.ID)

	got, err = f.svc.Adjust(ctx, pkg.ID, AdjustRequest{Action: AdjustRestore, Count: 1, Note: "double entry"}, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RemainingCount)
	assert.Equal(t, models.PackageStatusActive, got.Status)
	requireLedgerInvariants(t, f.db, pkg.ID)

	assert.Equal(t,
		"[2026-03-15 10:00] use 2 by alice: paper record\n"+
			"[2026-03-15 10:00] use 3 by alice\n"+
			"[2026-03-15 10:00] restore 1 by admin: double entry",
		reloadPackage(t, f.db, pkg.ID).Notes)
	assert.Equal(t, []string{events.TypePackageAdjusted, events.TypePackageAdjusted, events.TypePackageAdjusted}, f.rec.Types())
}

func TestAdjustRejections(t *testing.T) {
	f := newPackageFixture(t)
	pkg := f.purchase(t, 5, 3, models.PackageStatusActive)
	require.NoError(t, f.db.Model(&pkg).Update("notes", "imported").Error)
	cancelled := f.purchase(t, 5, 3, models.PackageStatusCancelled)
	expired := f.purchase(t, 5, 3, models.PackageStatusExpired)

	tests := []struct {
		name     string
		id       uint
		req      AdjustRequest
		sentinel *Error
		kind     ErrorKind
		contains string
	}{
		{"missing action", pkg.ID, AdjustRequest{Count: 1}, ErrInvalidAdjustment, KindValidation, "action is required"},
		{"unknown action", pkg.ID, AdjustRequest{Action: "refund", Count: 1}, ErrInvalidAdjustment, KindValidation, "refund"},
		{"zero count", pkg.ID, AdjustRequest{Action: AdjustUse}, ErrInvalidAdjustment, KindValidation, "greater than zero"},
		{"negative count", pkg.ID, AdjustRequest{Action: AdjustRestore, Count: -2}, ErrInvalidAdjustment, KindValidation, "greater than zero"},
		{"missing package", 9999, AdjustRequest{Action: AdjustUse, Count: 1}, ErrPackageNotFound, KindNotFound, "not found"},
		{"use beyond remaining", pkg.ID, AdjustRequest{Action: AdjustUse, Count: 4}, ErrInsufficientCount, KindExhausted, "only 3 remaining"},
		{"restore beyond total", pkg.ID, AdjustRequest{Action: AdjustRestore, Count: 3}, ErrRestoreExceedTotal, KindExhausted, "total is 5"},
		{"cancelled", cancelled.ID, AdjustRequest{Action: AdjustRestore, Count: 1}, ErrPackageTerminal, KindState, "package is in a terminal state"},
		{"expired", expired.ID, AdjustRequest{Action: AdjustUse, Count: 1}, ErrPackageTerminal, KindState, "package is in a terminal state"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Adjust(ctx, tt.id, tt.req, alice)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}

	stored := reloadPackage(t, f.db, pkg.ID)
	assert.Equal(t, 3, stored.RemainingCount)
	assert.Equal(t, models.PackageStatusActive, stored.Status)
	assert.Equal(t, "imported", stored.Notes)
	assert.Equal(t, 0, ledgerSum(t, f.db, pkg.ID))
}

func TestCancelPackage(t *testing.T) {
	f := newPackageFixture(t)
	pkg := f.purchase(t, 5, 5, models.PackageStatusActive)
	_, err := f.svc.RecordUsage(ctx, f.order.ID, pkg.ID, alice)
	require.NoError(t, err)

	got, err := f.svc.Cancel(ctx, pkg.ID, "customer moved away", admin)
	require.NoError(t, err)
	assert.Equal(t, models.PackageStatusCancelled, got.Status)
	assert.Equal(t, 4, got.RemainingCount)
	assert.Contains(t, got.Notes, "cancelled by admin: customer moved away")

	_, err = f.svc.Cancel(ctx, pkg.ID, "", admin)
	assert.True(t, errors.Is(err, ErrPackageTerminal))

	_, err = f.svc.RecordUsage(ctx, f.order.ID, pkg.ID, alice)
	assert.True(t, errors.Is(err, ErrPackageTerminal))

	loaded, err := f.svc.Get(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Usages, 1)
}

func TestExpireOverdue(t *testing.T) {
	f := newPackageFixture(t)
	overdue := f.purchase(t, 5, 2, models.PackageStatusActive)
	fresh := f.purchase(t, 5, 5, models.PackageStatusActive)
	noExpiry := f.purchase(t, 5, 5, models.PackageStatusActive)
	finished := f.purchase(t, 5, 0, models.PackageStatusCompleted)

	require.NoError(t, f.db.Model(&overdue).Update("expires_at", testNow.AddDate(0, 0, -1)).Error)
	require.NoError(t, f.db.Model(&fresh).Update("expires_at", testNow.AddDate(0, 1, 0)).Error)
	require.NoError(t, f.db.Model(&finished).Update("expires_at", testNow.AddDate(0, 0, -1)).Error)

	n, err := f.svc.ExpireOverdue(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, models.PackageStatusExpired, reloadPackage(t, f.db, overdue.ID).Status)
	assert.Equal(t, models.PackageStatusActive, reloadPackage(t, f.db, fresh.ID).Status)
	assert.Equal(t, models.PackageStatusActive, reloadPackage(t, f.db, noExpiry.ID).Status)
	assert.Equal(t, models.PackageStatusCompleted, reloadPackage(t, f.db, finished.ID).Status)

	n, err = f.svc.ExpireOverdue(ctx, admin)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListPackages(t *testing.T) {
	f := newPackageFixture(t)
	f.purchase(t, 5, 5, models.PackageStatusActive)
	f.purchase(t, 5, 0, models.PackageStatusCompleted)
	other := seedCustomer(t, f.db, models.DiscountTypeVIP)
	otherOrder := seedOrder(t, f.db, other, models.OrderStatusCompleted, lineItem(f.service, 1, "PACKAGE_5"))
	seedPackage(t, f.db, otherOrder, f.service, 5, 5, models.PackageStatusActive)

	all, err := f.svc.List(ctx, PackageFilter{}, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := f.svc.List(ctx, PackageFilter{CustomerID: f.customer.ID, Status: models.PackageStatusActive}, nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.customer.ID, mine[0].CustomerID)
	assert.Equal(t, f.service.Name, mine[0].Service.Name)

	_, err = f.svc.List(ctx, PackageFilter{Status: "PAUSED"}, nil)
	assert.Equal(t, KindValidation, KindOf(err))

	usable, err := f.svc.ForCustomer(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Len(t, usable, 1)
}
