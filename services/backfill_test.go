package services

import (
	"testing"
	"time"

	"github.com/Govind-619/InfuseDesk/events"
	"github.com/Govind-619/InfuseDesk/lock"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type backfillFixture struct {
	db      *gorm.DB
	svc     *BackfillService
	rec     *events.Recorder
	full    models.Order
	partial models.Order
	drip    models.Service
}

// newBackfillFixture seeds two completed orders owing three packages in
// total, one malformed package line and a pending order that must be ignored
func newBackfillFixture(t *testing.T, locker lock.Locker) *backfillFixture {
	t.Helper()
	db := newTestDB(t)
	rec := &events.Recorder{}
	svc := NewBackfillService(db, rec, locker)
	svc.SetClock(testClock)

	drip := seedService(t, db, "Myers cocktail", 15000)
	shot := seedService(t, db, "B12 shot", 3000)
	vitc := seedService(t, db, "Vitamin C", 8000)
	customer := seedCustomer(t, db, models.DiscountTypeRegular)

	full := seedOrder(t, db, customer, models.OrderStatusCompleted,
		lineItem(drip, 2, "PACKAGE_5"),
		lineItem(shot, 1, models.SinglePackageType),
		lineItem(vitc, 1, "package_x"),
	)
	partial := seedOrder(t, db, customer, models.OrderStatusCompleted, lineItem(shot, 2, "package10"))
	seedPackage(t, db, partial, shot, 10, 10, models.PackageStatusActive)
	seedOrder(t, db, customer, models.OrderStatusPending, lineItem(drip, 1, "PACKAGE_5"))

	return &backfillFixture{db: db, svc: svc, rec: rec, full: full, partial: partial, drip: drip}
}

func (f *backfillFixture) packageCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.PackagePurchase{}).Count(&n).Error)
	return n
}

func TestBackfillCreatesMissingPackages(t *testing.T) {
	f := newBackfillFixture(t, nil)
	f.svc.PackageValidity = 30 * 24 * time.Hour

	report, err := f.svc.Run(ctx, false)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.DryRun)
	assert.Equal(t, 2, report.OrdersScanned)
	assert.Equal(t, 3, report.ItemsScanned)
	assert.Equal(t, 2, report.ItemsReconciled)
	assert.Equal(t, 3, report.PackagesCreated)
	require.Len(t, report.DataErrors, 1)
	assert.Equal(t, f.full.ID, report.DataErrors[0].OrderID)
	assert.Equal(t, "package_x", report.DataErrors[0].PackageType)
	assert.Equal(t, int64(4), f.packageCount(t))

	var created []models.PackagePurchase
	require.NoError(t, f.db.Where("order_id = ? AND service_id = ?", f.full.ID, f.drip.ID).Find(&created).Error)
	require.Len(t, created, 2)
	for _, p := range created {
		assert.Equal(t, 5, p.TotalCount)
		assert.Equal(t, 5, p.RemainingCount)
		assert.Equal(t, models.PackageStatusActive, p.Status)
		assert.Equal(t, int64(15000), p.PurchasePrice)
		assert.True(t, p.PurchasedAt.Equal(*f.full.CompletedAt))
		require.NotNil(t, p.ExpiresAt)
		assert.True(t, p.ExpiresAt.Equal(f.full.CompletedAt.Add(30*24*time.Hour)))
	}
	assert.Equal(t, []string{events.TypeBackfillCompleted}, f.rec.Types())
}

func TestBackfillIsIdempotent(t *testing.T) {
	f := newBackfillFixture(t, nil)

	first, err := f.svc.Run(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 3, first.PackagesCreated)
	after := f.packageCount(t)

	second, err := f.svc.Run(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, second.PackagesCreated)
	assert.Zero(t, second.ItemsReconciled)
	assert.Equal(t, first.ItemsScanned, second.ItemsScanned)
	assert.Len(t, second.DataErrors, 1)
	assert.Equal(t, after, f.packageCount(t))
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestBackfillDryRun(t *testing.T) {
	f := newBackfillFixture(t, nil)

	report, err := f.svc.Run(ctx, true)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 3, report.PackagesCreated)
	assert.Equal(t, int64(1), f.packageCount(t))
	assert.Empty(t, f.rec.Types())
}

func TestBackfillRejectsConcurrentRun(t *testing.T) {
	locker := lock.NewLocal()
	f := newBackfillFixture(t, locker)

	release, err := locker.Lock(ctx, backfillLockKey)
	require.NoError(t, err)

	_, err = f.svc.Run(ctx, false)
	assert.ErrorIs(t, err, ErrBackfillRunning)
	assert.Equal(t, int64(1), f.packageCount(t))

	release()
	_, err = f.svc.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(4), f.packageCount(t))
}
