package services

import (
	"context"
	"errors"
	"time"

	"github.com/Govind-619/InfuseDesk/events"
	"github.com/Govind-619/InfuseDesk/lock"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/rs/xid"
	"gorm.io/gorm"
)

const backfillLockKey = "infusedesk:package-backfill"

// DataError is a line item the backfill could not reconcile
type DataError struct {
	OrderID     uint   `json:"order_id"`
	OrderItemID uint   `json:"order_item_id"`
	PackageType string `json:"package_type"`
	Reason      string `json:"reason"`
}

// BackfillReport summarises one backfill run
type BackfillReport struct {
	RunID           string      `json:"run_id"`
	DryRun          bool        `json:"dry_run"`
	StartedAt       time.Time   `json:"started_at"`
	FinishedAt      time.Time   `json:"finished_at"`
	OrdersScanned   int         `json:"orders_scanned"`
	ItemsScanned    int         `json:"items_scanned"`
	ItemsReconciled int         `json:"items_reconciled"`
	PackagesCreated int         `json:"packages_created"`
	DataErrors      []DataError `json:"data_errors"`
}

// BackfillService creates the package purchases missing for completed orders
type BackfillService struct {
	base
	locker lock.Locker

	// PackageValidity, when positive, sets the expiry of created packages
	PackageValidity time.Duration
}

func NewBackfillService(db *gorm.DB, pub events.Publisher, locker lock.Locker) *BackfillService {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &BackfillService{base: newBase(db, pub), locker: locker}
}

// Run reconciles every completed order. Rows already issued are counted and
// never duplicated, so a second run over unchanged history creates nothing.
// With dryRun set nothing is written.
func (s *BackfillService) Run(ctx context.Context, dryRun bool) (*BackfillReport, error) {
	release, err := s.locker.Lock(ctx, backfillLockKey)
	if errors.Is(err, lock.ErrHeld) {
		return nil, ErrBackfillRunning
	}
	if err != nil {
		return nil, err
	}
	defer release()

	report := &BackfillReport{
		RunID:      xid.New().String(),
		DryRun:     dryRun,
		StartedAt:  s.now(),
		DataErrors: []DataError{},
	}
	utils.LogInfo("Package backfill %s started (dry run: %v)", report.RunID, dryRun)

	var orderIDs []uint
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ?", models.OrderStatusCompleted).
		Order("id").
		Pluck("id", &orderIDs).Error; err != nil {
		return nil, err
	}

	for _, id := range orderIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.reconcileOrder(ctx, id, report); err != nil {
			utils.LogError("Package backfill %s failed on order %d: %v", report.RunID, id, err)
			return nil, err
		}
		report.OrdersScanned++
	}

	report.FinishedAt = s.now()
	utils.LogInfo("Package backfill %s finished: %d orders, %d package items, %d packages created, %d data errors",
		report.RunID, report.OrdersScanned, report.ItemsScanned, report.PackagesCreated, len(report.DataErrors))
	if !dryRun {
		s.publish(ctx, events.New(events.TypeBackfillCompleted, report))
	}
	return report, nil
}

func (s *BackfillService) reconcileOrder(ctx context.Context, orderID uint, report *BackfillReport) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
			First(&order, orderID).Error; err != nil {
			return err
		}

		for _, item := range order.Items {
			if !item.IsPackage() {
				continue
			}
			report.ItemsScanned++

			if _, err := ParsePackageCount(item.PackageType); err != nil {
				report.DataErrors = append(report.DataErrors, DataError{
					OrderID:     order.ID,
					OrderItemID: item.ID,
					PackageType: item.PackageType,
					Reason:      err.Error(),
				})
				continue
			}

			var n int
			var err error
			if report.DryRun {
				n, err = missingPackages(tx, order, item)
			} else {
				n, err = issuePackages(tx, order, item, s.PackageValidity)
			}
			if err != nil {
				return err
			}
			if n > 0 {
				report.ItemsReconciled++
				report.PackagesCreated += n
			}
		}
		return nil
	})
}
