package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Govind-619/InfuseDesk/events"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/avast/retry-go"
	"gorm.io/gorm"
)

const (
	consumeAttempts = 3
	consumeDelay    = 50 * time.Millisecond
)

// AdjustAction is a manual correction applied to a package ledger
type AdjustAction = models.AdjustmentAction

const (
	AdjustUse     = models.AdjustmentUse
	AdjustRestore = models.AdjustmentRestore
)

// AdjustRequest is an operator's correction of a package's remaining count
type AdjustRequest struct {
	Action AdjustAction
	Count  int
	Note   string
}

// UsageResult is everything that changed when a session was consumed
type UsageResult struct {
	Usage   models.PackageUsage    `json:"packageUsage"`
	Package models.PackagePurchase `json:"updatedPackage"`
	Order   models.Order           `json:"updatedOrder"`
	// IssuedPackages counts packages sold on the order that were issued
	// because this session completed it
	IssuedPackages int `json:"issuedPackages"`
}

// PackageFilter narrows a package listing
type PackageFilter struct {
	CustomerID uint
	ServiceID  uint
	Status     models.PackageStatus
}

// PackageService owns the package ledger
type PackageService struct {
	base
	// PackageValidity, when positive, sets the expiry of packages issued
	// when a session completes an order
	PackageValidity time.Duration
}

func NewPackageService(db *gorm.DB, pub events.Publisher) *PackageService {
	return &PackageService{base: newBase(db, pub)}
}

// RecordUsage consumes one session of packageID during orderID. When the
// package runs out the order is completed in the same transaction.
func (s *PackageService) RecordUsage(ctx context.Context, orderID, packageID uint, actor Actor) (*UsageResult, error) {
	var result *UsageResult

	err := retry.Do(
		func() error {
			res, err := s.recordUsage(ctx, orderID, packageID, actor)
			if err != nil {
				return err
			}
			result = res
			return nil
		},
		retry.RetryIf(func(err error) bool { return errors.Is(err, errConcurrentUpdate) }),
		retry.Attempts(consumeAttempts),
		retry.Delay(consumeDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Package %d used in order %d by %s, %d sessions remaining",
		packageID, orderID, actor.Name(), result.Package.RemainingCount)
	if result.IssuedPackages > 0 {
		utils.LogInfo("Order %d completed by %s, %d packages issued", orderID, actor.Name(), result.IssuedPackages)
	}

	evs := []events.Event{events.New(events.TypePackageUsed, result.Usage)}
	if result.Package.Status == models.PackageStatusCompleted {
		evs = append(evs,
			events.New(events.TypePackageCompleted, result.Package),
			events.New(events.TypeOrderCompleted, result.Order),
		)
	}
	s.publish(ctx, evs...)
	return result, nil
}

func (s *PackageService) recordUsage(ctx context.Context, orderID, packageID uint, actor Actor) (*UsageResult, error) {
	var result UsageResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockForUpdate(tx).First(&order, orderID).Error; err != nil {
			return notFound(err, ErrOrderNotFound)
		}
		if order.Status != models.OrderStatusInProgress {
			return detail(ErrOrderNotInProgress, "order %d is %s, sessions can only be used while IN_PROGRESS", order.ID, order.Status)
		}
		if err := tx.Where("order_id = ?", order.ID).Order("id").Find(&order.Items).Error; err != nil {
			return err
		}

		var pkg models.PackagePurchase
		if err := lockForUpdate(tx).Preload("Service").First(&pkg, packageID).Error; err != nil {
			return notFound(err, ErrPackageNotFound)
		}
		if pkg.Status.IsTerminal() {
			return detail(ErrPackageTerminal, "package %d is %s", pkg.ID, pkg.Status)
		}
		if pkg.CustomerID != order.CustomerID {
			return ErrPackageNotOwned
		}
		if pkg.RemainingCount <= 0 {
			return detail(ErrPackageExhausted, "package %d has no remaining sessions (0 of %d left)", pkg.ID, pkg.TotalCount)
		}

		now := s.now()
		remaining := pkg.RemainingCount - 1
		status := models.StatusForRemaining(remaining)

		// the remaining count guard turns a lost race into a retry
		res := tx.Model(&models.PackagePurchase{}).
			Where("id = ? AND remaining_count = ?", pkg.ID, pkg.RemainingCount).
			Updates(map[string]interface{}{
				"remaining_count": remaining,
				"status":          status,
				"updated_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errConcurrentUpdate
		}
		pkg.RemainingCount, pkg.Status, pkg.UpdatedAt = remaining, status, now

		usage := models.PackageUsage{
			PackagePurchaseID: pkg.ID,
			OrderID:           order.ID,
			UsedCount:         1,
			UsedBy:            actor.ID,
			UsedAt:            now,
		}
		if len(order.Items) > 0 {
			itemID := order.Items[0].ID
			usage.OrderItemID = &itemID
		}
		if err := tx.Create(&usage).Error; err != nil {
			return err
		}

		usedInSession := 1
		if order.SessionInfo != nil && order.SessionInfo.PackagePurchaseID == pkg.ID {
			usedInSession = order.SessionInfo.UsedInSession + 1
		}
		order.SessionInfo = &models.SessionInfo{
			PackagePurchaseID: pkg.ID,
			ServiceName:       pkg.Service.Name,
			PackageType:       pkg.PackageType,
			TotalCount:        pkg.TotalCount,
			UsedInSession:     usedInSession,
			RemainingCount:    remaining,
			UpdatedAt:         now,
		}
		fields := []string{"session_info", "updated_at"}
		if remaining == 0 {
			order.Status = models.OrderStatusCompleted
			order.CompletedAt = &now
			fields = append(fields, "status", "completed_at")
		}
		order.UpdatedAt = now

		update := models.Order{
			SessionInfo: order.SessionInfo,
			Status:      order.Status,
			CompletedAt: order.CompletedAt,
			UpdatedAt:   now,
		}
		if err := tx.Model(&models.Order{ID: order.ID}).Select(fields).Updates(&update).Error; err != nil {
			return err
		}

		issued := 0
		if order.Status == models.OrderStatusCompleted {
			n, err := issueOrderPackages(tx, order, s.PackageValidity)
			if err != nil {
				return err
			}
			issued = n
		}

		result = UsageResult{Usage: usage, Package: pkg, Order: order, IssuedPackages: issued}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Adjust corrects the remaining count of a package outside the session flow.
// Each correction is kept as a PackageAdjustment and appended to the notes.
func (s *PackageService) Adjust(ctx context.Context, packageID uint, req AdjustRequest, actor Actor) (*models.PackagePurchase, error) {
	switch req.Action {
	case AdjustUse, AdjustRestore:
	case "":
		return nil, detail(ErrInvalidAdjustment, "action is required")
	default:
		return nil, detail(ErrInvalidAdjustment, "unknown action %q, expected use or restore", req.Action)
	}
	if req.Count <= 0 {
		return nil, detail(ErrInvalidAdjustment, "count must be greater than zero")
	}

	var pkg models.PackagePurchase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&pkg, packageID).Error; err != nil {
			return notFound(err, ErrPackageNotFound)
		}
		if pkg.Status.IsTerminal() {
			return detail(ErrPackageTerminal, "package is in a terminal state (%s)", pkg.Status)
		}

		delta := req.Count
		switch req.Action {
		case AdjustUse:
			if req.Count > pkg.RemainingCount {
				return detail(ErrInsufficientCount, "cannot use %d sessions, only %d remaining", req.Count, pkg.RemainingCount)
			}
		case AdjustRestore:
			if pkg.RemainingCount+req.Count > pkg.TotalCount {
				return detail(ErrRestoreExceedTotal, "cannot restore %d sessions, package total is %d with %d remaining",
					req.Count, pkg.TotalCount, pkg.RemainingCount)
			}
			delta = -req.Count
		}

		now := s.now()
		remaining := pkg.RemainingCount - delta
		status := models.StatusForRemaining(remaining)
		notes := appendNote(pkg.Notes, now, fmt.Sprintf("%s %d by %s", req.Action, req.Count, actor.Name()), req.Note)

		if err := tx.Model(&pkg).Updates(map[string]interface{}{
			"remaining_count": remaining,
			"status":          status,
			"notes":           notes,
			"updated_at":      now,
		}).Error; err != nil {
			return err
		}
		pkg.RemainingCount, pkg.Status, pkg.Notes, pkg.UpdatedAt = remaining, status, notes, now

		return tx.Create(&models.PackageAdjustment{
			PackagePurchaseID: pkg.ID,
			Action:            req.Action,
			Count:             req.Count,
			Note:              req.Note,
			AdjustedBy:        actor.ID,
			AdjustedAt:        now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Package %d adjusted by %s: %s %d, %d/%d remaining",
		pkg.ID, actor.Name(), req.Action, req.Count, pkg.RemainingCount, pkg.TotalCount)
	s.publish(ctx, events.New(events.TypePackageAdjusted, pkg))
	return &pkg, nil
}

// Cancel moves an active package to CANCELLED. Usage history is kept.
func (s *PackageService) Cancel(ctx context.Context, packageID uint, reason string, actor Actor) (*models.PackagePurchase, error) {
	var pkg models.PackagePurchase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&pkg, packageID).Error; err != nil {
			return notFound(err, ErrPackageNotFound)
		}
		if pkg.Status != models.PackageStatusActive {
			return detail(ErrPackageTerminal, "only ACTIVE packages can be cancelled, package %d is %s", pkg.ID, pkg.Status)
		}

		now := s.now()
		notes := appendNote(pkg.Notes, now, "cancelled by "+actor.Name(), reason)
		if err := tx.Model(&pkg).Updates(map[string]interface{}{
			"status":     models.PackageStatusCancelled,
			"notes":      notes,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}
		pkg.Status, pkg.Notes, pkg.UpdatedAt = models.PackageStatusCancelled, notes, now
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Package %d cancelled by %s", pkg.ID, actor.Name())
	return &pkg, nil
}

// ExpireOverdue marks every active package whose expiry has passed as
// EXPIRED and returns how many were changed.
func (s *PackageService) ExpireOverdue(ctx context.Context, actor Actor) (int, error) {
	now := s.now()
	expired := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var overdue []models.PackagePurchase
		if err := lockForUpdate(tx).
			Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.PackageStatusActive, now).
			Find(&overdue).Error; err != nil {
			return err
		}

		for _, pkg := range overdue {
			notes := appendNote(pkg.Notes, now, "expired by "+actor.Name(), "")
			res := tx.Model(&models.PackagePurchase{}).
				Where("id = ? AND status = ?", pkg.ID, models.PackageStatusActive).
				Updates(map[string]interface{}{
					"status":     models.PackageStatusExpired,
					"notes":      notes,
					"updated_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			expired += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	utils.LogInfo("Expired %d overdue packages", expired)
	return expired, nil
}

// List returns packages matching filter, newest first. page may be nil.
func (s *PackageService) List(ctx context.Context, filter PackageFilter, page *utils.Pagination) ([]models.PackagePurchase, error) {
	query := s.db.WithContext(ctx).Model(&models.PackagePurchase{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.ServiceID != 0 {
		query = query.Where("service_id = ?", filter.ServiceID)
	}
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, validationf("unknown package status %q", filter.Status)
		}
		query = query.Where("status = ?", filter.Status)
	}

	query, err := paginate(query, page)
	if err != nil {
		return nil, err
	}

	var pkgs []models.PackagePurchase
	err = query.Preload("Customer").Preload("Service").
		Order("purchased_at DESC, id DESC").
		Find(&pkgs).Error
	return pkgs, err
}

// Get returns one package with its usage history
func (s *PackageService) Get(ctx context.Context, packageID uint) (*models.PackagePurchase, error) {
	var pkg models.PackagePurchase
	err := s.db.WithContext(ctx).
		Preload("Customer").Preload("Service").
		Preload("Usages", func(db *gorm.DB) *gorm.DB { return db.Order("used_at, id") }).
		Preload("Adjustments", func(db *gorm.DB) *gorm.DB { return db.Order("adjusted_at, id") }).
		First(&pkg, packageID).Error
	if err != nil {
		return nil, notFound(err, ErrPackageNotFound)
	}
	return &pkg, nil
}

// ForCustomer returns the packages a customer can still draw sessions from
func (s *PackageService) ForCustomer(ctx context.Context, customerID uint) ([]models.PackagePurchase, error) {
	var pkgs []models.PackagePurchase
	err := s.db.WithContext(ctx).Preload("Service").
		Where("customer_id = ? AND status = ? AND remaining_count > 0", customerID, models.PackageStatusActive).
		Order("purchased_at, id").
		Find(&pkgs).Error
	return pkgs, err
}

// appendNote adds one timestamped audit line to notes
func appendNote(notes string, at time.Time, action, reason string) string {
	line := fmt.Sprintf("[%s] %s", at.Format("2006-01-02 15:04"), action)
	if reason = strings.TrimSpace(reason); reason != "" {
		line += ": " + reason
	}
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}
