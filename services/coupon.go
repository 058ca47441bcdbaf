package services

import (
	"context"
	"strings"
	"time"

	"github.com/Govind-619/InfuseDesk/events"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"gorm.io/gorm"
)

// CouponCheck is the answer to "can this code be used on this order"
type CouponCheck struct {
	CouponValidation
	Coupon  *models.Coupon `json:"coupon,omitempty"`
	Combine *CombineResult `json:"combine,omitempty"`
}

// CouponService manages coupons, their allocation to customers and redemption history
type CouponService struct {
	base
	policy DiscountPolicy
}

func NewCouponService(db *gorm.DB, pub events.Publisher) *CouponService {
	return &CouponService{base: newBase(db, pub), policy: DefaultDiscountPolicy}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create stores a new coupon
func (s *CouponService) Create(ctx context.Context, coupon *models.Coupon) error {
	coupon.Code = normalizeCode(coupon.Code)
	coupon.UsedCount = 0
	if err := CheckCouponDefinition(coupon); err != nil {
		return err
	}

	db := s.db.WithContext(ctx)
	var taken int64
	if err := db.Model(&models.Coupon{}).Unscoped().Where("code = ?", coupon.Code).Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return detail(ErrCouponCodeTaken, "coupon code %s already exists", coupon.Code)
	}
	active := coupon.IsActive
	if err := db.Create(coupon).Error; err != nil {
		return err
	}
	// a false is_active is dropped by the column default on insert
	if !active {
		if err := db.Model(coupon).Update("is_active", false).Error; err != nil {
			return err
		}
		coupon.IsActive = false
	}
	utils.LogInfo("Coupon %s created", coupon.Code)
	return nil
}

// Update replaces the editable fields of a coupon. The used count is kept.
func (s *CouponService) Update(ctx context.Context, id uint, changes models.Coupon) (*models.Coupon, error) {
	var coupon models.Coupon
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&coupon, id).Error; err != nil {
			return notFound(err, ErrCouponNotFound)
		}

		code := normalizeCode(changes.Code)
		if code != "" && code != coupon.Code {
			var taken int64
			if err := tx.Model(&models.Coupon{}).Unscoped().Where("code = ? AND id <> ?", code, coupon.ID).Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return detail(ErrCouponCodeTaken, "coupon code %s already exists", code)
			}
			coupon.Code = code
		}
		coupon.Name = changes.Name
		coupon.Description = changes.Description
		coupon.DiscountKind = changes.DiscountKind
		coupon.DiscountValue = changes.DiscountValue
		coupon.MinAmount = changes.MinAmount
		coupon.MaxDiscount = changes.MaxDiscount
		coupon.UsageLimit = changes.UsageLimit
		coupon.ValidFrom = changes.ValidFrom
		coupon.ValidUntil = changes.ValidUntil
		coupon.IsActive = changes.IsActive

		if err := CheckCouponDefinition(&coupon); err != nil {
			return err
		}
		return tx.Save(&coupon).Error
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Coupon %s updated", coupon.Code)
	return &coupon, nil
}

// Delete soft deletes a coupon. Past redemptions keep referring to it.
func (s *CouponService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Coupon{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCouponNotFound
	}
	utils.LogInfo("Coupon %d deleted", id)
	return nil
}

// Get returns one coupon
func (s *CouponService) Get(ctx context.Context, id uint) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := s.db.WithContext(ctx).First(&coupon, id).Error; err != nil {
		return nil, notFound(err, ErrCouponNotFound)
	}
	return &coupon, nil
}

// List returns coupons, newest first. activeOnly hides disabled and expired coupons.
func (s *CouponService) List(ctx context.Context, activeOnly bool, page *utils.Pagination) ([]models.Coupon, error) {
	query := s.db.WithContext(ctx).Model(&models.Coupon{})
	if activeOnly {
		now := s.now()
		query = query.Where("is_active = ? AND valid_from <= ? AND valid_until >= ?", true, now, now)
	}
	query, err := paginate(query, page)
	if err != nil {
		return nil, err
	}
	var coupons []models.Coupon
	err = query.Order("created_at DESC, id DESC").Find(&coupons).Error
	return coupons, err
}

// Validate checks a coupon code against an order amount. When customerID is
// set the answer also says whether the coupon stacks on the customer's discount.
func (s *CouponService) Validate(ctx context.Context, code string, orderAmount int64, customerID uint) (*CouponCheck, error) {
	if orderAmount < 0 {
		return nil, validationf("order amount cannot be negative")
	}
	code = normalizeCode(code)
	if code == "" {
		return nil, validationf("coupon code is required")
	}

	db := s.db.WithContext(ctx)
	var coupon models.Coupon
	if err := db.Where("code = ?", code).First(&coupon).Error; err != nil {
		return nil, notFound(err, ErrCouponNotFound)
	}

	check := &CouponCheck{CouponValidation: ValidateCoupon(&coupon, orderAmount, s.now()), Coupon: &coupon}
	if customerID != 0 {
		var customer models.Customer
		if err := db.First(&customer, customerID).Error; err != nil {
			return nil, notFound(err, ErrCustomerNotFound)
		}
		combine := s.policy.CanCombineWithCustomerDiscount(customer.DiscountType)
		check.Combine = &combine
	}
	return check, nil
}

// Allocate hands a coupon to each of customerIDs
func (s *CouponService) Allocate(ctx context.Context, couponID uint, customerIDs []uint, actor Actor) ([]models.CouponAllocation, error) {
	ids := uniqueIDs(customerIDs)
	if len(ids) == 0 {
		return nil, validationf("at least one customer_id is required")
	}

	var allocs []models.CouponAllocation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var coupon models.Coupon
		if err := tx.First(&coupon, couponID).Error; err != nil {
			return notFound(err, ErrCouponNotFound)
		}

		var found int64
		if err := tx.Model(&models.Customer{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
			return err
		}
		if int(found) != len(ids) {
			return detail(ErrCustomerNotFound, "one or more customers do not exist")
		}

		now := s.now()
		for _, id := range ids {
			allocs = append(allocs, models.CouponAllocation{
				CouponID:    coupon.ID,
				CustomerID:  id,
				AllocatedBy: actor.ID,
				AllocatedAt: now,
			})
		}
		return tx.Omit("Customer").Create(&allocs).Error
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Coupon %d allocated to %d customers by %s", couponID, len(allocs), actor.Name())
	return allocs, nil
}

// Allocations lists who a coupon was handed to
func (s *CouponService) Allocations(ctx context.Context, couponID uint) ([]models.CouponAllocation, error) {
	if _, err := s.Get(ctx, couponID); err != nil {
		return nil, err
	}
	var allocs []models.CouponAllocation
	err := s.db.WithContext(ctx).Preload("Customer").
		Where("coupon_id = ?", couponID).
		Order("allocated_at DESC, id DESC").
		Find(&allocs).Error
	return allocs, err
}

// CouponUsageReport is a coupon's redemption history
type CouponUsageReport struct {
	Usages        []models.CouponUsage `json:"usages"`
	TotalDiscount int64                `json:"total_discount"`
	Count         int                  `json:"count"`
}

// Usages lists the orders a coupon was redeemed on, optionally within [from, to)
func (s *CouponService) Usages(ctx context.Context, couponID uint, from, to time.Time) (*CouponUsageReport, error) {
	if _, err := s.Get(ctx, couponID); err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).Where("coupon_id = ?", couponID)
	if !from.IsZero() {
		query = query.Where("used_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("used_at < ?", to)
	}

	report := &CouponUsageReport{}
	if err := query.Order("used_at DESC, id DESC").Find(&report.Usages).Error; err != nil {
		return nil, err
	}
	for _, u := range report.Usages {
		report.TotalDiscount += u.DiscountAmount
	}
	report.Count = len(report.Usages)
	return report, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
