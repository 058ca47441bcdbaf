package services

import (
	"fmt"
	"math"
	"time"

	"github.com/Govind-619/InfuseDesk/models"
)

// CouponValidation is the outcome of checking a coupon against an order amount
type CouponValidation struct {
	Valid          bool   `json:"valid"`
	Error          string `json:"error,omitempty"`
	DiscountAmount int64  `json:"discount_amount,omitempty"`
}

// ValidateCoupon checks whether coupon may be used on an order of
// orderAmount at time now. Checks run in a fixed order and the first failure
// is reported.
func ValidateCoupon(coupon *models.Coupon, orderAmount int64, now time.Time) CouponValidation {
	switch {
	case !coupon.IsActive:
		return CouponValidation{Error: "coupon is not active"}
	case now.Before(coupon.ValidFrom):
		return CouponValidation{Error: fmt.Sprintf("coupon is not valid until %s", coupon.ValidFrom.Format("2006-01-02"))}
	case now.After(coupon.ValidUntil):
		return CouponValidation{Error: fmt.Sprintf("coupon expired on %s", coupon.ValidUntil.Format("2006-01-02"))}
	case coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit:
		return CouponValidation{Error: "coupon usage limit reached"}
	case coupon.MinAmount != nil && orderAmount < *coupon.MinAmount:
		return CouponValidation{Error: fmt.Sprintf("order amount must be at least %d to use this coupon", *coupon.MinAmount)}
	}

	return CouponValidation{Valid: true, DiscountAmount: CalculateCouponDiscount(coupon, orderAmount)}
}

// CalculateCouponDiscount returns the discount coupon gives on orderAmount.
// The result never exceeds the order amount.
func CalculateCouponDiscount(coupon *models.Coupon, orderAmount int64) int64 {
	var discount int64
	switch coupon.DiscountKind {
	case models.DiscountPercent:
		discount = int64(math.Round(float64(orderAmount) * coupon.DiscountValue))
		if coupon.MaxDiscount != nil && *coupon.MaxDiscount > 0 && discount > *coupon.MaxDiscount {
			discount = *coupon.MaxDiscount
		}
	case models.DiscountAmount:
		discount = int64(math.Round(coupon.DiscountValue))
	default:
		return 0
	}

	if discount > orderAmount {
		discount = orderAmount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// CheckCouponDefinition enforces the invariants of a coupon before it is stored
func CheckCouponDefinition(coupon *models.Coupon) error {
	if coupon.Code == "" {
		return validationf("coupon code is required")
	}
	switch coupon.DiscountKind {
	case models.DiscountPercent:
		if coupon.DiscountValue <= 0 || coupon.DiscountValue > 1 {
			return validationf("percent discount value must be a fraction in (0, 1]")
		}
	case models.DiscountAmount:
		if coupon.DiscountValue <= 0 {
			return validationf("amount discount value must be positive")
		}
	default:
		return validationf("discount kind must be PERCENT or AMOUNT")
	}
	if coupon.MinAmount != nil && *coupon.MinAmount < 0 {
		return validationf("minimum amount cannot be negative")
	}
	if coupon.MaxDiscount != nil && *coupon.MaxDiscount <= 0 {
		return validationf("maximum discount must be positive")
	}
	if coupon.UsageLimit != nil && *coupon.UsageLimit <= 0 {
		return validationf("usage limit must be positive")
	}
	if coupon.ValidUntil.Before(coupon.ValidFrom) {
		return validationf("valid_until must not be before valid_from")
	}
	return nil
}
