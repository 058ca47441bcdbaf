package services

import (
	"time"

	"github.com/Govind-619/InfuseDesk/models"
)

// PricedOrder is the breakdown of discounts computed for an order
type PricedOrder struct {
	Subtotal         int64                    `json:"subtotal"`
	CustomerDiscount int64                    `json:"customer_discount"`
	CouponDiscount   int64                    `json:"coupon_discount"`
	FinalAmount      int64                    `json:"final_amount"`
	Applied          []models.AppliedDiscount `json:"applied"`

	// Conflict is set when the coupon and the customer discount may not stack.
	// In that case only the customer discount is included in FinalAmount.
	Conflict       bool   `json:"conflict"`
	ConflictReason string `json:"conflict_reason,omitempty"`
	// CouponSavings is the discount the coupon would have given on its own
	CouponSavings int64 `json:"coupon_savings,omitempty"`
}

// PriceOrder applies the customer discount for customerType and, when given,
// coupon to subtotal. A coupon that fails validation yields an error carrying
// the validator's reason.
func (p DiscountPolicy) PriceOrder(customerType models.CustomerDiscountType, subtotal int64, coupon *models.Coupon, now time.Time) (PricedOrder, error) {
	priced := PricedOrder{Subtotal: subtotal}

	rate, customerDiscount := p.CustomerDiscount(customerType, subtotal)
	if customerDiscount > 0 {
		priced.CustomerDiscount = customerDiscount
		priced.Applied = append(priced.Applied, models.AppliedDiscount{
			Source: models.DiscountSourceCustomer,
			Code:   string(customerType),
			Rate:   rate,
			Amount: customerDiscount,
		})
	}

	if coupon != nil {
		combine := p.CanCombineWithCustomerDiscount(customerType)
		base := subtotal - priced.CustomerDiscount
		if !combine.CanCombine && customerDiscount > 0 {
			// the coupon is judged on the undiscounted amount so the reviewer
			// sees what it would have been worth
			base = subtotal
		}

		result := ValidateCoupon(coupon, base, now)
		if !result.Valid {
			return PricedOrder{}, detail(ErrCouponInvalid, "coupon %s cannot be applied: %s", coupon.Code, result.Error)
		}

		applied := models.AppliedDiscount{
			Source: models.DiscountSourceCoupon,
			Code:   coupon.Code,
			Amount: result.DiscountAmount,
		}
		if coupon.DiscountKind == models.DiscountPercent {
			applied.Rate = coupon.DiscountValue
		}
		priced.Applied = append(priced.Applied, applied)

		if !combine.CanCombine && customerDiscount > 0 {
			priced.Conflict = true
			priced.ConflictReason = combine.Reason
			priced.CouponSavings = result.DiscountAmount
		} else {
			priced.CouponDiscount = result.DiscountAmount
		}
	}

	priced.FinalAmount = subtotal - priced.CustomerDiscount - priced.CouponDiscount
	if priced.FinalAmount < 0 {
		priced.FinalAmount = 0
	}
	return priced, nil
}
