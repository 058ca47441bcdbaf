package services

import (
	"math"

	"github.com/Govind-619/InfuseDesk/models"
)

// PolicyEntry describes the discount a customer classification earns
type PolicyEntry struct {
	Rate       float64
	Combinable bool
	// Reason explains why the discount cannot be stacked with a coupon
	Reason string
}

// DiscountPolicy maps each customer classification to its discount rule
type DiscountPolicy map[models.CustomerDiscountType]PolicyEntry

// DefaultDiscountPolicy is the clinic's standing customer discount table
var DefaultDiscountPolicy = DiscountPolicy{
	models.DiscountTypeRegular: {Rate: 0, Combinable: true},
	models.DiscountTypeVIP: {
		Rate:   0.10,
		Reason: "VIP discount cannot be combined with coupons",
	},
	models.DiscountTypeBirthday: {
		Rate:   0.10,
		Reason: "birthday discount cannot be combined with coupons",
	},
	models.DiscountTypeEmployee: {
		Rate:   0.20,
		Reason: "employee discount cannot be combined with coupons",
	},
}

// CombineResult says whether a coupon may stack on a customer discount
type CombineResult struct {
	CanCombine bool   `json:"can_combine"`
	Reason     string `json:"reason,omitempty"`
}

// CanCombineWithCustomerDiscount looks up whether a coupon may be used on top
// of the discount of classification t. Unknown classifications are combinable.
func (p DiscountPolicy) CanCombineWithCustomerDiscount(t models.CustomerDiscountType) CombineResult {
	entry, ok := p[t]
	if !ok || entry.Combinable {
		return CombineResult{CanCombine: true}
	}
	return CombineResult{CanCombine: false, Reason: entry.Reason}
}

// CustomerDiscount returns the rate and amount classification t earns on amount
func (p DiscountPolicy) CustomerDiscount(t models.CustomerDiscountType, amount int64) (float64, int64) {
	entry, ok := p[t]
	if !ok || entry.Rate <= 0 {
		return 0, 0
	}
	discount := int64(math.Round(float64(amount) * entry.Rate))
	if discount > amount {
		discount = amount
	}
	return entry.Rate, discount
}
