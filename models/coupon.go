package models

import (
	"time"

	"gorm.io/gorm"
)

// DiscountKind says how a coupon's discount value is interpreted
type DiscountKind string

const (
	// DiscountPercent values are fractions in (0, 1]
	DiscountPercent DiscountKind = "PERCENT"
	// DiscountAmount values are flat currency amounts
	DiscountAmount DiscountKind = "AMOUNT"
)

// Valid reports whether k is a known discount kind
func (k DiscountKind) Valid() bool {
	switch k {
	case DiscountPercent, DiscountAmount:
		return true
	}
	return false
}

type Coupon struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Code          string         `gorm:"uniqueIndex;not null" json:"code"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	DiscountKind  DiscountKind   `gorm:"type:varchar(16);not null" json:"discount_kind"`
	DiscountValue float64        `gorm:"not null" json:"discount_value"`
	MinAmount     *int64         `json:"min_amount,omitempty"`
	MaxDiscount   *int64         `json:"max_discount,omitempty"`
	UsageLimit    *int           `json:"usage_limit,omitempty"`
	UsedCount     int            `gorm:"not null;default:0" json:"used_count"`
	ValidFrom     time.Time      `json:"valid_from"`
	ValidUntil    time.Time      `json:"valid_until"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// CouponAllocation is a coupon handed out to a specific customer
type CouponAllocation struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CouponID    uint       `gorm:"index;not null" json:"coupon_id"`
	CustomerID  uint       `gorm:"index;not null" json:"customer_id"`
	Customer    Customer   `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	AllocatedBy uint       `json:"allocated_by"`
	AllocatedAt time.Time  `json:"allocated_at"`
	IsUsed      bool       `json:"is_used"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
}

// CouponUsage records a coupon redeemed on an order
type CouponUsage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CouponID       uint      `gorm:"index;not null" json:"coupon_id"`
	CustomerID     uint      `gorm:"index;not null" json:"customer_id"`
	OrderID        uint      `gorm:"index;not null" json:"order_id"`
	DiscountAmount int64     `json:"discount_amount"`
	UsedAt         time.Time `json:"used_at"`
}
