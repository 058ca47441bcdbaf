package models

import (
	"strings"
	"time"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusInProgress || next == OrderStatusCompleted || next == OrderStatusCancelled
	case OrderStatusInProgress:
		return next == OrderStatusCompleted || next == OrderStatusCancelled
	case OrderStatusCompleted, OrderStatusCancelled:
		return false
	}
	return false
}

// PaymentStatus tracks whether an order has been paid for
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

// SinglePackageType marks a line item that is not a package purchase
const SinglePackageType = "single"

// SessionInfo summarises the package session consumed during an order
type SessionInfo struct {
	PackagePurchaseID uint      `json:"package_purchase_id"`
	ServiceName       string    `json:"service_name"`
	PackageType       string    `json:"package_type"`
	TotalCount        int       `json:"total_count"`
	UsedInSession     int       `json:"used_in_session"`
	RemainingCount    int       `json:"remaining_count"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Order struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	CustomerID       uint          `gorm:"index;not null" json:"customer_id"`
	Customer         Customer      `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	StaffID          uint          `json:"staff_id"`
	Status           OrderStatus   `gorm:"type:varchar(16);index;not null" json:"status"`
	OrderDate        time.Time     `gorm:"index" json:"order_date"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	TotalAmount      int64         `json:"total_amount"`
	CustomerDiscount int64         `json:"customer_discount"`
	CouponID         *uint         `json:"coupon_id,omitempty"`
	CouponCode       string        `json:"coupon_code,omitempty"`
	CouponDiscount   int64         `json:"coupon_discount"`
	FinalAmount      int64         `json:"final_amount"`
	PaymentMethod    string        `json:"payment_method"`
	PaymentStatus    PaymentStatus `gorm:"type:varchar(16);default:'UNPAID'" json:"payment_status"`
	RazorpayOrderID  string        `json:"razorpay_order_id,omitempty"`
	Notes            string        `json:"notes"`
	SessionInfo      *SessionInfo  `gorm:"serializer:json;type:text" json:"session_info,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	Items            []OrderItem   `json:"items" gorm:"foreignKey:OrderID"`
}

// DiscountTotal is the sum of every discount applied to the order
func (o Order) DiscountTotal() int64 {
	return o.CustomerDiscount + o.CouponDiscount
}

type OrderItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     uint    `gorm:"index;not null" json:"order_id"`
	ServiceID   uint    `gorm:"not null" json:"service_id"`
	Service     Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	Quantity    int     `json:"quantity"`
	UnitPrice   int64   `json:"unit_price"`
	TotalPrice  int64   `json:"total_price"`
	PackageType string  `json:"package_type,omitempty"`
}

// IsPackage reports whether the line item sells a prepaid package
func (i OrderItem) IsPackage() bool {
	tag := strings.TrimSpace(i.PackageType)
	return tag != "" && tag != SinglePackageType
}
