package models

import "time"

// ApprovalStatus is the review state of a discount approval request
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// Valid reports whether s is a known approval status
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// ServiceLine is one service line of the order the request was filed for
type ServiceLine struct {
	ServiceID   uint   `json:"service_id"`
	ServiceName string `json:"service_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	TotalPrice  int64  `json:"total_price"`
	PackageType string `json:"package_type,omitempty"`
}

// DiscountSource names where a discount rule came from
type DiscountSource string

const (
	DiscountSourceCustomer DiscountSource = "CUSTOMER"
	DiscountSourceCoupon   DiscountSource = "COUPON"
)

// AppliedDiscount is one discount rule found to apply to an order
type AppliedDiscount struct {
	Source DiscountSource `json:"source"`
	Code   string         `json:"code"`
	Rate   float64        `json:"rate,omitempty"`
	Amount int64          `json:"amount"`
}

// DiscountApprovalRequest holds a discount conflict awaiting a reviewer's decision
type DiscountApprovalRequest struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	CustomerID       uint              `gorm:"index;not null" json:"customer_id"`
	Customer         Customer          `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	OrderID          *uint             `gorm:"index" json:"order_id,omitempty"`
	ServiceDetails   []ServiceLine     `gorm:"serializer:json;type:text" json:"service_details"`
	AppliedDiscounts []AppliedDiscount `gorm:"serializer:json;type:text" json:"applied_discounts"`
	OriginalAmount   int64             `json:"original_amount"`
	DiscountAmount   int64             `json:"discount_amount"`
	FinalAmount      int64             `json:"final_amount"`
	ConflictReason   string            `gorm:"not null" json:"conflict_reason"`
	StaffNote        string            `json:"staff_note"`
	RequestedBy      uint              `gorm:"index;not null" json:"requested_by"`
	Status           ApprovalStatus    `gorm:"type:varchar(16);index;not null" json:"status"`
	RequestedAt      time.Time         `gorm:"index" json:"requested_at"`
	ReviewedBy       *uint             `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time        `json:"reviewed_at,omitempty"`
	ReviewNote       string            `json:"review_note,omitempty"`
}
