package models

import "time"

// PackageStatus is the lifecycle state of a package purchase
type PackageStatus string

const (
	PackageStatusActive    PackageStatus = "ACTIVE"
	PackageStatusCompleted PackageStatus = "COMPLETED"
	PackageStatusCancelled PackageStatus = "CANCELLED"
	PackageStatusExpired   PackageStatus = "EXPIRED"
)

// Valid reports whether s is a known package status
func (s PackageStatus) Valid() bool {
	switch s {
	case PackageStatusActive, PackageStatusCompleted, PackageStatusCancelled, PackageStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further mutation is allowed in status s
func (s PackageStatus) IsTerminal() bool {
	switch s {
	case PackageStatusCancelled, PackageStatusExpired:
		return true
	case PackageStatusActive, PackageStatusCompleted:
		return false
	}
	return true
}

// StatusForRemaining returns the status a non-terminal package must carry
// for the given remaining count.
func StatusForRemaining(remaining int) PackageStatus {
	if remaining == 0 {
		return PackageStatusCompleted
	}
	return PackageStatusActive
}

// PackagePurchase is one prepaid bundle of sessions of a service for a customer
type PackagePurchase struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	CustomerID     uint                `gorm:"index:idx_package_origin;not null" json:"customer_id"`
	Customer       Customer            `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	ServiceID      uint                `gorm:"index:idx_package_origin;not null" json:"service_id"`
	Service        Service             `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	OrderID        uint                `gorm:"index:idx_package_origin;not null" json:"order_id"`
	PackageType    string              `json:"package_type"`
	TotalCount     int                 `gorm:"not null" json:"total_count"`
	RemainingCount int                 `gorm:"not null" json:"remaining_count"`
	Status         PackageStatus       `gorm:"type:varchar(16);index;not null" json:"status"`
	PurchasePrice  int64               `json:"purchase_price"`
	PurchasedAt    time.Time           `json:"purchased_at"`
	ExpiresAt      *time.Time          `json:"expires_at,omitempty"`
	Notes          string              `json:"notes"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Usages         []PackageUsage      `json:"usages,omitempty" gorm:"foreignKey:PackagePurchaseID"`
	Adjustments    []PackageAdjustment `json:"adjustments,omitempty" gorm:"foreignKey:PackagePurchaseID"`
}

// UsedCount is the number of sessions already consumed
func (p PackagePurchase) UsedCount() int {
	return p.TotalCount - p.RemainingCount
}

// PackageUsage is one session consumed from a package during an order.
// Usage rows are immutable and each debits exactly one unit.
type PackageUsage struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	PackagePurchaseID uint      `gorm:"index;not null" json:"package_purchase_id"`
	OrderID           uint      `gorm:"index;not null" json:"order_id"`
	OrderItemID       *uint     `json:"order_item_id,omitempty"`
	UsedCount         int       `gorm:"not null;default:1" json:"used_count"`
	UsedBy            uint      `json:"used_by"`
	UsedAt            time.Time `json:"used_at"`
}

// AdjustmentAction is the direction of a manual correction
type AdjustmentAction string

const (
	AdjustmentUse     AdjustmentAction = "use"
	AdjustmentRestore AdjustmentAction = "restore"
)

// PackageAdjustment is an operator correction of a package's remaining
// count made outside the session flow. Count is always positive.
//
// For every package, TotalCount - RemainingCount equals the sum of its
// usage rows plus the Consumed value of its adjustments.
type PackageAdjustment struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	PackagePurchaseID uint             `gorm:"index;not null" json:"package_purchase_id"`
	Action            AdjustmentAction `gorm:"type:varchar(16);not null" json:"action"`
	Count             int              `gorm:"not null" json:"count"`
	Note              string           `json:"note,omitempty"`
	AdjustedBy        uint             `json:"adjusted_by"`
	AdjustedAt        time.Time        `json:"adjusted_at"`
}

// Consumed is the number of sessions the correction took from the
// package, negative for a restore
func (a PackageAdjustment) Consumed() int {
	if a.Action == AdjustmentRestore {
		return -a.Count
	}
	return a.Count
}
