package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the access level of a staff account
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff:
		return true
	}
	return false
}

// User represents a staff member of the clinic who can sign in to the back office
type User struct {
	gorm.Model
	Username    string     `gorm:"uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `json:"-"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone"`
	Role        Role       `gorm:"type:varchar(16);not null;default:'STAFF'" json:"role"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	GoogleID    *string    `gorm:"uniqueIndex" json:"-"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// IsAdmin reports whether the user has administrative rights
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// BlacklistedToken holds JWTs revoked by logout until they expire
type BlacklistedToken struct {
	gorm.Model
	Token     string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
}

// CustomerDiscountType is the discount classification of a customer
type CustomerDiscountType string

const (
	DiscountTypeRegular  CustomerDiscountType = "REGULAR"
	DiscountTypeVIP      CustomerDiscountType = "VIP"
	DiscountTypeBirthday CustomerDiscountType = "BIRTHDAY"
	DiscountTypeEmployee CustomerDiscountType = "EMPLOYEE"
)

// Valid reports whether t is a known discount classification
func (t CustomerDiscountType) Valid() bool {
	switch t {
	case DiscountTypeRegular, DiscountTypeVIP, DiscountTypeBirthday, DiscountTypeEmployee:
		return true
	}
	return false
}

// Customer is a client of the clinic
type Customer struct {
	gorm.Model
	Name         string               `gorm:"not null" json:"name"`
	Phone        string               `gorm:"uniqueIndex;not null" json:"phone"`
	Email        string               `json:"email"`
	BirthDate    *time.Time           `json:"birth_date,omitempty"`
	Gender       string               `json:"gender"`
	DiscountType CustomerDiscountType `gorm:"type:varchar(16);not null;default:'REGULAR'" json:"discount_type"`
	Memo         string               `json:"memo"`
}

// Service is a treatment offered by the clinic, e.g. an IV drip
type Service struct {
	gorm.Model
	Name            string `gorm:"not null" json:"name"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	Price           int64  `gorm:"not null" json:"price"`
	DurationMinutes int    `json:"duration_minutes"`
	IsActive        bool   `gorm:"default:true" json:"is_active"`
}

// Visit records a customer coming in to the clinic
type Visit struct {
	gorm.Model
	CustomerID uint      `gorm:"index;not null" json:"customer_id"`
	Customer   Customer  `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	StaffID    uint      `json:"staff_id"`
	VisitDate  time.Time `gorm:"index" json:"visit_date"`
	Purpose    string    `json:"purpose"`
	Notes      string    `json:"notes"`
}

// MonthlyNote is the operational note kept for one calendar month
type MonthlyNote struct {
	gorm.Model
	Year     int    `gorm:"uniqueIndex:idx_monthly_notes_period;not null" json:"year"`
	Month    int    `gorm:"uniqueIndex:idx_monthly_notes_period;not null" json:"month"`
	Content  string `json:"content"`
	AuthorID uint   `json:"author_id"`
}

// All lists every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&BlacklistedToken{},
		&Customer{},
		&Service{},
		&Visit{},
		&MonthlyNote{},
		&Coupon{},
		&CouponAllocation{},
		&CouponUsage{},
		&Order{},
		&OrderItem{},
		&PackagePurchase{},
		&PackageUsage{},
		&PackageAdjustment{},
		&DiscountApprovalRequest{},
	}
}
