package services

import (
	"context"
	"time"

	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"gorm.io/gorm"
)

// SalesSummary aggregates completed orders over a period
type SalesSummary struct {
	TotalSales        int   `json:"total_sales"`
	TotalRevenue      int64 `json:"total_revenue"`
	TotalItems        int   `json:"total_items"`
	TotalCustomers    int   `json:"total_customers"`
	CustomerDiscounts int64 `json:"customer_discounts"`
	CouponDiscounts   int64 `json:"coupon_discounts"`
	NetRevenue        int64 `json:"net_revenue"`
	AverageOrderValue int64 `json:"average_order_value"`
	PackagesSold      int   `json:"packages_sold"`
	SessionsUsed      int   `json:"sessions_used"`
}

// SalesRow is one completed order in a sales report
type SalesRow struct {
	OrderID       uint      `json:"order_id"`
	CompletedAt   time.Time `json:"completed_at"`
	CustomerName  string    `json:"customer_name"`
	Items         int       `json:"items"`
	Total         int64     `json:"total"`
	Discount      int64     `json:"discount"`
	NetAmount     int64     `json:"net_amount"`
	PaymentMethod string    `json:"payment_mode"`
	PaymentStatus string    `json:"payment_status"`
}

// ServiceUsage counts package sessions consumed per service
type ServiceUsage struct {
	ServiceID   uint   `json:"service_id"`
	ServiceName string `json:"service_name"`
	Sessions    int    `json:"sessions"`
}

// SalesReport is the sales report for one period
type SalesReport struct {
	Period       utils.Period   `json:"period"`
	Summary      SalesSummary   `json:"summary"`
	Sales        []SalesRow     `json:"sales"`
	PackageUsage []ServiceUsage `json:"package_usage"`
}

// Dashboard is the back office landing page summary
type Dashboard struct {
	ActivePackages    int64 `json:"active_packages"`
	ExpiringPackages  int64 `json:"expiring_packages"`
	PendingApprovals  int64 `json:"pending_approvals"`
	OpenOrders        int64 `json:"open_orders"`
	TodayVisits       int64 `json:"today_visits"`
	TodayRevenue      int64 `json:"today_revenue"`
	TodayCompleted    int64 `json:"today_completed"`
	ActiveCoupons     int64 `json:"active_coupons"`
	TotalCustomers    int64 `json:"total_customers"`
	SessionsUsedToday int64 `json:"sessions_used_today"`
}

// ReportService reads aggregates over completed orders and usage history
type ReportService struct {
	db  *gorm.DB
	now Clock
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db, now: time.Now}
}

// SetClock replaces the time source, for tests
func (s *ReportService) SetClock(c Clock) {
	s.now = c
}

// Sales builds the sales report for orders completed within period
func (s *ReportService) Sales(ctx context.Context, period utils.Period) (*SalesReport, error) {
	db := s.db.WithContext(ctx)

	var orders []models.Order
	if err := db.Preload("Customer").Preload("Items").
		Where("status = ? AND completed_at >= ? AND completed_at < ?", models.OrderStatusCompleted, period.Start, period.End).
		Order("completed_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}

	report := &SalesReport{Period: period, Sales: make([]SalesRow, 0, len(orders))}
	customers := make(map[uint]bool)
	for _, o := range orders {
		items := 0
		for _, item := range o.Items {
			items += item.Quantity
			if item.IsPackage() {
				report.Summary.PackagesSold += item.Quantity
			}
		}

		report.Summary.TotalSales++
		report.Summary.TotalRevenue += o.TotalAmount
		report.Summary.TotalItems += items
		report.Summary.CustomerDiscounts += o.CustomerDiscount
		report.Summary.CouponDiscounts += o.CouponDiscount
		report.Summary.NetRevenue += o.FinalAmount
		customers[o.CustomerID] = true

		row := SalesRow{
			OrderID:       o.ID,
			CustomerName:  o.Customer.Name,
			Items:         items,
			Total:         o.TotalAmount,
			Discount:      o.DiscountTotal(),
			NetAmount:     o.FinalAmount,
			PaymentMethod: o.PaymentMethod,
			PaymentStatus: string(o.PaymentStatus),
		}
		if o.CompletedAt != nil {
			row.CompletedAt = *o.CompletedAt
		}
		report.Sales = append(report.Sales, row)
	}
	report.Summary.TotalCustomers = len(customers)
	if report.Summary.TotalSales > 0 {
		report.Summary.AverageOrderValue = report.Summary.NetRevenue / int64(report.Summary.TotalSales)
	}

	if err := db.Model(&models.PackageUsage{}).
		Select("package_purchases.service_id AS service_id, services.name AS service_name, SUM(package_usages.used_count) AS sessions").
		Joins("JOIN package_purchases ON package_purchases.id = package_usages.package_purchase_id").
		Joins("JOIN services ON services.id = package_purchases.service_id").
		Where("package_usages.used_at >= ? AND package_usages.used_at < ?", period.Start, period.End).
		Group("package_purchases.service_id, services.name").
		Order("sessions DESC").
		Scan(&report.PackageUsage).Error; err != nil {
		return nil, err
	}
	if report.PackageUsage == nil {
		report.PackageUsage = []ServiceUsage{}
	}
	for _, u := range report.PackageUsage {
		report.Summary.SessionsUsed += u.Sessions
	}
	return report, nil
}

// Dashboard counts what needs attention today
func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	var d Dashboard
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&d.ActivePackages, db.Model(&models.PackagePurchase{}).Where("status = ?", models.PackageStatusActive)},
		{&d.ExpiringPackages, db.Model(&models.PackagePurchase{}).
			Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.PackageStatusActive, today.AddDate(0, 0, 7))},
		{&d.PendingApprovals, db.Model(&models.DiscountApprovalRequest{}).Where("status = ?", models.ApprovalPending)},
		{&d.OpenOrders, db.Model(&models.Order{}).Where("status IN ?", []models.OrderStatus{models.OrderStatusPending, models.OrderStatusInProgress})},
		{&d.TodayVisits, db.Model(&models.Visit{}).Where("visit_date >= ? AND visit_date < ?", today, tomorrow)},
		{&d.TodayCompleted, db.Model(&models.Order{}).
			Where("status = ? AND completed_at >= ? AND completed_at < ?", models.OrderStatusCompleted, today, tomorrow)},
		{&d.ActiveCoupons, db.Model(&models.Coupon{}).Where("is_active = ? AND valid_from <= ? AND valid_until >= ?", true, now, now)},
		{&d.TotalCustomers, db.Model(&models.Customer{})},
		{&d.SessionsUsedToday, db.Model(&models.PackageUsage{}).
			Where("used_at >= ? AND used_at < ?", today, tomorrow)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	var revenue struct{ Total int64 }
	if err := db.Model(&models.Order{}).Select("COALESCE(SUM(final_amount), 0) AS total").
		Where("status = ? AND completed_at >= ? AND completed_at < ?", models.OrderStatusCompleted, today, tomorrow).
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	d.TodayRevenue = revenue.Total
	return &d, nil
}
