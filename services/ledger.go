package services

import (
	"time"

	"github.com/Govind-619/InfuseDesk/models"
	"gorm.io/gorm"
)

// issueOrderPackages issues the packages owed by every package-type line
// item of a completed order. order.Items must be loaded.
func issueOrderPackages(tx *gorm.DB, order models.Order, validity time.Duration) (int, error) {
	issued := 0
	for _, item := range order.Items {
		if !item.IsPackage() {
			continue
		}
		n, err := issuePackages(tx, order, item, validity)
		if err != nil {
			return issued, err
		}
		issued += n
	}
	return issued, nil
}

// issuePackages creates the package purchases owed for one completed line
// item that have not been created yet. It returns how many rows it created.
// Running it again for the same order never creates duplicates.
func issuePackages(tx *gorm.DB, order models.Order, item models.OrderItem, validity time.Duration) (int, error) {
	count, err := ParsePackageCount(item.PackageType)
	if err != nil {
		return 0, err
	}
	missing, err := missingPackages(tx, order, item)
	if err != nil || missing == 0 {
		return 0, err
	}

	purchasedAt := order.OrderDate
	if order.CompletedAt != nil {
		purchasedAt = *order.CompletedAt
	}
	var expiresAt *time.Time
	if validity > 0 {
		t := purchasedAt.Add(validity)
		expiresAt = &t
	}

	pkgs := make([]models.PackagePurchase, 0, missing)
	for i := 0; i < missing; i++ {
		pkgs = append(pkgs, models.PackagePurchase{
			CustomerID:     order.CustomerID,
			ServiceID:      item.ServiceID,
			OrderID:        order.ID,
			PackageType:    item.PackageType,
			TotalCount:     count,
			RemainingCount: count,
			Status:         models.PackageStatusActive,
			PurchasePrice:  item.TotalPrice / int64(item.Quantity),
			PurchasedAt:    purchasedAt,
			ExpiresAt:      expiresAt,
		})
	}
	if err := tx.Omit("Customer", "Service").Create(&pkgs).Error; err != nil {
		return 0, err
	}
	return missing, nil
}

// missingPackages is how many package purchases item still owes. Existing
// rows are matched on the (order, customer, service) triple.
func missingPackages(tx *gorm.DB, order models.Order, item models.OrderItem) (int, error) {
	var existing int64
	if err := tx.Model(&models.PackagePurchase{}).
		Where("order_id = ? AND customer_id = ? AND service_id = ?", order.ID, order.CustomerID, item.ServiceID).
		Count(&existing).Error; err != nil {
		return 0, err
	}
	if missing := item.Quantity - int(existing); missing > 0 {
		return missing, nil
	}
	return 0, nil
}
