package controllers

import (
	"strings"
	"time"

	"github.com/Govind-619/InfuseDesk/config"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/services"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
)

// CustomerRequest represents the request body for creating or updating a customer
type CustomerRequest struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Email        string `json:"email"`
	BirthDate    string `json:"birth_date"`
	Gender       string `json:"gender"`
	DiscountType string `json:"discount_type"`
	Memo         string `json:"memo"`
}

// toModel validates the request and builds the customer it describes
func (r CustomerRequest) toModel() (models.Customer, string) {
	name := utils.Title(strings.TrimSpace(r.Name))
	if ok, msg := utils.ValidateName(name); !ok {
		return models.Customer{}, msg
	}
	ok, phone := utils.ValidatePhone(r.Phone)
	if !ok {
		return models.Customer{}, phone
	}
	email := strings.ToLower(strings.TrimSpace(r.Email))
	if ok, msg := utils.ValidateEmail(email); !ok {
		return models.Customer{}, msg
	}

	discountType := models.DiscountTypeRegular
	if r.DiscountType != "" {
		discountType = models.CustomerDiscountType(strings.ToUpper(strings.TrimSpace(r.DiscountType)))
		if !discountType.Valid() {
			return models.Customer{}, "discount_type must be REGULAR, VIP, BIRTHDAY or EMPLOYEE"
		}
	}

	customer := models.Customer{
		Name:         name,
		Phone:        phone,
		Email:        email,
		Gender:       strings.ToUpper(strings.TrimSpace(r.Gender)),
		DiscountType: discountType,
		Memo:         utils.SanitizeString(r.Memo),
	}
	if r.BirthDate != "" {
		birth, err := time.Parse("2006-01-02", r.BirthDate)
		if err != nil {
			return models.Customer{}, "birth_date must be in YYYY-MM-DD format"
		}
		customer.BirthDate = &birth
	}
	return customer, ""
}

// CreateCustomer registers a new customer
func CreateCustomer(c *gin.Context) {
	utils.LogInfo("CreateCustomer called")

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid customer request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	customer, msg := req.toModel()
	if msg != "" {
		utils.LogError("Customer validation failed: %s", msg)
		utils.BadRequest(c, msg, nil)
		return
	}

	var existing int64
	if err := config.DB.Unscoped().Model(&models.Customer{}).Where("phone = ?", customer.Phone).Count(&existing).Error; err != nil {
		utils.LogError("Failed to check customer phone: %v", err)
		utils.InternalServerError(c, "Failed to create customer", nil)
		return
	}
	if existing > 0 {
		utils.Conflict(c, "A customer with this phone number already exists", nil)
		return
	}

	if err := config.DB.Create(&customer).Error; err != nil {
		utils.LogError("Failed to create customer: %v", err)
		utils.InternalServerError(c, "Failed to create customer", nil)
		return
	}
	utils.LogInfo("Customer %d created", customer.ID)
	utils.Created(c, "Customer created successfully", customer)
}

// ListCustomers lists customers, optionally searching by name or phone
func ListCustomers(c *gin.Context) {
	utils.LogInfo("ListCustomers called")
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Customer{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR phone LIKE ?", like, "%"+search+"%")
		utils.LogDebug("Searching customers for: %s", search)
	}
	if discountType := c.Query("discount_type"); discountType != "" {
		query = query.Where("discount_type = ?", strings.ToUpper(discountType))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count customers: %v", err)
		utils.InternalServerError(c, "Failed to fetch customers", nil)
		return
	}
	pagination.SetTotal(total)

	var customers []models.Customer
	if err := query.Order("name, id").Offset(pagination.Offset).Limit(pagination.Limit).Find(&customers).Error; err != nil {
		utils.LogError("Failed to fetch customers: %v", err)
		utils.InternalServerError(c, "Failed to fetch customers", nil)
		return
	}
	utils.SendPaginatedResponse(c, customers, pagination)
}

// GetCustomer returns one customer with the packages they can still use
func GetCustomer(c *gin.Context) {
	utils.LogInfo("GetCustomer called")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var customer models.Customer
	if err := config.DB.First(&customer, id).Error; err != nil {
		utils.LogError("Customer %d not found: %v", id, err)
		utils.NotFound(c, "Customer not found")
		return
	}

	pkgs, err := packageService.ForCustomer(c.Request.Context(), customer.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Customer retrieved successfully", gin.H{
		"customer":        customer,
		"active_packages": pkgs,
	})
}

// UpdateCustomer replaces a customer's details
func UpdateCustomer(c *gin.Context) {
	utils.LogInfo("UpdateCustomer called")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var customer models.Customer
	if err := config.DB.First(&customer, id).Error; err != nil {
		utils.NotFound(c, "Customer not found")
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	changes, msg := req.toModel()
	if msg != "" {
		utils.BadRequest(c, msg, nil)
		return
	}

	var existing int64
	if err := config.DB.Unscoped().Model(&models.Customer{}).Where("phone = ? AND id <> ?", changes.Phone, id).Count(&existing).Error; err != nil {
		utils.LogError("Failed to check customer phone: %v", err)
		utils.InternalServerError(c, "Failed to update customer", nil)
		return
	}
	if existing > 0 {
		utils.Conflict(c, "A customer with this phone number already exists", nil)
		return
	}

	customer.Name = changes.Name
	customer.Phone = changes.Phone
	customer.Email = changes.Email
	customer.BirthDate = changes.BirthDate
	customer.Gender = changes.Gender
	customer.DiscountType = changes.DiscountType
	customer.Memo = changes.Memo
	if err := config.DB.Save(&customer).Error; err != nil {
		utils.LogError("Failed to update customer %d: %v", id, err)
		utils.InternalServerError(c, "Failed to update customer", nil)
		return
	}
	utils.Success(c, "Customer updated successfully", customer)
}

// DeleteCustomer soft deletes a customer. Orders and packages are kept.
func DeleteCustomer(c *gin.Context) {
	utils.LogInfo("DeleteCustomer called")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	res := config.DB.Delete(&models.Customer{}, id)
	if res.Error != nil {
		utils.LogError("Failed to delete customer %d: %v", id, res.Error)
		utils.InternalServerError(c, "Failed to delete customer", nil)
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "Customer not found")
		return
	}
	utils.Success(c, "Customer deleted successfully", nil)
}

// ListCustomerPackages lists every package a customer has bought
func ListCustomerPackages(c *gin.Context) {
	utils.LogInfo("ListCustomerPackages called")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	pagination := utils.NewPagination(c)
	filter := services.PackageFilter{
		CustomerID: id,
		Status:     models.PackageStatus(strings.ToUpper(c.Query("status"))),
	}

	pkgs, err := packageService.List(c.Request.Context(), filter, pagination)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SendPaginatedResponse(c, pkgs, pagination)
}
