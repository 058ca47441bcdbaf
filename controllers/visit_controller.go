package controllers

import (
	"time"

	"github.com/Govind-619/InfuseDesk/config"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
)

// VisitRequest represents the request body for recording a visit
type VisitRequest struct {
	CustomerID uint       `json:"customer_id" binding:"required"`
	VisitDate  *time.Time `json:"visit_date"`
	Purpose    string     `json:"purpose"`
	Notes      string     `json:"notes"`
}

// CreateVisit records a customer visit. The visit date defaults to now.
func CreateVisit(c *gin.Context) {
	utils.LogInfo("CreateVisit called")
	user, ok := currentUser(c)
	if !ok {
		utils.Unauthorized(c, utils.ErrUnauthorized)
		return
	}

	var req VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid visit request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var customer models.Customer
	if err := config.DB.First(&customer, req.CustomerID).Error; err != nil {
		utils.NotFound(c, "Customer not found")
		return
	}

	visit := models.Visit{
		CustomerID: customer.ID,
		StaffID:    user.ID,
		VisitDate:  time.Now(),
		Purpose:    utils.SanitizeString(req.Purpose),
		Notes:      utils.SanitizeString(req.Notes),
	}
	if req.VisitDate != nil {
		visit.VisitDate = *req.VisitDate
	}
	if err := config.DB.Create(&visit).Error; err != nil {
		utils.LogError("Failed to create visit: %v", err)
		utils.InternalServerError(c, "Failed to record visit", nil)
		return
	}
	visit.Customer = customer
	utils.LogInfo("Visit %d recorded for customer %d", visit.ID, customer.ID)
	utils.Created(c, "Visit recorded successfully", visit)
}

// ListVisits lists visits, newest first, with optional customer and date filters
func ListVisits(c *gin.Context) {
	utils.LogInfo("ListVisits called")

	customerID, ok := queryID(c, "customer_id")
	if !ok {
		return
	}
	from, ok := queryDate(c, "start_date")
	if !ok {
		return
	}
	to, ok := queryDate(c, "end_date")
	if !ok {
		return
	}
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Visit{})
	if customerID != 0 {
		query = query.Where("customer_id = ?", customerID)
	}
	if !from.IsZero() {
		query = query.Where("visit_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("visit_date < ?", to.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count visits: %v", err)
		utils.InternalServerError(c, "Failed to fetch visits", nil)
		return
	}
	pagination.SetTotal(total)

	var visits []models.Visit
	if err := query.Preload("Customer").Order("visit_date DESC, id DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).Find(&visits).Error; err != nil {
		utils.LogError("Failed to fetch visits: %v", err)
		utils.InternalServerError(c, "Failed to fetch visits", nil)
		return
	}
	utils.SendPaginatedResponse(c, visits, pagination)
}

// UpdateVisit changes the purpose and notes of a visit
func UpdateVisit(c *gin.Context) {
	utils.LogInfo("UpdateVisit called")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var visit models.Visit
	if err := config.DB.First(&visit, id).Error; err != nil {
		utils.NotFound(c, "Visit not found")
		return
	}

	var req VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	if req.CustomerID != visit.CustomerID {
		utils.BadRequest(c, "A visit cannot be moved to another customer", nil)
		return
	}

	visit.Purpose = utils.SanitizeString(req.Purpose)
	visit.Notes = utils.SanitizeString(req.Notes)
	if req.VisitDate != nil {
		visit.VisitDate = *req.VisitDate
	}
	if err := config.DB.Save(&visit).Error; err != nil {
		utils.LogError("Failed to update visit %d: %v", id, err)
		utils.InternalServerError(c, "Failed to update visit", nil)
		return
	}
	utils.Success(c, "Visit updated successfully", visit)
}

// DeleteVisit removes a visit record
func DeleteVisit(c *gin.Context) {
	utils.LogInfo("DeleteVisit called")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	res := config.DB.Delete(&models.Visit{}, id)
	if res.Error != nil {
		utils.LogError("Failed to delete visit %d: %v", id, res.Error)
		utils.InternalServerError(c, "Failed to delete visit", nil)
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "Visit not found")
		return
	}
	utils.Success(c, "Visit deleted successfully", nil)
}
