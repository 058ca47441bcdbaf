package controllers

import (
	"strconv"
	"strings"

	"github.com/Govind-619/InfuseDesk/config"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
)

// ServiceRequest represents the request body for creating or updating a treatment
type ServiceRequest struct {
	Name            string `json:"name" binding:"required"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	Price           int64  `json:"price" binding:"gte=0"`
	DurationMinutes int    `json:"duration_minutes" binding:"gte=0"`
	IsActive        *bool  `json:"is_active"`
}

// CreateService adds a treatment to the catalogue
func CreateService(c *gin.Context) {
	utils.LogInfo("CreateService called")

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid service request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	if err := utils.ValidateStringLength(req.Name, 2, 100); err != nil {
		utils.BadRequest(c, "Name "+err.Error(), nil)
		return
	}

	service := models.Service{
		Name:            strings.TrimSpace(req.Name),
		Category:        strings.TrimSpace(req.Category),
		Description:     utils.SanitizeString(req.Description),
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
	}
	if err := config.DB.Create(&service).Error; err != nil {
		utils.LogError("Failed to create service: %v", err)
		utils.InternalServerError(c, "Failed to create service", nil)
		return
	}
	if req.IsActive != nil && !*req.IsActive {
		if err := config.DB.Model(&service).Update("is_active", false).Error; err != nil {
			utils.LogError("Failed to deactivate service %d: %v", service.ID, err)
		}
		service.IsActive = false
	}
	utils.LogInfo("Service %d created: %s", service.ID, service.Name)
	utils.Created(c, "Service created successfully", service)
}

// ListServices lists treatments; active=true hides retired ones
func ListServices(c *gin.Context) {
	utils.LogInfo("ListServices called")

	query := config.DB.Model(&models.Service{})
	if activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "false")); activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		query = query.Where("category = ?", category)
	}

	var services []models.Service
	if err := query.Order("category, name, id").Find(&services).Error; err != nil {
		utils.LogError("Failed to fetch services: %v", err)
		utils.InternalServerError(c, "Failed to fetch services", nil)
		return
	}
	utils.Success(c, "Services retrieved successfully", services)
}

// GetService returns one treatment
func GetService(c *gin.Context) {
	utils.LogInfo("GetService called")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var service models.Service
	if err := config.DB.First(&service, id).Error; err != nil {
		utils.NotFound(c, "Service not found")
		return
	}
	utils.Success(c, "Service retrieved successfully", service)
}

// UpdateService replaces a treatment's details. Prices on past orders are kept.
func UpdateService(c *gin.Context) {
	utils.LogInfo("UpdateService called")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var service models.Service
	if err := config.DB.First(&service, id).Error; err != nil {
		utils.NotFound(c, "Service not found")
		return
	}

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	service.Name = strings.TrimSpace(req.Name)
	service.Category = strings.TrimSpace(req.Category)
	service.Description = utils.SanitizeString(req.Description)
	service.Price = req.Price
	service.DurationMinutes = req.DurationMinutes
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}
	if err := config.DB.Save(&service).Error; err != nil {
		utils.LogError("Failed to update service %d: %v", id, err)
		utils.InternalServerError(c, "Failed to update service", nil)
		return
	}
	utils.Success(c, "Service updated successfully", service)
}

// DeleteService retires a treatment
func DeleteService(c *gin.Context) {
	utils.LogInfo("DeleteService called")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	res := config.DB.Delete(&models.Service{}, id)
	if res.Error != nil {
		utils.LogError("Failed to delete service %d: %v", id, res.Error)
		utils.InternalServerError(c, "Failed to delete service", nil)
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "Service not found")
		return
	}
	utils.Success(c, "Service deleted successfully", nil)
}
