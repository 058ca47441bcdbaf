package controllers

import (
	"strconv"

	"github.com/Govind-619/InfuseDesk/config"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

// MonthlyNoteRequest carries the note text for one month
type MonthlyNoteRequest struct {
	Content string `json:"content" binding:"required"`
}

// parseMonth reads the :year and :month path parameters
func parseMonth(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2100 {
		utils.BadRequest(c, "Invalid year", nil)
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		utils.BadRequest(c, "Invalid month", nil)
		return 0, 0, false
	}
	return year, month, true
}

// ListMonthlyNotes lists the notes of a year, or every note when no year is given
func ListMonthlyNotes(c *gin.Context) {
	utils.LogInfo("ListMonthlyNotes called")

	query := config.DB.Model(&models.MonthlyNote{})
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			utils.BadRequest(c, "Invalid year", nil)
			return
		}
		query = query.Where("year = ?", year)
	}

	var notes []models.MonthlyNote
	if err := query.Order("year DESC, month DESC").Find(&notes).Error; err != nil {
		utils.LogError("Failed to fetch monthly notes: %v", err)
		utils.InternalServerError(c, "Failed to fetch monthly notes", nil)
		return
	}
	utils.Success(c, "Monthly notes retrieved successfully", notes)
}

// GetMonthlyNote returns the note of one month
func GetMonthlyNote(c *gin.Context) {
	utils.LogInfo("GetMonthlyNote called")
	year, month, ok := parseMonth(c)
	if !ok {
		return
	}

	var note models.MonthlyNote
	if err := config.DB.Where("year = ? AND month = ?", year, month).First(&note).Error; err != nil {
		utils.NotFound(c, "No note for this month")
		return
	}
	utils.Success(c, "Monthly note retrieved successfully", note)
}

// SaveMonthlyNote creates or replaces the note of one month
func SaveMonthlyNote(c *gin.Context) {
	utils.LogInfo("SaveMonthlyNote called")
	user, ok := currentUser(c)
	if !ok {
		utils.Unauthorized(c, utils.ErrUnauthorized)
		return
	}
	year, month, ok := parseMonth(c)
	if !ok {
		return
	}

	var req MonthlyNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Content is required", err.Error())
		return
	}

	note := models.MonthlyNote{
		Year:     year,
		Month:    month,
		Content:  utils.SanitizeString(req.Content),
		AuthorID: user.ID,
	}
	err := config.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "author_id", "updated_at"}),
	}).Create(&note).Error
	if err != nil {
		utils.LogError("Failed to save monthly note %d-%02d: %v", year, month, err)
		utils.InternalServerError(c, "Failed to save monthly note", nil)
		return
	}

	if err := config.DB.Where("year = ? AND month = ?", year, month).First(&note).Error; err != nil {
		utils.LogError("Failed to reload monthly note %d-%02d: %v", year, month, err)
		utils.InternalServerError(c, "Failed to save monthly note", nil)
		return
	}
	utils.LogInfo("Monthly note %d-%02d saved by user %d", year, month, user.ID)
	utils.Success(c, "Monthly note saved", note)
}

// DeleteMonthlyNote removes the note of one month
func DeleteMonthlyNote(c *gin.Context) {
	utils.LogInfo("DeleteMonthlyNote called")
	year, month, ok := parseMonth(c)
	if !ok {
		return
	}

	res := config.DB.Unscoped().Where("year = ? AND month = ?", year, month).Delete(&models.MonthlyNote{})
	if res.Error != nil {
		utils.LogError("Failed to delete monthly note %d-%02d: %v", year, month, res.Error)
		utils.InternalServerError(c, "Failed to delete monthly note", nil)
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "No note for this month")
		return
	}
	utils.Success(c, "Monthly note deleted", nil)
}
