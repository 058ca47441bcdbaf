package controllers

import (
	"fmt"
	"strings"

	"github.com/Govind-619/InfuseDesk/config"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
)

// CreateUserRequest represents the request body for adding a staff account
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// UpdateUserRequest represents the editable fields of a staff account
type UpdateUserRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active"`
}

// ChangePasswordRequest is a staff member changing their own password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// GetUsers handles staff listing with search, pagination, and sorting
func GetUsers(c *gin.Context) {
	utils.LogInfo("GetUsers called")

	pagination := utils.NewPagination(c)
	sortBy := c.DefaultQuery("sort_by", "created_at")
	order := c.DefaultQuery("order", "desc")
	if order != "asc" && order != "desc" {
		order = "desc"
	}
	utils.LogDebug("Query parameters set - Page: %d, Limit: %d, SortBy: %s, Order: %s", pagination.Page, pagination.Limit, sortBy, order)

	query := config.DB.Model(&models.User{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		searchTerm := "%" + strings.ToLower(search) + "%"
		utils.LogDebug("Applying search with term: %s", search)
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", strings.ToUpper(role))
	}

	switch sortBy {
	case "username", "email", "full_name", "created_at", "last_login_at":
		query = query.Order(fmt.Sprintf("%s %s", sortBy, order))
	default:
		query = query.Order(fmt.Sprintf("created_at %s", order))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count users: %v", err)
		utils.InternalServerError(c, "Failed to fetch users", nil)
		return
	}
	pagination.SetTotal(total)

	var users []models.User
	if err := query.Offset(pagination.Offset).Limit(pagination.Limit).Find(&users).Error; err != nil {
		utils.LogError("Failed to fetch users: %v", err)
		utils.InternalServerError(c, "Failed to fetch users", nil)
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse(u))
	}
	utils.LogInfo("Successfully retrieved %d users", len(users))
	utils.SendPaginatedResponse(c, out, pagination)
}

// CreateUser adds a staff account
func CreateUser(c *gin.Context) {
	utils.LogInfo("CreateUser called")

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid user request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	var errs utils.FieldValidationErrors
	if ok, msg := utils.ValidateUsername(req.Username); !ok {
		errs = append(errs, utils.FieldValidationError{Field: "username", Message: msg})
	}
	if ok, msg := utils.ValidateEmail(req.Email); !ok {
		errs = append(errs, utils.FieldValidationError{Field: "email", Message: msg})
	}
	if ok, msg := utils.ValidatePassword(req.Password); !ok {
		errs = append(errs, utils.FieldValidationError{Field: "password", Message: msg})
	}
	if ok, msg := utils.ValidateName(req.FullName); !ok {
		errs = append(errs, utils.FieldValidationError{Field: "full_name", Message: msg})
	}
	role := models.RoleStaff
	if req.Role != "" {
		role = models.Role(strings.ToUpper(req.Role))
		if !role.Valid() {
			errs = append(errs, utils.FieldValidationError{Field: "role", Message: "role must be ADMIN or STAFF"})
		}
	}
	phone := ""
	if req.Phone != "" {
		ok, formatted := utils.ValidatePhone(req.Phone)
		if !ok {
			errs = append(errs, utils.FieldValidationError{Field: "phone", Message: formatted})
		}
		phone = formatted
	}
	if len(errs) > 0 {
		utils.ValidationError(c, "Validation failed", errs)
		return
	}

	var existing int64
	if err := config.DB.Unscoped().Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).Count(&existing).Error; err != nil {
		utils.LogError("Failed to check existing users: %v", err)
		utils.InternalServerError(c, "Failed to create user", nil)
		return
	}
	if existing > 0 {
		utils.Conflict(c, "Username or email already registered", nil)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.LogError("Failed to hash password: %v", err)
		utils.InternalServerError(c, "Failed to create user", nil)
		return
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashedPassword,
		FullName: utils.Title(req.FullName),
		Phone:    phone,
		Role:     role,
		IsActive: true,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		utils.LogError("Failed to create user: %v", err)
		utils.InternalServerError(c, "Failed to create user", nil)
		return
	}
	utils.LogInfo("Staff account %s created with role %s", user.Username, user.Role)
	utils.Created(c, utils.MsgCreateSuccess, userResponse(user))
}

// GetUser returns one staff account
func GetUser(c *gin.Context) {
	utils.LogInfo("GetUser called")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}
	utils.Success(c, utils.MsgFetchSuccess, userResponse(user))
}

// UpdateUser changes a staff account's name, phone, role or active flag
func UpdateUser(c *gin.Context) {
	utils.LogInfo("UpdateUser called")
	actor, ok := currentUser(c)
	if !ok {
		utils.Unauthorized(c, utils.ErrUnauthorized)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.FullName != "" {
		if ok, msg := utils.ValidateName(req.FullName); !ok {
			utils.BadRequest(c, msg, nil)
			return
		}
		updates["full_name"] = utils.Title(req.FullName)
	}
	if req.Phone != "" {
		ok, formatted := utils.ValidatePhone(req.Phone)
		if !ok {
			utils.BadRequest(c, formatted, nil)
			return
		}
		updates["phone"] = formatted
	}
	if req.Role != "" {
		role := models.Role(strings.ToUpper(req.Role))
		if !role.Valid() {
			utils.BadRequest(c, "role must be ADMIN or STAFF", nil)
			return
		}
		if user.ID == actor.ID && role != models.RoleAdmin {
			utils.BadRequest(c, "You cannot remove your own admin role", nil)
			return
		}
		updates["role"] = role
	}
	if req.IsActive != nil {
		if user.ID == actor.ID && !*req.IsActive {
			utils.BadRequest(c, "You cannot deactivate your own account", nil)
			return
		}
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "Nothing to update", nil)
		return
	}

	if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update user %d: %v", id, err)
		utils.InternalServerError(c, "Failed to update user", nil)
		return
	}
	if err := config.DB.First(&user, id).Error; err != nil {
		utils.LogError("Failed to reload user %d: %v", id, err)
		utils.InternalServerError(c, "Failed to update user", nil)
		return
	}
	utils.LogInfo("User %d updated by %s", user.ID, actor.Username)
	utils.Success(c, utils.MsgUpdateSuccess, userResponse(user))
}

// ChangePassword lets the signed in staff member change their password
func ChangePassword(c *gin.Context) {
	utils.LogInfo("ChangePassword called")
	user, ok := currentUser(c)
	if !ok {
		utils.Unauthorized(c, utils.ErrUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	if !utils.CheckPassword(req.CurrentPassword, user.Password) {
		utils.LogError("Wrong current password for user %d", user.ID)
		utils.Unauthorized(c, "Current password is incorrect")
		return
	}
	if ok, msg := utils.ValidatePassword(req.NewPassword); !ok {
		utils.BadRequest(c, msg, nil)
		return
	}
	if req.NewPassword == req.CurrentPassword {
		utils.BadRequest(c, "New password must be different from the current password", nil)
		return
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.LogError("Failed to hash password: %v", err)
		utils.InternalServerError(c, "Failed to change password", nil)
		return
	}
	if err := config.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("password", hashedPassword).Error; err != nil {
		utils.LogError("Failed to store password for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to change password", nil)
		return
	}
	utils.LogInfo("Password changed for user %d", user.ID)
	utils.Success(c, "Password changed successfully", nil)
}
