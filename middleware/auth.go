package middleware

import (
	"github.com/Govind-619/InfuseDesk/config"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware authenticates staff by bearer token, falling back to the
// session cookie set at login. The user is stored in the context as "user".
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.LogInfo("AuthMiddleware called")

		userID, ok := authenticate(c, jwtSecret)
		if !ok {
			utils.Unauthorized(c, utils.ErrUnauthorized)
			c.Abort()
			return
		}
		utils.LogDebug("Authenticating user ID: %d", userID)

		var user models.User
		if err := config.DB.First(&user, userID).Error; err != nil {
			utils.LogError("User not found: %v", err)
			utils.Unauthorized(c, "User not found")
			c.Abort()
			return
		}

		if !user.IsActive {
			utils.LogError("Inactive user attempted access: %d", userID)
			utils.Forbidden(c, utils.ErrUserInactive)
			c.Abort()
			return
		}

		c.Set("user", user)
		utils.LogInfo("User %d authenticated successfully", userID)
		c.Next()
	}
}

func authenticate(c *gin.Context, jwtSecret string) (uint, bool) {
	tokenString := utils.BearerToken(c.GetHeader("Authorization"))
	if tokenString == "" {
		if id, ok := utils.SessionUserID(c); ok {
			return id, true
		}
		utils.LogError("Missing Authorization header and session")
		return 0, false
	}

	claims, err := utils.ValidateToken(tokenString, jwtSecret)
	if err != nil {
		utils.LogError("Invalid token: %v", err)
		return 0, false
	}

	var revoked int64
	if err := config.DB.Model(&models.BlacklistedToken{}).Where("token = ?", tokenString).Count(&revoked).Error; err != nil {
		utils.LogError("Failed to check token blacklist: %v", err)
		return 0, false
	}
	if revoked > 0 {
		utils.LogError("Blacklisted token used for user %d", claims.UserID)
		return 0, false
	}
	return claims.UserID, true
}

// AdminMiddleware requires the authenticated user to be an administrator
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.LogInfo("AdminMiddleware called")

		user, exists := c.Get("user")
		if !exists {
			utils.LogError("User not found in context")
			utils.Unauthorized(c, utils.ErrUnauthorized)
			c.Abort()
			return
		}

		userModel, ok := user.(models.User)
		if !ok {
			utils.LogError("Invalid user type in context")
			utils.InternalServerError(c, utils.ErrInternalServer, nil)
			c.Abort()
			return
		}

		if !userModel.IsAdmin() {
			utils.LogError("Non-admin user attempted admin access: %d", userModel.ID)
			utils.Forbidden(c, utils.ErrForbidden)
			c.Abort()
			return
		}

		utils.LogInfo("Admin access granted for user %d", userModel.ID)
		c.Next()
	}
}
