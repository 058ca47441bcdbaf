package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Govind-619/InfuseDesk/config"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LoginRequest represents the staff login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func userResponse(user models.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"full_name":     user.FullName,
		"role":          user.Role,
		"is_active":     user.IsActive,
		"last_login_at": user.LastLoginAt,
	}
}

// Login authenticates a staff member by username (or e-mail) and password
func Login(c *gin.Context) {
	utils.LogInfo("Login called")
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid login request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}
	login := strings.TrimSpace(req.Username)
	utils.LogDebug("Processing login request for: %s", login)

	var user models.User
	if err := config.DB.Where("username = ? OR email = ?", login, strings.ToLower(login)).First(&user).Error; err != nil {
		utils.LogError("User not found for login %s: %v", login, err)
		utils.Unauthorized(c, utils.ErrInvalidCredentials)
		return
	}
	if !user.IsActive {
		utils.LogError("Inactive user attempted login: %s", user.Username)
		utils.Forbidden(c, utils.ErrUserInactive)
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		utils.LogError("Invalid password for user: %s", user.Username)
		utils.Unauthorized(c, utils.ErrInvalidCredentials)
		return
	}

	issueLogin(c, user, func(token string, expiresAt time.Time) {
		utils.Success(c, utils.MsgLoginSuccess, gin.H{
			"token":      token,
			"expires_at": expiresAt,
			"user":       userResponse(user),
		})
	})
}

// issueLogin stamps the last login, signs a token and opens the session
func issueLogin(c *gin.Context, user models.User, respond func(token string, expiresAt time.Time)) {
	now := time.Now()
	if err := config.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("last_login_at", now).Error; err != nil {
		utils.LogError("Failed to update last login for user %s: %v", user.Username, err)
	}
	user.LastLoginAt = &now

	token, expiresAt, err := utils.GenerateToken(&user, deps.JWTSecret)
	if err != nil {
		utils.LogError("Failed to sign token for user %s: %v", user.Username, err)
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}
	if err := utils.SetSessionUser(c, user.ID); err != nil {
		utils.LogError("Failed to save session for user %s: %v", user.Username, err)
	}

	utils.LogInfo("Login successful: %s", user.Username)
	respond(token, expiresAt)
}

// Logout revokes the bearer token, if any, and clears the session
func Logout(c *gin.Context) {
	utils.LogInfo("Logout called")

	if tokenString := utils.BearerToken(c.GetHeader("Authorization")); tokenString != "" {
		expiresAt := time.Now().Add(utils.TokenTTL)
		if claims, err := utils.ValidateToken(tokenString, deps.JWTSecret); err == nil && !claims.ExpiresAt.IsZero() {
			expiresAt = claims.ExpiresAt
		}
		blacklisted := models.BlacklistedToken{Token: tokenString, ExpiresAt: expiresAt}
		if err := config.DB.Where(models.BlacklistedToken{Token: tokenString}).FirstOrCreate(&blacklisted).Error; err != nil {
			utils.LogError("Failed to blacklist token on logout: %v", err)
		}
	}
	if err := utils.ClearSession(c); err != nil {
		utils.LogError("Failed to clear session on logout: %v", err)
	}

	utils.Success(c, utils.MsgLogoutSuccess, nil)
}

// Me returns the signed in staff member
func Me(c *gin.Context) {
	utils.LogInfo("Me called")
	user, ok := currentUser(c)
	if !ok {
		utils.Unauthorized(c, utils.ErrUnauthorized)
		return
	}
	utils.Success(c, "Profile fetched", userResponse(user))
}

// GoogleLogin starts staff sign in with Google
func GoogleLogin(c *gin.Context) {
	utils.LogInfo("GoogleLogin called")
	if config.GoogleOAuthConfig == nil {
		utils.NotFound(c, "Google sign in is not configured")
		return
	}
	state := uuid.New().String()
	if err := utils.SetOAuthState(c, state); err != nil {
		utils.LogError("Failed to store oauth state: %v", err)
		utils.InternalServerError(c, "Failed to start Google sign in", nil)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, config.GoogleOAuthConfig.AuthCodeURL(state))
}

// GoogleCallback finishes Google sign in. Only existing active staff whose
// e-mail matches the Google account can sign in this way.
func GoogleCallback(c *gin.Context) {
	utils.LogInfo("GoogleCallback called")
	if config.GoogleOAuthConfig == nil {
		utils.NotFound(c, "Google sign in is not configured")
		return
	}
	if state := utils.TakeOAuthState(c); state == "" || state != c.Query("state") {
		utils.LogError("Google callback with mismatched state")
		utils.BadRequest(c, "Invalid sign in state", nil)
		return
	}
	code := c.Query("code")
	if code == "" {
		utils.BadRequest(c, "No code provided", nil)
		return
	}

	token, err := config.GoogleOAuthConfig.Exchange(c.Request.Context(), code)
	if err != nil {
		utils.LogError("Failed to exchange Google code: %v", err)
		utils.InternalServerError(c, "Failed to exchange token", nil)
		return
	}

	client := config.GoogleOAuthConfig.Client(c.Request.Context(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		utils.LogError("Failed to get Google user info: %v", err)
		utils.InternalServerError(c, "Failed to get user info", nil)
		return
	}
	defer resp.Body.Close()

	var googleUser GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		utils.LogError("Failed to parse Google user info: %v", err)
		utils.InternalServerError(c, "Failed to parse user info", nil)
		return
	}
	if !googleUser.VerifiedEmail {
		utils.Forbidden(c, "Google account e-mail is not verified")
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", strings.ToLower(googleUser.Email)).First(&user).Error; err != nil {
		utils.LogError("No staff account for Google user %s", googleUser.Email)
		utils.Forbidden(c, "No staff account is registered for this Google account")
		return
	}
	if !user.IsActive {
		utils.Forbidden(c, utils.ErrUserInactive)
		return
	}
	if user.GoogleID == nil {
		if err := config.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("google_id", googleUser.ID).Error; err != nil {
			utils.LogError("Failed to link Google account for user %s: %v", user.Username, err)
		}
	}

	issueLogin(c, user, func(token string, _ time.Time) {
		redirectURL := fmt.Sprintf("%s?token=%s", deps.FrontendURL, url.QueryEscape(token))
		c.Redirect(http.StatusTemporaryRedirect, redirectURL)
	})
}

// SeedAdmin makes sure the configured administrator account exists
func SeedAdmin(admin config.AdminConfig) error {
	utils.LogInfo("SeedAdmin called")
	if admin.Email == "" || admin.Password == "" {
		utils.LogInfo("No admin credentials configured, skipping admin seed")
		return nil
	}

	hashedPassword, err := utils.HashPassword(admin.Password)
	if err != nil {
		utils.LogError("Failed to hash admin password: %v", err)
		return err
	}

	user := models.User{
		Username: admin.Username,
		Email:    strings.ToLower(admin.Email),
		Password: hashedPassword,
		FullName: admin.FullName,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := config.DB.Where(models.User{Username: user.Username}).FirstOrCreate(&user).Error; err != nil {
		utils.LogError("Failed to seed admin: %v", err)
		return err
	}
	utils.LogInfo("Admin account ready: %s", user.Username)
	return nil
}
