package controllers

import (
	"github.com/Govind-619/InfuseDesk/config"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
)

// Health reports whether the database and the session store are usable
func Health(c *gin.Context) {
	sqlDB, err := config.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		utils.LogError("Health check database ping failed: %v", err)
		utils.Error(c, 503, "Database unavailable", nil)
		return
	}
	if err := utils.CheckSessionStore(c); err != nil {
		utils.LogError("Health check session store failed: %v", err)
		utils.Error(c, 503, "Session store unavailable", nil)
		return
	}
	utils.Success(c, "OK", gin.H{"app": utils.AppName})
}
