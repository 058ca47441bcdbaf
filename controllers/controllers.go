package controllers

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/Govind-619/InfuseDesk/config"
	"github.com/Govind-619/InfuseDesk/events"
	"github.com/Govind-619/InfuseDesk/lock"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/services"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the collaborators the handlers need besides the database
type Deps struct {
	Publisher       events.Publisher
	Notifier        services.ApprovalNotifier
	Locker          lock.Locker
	PackageValidity time.Duration
	JWTSecret       string
	FrontendURL     string
	Razorpay        config.RazorpayConfig
}

var (
	deps Deps

	approvalService *services.ApprovalService
	orderService    *services.OrderService
	packageService  *services.PackageService
	couponService   *services.CouponService
	backfillService *services.BackfillService
	reportService   *services.ReportService
)

// Setup wires the workflow services used by the handlers to db
func Setup(db *gorm.DB, d Deps) {
	deps = d

	approvalService = services.NewApprovalService(db, d.Publisher, d.Notifier)
	orderService = services.NewOrderService(db, d.Publisher, approvalService)
	orderService.PackageValidity = d.PackageValidity
	packageService = services.NewPackageService(db, d.Publisher)
	packageService.PackageValidity = d.PackageValidity
	couponService = services.NewCouponService(db, d.Publisher)
	backfillService = services.NewBackfillService(db, d.Publisher, d.Locker)
	backfillService.PackageValidity = d.PackageValidity
	reportService = services.NewReportService(db)
}

// currentUser returns the staff member set by the auth middleware
func currentUser(c *gin.Context) (models.User, bool) {
	v, exists := c.Get("user")
	if !exists {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// currentActor returns the acting staff member or writes a 401
func currentActor(c *gin.Context) (services.Actor, bool) {
	user, ok := currentUser(c)
	if !ok {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, utils.ErrUnauthorized)
		return services.Actor{}, false
	}
	return services.ActorFromUser(user), true
}

// parseID reads a numeric path parameter or writes a 400
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		utils.LogError("Invalid %s: %s", param, c.Param(param))
		utils.BadRequest(c, utils.ErrInvalidID, nil)
		return 0, false
	}
	return uint(id), true
}

// queryID reads an optional numeric query parameter. ok is false, and a 400
// has been written, when the value is present but malformed.
func queryID(c *gin.Context, key string) (uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		utils.BadRequest(c, "Invalid "+key, nil)
		return 0, false
	}
	return uint(id), true
}

// serviceError maps a workflow error to its HTTP form
func serviceError(err error) *utils.AppError {
	switch services.KindOf(err) {
	case services.KindValidation, services.KindState, services.KindExhausted:
		return utils.BadRequestError(err.Error(), err)
	case services.KindNotFound:
		return utils.NotFoundError(err.Error(), err)
	case services.KindForbidden:
		return utils.ForbiddenError(err.Error(), err)
	}
	return utils.InternalError(err)
}

func respondServiceError(c *gin.Context, err error) {
	appErr := serviceError(err)
	if appErr.Code < 500 {
		utils.LogInfo("%s %s rejected: %v", c.Request.Method, c.FullPath(), err)
	}
	utils.RespondError(c, appErr)
}

// bindOptionalJSON binds a request body that may be left empty. It writes a
// 400 and returns false when a body is present but malformed.
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		utils.LogError("Invalid request body: %v", err)
		utils.BadRequest(c, "Invalid request body", err.Error())
		return false
	}
	return true
}
