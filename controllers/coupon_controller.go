package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
)

// CouponRequest represents the request body for creating or updating a coupon
type CouponRequest struct {
	Code          string    `json:"code" binding:"required"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	DiscountKind  string    `json:"discount_kind" binding:"required"`
	DiscountValue float64   `json:"discount_value" binding:"required"`
	MinAmount     *int64    `json:"min_amount"`
	MaxDiscount   *int64    `json:"max_discount"`
	UsageLimit    *int      `json:"usage_limit"`
	ValidFrom     time.Time `json:"valid_from" binding:"required"`
	ValidUntil    time.Time `json:"valid_until" binding:"required"`
	IsActive      *bool     `json:"is_active"`
}

func (r CouponRequest) toModel() models.Coupon {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return models.Coupon{
		Code:          r.Code,
		Name:          r.Name,
		Description:   r.Description,
		DiscountKind:  models.DiscountKind(strings.ToUpper(strings.TrimSpace(r.DiscountKind))),
		DiscountValue: r.DiscountValue,
		MinAmount:     r.MinAmount,
		MaxDiscount:   r.MaxDiscount,
		UsageLimit:    r.UsageLimit,
		ValidFrom:     r.ValidFrom,
		ValidUntil:    r.ValidUntil,
		IsActive:      active,
	}
}

// ValidateCouponRequest asks whether a code can be used on an order amount
type ValidateCouponRequest struct {
	Code        string `json:"code" binding:"required"`
	OrderAmount int64  `json:"order_amount"`
	CustomerID  uint   `json:"customer_id"`
}

// AllocateCouponRequest hands a coupon to customers
type AllocateCouponRequest struct {
	CustomerIDs []uint `json:"customer_ids" binding:"required,min=1"`
}

// CreateCoupon creates a new coupon
func CreateCoupon(c *gin.Context) {
	utils.LogInfo("CreateCoupon called")

	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid request format: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	utils.LogInfo("Processing coupon creation with code: %s", req.Code)

	coupon := req.toModel()
	if err := couponService.Create(c.Request.Context(), &coupon); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Coupon created successfully", coupon)
}

// UpdateCoupon replaces the editable fields of a coupon
func UpdateCoupon(c *gin.Context) {
	utils.LogInfo("UpdateCoupon called")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid request format: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	coupon, err := couponService.Update(c.Request.Context(), id, req.toModel())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Coupon updated successfully", coupon)
}

// DeleteCoupon soft deletes a coupon
func DeleteCoupon(c *gin.Context) {
	utils.LogInfo("DeleteCoupon called")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := couponService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Coupon deleted successfully", nil)
}

// GetCoupon returns one coupon
func GetCoupon(c *gin.Context) {
	utils.LogInfo("GetCoupon called")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	coupon, err := couponService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Coupon retrieved successfully", coupon)
}

// ListCoupons lists coupons; active=true hides disabled and expired ones
func ListCoupons(c *gin.Context) {
	utils.LogInfo("ListCoupons called")
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))
	pagination := utils.NewPagination(c)

	coupons, err := couponService.List(c.Request.Context(), activeOnly, pagination)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.LogInfo("Found %d coupons", len(coupons))
	utils.SendPaginatedResponse(c, coupons, pagination)
}

// ValidateCoupon checks a coupon code against an order amount
func ValidateCoupon(c *gin.Context) {
	utils.LogInfo("ValidateCoupon called")

	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Coupon code is required", err.Error())
		return
	}

	check, err := couponService.Validate(c.Request.Context(), req.Code, req.OrderAmount, req.CustomerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	message := "Coupon is valid"
	if !check.Valid {
		message = check.Error
	}
	utils.Success(c, message, check)
}

// AllocateCoupon hands a coupon to one or more customers
func AllocateCoupon(c *gin.Context) {
	utils.LogInfo("AllocateCoupon called")
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req AllocateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "customer_ids is required", err.Error())
		return
	}

	allocs, err := couponService.Allocate(c.Request.Context(), id, req.CustomerIDs, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Coupon allocated", allocs)
}

// ListCouponAllocations lists who a coupon was handed to
func ListCouponAllocations(c *gin.Context) {
	utils.LogInfo("ListCouponAllocations called")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	allocs, err := couponService.Allocations(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Coupon allocations retrieved", allocs)
}

// ListCouponUsages lists the orders a coupon was redeemed on
func ListCouponUsages(c *gin.Context) {
	utils.LogInfo("ListCouponUsages called")
	id, ok := parseID(c, "id")
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
	if !to.IsZero() {
		to = to.AddDate(0, 0, 1)
	}

	report, err := couponService.Usages(c.Request.Context(), id, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Coupon usages retrieved", report)
}
