package controllers

import (
	"strings"
	"time"

	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/services"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
)

// OrderItemRequest is one line of a new order
type OrderItemRequest struct {
	ServiceID   uint   `json:"service_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
	PackageType string `json:"package_type"`
}

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	CustomerID    uint               `json:"customer_id" binding:"required"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	CouponCode    string             `json:"coupon_code"`
	PaymentMethod string             `json:"payment_method"`
	Notes         string             `json:"notes"`
	StaffNote     string             `json:"staff_note"`
}

// CancelRequest carries the optional reason for a cancellation
type CancelRequest struct {
	Reason string `json:"reason"`
}

// UsePackageRequest names the package a session is drawn from
type UsePackageRequest struct {
	PackagePurchaseID uint `json:"packagePurchaseId" binding:"required"`
}

// CreateOrder prices and stores a new order
func CreateOrder(c *gin.Context) {
	utils.LogInfo("CreateOrder called")
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid order request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	utils.LogDebug("Creating order for customer %d with %d items", req.CustomerID, len(req.Items))

	in := services.OrderInput{
		CustomerID:    req.CustomerID,
		CouponCode:    req.CouponCode,
		PaymentMethod: strings.ToLower(strings.TrimSpace(req.PaymentMethod)),
		Notes:         req.Notes,
		StaffNote:     req.StaffNote,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, services.OrderItemInput{
			ServiceID:   item.ServiceID,
			Quantity:    item.Quantity,
			PackageType: item.PackageType,
		})
	}

	result, err := orderService.Create(c.Request.Context(), in, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "Order created successfully"
	if result.Approval != nil {
		message = "Order created, coupon held for discount approval"
		utils.LogInfo("Order %d filed approval request %d", result.Order.ID, result.Approval.ID)
	}
	utils.Created(c, message, result)
}

// ListOrders lists orders with optional customer, status and date filters
func ListOrders(c *gin.Context) {
	utils.LogInfo("ListOrders called")

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
	if !to.IsZero() {
		// include the whole end date
		to = to.AddDate(0, 0, 1)
	}

	filter := services.OrderFilter{
		CustomerID: customerID,
		Status:     models.OrderStatus(strings.ToUpper(c.Query("status"))),
		From:       from,
		To:         to,
	}
	pagination := utils.NewPagination(c)

	orders, err := orderService.List(c.Request.Context(), filter, pagination)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.LogInfo("Found %d orders", len(orders))
	utils.SendPaginatedResponse(c, orders, pagination)
}

// GetOrder returns one order with its line items
func GetOrder(c *gin.Context) {
	utils.LogInfo("GetOrder called")
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := orderService.Get(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Order retrieved successfully", order)
}

// StartOrder begins the treatment for a pending order
func StartOrder(c *gin.Context) {
	utils.LogInfo("StartOrder called")
	transitionOrder(c, func(id uint, actor services.Actor) (*models.Order, error) {
		return orderService.Start(c.Request.Context(), id, actor)
	}, "Order started")
}

// CompleteOrder finishes an order and issues the packages it sold
func CompleteOrder(c *gin.Context) {
	utils.LogInfo("CompleteOrder called")
	transitionOrder(c, func(id uint, actor services.Actor) (*models.Order, error) {
		return orderService.Complete(c.Request.Context(), id, actor)
	}, "Order completed")
}

// CancelOrder cancels an open order
func CancelOrder(c *gin.Context) {
	utils.LogInfo("CancelOrder called")
	var req CancelRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	transitionOrder(c, func(id uint, actor services.Actor) (*models.Order, error) {
		return orderService.Cancel(c.Request.Context(), id, req.Reason, actor)
	}, "Order cancelled")
}

func transitionOrder(c *gin.Context, move func(id uint, actor services.Actor) (*models.Order, error), message string) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := move(orderID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, message, order)
}

// UsePackage consumes one session of a package during an in-progress order
func UsePackage(c *gin.Context) {
	utils.LogInfo("UsePackage called")
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UsePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid use package request: %v", err)
		utils.BadRequest(c, "packagePurchaseId is required", err.Error())
		return
	}
	utils.LogDebug("Using package %d in order %d", req.PackagePurchaseID, orderID)

	result, err := packageService.RecordUsage(c.Request.Context(), orderID, req.PackagePurchaseID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Package session used", result)
}

// MarkOrderPaid records an offline (cash or card terminal) payment
func MarkOrderPaid(c *gin.Context) {
	utils.LogInfo("MarkOrderPaid called")
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		PaymentMethod string `json:"payment_method" binding:"required,oneof=cash card transfer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "payment_method must be cash, card or transfer", err.Error())
		return
	}

	order, err := orderService.MarkPaid(c.Request.Context(), orderID, req.PaymentMethod, "")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Payment recorded", order)
}

// queryDate reads an optional YYYY-MM-DD query parameter. ok is false, and a
// 400 has been written, when the value is present but malformed.
func queryDate(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		utils.BadRequest(c, key+" must be in YYYY-MM-DD format", nil)
		return time.Time{}, false
	}
	return t, true
}
