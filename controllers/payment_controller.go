package controllers

import (
	"fmt"
	"strconv"

	"github.com/Govind-619/InfuseDesk/config"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
	razorpay "github.com/razorpay/razorpay-go"
)

const paymentCurrency = "INR"

// createGatewayOrder opens a Razorpay order. Tests replace it.
var createGatewayOrder = func(cfg config.RazorpayConfig, data map[string]interface{}) (map[string]interface{}, error) {
	client := razorpay.NewClient(cfg.Key, cfg.Secret)
	return client.Order.Create(data, nil)
}

// VerifyPaymentRequest is the checkout result posted back by the payment page
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// POST /orders/:id/payment/initiate
func InitiateRazorpayPayment(c *gin.Context) {
	utils.LogInfo("InitiateRazorpayPayment called")
	if deps.Razorpay.Key == "" || deps.Razorpay.Secret == "" {
		utils.NotFound(c, "Online payment is not configured")
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := orderService.Get(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		utils.LogError("Order %d is already paid", order.ID)
		utils.BadRequest(c, "Payment for this order has already been completed", nil)
		return
	}
	if order.Status == models.OrderStatusCancelled {
		utils.BadRequest(c, "Order is cancelled", nil)
		return
	}
	if order.FinalAmount <= 0 {
		utils.BadRequest(c, "Order has nothing to pay", nil)
		return
	}

	// Razorpay expects the amount in the smallest currency unit
	amount := order.FinalAmount * 100
	utils.LogInfo("Processing payment amount: %d for order ID: %d", amount, order.ID)

	rzOrder, err := createGatewayOrder(deps.Razorpay, map[string]interface{}{
		"amount":          amount,
		"currency":        paymentCurrency,
		"receipt":         "order_rcptid_" + strconv.FormatUint(uint64(order.ID), 10),
		"payment_capture": 1,
	})
	if err != nil {
		utils.LogError("Failed to create Razorpay order for order ID: %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to create Razorpay order", nil)
		return
	}
	gatewayOrderID := fmt.Sprintf("%v", rzOrder["id"])

	if err := orderService.AttachPaymentReference(c.Request.Context(), order.ID, gatewayOrderID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.LogInfo("Successfully created Razorpay order %s for order ID: %d", gatewayOrderID, order.ID)

	utils.Success(c, "Payment initiated successfully", gin.H{
		"order_id":          order.ID,
		"razorpay_order_id": gatewayOrderID,
		"amount":            amount,
		"currency":          paymentCurrency,
		"key":               deps.Razorpay.Key,
		"customer": gin.H{
			"name":  order.Customer.Name,
			"email": order.Customer.Email,
			"phone": order.Customer.Phone,
		},
	})
}

// POST /orders/:id/payment/verify
func VerifyRazorpayPayment(c *gin.Context) {
	utils.LogInfo("VerifyRazorpayPayment called")
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid verify request for order %d: %v", orderID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if !utils.VerifyRazorpaySignature(deps.Razorpay.Secret, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		utils.LogError("Payment verification failed for order ID: %d", orderID)
		utils.BadRequest(c, "Payment verification failed", gin.H{"retry": true})
		return
	}
	utils.LogInfo("Payment signature verified for order ID: %d", orderID)

	order, err := orderService.Get(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if order.RazorpayOrderID != req.RazorpayOrderID {
		utils.LogError("Razorpay order ID mismatch for order ID: %d. Expected: %s, Received: %s",
			orderID, order.RazorpayOrderID, req.RazorpayOrderID)
		utils.BadRequest(c, "Invalid Razorpay order ID", nil)
		return
	}

	paid, err := orderService.MarkPaid(c.Request.Context(), orderID, "razorpay", req.RazorpayOrderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.LogInfo("Successfully completed payment verification for order ID: %d", orderID)
	utils.Success(c, "Payment verified", gin.H{
		"order_id":            paid.ID,
		"final_amount":        paid.FinalAmount,
		"payment_method":      paid.PaymentMethod,
		"payment_status":      paid.PaymentStatus,
		"razorpay_payment_id": req.RazorpayPaymentID,
	})
}
