package controllers

import (
	"strings"

	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/services"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
)

// FileApprovalRequest is a discount conflict submitted by staff for review
type FileApprovalRequest struct {
	CustomerID       uint                     `json:"customerId" binding:"required"`
	OrderID          *uint                    `json:"orderId"`
	ServiceDetails   []models.ServiceLine     `json:"serviceDetails"`
	AppliedDiscounts []models.AppliedDiscount `json:"appliedDiscounts"`
	OriginalAmount   int64                    `json:"originalAmount"`
	DiscountAmount   int64                    `json:"discountAmount"`
	FinalAmount      int64                    `json:"finalAmount"`
	ConflictReason   string                   `json:"conflictReason"`
	StaffNote        string                   `json:"staffNote"`
}

// ResolveApprovalRequest is a reviewer's decision
type ResolveApprovalRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// ListApprovals lists discount approval requests, newest first
func ListApprovals(c *gin.Context) {
	utils.LogInfo("ListApprovals called")

	requestedBy, ok := queryID(c, "requestedBy")
	if !ok {
		return
	}
	filter := services.ApprovalFilter{
		Status:      models.ApprovalStatus(strings.ToUpper(c.Query("status"))),
		RequestedBy: requestedBy,
	}
	pagination := utils.NewPagination(c)

	requests, err := approvalService.List(c.Request.Context(), filter, pagination)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.LogInfo("Found %d approval requests", len(requests))
	utils.SendPaginatedResponse(c, requests, pagination)
}

// GetApproval returns one discount approval request
func GetApproval(c *gin.Context) {
	utils.LogInfo("GetApproval called")
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	req, err := approvalService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Approval request retrieved successfully", req)
}

// FileApproval files a discount conflict for review. The requester is the
// signed in staff member.
func FileApproval(c *gin.Context) {
	utils.LogInfo("FileApproval called")
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req FileApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid approval request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	filed, err := approvalService.File(c.Request.Context(), services.ApprovalInput{
		CustomerID:       req.CustomerID,
		OrderID:          req.OrderID,
		ServiceDetails:   req.ServiceDetails,
		AppliedDiscounts: req.AppliedDiscounts,
		OriginalAmount:   req.OriginalAmount,
		DiscountAmount:   req.DiscountAmount,
		FinalAmount:      req.FinalAmount,
		ConflictReason:   req.ConflictReason,
		StaffNote:        req.StaffNote,
		RequestedBy:      actor.ID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Approval request filed", filed)
}

// ResolveApproval approves or rejects a pending request
func ResolveApproval(c *gin.Context) {
	utils.LogInfo("ResolveApproval called")
	reviewer, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ResolveApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "status is required", err.Error())
		return
	}

	status := models.ApprovalStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	resolved, err := approvalService.Resolve(c.Request.Context(), id, status, req.Note, reviewer)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Approval request "+strings.ToLower(string(resolved.Status)), resolved)
}
