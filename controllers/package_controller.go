package controllers

import (
	"strconv"
	"strings"

	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/services"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
)

// AdjustPackageRequest is a manual correction of a package's remaining count.
// Count is a pointer so a missing value can be told apart from zero.
type AdjustPackageRequest struct {
	Action string `json:"action"`
	Count  *int   `json:"count"`
	Note   string `json:"note"`
}

// ListPackages lists package purchases with optional filters
func ListPackages(c *gin.Context) {
	utils.LogInfo("ListPackages called")

	customerID, ok := queryID(c, "customer_id")
	if !ok {
		return
	}
	serviceID, ok := queryID(c, "service_id")
	if !ok {
		return
	}
	filter := services.PackageFilter{
		CustomerID: customerID,
		ServiceID:  serviceID,
		Status:     models.PackageStatus(strings.ToUpper(c.Query("status"))),
	}
	pagination := utils.NewPagination(c)

	pkgs, err := packageService.List(c.Request.Context(), filter, pagination)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.LogInfo("Found %d packages", len(pkgs))
	utils.SendPaginatedResponse(c, pkgs, pagination)
}

// GetPackage returns one package with its usage history
func GetPackage(c *gin.Context) {
	utils.LogInfo("GetPackage called")
	packageID, ok := parseID(c, "id")
	if !ok {
		return
	}

	pkg, err := packageService.Get(c.Request.Context(), packageID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Package retrieved successfully", pkg)
}

// AdjustPackage applies a manual use or restore to a package
func AdjustPackage(c *gin.Context) {
	utils.LogInfo("AdjustPackage called")
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	packageID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req AdjustPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid adjust request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	if req.Count == nil {
		utils.BadRequest(c, "count is required", nil)
		return
	}
	utils.LogDebug("Adjusting package %d: %s %d", packageID, req.Action, *req.Count)

	pkg, err := packageService.Adjust(c.Request.Context(), packageID, services.AdjustRequest{
		Action: services.AdjustAction(strings.ToLower(strings.TrimSpace(req.Action))),
		Count:  *req.Count,
		Note:   req.Note,
	}, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Package adjusted", pkg)
}

// CancelPackage cancels an active package
func CancelPackage(c *gin.Context) {
	utils.LogInfo("CancelPackage called")
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	packageID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req CancelRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	pkg, err := packageService.Cancel(c.Request.Context(), packageID, req.Reason, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Package cancelled", pkg)
}

// ExpirePackages marks every overdue active package as expired
func ExpirePackages(c *gin.Context) {
	utils.LogInfo("ExpirePackages called")
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	n, err := packageService.ExpireOverdue(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Overdue packages expired", gin.H{"expired": n})
}

// BackfillPackages creates the package purchases missing for completed orders
func BackfillPackages(c *gin.Context) {
	utils.LogInfo("BackfillPackages called")
	dryRun, _ := strconv.ParseBool(c.DefaultQuery("dry_run", "false"))

	report, err := backfillService.Run(c.Request.Context(), dryRun)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	message := "Package backfill finished"
	if dryRun {
		message = "Package backfill dry run finished"
	}
	utils.Success(c, message, report)
}
