package services

import (
	"context"
	"strings"
	"time"

	"github.com/Govind-619/InfuseDesk/events"
	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/utils"
	"gorm.io/gorm"
)

// ApprovalNotifier is told about every newly filed approval request
type ApprovalNotifier interface {
	NotifyApprovalFiled(req models.DiscountApprovalRequest) error
}

// ApprovalInput is a discount conflict to be filed for review
type ApprovalInput struct {
	CustomerID       uint
	OrderID          *uint
	ServiceDetails   []models.ServiceLine
	AppliedDiscounts []models.AppliedDiscount
	OriginalAmount   int64
	DiscountAmount   int64
	FinalAmount      int64
	ConflictReason   string
	StaffNote        string
	RequestedBy      uint
}

// ApprovalFilter narrows an approval listing. Zero fields match everything.
type ApprovalFilter struct {
	Status      models.ApprovalStatus
	RequestedBy uint
}

// ApprovalService records discount conflicts and their resolution
type ApprovalService struct {
	base
	notifier ApprovalNotifier
}

func NewApprovalService(db *gorm.DB, pub events.Publisher, notifier ApprovalNotifier) *ApprovalService {
	return &ApprovalService{base: newBase(db, pub), notifier: notifier}
}

// File stores a new PENDING approval request
func (s *ApprovalService) File(ctx context.Context, in ApprovalInput) (*models.DiscountApprovalRequest, error) {
	var req *models.DiscountApprovalRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		req, err = fileApproval(tx, in, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterFiled(ctx, *req)
	return req, nil
}

func (s *ApprovalService) afterFiled(ctx context.Context, req models.DiscountApprovalRequest) {
	utils.LogInfo("Discount approval request %d filed for customer %d by staff %d", req.ID, req.CustomerID, req.RequestedBy)
	s.publish(ctx, events.New(events.TypeApprovalFiled, req))
	if s.notifier != nil {
		if err := s.notifier.NotifyApprovalFiled(req); err != nil {
			utils.LogError("Failed to notify reviewers of approval request %d: %v", req.ID, err)
		}
	}
}

// fileApproval validates in and inserts it within tx
func fileApproval(tx *gorm.DB, in ApprovalInput, now time.Time) (*models.DiscountApprovalRequest, error) {
	switch {
	case in.CustomerID == 0:
		return nil, validationf("customer_id is required")
	case strings.TrimSpace(in.ConflictReason) == "":
		return nil, validationf("conflict_reason is required")
	case in.RequestedBy == 0:
		return nil, validationf("requested_by is required")
	case in.OriginalAmount < 0 || in.DiscountAmount < 0 || in.FinalAmount < 0:
		return nil, validationf("amounts cannot be negative")
	}
	for i, line := range in.ServiceDetails {
		if line.Quantity <= 0 {
			return nil, validationf("service line %d has a non-positive quantity", i+1)
		}
	}
	for i, d := range in.AppliedDiscounts {
		if d.Source != models.DiscountSourceCustomer && d.Source != models.DiscountSourceCoupon {
			return nil, validationf("applied discount %d has unknown source %q", i+1, d.Source)
		}
	}

	var customer models.Customer
	if err := tx.Select("id").First(&customer, in.CustomerID).Error; err != nil {
		return nil, notFound(err, ErrCustomerNotFound)
	}

	req := &models.DiscountApprovalRequest{
		CustomerID:       in.CustomerID,
		OrderID:          in.OrderID,
		ServiceDetails:   in.ServiceDetails,
		AppliedDiscounts: in.AppliedDiscounts,
		OriginalAmount:   in.OriginalAmount,
		DiscountAmount:   in.DiscountAmount,
		FinalAmount:      in.FinalAmount,
		ConflictReason:   strings.TrimSpace(in.ConflictReason),
		StaffNote:        in.StaffNote,
		RequestedBy:      in.RequestedBy,
		Status:           models.ApprovalPending,
		RequestedAt:      now,
	}
	if req.ServiceDetails == nil {
		req.ServiceDetails = []models.ServiceLine{}
	}
	if req.AppliedDiscounts == nil {
		req.AppliedDiscounts = []models.AppliedDiscount{}
	}
	if err := tx.Omit("Customer").Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

// List returns requests matching filter, newest first. page may be nil.
func (s *ApprovalService) List(ctx context.Context, filter ApprovalFilter, page *utils.Pagination) ([]models.DiscountApprovalRequest, error) {
	query := s.db.WithContext(ctx).Model(&models.DiscountApprovalRequest{})
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, validationf("unknown approval status %q", filter.Status)
		}
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RequestedBy != 0 {
		query = query.Where("requested_by = ?", filter.RequestedBy)
	}

	query, err := paginate(query, page)
	if err != nil {
		return nil, err
	}

	var reqs []models.DiscountApprovalRequest
	err = query.Preload("Customer").Order("requested_at DESC, id DESC").Find(&reqs).Error
	return reqs, err
}

// Get returns one approval request
func (s *ApprovalService) Get(ctx context.Context, id uint) (*models.DiscountApprovalRequest, error) {
	var req models.DiscountApprovalRequest
	if err := s.db.WithContext(ctx).Preload("Customer").First(&req, id).Error; err != nil {
		return nil, notFound(err, ErrApprovalNotFound)
	}
	return &req, nil
}

// Resolve records a reviewer's decision on a PENDING request
func (s *ApprovalService) Resolve(ctx context.Context, id uint, status models.ApprovalStatus, note string, reviewer Actor) (*models.DiscountApprovalRequest, error) {
	switch status {
	case models.ApprovalApproved, models.ApprovalRejected:
	case models.ApprovalPending:
		return nil, validationf("a request can only be resolved to APPROVED or REJECTED")
	default:
		return nil, validationf("unknown approval status %q", status)
	}

	var req models.DiscountApprovalRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&req, id).Error; err != nil {
			return notFound(err, ErrApprovalNotFound)
		}
		if req.Status != models.ApprovalPending {
			return detail(ErrApprovalResolved, "request %d is already %s", req.ID, req.Status)
		}

		now := s.now()
		reviewerID := reviewer.ID
		res := tx.Model(&models.DiscountApprovalRequest{}).
			Where("id = ? AND status = ?", req.ID, models.ApprovalPending).
			Updates(map[string]interface{}{
				"status":      status,
				"reviewed_by": reviewerID,
				"reviewed_at": now,
				"review_note": note,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return detail(ErrApprovalResolved, "request %d was resolved concurrently", req.ID)
		}
		req.Status, req.ReviewedBy, req.ReviewedAt, req.ReviewNote = status, &reviewerID, &now, note
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Discount approval request %d %s by %s", req.ID, req.Status, reviewer.Name())
	s.publish(ctx, events.New(events.TypeApprovalResolved, req))
	return &req, nil
}
