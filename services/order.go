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

// OrderItemInput is one requested line of a new order
type OrderItemInput struct {
	ServiceID   uint
	Quantity    int
	PackageType string
}

// OrderInput describes a new order
type OrderInput struct {
	CustomerID    uint
	Items         []OrderItemInput
	CouponCode    string
	PaymentMethod string
	Notes         string
	// StaffNote is attached to the approval request if the discounts conflict
	StaffNote string
}

// OrderResult is a created order with its pricing and, when the discounts
// conflicted, the approval request filed for it.
type OrderResult struct {
	Order    models.Order                    `json:"order"`
	Pricing  PricedOrder                     `json:"pricing"`
	Approval *models.DiscountApprovalRequest `json:"approval,omitempty"`
}

// OrderFilter narrows an order listing
type OrderFilter struct {
	CustomerID uint
	Status     models.OrderStatus
	From       time.Time
	To         time.Time
}

// OrderService handles the order lifecycle
type OrderService struct {
	base
	policy    DiscountPolicy
	approvals *ApprovalService

	// PackageValidity, when positive, sets the expiry of issued packages
	PackageValidity time.Duration
}

func NewOrderService(db *gorm.DB, pub events.Publisher, approvals *ApprovalService) *OrderService {
	return &OrderService{base: newBase(db, pub), policy: DefaultDiscountPolicy, approvals: approvals}
}

// SetPolicy replaces the customer discount table
func (s *OrderService) SetPolicy(p DiscountPolicy) {
	s.policy = p
}

// Create prices and stores a new PENDING order. A coupon that cannot be
// stacked on the customer's discount is not applied; an approval request
// is filed for the order instead.
func (s *OrderService) Create(ctx context.Context, in OrderInput, actor Actor) (*OrderResult, error) {
	if in.CustomerID == 0 {
		return nil, validationf("customer_id is required")
	}
	if len(in.Items) == 0 {
		return nil, ErrOrderHasNoItems
	}
	for i, item := range in.Items {
		if item.ServiceID == 0 {
			return nil, validationf("item %d: service_id is required", i+1)
		}
		if item.Quantity <= 0 {
			return nil, validationf("item %d: quantity must be greater than zero", i+1)
		}
		if IsPackageType(item.PackageType) {
			if _, err := ParsePackageCount(item.PackageType); err != nil {
				return nil, err
			}
		}
	}
	code := strings.ToUpper(strings.TrimSpace(in.CouponCode))

	var result OrderResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()

		var customer models.Customer
		if err := tx.First(&customer, in.CustomerID).Error; err != nil {
			return notFound(err, ErrCustomerNotFound)
		}

		order := models.Order{
			CustomerID:    customer.ID,
			StaffID:       actor.ID,
			Status:        models.OrderStatusPending,
			OrderDate:     now,
			PaymentMethod: in.PaymentMethod,
			PaymentStatus: models.PaymentStatusUnpaid,
			Notes:         in.Notes,
		}
		lines := make([]models.ServiceLine, 0, len(in.Items))
		for _, item := range in.Items {
			var service models.Service
			if err := tx.First(&service, item.ServiceID).Error; err != nil {
				return notFound(err, ErrServiceNotFound)
			}
			if !service.IsActive {
				return validationf("service %s is not available", service.Name)
			}
			tag := strings.TrimSpace(item.PackageType)
			if tag == "" {
				tag = models.SinglePackageType
			}
			line := models.OrderItem{
				ServiceID:   service.ID,
				Quantity:    item.Quantity,
				UnitPrice:   service.Price,
				TotalPrice:  service.Price * int64(item.Quantity),
				PackageType: tag,
			}
			order.Items = append(order.Items, line)
			order.TotalAmount += line.TotalPrice
			lines = append(lines, models.ServiceLine{
				ServiceID:   service.ID,
				ServiceName: service.Name,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				TotalPrice:  line.TotalPrice,
				PackageType: line.PackageType,
			})
		}

		var coupon *models.Coupon
		if code != "" {
			coupon = &models.Coupon{}
			if err := lockForUpdate(tx).Where("code = ?", code).First(coupon).Error; err != nil {
				return notFound(err, ErrCouponNotFound)
			}
		}

		priced, err := s.policy.PriceOrder(customer.DiscountType, order.TotalAmount, coupon, now)
		if err != nil {
			return err
		}
		order.CustomerDiscount = priced.CustomerDiscount
		order.CouponDiscount = priced.CouponDiscount
		order.FinalAmount = priced.FinalAmount
		if coupon != nil && !priced.Conflict {
			order.CouponID = &coupon.ID
			order.CouponCode = coupon.Code
		}

		if err := tx.Omit("Customer").Create(&order).Error; err != nil {
			return err
		}

		if priced.Conflict {
			orderID := order.ID
			req, err := fileApproval(tx, ApprovalInput{
				CustomerID:       customer.ID,
				OrderID:          &orderID,
				ServiceDetails:   lines,
				AppliedDiscounts: priced.Applied,
				OriginalAmount:   priced.Subtotal,
				DiscountAmount:   priced.CustomerDiscount + priced.CouponSavings,
				FinalAmount:      priced.Subtotal - priced.CustomerDiscount - priced.CouponSavings,
				ConflictReason:   priced.ConflictReason,
				StaffNote:        in.StaffNote,
				RequestedBy:      actor.ID,
			}, now)
			if err != nil {
				return err
			}
			result.Approval = req
		} else if coupon != nil {
			if err := redeemCoupon(tx, coupon, order, now); err != nil {
				return err
			}
		}

		order.Customer = customer
		result.Order = order
		result.Pricing = priced
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Order %d created for customer %d by %s, final amount %d",
		result.Order.ID, result.Order.CustomerID, actor.Name(), result.Order.FinalAmount)
	if result.Approval != nil && s.approvals != nil {
		s.approvals.afterFiled(ctx, *result.Approval)
	}
	return &result, nil
}

// redeemCoupon counts one use of coupon against order
func redeemCoupon(tx *gorm.DB, coupon *models.Coupon, order models.Order, now time.Time) error {
	res := tx.Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", coupon.ID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return detail(ErrCouponInvalid, "coupon %s cannot be applied: coupon usage limit reached", coupon.Code)
	}

	if err := tx.Create(&models.CouponUsage{
		CouponID:       coupon.ID,
		CustomerID:     order.CustomerID,
		OrderID:        order.ID,
		DiscountAmount: order.CouponDiscount,
		UsedAt:         now,
	}).Error; err != nil {
		return err
	}

	// the customer's oldest unused allocation of this coupon, if any, is spent
	var alloc models.CouponAllocation
	err := tx.Where("coupon_id = ? AND customer_id = ? AND is_used = ?", coupon.ID, order.CustomerID, false).
		Order("allocated_at, id").Limit(1).Find(&alloc).Error
	if err != nil {
		return err
	}
	if alloc.ID != 0 {
		return tx.Model(&alloc).Updates(map[string]interface{}{"is_used": true, "used_at": now}).Error
	}
	return nil
}

// Start moves a PENDING order to IN_PROGRESS
func (s *OrderService) Start(ctx context.Context, orderID uint, actor Actor) (*models.Order, error) {
	order, err := s.transition(ctx, orderID, models.OrderStatusInProgress, actor, nil)
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Order %d started by %s", order.ID, actor.Name())
	return order, nil
}

// Complete finishes an order and issues the package purchases it sold
func (s *OrderService) Complete(ctx context.Context, orderID uint, actor Actor) (*models.Order, error) {
	issued := 0
	order, err := s.transition(ctx, orderID, models.OrderStatusCompleted, actor, func(tx *gorm.DB, order *models.Order) error {
		n, err := issueOrderPackages(tx, *order, s.PackageValidity)
		issued = n
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Order %d completed by %s, %d packages issued", order.ID, actor.Name(), issued)
	s.publish(ctx, events.New(events.TypeOrderCompleted, order))
	return order, nil
}

// Cancel moves an open order to CANCELLED, keeping the reason in its notes
func (s *OrderService) Cancel(ctx context.Context, orderID uint, reason string, actor Actor) (*models.Order, error) {
	order, err := s.transition(ctx, orderID, models.OrderStatusCancelled, actor, func(tx *gorm.DB, order *models.Order) error {
		order.Notes = appendNote(order.Notes, s.now(), "cancelled by "+actor.Name(), reason)
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Order %d cancelled by %s", order.ID, actor.Name())
	return order, nil
}

// transition moves the order to next. apply runs inside the same
// transaction before the order row is written.
func (s *OrderService) transition(ctx context.Context, orderID uint, next models.OrderStatus, actor Actor, apply func(tx *gorm.DB, order *models.Order) error) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&order, orderID).Error; err != nil {
			return notFound(err, ErrOrderNotFound)
		}
		if !order.Status.CanTransitionTo(next) {
			return detail(ErrOrderTransition, "order %d cannot move from %s to %s", order.ID, order.Status, next)
		}
		if err := tx.Where("order_id = ?", order.ID).Order("id").Find(&order.Items).Error; err != nil {
			return err
		}

		now := s.now()
		order.Status = next
		order.UpdatedAt = now
		if next == models.OrderStatusCompleted {
			order.CompletedAt = &now
		}
		if apply != nil {
			if err := apply(tx, &order); err != nil {
				return err
			}
		}

		update := models.Order{Status: order.Status, CompletedAt: order.CompletedAt, Notes: order.Notes, UpdatedAt: now}
		return tx.Model(&models.Order{ID: order.ID}).
			Select("status", "completed_at", "notes", "updated_at").
			Updates(&update).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid records a verified online payment
func (s *OrderService) MarkPaid(ctx context.Context, orderID uint, method, reference string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&order, orderID).Error; err != nil {
			return notFound(err, ErrOrderNotFound)
		}
		if order.Status == models.OrderStatusCancelled {
			return detail(ErrOrderTransition, "order %d is cancelled", order.ID)
		}
		order.PaymentStatus = models.PaymentStatusPaid
		order.PaymentMethod = method
		if reference != "" {
			order.RazorpayOrderID = reference
		}
		return tx.Model(&models.Order{ID: order.ID}).Updates(map[string]interface{}{
			"payment_status":    order.PaymentStatus,
			"payment_method":    order.PaymentMethod,
			"razorpay_order_id": order.RazorpayOrderID,
			"updated_at":        s.now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Order %d marked paid via %s", order.ID, method)
	return &order, nil
}

// AttachPaymentReference stores the gateway order id used to collect payment
func (s *OrderService) AttachPaymentReference(ctx context.Context, orderID uint, reference string) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).
		Update("razorpay_order_id", reference)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// Get returns one order with its items
func (s *OrderService) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Service").
		First(&order, orderID).Error
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return &order, nil
}

// List returns orders matching filter, newest first. page may be nil.
func (s *OrderService) List(ctx context.Context, filter OrderFilter, page *utils.Pagination) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, validationf("unknown order status %q", filter.Status)
		}
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("order_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("order_date < ?", filter.To)
	}

	query, err := paginate(query, page)
	if err != nil {
		return nil, err
	}

	var orders []models.Order
	err = query.Preload("Customer").Preload("Items").
		Order("order_date DESC, id DESC").
		Find(&orders).Error
	return orders, err
}
