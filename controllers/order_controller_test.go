package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/services"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderPackageLifecycle(t *testing.T) {
	env := setupTest(t)
	customer := seedCustomer(t, env.db, models.DiscountTypeRegular)
	drip := seedService(t, env.db, "Vitamin Drip", 80000)
	token := env.staffToken(t)

	post := func(path string, body interface{}) utils.TestResponse {
		return utils.MakeTestRequest(t, env.router, utils.TestRequest{Method: http.MethodPost, Path: path, Body: body, Token: token})
	}

	// selling a five session package
	resp := post("/api/v1/orders", CreateOrderRequest{
		CustomerID: customer.ID,
		Items:      []OrderItemRequest{{ServiceID: drip.ID, Quantity: 1, PackageType: "PACKAGE_5"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Raw))
	assert.Equal(t, "Order created successfully", resp.Message)
	var created services.OrderResult
	resp.DecodeData(t, &created)
	assert.Equal(t, models.OrderStatusPending, created.Order.Status)
	assert.Nil(t, created.Approval)

	sale := created.Order.ID
	resp = post(fmt.Sprintf("/api/v1/orders/%d/complete", sale), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Raw))

	list := utils.MakeTestRequest(t, env.router, utils.TestRequest{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/v1/customers/%d/packages?status=active", customer.ID),
		Token:  token,
	})
	require.Equal(t, http.StatusOK, list.StatusCode, string(list.Raw))
	var pkgs paginated[models.PackagePurchase]
	list.DecodeData(t, &pkgs)
	require.Len(t, pkgs.Data, 1)
	pkg := pkgs.Data[0]
	assert.Equal(t, 5, pkg.TotalCount)
	assert.Equal(t, 5, pkg.RemainingCount)
	require.NotNil(t, pkg.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(180*24*time.Hour), *pkg.ExpiresAt, time.Hour)

	// a later visit draws one session from it
	resp = post("/api/v1/orders", CreateOrderRequest{
		CustomerID: customer.ID,
		Items:      []OrderItemRequest{{ServiceID: drip.ID, Quantity: 1}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Raw))
	resp.DecodeData(t, &created)
	visit := created.Order.ID

	resp = post(usePackagePath(visit), UsePackageRequest{PackagePurchaseID: pkg.ID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "a PENDING order cannot draw sessions")

	resp = post(fmt.Sprintf("/api/v1/orders/%d/start", visit), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Raw))
	assert.Equal(t, "Order started", resp.Message)

	resp = post(usePackagePath(visit), UsePackageRequest{PackagePurchaseID: pkg.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Raw))
	var usage services.UsageResult
	resp.DecodeData(t, &usage)
	assert.Equal(t, 4, usage.Package.RemainingCount)

	get := utils.MakeTestRequest(t, env.router, utils.TestRequest{Method: http.MethodGet, Path: fmt.Sprintf("/api/v1/orders/%d", visit), Token: token})
	require.Equal(t, http.StatusOK, get.StatusCode, string(get.Raw))
	var order models.Order
	get.DecodeData(t, &order)
	require.NotNil(t, order.SessionInfo)
	assert.Equal(t, 1, order.SessionInfo.UsedInSession)
	assert.Equal(t, 4, order.SessionInfo.RemainingCount)

	// finished orders cannot be cancelled
	resp = post(fmt.Sprintf("/api/v1/orders/%d/cancel", sale), CancelRequest{Reason: "changed mind"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrderWithConflictingDiscounts(t *testing.T) {
	env := setupTest(t)
	vip := seedCustomer(t, env.db, models.DiscountTypeVIP)
	drip := seedService(t, env.db, "Vitamin Drip", 80000)
	now := time.Now()
	seedCoupon(t, env.db, "SPRING10", 0.1, now.AddDate(0, 0, -1), now.AddDate(0, 0, 30))

	resp := utils.MakeTestRequest(t, env.router, utils.TestRequest{
		Method: http.MethodPost,
		Path:   "/api/v1/orders",
		Body: CreateOrderRequest{
			CustomerID: vip.ID,
			Items:      []OrderItemRequest{{ServiceID: drip.ID, Quantity: 1}},
			CouponCode: "spring10",
			StaffNote:  "client brought the flyer",
		},
		Token: env.staffToken(t),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Raw))
	assert.Equal(t, "Order created, coupon held for discount approval", resp.Message)

	var created services.OrderResult
	resp.DecodeData(t, &created)
	require.NotNil(t, created.Approval)
	assert.Equal(t, models.OrderStatusPending, created.Order.Status)
	assert.Zero(t, created.Order.CouponDiscount)
	assert.Equal(t, models.ApprovalPending, created.Approval.Status)
	assert.Equal(t, "client brought the flyer", created.Approval.StaffNote)
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	env := setupTest(t)
	customer := seedCustomer(t, env.db, models.DiscountTypeRegular)
	drip := seedService(t, env.db, "Vitamin Drip", 80000)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{"no items", CreateOrderRequest{CustomerID: customer.ID}, http.StatusBadRequest},
		{"zero quantity", map[string]interface{}{"customer_id": customer.ID, "items": []map[string]interface{}{{"service_id": drip.ID, "quantity": 0}}}, http.StatusBadRequest},
		{"bad package type", CreateOrderRequest{CustomerID: customer.ID, Items: []OrderItemRequest{{ServiceID: drip.ID, Quantity: 1, PackageType: "PACKAGE_X"}}}, http.StatusBadRequest},
		{"unknown customer", CreateOrderRequest{CustomerID: 9999, Items: []OrderItemRequest{{ServiceID: drip.ID, Quantity: 1}}}, http.StatusNotFound},
		{"unknown service", CreateOrderRequest{CustomerID: customer.ID, Items: []OrderItemRequest{{ServiceID: 9999, Quantity: 1}}}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := utils.MakeTestRequest(t, env.router, utils.TestRequest{
				Method: http.MethodPost,
				Path:   "/api/v1/orders",
				Body:   tt.body,
				Token:  env.staffToken(t),
			})
			assert.Equal(t, tt.wantStatus, resp.StatusCode, string(resp.Raw))
		})
	}
}

func TestCancelBodies(t *testing.T) {
	env := setupTest(t)
	customer := seedCustomer(t, env.db, models.DiscountTypeRegular)
	drip := seedService(t, env.db, "Vitamin Drip", 80000)
	open := seedOrder(t, env.db, customer, env.staff, models.OrderStatusPending, 80000)
	emptyBody := seedOrder(t, env.db, customer, env.staff, models.OrderStatusPending, 80000)
	purchase := seedOrder(t, env.db, customer, env.staff, models.OrderStatusCompleted, 240000)
	pkg := seedPackage(t, env.db, purchase, drip, 3, 3)

	orderPath := fmt.Sprintf("/api/v1/orders/%d/cancel", open.ID)
	pkgPath := fmt.Sprintf("/api/v1/packages/%d/cancel", pkg.ID)

	for _, path := range []string{orderPath, pkgPath} {
		resp := utils.MakeTestRequest(t, env.router, utils.TestRequest{
			Method:  http.MethodPost,
			Path:    path,
			RawBody: `{"reason": "no show"`,
			Token:   env.adminToken(t),
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.Equal(t, "Invalid request body", resp.Message)
	}

	var stillOpen models.Order
	require.NoError(t, env.db.First(&stillOpen, open.ID).Error)
	assert.Equal(t, models.OrderStatusPending, stillOpen.Status)
	var stillActive models.PackagePurchase
	require.NoError(t, env.db.First(&stillActive, pkg.ID).Error)
	assert.Equal(t, models.PackageStatusActive, stillActive.Status)

	// the reason is optional
	resp := utils.MakeTestRequest(t, env.router, utils.TestRequest{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/v1/orders/%d/cancel", emptyBody.ID),
		Token:  env.staffToken(t),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Raw))
	assert.Equal(t, "Order cancelled", resp.Message)

	resp = utils.MakeTestRequest(t, env.router, utils.TestRequest{Method: http.MethodPost, Path: pkgPath, Token: env.adminToken(t)})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Raw))
}
