package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/Govind-619/InfuseDesk/models"
	"github.com/Govind-619/InfuseDesk/services"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCoupon(t *testing.T, db *gorm.DB, code string, value float64, from, until time.Time) models.Coupon {
	t.Helper()
	coupon := models.Coupon{
		Code:          code,
		Name:          code,
		DiscountKind:  models.DiscountPercent,
		DiscountValue: value,
		ValidFrom:     from,
		ValidUntil:    until,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&coupon).Error)
	return coupon
}

func TestValidateCoupon(t *testing.T) {
	env := setupTest(t)
	now := time.Now()
	seedCoupon(t, env.db, "SPRING10", 0.1, now.AddDate(0, 0, -1), now.AddDate(0, 0, 30))
	seedCoupon(t, env.db, "WINTER20", 0.2, now.AddDate(0, -3, 0), now.AddDate(0, -1, 0))
	vip := seedCustomer(t, env.db, models.DiscountTypeVIP)
	regular := seedCustomer(t, env.db, models.DiscountTypeRegular)

	t.Run("valid code is case insensitive", func(t *testing.T) {
		resp := utils.MakeTestRequest(t, env.router, utils.TestRequest{
			Method: http.MethodPost,
			Path:   "/api/v1/coupons/validate",
			Body:   ValidateCouponRequest{Code: " spring10 ", OrderAmount: 80000},
			Token:  env.staffToken(t),
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Raw))
		assert.Equal(t, "Coupon is valid", resp.Message)

		var check services.CouponCheck
		resp.DecodeData(t, &check)
		assert.True(t, check.Valid)
		assert.Equal(t, int64(8000), check.DiscountAmount)
		assert.Nil(t, check.Combine)
	})

	t.Run("expired coupon", func(t *testing.T) {
		resp := utils.MakeTestRequest(t, env.router, utils.TestRequest{
			Method: http.MethodPost,
			Path:   "/api/v1/coupons/validate",
			Body:   ValidateCouponRequest{Code: "WINTER20", OrderAmount: 80000},
			Token:  env.staffToken(t),
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Raw))
		assert.Contains(t, resp.Message, "coupon expired on")

		var check services.CouponCheck
		resp.DecodeData(t, &check)
		assert.False(t, check.Valid)
		assert.Zero(t, check.DiscountAmount)
	})

	t.Run("combination depends on the customer", func(t *testing.T) {
		for _, tc := range []struct {
			customer    models.Customer
			wantCombine bool
		}{
			{vip, false},
			{regular, true},
		} {
			resp := utils.MakeTestRequest(t, env.router, utils.TestRequest{
				Method: http.MethodPost,
				Path:   "/api/v1/coupons/validate",
				Body:   ValidateCouponRequest{Code: "SPRING10", OrderAmount: 80000, CustomerID: tc.customer.ID},
				Token:  env.staffToken(t),
			})
			require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Raw))
			var check services.CouponCheck
			resp.DecodeData(t, &check)
			require.NotNil(t, check.Combine)
			assert.Equal(t, tc.wantCombine, check.Combine.CanCombine, tc.customer.DiscountType)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		resp := utils.MakeTestRequest(t, env.router, utils.TestRequest{
			Method: http.MethodPost,
			Path:   "/api/v1/coupons/validate",
			Body:   ValidateCouponRequest{Code: "NOPE", OrderAmount: 80000},
			Token:  env.staffToken(t),
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "coupon not found", resp.Message)
	})

	t.Run("missing code", func(t *testing.T) {
		resp := utils.MakeTestRequest(t, env.router, utils.TestRequest{
			Method: http.MethodPost,
			Path:   "/api/v1/coupons/validate",
			Body:   map[string]interface{}{"order_amount": 80000},
			Token:  env.staffToken(t),
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
