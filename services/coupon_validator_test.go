package services

import (
	"testing"
	"time"

	"github.com/Govind-619/InfuseDesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeCoupon(kind models.DiscountKind, value float64) *models.Coupon {
	return &models.Coupon{
		Code:          "WELCOME",
		DiscountKind:  kind,
		DiscountValue: value,
		ValidFrom:     testNow.AddDate(0, -1, 0),
		ValidUntil:    testNow.AddDate(0, 1, 0),
		IsActive:      true,
	}
}

func TestCalculateCouponDiscount(t *testing.T) {
	tests := []struct {
		name   string
		coupon *models.Coupon
		amount int64
		want   int64
	}{
		{
			name: "percent capped by max discount",
			coupon: func() *models.Coupon {
				c := activeCoupon(models.DiscountPercent, 0.1)
				c.MaxDiscount = ptr(int64(5000))
				return c
			}(),
			amount: 100000,
			want:   5000,
		},
		{"percent without cap", activeCoupon(models.DiscountPercent, 0.1), 100000, 10000},
		{"percent rounds to nearest", activeCoupon(models.DiscountPercent, 0.15), 1003, 150},
		{"full percent", activeCoupon(models.DiscountPercent, 1), 4200, 4200},
		{"amount clamps to order", activeCoupon(models.DiscountAmount, 3000), 2000, 2000},
		{"amount below order", activeCoupon(models.DiscountAmount, 3000), 20000, 3000},
		{"zero order", activeCoupon(models.DiscountAmount, 3000), 0, 0},
		{"unknown kind", activeCoupon("BOGO", 1), 5000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateCouponDiscount(tt.coupon, tt.amount))
		})
	}
}

func TestValidateCouponCheckOrder(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *models.Coupon)
		amount  int64
		wantErr string
	}{
		{"inactive wins over everything", func(c *models.Coupon) {
			c.IsActive = false
			c.ValidUntil = testNow.AddDate(0, 0, -1)
			c.UsageLimit = ptr(1)
			c.UsedCount = 1
		}, 10, "not active"},
		{"not yet valid", func(c *models.Coupon) { c.ValidFrom = testNow.Add(time.Hour) }, 10000, "not valid until"},
		{"expired before usage limit", func(c *models.Coupon) {
			c.ValidUntil = testNow.Add(-time.Hour)
			c.UsageLimit = ptr(1)
			c.UsedCount = 1
		}, 10000, "expired"},
		{"usage limit before minimum amount", func(c *models.Coupon) {
			c.UsageLimit = ptr(2)
			c.UsedCount = 2
			c.MinAmount = ptr(int64(50000))
		}, 10000, "usage limit"},
		{"minimum amount", func(c *models.Coupon) { c.MinAmount = ptr(int64(50000)) }, 49999, "at least 50000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := activeCoupon(models.DiscountAmount, 1000)
			tt.mutate(c)
			got := ValidateCoupon(c, tt.amount, testNow)
			assert.False(t, got.Valid)
			assert.Contains(t, got.Error, tt.wantErr)
			assert.Zero(t, got.DiscountAmount)
		})
	}
}

func TestValidateCouponValid(t *testing.T) {
	c := activeCoupon(models.DiscountPercent, 0.1)
	c.MaxDiscount = ptr(int64(5000))
	c.MinAmount = ptr(int64(100000))
	c.UsageLimit = ptr(10)
	c.UsedCount = 9

	got := ValidateCoupon(c, 100000, testNow)
	assert.True(t, got.Valid)
	assert.Empty(t, got.Error)
	assert.Equal(t, int64(5000), got.DiscountAmount)

	// the window bounds are inclusive
	assert.True(t, ValidateCoupon(c, 100000, c.ValidFrom).Valid)
	assert.True(t, ValidateCoupon(c, 100000, c.ValidUntil).Valid)
}

func TestCheckCouponDefinition(t *testing.T) {
	valid := activeCoupon(models.DiscountPercent, 0.2)
	require.NoError(t, CheckCouponDefinition(valid))

	tests := []struct {
		name   string
		mutate func(c *models.Coupon)
	}{
		{"missing code", func(c *models.Coupon) { c.Code = "" }},
		{"percent above one", func(c *models.Coupon) { c.DiscountValue = 10 }},
		{"percent zero", func(c *models.Coupon) { c.DiscountValue = 0 }},
		{"amount negative", func(c *models.Coupon) { c.DiscountKind = models.DiscountAmount; c.DiscountValue = -5 }},
		{"unknown kind", func(c *models.Coupon) { c.DiscountKind = "FREE" }},
		{"zero usage limit", func(c *models.Coupon) { c.UsageLimit = ptr(0) }},
		{"window reversed", func(c *models.Coupon) { c.ValidUntil = c.ValidFrom.Add(-time.Hour) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *valid
			tt.mutate(&c)
			err := CheckCouponDefinition(&c)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestCanCombineWithCustomerDiscount(t *testing.T) {
	for _, typ := range []models.CustomerDiscountType{models.DiscountTypeVIP, models.DiscountTypeBirthday, models.DiscountTypeEmployee} {
		got := DefaultDiscountPolicy.CanCombineWithCustomerDiscount(typ)
		assert.False(t, got.CanCombine, typ)
		assert.NotEmpty(t, got.Reason, typ)
	}

	got := DefaultDiscountPolicy.CanCombineWithCustomerDiscount(models.DiscountTypeRegular)
	assert.True(t, got.CanCombine)
	assert.Empty(t, got.Reason)

	custom := DiscountPolicy{models.DiscountTypeVIP: {Rate: 0.05, Combinable: true}}
	assert.True(t, custom.CanCombineWithCustomerDiscount(models.DiscountTypeVIP).CanCombine)
}

func TestPriceOrder(t *testing.T) {
	coupon := activeCoupon(models.DiscountAmount, 3000)

	t.Run("regular customer stacks coupon", func(t *testing.T) {
		got, err := DefaultDiscountPolicy.PriceOrder(models.DiscountTypeRegular, 20000, coupon, testNow)
		require.NoError(t, err)
		assert.False(t, got.Conflict)
		assert.Zero(t, got.CustomerDiscount)
		assert.Equal(t, int64(3000), got.CouponDiscount)
		assert.Equal(t, int64(17000), got.FinalAmount)
		require.Len(t, got.Applied, 1)
		assert.Equal(t, models.DiscountSourceCoupon, got.Applied[0].Source)
	})

	t.Run("vip without coupon", func(t *testing.T) {
		got, err := DefaultDiscountPolicy.PriceOrder(models.DiscountTypeVIP, 20000, nil, testNow)
		require.NoError(t, err)
		assert.Equal(t, int64(2000), got.CustomerDiscount)
		assert.Equal(t, int64(18000), got.FinalAmount)
	})

	t.Run("vip with coupon conflicts", func(t *testing.T) {
		got, err := DefaultDiscountPolicy.PriceOrder(models.DiscountTypeVIP, 20000, coupon, testNow)
		require.NoError(t, err)
		assert.True(t, got.Conflict)
		assert.NotEmpty(t, got.ConflictReason)
		assert.Equal(t, int64(2000), got.CustomerDiscount)
		assert.Zero(t, got.CouponDiscount)
		assert.Equal(t, int64(3000), got.CouponSavings)
		assert.Equal(t, int64(18000), got.FinalAmount)
		assert.Len(t, got.Applied, 2)
	})

	t.Run("invalid coupon", func(t *testing.T) {
		c := *coupon
		c.IsActive = false
		_, err := DefaultDiscountPolicy.PriceOrder(models.DiscountTypeRegular, 20000, &c, testNow)
		assert.ErrorIs(t, err, ErrCouponInvalid)
		assert.Contains(t, err.Error(), "not active")
	})
}

func TestParsePackageCount(t *testing.T) {
	tests := []struct {
		tag     string
		want    int
		wantErr bool
	}{
		{"package8", 8, false},
		{"PACKAGE_10", 10, false},
		{"vitamin_package_5", 5, false},
		{" PACKAGE_3 ", 3, false},
		{"package_x", 0, true},
		{"PACKAGE_0", 0, true},
		{"package0", 0, true},
		{"PACKAGE_-2", 0, true},
		{"PACKAGE", 0, true},
		{"single", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParsePackageCount(tt.tag)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidPackageType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
