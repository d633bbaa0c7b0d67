package service

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	ruledomain "github.com/vendra/vendra/internal/commissionrule/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func percentageRule(value string) *ruledomain.CommissionRule {
	return &ruledomain.CommissionRule{
		ID:    snowflake.ParseInt64(101),
		Type:  ruledomain.TypePercentage,
		Value: decPtr(value),
	}
}

func TestCalculatePercentage(t *testing.T) {
	tests := []struct {
		name           string
		rate           string
		saleAmount     string
		wantCommission string
		wantEarning    string
	}{
		{"whole amounts", "10", "100.00", "10.00", "90.00"},
		{"rounds half up", "10", "100.05", "10.01", "100.04"},
		{"rounds down", "7.5", "99.99", "7.50", "92.49"},
		{"zero rate", "0", "100.00", "0.00", "100.00"},
		{"hundred percent", "100", "59.90", "59.90", "0.00"},
		{"zero sale", "15", "0.00", "0.00", "0.00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bd, err := calculate(percentageRule(tc.rate), dec(tc.saleAmount), decimal.Zero)
			require.NoError(t, err)

			assert.True(t, bd.CommissionAmount.Equal(dec(tc.wantCommission)),
				"commission %s, want %s", bd.CommissionAmount, tc.wantCommission)
			assert.True(t, bd.VendorEarning.Equal(dec(tc.wantEarning)),
				"earning %s, want %s", bd.VendorEarning, tc.wantEarning)
			assert.Equal(t, string(ruledomain.TypePercentage), bd.CommissionType)
			require.NotNil(t, bd.AppliedRate)
			assert.True(t, bd.AppliedRate.Equal(dec(tc.rate)))
			assert.Nil(t, bd.TierLevel)
		})
	}
}

func TestCalculateSplitAlwaysReconciles(t *testing.T) {
	// Awkward rates whose raw product needs rounding.
	rates := []string{"3.33", "7.77", "12.5", "33.33", "66.67"}
	amounts := []string{"0.01", "9.99", "100.05", "12345.67"}

	for _, rate := range rates {
		for _, amount := range amounts {
			bd, err := calculate(percentageRule(rate), dec(amount), decimal.Zero)
			require.NoError(t, err)
			sum := bd.CommissionAmount.Add(bd.VendorEarning)
			assert.True(t, sum.Equal(dec(amount)),
				"rate %s amount %s: %s + %s != %s", rate, amount, bd.CommissionAmount, bd.VendorEarning, amount)
		}
	}
}

func TestCalculateFixed(t *testing.T) {
	rule := &ruledomain.CommissionRule{
		ID:    snowflake.ParseInt64(102),
		Type:  ruledomain.TypeFixed,
		Value: decPtr("5.00"),
	}

	bd, err := calculate(rule, dec("80.00"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, bd.CommissionAmount.Equal(dec("5.00")))
	assert.True(t, bd.VendorEarning.Equal(dec("75.00")))
	assert.Equal(t, string(ruledomain.TypeFixed), bd.CommissionType)
	assert.Nil(t, bd.AppliedRate)
}

func TestCalculateFixedClampsAtSaleAmount(t *testing.T) {
	rule := &ruledomain.CommissionRule{
		ID:    snowflake.ParseInt64(103),
		Type:  ruledomain.TypeFixed,
		Value: decPtr("5.00"),
	}

	bd, err := calculate(rule, dec("3.20"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, bd.CommissionAmount.Equal(dec("3.20")))
	assert.True(t, bd.VendorEarning.IsZero(), "earning must never go negative, got %s", bd.VendorEarning)
}

func tieredRule(period ruledomain.TierPeriod) *ruledomain.CommissionRule {
	return &ruledomain.CommissionRule{
		ID:         snowflake.ParseInt64(104),
		Type:       ruledomain.TypeTiered,
		TierPeriod: period,
		Tiers: []ruledomain.CommissionTier{
			{Position: 0, MinAmount: dec("0"), MaxAmount: decPtr("10000"), Rate: dec("5")},
			{Position: 1, MinAmount: dec("10000"), MaxAmount: decPtr("50000"), Rate: dec("4")},
			{Position: 2, MinAmount: dec("50000"), MaxAmount: nil, Rate: dec("3")},
		},
	}
}

func TestSelectTier(t *testing.T) {
	tiers := tieredRule(ruledomain.PeriodMonthly).Tiers

	tests := []struct {
		periodSales string
		want        int
	}{
		{"0", 0},
		{"9999.99", 0},
		{"10000", 1},     // boundary belongs to the higher bracket
		{"49999.99", 1},
		{"50000", 2},
		{"1000000", 2},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, selectTier(tiers, dec(tc.periodSales)), "periodSales=%s", tc.periodSales)
	}
}

func TestSelectTierBelowFirstBound(t *testing.T) {
	tiers := []ruledomain.CommissionTier{
		{Position: 0, MinAmount: dec("1000"), MaxAmount: decPtr("5000"), Rate: dec("5")},
		{Position: 1, MinAmount: dec("5000"), MaxAmount: nil, Rate: dec("4")},
	}
	assert.Equal(t, 0, selectTier(tiers, dec("200")))
}

func TestCalculateTieredUsesPreSaleAggregate(t *testing.T) {
	rule := tieredRule(ruledomain.PeriodMonthly)

	// 9500 accumulated, a 1000 sale still prices entirely in tier 0 even
	// though it crosses the 10000 boundary.
	bd, err := calculate(rule, dec("1000.00"), dec("9500.00"))
	require.NoError(t, err)
	require.NotNil(t, bd.TierLevel)
	assert.Equal(t, 0, *bd.TierLevel)
	assert.True(t, bd.CommissionAmount.Equal(dec("50.00")), "got %s", bd.CommissionAmount)
	assert.True(t, bd.VendorEarning.Equal(dec("950.00")))
}

func TestCalculateTieredWithoutTiers(t *testing.T) {
	rule := &ruledomain.CommissionRule{
		ID:   snowflake.ParseInt64(105),
		Type: ruledomain.TypeTiered,
	}
	_, err := calculate(rule, dec("100.00"), decimal.Zero)
	assert.Error(t, err)
}

func TestCalculateFallback(t *testing.T) {
	bd := calculateFallback(dec("12"), dec("100.00"))
	assert.True(t, bd.CommissionAmount.Equal(dec("12.00")))
	assert.True(t, bd.VendorEarning.Equal(dec("88.00")))
	assert.Equal(t, TypePlanFallback, bd.CommissionType)
	assert.Nil(t, bd.RuleID)
}
