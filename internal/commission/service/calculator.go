package service

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	commissiondomain "github.com/vendra/vendra/internal/commission/domain"
	ruledomain "github.com/vendra/vendra/internal/commissionrule/domain"
)

var oneHundred = decimal.NewFromInt(100)

// TypePlanFallback marks ledger rows computed from the vendor's plan
// rate when no rule matched.
const TypePlanFallback = "plan_fallback"

// breakdown is the output of a single commission calculation. The vendor
// earning is always derived by subtraction so the two sides reconcile to
// the sale amount exactly.
type breakdown struct {
	CommissionAmount decimal.Decimal
	VendorEarning    decimal.Decimal
	CommissionType   string
	AppliedRate      *decimal.Decimal
	TierLevel        *int
	RuleID           *snowflake.ID
}

// calculate computes the platform/vendor split for one sale under the
// given rule. periodSales is the vendor's cumulative sales before this
// sale, used only for tier selection. Pure: no I/O, no clock.
func calculate(rule *ruledomain.CommissionRule, saleAmount, periodSales decimal.Decimal) (breakdown, error) {
	switch rule.Type {
	case ruledomain.TypePercentage:
		bd := percentageSplit(saleAmount, *rule.Value)
		bd.RuleID = &rule.ID
		return bd, nil

	case ruledomain.TypeFixed:
		// Commission never exceeds the sale itself.
		commission := *rule.Value
		if commission.GreaterThan(saleAmount) {
			commission = saleAmount
		}
		commission = round2(commission)
		return breakdown{
			CommissionAmount: commission,
			VendorEarning:    saleAmount.Sub(commission),
			CommissionType:   string(ruledomain.TypeFixed),
			RuleID:           &rule.ID,
		}, nil

	case ruledomain.TypeTiered:
		if len(rule.Tiers) == 0 {
			return breakdown{}, commissiondomain.ErrInvalidTiers
		}
		level := selectTier(rule.Tiers, periodSales)
		tier := rule.Tiers[level]
		bd := percentageSplit(saleAmount, tier.Rate)
		bd.CommissionType = string(ruledomain.TypeTiered)
		bd.TierLevel = &level
		bd.RuleID = &rule.ID
		return bd, nil

	default:
		return breakdown{}, commissiondomain.ErrInvalidItem
	}
}

// calculateFallback applies the vendor's plan-level rate when no rule
// resolves for the sale.
func calculateFallback(planRate, saleAmount decimal.Decimal) breakdown {
	bd := percentageSplit(saleAmount, planRate)
	bd.CommissionType = TypePlanFallback
	return bd
}

func percentageSplit(saleAmount, rate decimal.Decimal) breakdown {
	commission := round2(saleAmount.Mul(rate).Div(oneHundred))
	applied := rate
	return breakdown{
		CommissionAmount: commission,
		VendorEarning:    saleAmount.Sub(commission),
		CommissionType:   string(ruledomain.TypePercentage),
		AppliedRate:      &applied,
	}
}

// selectTier returns the index of the bracket containing periodSales.
// Brackets are [MinAmount, MaxAmount) with a nil MaxAmount unbounded.
// Period sales beyond every bound select the last tier; below the first
// bound, the first.
func selectTier(tiers []ruledomain.CommissionTier, periodSales decimal.Decimal) int {
	selected := 0
	for i, tier := range tiers {
		if periodSales.LessThan(tier.MinAmount) {
			break
		}
		selected = i
		if tier.MaxAmount == nil || periodSales.LessThan(*tier.MaxAmount) {
			return i
		}
	}
	return selected
}

// round2 rounds half-up to two decimal places.
func round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}
