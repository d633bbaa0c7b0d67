package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/vendra/vendra/internal/cache"
	ruledomain "github.com/vendra/vendra/internal/commissionrule/domain"
	"gorm.io/gorm"
)

// ResolveInput identifies the sale context a rule is looked up for.
type ResolveInput struct {
	ProductID         snowflake.ID
	VendorID          snowflake.ID
	CategoryID        snowflake.ID
	CategoryAncestors []snowflake.ID
	AsOf              time.Time
}

// Resolver selects the single commission rule governing a sale, or nil
// when none applies. Storage failures propagate; they are never treated
// as "no rule", since that would silently fall back to the plan rate.
type Resolver struct {
	db    *gorm.DB
	rules ruledomain.Repository
	cache cache.RuleCache
}

func NewResolver(db *gorm.DB, rules ruledomain.Repository, ruleCache cache.RuleCache) *Resolver {
	return &Resolver{db: db, rules: rules, cache: ruleCache}
}

// Resolve ranks matching candidates by scope specificity first, then
// priority descending, then creation time ascending. Specificity always
// dominates priority: a low-priority product rule beats a high-priority
// category rule.
func (r *Resolver) Resolve(ctx context.Context, in ResolveInput) (*ruledomain.CommissionRule, error) {
	rules, err := r.activeRules(ctx)
	if err != nil {
		return nil, err
	}

	var best *ruledomain.CommissionRule
	for i := range rules {
		rule := &rules[i]
		if !rule.ActiveAt(in.AsOf) {
			continue
		}
		if !r.matchesScope(rule, in) {
			continue
		}
		if best == nil || ranksHigher(rule, best) {
			best = rule
		}
	}
	return best, nil
}

func (r *Resolver) activeRules(ctx context.Context) ([]ruledomain.CommissionRule, error) {
	if rules, ok := r.cache.Get(); ok {
		return rules, nil
	}
	rules, err := r.rules.ListActive(ctx, r.db)
	if err != nil {
		return nil, err
	}
	r.cache.Set(rules)
	return rules, nil
}

func (r *Resolver) matchesScope(rule *ruledomain.CommissionRule, in ResolveInput) bool {
	switch rule.Scope {
	case ruledomain.ScopePlatform:
		return true
	case ruledomain.ScopeVendor:
		return rule.ScopeRef != nil && *rule.ScopeRef == in.VendorID
	case ruledomain.ScopeProduct:
		return rule.ScopeRef != nil && *rule.ScopeRef == in.ProductID
	case ruledomain.ScopeCategory:
		if rule.ScopeRef == nil {
			return false
		}
		if *rule.ScopeRef == in.CategoryID {
			return true
		}
		// An ancestor-category rule only reaches down the tree when it
		// opts in via includeSubcategories.
		if !rule.IncludeSubcategories {
			return false
		}
		for _, ancestor := range in.CategoryAncestors {
			if *rule.ScopeRef == ancestor {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func ranksHigher(candidate, current *ruledomain.CommissionRule) bool {
	if candidate.Scope.Specificity() != current.Scope.Specificity() {
		return candidate.Scope.Specificity() > current.Scope.Specificity()
	}
	if candidate.Priority != current.Priority {
		return candidate.Priority > current.Priority
	}
	return candidate.CreatedAt.Before(current.CreatedAt)
}
