package cache

import (
	"time"

	ruledomain "github.com/vendra/vendra/internal/commissionrule/domain"
	"go.uber.org/fx"
)

const defaultRuleSetTTL = 30 * time.Second

// Module provides the shared rule cache.
var Module = fx.Module("cache",
	fx.Provide(NewRuleCache),
)

// RuleCache holds the active commission-rule set for the resolver hot
// path. The rule service invalidates it on every write, so resolution
// never reads a stale rule past the TTL nor past an edit.
type RuleCache interface {
	Get() ([]ruledomain.CommissionRule, bool)
	Set(rules []ruledomain.CommissionRule)
	Invalidate()
}

type ruleCache struct {
	rules Cache[string, []ruledomain.CommissionRule]
	ttl   time.Duration
}

const ruleSetKey = "active_rules"

// NewRuleCache returns an in-memory cache for the active rule set.
func NewRuleCache() RuleCache {
	return &ruleCache{
		rules: NewTTLCache[string, []ruledomain.CommissionRule](),
		ttl:   defaultRuleSetTTL,
	}
}

func (c *ruleCache) Get() ([]ruledomain.CommissionRule, bool) {
	return c.rules.Get(ruleSetKey)
}

func (c *ruleCache) Set(rules []ruledomain.CommissionRule) {
	c.rules.Set(ruleSetKey, rules, c.ttl)
}

func (c *ruleCache) Invalidate() {
	c.rules.Delete(ruleSetKey)
}
