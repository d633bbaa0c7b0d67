package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	ruledomain "github.com/vendra/vendra/internal/commissionrule/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ruledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *ruledomain.CommissionRule) error {
	err := db.WithContext(ctx).Exec(
		`INSERT INTO commission_rules (
			id, name, description, scope, scope_ref, type, value, tier_period,
			include_subcategories, start_date, end_date, priority, is_active,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID,
		rule.Name,
		rule.Description,
		rule.Scope,
		rule.ScopeRef,
		rule.Type,
		rule.Value,
		rule.TierPeriod,
		rule.IncludeSubcategories,
		rule.StartDate,
		rule.EndDate,
		rule.Priority,
		rule.IsActive,
		rule.CreatedAt,
		rule.UpdatedAt,
	).Error
	if err != nil {
		return err
	}
	return r.insertTiers(ctx, db, rule.ID, rule.Tiers)
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rule *ruledomain.CommissionRule) error {
	err := db.WithContext(ctx).Exec(
		`UPDATE commission_rules SET
			name = ?, description = ?, scope = ?, scope_ref = ?, type = ?, value = ?,
			tier_period = ?, include_subcategories = ?, start_date = ?, end_date = ?,
			priority = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		rule.Name,
		rule.Description,
		rule.Scope,
		rule.ScopeRef,
		rule.Type,
		rule.Value,
		rule.TierPeriod,
		rule.IncludeSubcategories,
		rule.StartDate,
		rule.EndDate,
		rule.Priority,
		rule.IsActive,
		rule.UpdatedAt,
		rule.ID,
	).Error
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Exec(
		`DELETE FROM commission_tiers WHERE rule_id = ?`, rule.ID,
	).Error; err != nil {
		return err
	}
	return r.insertTiers(ctx, db, rule.ID, rule.Tiers)
}

func (r *repo) insertTiers(ctx context.Context, db *gorm.DB, ruleID snowflake.ID, tiers []ruledomain.CommissionTier) error {
	for _, tier := range tiers {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO commission_tiers (
				id, rule_id, position, min_amount, max_amount, rate, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			tier.ID,
			ruleID,
			tier.Position,
			tier.MinAmount,
			tier.MaxAmount,
			tier.Rate,
			tier.CreatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ruledomain.CommissionRule, error) {
	var rule ruledomain.CommissionRule
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, scope, scope_ref, type, value, tier_period,
		 include_subcategories, start_date, end_date, priority, is_active,
		 created_at, updated_at
		 FROM commission_rules WHERE id = ?`,
		id,
	).Scan(&rule).Error
	if err != nil {
		return nil, err
	}
	if rule.ID == 0 {
		return nil, nil
	}
	tiers, err := r.listTiers(ctx, db, []snowflake.ID{rule.ID})
	if err != nil {
		return nil, err
	}
	rule.Tiers = tiers[rule.ID]
	return &rule, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]ruledomain.CommissionRule, error) {
	var rules []ruledomain.CommissionRule
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, scope, scope_ref, type, value, tier_period,
		 include_subcategories, start_date, end_date, priority, is_active,
		 created_at, updated_at
		 FROM commission_rules ORDER BY created_at ASC`,
	).Scan(&rules).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachTiers(ctx, db, rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]ruledomain.CommissionRule, error) {
	var rules []ruledomain.CommissionRule
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, scope, scope_ref, type, value, tier_period,
		 include_subcategories, start_date, end_date, priority, is_active,
		 created_at, updated_at
		 FROM commission_rules WHERE is_active ORDER BY created_at ASC`,
	).Scan(&rules).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachTiers(ctx, db, rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) attachTiers(ctx context.Context, db *gorm.DB, rules []ruledomain.CommissionRule) error {
	if len(rules) == 0 {
		return nil
	}
	ids := make([]snowflake.ID, 0, len(rules))
	for i := range rules {
		ids = append(ids, rules[i].ID)
	}
	tiers, err := r.listTiers(ctx, db, ids)
	if err != nil {
		return err
	}
	for i := range rules {
		rules[i].Tiers = tiers[rules[i].ID]
	}
	return nil
}

func (r *repo) listTiers(ctx context.Context, db *gorm.DB, ruleIDs []snowflake.ID) (map[snowflake.ID][]ruledomain.CommissionTier, error) {
	var tiers []ruledomain.CommissionTier
	err := db.WithContext(ctx).Raw(
		`SELECT id, rule_id, position, min_amount, max_amount, rate, created_at
		 FROM commission_tiers WHERE rule_id IN ? ORDER BY rule_id, position ASC`,
		ruleIDs,
	).Scan(&tiers).Error
	if err != nil {
		return nil, err
	}
	byRule := make(map[snowflake.ID][]ruledomain.CommissionTier, len(ruleIDs))
	for _, tier := range tiers {
		byRule[tier.RuleID] = append(byRule[tier.RuleID], tier)
	}
	return byRule, nil
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE commission_rules SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		false,
		id,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if err := db.WithContext(ctx).Exec(
		`DELETE FROM commission_tiers WHERE rule_id = ?`, id,
	).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(
		`DELETE FROM commission_rules WHERE id = ?`, id,
	).Error
}
