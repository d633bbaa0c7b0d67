package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/vendra/vendra/internal/audit/domain"
	"github.com/vendra/vendra/internal/cache"
	catalogdomain "github.com/vendra/vendra/internal/catalog/domain"
	ruledomain "github.com/vendra/vendra/internal/commissionrule/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    ruledomain.Repository
	Catalog catalogdomain.Service
	Cache   cache.RuleCache
	Audit   auditdomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    ruledomain.Repository
	catalog catalogdomain.Service
	cache   cache.RuleCache
	audit   auditdomain.Service
}

func New(p Params) ruledomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("commissionrule.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		catalog: p.Catalog,
		cache:   p.Cache,
		audit:   p.Audit,
	}
}

func (s *Service) Create(ctx context.Context, req ruledomain.CreateRequest) (*ruledomain.Response, error) {
	rule, err := s.buildRule(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rule.ID = s.genID.Generate()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	for i := range rule.Tiers {
		rule.Tiers[i].ID = s.genID.Generate()
		rule.Tiers[i].RuleID = rule.ID
		rule.Tiers[i].CreatedAt = now
	}

	if err := s.repo.Insert(ctx, s.db, rule); err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	s.writeAudit(ctx, "commission_rule.created", rule.ID)

	return s.toResponse(rule), nil
}

func (s *Service) Update(ctx context.Context, id string, req ruledomain.UpdateRequest) (*ruledomain.Response, error) {
	ruleID, err := parseID(id)
	if err != nil {
		return nil, ruledomain.ErrInvalidID
	}

	existing, err := s.repo.FindByID(ctx, s.db, ruleID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ruledomain.ErrNotFound
	}

	rule, err := s.buildRule(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rule.ID = existing.ID
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = now
	for i := range rule.Tiers {
		rule.Tiers[i].ID = s.genID.Generate()
		rule.Tiers[i].RuleID = rule.ID
		rule.Tiers[i].CreatedAt = now
	}

	if err := s.repo.Update(ctx, s.db, rule); err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	s.writeAudit(ctx, "commission_rule.updated", rule.ID)

	return s.toResponse(rule), nil
}

func (s *Service) Get(ctx context.Context, id string) (*ruledomain.Response, error) {
	ruleID, err := parseID(id)
	if err != nil {
		return nil, ruledomain.ErrInvalidID
	}

	rule, err := s.repo.FindByID(ctx, s.db, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ruledomain.ErrNotFound
	}
	return s.toResponse(rule), nil
}

func (s *Service) List(ctx context.Context) ([]ruledomain.Response, error) {
	rules, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	resp := make([]ruledomain.Response, 0, len(rules))
	for i := range rules {
		resp = append(resp, *s.toResponse(&rules[i]))
	}
	return resp, nil
}

// Delete removes an unreferenced rule. A rule referenced by ledger
// records is deactivated instead so recorded history keeps a resolvable
// origin; the degraded outcome is reported to the caller.
func (s *Service) Delete(ctx context.Context, id string) (*ruledomain.DeleteResult, error) {
	ruleID, err := parseID(id)
	if err != nil {
		return nil, ruledomain.ErrInvalidID
	}

	rule, err := s.repo.FindByID(ctx, s.db, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ruledomain.ErrNotFound
	}

	refs, err := s.countLedgerRefs(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if refs > 0 {
		if err := s.repo.Deactivate(ctx, s.db, ruleID); err != nil {
			return nil, err
		}
		s.cache.Invalidate()
		s.writeAudit(ctx, "commission_rule.deactivated", ruleID)
		return &ruledomain.DeleteResult{Deleted: false, Deactivated: true}, nil
	}

	if err := s.repo.Delete(ctx, s.db, ruleID); err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	s.writeAudit(ctx, "commission_rule.deleted", ruleID)
	return &ruledomain.DeleteResult{Deleted: true, Deactivated: false}, nil
}

func (s *Service) countLedgerRefs(ctx context.Context, ruleID snowflake.ID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM order_commissions WHERE rule_id = ?`,
		ruleID,
	).Scan(&count).Error
	return count, err
}

func (s *Service) writeAudit(ctx context.Context, action string, ruleID snowflake.ID) {
	if s.audit == nil {
		return
	}
	if err := s.audit.AuditLog(ctx, action, "commission_rule", ruleID.String(), nil); err != nil {
		s.log.Warn("failed to write rule audit log", zap.Error(err))
	}
}

func (s *Service) buildRule(ctx context.Context, req ruledomain.CreateRequest) (*ruledomain.CommissionRule, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ruledomain.ErrInvalidName
	}

	scope, err := parseScope(req.Scope)
	if err != nil {
		return nil, err
	}

	scopeRef, err := s.parseScopeRef(ctx, scope, req.ScopeRef)
	if err != nil {
		return nil, err
	}

	ruleType, err := parseType(req.Type)
	if err != nil {
		return nil, err
	}

	value, err := parseValue(ruleType, req.Value)
	if err != nil {
		return nil, err
	}

	tiers, tierPeriod, err := parseTiers(ruleType, req.Tiers, req.TierPeriod)
	if err != nil {
		return nil, err
	}

	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, ruledomain.ErrInvalidDateRange
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	// includeSubcategories only widens category-scope matching.
	includeSubcategories := req.IncludeSubcategories && scope == ruledomain.ScopeCategory

	return &ruledomain.CommissionRule{
		Name:                 name,
		Description:          strings.TrimSpace(req.Description),
		Scope:                scope,
		ScopeRef:             scopeRef,
		Type:                 ruleType,
		Value:                value,
		TierPeriod:           tierPeriod,
		IncludeSubcategories: includeSubcategories,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		Priority:             req.Priority,
		IsActive:             active,
		Tiers:                tiers,
	}, nil
}

func (s *Service) parseScopeRef(ctx context.Context, scope ruledomain.RuleScope, raw string) (*snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if scope == ruledomain.ScopePlatform {
		if raw != "" {
			return nil, ruledomain.ErrInvalidScopeRef
		}
		return nil, nil
	}
	if raw == "" {
		return nil, ruledomain.ErrInvalidScopeRef
	}

	ref, err := snowflake.ParseString(raw)
	if err != nil {
		return nil, ruledomain.ErrInvalidScopeRef
	}

	var exists bool
	switch scope {
	case ruledomain.ScopeVendor:
		exists, err = s.catalog.VendorExists(ctx, ref)
	case ruledomain.ScopeCategory:
		exists, err = s.catalog.CategoryExists(ctx, ref)
	case ruledomain.ScopeProduct:
		exists, err = s.catalog.ProductExists(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ruledomain.ErrUnknownScopeRef
	}
	return &ref, nil
}

func parseScope(value ruledomain.RuleScope) (ruledomain.RuleScope, error) {
	switch ruledomain.RuleScope(strings.ToLower(strings.TrimSpace(string(value)))) {
	case ruledomain.ScopePlatform:
		return ruledomain.ScopePlatform, nil
	case ruledomain.ScopeVendor:
		return ruledomain.ScopeVendor, nil
	case ruledomain.ScopeCategory:
		return ruledomain.ScopeCategory, nil
	case ruledomain.ScopeProduct:
		return ruledomain.ScopeProduct, nil
	default:
		return "", ruledomain.ErrInvalidScope
	}
}

func parseType(value ruledomain.RuleType) (ruledomain.RuleType, error) {
	switch ruledomain.RuleType(strings.ToLower(strings.TrimSpace(string(value)))) {
	case ruledomain.TypePercentage:
		return ruledomain.TypePercentage, nil
	case ruledomain.TypeFixed:
		return ruledomain.TypeFixed, nil
	case ruledomain.TypeTiered:
		return ruledomain.TypeTiered, nil
	default:
		return "", ruledomain.ErrInvalidType
	}
}

func parseValue(ruleType ruledomain.RuleType, raw *string) (*decimal.Decimal, error) {
	if ruleType == ruledomain.TypeTiered {
		if raw != nil {
			return nil, ruledomain.ErrInvalidValue
		}
		return nil, nil
	}
	if raw == nil {
		return nil, ruledomain.ErrInvalidValue
	}
	value, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil || value.IsNegative() {
		return nil, ruledomain.ErrInvalidValue
	}
	return &value, nil
}

func parseTiers(ruleType ruledomain.RuleType, inputs []ruledomain.TierInput, period ruledomain.TierPeriod) ([]ruledomain.CommissionTier, ruledomain.TierPeriod, error) {
	if ruleType != ruledomain.TypeTiered {
		if len(inputs) > 0 {
			return nil, "", ruledomain.ErrInvalidTiers
		}
		return nil, ruledomain.PeriodPerOrder, nil
	}
	if len(inputs) == 0 {
		return nil, "", ruledomain.ErrInvalidTiers
	}

	tierPeriod, err := parseTierPeriod(period)
	if err != nil {
		return nil, "", err
	}

	hundred := decimal.NewFromInt(100)
	tiers := make([]ruledomain.CommissionTier, 0, len(inputs))
	for i, input := range inputs {
		minAmount, err := decimal.NewFromString(strings.TrimSpace(input.MinAmount))
		if err != nil || minAmount.IsNegative() {
			return nil, "", ruledomain.ErrInvalidTiers
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(input.Rate))
		if err != nil || rate.IsNegative() || rate.GreaterThan(hundred) {
			return nil, "", ruledomain.ErrInvalidTiers
		}
		tier := ruledomain.CommissionTier{
			Position:  i,
			MinAmount: minAmount,
			Rate:      rate,
		}
		if input.MaxAmount != nil {
			maxAmount, err := decimal.NewFromString(strings.TrimSpace(*input.MaxAmount))
			if err != nil || maxAmount.LessThanOrEqual(minAmount) {
				return nil, "", ruledomain.ErrInvalidTiers
			}
			tier.MaxAmount = &maxAmount
		}
		tiers = append(tiers, tier)
	}

	// Tiers must ascend without gaps in ordering: every tier except the
	// last needs an upper bound no greater than its successor's lower.
	for i := 0; i < len(tiers)-1; i++ {
		if tiers[i].MaxAmount == nil {
			return nil, "", ruledomain.ErrInvalidTiers
		}
		if tiers[i+1].MinAmount.LessThan(*tiers[i].MaxAmount) {
			return nil, "", ruledomain.ErrInvalidTiers
		}
	}

	return tiers, tierPeriod, nil
}

func parseTierPeriod(value ruledomain.TierPeriod) (ruledomain.TierPeriod, error) {
	switch ruledomain.TierPeriod(strings.ToLower(strings.TrimSpace(string(value)))) {
	case ruledomain.PeriodPerOrder, "":
		return ruledomain.PeriodPerOrder, nil
	case ruledomain.PeriodMonthly:
		return ruledomain.PeriodMonthly, nil
	case ruledomain.PeriodYearly:
		return ruledomain.PeriodYearly, nil
	default:
		return "", ruledomain.ErrInvalidTierPeriod
	}
}

func (s *Service) toResponse(rule *ruledomain.CommissionRule) *ruledomain.Response {
	resp := &ruledomain.Response{
		ID:                   rule.ID.String(),
		Name:                 rule.Name,
		Description:          rule.Description,
		Scope:                rule.Scope,
		Type:                 rule.Type,
		TierPeriod:           rule.TierPeriod,
		IncludeSubcategories: rule.IncludeSubcategories,
		StartDate:            rule.StartDate,
		EndDate:              rule.EndDate,
		Priority:             rule.Priority,
		IsActive:             rule.IsActive,
		CreatedAt:            rule.CreatedAt,
		UpdatedAt:            rule.UpdatedAt,
	}
	if rule.ScopeRef != nil {
		ref := rule.ScopeRef.String()
		resp.ScopeRef = &ref
	}
	if rule.Value != nil {
		value := rule.Value.StringFixed(2)
		resp.Value = &value
	}
	for _, tier := range rule.Tiers {
		tierResp := ruledomain.TierResponse{
			Position:  tier.Position,
			MinAmount: tier.MinAmount.StringFixed(2),
			Rate:      tier.Rate.StringFixed(2),
		}
		if tier.MaxAmount != nil {
			maxAmount := tier.MaxAmount.StringFixed(2)
			tierResp.MaxAmount = &maxAmount
		}
		resp.Tiers = append(resp.Tiers, tierResp)
	}
	return resp
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
