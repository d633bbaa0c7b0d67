package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/vendra/vendra/internal/cache"
	catalogdomain "github.com/vendra/vendra/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const ancestorIndexTTL = 5 * time.Minute

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo catalogdomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo catalogdomain.Repository

	// ancestors maps every category id to its full ancestor chain,
	// nearest parent first, so resolution never walks the tree.
	ancestors cache.Cache[string, map[snowflake.ID][]snowflake.ID]
}

func New(p Params) catalogdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("catalog.service"),
		repo:      p.Repo,
		ancestors: cache.NewTTLCache[string, map[snowflake.ID][]snowflake.ID](),
	}
}

func (s *Service) GetProduct(ctx context.Context, id snowflake.ID) (*catalogdomain.Product, error) {
	product, err := s.repo.FindProductByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, catalogdomain.ErrProductNotFound
	}
	return product, nil
}

func (s *Service) VendorPlanRate(ctx context.Context, vendorID snowflake.ID) (decimal.Decimal, error) {
	vendor, err := s.repo.FindVendorByID(ctx, s.db, vendorID)
	if err != nil {
		return decimal.Zero, err
	}
	if vendor == nil {
		return decimal.Zero, catalogdomain.ErrVendorNotFound
	}
	return vendor.PlanCommissionRate, nil
}

func (s *Service) CategoryAncestors(ctx context.Context, categoryID snowflake.ID) ([]snowflake.ID, error) {
	index, err := s.ancestorIndex(ctx)
	if err != nil {
		return nil, err
	}
	chain, ok := index[categoryID]
	if !ok {
		return nil, catalogdomain.ErrCategoryNotFound
	}
	return chain, nil
}

func (s *Service) VendorExists(ctx context.Context, id snowflake.ID) (bool, error) {
	vendor, err := s.repo.FindVendorByID(ctx, s.db, id)
	if err != nil {
		return false, err
	}
	return vendor != nil, nil
}

func (s *Service) ProductExists(ctx context.Context, id snowflake.ID) (bool, error) {
	product, err := s.repo.FindProductByID(ctx, s.db, id)
	if err != nil {
		return false, err
	}
	return product != nil, nil
}

func (s *Service) CategoryExists(ctx context.Context, id snowflake.ID) (bool, error) {
	category, err := s.repo.FindCategoryByID(ctx, s.db, id)
	if err != nil {
		return false, err
	}
	return category != nil, nil
}

const ancestorIndexKey = "ancestors"

func (s *Service) ancestorIndex(ctx context.Context) (map[snowflake.ID][]snowflake.ID, error) {
	if index, ok := s.ancestors.Get(ancestorIndexKey); ok {
		return index, nil
	}

	categories, err := s.repo.ListCategories(ctx, s.db)
	if err != nil {
		return nil, err
	}

	index := buildAncestorIndex(categories)
	s.ancestors.Set(ancestorIndexKey, index, ancestorIndexTTL)
	return index, nil
}

// buildAncestorIndex computes every category's ancestor chain in one pass
// over the parent links, with memoization for shared prefixes.
func buildAncestorIndex(categories []catalogdomain.Category) map[snowflake.ID][]snowflake.ID {
	parents := make(map[snowflake.ID]*snowflake.ID, len(categories))
	for _, category := range categories {
		parents[category.ID] = category.ParentID
	}

	index := make(map[snowflake.ID][]snowflake.ID, len(categories))
	var resolve func(id snowflake.ID, seen map[snowflake.ID]bool) []snowflake.ID
	resolve = func(id snowflake.ID, seen map[snowflake.ID]bool) []snowflake.ID {
		if chain, ok := index[id]; ok {
			return chain
		}
		parent := parents[id]
		if parent == nil || seen[*parent] {
			index[id] = []snowflake.ID{}
			return index[id]
		}
		seen[*parent] = true
		chain := append([]snowflake.ID{*parent}, resolve(*parent, seen)...)
		index[id] = chain
		return chain
	}

	for _, category := range categories {
		resolve(category.ID, map[snowflake.ID]bool{category.ID: true})
	}
	return index
}
