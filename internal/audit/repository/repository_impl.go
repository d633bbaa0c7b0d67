package repository

import (
	"context"

	auditdomain "github.com/vendra/vendra/internal/audit/domain"
	"github.com/vendra/vendra/pkg/db/option"
	"github.com/vendra/vendra/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() auditdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *auditdomain.AuditLog) error {
	return repository.ProvideStore[auditdomain.AuditLog](db).Create(ctx, entry)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, targetType string, limit int) ([]auditdomain.AuditLog, error) {
	// A zero-valued TargetType filter is ignored by the store, so an
	// empty targetType lists everything.
	query := &auditdomain.AuditLog{TargetType: targetType}
	rows, err := repository.ProvideStore[auditdomain.AuditLog](db).Find(ctx, query,
		option.WithSortBy("created_at", true),
		option.WithLimit(limit),
	)
	if err != nil {
		return nil, err
	}

	entries := make([]auditdomain.AuditLog, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, *row)
	}
	return entries, nil
}
