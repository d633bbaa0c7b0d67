package domain

import (
	"context"
	"errors"
)

type Service interface {
	AuditLog(ctx context.Context, action, targetType, targetID string, metadata map[string]any) error
	List(ctx context.Context, targetType string, limit int) ([]AuditLog, error)
}

var ErrInvalidAction = errors.New("invalid_action")
