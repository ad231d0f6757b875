package repository

import (
	"context"
	"time"

	"shop/internal/domain/model"
)

type RefreshTokenRepository interface {
	Create(ctx context.Context, t *model.RefreshToken) error
	FindByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteAllForUser(ctx context.Context, userID int64) error
}
