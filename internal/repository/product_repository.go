package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindByName(ctx context.Context, name string) (model.Product, bool, error)

	// name/categoryは部分一致。空文字なら条件なし。
	Search(ctx context.Context, name string, category string) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
}
