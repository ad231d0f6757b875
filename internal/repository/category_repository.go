package repository

import (
	"context"

	"shop/internal/domain/model"
)

type CategoryRepository interface {
	FindByName(ctx context.Context, name string) (model.Category, bool, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)

	// 商品とカテゴリのリンクを張る
	Link(ctx context.Context, productID int64, categoryID int64) error

	// name/productNameは部分一致。空文字なら条件なし。
	Search(ctx context.Context, name string, productName string) ([]model.Category, error)
	ListNamesByProductID(ctx context.Context, productID int64) ([]string, error)
}
