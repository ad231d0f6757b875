package repository

import (
	"context"

	"shop/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByCustomer(ctx context.Context, email string) ([]model.Order, error)
	ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	// fromの状態のときだけtoへ更新する。更新できたらtrue。
	// 状態ガードと更新を1つのUPDATEで行うので、同じ注文への同時遷移は片方しか通らない。
	UpdateStatusFrom(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus) (bool, error)

	// 注文と明細・配達割り当てをまとめて消す
	DeleteCascade(ctx context.Context, orderID int64) error
}
