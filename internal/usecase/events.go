package usecase

import (
	"context"
	"time"
)

// ルーティングキーをそのままKindに使う
const (
	EventOrderCreated   = "order.created"
	EventOrderPickedUp  = "order.picked_up"
	EventOrderDelivered = "order.delivered"
)

type OrderEvent struct {
	Kind          string    `json:"kind"`
	OrderID       int64     `json:"order_id"`
	Status        string    `json:"status"`
	CustomerEmail string    `json:"customer_email"`
	At            time.Time `json:"at"`
}

// ローカルcommit後の通知。失敗してもリクエストは失敗させない（実装側でログだけ残す）。
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, evt OrderEvent)
}
