package model

import "time"

type OrderStatus string

// 遷移は一方向のみ: CREATED -> PENDING -> COMPLETE
const (
	OrderStatusCreated  OrderStatus = "CREATED"
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusComplete OrderStatus = "COMPLETE"
)

type Order struct {
	ID            int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerEmail string      `gorm:"type:varchar(256);not null;index" json:"customer_email"`
	Price         float64     `gorm:"not null" json:"price"`
	Status        OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Timestamp     time.Time   `gorm:"not null" json:"timestamp"`

	// エスクロー利用時のみ入る
	ContractAddress *string `gorm:"type:varchar(64)" json:"-"`
	CustomerAddress *string `gorm:"type:varchar(64)" json:"-"`
}
