package model

// 注文1件につき最大1件。エスクロー付き注文のピックアップ時にだけ作られる。
type CourierAssignment struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID        int64  `gorm:"uniqueIndex;not null" json:"order_id"`
	CourierAddress string `gorm:"type:varchar(64);not null" json:"courier_address"`
}
