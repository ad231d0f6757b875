package model

// Priceはカタログの現在価格。注文時にOrderItemへスナップショットされる。
type Product struct {
	ID    int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string  `gorm:"type:varchar(256);uniqueIndex;not null" json:"name"`
	Price float64 `gorm:"not null" json:"price"`
}
