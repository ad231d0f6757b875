package model

// ProductとCategoryの多対多リンク
type ProductCategory struct {
	ProductID  int64 `gorm:"primaryKey"`
	CategoryID int64 `gorm:"primaryKey"`
}

func (ProductCategory) TableName() string {
	return "product_categories"
}
