package repository

import (
	"context"
	"errors"
	"strings"

	"shop/internal/domain/model"

	"gorm.io/gorm"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) FindByName(ctx context.Context, name string) (model.Category, bool, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, false, nil
	}
	if err != nil {
		return model.Category{}, false, err
	}
	return c, true, nil
}

func (r *CategoryGormRepository) Create(ctx context.Context, c model.Category) (model.Category, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Category{}, err
	}
	return c, nil
}

func (r *CategoryGormRepository) Link(ctx context.Context, productID int64, categoryID int64) error {
	link := model.ProductCategory{ProductID: productID, CategoryID: categoryID}
	return r.db.WithContext(ctx).Create(&link).Error
}

// カテゴリ名の部分一致と商品名の部分一致（JOIN）で絞り込む
func (r *CategoryGormRepository) Search(ctx context.Context, name string, productName string) ([]model.Category, error) {
	tx := r.db.WithContext(ctx).Model(&model.Category{}).Distinct("categories.*")

	if strings.TrimSpace(name) != "" {
		tx = tx.Where("categories.name LIKE ?", "%"+strings.TrimSpace(name)+"%")
	}
	if strings.TrimSpace(productName) != "" {
		tx = tx.
			Joins("JOIN product_categories pc ON pc.category_id = categories.id").
			Joins("JOIN products p ON p.id = pc.product_id").
			Where("p.name LIKE ?", "%"+strings.TrimSpace(productName)+"%")
	}

	var categories []model.Category
	if err := tx.Order("categories.id asc").Find(&categories).Error; err != nil {
		return []model.Category{}, err
	}
	return categories, nil
}

func (r *CategoryGormRepository) ListNamesByProductID(ctx context.Context, productID int64) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&model.Category{}).
		Joins("JOIN product_categories pc ON pc.category_id = categories.id").
		Where("pc.product_id = ?", productID).
		Order("categories.name asc").
		Pluck("categories.name", &names).Error
	if err != nil {
		return []string{}, err
	}
	return names, nil
}
