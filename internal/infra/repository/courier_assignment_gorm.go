package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"

	"gorm.io/gorm"
)

type CourierAssignmentGormRepository struct {
	db *gorm.DB
}

func NewCourierAssignmentGormRepository(db *gorm.DB) *CourierAssignmentGormRepository {
	return &CourierAssignmentGormRepository{db: db}
}

func (r *CourierAssignmentGormRepository) Create(ctx context.Context, a model.CourierAssignment) error {
	return r.db.WithContext(ctx).Create(&a).Error
}

func (r *CourierAssignmentGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.CourierAssignment, bool, error) {
	var a model.CourierAssignment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CourierAssignment{}, false, nil
	}
	if err != nil {
		return model.CourierAssignment{}, false, err
	}
	return a, true, nil
}
