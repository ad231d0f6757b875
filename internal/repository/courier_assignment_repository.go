package repository

import (
	"context"

	"shop/internal/domain/model"
)

type CourierAssignmentRepository interface {
	Create(ctx context.Context, a model.CourierAssignment) error
	FindByOrderID(ctx context.Context, orderID int64) (model.CourierAssignment, bool, error)
}
