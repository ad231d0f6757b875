package repository

import (
	"context"

	repo "shop/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders        repo.OrderRepository
	orderItems    repo.OrderItemRepository
	couriers      repo.CourierAssignmentRepository
	products      repo.ProductRepository
	categories    repo.CategoryRepository
	users         repo.UserRepository
	refreshTokens repo.RefreshTokenRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository                  { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository          { return r.orderItems }
func (r *txReposGorm) Couriers() repo.CourierAssignmentRepository    { return r.couriers }
func (r *txReposGorm) Products() repo.ProductRepository              { return r.products }
func (r *txReposGorm) Categories() repo.CategoryRepository           { return r.categories }
func (r *txReposGorm) Users() repo.UserRepository                    { return r.users }
func (r *txReposGorm) RefreshTokens() repo.RefreshTokenRepository    { return r.refreshTokens }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:        NewOrderGormRepository(tx),
			orderItems:    NewOrderItemGormRepository(tx),
			couriers:      NewCourierAssignmentGormRepository(tx),
			products:      NewProductGormRepository(tx),
			categories:    NewCategoryGormRepository(tx),
			users:         NewUserGormRepository(tx),
			refreshTokens: NewRefreshTokenGormRepository(tx),
		}
		return fn(r)
	})
}
