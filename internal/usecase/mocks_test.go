package usecase

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	couriers   repo.CourierAssignmentRepository
	products   repo.ProductRepository
	categories repo.CategoryRepository

	// このパッケージのテストでは使わないが TxRepos interface を満たすために保持
	users         repo.UserRepository
	refreshTokens repo.RefreshTokenRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository                { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository        { return r.orderItems }
func (r *TxReposMock) Couriers() repo.CourierAssignmentRepository  { return r.couriers }
func (r *TxReposMock) Products() repo.ProductRepository            { return r.products }
func (r *TxReposMock) Categories() repo.CategoryRepository         { return r.categories }
func (r *TxReposMock) Users() repo.UserRepository                  { return r.users }
func (r *TxReposMock) RefreshTokens() repo.RefreshTokenRepository  { return r.refreshTokens }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByCustomer(ctx context.Context, email string) ([]model.Order, error) {
	args := m.Called(ctx, email)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	args := m.Called(ctx, status)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatusFrom(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus) (bool, error) {
	args := m.Called(ctx, orderID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) DeleteCascade(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type CourierRepoMock struct{ mock.Mock }

func (m *CourierRepoMock) Create(ctx context.Context, a model.CourierAssignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *CourierRepoMock) FindByOrderID(ctx context.Context, orderID int64) (model.CourierAssignment, bool, error) {
	panic("not used in usecase tests")
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByName(ctx context.Context, name string) (model.Product, bool, error) {
	args := m.Called(ctx, name)
	p, _ := args.Get(0).(model.Product)
	return p, args.Bool(1), args.Error(2)
}

func (m *ProductRepoMock) Search(ctx context.Context, name string, category string) ([]model.Product, error) {
	args := m.Called(ctx, name, category)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) FindByName(ctx context.Context, name string) (model.Category, bool, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(model.Category)
	return c, args.Bool(1), args.Error(2)
}

func (m *CategoryRepoMock) Create(ctx context.Context, c model.Category) (model.Category, error) {
	args := m.Called(ctx, c)
	created, _ := args.Get(0).(model.Category)
	return created, args.Error(1)
}

func (m *CategoryRepoMock) Link(ctx context.Context, productID int64, categoryID int64) error {
	args := m.Called(ctx, productID, categoryID)
	return args.Error(0)
}

func (m *CategoryRepoMock) Search(ctx context.Context, name string, productName string) ([]model.Category, error) {
	args := m.Called(ctx, name, productName)
	categories, _ := args.Get(0).([]model.Category)
	return categories, args.Error(1)
}

func (m *CategoryRepoMock) ListNamesByProductID(ctx context.Context, productID int64) ([]string, error) {
	args := m.Called(ctx, productID)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

type StatsRepoMock struct{ mock.Mock }

func (m *StatsRepoMock) ProductStats(ctx context.Context) ([]repo.ProductStatRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]repo.ProductStatRow)
	return rows, args.Error(1)
}

func (m *StatsRepoMock) CategoryStats(ctx context.Context) ([]repo.CategoryStatRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]repo.CategoryStatRow)
	return rows, args.Error(1)
}

// =====================
// EscrowClient mock
// =====================

type EscrowMock struct{ mock.Mock }

func (m *EscrowMock) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *EscrowMock) ValidAddress(addr string) bool {
	args := m.Called(addr)
	return args.Bool(0)
}

func (m *EscrowMock) Deploy(ctx context.Context, customerAddress string, amount *big.Int) (string, error) {
	args := m.Called(ctx, customerAddress, amount)
	return args.String(0), args.Error(1)
}

func (m *EscrowMock) IsPaid(ctx context.Context, contractAddress string) (bool, error) {
	args := m.Called(ctx, contractAddress)
	return args.Bool(0), args.Error(1)
}

func (m *EscrowMock) AssignCourier(ctx context.Context, contractAddress string, courierAddress string) (string, error) {
	args := m.Called(ctx, contractAddress, courierAddress)
	return args.String(0), args.Error(1)
}

func (m *EscrowMock) ConfirmDelivery(ctx context.Context, contractAddress string) (string, error) {
	args := m.Called(ctx, contractAddress)
	return args.String(0), args.Error(1)
}

func (m *EscrowMock) BuildPaymentTx(ctx context.Context, contractAddress string, payerAddress string, amount *big.Int) (json.RawMessage, error) {
	args := m.Called(ctx, contractAddress, payerAddress, amount)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

// =====================
// EventPublisher recorder
// =====================

// 発行されたイベントを貯めるだけ（戻り値が無いのでtestify mockにしない）
type EventRecorder struct {
	Events []OrderEvent
}

func (r *EventRecorder) PublishOrderEvent(ctx context.Context, evt OrderEvent) {
	r.Events = append(r.Events, evt)
}

// テスト用のヘルパ
func int64p(v int64) *int64 { return &v }

func timeMust(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
