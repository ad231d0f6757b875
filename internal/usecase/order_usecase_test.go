package usecase

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newOrderUsecaseForTest() (*OrderUsecase, *TxManagerMock, *OrderRepoMock, *OrderItemRepoMock, *ProductRepoMock, *EscrowMock, *EventRecorder) {
	orders := &OrderRepoMock{}
	items := &OrderItemRepoMock{}
	products := &ProductRepoMock{}
	escrow := &EscrowMock{}
	events := &EventRecorder{}

	tx := &TxManagerMock{Repos: &TxReposMock{
		orders:     orders,
		orderItems: items,
		products:   products,
	}}

	uc := NewOrderUsecase(tx, orders, products, escrow, events)
	return uc, tx, orders, items, products, escrow, events
}

func TestCreateOrder_MissingLineItems(t *testing.T) {
	uc, _, _, _, _, _, _ := newOrderUsecaseForTest()

	_, err := uc.CreateOrder(context.Background(), "a@b.com", CreateOrderInput{Items: nil})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Equal(t, "Field line_items is missing.", he.Message)
}

func TestCreateOrder_LineValidationMessages(t *testing.T) {
	cases := []struct {
		name  string
		items []OrderLineInput
		want  string
	}{
		{
			name:  "id missing on second line",
			items: []OrderLineInput{{ID: int64p(1), Quantity: int64p(1)}, {Quantity: int64p(2)}},
			want:  "Product id is missing for request number 1.",
		},
		{
			name:  "invalid id",
			items: []OrderLineInput{{ID: int64p(0), Quantity: int64p(1)}},
			want:  "Invalid product id for request number 0.",
		},
		{
			name:  "quantity missing",
			items: []OrderLineInput{{ID: int64p(1)}},
			want:  "Product quantity is missing for request number 0.",
		},
		{
			name:  "invalid quantity",
			items: []OrderLineInput{{ID: int64p(1), Quantity: int64p(-1)}},
			want:  "Invalid product quantity for request number 0.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, _, _, _, products, _, _ := newOrderUsecaseForTest()
			products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "tea", Price: 3.5}, nil)

			_, err := uc.CreateOrder(context.Background(), "a@b.com", CreateOrderInput{Items: tc.items})

			he, ok := AsHTTPError(err)
			assert.True(t, ok)
			assert.Equal(t, 400, he.Status)
			assert.Equal(t, tc.want, he.Message)
		})
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	uc, _, _, _, products, _, _ := newOrderUsecaseForTest()
	products.On("FindByID", mock.Anything, int64(9)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.CreateOrder(context.Background(), "a@b.com", CreateOrderInput{
		Items: []OrderLineInput{{ID: int64p(9), Quantity: int64p(1)}},
	})

	he, _ := AsHTTPError(err)
	assert.Equal(t, "Invalid product for request number 0.", he.Message)
}

func TestCreateOrder_SnapshotsPriceAndPublishes(t *testing.T) {
	uc, tx, orders, items, products, _, events := newOrderUsecaseForTest()

	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "tea", Price: 12.5}, nil)
	products.On("FindByID", mock.Anything, int64(2)).Return(model.Product{ID: 2, Name: "mug", Price: 4.0}, nil)

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.CustomerEmail == "a@b.com" &&
			o.Price == 29.0 && // 12.5*2 + 4.0*1
			o.Status == model.OrderStatusCreated &&
			o.ContractAddress == nil
	})).Return(int64(7), nil)
	items.On("CreateBulk", mock.Anything, int64(7), mock.MatchedBy(func(its []model.OrderItem) bool {
		return len(its) == 2 && its[0].Price == 12.5 && its[0].Quantity == 2 && its[1].Price == 4.0
	})).Return(nil)

	id, err := uc.CreateOrder(context.Background(), "a@b.com", CreateOrderInput{
		Items: []OrderLineInput{
			{ID: int64p(1), Quantity: int64p(2)},
			{ID: int64p(2), Quantity: int64p(1)},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), id)
	if assert.Len(t, events.Events, 1) {
		assert.Equal(t, EventOrderCreated, events.Events[0].Kind)
		assert.Equal(t, int64(7), events.Events[0].OrderID)
	}
	orders.AssertExpectations(t)
	items.AssertExpectations(t)
}

func TestCreateOrder_EscrowDeployFailureAbortsEverything(t *testing.T) {
	uc, _, _, _, products, escrow, events := newOrderUsecaseForTest()

	customerAddr := "0x00000000000000000000000000000000000000aa"
	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "tea", Price: 10.0}, nil)
	escrow.On("ValidAddress", customerAddr).Return(true)
	escrow.On("Enabled").Return(true)
	escrow.On("Deploy", mock.Anything, customerAddr, big.NewInt(1000)).Return("", assert.AnError)

	_, err := uc.CreateOrder(context.Background(), "a@b.com", CreateOrderInput{
		Items:         []OrderLineInput{{ID: int64p(1), Quantity: int64p(1)}},
		EscrowAddress: customerAddr,
	})

	// deployに失敗したらDBには何も書かれない（WithinTxに期待を入れていないので呼ばれたら落ちる）
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Empty(t, events.Events)
}

func TestCreateOrder_EscrowSuccessStoresContract(t *testing.T) {
	uc, tx, orders, items, products, escrow, _ := newOrderUsecaseForTest()

	customerAddr := "0x00000000000000000000000000000000000000aa"
	contract := "0x00000000000000000000000000000000000000cc"

	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "tea", Price: 19.99}, nil)
	escrow.On("ValidAddress", customerAddr).Return(true)
	escrow.On("Enabled").Return(true)
	// 19.99 -> 1999台帳単位
	escrow.On("Deploy", mock.Anything, customerAddr, big.NewInt(1999)).Return(contract, nil)

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.ContractAddress != nil && *o.ContractAddress == contract &&
			o.CustomerAddress != nil && *o.CustomerAddress == customerAddr
	})).Return(int64(3), nil)
	items.On("CreateBulk", mock.Anything, int64(3), mock.Anything).Return(nil)

	id, err := uc.CreateOrder(context.Background(), "a@b.com", CreateOrderInput{
		Items:         []OrderLineInput{{ID: int64p(1), Quantity: int64p(1)}},
		EscrowAddress: customerAddr,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(3), id)
	escrow.AssertExpectations(t)
}

func TestListMyOrders_FormatsSnapshotAndTimestamp(t *testing.T) {
	uc, tx, orders, items, products, _, _ := newOrderUsecaseForTest()
	categories := &CategoryRepoMock{}
	tx.Repos.(*TxReposMock).categories = categories

	ts := timeMust("2026-02-03T10:00:00Z")
	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("ListByCustomer", mock.Anything, "a@b.com").Return([]model.Order{
		{ID: 1, CustomerEmail: "a@b.com", Price: 25.0, Status: model.OrderStatusPending, Timestamp: ts},
	}, nil)
	items.On("ListByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{
		{OrderID: 1, ProductID: 4, Quantity: 2, Price: 12.5},
	}, nil)
	// カタログ価格は変わっていてもスナップショットの12.5が出る
	products.On("FindByID", mock.Anything, int64(4)).Return(model.Product{ID: 4, Name: "tea", Price: 99.0}, nil)
	categories.On("ListNamesByProductID", mock.Anything, int64(4)).Return([]string{"drinks"}, nil)

	out, err := uc.ListMyOrders(context.Background(), "a@b.com")

	assert.NoError(t, err)
	if assert.Len(t, out, 1) {
		assert.Equal(t, "PENDING", out[0].Status)
		assert.Equal(t, "2026-02-03T10:00:00Z", out[0].Timestamp)
		if assert.Len(t, out[0].Products, 1) {
			assert.Equal(t, 12.5, out[0].Products[0].Price)
			assert.Equal(t, []string{"drinks"}, out[0].Products[0].Categories)
		}
	}
}

func TestBuildInvoice_AddressValidation(t *testing.T) {
	uc, _, _, _, _, escrow, _ := newOrderUsecaseForTest()

	_, err := uc.BuildInvoice(context.Background(), "a@b.com", 1, "")
	he, _ := AsHTTPError(err)
	assert.Equal(t, "Missing address.", he.Message)

	escrow.On("ValidAddress", "nonsense").Return(false)
	_, err = uc.BuildInvoice(context.Background(), "a@b.com", 1, "nonsense")
	he, _ = AsHTTPError(err)
	assert.Equal(t, "Invalid address.", he.Message)
}

func TestBuildInvoice_UniformInvalidOrder(t *testing.T) {
	uc, _, orders, _, _, escrow, _ := newOrderUsecaseForTest()
	payer := "0x00000000000000000000000000000000000000aa"
	escrow.On("ValidAddress", payer).Return(true)

	// 存在しない / 他人の注文 / コントラクト無し、全部同じ文言
	orders.On("FindByID", mock.Anything, int64(1)).Return(model.Order{}, repo.ErrNotFound)
	orders.On("FindByID", mock.Anything, int64(2)).Return(model.Order{ID: 2, CustomerEmail: "other@b.com"}, nil)
	orders.On("FindByID", mock.Anything, int64(3)).Return(model.Order{ID: 3, CustomerEmail: "a@b.com", ContractAddress: nil}, nil)

	for _, id := range []int64{1, 2, 3} {
		_, err := uc.BuildInvoice(context.Background(), "a@b.com", id, payer)
		he, _ := AsHTTPError(err)
		assert.Equal(t, "Invalid order id.", he.Message)
	}
}

func TestBuildInvoice_AlreadyPaid(t *testing.T) {
	uc, _, orders, _, _, escrow, _ := newOrderUsecaseForTest()
	payer := "0x00000000000000000000000000000000000000aa"
	contract := "0x00000000000000000000000000000000000000cc"

	escrow.On("ValidAddress", payer).Return(true)
	orders.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID: 1, CustomerEmail: "a@b.com", ContractAddress: &contract, Price: 10.0,
	}, nil)
	escrow.On("IsPaid", mock.Anything, contract).Return(true, nil)

	_, err := uc.BuildInvoice(context.Background(), "a@b.com", 1, payer)
	he, _ := AsHTTPError(err)
	assert.Equal(t, "Transfer already complete.", he.Message)
}

func TestBuildInvoice_ReturnsUnsignedTx(t *testing.T) {
	uc, _, orders, _, _, escrow, _ := newOrderUsecaseForTest()
	payer := "0x00000000000000000000000000000000000000aa"
	contract := "0x00000000000000000000000000000000000000cc"
	raw := json.RawMessage(`{"to":"0xcc","value":1050}`)

	escrow.On("ValidAddress", payer).Return(true)
	orders.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID: 1, CustomerEmail: "a@b.com", ContractAddress: &contract, Price: 10.5,
	}, nil)
	escrow.On("IsPaid", mock.Anything, contract).Return(false, nil)
	escrow.On("BuildPaymentTx", mock.Anything, contract, payer, big.NewInt(1050)).Return(raw, nil)

	got, err := uc.BuildInvoice(context.Background(), "a@b.com", 1, payer)

	assert.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestConfirmDelivery_StatusGuards(t *testing.T) {
	uc, _, orders, _, _, _, _ := newOrderUsecaseForTest()

	orders.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID: 1, CustomerEmail: "a@b.com", Status: model.OrderStatusCreated,
	}, nil)
	orders.On("FindByID", mock.Anything, int64(2)).Return(model.Order{
		ID: 2, CustomerEmail: "a@b.com", Status: model.OrderStatusComplete,
	}, nil)

	err := uc.ConfirmDelivery(context.Background(), "a@b.com", 1)
	he, _ := AsHTTPError(err)
	assert.Equal(t, "Delivery not complete.", he.Message)

	err = uc.ConfirmDelivery(context.Background(), "a@b.com", 2)
	he, _ = AsHTTPError(err)
	assert.Equal(t, "Invalid order id.", he.Message)
}

func TestConfirmDelivery_PayoutFailureLeavesPending(t *testing.T) {
	uc, _, orders, _, _, escrow, events := newOrderUsecaseForTest()
	contract := "0x00000000000000000000000000000000000000cc"

	orders.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID: 1, CustomerEmail: "a@b.com", Status: model.OrderStatusPending, ContractAddress: &contract,
	}, nil)
	escrow.On("Enabled").Return(true)
	escrow.On("ConfirmDelivery", mock.Anything, contract).Return("", assert.AnError)

	// payoutに失敗したらローカルは触らない（WithinTxに期待を入れていない）
	err := uc.ConfirmDelivery(context.Background(), "a@b.com", 1)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Empty(t, events.Events)
}

func TestConfirmDelivery_RaceLoserGetsInvalidOrder(t *testing.T) {
	uc, tx, orders, _, _, _, events := newOrderUsecaseForTest()

	orders.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID: 1, CustomerEmail: "a@b.com", Status: model.OrderStatusPending,
	}, nil)
	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("UpdateStatusFrom", mock.Anything, int64(1), model.OrderStatusPending, model.OrderStatusComplete).Return(false, nil)

	err := uc.ConfirmDelivery(context.Background(), "a@b.com", 1)

	he, _ := AsHTTPError(err)
	assert.Equal(t, "Invalid order id.", he.Message)
	assert.Empty(t, events.Events)
}

func TestConfirmDelivery_HappyPathPublishes(t *testing.T) {
	uc, tx, orders, _, _, escrow, events := newOrderUsecaseForTest()
	contract := "0x00000000000000000000000000000000000000cc"

	orders.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID: 1, CustomerEmail: "a@b.com", Status: model.OrderStatusPending, ContractAddress: &contract,
	}, nil)
	escrow.On("Enabled").Return(true)
	escrow.On("ConfirmDelivery", mock.Anything, contract).Return("0xhash", nil)
	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("UpdateStatusFrom", mock.Anything, int64(1), model.OrderStatusPending, model.OrderStatusComplete).Return(true, nil)

	err := uc.ConfirmDelivery(context.Background(), "a@b.com", 1)

	assert.NoError(t, err)
	if assert.Len(t, events.Events, 1) {
		assert.Equal(t, EventOrderDelivered, events.Events[0].Kind)
	}
}

func TestLedgerUnits_Rounding(t *testing.T) {
	assert.Equal(t, int64(1999), ledgerUnits(19.99).Int64())
	assert.Equal(t, int64(1000), ledgerUnits(10.0).Int64())
	// 浮動小数の誤差があっても最近接へ丸まる
	assert.Equal(t, int64(30), ledgerUnits(0.1+0.2).Int64())
}
