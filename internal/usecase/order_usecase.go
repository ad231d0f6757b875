package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

type OrderUsecase struct {
	tx       repo.TransactionManager
	orders   repo.OrderRepository
	products repo.ProductRepository
	escrow   EscrowClient
	events   EventPublisher
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	products repo.ProductRepository,
	escrow EscrowClient,
	events EventPublisher,
) *OrderUsecase {
	return &OrderUsecase{
		tx:       tx,
		orders:   orders,
		products: products,
		escrow:   escrow,
		events:   events,
	}
}

// handlerからusecaseに渡す入力。IDとQuantityはbodyに無ければnil。
type OrderLineInput struct {
	ID       *int64
	Quantity *int64
}

type CreateOrderInput struct {
	Items         []OrderLineInput // nilなら line_items フィールド自体が無い
	EscrowAddress string
}

// 注文の作成。全item検証→価格スナップショット→（必要なら）エスクロー開設→ローカルcommit。
// エスクロー開設に失敗したら何もDBに残らない。
func (u *OrderUsecase) CreateOrder(ctx context.Context, customerEmail string, in CreateOrderInput) (int64, error) {
	if in.Items == nil {
		return 0, NewHTTPError(http.StatusBadRequest, "Field line_items is missing.")
	}

	escrowAddress := strings.TrimSpace(in.EscrowAddress)
	if escrowAddress != "" && !u.escrow.ValidAddress(escrowAddress) {
		return 0, NewHTTPError(http.StatusBadRequest, msgInvalidAddress)
	}

	//全行を先に検証する。1行でもだめなら注文ごと失敗。
	var total float64
	items := make([]model.OrderItem, 0, len(in.Items))

	for index, line := range in.Items {
		if line.ID == nil {
			return 0, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Product id is missing for request number %d.", index))
		}
		if *line.ID <= 0 {
			return 0, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid product id for request number %d.", index))
		}
		if line.Quantity == nil {
			return 0, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Product quantity is missing for request number %d.", index))
		}
		if *line.Quantity <= 0 {
			return 0, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid product quantity for request number %d.", index))
		}

		p, err := u.products.FindByID(ctx, *line.ID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return 0, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid product for request number %d.", index))
			}
			return 0, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//このときのカタログ価格をスナップショット。以後カタログが変わっても注文は変わらない。
		total += p.Price * float64(*line.Quantity)
		items = append(items, model.OrderItem{
			ProductID: p.ID,
			Quantity:  *line.Quantity,
			Price:     p.Price,
		})
	}

	order := model.Order{
		CustomerEmail: customerEmail,
		Price:         total,
		Status:        model.OrderStatusCreated,
		Timestamp:     time.Now().UTC(),
	}

	//エスクローを開くのはローカルcommitの前。
	//開設に失敗したら注文は作らない（存在しないコントラクトを指す注文を残さない）。
	if escrowAddress != "" && u.escrow.Enabled() {
		contract, err := u.escrow.Deploy(ctx, escrowAddress, ledgerUnits(total))
		if err != nil {
			return 0, NewHTTPError(http.StatusBadRequest, err.Error())
		}
		order.ContractAddress = &contract
		order.CustomerAddress = &escrowAddress
	}

	var orderID int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().CreateBulk(ctx, id, items); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		orderID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	u.events.PublishOrderEvent(ctx, OrderEvent{
		Kind:          EventOrderCreated,
		OrderID:       orderID,
		Status:        string(model.OrderStatusCreated),
		CustomerEmail: customerEmail,
		At:            order.Timestamp,
	})

	return orderID, nil
}

type OrderProductOutput struct {
	Categories []string `json:"categories"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	Quantity   int64    `json:"quantity"`
}

type OrderOutput struct {
	Products  []OrderProductOutput `json:"products"`
	Price     float64              `json:"price"`
	Status    string               `json:"status"`
	Timestamp string               `json:"timestamp"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, customerEmail string) ([]OrderOutput, error) {
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByCustomer(ctx, customerEmail)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			products := make([]OrderProductOutput, 0, len(items))
			for _, it := range items {
				p, err := r.Products().FindByID(ctx, it.ProductID)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				cats, err := r.Categories().ListNamesByProductID(ctx, it.ProductID)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}

				products = append(products, OrderProductOutput{
					Categories: cats,
					Name:       p.Name,
					Price:      it.Price, // スナップショット価格
					Quantity:   it.Quantity,
				})
			}

			outs = append(outs, OrderOutput{
				Products:  products,
				Price:     o.Price,
				Status:    string(o.Status),
				Timestamp: o.Timestamp.UTC().Format(time.RFC3339),
			})
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// 顧客が外で署名するための未署名トランザクションを返す。
// 資金も鍵もこちらでは持たない。
func (u *OrderUsecase) BuildInvoice(ctx context.Context, customerEmail string, orderID int64, payerAddress string) (json.RawMessage, error) {
	if orderID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, msgInvalidOrder)
	}

	payerAddress = strings.TrimSpace(payerAddress)
	if payerAddress == "" {
		return nil, NewHTTPError(http.StatusBadRequest, msgMissingAddress)
	}
	if !u.escrow.ValidAddress(payerAddress) {
		return nil, NewHTTPError(http.StatusBadRequest, msgInvalidAddress)
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusBadRequest, msgInvalidOrder)
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.CustomerEmail != customerEmail || o.ContractAddress == nil {
		return nil, NewHTTPError(http.StatusBadRequest, msgInvalidOrder)
	}

	paid, err := u.escrow.IsPaid(ctx, *o.ContractAddress)
	if err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if paid {
		return nil, NewHTTPError(http.StatusBadRequest, msgAlreadyPaid)
	}

	inv, err := u.escrow.BuildPaymentTx(ctx, *o.ContractAddress, payerAddress, ledgerUnits(o.Price))
	if err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return inv, nil
}

// 配達完了（PENDING -> COMPLETE）。
// エスクローがある場合は分配payoutが先。payoutに失敗したらCOMPLETEは記録しない。
func (u *OrderUsecase) ConfirmDelivery(ctx context.Context, customerEmail string, orderID int64) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, msgInvalidOrder)
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusBadRequest, msgInvalidOrder)
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.CustomerEmail != customerEmail {
		return NewHTTPError(http.StatusBadRequest, msgInvalidOrder)
	}

	//注文の持ち主には状態がCREATEDであることは隠さない
	if o.Status == model.OrderStatusCreated {
		return NewHTTPError(http.StatusBadRequest, msgDeliveryNotComplete)
	}
	if o.Status != model.OrderStatusPending {
		return NewHTTPError(http.StatusBadRequest, msgInvalidOrder)
	}

	if o.ContractAddress != nil && u.escrow.Enabled() {
		//payoutはローカルTxの外。成功を見てからcommitする。
		//payout成功直後にプロセスが落ちるとローカルはPENDINGのまま（既知の制約）。
		if _, err := u.escrow.ConfirmDelivery(ctx, *o.ContractAddress); err != nil {
			return NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ok, err := r.Orders().UpdateStatusFrom(ctx, orderID, model.OrderStatusPending, model.OrderStatusComplete)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			//並行して状態が変わった
			return NewHTTPError(http.StatusBadRequest, msgInvalidOrder)
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.events.PublishOrderEvent(ctx, OrderEvent{
		Kind:          EventOrderDelivered,
		OrderID:       orderID,
		Status:        string(model.OrderStatusComplete),
		CustomerEmail: customerEmail,
		At:            time.Now().UTC(),
	})

	return nil
}
