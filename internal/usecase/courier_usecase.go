package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

type CourierUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	escrow EscrowClient
	events EventPublisher
}

func NewCourierUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	escrow EscrowClient,
	events EventPublisher,
) *CourierUsecase {
	return &CourierUsecase{
		tx:     tx,
		orders: orders,
		escrow: escrow,
		events: events,
	}
}

type PendingPickupOutput struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// ピックアップ待ち（CREATED）の注文一覧
func (u *CourierUsecase) ListPendingPickup(ctx context.Context) ([]PendingPickupOutput, error) {
	orders, err := u.orders.ListByStatus(ctx, model.OrderStatusCreated)
	if err != nil {
		return []PendingPickupOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]PendingPickupOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, PendingPickupOutput{ID: o.ID, Email: o.CustomerEmail})
	}
	return outs, nil
}

// ピックアップ（CREATED -> PENDING）。
// エスクロー付きの注文は、デポジット確認とチェーン上のcourier割り当てが
// 両方通ってからローカルを動かす。チェーンが失敗したらDBは一切変えない。
func (u *CourierUsecase) PickUpOrder(ctx context.Context, orderID int64, courierAddress string) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, msgInvalidOrder)
	}

	courierAddress = strings.TrimSpace(courierAddress)
	if courierAddress != "" && !u.escrow.ValidAddress(courierAddress) {
		return NewHTTPError(http.StatusBadRequest, msgInvalidAddress)
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusBadRequest, msgInvalidOrder)
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.Status != model.OrderStatusCreated {
		return NewHTTPError(http.StatusBadRequest, msgInvalidOrder)
	}

	escrowPath := o.ContractAddress != nil && courierAddress != ""

	if escrowPath {
		paid, err := u.escrow.IsPaid(ctx, *o.ContractAddress)
		if err != nil {
			return NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if !paid {
			return NewHTTPError(http.StatusBadRequest, msgTransferNotComplete)
		}

		//チェーン側の割り当てが先。失敗したらローカルはCREATEDのまま。
		if _, err := u.escrow.AssignCourier(ctx, *o.ContractAddress, courierAddress); err != nil {
			return NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	//状態ガードと更新は1トランザクション。
	//同じ注文へ同時にピックアップが来ても通るのは1つだけ。
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ok, err := r.Orders().UpdateStatusFrom(ctx, orderID, model.OrderStatusCreated, model.OrderStatusPending)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusBadRequest, msgInvalidOrder)
		}

		if escrowPath {
			if err := r.Couriers().Create(ctx, model.CourierAssignment{
				OrderID:        orderID,
				CourierAddress: courierAddress,
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.events.PublishOrderEvent(ctx, OrderEvent{
		Kind:          EventOrderPickedUp,
		OrderID:       orderID,
		Status:        string(model.OrderStatusPending),
		CustomerEmail: o.CustomerEmail,
		At:            time.Now().UTC(),
	})

	return nil
}
