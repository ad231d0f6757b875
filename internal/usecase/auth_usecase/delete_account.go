package auth

import (
	"context"
	"errors"
	"net/http"

	"shop/internal/domain/model"
	"shop/internal/repository"
	"shop/internal/usecase"
)

type DeleteAccountUsecase struct {
	tx repository.TransactionManager
}

func NewDeleteAccountUsecase(tx repository.TransactionManager) *DeleteAccountUsecase {
	return &DeleteAccountUsecase{tx: tx}
}

// アカウント削除。顧客なら注文も（明細・配達割り当てごと）消える。
// ハードデリートはこの経路だけ。
func (u *DeleteAccountUsecase) Execute(ctx context.Context, email string) error {
	return u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		user, err := r.Users().FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return usecase.NewHTTPError(http.StatusBadRequest, "Unknown user.")
			}
			return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if user.Role == model.RoleCustomer {
			orders, err := r.Orders().ListByCustomer(ctx, user.Email)
			if err != nil {
				return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
			}
			for _, o := range orders {
				if err := r.Orders().DeleteCascade(ctx, o.ID); err != nil {
					return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		if err := r.RefreshTokens().DeleteAllForUser(ctx, user.ID); err != nil {
			return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Users().Delete(ctx, user.ID); err != nil {
			return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}
