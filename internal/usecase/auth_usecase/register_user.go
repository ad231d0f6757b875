package auth

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"shop/internal/domain/model"
	"shop/internal/repository"
	"shop/internal/usecase"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// 会員登録の入力
type RegisterUserInput struct {
	Forename string
	Surname  string
	Email    string
	Password string
}

type RegisterUserUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
}

func NewRegisterUserUsecase(userRepo repository.UserRepository, hasher PasswordHasher) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// roleはルートで決まる（/auth/register/customer or /auth/register/courier）
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput, role model.Role) error {
	if in.Forename == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "Field forename is missing.")
	}
	if in.Surname == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "Field surname is missing.")
	}
	if in.Email == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "Field email is missing.")
	}
	if in.Password == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "Field password is missing.")
	}
	if !emailPattern.MatchString(in.Email) {
		return usecase.NewHTTPError(http.StatusBadRequest, "Invalid email.")
	}
	if len(in.Password) < 8 {
		return usecase.NewHTTPError(http.StatusBadRequest, "Invalid password.")
	}

	_, err := u.userRepo.FindByEmail(ctx, in.Email)
	if err == nil {
		return usecase.NewHTTPError(http.StatusBadRequest, "Email already exists.")
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return usecase.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Forename:     in.Forename,
		Surname:      in.Surname,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
