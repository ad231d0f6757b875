package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shop/internal/domain/model"
	"shop/internal/repository"
	"shop/internal/usecase"
)

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(email string, role model.Role, forename string, surname string, now time.Time) (token string, expiresAt time.Time, err error)
}

type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

// handlerからusecaseに渡す入力
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
}

// handlerがJSONにして返す
type LoginOutput struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

// handlerがCookieに詰めるために必要な値
type LoginSideEffect struct {
	PlainRefreshToken string
}

type LoginUsecase struct {
	userRepo   repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	verifier   PasswordVerifier
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo:   userRepo,
		rtRepo:     rtRepo,
		verifier:   verifier,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, LoginSideEffect, error) {
	var out LoginOutput
	var side LoginSideEffect

	if in.Email == "" {
		return out, side, usecase.NewHTTPError(http.StatusBadRequest, "Field email is missing.")
	}
	if in.Password == "" {
		return out, side, usecase.NewHTTPError(http.StatusBadRequest, "Field password is missing.")
	}
	if !emailPattern.MatchString(in.Email) {
		return out, side, usecase.NewHTTPError(http.StatusBadRequest, "Invalid email.")
	}

	user, err := u.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, side, usecase.NewHTTPError(http.StatusBadRequest, "Invalid credentials.")
		}
		return out, side, usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return out, side, usecase.NewHTTPError(http.StatusBadRequest, "Invalid credentials.")
	}

	//AccessToken発行（1時間）
	now := u.clock.Now()
	accessToken, accessExp, err := u.issuer.Issue(user.Email, user.Role, user.Forename, user.Surname, now)
	if err != nil {
		return out, side, usecase.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//RefreshToken生成（平文は返すだけ、DBにはハッシュ）
	plainRefresh, err := generateSecureToken(32)
	if err != nil {
		return out, side, usecase.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	refresh := &model.RefreshToken{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: hashToken(plainRefresh),
		UserAgent: in.UserAgent,
		ExpiresAt: now.Add(u.refreshTTL),
		CreatedAt: now,
	}
	if err := u.rtRepo.Create(ctx, refresh); err != nil {
		return out, side, usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out.AccessToken = accessToken
	out.ExpiresIn = int(accessExp.Sub(now).Seconds())
	side.PlainRefreshToken = plainRefresh
	return out, side, nil
}

func hashToken(plain string) string {
	h := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(h[:])
}

func generateSecureToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", fmt.Errorf("bytesLen must be positive")
	}

	// ランダムなバイト列を作る（OSが持つ安全な乱数）
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
