package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shop/internal/domain/model"
	"shop/internal/repository"
	"shop/internal/usecase"
)

type RefreshUsecase struct {
	userRepo   repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

func NewRefreshUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *RefreshUsecase {
	return &RefreshUsecase{
		userRepo:   userRepo,
		rtRepo:     rtRepo,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

// 古いトークンを使い捨てて新しいaccess/refreshを出す。
// 使用済みトークンの再利用は盗難とみなして全部失効。
func (u *RefreshUsecase) Execute(ctx context.Context, plainToken string, userAgent string) (LoginOutput, LoginSideEffect, error) {
	var out LoginOutput
	var side LoginSideEffect

	if plainToken == "" {
		return out, side, usecase.NewHTTPError(http.StatusUnauthorized, "Invalid token.")
	}

	rt, err := u.rtRepo.FindByHash(ctx, hashToken(plainToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return out, side, usecase.NewHTTPError(http.StatusUnauthorized, "Invalid token.")
		}
		return out, side, usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := u.clock.Now()

	if rt.RevokedAt != nil || now.After(rt.ExpiresAt) {
		return out, side, usecase.NewHTTPError(http.StatusUnauthorized, "Invalid token.")
	}
	if rt.UsedAt != nil {
		//再利用検知
		_ = u.rtRepo.RevokeAllForUser(ctx, rt.UserID)
		return out, side, usecase.NewHTTPError(http.StatusUnauthorized, "Invalid token.")
	}

	user, err := u.userRepo.FindByID(ctx, rt.UserID)
	if err != nil {
		return out, side, usecase.NewHTTPError(http.StatusUnauthorized, "Invalid token.")
	}

	if err := u.rtRepo.MarkUsed(ctx, rt.ID, now); err != nil {
		return out, side, usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	accessToken, accessExp, err := u.issuer.Issue(user.Email, user.Role, user.Forename, user.Surname, now)
	if err != nil {
		return out, side, usecase.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	plainRefresh, err := generateSecureToken(32)
	if err != nil {
		return out, side, usecase.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	next := &model.RefreshToken{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: hashToken(plainRefresh),
		UserAgent: userAgent,
		ExpiresAt: now.Add(u.refreshTTL),
		CreatedAt: now,
	}
	if err := u.rtRepo.Create(ctx, next); err != nil {
		return out, side, usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out.AccessToken = accessToken
	out.ExpiresIn = int(accessExp.Sub(now).Seconds())
	side.PlainRefreshToken = plainRefresh
	return out, side, nil
}
