package middleware

import (
	"net/http"

	"shop/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// roleが一致しないときも認証失敗と同じボディを返す。
// 存在するエンドポイントかどうかを漏らさないため。
func RequireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got, ok := c.Get(CtxUserRoleKey).(string)
			if !ok || got != string(role) {
				return c.JSON(http.StatusUnauthorized, authErrorJSON())
			}
			return next(c)
		}
	}
}
