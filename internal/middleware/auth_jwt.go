package middleware

import (
	"errors"
	"net/http"
	"strings"

	"shop/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserEmailKey = "user_email" // string
	CtxUserRoleKey  = "user_role"  // string
	CtxForenameKey  = "forename"   // string
	CtxSurnameKey   = "surname"    // string
)

// bearerAuth用のJWT検証ミドルウェア。
// 失敗時のレスポンスはどの理由でも同じ形にする。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, authErrorJSON())
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, authErrorJSON())
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, authErrorJSON())
			}

			//JWTをパースして検証する
			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, authErrorJSON())
			}

			//claimsを取り出す
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, authErrorJSON())
			}

			//subはメールアドレス
			email, err := parseString(claims["sub"])
			if err != nil || email == "" {
				return c.JSON(http.StatusUnauthorized, authErrorJSON())
			}

			//roleを取り出す（customer/courier/owner）
			role, err := parseString(claims["role"])
			if err != nil || role == "" {
				return c.JSON(http.StatusUnauthorized, authErrorJSON())
			}

			forename, _ := parseString(claims["forename"])
			surname, _ := parseString(claims["surname"])

			//contextへ保存
			c.Set(CtxUserEmailKey, email)
			c.Set(CtxUserRoleKey, role)
			c.Set(CtxForenameKey, forename)
			c.Set(CtxSurnameKey, surname)

			return next(c)
		}
	}
}

type authErrorResponse struct {
	Msg string `json:"msg"`
}

func authErrorJSON() authErrorResponse {
	return authErrorResponse{Msg: "Missing Authorization Header"}
}

func parseString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.New("invalid string")
	}
	return s, nil
}
