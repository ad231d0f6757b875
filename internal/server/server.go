package server

import (
	"shop/internal/config"
	"shop/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Order   *handler.OrderHandler
	Courier *handler.CourierHandler
	Catalog *handler.CatalogHandler
	Stats   *handler.StatsHandler
}

// EchoをたててルートをまとめてHTTPサーバーを起動する
func Start(cfg config.Config, h Handlers) error {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	h.Auth.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.Courier.RegisterRoutes(e, cfg)
	h.Catalog.RegisterRoutes(e, cfg)
	h.Stats.RegisterRoutes(e, cfg)

	return e.Start(":" + cfg.Port)
}
