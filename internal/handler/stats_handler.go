package handler

import (
	"net/http"

	"shop/internal/config"
	"shop/internal/domain/model"
	"shop/internal/middleware"
	"shop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type StatsHandler struct {
	uc *usecase.StatsUsecase
}

func NewStatsHandler(uc *usecase.StatsUsecase) *StatsHandler {
	return &StatsHandler{uc: uc}
}

type productStatsResponse struct {
	Statistics []usecase.ProductStatOutput `json:"statistics"`
}

type categoryStatsResponse struct {
	Statistics []string `json:"statistics"`
}

func (h *StatsHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/statistics")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RequireRole(model.RoleOwner))

	g.GET("/products", h.products)
	g.GET("/categories", h.categories)
}

func (h *StatsHandler) products(c echo.Context) error {
	out, err := h.uc.ProductStatistics(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, productStatsResponse{Statistics: out})
}

func (h *StatsHandler) categories(c echo.Context) error {
	out, err := h.uc.CategoryStatistics(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, categoryStatsResponse{Statistics: out})
}
