package handler

import (
	"net/http"
	"strconv"

	"shop/internal/config"
	"shop/internal/domain/model"
	"shop/internal/middleware"
	"shop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CourierHandler struct {
	uc *usecase.CourierUsecase
}

func NewCourierHandler(uc *usecase.CourierUsecase) *CourierHandler {
	return &CourierHandler{uc: uc}
}

type pickupRequest struct {
	Address string `json:"address"`
}

type pendingPickupResponse struct {
	Orders []usecase.PendingPickupOutput `json:"orders"`
}

func (h *CourierHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RequireRole(model.RoleCourier))

	g.GET("/pending-pickup", h.pendingPickup)
	g.POST("/:id/pickup", h.pickup)
}

func (h *CourierHandler) pendingPickup(c echo.Context) error {
	out, err := h.uc.ListPendingPickup(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, pendingPickupResponse{Orders: out})
}

func (h *CourierHandler) pickup(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid order id."})
	}

	var req pickupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}

	if err := h.uc.PickUpOrder(c.Request().Context(), id, req.Address); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "order picked up"})
}
