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

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type orderLineRequest struct {
	ID       *int64 `json:"id"`
	Quantity *int64 `json:"quantity"`
}

type OrderCreateRequest struct {
	LineItems []orderLineRequest `json:"line_items"`
	Address   string             `json:"address"`
}

type orderCreateResponse struct {
	ID int64 `json:"id"`
}

type orderListResponse struct {
	Orders []usecase.OrderOutput `json:"orders"`
}

type payRequest struct {
	Address string `json:"address"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RequireRole(model.RoleCustomer))

	g.POST("", h.create)
	g.GET("", h.list)
	g.POST("/:id/pay", h.pay)
	g.POST("/:id/delivered", h.delivered)
}

func (h *OrderHandler) create(c echo.Context) error {
	email, ok := getUserEmailFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}

	//line_itemsフィールドが無いときはnilのまま渡す（usecaseがエラーにする）
	var items []usecase.OrderLineInput
	if req.LineItems != nil {
		items = make([]usecase.OrderLineInput, 0, len(req.LineItems))
		for _, li := range req.LineItems {
			items = append(items, usecase.OrderLineInput{ID: li.ID, Quantity: li.Quantity})
		}
	}

	id, err := h.uc.CreateOrder(c.Request().Context(), email, usecase.CreateOrderInput{
		Items:         items,
		EscrowAddress: req.Address,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, orderCreateResponse{ID: id})
}

func (h *OrderHandler) list(c echo.Context) error {
	email, ok := getUserEmailFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orderListResponse{Orders: out})
}

func (h *OrderHandler) pay(c echo.Context) error {
	email, ok := getUserEmailFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid order id."})
	}

	var req payRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}

	invoice, err := h.uc.BuildInvoice(c.Request().Context(), email, id, req.Address)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"invoice": invoice})
}

func (h *OrderHandler) delivered(c echo.Context) error {
	email, ok := getUserEmailFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid order id."})
	}

	if err := h.uc.ConfirmDelivery(c.Request().Context(), email, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "delivery confirmed"})
}
