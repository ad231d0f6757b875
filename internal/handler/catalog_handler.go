package handler

import (
	"net/http"

	"shop/internal/config"
	"shop/internal/domain/model"
	"shop/internal/middleware"
	"shop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	uc *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/catalog")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/import", h.importCatalog, middleware.RequireRole(model.RoleOwner))
	g.GET("/search", h.search, middleware.RequireRole(model.RoleCustomer))
}

// multipartの"file"フィールドでCSVを受け取る
func (h *CatalogHandler) importCatalog(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Field file is missing."})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Field file is missing."})
	}
	defer f.Close()

	if err := h.uc.Import(c.Request().Context(), f); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "catalog imported"})
}

func (h *CatalogHandler) search(c echo.Context) error {
	name := c.QueryParam("name")
	category := c.QueryParam("category")

	out, err := h.uc.Search(c.Request().Context(), name, category)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
