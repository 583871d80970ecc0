package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"avtosalon/internal/dto"
	"avtosalon/internal/service"
)

type CategoryHandler struct {
	Service *service.CatalogService
	BaseURL string
}

func NewCategoryHandler(svc *service.CatalogService, baseURL string) *CategoryHandler {
	return &CategoryHandler{Service: svc, BaseURL: baseURL}
}

func (h *CategoryHandler) Create(c echo.Context) error {
	brand := c.FormValue("brand")
	if brand == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "brand is required")
	}

	category, err := h.Service.CreateCategory(c.Request().Context(), brand, formFile(c, "image"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dataEnvelope{
		Success: true,
		Message: "category created",
		Data:    dto.CategoryResponseFromEntity(category, h.BaseURL),
	})
}

func (h *CategoryHandler) GetAll(c echo.Context) error {
	categories, err := h.Service.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataEnvelope{
		Success: true,
		Data:    dto.CategoryResponsesFromEntities(categories, h.BaseURL),
	})
}

func (h *CategoryHandler) GetOne(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	category, err := h.Service.GetCategory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataEnvelope{
		Success: true,
		Data:    dto.CategoryResponseFromEntity(category, h.BaseURL),
	})
}

func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	category, err := h.Service.UpdateCategory(c.Request().Context(), id, c.FormValue("brand"), formFile(c, "image"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataEnvelope{
		Success: true,
		Message: "category updated",
		Data:    dto.CategoryResponseFromEntity(category, h.BaseURL),
	})
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	category, err := h.Service.DeleteCategory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataEnvelope{
		Success: true,
		Message: "category deleted",
		Data:    dto.CategoryResponseFromEntity(category, h.BaseURL),
	})
}

type dataEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id format")
	}
	return id, nil
}

// formFile returns nil when the part is absent; whether an image is
// required is the service's call.
func formFile(c echo.Context, name string) *multipart.FileHeader {
	file, err := c.FormFile(name)
	if err != nil {
		return nil
	}
	return file
}
