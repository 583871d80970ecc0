package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"avtosalon/internal/dto"
	"avtosalon/internal/service"
)

type CarHandler struct {
	Service *service.CatalogService
	BaseURL string
}

func NewCarHandler(svc *service.CatalogService, baseURL string) *CarHandler {
	return &CarHandler{Service: svc, BaseURL: baseURL}
}

func (h *CarHandler) Create(c echo.Context) error {
	categoryID, err := uuid.Parse(c.FormValue("category"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category id")
	}
	model := c.FormValue("model")
	if model == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "model is required")
	}
	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid price")
	}

	input := service.CarInput{CategoryID: categoryID, Model: model, Price: price}
	car, err := h.Service.CreateCar(c.Request().Context(), input, formFile(c, "image"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dataEnvelope{
		Success: true,
		Message: "car created",
		Data:    dto.CarResponseFromEntity(car, h.BaseURL),
	})
}

func (h *CarHandler) GetAll(c echo.Context) error {
	cars, err := h.Service.ListCars(c.Request().Context())
	if err != nil {
		return err
	}
	count := len(cars)
	return c.JSON(http.StatusOK, dataEnvelope{
		Success: true,
		Count:   &count,
		Data:    dto.CarResponsesFromEntities(cars, h.BaseURL),
	})
}

func (h *CarHandler) GetByCategory(c echo.Context) error {
	categoryID, err := uuid.Parse(c.Param("categoryId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id format")
	}
	cars, err := h.Service.ListCarsByCategory(c.Request().Context(), categoryID)
	if err != nil {
		return err
	}
	count := len(cars)
	return c.JSON(http.StatusOK, dataEnvelope{
		Success: true,
		Count:   &count,
		Data:    dto.CarResponsesFromEntities(cars, h.BaseURL),
	})
}

func (h *CarHandler) GetOne(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	car, err := h.Service.GetCar(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataEnvelope{
		Success: true,
		Data:    dto.CarResponseFromEntity(car, h.BaseURL),
	})
}

func (h *CarHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var update service.CarUpdate
	if raw := c.FormValue("category"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid category id")
		}
		update.CategoryID = &categoryID
	}
	if raw := c.FormValue("model"); raw != "" {
		update.Model = &raw
	}
	if raw := c.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid price")
		}
		update.Price = &price
	}
	if raw := c.FormValue("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid available flag")
		}
		update.Available = &available
	}

	car, err := h.Service.UpdateCar(c.Request().Context(), id, update, formFile(c, "image"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataEnvelope{
		Success: true,
		Message: "car updated",
		Data:    dto.CarResponseFromEntity(car, h.BaseURL),
	})
}

func (h *CarHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	car, err := h.Service.DeleteCar(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataEnvelope{
		Success: true,
		Message: "car deleted",
		Data:    dto.CarResponseFromEntity(car, h.BaseURL),
	})
}
