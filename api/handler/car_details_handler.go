package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"avtosalon/internal/dto"
	"avtosalon/internal/service"
)

type CarDetailsHandler struct {
	Service *service.CatalogService
	BaseURL string
}

func NewCarDetailsHandler(svc *service.CatalogService, baseURL string) *CarDetailsHandler {
	return &CarDetailsHandler{Service: svc, BaseURL: baseURL}
}

func (h *CarDetailsHandler) Create(c echo.Context) error {
	carID, err := uuid.Parse(c.FormValue("car"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid car id")
	}
	year, err := strconv.Atoi(c.FormValue("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
	}
	distance, err := strconv.Atoi(c.FormValue("distance"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid distance")
	}

	input := service.CarDetailsInput{
		CarID:       carID,
		Tinting:     c.FormValue("tinting"),
		Motor:       c.FormValue("motor"),
		Year:        year,
		Color:       c.FormValue("color"),
		Distance:    distance,
		Gearbox:     c.FormValue("gearbox"),
		Description: c.FormValue("description"),
	}
	details, err := h.Service.CreateCarDetails(
		c.Request().Context(),
		input,
		formFiles(c, "exteriorImages"),
		formFiles(c, "interiorImages"),
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dataEnvelope{
		Success: true,
		Data:    dto.CarDetailsResponseFromEntity(details, h.BaseURL),
	})
}

func (h *CarDetailsHandler) GetAll(c echo.Context) error {
	details, err := h.Service.ListCarDetails(c.Request().Context())
	if err != nil {
		return err
	}
	count := len(details)
	return c.JSON(http.StatusOK, dataEnvelope{
		Success: true,
		Count:   &count,
		Data:    dto.CarDetailsResponsesFromEntities(details, h.BaseURL),
	})
}

func (h *CarDetailsHandler) GetOne(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	details, err := h.Service.GetCarDetails(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataEnvelope{
		Success: true,
		Data:    dto.CarDetailsResponseFromEntity(details, h.BaseURL),
	})
}

// GetExterior and GetInterior trim the response to one image set each; the
// underlying record is the same.
func (h *CarDetailsHandler) GetExterior(c echo.Context) error {
	return h.getOneSide(c, true)
}

func (h *CarDetailsHandler) GetInterior(c echo.Context) error {
	return h.getOneSide(c, false)
}

func (h *CarDetailsHandler) getOneSide(c echo.Context, exterior bool) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	details, err := h.Service.GetCarDetails(c.Request().Context(), id)
	if err != nil {
		return err
	}
	response := dto.CarDetailsResponseFromEntity(details, h.BaseURL)
	if exterior {
		response.InteriorImages = nil
	} else {
		response.ExteriorImages = nil
	}
	return c.JSON(http.StatusOK, dataEnvelope{
		Success: true,
		Data:    response,
	})
}

func (h *CarDetailsHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var update service.CarDetailsUpdate
	if raw := c.FormValue("tinting"); raw != "" {
		update.Tinting = &raw
	}
	if raw := c.FormValue("motor"); raw != "" {
		update.Motor = &raw
	}
	if raw := c.FormValue("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
		}
		update.Year = &year
	}
	if raw := c.FormValue("color"); raw != "" {
		update.Color = &raw
	}
	if raw := c.FormValue("distance"); raw != "" {
		distance, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid distance")
		}
		update.Distance = &distance
	}
	if raw := c.FormValue("gearbox"); raw != "" {
		update.Gearbox = &raw
	}
	if raw := c.FormValue("description"); raw != "" {
		update.Description = &raw
	}

	details, err := h.Service.UpdateCarDetails(
		c.Request().Context(),
		id,
		update,
		formFiles(c, "exteriorImages"),
		formFiles(c, "interiorImages"),
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataEnvelope{
		Success: true,
		Message: "car details updated",
		Data:    dto.CarDetailsResponseFromEntity(details, h.BaseURL),
	})
}

func (h *CarDetailsHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	details, err := h.Service.DeleteCarDetails(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataEnvelope{
		Success: true,
		Message: "car details deleted",
		Data:    dto.CarDetailsResponseFromEntity(details, h.BaseURL),
	})
}

func formFiles(c echo.Context, name string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[name]
}
