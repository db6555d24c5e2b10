package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const maxVehicleSearchLimit = 50

// searchVehicles ranks catalog entries against a free-text query.
func (s *APIV1Service) searchVehicles(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}
	if limit > maxVehicleSearchLimit {
		limit = maxVehicleSearchLimit
	}

	matches, err := s.Vehicles.Search(c.Request().Context(), query, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "vehicle search failed")
	}
	return c.JSON(http.StatusOK, map[string]any{"results": matches})
}

// getVehicle returns one catalog entry.
func (s *APIV1Service) getVehicle(c echo.Context) error {
	v, err := s.Vehicles.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "vehicle lookup failed")
	}
	if v == nil {
		return echo.NewHTTPError(http.StatusNotFound, "vehicle not found")
	}
	return c.JSON(http.StatusOK, v)
}
