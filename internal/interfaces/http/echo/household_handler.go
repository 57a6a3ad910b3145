package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	app "github.com/mohammadpnp/household-import/internal/application/household"
)

type HouseholdHandler struct {
	useCase app.GetHouseholdByID
}

func NewHouseholdHandler(useCase app.GetHouseholdByID) *HouseholdHandler {
	return &HouseholdHandler{useCase: useCase}
}

func (h *HouseholdHandler) GetHouseholdByID(c echo.Context) error {
	out, err := h.useCase.Execute(c.Request().Context(), app.GetHouseholdByIDInput{
		OwnerID: userID(c),
		ID:      c.Param("id"),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidHouseholdID) {
			return errorJSON(c, http.StatusBadRequest, "invalid_household_id", "id must be a valid UUID")
		}
		if errors.Is(err, app.ErrHouseholdNotFound) {
			return errorJSON(c, http.StatusNotFound, "not_found", "household not found")
		}
		return internalError(c, "failed to get household")
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}
