package echo

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	app "github.com/mohammadpnp/household-import/internal/application/importer"
	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

type progressSubscriber interface {
	Serve(userID string, conn *websocket.Conn, initial *domain.ImportProgress)
}

type ProgressHandler struct {
	service  app.ImportProgressService
	runs     app.ListRuns
	hub      progressSubscriber
	upgrader websocket.Upgrader
	logger   *logrus.Logger
}

func NewProgressHandler(service app.ImportProgressService, runs app.ListRuns, hub progressSubscriber, logger *logrus.Logger) *ProgressHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ProgressHandler{
		service: service,
		runs:    runs,
		hub:     hub,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The auth gateway in front of the API enforces origin policy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *ProgressHandler) Current(c echo.Context) error {
	p, err := h.service.Current(c.Request().Context(), userID(c))
	if err != nil {
		if errors.Is(err, app.ErrProgressMissing) {
			return errorJSON(c, http.StatusNotFound, "not_found", "no import progress for this user")
		}
		h.logger.WithError(err).Error("get import progress failed")
		return internalError(c, "failed to get import progress")
	}
	return c.JSON(http.StatusOK, apiResponse{Data: p})
}

func (h *ProgressHandler) Dismiss(c echo.Context) error {
	if err := h.service.Dismiss(c.Request().Context(), userID(c)); err != nil {
		h.logger.WithError(err).Error("dismiss import progress failed")
		return internalError(c, "failed to dismiss import progress")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProgressHandler) Cancel(c echo.Context) error {
	if err := h.service.Cancel(c.Request().Context(), userID(c)); err != nil {
		if errors.Is(err, app.ErrRunNotFound) {
			return errorJSON(c, http.StatusNotFound, "not_found", "no import run in progress")
		}
		h.logger.WithError(err).Error("cancel import failed")
		return internalError(c, "failed to cancel import")
	}
	return c.JSON(http.StatusAccepted, apiResponse{Data: map[string]string{"status": "cancelling"}})
}

func (h *ProgressHandler) Runs(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	out, err := h.runs.Execute(c.Request().Context(), app.ListRunsInput{
		UserID: userID(c),
		Limit:  limit,
	})
	if err != nil {
		h.logger.WithError(err).Error("list import runs failed")
		return internalError(c, "failed to list import runs")
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

// Stream upgrades to a websocket that receives {event, data} frames for the
// caller's runs, starting with the current snapshot when there is one.
func (h *ProgressHandler) Stream(c echo.Context) error {
	user := userID(c)

	var initial *domain.ImportProgress
	p, err := h.service.Current(c.Request().Context(), user)
	switch {
	case err == nil:
		initial = &p
	case !errors.Is(err, app.ErrProgressMissing):
		h.logger.WithError(err).WithField("user_id", user).Warn("load progress for new subscriber failed")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		return nil
	}
	h.hub.Serve(user, conn, initial)
	return nil
}
