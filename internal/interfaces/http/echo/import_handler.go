package echo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	app "github.com/mohammadpnp/household-import/internal/application/importer"
	"github.com/mohammadpnp/household-import/internal/infrastructure/file"
)

type uploadStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Consume(ctx context.Context, path string) (file.Sheet, error)
}

type ImportHandler struct {
	useCase app.StartImport
	uploads uploadStore
	logger  *logrus.Logger
}

type startImportRequest struct {
	Mapping map[string]int `json:"mapping"`
	Rows    [][]any        `json:"rows"`
}

func NewImportHandler(useCase app.StartImport, uploads uploadStore, logger *logrus.Logger) *ImportHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImportHandler{useCase: useCase, uploads: uploads, logger: logger}
}

func (h *ImportHandler) StartImport(c echo.Context) error {
	var req startImportRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	return h.start(c, app.StartImportInput{
		UserID:  userID(c),
		Mapping: req.Mapping,
		Rows:    req.Rows,
	})
}

// UploadImport reads a spreadsheet upload and starts a run with its data rows.
// The stored file is removed once read.
func (h *ImportHandler) UploadImport(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "bad_request", "file is required")
	}
	if !file.Supported(header.Filename) {
		return errorJSON(c, http.StatusBadRequest, "unsupported_file", "file must be .xlsx or .csv")
	}

	var mapping map[string]int
	if err := json.Unmarshal([]byte(c.FormValue("mapping")), &mapping); err != nil {
		return errorJSON(c, http.StatusBadRequest, "bad_request", "mapping must be a JSON object of field to column index")
	}

	src, err := header.Open()
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "bad_request", "file could not be read")
	}
	defer src.Close()

	ctx := c.Request().Context()
	path, err := h.uploads.Save(ctx, header.Filename, src)
	if err != nil {
		h.logger.WithError(err).Warn("store uploaded spreadsheet failed")
		return internalError(c, "failed to store upload")
	}

	sheet, err := h.uploads.Consume(ctx, path)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid_file", err.Error())
	}

	return h.start(c, app.StartImportInput{
		UserID:  userID(c),
		Mapping: mapping,
		Rows:    sheet.Rows,
	})
}

func (h *ImportHandler) start(c echo.Context, in app.StartImportInput) error {
	out, err := h.useCase.Execute(c.Request().Context(), in)
	if err != nil {
		var structural *app.StructuralError
		switch {
		case errors.As(err, &structural):
			return errorJSON(c, http.StatusBadRequest, "invalid_import", structural.Error())
		case errors.Is(err, app.ErrMissingUser):
			return errorJSON(c, http.StatusUnauthorized, "unauthorized", HeaderUserID+" header is required")
		case errors.Is(err, app.ErrQueueFull):
			return errorJSON(c, http.StatusServiceUnavailable, "queue_full", "too many imports in flight, retry shortly")
		}
		h.logger.WithError(err).Error("start household import failed")
		return internalError(c, "failed to start import")
	}

	return c.JSON(http.StatusAccepted, apiResponse{Data: out})
}
