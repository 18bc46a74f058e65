package handlers

import (
	"errors"
	"net/http"

	"github.com/agamariel/invoicehub/internal/auth"
	"github.com/agamariel/invoicehub/internal/importer"
	"github.com/agamariel/invoicehub/internal/models"
	"github.com/agamariel/invoicehub/internal/services"
	"github.com/labstack/echo/v4"
)

// BulkImportHandler обрабатывает загрузку заявок из таблиц.
type BulkImportHandler struct {
	bulkService services.BulkImportService
}

func NewBulkImportHandler(bulkService services.BulkImportService) *BulkImportHandler {
	return &BulkImportHandler{bulkService: bulkService}
}

// Template обрабатывает GET /api/invoices/bulk-import/template.
func (h *BulkImportHandler) Template(c echo.Context) error {
	format := c.QueryParam("format")

	data, err := h.bulkService.Template(format)
	if err != nil {
		if errors.Is(err, services.ErrUnknownTemplate) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		c.Logger().Errorf("failed to build template: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	contentType, fileName := importer.MIMETypeXLSX, "invoice_template.xlsx"
	if format == services.TemplateFormatCSV {
		contentType, fileName = importer.MIMETypeCSV+"; charset=utf-8", "invoice_template.csv"
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.Blob(http.StatusOK, contentType, data)
}

// Validate обрабатывает POST /api/invoices/bulk-import/validate.
// Файл проверяется построчно, в базу ничего не пишется.
func (h *BulkImportHandler) Validate(c echo.Context) error {
	data, header, err := readFormFile(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp, err := h.bulkService.ValidateFile(c.Request().Context(), data, spreadsheetMIME(header))
	if err != nil {
		return h.fileFailure(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"data": resp})
}

// Import обрабатывает POST /api/invoices/bulk-import.
func (h *BulkImportHandler) Import(c echo.Context) error {
	p, err := auth.PrincipalFrom(c)
	if err != nil {
		return err
	}

	var req models.ImportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	result, err := h.bulkService.ImportRecords(c.Request().Context(), p.UserID, req.Records)
	return h.importResponse(c, result, err)
}

// ImportFile обрабатывает POST /api/invoices/bulk-import/file:
// разбор, проверка и запись за один запрос.
func (h *BulkImportHandler) ImportFile(c echo.Context) error {
	p, err := auth.PrincipalFrom(c)
	if err != nil {
		return err
	}

	data, header, err := readFormFile(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.bulkService.ImportFile(c.Request().Context(), p.UserID, data, spreadsheetMIME(header))
	if err != nil && isFileError(err) {
		return h.fileFailure(c, err)
	}
	return h.importResponse(c, result, err)
}

func (h *BulkImportHandler) importResponse(c echo.Context, result *models.BulkImportResult, err error) error {
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoRecordsProvided):
			return echo.NewHTTPError(http.StatusBadRequest, "No valid records provided")
		case errors.Is(err, services.ErrNoValidRecords):
			return echo.NewHTTPError(http.StatusBadRequest, "No valid records to import")
		case errors.Is(err, services.ErrNoRecordsImported):
			// Строки с ошибками возвращаются, чтобы клиент показал причины.
			return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
				"error": "No records were imported",
				"data":  result,
			})
		default:
			c.Logger().Errorf("bulk import failed: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process bulk import")
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"data": result})
}

func (h *BulkImportHandler) fileFailure(c echo.Context, err error) error {
	if isFileError(err) {
		c.Logger().Warnf("file rejected: %v", err)
		return fileError(err)
	}
	c.Logger().Errorf("failed to process file: %v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process file")
}
