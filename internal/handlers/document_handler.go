package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/agamariel/invoicehub/internal/documents"
	"github.com/labstack/echo/v4"
)

// DocumentService - операции над подтверждающими документами.
type DocumentService interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (*documents.Document, error)
	List(ctx context.Context) ([]*documents.Document, error)
	Delete(ctx context.Context, name string) error
}

var _ DocumentService = (*documents.Service)(nil)

// DocumentHandler обрабатывает /api/documents.
type DocumentHandler struct {
	documentService DocumentService
}

func NewDocumentHandler(documentService DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload обрабатывает POST /api/documents.
func (h *DocumentHandler) Upload(c echo.Context) error {
	data, header, err := readFormFile(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	doc, err := h.documentService.Upload(
		c.Request().Context(),
		header.Filename,
		header.Header.Get(echo.HeaderContentType),
		data,
	)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrEmptyFile),
			errors.Is(err, documents.ErrFileTooLarge),
			errors.Is(err, documents.ErrUnsupportedType),
			errors.Is(err, documents.ErrInvalidArchive):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			c.Logger().Errorf("failed to upload document: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload file")
		}
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{"data": doc})
}

// List обрабатывает GET /api/documents.
func (h *DocumentHandler) List(c echo.Context) error {
	docs, err := h.documentService.List(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("failed to list documents: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"data": docs})
}

// Delete обрабатывает DELETE /api/documents/:name.
func (h *DocumentHandler) Delete(c echo.Context) error {
	err := h.documentService.Delete(c.Request().Context(), c.Param("name"))
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrInvalidName):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, documents.ErrDocumentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "File not found")
		default:
			c.Logger().Errorf("failed to delete document: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.NoContent(http.StatusNoContent)
}
