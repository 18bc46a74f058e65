package handlers

import (
	"errors"
	"net/http"

	"github.com/agamariel/invoicehub/internal/auth"
	"github.com/agamariel/invoicehub/internal/models"
	"github.com/agamariel/invoicehub/internal/services"
	"github.com/agamariel/invoicehub/internal/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// InvoiceHandler обрабатывает запросы заявок на счета.
type InvoiceHandler struct {
	invoiceService      services.InvoiceService
	notificationService services.NotificationService
}

func NewInvoiceHandler(invoiceService services.InvoiceService, notificationService services.NotificationService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:      invoiceService,
		notificationService: notificationService,
	}
}

// RequestInvoice обрабатывает POST /api/invoices/request.
// Доступен гостям; для авторизованных пользователей сохраняется автор заявки.
func (h *InvoiceHandler) RequestInvoice(c echo.Context) error {
	var req models.RequestInvoiceInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	var requestedBy *uuid.UUID
	if p := auth.OptionalPrincipal(c); p != nil {
		requestedBy = &p.UserID
	}

	result, err := h.invoiceService.RequestInvoice(c.Request().Context(), &req, requestedBy)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInvoiceRequest):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrProviderNotFound):
			return echo.NewHTTPError(http.StatusBadRequest, "Provider not found")
		case errors.Is(err, storage.ErrOrderNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Order not found")
		case errors.Is(err, storage.ErrInvoiceAlreadyExists):
			return echo.NewHTTPError(http.StatusConflict, "Invoice already exists for this order")
		default:
			c.Logger().Errorf("failed to request invoice: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"data": map[string]interface{}{
			"invoice":    result.Invoice.ToResponse(),
			"validation": result.Validation,
		},
	})
}

// ListInvoices обрабатывает GET /api/invoices.
func (h *InvoiceHandler) ListInvoices(c echo.Context) error {
	p, err := auth.PrincipalFrom(c)
	if err != nil {
		return err
	}

	invoices, err := h.invoiceService.ListInvoices(c.Request().Context(), p.UserID)
	if err != nil {
		c.Logger().Errorf("failed to list invoices: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"data": invoices})
}

// Notify обрабатывает POST /api/invoices/notify.
func (h *InvoiceHandler) Notify(c echo.Context) error {
	var req models.NotifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	err := h.notificationService.SendInvoiceIssued(c.Request().Context(), req.Email, req.InvoiceNumber)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotificationInput), errors.Is(err, services.ErrInvalidEmail):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrMailNotConfigured):
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		default:
			c.Logger().Errorf("failed to send invoice notification: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send email")
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"message": "Email sent successfully"},
	})
}

// SendOrderInvoice обрабатывает POST /api/invoice/send: письмо со счётом
// владельцу заказа.
func (h *InvoiceHandler) SendOrderInvoice(c echo.Context) error {
	var req models.SendOrderInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing orderId")
	}

	err = h.notificationService.SendOrderInvoice(c.Request().Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderOwnerNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Order or user not found")
		case errors.Is(err, services.ErrCustomerEmailMissing):
			return echo.NewHTTPError(http.StatusBadRequest, "Customer email is missing")
		case errors.Is(err, services.ErrMailNotConfigured):
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		default:
			c.Logger().Errorf("failed to send order invoice: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send email")
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"message": "Invoice email sent successfully"},
	})
}
