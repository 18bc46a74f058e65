package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/agamariel/invoicehub/internal/mailer"
	"github.com/agamariel/invoicehub/internal/models"
	"github.com/agamariel/invoicehub/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrNotificationInput    = errors.New("email and invoice number are required")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrMailNotConfigured    = errors.New("email service is not configured")
	ErrNotificationDelivery = errors.New("failed to send email")
	ErrOrderOwnerNotFound   = errors.New("order or user not found")
	ErrCustomerEmailMissing = errors.New("customer email is missing")
)

const orderDateLayout = "02/01/2006 15:04"

var requestReceivedTemplate = template.Must(template.New("request_received").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto;">
  <h2>Invoice Request Status Notification</h2>
  <p>Dear <strong>{{.CusName}}</strong>,</p>
  <p>Your invoice request has been received and sent to the accounting department for processing.</p>
  <div style="background-color: #f5f5f5; padding: 12px; margin: 16px 0;">
    <strong>Order number:</strong> {{.OrderNo}}<br />
    <strong>Request number:</strong> {{.ReqNo}}
  </div>
  <p>As soon as the invoice is issued, we will send it back to you via email.</p>
</div>`))

var orderInvoiceTemplate = template.Must(template.New("order_invoice").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto;">
  <h2>Invoice for order #{{.OrderNo}}</h2>
  <p>Dear <strong>{{.CusName}}</strong>,</p>
  <p>Please find the details of your order below.</p>
  <table style="border-collapse: collapse;">
    <tr><td><strong>Order number:</strong></td><td>{{.OrderNo}}</td></tr>
    <tr><td><strong>Order date:</strong></td><td>{{.Date}}</td></tr>
    <tr><td><strong>Total:</strong></td><td>{{.Total}}</td></tr>
    <tr><td><strong>Address:</strong></td><td>{{.Address}}</td></tr>
    <tr><td><strong>Phone:</strong></td><td>{{.Phone}}</td></tr>
  </table>
  <p>Thank you for your purchase.</p>
</div>`))

// orderInvoiceView - данные письма со счётом по заказу.
type orderInvoiceView struct {
	OrderNo string
	CusName string
	Date    string
	Total   string
	Address string
	Phone   string
}

var invoiceIssuedTemplate = template.Must(template.New("invoice_issued").Parse(`<p>Invoice <strong>{{.}}</strong> has been issued.</p>`))

// NotificationService отправляет письма о заявках и выставленных счетах.
type NotificationService interface {
	SendInvoiceIssued(ctx context.Context, email, invoiceNumber string) error
	SendRequestReceived(ctx context.Context, invoice *models.Invoice) error
	SendOrderInvoice(ctx context.Context, orderID uuid.UUID) error
}

// NotificationServiceImpl реализует NotificationService.
// sender == nil означает, что почта не настроена.
type NotificationServiceImpl struct {
	sender   mailer.EmailSender
	orders   storage.OrderStorage
	users    storage.UserStorage
	validate *validator.Validate
	logger   *zap.Logger
}

// NewNotificationService создаёт новый сервис уведомлений.
func NewNotificationService(sender mailer.EmailSender, orders storage.OrderStorage, users storage.UserStorage, logger *zap.Logger) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		sender:   sender,
		orders:   orders,
		users:    users,
		validate: validator.New(),
		logger:   logger,
	}
}

// SendInvoiceIssued сообщает клиенту, что счёт выставлен.
func (s *NotificationServiceImpl) SendInvoiceIssued(ctx context.Context, email, invoiceNumber string) error {
	if email == "" || invoiceNumber == "" {
		return ErrNotificationInput
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return ErrInvalidEmail
	}
	if s.sender == nil {
		return ErrMailNotConfigured
	}

	body, err := render(invoiceIssuedTemplate, invoiceNumber)
	if err != nil {
		return err
	}

	result, err := s.sender.Send(ctx, mailer.Message{
		To:      email,
		Subject: "Invoice " + invoiceNumber,
		HTML:    body,
	})
	if err != nil {
		s.logger.Error("failed to send invoice notification",
			zap.String("invoice_number", invoiceNumber),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrNotificationDelivery, err)
	}

	s.logger.Info("invoice notification sent",
		zap.String("invoice_number", invoiceNumber),
		zap.String("message_id", result.MessageID),
	)
	return nil
}

// SendRequestReceived подтверждает клиенту приём заявки.
func (s *NotificationServiceImpl) SendRequestReceived(ctx context.Context, invoice *models.Invoice) error {
	if s.sender == nil {
		return ErrMailNotConfigured
	}
	if invoice.Email == "" {
		return ErrNotificationInput
	}

	body, err := render(requestReceivedTemplate, invoice)
	if err != nil {
		return err
	}

	if _, err := s.sender.Send(ctx, mailer.Message{
		To:      invoice.Email,
		Subject: "Invoice Request for Order #" + invoice.OrderNo,
		HTML:    body,
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationDelivery, err)
	}
	return nil
}

// SendOrderInvoice отправляет владельцу заказа письмо с суммой и реквизитами заказа.
func (s *NotificationServiceImpl) SendOrderInvoice(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return ErrOrderOwnerNotFound
		}
		return fmt.Errorf("get order: %w", err)
	}

	owner, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrOrderOwnerNotFound
		}
		return fmt.Errorf("get order owner: %w", err)
	}
	if owner.Email == "" {
		return ErrCustomerEmailMissing
	}
	if s.sender == nil {
		return ErrMailNotConfigured
	}

	body, err := render(orderInvoiceTemplate, newOrderInvoiceView(order))
	if err != nil {
		return err
	}

	result, err := s.sender.Send(ctx, mailer.Message{
		To:      owner.Email,
		Subject: "Invoice for order #" + order.OrderNo,
		HTML:    body,
	})
	if err != nil {
		s.logger.Error("failed to send order invoice",
			zap.String("order_no", order.OrderNo),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrNotificationDelivery, err)
	}

	s.logger.Info("order invoice sent",
		zap.String("order_no", order.OrderNo),
		zap.String("message_id", result.MessageID),
	)
	return nil
}

func newOrderInvoiceView(order *models.Order) orderInvoiceView {
	view := orderInvoiceView{
		OrderNo: order.OrderNo,
		CusName: order.CusName,
		Date:    "Not specified",
		Total:   formatVND(order.TotalAmount),
		Address: orDash(order.Address),
		Phone:   orDash(order.Phone),
	}
	if order.Datetime != nil {
		view.Date = order.Datetime.Format(orderDateLayout)
	}
	return view
}

// formatVND округляет сумму до донга и группирует разряды точкой: 1.250.000 VND.
func formatVND(amount decimal.Decimal) string {
	digits := amount.Round(0).StringFixed(0)

	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteString(" VND")
	return b.String()
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
