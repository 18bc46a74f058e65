package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus описывает статус заявки на счёт.
type InvoiceStatus string

const (
	InvoiceStatusRequested InvoiceStatus = "Requested"
)

// Invoice - заявка на выставление счёта по заказу.
type Invoice struct {
	ID          uuid.UUID     `db:"id"`
	ReqNo       string        `db:"req_no"`
	ReqDatetime time.Time     `db:"req_datetime"`
	OrderNo     string        `db:"order_no"`
	CusName     string        `db:"cus_name"`
	TaxNo       string        `db:"tax_no"`
	TaxAddress  string        `db:"tax_address"`
	Email       string        `db:"email"`
	Phone       string        `db:"phone"`
	Status      InvoiceStatus `db:"status"`
	UserID      uuid.UUID     `db:"user_id"`
	CreatedBy   *uuid.UUID    `db:"created_by"` // nil для заявок от гостей
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

// OrderInvoice связывает заявку с заказом.
type OrderInvoice struct {
	ID        uuid.UUID  `db:"id"`
	OrderNo   string     `db:"order_no"`
	InvNo     string     `db:"inv_no"`
	UserID    uuid.UUID  `db:"user_id"`
	CreatedBy *uuid.UUID `db:"created_by"`
	CreatedAt time.Time  `db:"created_at"`
}

// RequestInvoiceInput - тело запроса POST /api/invoices/request.
type RequestInvoiceInput struct {
	OrderNo      string `json:"orderNo" validate:"required"`
	CustomerName string `json:"customerName" validate:"required"`
	TaxNo        string `json:"taxNo" validate:"required"`
	TaxAddress   string `json:"taxAddress" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required"`
	ProviderID   string `json:"providerId" validate:"required,uuid"`
}

// InvoiceResponse - DTO заявки для HTTP-ответа.
type InvoiceResponse struct {
	ID          uuid.UUID  `json:"id"`
	ReqNo       string     `json:"reqNo"`
	ReqDatetime string     `json:"reqDatetime"`
	OrderNo     string     `json:"orderNo"`
	CusName     string     `json:"cusName"`
	TaxNo       string     `json:"taxNo"`
	TaxAddress  string     `json:"taxAddress"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Status      string     `json:"status"`
	UserID      uuid.UUID  `json:"userId"`
	CreatedBy   *uuid.UUID `json:"createdBy"`
}

// RequestInvoiceResult - созданная заявка и итог сверки с заказом.
type RequestInvoiceResult struct {
	Invoice    *Invoice
	Validation OrderValidation
}

// NotifyRequest - запрос на отправку уведомления о выставленном счёте.
type NotifyRequest struct {
	Email         string `json:"email"`
	InvoiceNumber string `json:"invoiceNumber"`
}

// SendOrderInvoiceRequest - тело POST /api/invoice/send.
type SendOrderInvoiceRequest struct {
	OrderID string `json:"orderId"`
}

// ToResponse преобразует заявку в DTO.
func (i *Invoice) ToResponse() *InvoiceResponse {
	return &InvoiceResponse{
		ID:          i.ID,
		ReqNo:       i.ReqNo,
		ReqDatetime: i.ReqDatetime.Format(time.RFC3339),
		OrderNo:     i.OrderNo,
		CusName:     i.CusName,
		TaxNo:       i.TaxNo,
		TaxAddress:  i.TaxAddress,
		Email:       i.Email,
		Phone:       i.Phone,
		Status:      string(i.Status),
		UserID:      i.UserID,
		CreatedBy:   i.CreatedBy,
	}
}
