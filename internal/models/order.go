package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus описывает статус оплаты заказа.
type OrderStatus string

const (
	OrderStatusUnpaid    OrderStatus = "Unpaid"
	OrderStatusPaid      OrderStatus = "Paid"
	OrderStatusCancelled OrderStatus = "Cancelled"
	OrderStatusRefund    OrderStatus = "Refund"
)

// Order представляет заказ, по которому можно запросить счёт.
// Для сервиса счетов заказы доступны только на чтение.
type Order struct {
	ID          uuid.UUID       `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	OrderNo     string          `db:"order_no"`
	Datetime    *time.Time      `db:"datetime"`
	TotalAmount decimal.Decimal `db:"total_amt"`
	CusName     string          `db:"cus_name"`
	Address     string          `db:"address"`
	Email       string          `db:"email"`
	Phone       string          `db:"phone"`
	Status      OrderStatus     `db:"status"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// VerdictStatus - итог сверки данных клиента с данными заказа.
type VerdictStatus string

const (
	VerdictSuccess VerdictStatus = "success"
	VerdictWarning VerdictStatus = "warning"
)

// OrderValidation - результат сверки данных из заявки с заказом.
type OrderValidation struct {
	Status  VerdictStatus `json:"status"`
	Message string        `json:"message"`
	Title   string        `json:"title,omitempty"`
}
