package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvoiceAlreadyExists = errors.New("invoice already exists for order")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgDeadlockDetected    = "40P01"

	orderInvoiceOrderNoKey = "order_invoices_order_no_key"
)

// querier - общее подмножество pgxpool.Pool и pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// classifyRowError превращает ошибку записи строки в сообщение для пользователя.
// Текст ошибки драйвера наружу не попадает.
func classifyRowError(err error, orderNo string) string {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return fmt.Sprintf("Order %s not found", orderNo)
	case errors.Is(err, ErrInvoiceAlreadyExists):
		return fmt.Sprintf("Invoice already exists for order %s", orderNo)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if pgErr.ConstraintName == orderInvoiceOrderNoKey {
				return fmt.Sprintf("Invoice already exists for order %s", orderNo)
			}
			return "Duplicate invoice request number"
		case pgForeignKeyViolation:
			return "Referenced order does not exist"
		}
	}

	return "Failed to create invoice record"
}

// isUniqueViolation сообщает, нарушено ли указанное ограничение уникальности.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraint
}

// isDeadlock сообщает, прервал ли сервер транзакцию из-за взаимной блокировки.
func isDeadlock(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgDeadlockDetected
}
