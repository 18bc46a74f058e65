package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agamariel/invoicehub/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id, user_id, order_no, datetime, total_amt, cus_name, address, email, phone, status, created_at, updated_at`

// PostgresOrderStorage читает заказы из PostgreSQL.
type PostgresOrderStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderStorage создаёт новый экземпляр PostgresOrderStorage.
func NewPostgresOrderStorage(pool *pgxpool.Pool) *PostgresOrderStorage {
	return &PostgresOrderStorage{pool: pool}
}

// GetByNumber возвращает заказ по номеру.
func (s *PostgresOrderStorage) GetByNumber(ctx context.Context, orderNo string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_no = $1`
	return scanOrder(s.pool.QueryRow(ctx, query, orderNo))
}

// GetByID возвращает заказ по идентификатору.
func (s *PostgresOrderStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(s.pool.QueryRow(ctx, query, id))
}

// lockOrder читает заказ с блокировкой строки до конца транзакции.
// Параллельные заявки на один заказ выполняются по очереди.
func lockOrder(ctx context.Context, q querier, orderNo string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_no = $1 FOR UPDATE`
	return scanOrder(q.QueryRow(ctx, query, orderNo))
}

// lockOrders блокирует все найденные заказы пакета одним запросом.
// Строки берутся в порядке order_no, поэтому пакеты с пересекающимися
// заказами ждут друг друга, а не блокируют взаимно. Отсутствующие номера
// пропускаются: их разберёт построчная обработка.
func lockOrders(ctx context.Context, q querier, orderNos []string) error {
	if len(orderNos) == 0 {
		return nil
	}

	query := `SELECT order_no FROM orders WHERE order_no = ANY($1) ORDER BY order_no FOR UPDATE`

	rows, err := q.Query(ctx, query, orderNos)
	if err != nil {
		return fmt.Errorf("failed to lock orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("failed to lock orders: %w", err)
	}

	return nil
}

// scanOrder помогает читать заказ из строки результата.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order                 models.Order
		address, email, phone sql.NullString
	)

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.OrderNo,
		&order.Datetime,
		&order.TotalAmount,
		&order.CusName,
		&address,
		&email,
		&phone,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	order.Address = address.String
	order.Email = email.String
	order.Phone = phone.String

	return &order, nil
}
