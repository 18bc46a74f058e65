package storage

import (
	"context"
	"fmt"

	"github.com/agamariel/invoicehub/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresInvoiceStorage хранит заявки на счета и их связи с заказами.
type PostgresInvoiceStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresInvoiceStorage создаёт новый экземпляр PostgresInvoiceStorage.
func NewPostgresInvoiceStorage(pool *pgxpool.Pool) *PostgresInvoiceStorage {
	return &PostgresInvoiceStorage{pool: pool}
}

// CreateRequest создаёт заявку и связь с заказом в одной транзакции.
// Номер заявки, статус и временные метки заполняются здесь.
func (s *PostgresInvoiceStorage) CreateRequest(ctx context.Context, invoice *models.Invoice) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := createInvoiceForOrder(ctx, tx, invoice); err != nil {
		if isUniqueViolation(err, orderInvoiceOrderNoKey) {
			return ErrInvoiceAlreadyExists
		}
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByUserID возвращает заявки пользователя, новые первыми.
func (s *PostgresInvoiceStorage) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Invoice, error) {
	query := `
		SELECT id, req_no, req_datetime, order_no, cus_name, tax_no, tax_address,
		       email, phone, status, user_id, created_by, created_at, updated_at
		FROM invoices
		WHERE user_id = $1
		ORDER BY req_datetime DESC, req_no DESC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]*models.Invoice, 0)
	for rows.Next() {
		invoice := &models.Invoice{}
		err := rows.Scan(
			&invoice.ID,
			&invoice.ReqNo,
			&invoice.ReqDatetime,
			&invoice.OrderNo,
			&invoice.CusName,
			&invoice.TaxNo,
			&invoice.TaxAddress,
			&invoice.Email,
			&invoice.Phone,
			&invoice.Status,
			&invoice.UserID,
			&invoice.CreatedBy,
			&invoice.CreatedAt,
			&invoice.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, nil
}

// createInvoiceForOrder выполняет все шаги создания заявки на переданном соединении:
// блокирует заказ, проверяет отсутствие связи, выделяет номер, пишет заявку и связь.
func createInvoiceForOrder(ctx context.Context, q querier, invoice *models.Invoice) error {
	if _, err := lockOrder(ctx, q, invoice.OrderNo); err != nil {
		return err
	}

	exists, err := invoiceExistsForOrder(ctx, q, invoice.OrderNo)
	if err != nil {
		return err
	}
	if exists {
		return ErrInvoiceAlreadyExists
	}

	reqNo, err := nextRequestNumber(ctx, q)
	if err != nil {
		return err
	}

	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	invoice.ReqNo = reqNo
	invoice.Status = models.InvoiceStatusRequested

	if err := insertInvoice(ctx, q, invoice); err != nil {
		return err
	}

	return insertOrderInvoice(ctx, q, &models.OrderInvoice{
		ID:        uuid.New(),
		OrderNo:   invoice.OrderNo,
		InvNo:     invoice.ReqNo,
		UserID:    invoice.UserID,
		CreatedBy: invoice.CreatedBy,
	})
}

func invoiceExistsForOrder(ctx context.Context, q querier, orderNo string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM order_invoices WHERE order_no = $1)`

	var exists bool
	if err := q.QueryRow(ctx, query, orderNo).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check order invoice: %w", err)
	}
	return exists, nil
}

func insertInvoice(ctx context.Context, q querier, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (id, req_no, req_datetime, order_no, cus_name, tax_no, tax_address,
		                      email, phone, status, user_id, created_by, created_at, updated_at)
		VALUES ($1, $2, NOW(), $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING req_datetime, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		invoice.ID,
		invoice.ReqNo,
		invoice.OrderNo,
		invoice.CusName,
		invoice.TaxNo,
		invoice.TaxAddress,
		invoice.Email,
		invoice.Phone,
		invoice.Status,
		invoice.UserID,
		invoice.CreatedBy,
	).Scan(&invoice.ReqDatetime, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	return nil
}

func insertOrderInvoice(ctx context.Context, q querier, link *models.OrderInvoice) error {
	query := `
		INSERT INTO order_invoices (id, order_no, inv_no, user_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		link.ID,
		link.OrderNo,
		link.InvNo,
		link.UserID,
		link.CreatedBy,
	).Scan(&link.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order invoice: %w", err)
	}

	return nil
}
