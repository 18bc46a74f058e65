package storage

import (
	"context"

	"github.com/agamariel/invoicehub/internal/models"
	"github.com/google/uuid"
)

// UserStorage определяет интерфейс для работы с пользователями.
type UserStorage interface {
	Create(ctx context.Context, user *models.User) error
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// OrderStorage определяет интерфейс чтения заказов.
type OrderStorage interface {
	GetByNumber(ctx context.Context, orderNo string) (*models.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// InvoiceStorage определяет интерфейс для работы с заявками на счета.
type InvoiceStorage interface {
	CreateRequest(ctx context.Context, invoice *models.Invoice) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Invoice, error)
}

// BulkInvoiceStorage определяет интерфейс пакетного создания заявок.
type BulkInvoiceStorage interface {
	BulkImport(ctx context.Context, userID uuid.UUID, rows []models.ImportRow) (*models.BulkImportResult, error)
}

var (
	_ UserStorage        = (*PostgresUserStorage)(nil)
	_ OrderStorage       = (*PostgresOrderStorage)(nil)
	_ InvoiceStorage     = (*PostgresInvoiceStorage)(nil)
	_ BulkInvoiceStorage = (*PostgresBulkInvoiceStorage)(nil)
)
