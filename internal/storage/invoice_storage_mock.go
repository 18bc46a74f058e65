package storage

import (
	"context"

	"github.com/agamariel/invoicehub/internal/models"
	"github.com/google/uuid"
)

// MockOrderStorage - мок OrderStorage для тестов других пакетов.
type MockOrderStorage struct {
	GetByNumberFunc func(ctx context.Context, orderNo string) (*models.Order, error)
	GetByIDFunc     func(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

func (m *MockOrderStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) GetByNumber(ctx context.Context, orderNo string) (*models.Order, error) {
	if m.GetByNumberFunc != nil {
		return m.GetByNumberFunc(ctx, orderNo)
	}
	return nil, ErrOrderNotFound
}

// MockInvoiceStorage - мок InvoiceStorage для тестов других пакетов.
type MockInvoiceStorage struct {
	CreateRequestFunc func(ctx context.Context, invoice *models.Invoice) error
	GetByUserIDFunc   func(ctx context.Context, userID uuid.UUID) ([]*models.Invoice, error)
}

func (m *MockInvoiceStorage) CreateRequest(ctx context.Context, invoice *models.Invoice) error {
	if m.CreateRequestFunc != nil {
		return m.CreateRequestFunc(ctx, invoice)
	}
	invoice.ReqNo = FormatRequestNumber(1)
	invoice.Status = models.InvoiceStatusRequested
	return nil
}

func (m *MockInvoiceStorage) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Invoice, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return []*models.Invoice{}, nil
}

// MockBulkInvoiceStorage - мок BulkInvoiceStorage для тестов других пакетов.
type MockBulkInvoiceStorage struct {
	BulkImportFunc func(ctx context.Context, userID uuid.UUID, rows []models.ImportRow) (*models.BulkImportResult, error)
}

func (m *MockBulkInvoiceStorage) BulkImport(ctx context.Context, userID uuid.UUID, rows []models.ImportRow) (*models.BulkImportResult, error) {
	if m.BulkImportFunc != nil {
		return m.BulkImportFunc(ctx, userID, rows)
	}
	return &models.BulkImportResult{
		TotalRows:        len(rows),
		Errors:           []models.RowError{},
		ImportedInvoices: []string{},
		Records:          []models.ImportedRecord{},
	}, nil
}
