package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/agamariel/invoicehub/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const rowErrorField = "order_no"

// PostgresBulkInvoiceStorage создаёт заявки пакетом в одной транзакции.
type PostgresBulkInvoiceStorage struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresBulkInvoiceStorage создаёт новый экземпляр PostgresBulkInvoiceStorage.
func NewPostgresBulkInvoiceStorage(pool *pgxpool.Pool, logger *zap.Logger) *PostgresBulkInvoiceStorage {
	return &PostgresBulkInvoiceStorage{pool: pool, logger: logger}
}

// BulkImport создаёт по заявке на каждую строку в исходном порядке.
// Каждая строка пишется под своей точкой сохранения: ошибка строки откатывает
// только её и попадает в результат, остальные строки продолжают обрабатываться.
// Успешные строки фиксируются даже если в пакете были ошибки.
func (s *PostgresBulkInvoiceStorage) BulkImport(ctx context.Context, userID uuid.UUID, rows []models.ImportRow) (*models.BulkImportResult, error) {
	result := &models.BulkImportResult{
		TotalRows:        len(rows),
		Errors:           []models.RowError{},
		ImportedInvoices: []string{},
		Records:          make([]models.ImportedRecord, 0, len(rows)),
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockOrders(ctx, tx, batchOrderNumbers(rows)); err != nil {
		return nil, err
	}

	for _, row := range rows {
		invoice, message, err := s.importRow(ctx, tx, userID, row)
		if err != nil {
			return nil, err
		}

		if message != "" {
			result.Errors = append(result.Errors, models.RowError{
				RowIndex: row.Index,
				Field:    rowErrorField,
				Message:  message,
			})
			result.Records = append(result.Records, models.ImportedRecord{
				RowIndex: row.Index,
				OrderNo:  row.Row.OrderNo,
				Status:   models.ImportError,
				Message:  message,
			})
			continue
		}

		result.ValidRows++
		result.ImportedInvoices = append(result.ImportedInvoices, invoice.ID.String())
		result.Records = append(result.Records, models.ImportedRecord{
			RowIndex: row.Index,
			ID:       invoice.ID.String(),
			ReqNo:    invoice.ReqNo,
			OrderNo:  invoice.OrderNo,
			Status:   models.ImportSuccess,
		})
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// importRow пишет одну строку под точкой сохранения.
// Возвращает либо заявку, либо сообщение об ошибке строки; error - только для сбоев,
// после которых транзакцию продолжать нельзя.
func (s *PostgresBulkInvoiceStorage) importRow(ctx context.Context, tx pgx.Tx, userID uuid.UUID, row models.ImportRow) (*models.Invoice, string, error) {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create savepoint: %w", err)
	}

	createdBy := userID
	invoice := &models.Invoice{
		OrderNo:    row.Row.OrderNo,
		CusName:    row.Row.CusName,
		TaxNo:      row.Row.TaxNo,
		TaxAddress: row.Row.CusAddress,
		Email:      row.Row.Email,
		Phone:      row.Row.Phone,
		UserID:     userID,
		CreatedBy:  &createdBy,
	}

	if err := createInvoiceForOrder(ctx, sp, invoice); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return nil, "", fmt.Errorf("failed to rollback savepoint: %w", rbErr)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", ctxErr
		}
		if isDeadlock(err) {
			return nil, "", fmt.Errorf("failed to import row %d: %w", row.Index, err)
		}

		message := classifyRowError(err, row.Row.OrderNo)
		s.logger.Debug("bulk import row failed",
			zap.Int("row_index", row.Index),
			zap.String("order_no", row.Row.OrderNo),
			zap.String("reason", message),
			zap.Error(err),
		)
		return nil, message, nil
	}

	if err := sp.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("failed to release savepoint: %w", err)
	}

	return invoice, "", nil
}

// batchOrderNumbers возвращает различные непустые номера заказов пакета.
func batchOrderNumbers(rows []models.ImportRow) []string {
	seen := make(map[string]struct{}, len(rows))
	orderNos := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Row.OrderNo == "" {
			continue
		}
		if _, ok := seen[row.Row.OrderNo]; ok {
			continue
		}
		seen[row.Row.OrderNo] = struct{}{}
		orderNos = append(orderNos, row.Row.OrderNo)
	}
	sort.Strings(orderNos)
	return orderNos
}
