package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agamariel/invoicehub/internal/importer"
	"github.com/agamariel/invoicehub/internal/models"
	"github.com/agamariel/invoicehub/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoRecordsProvided    = errors.New("no valid records provided")
	ErrNoValidRecords       = errors.New("no valid records to import")
	ErrNoRecordsImported    = errors.New("no records were imported")
	ErrBulkImportProcessing = errors.New("failed to process bulk import")
	ErrUnknownTemplate      = errors.New("unknown template format")
)

const (
	TemplateFormatXLSX = "xlsx"
	TemplateFormatCSV  = "csv"

	defaultImportTimeout = 30 * time.Second
)

// BulkImportService определяет интерфейс массового импорта заявок.
type BulkImportService interface {
	Template(format string) ([]byte, error)
	ValidateFile(ctx context.Context, data []byte, mimeType string) (*models.ValidationResponse, error)
	ImportRecords(ctx context.Context, userID uuid.UUID, records []models.ValidatedRecord) (*models.BulkImportResult, error)
	ImportRows(ctx context.Context, userID uuid.UUID, rows []models.InvoiceRow) (*models.BulkImportResult, error)
	ImportFile(ctx context.Context, userID uuid.UUID, data []byte, mimeType string) (*models.BulkImportResult, error)
}

// BulkImportServiceImpl реализует BulkImportService.
type BulkImportServiceImpl struct {
	parser      FileParser
	bulkStorage storage.BulkInvoiceStorage
	logger      *zap.Logger
	timeout     time.Duration
}

// NewBulkImportService создаёт новый сервис массового импорта.
func NewBulkImportService(parser FileParser, bulkStorage storage.BulkInvoiceStorage, logger *zap.Logger, timeout time.Duration) *BulkImportServiceImpl {
	if timeout <= 0 {
		timeout = defaultImportTimeout
	}
	return &BulkImportServiceImpl{
		parser:      parser,
		bulkStorage: bulkStorage,
		logger:      logger,
		timeout:     timeout,
	}
}

// Template возвращает пустой шаблон для заполнения.
func (s *BulkImportServiceImpl) Template(format string) ([]byte, error) {
	switch format {
	case "", TemplateFormatXLSX:
		return importer.BuildTemplate()
	case TemplateFormatCSV:
		return importer.BuildCSVTemplate()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, format)
	}
}

// ValidateFile разбирает файл и проверяет каждую строку, ничего не записывая.
// Ошибки уровня файла возвращаются как есть (importer.Err*).
func (s *BulkImportServiceImpl) ValidateFile(ctx context.Context, data []byte, mimeType string) (*models.ValidationResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.parser.Parse(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}

	rows, summary := importer.ValidateRows(importer.NormalizeAll(raw))

	s.logger.Debug("bulk import file validated",
		zap.Int("total_rows", summary.TotalRows),
		zap.Int("valid_rows", summary.ValidRows),
		zap.Int("invalid_rows", summary.InvalidRows),
	)

	return &models.ValidationResponse{Rows: rows, Summary: summary}, nil
}

// ImportRecords импортирует строки, подтверждённые клиентом после проверки.
// Строки со статусом, отличным от valid, пропускаются. Оставшиеся проверяются
// повторно; индекс строки - её позиция в присланном списке.
func (s *BulkImportServiceImpl) ImportRecords(ctx context.Context, userID uuid.UUID, records []models.ValidatedRecord) (*models.BulkImportResult, error) {
	if len(records) == 0 {
		return nil, ErrNoRecordsProvided
	}

	indexed := make([]indexedRow, 0, len(records))
	for i, rec := range records {
		if rec.Status != models.ValidationValid {
			continue
		}
		indexed = append(indexed, indexedRow{index: i, row: rec.InvoiceRow})
	}

	if len(indexed) == 0 {
		return nil, ErrNoValidRecords
	}

	return s.importIndexed(ctx, userID, indexed)
}

// ImportRows проверяет и импортирует нормализованные строки.
// Индекс строки - её позиция в rows.
func (s *BulkImportServiceImpl) ImportRows(ctx context.Context, userID uuid.UUID, rows []models.InvoiceRow) (*models.BulkImportResult, error) {
	indexed := make([]indexedRow, len(rows))
	for i, row := range rows {
		indexed[i] = indexedRow{index: i, row: row}
	}
	return s.importIndexed(ctx, userID, indexed)
}

// ImportFile выполняет весь конвейер за один вызов: разбор, нормализация, проверка, запись.
func (s *BulkImportServiceImpl) ImportFile(ctx context.Context, userID uuid.UUID, data []byte, mimeType string) (*models.BulkImportResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.parser.Parse(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}

	return s.ImportRows(ctx, userID, importer.NormalizeAll(raw))
}

type indexedRow struct {
	index int
	row   models.InvoiceRow
}

func (s *BulkImportServiceImpl) importIndexed(ctx context.Context, userID uuid.UUID, rows []indexedRow) (*models.BulkImportResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		valid     []models.ImportRow
		rowErrors []models.RowError
		records   []models.ImportedRecord
	)

	for _, r := range rows {
		rec := importer.ValidateRow(r.row)
		if rec.Status == models.ValidationInvalid {
			rowErr := rowErrorFromRecord(r.index, rec)
			rowErrors = append(rowErrors, rowErr)
			records = append(records, models.ImportedRecord{
				RowIndex: r.index,
				OrderNo:  rec.OrderNo,
				Status:   models.ImportError,
				Message:  rowErr.Message,
			})
			continue
		}
		valid = append(valid, models.ImportRow{Index: r.index, Row: rec.InvoiceRow})
	}

	result := &models.BulkImportResult{
		Errors:           []models.RowError{},
		ImportedInvoices: []string{},
		Records:          []models.ImportedRecord{},
	}

	if len(valid) > 0 {
		stored, err := s.bulkStorage.BulkImport(ctx, userID, valid)
		if err != nil {
			s.logger.Error("bulk import failed",
				zap.String("user_id", userID.String()),
				zap.Int("rows", len(valid)),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %v", ErrBulkImportProcessing, err)
		}
		result = stored
	}

	result.TotalRows = len(rows)
	result.Errors = append(rowErrors, result.Errors...)
	result.Records = append(records, result.Records...)
	sort.SliceStable(result.Errors, func(i, j int) bool {
		return result.Errors[i].RowIndex < result.Errors[j].RowIndex
	})
	sort.SliceStable(result.Records, func(i, j int) bool {
		return result.Records[i].RowIndex < result.Records[j].RowIndex
	})
	if result.Errors == nil {
		result.Errors = []models.RowError{}
	}
	if result.Records == nil {
		result.Records = []models.ImportedRecord{}
	}

	s.logger.Info("bulk import finished",
		zap.String("user_id", userID.String()),
		zap.Int("total_rows", result.TotalRows),
		zap.Int("imported", result.ValidRows),
		zap.Int("failed", len(result.Errors)),
	)

	if result.ValidRows == 0 {
		return result, ErrNoRecordsImported
	}

	return result, nil
}

// rowErrorFromRecord сворачивает ошибки полей строки в одну ошибку строки.
// Поле берётся из первой ошибки, сообщения объединяются.
func rowErrorFromRecord(index int, rec models.ValidatedRecord) models.RowError {
	messages := make([]string, 0, len(rec.Errors))
	for _, fe := range rec.Errors {
		messages = append(messages, fe.Message)
	}

	field := ""
	if len(rec.Errors) > 0 {
		field = rec.Errors[0].Field
	}

	return models.RowError{
		RowIndex: index,
		Field:    field,
		Message:  strings.Join(messages, "; "),
	}
}
