package services

import (
	"context"

	"github.com/agamariel/invoicehub/internal/importer"
	"github.com/agamariel/invoicehub/internal/models"
)

// FileParser разбирает загруженный файл в строки с исходными заголовками.
type FileParser interface {
	Parse(ctx context.Context, data []byte, mimeType string) ([]importer.RawRow, error)
}

// OrderMatcher сверяет данные клиента из заявки с данными заказа.
type OrderMatcher interface {
	Match(order *models.Order, input *models.RequestInvoiceInput) models.OrderValidation
}

var _ FileParser = (*importer.Parser)(nil)
