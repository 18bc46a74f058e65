package storage

import (
	"context"
	"fmt"
)

const requestNumberPrefix = "REQ"

// FormatRequestNumber возвращает номер заявки вида REQ0000001.
func FormatRequestNumber(n int64) string {
	return fmt.Sprintf("%s%07d", requestNumberPrefix, n)
}

// nextRequestNumber выделяет следующий номер из последовательности invoice_req_no_seq.
// nextval атомарен между сессиями, поэтому параллельные импорты не получат
// одинаковых номеров; после отката в нумерации возможны пропуски.
func nextRequestNumber(ctx context.Context, q querier) (string, error) {
	var n int64
	if err := q.QueryRow(ctx, `SELECT nextval('invoice_req_no_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("failed to allocate request number: %w", err)
	}
	return FormatRequestNumber(n), nil
}
