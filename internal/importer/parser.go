package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	MIMETypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMETypeCSV  = "text/csv"

	DefaultMaxFileBytes = 2 * 1024 * 1024
	DefaultMaxRows      = 1000
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds 2MB limit")
	ErrInvalidFileType = errors.New("only .xlsx or .csv files are supported")
	ErrTooManyRows     = errors.New("file exceeds maximum limit of 1000 records")
	ErrParseFailed     = errors.New("failed to parse file")
)

// ErrorCode возвращает машинный код ошибки разбора файла.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return "FILE_TOO_LARGE"
	case errors.Is(err, ErrInvalidFileType):
		return "INVALID_FILE_TYPE"
	case errors.Is(err, ErrTooManyRows):
		return "TOO_MANY_ROWS"
	case errors.Is(err, ErrParseFailed):
		return "PARSE_ERROR"
	default:
		return "PROCESSING_ERROR"
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser разбирает загруженный xlsx или csv в упорядоченный список строк.
type Parser struct {
	maxBytes int64
	maxRows  int
}

// NewParser создаёт парсер с ограничениями на размер и число строк.
func NewParser(maxBytes int64, maxRows int) *Parser {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &Parser{maxBytes: maxBytes, maxRows: maxRows}
}

// Parse проверяет размер и тип файла, читает первый лист (или таблицу csv),
// считая первую строку заголовком, и проверяет число строк данных.
// Любая проверка прерывает разбор целиком.
func (p *Parser) Parse(ctx context.Context, data []byte, mimeType string) ([]RawRow, error) {
	if int64(len(data)) > p.maxBytes {
		return nil, ErrFileTooLarge
	}

	kind, err := normalizeMIME(mimeType)
	if err != nil {
		return nil, err
	}

	var table [][]string
	switch kind {
	case MIMETypeXLSX:
		table, err = readXLSX(data)
	case MIMETypeCSV:
		table, err = readCSV(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	rows, err := toRawRows(ctx, table)
	if err != nil {
		return nil, err
	}

	if len(rows) > p.maxRows {
		return nil, ErrTooManyRows
	}

	return rows, nil
}

// normalizeMIME отбрасывает параметры вида "; charset=utf-8".
func normalizeMIME(mimeType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return "", ErrInvalidFileType
	}
	switch strings.ToLower(mediaType) {
	case MIMETypeXLSX:
		return MIMETypeXLSX, nil
	case MIMETypeCSV:
		return MIMETypeCSV, nil
	default:
		return "", ErrInvalidFileType
	}
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		// Выгрузки из старого Excel под Windows приходят в cp1258.
		src = transform.NewReader(src, charmap.Windows1258.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// toRawRows превращает таблицу в строки-словари. Заголовком считается первая
// непустая строка: пустые строки над таблицей пропускаются. Пустые ячейки
// становятся пустыми строками, полностью пустые строки пропускаются. Колонки
// без заголовка и повторные заголовки игнорируются.
func toRawRows(ctx context.Context, table [][]string) ([]RawRow, error) {
	for len(table) > 0 && isBlank(table[0]) {
		table = table[1:]
	}
	if len(table) == 0 {
		return []RawRow{}, nil
	}

	headers := make([]string, len(table[0]))
	seen := make(map[string]bool, len(table[0]))
	for i, h := range table[0] {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		headers[i] = h
	}

	rows := make([]RawRow, 0, len(table)-1)
	for n, cells := range table[1:] {
		if n%100 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if isBlank(cells) {
			continue
		}

		row := make(RawRow, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
