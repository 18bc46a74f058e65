package models

// ValidationStatus - результат проверки строки файла.
type ValidationStatus string

const (
	ValidationValid   ValidationStatus = "valid"
	ValidationInvalid ValidationStatus = "invalid"
)

// ImportStatus - результат записи строки в базу.
type ImportStatus string

const (
	ImportSuccess ImportStatus = "success"
	ImportError   ImportStatus = "error"
)

// InvoiceRow - строка файла после приведения заголовков к каноническим полям.
type InvoiceRow struct {
	UserName   string `json:"user_name"`
	CusName    string `json:"cus_name"`
	TaxNo      string `json:"tax_no"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	OrderNo    string `json:"order_no"`
	CusAddress string `json:"cus_address"`
}

// FieldError - ошибка проверки одного поля.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidatedRecord - строка с итогом проверки.
// Status == invalid тогда и только тогда, когда Errors не пуст.
type ValidatedRecord struct {
	InvoiceRow
	Status ValidationStatus `json:"status"`
	Errors []FieldError     `json:"errors,omitempty"`
}

// RowError - ошибка, привязанная к позиции строки в пакете (с нуля).
type RowError struct {
	RowIndex int    `json:"rowIndex"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

// ValidationSummary - сводка по проверке файла.
type ValidationSummary struct {
	TotalRows   int        `json:"totalRows"`
	ValidRows   int        `json:"validRows"`
	InvalidRows int        `json:"invalidRows"`
	Errors      []RowError `json:"errors"`
}

// ValidationResponse - ответ этапа проверки файла.
type ValidationResponse struct {
	Rows    []ValidatedRecord `json:"rows"`
	Summary ValidationSummary `json:"summary"`
}

// ImportRow - проверенная строка вместе с её исходной позицией в пакете.
type ImportRow struct {
	Index int
	Row   InvoiceRow
}

// ImportedRecord - итог импорта одной строки.
type ImportedRecord struct {
	RowIndex int          `json:"rowIndex"`
	ID       string       `json:"id,omitempty"`
	ReqNo    string       `json:"reqNo,omitempty"`
	OrderNo  string       `json:"orderNo"`
	Status   ImportStatus `json:"status"`
	Message  string       `json:"message,omitempty"`
}

// BulkImportResult - итог одного вызова массового импорта.
type BulkImportResult struct {
	TotalRows        int              `json:"totalRows"`
	ValidRows        int              `json:"validRows"`
	Errors           []RowError       `json:"errors"`
	ImportedInvoices []string         `json:"importedInvoices"`
	Records          []ImportedRecord `json:"records"`
}

// ImportRequest - тело запроса POST /api/invoices/bulk-import.
type ImportRequest struct {
	Records []ValidatedRecord `json:"records"`
}
