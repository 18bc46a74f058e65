package importer

import (
	"regexp"
	"strings"

	"github.com/agamariel/invoicehub/internal/models"
)

var (
	taxNoPattern = regexp.MustCompile(`^\d{10,13}$`)
	phonePattern = regexp.MustCompile(`^0\d{9}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	taxNoNoise = regexp.MustCompile(`[\s-]`)
	phoneNoise = regexp.MustCompile(`[\s()-]`)
)

// Имена полей и подписи для сообщений об обязательных полях.
var requiredFields = []struct {
	field string
	label string
	value func(models.InvoiceRow) string
}{
	{"user_name", "User Name", func(r models.InvoiceRow) string { return r.UserName }},
	{"cus_name", "Customer Name", func(r models.InvoiceRow) string { return r.CusName }},
	{"tax_no", "Tax Code", func(r models.InvoiceRow) string { return r.TaxNo }},
	{"phone", "Phone Number", func(r models.InvoiceRow) string { return r.Phone }},
	{"order_no", "Order Number", func(r models.InvoiceRow) string { return r.OrderNo }},
}

// ValidateRow проверяет строку и возвращает её в очищенном виде.
// Все нарушения собираются, проверка не прерывается на первом.
// Email и адрес необязательны; email проверяется по формату, если задан.
func ValidateRow(row models.InvoiceRow) models.ValidatedRecord {
	var errs []models.FieldError

	for _, f := range requiredFields {
		if strings.TrimSpace(f.value(row)) == "" {
			errs = append(errs, models.FieldError{Field: f.field, Message: f.label + " is required"})
		}
	}

	cleaned := CleanRow(row)

	if strings.TrimSpace(row.TaxNo) != "" && !taxNoPattern.MatchString(cleaned.TaxNo) {
		errs = append(errs, models.FieldError{Field: "tax_no", Message: "Tax Code must be between 10-13 digits"})
	}
	if strings.TrimSpace(row.Phone) != "" && !phonePattern.MatchString(cleaned.Phone) {
		errs = append(errs, models.FieldError{Field: "phone", Message: "Invalid phone number format (must be 10 digits starting with 0)"})
	}
	if cleaned.Email != "" && !emailPattern.MatchString(cleaned.Email) {
		errs = append(errs, models.FieldError{Field: "email", Message: "Invalid email format"})
	}

	rec := models.ValidatedRecord{InvoiceRow: cleaned, Status: models.ValidationValid}
	if len(errs) > 0 {
		rec.Status = models.ValidationInvalid
		rec.Errors = errs
	}
	return rec
}

// CleanRow убирает пробелы по краям, а из налогового кода и телефона - разделители.
func CleanRow(row models.InvoiceRow) models.InvoiceRow {
	return models.InvoiceRow{
		UserName:   strings.TrimSpace(row.UserName),
		CusName:    strings.TrimSpace(row.CusName),
		TaxNo:      taxNoNoise.ReplaceAllString(row.TaxNo, ""),
		Email:      strings.TrimSpace(row.Email),
		Phone:      phoneNoise.ReplaceAllString(row.Phone, ""),
		OrderNo:    strings.TrimSpace(row.OrderNo),
		CusAddress: strings.TrimSpace(row.CusAddress),
	}
}

// ValidateRows проверяет пакет строк и собирает сводку.
func ValidateRows(rows []models.InvoiceRow) ([]models.ValidatedRecord, models.ValidationSummary) {
	records := make([]models.ValidatedRecord, 0, len(rows))
	summary := models.ValidationSummary{
		TotalRows: len(rows),
		Errors:    []models.RowError{},
	}

	for i, row := range rows {
		rec := ValidateRow(row)
		if rec.Status == models.ValidationValid {
			summary.ValidRows++
		} else {
			summary.InvalidRows++
			for _, e := range rec.Errors {
				summary.Errors = append(summary.Errors, models.RowError{RowIndex: i, Field: e.Field, Message: e.Message})
			}
		}
		records = append(records, rec)
	}

	return records, summary
}
