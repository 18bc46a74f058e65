package importer

import (
	"strings"

	"github.com/agamariel/invoicehub/internal/models"
)

// RawRow - строка файла: заголовок колонки -> значение ячейки.
type RawRow map[string]string

// Синонимы заголовков в порядке приоритета. Сравнение точное, с учётом регистра.
var (
	userNameHeaders   = []string{"User Name", "user_name", "Username", "User", "Name"}
	cusNameHeaders    = []string{"Customer Name", "cus_name", "Customer", "CustomerName"}
	taxNoHeaders      = []string{"Tax Code", "tax_no", "TaxCode", "Tax Number", "Tax", "MST", "Mã số thuế"}
	emailHeaders      = []string{"Email", "email", "Email Address", "Mail"}
	phoneHeaders      = []string{"Phone Number", "phone", "Phone", "Tel", "Telephone", "Mobile", "SĐT", "Số điện thoại"}
	orderNoHeaders    = []string{"Order Number", "order_no", "Order", "OrderNo", "Order No"}
	cusAddressHeaders = []string{"Address", "cus_address", "Customer Address", "Location", "Địa chỉ"}
)

// Normalize приводит строку с произвольными заголовками к каноническому виду.
// Для каждого поля берётся первый найденный синоним; если ни один не найден, поле пустое.
func Normalize(raw RawRow) models.InvoiceRow {
	return models.InvoiceRow{
		UserName:   lookup(raw, userNameHeaders),
		CusName:    lookup(raw, cusNameHeaders),
		TaxNo:      lookup(raw, taxNoHeaders),
		Email:      lookup(raw, emailHeaders),
		Phone:      lookup(raw, phoneHeaders),
		OrderNo:    lookup(raw, orderNoHeaders),
		CusAddress: lookup(raw, cusAddressHeaders),
	}
}

// NormalizeAll сохраняет порядок строк.
func NormalizeAll(rows []RawRow) []models.InvoiceRow {
	out := make([]models.InvoiceRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, Normalize(r))
	}
	return out
}

// ToRaw возвращает строку с каноническими заголовками.
func ToRaw(row models.InvoiceRow) RawRow {
	return RawRow{
		"user_name":   row.UserName,
		"cus_name":    row.CusName,
		"tax_no":      row.TaxNo,
		"email":       row.Email,
		"phone":       row.Phone,
		"order_no":    row.OrderNo,
		"cus_address": row.CusAddress,
	}
}

func lookup(raw RawRow, headers []string) string {
	for _, h := range headers {
		if v, ok := raw[h]; ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
