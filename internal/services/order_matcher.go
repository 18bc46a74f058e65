package services

import (
	"strings"
	"unicode"

	"github.com/agamariel/invoicehub/internal/models"
)

const (
	matchTitleMismatch = "Information mismatch"
	matchTitleOK       = "Request received"
)

// CustomerOrderMatcher сравнивает имя, email и телефон из заявки с заказом.
// Строки сравниваются без учёта регистра и крайних пробелов, телефоны - только по цифрам.
type CustomerOrderMatcher struct{}

// NewOrderMatcher создаёт новый экземпляр CustomerOrderMatcher.
func NewOrderMatcher() *CustomerOrderMatcher {
	return &CustomerOrderMatcher{}
}

// Match возвращает warning с перечнем расходящихся полей или success.
func (m *CustomerOrderMatcher) Match(order *models.Order, input *models.RequestInvoiceInput) models.OrderValidation {
	var mismatched []string

	if !sameText(order.CusName, input.CustomerName) {
		mismatched = append(mismatched, "customer name")
	}
	if !sameText(order.Email, input.Email) {
		mismatched = append(mismatched, "email")
	}
	if !samePhone(order.Phone, input.Phone) {
		mismatched = append(mismatched, "phone")
	}

	if len(mismatched) > 0 {
		return models.OrderValidation{
			Status:  models.VerdictWarning,
			Title:   matchTitleMismatch,
			Message: "The following information does not match the order " + order.OrderNo + ": " + strings.Join(mismatched, ", ") + ". Your request has been recorded and will be reviewed.",
		}
	}

	return models.OrderValidation{
		Status:  models.VerdictSuccess,
		Title:   matchTitleOK,
		Message: "Your invoice request for order " + order.OrderNo + " has been received.",
	}
}

func sameText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func samePhone(a, b string) bool {
	return digitsOnly(a) == digitsOnly(b)
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

var _ OrderMatcher = (*CustomerOrderMatcher)(nil)
