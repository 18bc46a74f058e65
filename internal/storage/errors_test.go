package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestFormatRequestNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{1, "REQ0000001"},
		{42, "REQ0000042"},
		{9999999, "REQ9999999"},
		{10000000, "REQ10000000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatRequestNumber(tt.n); got != tt.want {
				t.Errorf("FormatRequestNumber(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestClassifyRowError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "order not found",
			err:  ErrOrderNotFound,
			want: "Order ORD1 not found",
		},
		{
			name: "wrapped order not found",
			err:  fmt.Errorf("lock: %w", ErrOrderNotFound),
			want: "Order ORD1 not found",
		},
		{
			name: "link already exists",
			err:  ErrInvoiceAlreadyExists,
			want: "Invoice already exists for order ORD1",
		},
		{
			name: "unique violation on order link",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "order_invoices_order_no_key"},
			want: "Invoice already exists for order ORD1",
		},
		{
			name: "unique violation on request number",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "invoices_req_no_key"}),
			want: "Duplicate invoice request number",
		},
		{
			name: "foreign key violation",
			err:  &pgconn.PgError{Code: "23503"},
			want: "Referenced order does not exist",
		},
		{
			name: "other postgres error",
			err:  &pgconn.PgError{Code: "22001", Message: "value too long"},
			want: "Failed to create invoice record",
		},
		{
			name: "unknown error",
			err:  errors.New("connection reset"),
			want: "Failed to create invoice record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyRowError(tt.err, "ORD1"); got != tt.want {
				t.Errorf("classifyRowError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23505", ConstraintName: "order_invoices_order_no_key"})

	if !isUniqueViolation(err, orderInvoiceOrderNoKey) {
		t.Error("expected unique violation on order_invoices_order_no_key")
	}
	if isUniqueViolation(err, "users_login_key") {
		t.Error("unexpected match for another constraint")
	}
	if isUniqueViolation(errors.New("boom"), orderInvoiceOrderNoKey) {
		t.Error("unexpected match for non-postgres error")
	}
}

func TestIsDeadlock(t *testing.T) {
	if !isDeadlock(fmt.Errorf("lock: %w", &pgconn.PgError{Code: "40P01"})) {
		t.Error("wrapped 40P01 must be reported as deadlock")
	}
	if isDeadlock(&pgconn.PgError{Code: "23505"}) {
		t.Error("unique violation is not a deadlock")
	}
	if isDeadlock(errors.New("deadlock detected")) {
		t.Error("plain error is not a deadlock")
	}
}
