package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoiceDisplayStatus(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -10)
	future := now.AddDate(0, 0, 10)

	cases := []struct {
		name    string
		invoice Invoice
		want    string
	}{
		{
			name:    "cancelled wins over everything",
			invoice: Invoice{Status: InvoiceCancelled, Total: decimal.NewFromInt(100), PaidAmount: decimal.NewFromInt(100), DueDate: &past},
			want:    InvoiceCancelled,
		},
		{
			name:    "settled",
			invoice: Invoice{Status: InvoiceSent, Total: decimal.NewFromInt(100), PaidAmount: decimal.NewFromInt(100)},
			want:    InvoicePaid,
		},
		{
			name:    "past due with remaining",
			invoice: Invoice{Status: InvoiceSent, Total: decimal.NewFromInt(100), PaidAmount: decimal.NewFromInt(50), DueDate: &past},
			want:    InvoiceOverdue,
		},
		{
			name:    "partially paid before due date",
			invoice: Invoice{Status: InvoiceSent, Total: decimal.NewFromInt(100), PaidAmount: decimal.NewFromInt(50), DueDate: &future},
			want:    InvoicePartiallyPaid,
		},
		{
			name:    "untouched falls back to the stored status",
			invoice: Invoice{Status: InvoiceDraft, Total: decimal.NewFromInt(100)},
			want:    InvoiceDraft,
		},
		{
			name:    "zero total is never shown as paid",
			invoice: Invoice{Status: InvoiceSent},
			want:    InvoiceSent,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.invoice.DisplayStatus(now))
		})
	}
}

func TestInvoiceRemaining_FlooredAtZero(t *testing.T) {
	inv := Invoice{Total: decimal.NewFromInt(100), PaidAmount: decimal.NewFromInt(130)}
	assert.True(t, inv.Remaining().IsZero())

	inv = Invoice{Total: decimal.NewFromInt(100), PaidAmount: decimal.NewFromInt(40)}
	assert.Equal(t, "60", inv.Remaining().String())
}
