package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Persisted invoice status axis. paid / partially_paid / overdue are display
// states derived at read time and never stored (they would drift with the
// passage of time or new payments).
const (
	InvoiceDraft     = "draft"
	InvoiceSent      = "sent"
	InvoiceCancelled = "cancelled"

	InvoicePaid          = "paid"
	InvoicePartiallyPaid = "partially_paid"
	InvoiceOverdue       = "overdue"
)

type Invoice struct {
	InvoiceID     uint   `gorm:"primaryKey"`
	InvoiceNumber string `gorm:"size:50;uniqueIndex;not null"`
	ClientID      uint   `gorm:"index;not null"`
	QuotationID   *uint  `gorm:"index"`
	Date          time.Time `gorm:"not null"`
	DueDate       *time.Time
	Status        string  `gorm:"size:20;not null;default:'draft'"`
	PaymentMethod *string `gorm:"size:50"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:18"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Notes         *string
	ShowTax       bool   `gorm:"not null;default:true"`
	PriceDisplay  string `gorm:"size:10;not null;default:'TTC'"` // HT | TTC

	// Warranty
	HasWarranty       bool `gorm:"not null;default:false"`
	WarrantyDuration  *int // months
	WarrantyStartDate *time.Time
	WarrantyEndDate   *time.Time

	CreatedAt time.Time

	Client    *Client          `gorm:"foreignKey:ClientID"`
	Quotation *Quotation       `gorm:"foreignKey:QuotationID"`
	Items     []InvoiceItem    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Payments  []InvoicePayment `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// Remaining returns total − paid, floored at zero.
func (i *Invoice) Remaining() decimal.Decimal {
	r := i.Total.Sub(i.PaidAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// DisplayStatus derives the externally visible status from the payment state
// and due date. Pure function of (status, remaining, due_date, now):
// recomputing twice without new writes yields the same value.
func (i *Invoice) DisplayStatus(now time.Time) string {
	if i.Status == InvoiceCancelled {
		return InvoiceCancelled
	}
	remaining := i.Remaining()
	if remaining.IsZero() && i.Total.IsPositive() {
		return InvoicePaid
	}
	if i.DueDate != nil && now.After(*i.DueDate) && remaining.IsPositive() {
		return InvoiceOverdue
	}
	if i.PaidAmount.IsPositive() && remaining.IsPositive() {
		return InvoicePartiallyPaid
	}
	return i.Status
}

// InvoiceItem is a document line: a product line (ProductID set, optionally
// bound to variants) or a custom/service line (ProductID nil). For
// variant-bound lines Quantity always equals len(Variants).
type InvoiceItem struct {
	ItemID      uint  `gorm:"primaryKey"`
	InvoiceID   uint  `gorm:"index;not null"`
	ProductID   *uint `gorm:"index"`
	ProductName string `gorm:"size:100;not null"`
	Quantity    int    `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product  *Product             `gorm:"foreignKey:ProductID"`
	Variants []InvoiceItemVariant `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

// InvoiceItemVariant binds one sold variant to an invoice line. The serial is
// denormalized so the document stays readable if the variant row is deleted.
type InvoiceItemVariant struct {
	ID         uint   `gorm:"primaryKey"`
	ItemID     uint   `gorm:"index;not null"`
	VariantID  uint   `gorm:"index;not null"`
	IMEISerial string `gorm:"column:imei_serial;size:255;not null"`
}

// InvoicePayment is append-only; amount is validated > 0 and capped by the
// invoice remaining at creation time.
type InvoicePayment struct {
	PaymentID     uint `gorm:"primaryKey"`
	InvoiceID     uint `gorm:"index;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentDate   time.Time       `gorm:"not null"`
	PaymentMethod *string         `gorm:"size:50"`
	Reference     *string         `gorm:"size:100"`
	Notes         *string
}
