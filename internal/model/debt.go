package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Debt statuses (derived, never user-settable).
const (
	DebtPending = "pending"
	DebtPartial = "partial"
	DebtPaid    = "paid"
	DebtOverdue = "overdue"
)

// SupplierDebt is a user-managed payable. Client receivables are NOT stored:
// they are derived from invoices with a positive remaining amount.
type SupplierDebt struct {
	DebtID     uint  `gorm:"primaryKey"`
	SupplierID *uint `gorm:"index"`
	Reference  string `gorm:"size:100;not null"`
	Date       time.Time
	DueDate    *time.Time
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Description *string
	Notes       *string
	CreatedAt   time.Time

	Supplier *Supplier             `gorm:"foreignKey:SupplierID"`
	Payments []SupplierDebtPayment `gorm:"foreignKey:DebtID;constraint:OnDelete:CASCADE"`
}

// Remaining returns amount − paid, floored at zero.
func (d *SupplierDebt) Remaining() decimal.Decimal {
	r := d.Amount.Sub(d.PaidAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// DerivedStatus computes the debt status from (remaining, due_date, now).
func (d *SupplierDebt) DerivedStatus(now time.Time) string {
	remaining := d.Remaining()
	if remaining.IsZero() && d.Amount.IsPositive() {
		return DebtPaid
	}
	if d.DueDate != nil && now.After(*d.DueDate) && remaining.IsPositive() {
		return DebtOverdue
	}
	if d.PaidAmount.IsPositive() {
		return DebtPartial
	}
	return DebtPending
}

type SupplierDebtPayment struct {
	PaymentID     uint `gorm:"primaryKey"`
	DebtID        uint `gorm:"index;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentDate   time.Time       `gorm:"not null"`
	PaymentMethod *string         `gorm:"size:50"`
	Reference     *string         `gorm:"size:100"`
	Notes         *string
}
