package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MovementIn  = "IN"
	MovementOut = "OUT"
)

// Reference types tie a movement back to the event that caused it.
const (
	RefCreation        = "CREATION"
	RefInvoice         = "INVOICE"
	RefInvoiceCancel   = "INVOICE_CANCELLATION"
	RefInvoiceUpdate   = "INVOICE_UPDATE"
	RefInvUpdateRevert = "INV_UPDATE_REVERT"
	RefImport          = "IMPORT"
	RefDeletion        = "DELETION"
)

// StockMovement records every change of a product's stored counter.
type StockMovement struct {
	MovementID    uint   `gorm:"primaryKey"`
	ProductID     uint   `gorm:"index;not null"`
	Quantity      int    `gorm:"not null"`
	MovementType  string `gorm:"size:10;not null"`
	ReferenceType string `gorm:"size:30;not null"`
	ReferenceID   *uint
	Notes         *string
	UnitPrice     *decimal.Decimal `gorm:"type:decimal(10,2)"`
	CreatedAt     time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
