package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog entry. Two stock modes exist:
//   - variant-tracked: the product owns ProductVariants and its available
//     quantity is derived from the count of unsold variants; the product-level
//     barcode must be NULL (barcodes live on the variants);
//   - plain: Quantity is a stored counter and Barcode may be set.
//
// Barcode values are unique across the union of product and variant barcodes.
type Product struct {
	ProductID       uint   `gorm:"primaryKey"`
	Name            string `gorm:"size:500;not null;index"`
	Description     *string
	Quantity        int             `gorm:"not null;default:0"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PurchasePrice   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Category        string          `gorm:"size:50;index"`
	Brand           *string         `gorm:"size:100"`
	Model           *string         `gorm:"size:100"`
	Barcode         *string         `gorm:"size:255;uniqueIndex"`
	Condition       *string         `gorm:"size:50;default:'neuf'"` // neuf | occasion | venant
	HasUniqueSerial bool            `gorm:"not null;default:false"`
	EntryDate       *time.Time
	Notes           *string
	CreatedAt       time.Time

	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// ProductVariant is one uniquely serialized unit (IMEI or serial number).
// IsSold flips exactly once when an invoice line binds the unit, and flips
// back only when that invoice (or line) is removed.
type ProductVariant struct {
	VariantID  uint    `gorm:"primaryKey"`
	ProductID  uint    `gorm:"index;not null"`
	IMEISerial string  `gorm:"column:imei_serial;size:255;uniqueIndex;not null"`
	Barcode    *string `gorm:"size:128;uniqueIndex"`
	Condition  *string `gorm:"size:50"` // inherits the product's when empty
	IsSold     bool    `gorm:"not null;default:false"`
	CreatedAt  time.Time

	Attributes []ProductVariantAttribute `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
}

type ProductVariantAttribute struct {
	ID             uint   `gorm:"primaryKey"`
	VariantID      uint   `gorm:"index;not null"`
	AttributeName  string `gorm:"size:50;not null"`
	AttributeValue string `gorm:"size:100;not null"`
}
