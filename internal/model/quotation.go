package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quotation statuses. Transitions are explicit user actions:
// draft → sent → accepted | refused | expired.
const (
	QuotationDraft    = "draft"
	QuotationSent     = "sent"
	QuotationAccepted = "accepted"
	QuotationRefused  = "refused"
	QuotationExpired  = "expired"
)

// Quotation is a non-binding offer: its lines never reserve or sell variants.
// IsSent records the transmission fact separately from the status axis.
type Quotation struct {
	QuotationID     uint   `gorm:"primaryKey"`
	QuotationNumber string `gorm:"size:50;uniqueIndex;not null"`
	ClientID        uint   `gorm:"index;not null"`
	Date            time.Time `gorm:"not null"`
	ExpiryDate      *time.Time
	Status          string `gorm:"size:20;not null;default:'draft'"`
	IsSent          bool   `gorm:"not null;default:false"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(5,2);not null;default:18"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes           *string
	// InvoiceID links the invoice this quotation converted into (at most one).
	InvoiceID *uint `gorm:"index"`
	CreatedAt time.Time

	Client *Client         `gorm:"foreignKey:ClientID"`
	Items  []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
}

// QuotationItem is either bound to a product (ProductID set) or a free-text
// service line (ProductID nil).
type QuotationItem struct {
	ItemID      uint  `gorm:"primaryKey"`
	QuotationID uint  `gorm:"index;not null"`
	ProductID   *uint `gorm:"index"`
	ProductName string `gorm:"size:100;not null"`
	Quantity    int    `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// ValidQuotationTransition reports whether moving from one status to another
// is allowed by the lifecycle.
func ValidQuotationTransition(from, to string) bool {
	switch from {
	case QuotationDraft:
		return to == QuotationSent || to == QuotationAccepted ||
			to == QuotationRefused || to == QuotationExpired
	case QuotationSent:
		return to == QuotationAccepted || to == QuotationRefused || to == QuotationExpired
	default:
		// accepted / refused / expired are terminal
		return false
	}
}
