package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Delivery note statuses: en_preparation → en_cours → livré, or annulé.
const (
	DeliveryPreparing = "en_preparation"
	DeliveryInTransit = "en_cours"
	DeliveryDelivered = "livré"
	DeliveryCancelled = "annulé"
)

// ValidDeliveryTransition reports whether a status change is allowed:
// en_preparation → en_cours → livré, cancellable until delivered.
func ValidDeliveryTransition(from, to string) bool {
	switch from {
	case DeliveryPreparing:
		return to == DeliveryInTransit || to == DeliveryDelivered || to == DeliveryCancelled
	case DeliveryInTransit:
		return to == DeliveryDelivered || to == DeliveryCancelled
	default:
		return false
	}
}

// DeliveryNote is derived from a finalized invoice (one per invoice; the
// derivation endpoint is idempotent and returns the existing note).
type DeliveryNote struct {
	DeliveryNoteID     uint   `gorm:"primaryKey"`
	DeliveryNoteNumber string `gorm:"size:50;uniqueIndex;not null"`
	InvoiceID          uint   `gorm:"index;not null"`
	ClientID           uint   `gorm:"index;not null"`
	Date               time.Time `gorm:"not null"`
	DeliveryDate       *time.Time
	Status             string `gorm:"size:20;not null;default:'en_preparation'"`
	DeliveryAddress    *string
	DeliveryContact    *string `gorm:"size:100"`
	DeliveryPhone      *string `gorm:"size:20"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRate            decimal.Decimal `gorm:"type:decimal(5,2);not null;default:18"`
	TaxAmount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TransportCost      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Notes              *string
	DeliveredBy        *string `gorm:"size:100"`
	SignatureReceived  bool    `gorm:"not null;default:false"`
	SignatureDataURL   *string
	CreatedAt          time.Time
	DeliveredAt        *time.Time

	Invoice *Invoice           `gorm:"foreignKey:InvoiceID"`
	Client  *Client            `gorm:"foreignKey:ClientID"`
	Items   []DeliveryNoteItem `gorm:"foreignKey:DeliveryNoteID;constraint:OnDelete:CASCADE"`
}

type DeliveryNoteItem struct {
	ItemID            uint  `gorm:"primaryKey"`
	DeliveryNoteID    uint  `gorm:"index;not null"`
	ProductID         *uint `gorm:"index"`
	ProductName       string `gorm:"size:100;not null"`
	Quantity          int    `gorm:"not null"`
	Price             decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DeliveredQuantity int             `gorm:"not null;default:0"`
	// SerialNumbers is a JSON array of the IMEI/serials shipped on this line.
	SerialNumbers *string
}
