package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DeliveryNoteItemPatch struct {
	ItemID            uint `json:"item_id"            validate:"required"`
	DeliveredQuantity int  `json:"delivered_quantity" validate:"min=0"`
}

type UpdateDeliveryNoteRequest struct {
	DeliveryDate    *string                 `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
	DeliveryAddress *string                 `json:"delivery_address"`
	DeliveryContact *string                 `json:"delivery_contact"`
	DeliveryPhone   *string                 `json:"delivery_phone"`
	TransportCost   *decimal.Decimal        `json:"transport_cost"`
	Notes           *string                 `json:"notes"`
	Items           []DeliveryNoteItemPatch `json:"items" validate:"omitempty,dive"`
}

type DeliveryNoteStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=en_preparation en_cours livré annulé"`
}

type DeliverySignatureRequest struct {
	DeliveredBy      string  `json:"delivered_by" validate:"required,max=100"`
	SignatureDataURL *string `json:"signature_data_url"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type DeliveryNoteFilter struct {
	ClientID uint   `form:"client_id"`
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DeliveryNoteItemResponse struct {
	ItemID            uint            `json:"item_id"`
	ProductID         *uint           `json:"product_id"`
	ProductName       string          `json:"product_name"`
	Quantity          int             `json:"quantity"`
	DeliveredQuantity int             `json:"delivered_quantity"`
	Price             decimal.Decimal `json:"price"`
	SerialNumbers     []string        `json:"serial_numbers"`
}

type DeliveryNoteResponse struct {
	DeliveryNoteID     uint                       `json:"delivery_note_id"`
	DeliveryNoteNumber string                     `json:"delivery_note_number"`
	InvoiceID          uint                       `json:"invoice_id"`
	ClientID           uint                       `json:"client_id"`
	ClientName         string                     `json:"client_name,omitempty"`
	Date               string                     `json:"date"`
	DeliveryDate       *string                    `json:"delivery_date"`
	Status             string                     `json:"status"`
	DeliveryAddress    *string                    `json:"delivery_address"`
	DeliveryContact    *string                    `json:"delivery_contact"`
	DeliveryPhone      *string                    `json:"delivery_phone"`
	Subtotal           decimal.Decimal            `json:"subtotal"`
	TaxRate            decimal.Decimal            `json:"tax_rate"`
	TaxAmount          decimal.Decimal            `json:"tax_amount"`
	Total              decimal.Decimal            `json:"total"`
	TransportCost      decimal.Decimal            `json:"transport_cost"`
	DeliveredBy        *string                    `json:"delivered_by"`
	SignatureReceived  bool                       `json:"signature_received"`
	DeliveredAt        *string                    `json:"delivered_at"`
	Notes              *string                    `json:"notes"`
	Items              []DeliveryNoteItemResponse `json:"items"`
}

type DeliveryNoteListResponse struct {
	Data       []DeliveryNoteResponse `json:"data"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}
