package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type InvoiceItemInput struct {
	ProductID   *uint           `json:"product_id"`
	ProductName string          `json:"product_name" validate:"required,max=255"`
	Quantity    int             `json:"quantity"     validate:"min=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"   validate:"required"`
	// VariantIDs bind specific serialized units to this line. When present
	// the effective quantity is len(VariantIDs).
	VariantIDs []uint `json:"variant_ids"`
}

type CreateInvoiceRequest struct {
	ClientID         uint               `json:"client_id"         validate:"required"`
	QuotationID      *uint              `json:"quotation_id"`
	Date             *string            `json:"date"              validate:"omitempty,datetime=2006-01-02"`
	DueDate          *string            `json:"due_date"          validate:"omitempty,datetime=2006-01-02"`
	TaxRate          *decimal.Decimal   `json:"tax_rate"`
	ShowTax          *bool              `json:"show_tax"`
	PriceDisplay     *string            `json:"price_display"     validate:"omitempty,oneof=TTC HT"`
	PaymentMethod    *string            `json:"payment_method"`
	HasWarranty      bool               `json:"has_warranty"`
	WarrantyDuration *int               `json:"warranty_duration" validate:"omitempty,min=1"`
	Notes            *string            `json:"notes"`
	Items            []InvoiceItemInput `json:"items"             validate:"required,min=1,dive"`
}

type UpdateInvoiceRequest struct {
	ClientID         *uint              `json:"client_id"`
	Date             *string            `json:"date"              validate:"omitempty,datetime=2006-01-02"`
	DueDate          *string            `json:"due_date"          validate:"omitempty,datetime=2006-01-02"`
	TaxRate          *decimal.Decimal   `json:"tax_rate"`
	ShowTax          *bool              `json:"show_tax"`
	PriceDisplay     *string            `json:"price_display"     validate:"omitempty,oneof=TTC HT"`
	PaymentMethod    *string            `json:"payment_method"`
	HasWarranty      *bool              `json:"has_warranty"`
	WarrantyDuration *int               `json:"warranty_duration" validate:"omitempty,min=1"`
	Notes            *string            `json:"notes"`
	Items            []InvoiceItemInput `json:"items"             validate:"omitempty,min=1,dive"`
}

type InvoiceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent cancelled"`
}

type AddPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"         validate:"required"`
	PaymentDate   *string         `json:"payment_date"   validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string          `json:"payment_method" validate:"required,max=50"`
	Reference     *string         `json:"reference"`
	Notes         *string         `json:"notes"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type InvoiceFilter struct {
	ClientID uint   `form:"client_id"`
	Status   string `form:"status"`
	Search   string `form:"search"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InvoiceItemVariantResponse struct {
	VariantID  uint   `json:"variant_id"`
	IMEISerial string `json:"imei_serial"`
}

type InvoiceItemResponse struct {
	ItemID      uint                         `json:"item_id"`
	ProductID   *uint                        `json:"product_id"`
	ProductName string                       `json:"product_name"`
	Quantity    int                          `json:"quantity"`
	UnitPrice   decimal.Decimal              `json:"unit_price"`
	Total       decimal.Decimal              `json:"total"`
	Variants    []InvoiceItemVariantResponse `json:"variants"`
}

type PaymentResponse struct {
	PaymentID     uint            `json:"payment_id"`
	InvoiceID     uint            `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date"`
	PaymentMethod string          `json:"payment_method"`
	Reference     *string         `json:"reference"`
	Notes         *string         `json:"notes"`
}

type InvoiceResponse struct {
	InvoiceID        uint                  `json:"invoice_id"`
	InvoiceNumber    string                `json:"invoice_number"`
	ClientID         uint                  `json:"client_id"`
	ClientName       string                `json:"client_name,omitempty"`
	QuotationID      *uint                 `json:"quotation_id"`
	Date             string                `json:"date"`
	DueDate          *string               `json:"due_date"`
	Status           string                `json:"status"`
	Subtotal         decimal.Decimal       `json:"subtotal"`
	TaxRate          decimal.Decimal       `json:"tax_rate"`
	TaxAmount        decimal.Decimal       `json:"tax_amount"`
	Total            decimal.Decimal       `json:"total"`
	PaidAmount       decimal.Decimal       `json:"paid_amount"`
	RemainingAmount  decimal.Decimal       `json:"remaining_amount"`
	ShowTax          bool                  `json:"show_tax"`
	PriceDisplay     string                `json:"price_display"`
	PaymentMethod    *string               `json:"payment_method"`
	HasWarranty      bool                  `json:"has_warranty"`
	WarrantyDuration *int                  `json:"warranty_duration"`
	WarrantyEndDate  *string               `json:"warranty_end_date"`
	Notes            *string               `json:"notes"`
	Items            []InvoiceItemResponse `json:"items"`
	Payments         []PaymentResponse     `json:"payments"`
}

type InvoiceListResponse struct {
	Data       []InvoiceResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
