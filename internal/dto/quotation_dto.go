package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type QuotationItemInput struct {
	ProductID   *uint           `json:"product_id"`
	ProductName string          `json:"product_name" validate:"required,max=255"`
	Quantity    int             `json:"quantity"     validate:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"   validate:"required"`
}

type CreateQuotationRequest struct {
	ClientID   uint                 `json:"client_id"   validate:"required"`
	Date       *string              `json:"date"        validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate *string              `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	TaxRate    *decimal.Decimal     `json:"tax_rate"`
	Notes      *string              `json:"notes"`
	Items      []QuotationItemInput `json:"items"       validate:"required,min=1,dive"`
}

type UpdateQuotationRequest struct {
	ClientID   *uint                `json:"client_id"`
	Date       *string              `json:"date"        validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate *string              `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	TaxRate    *decimal.Decimal     `json:"tax_rate"`
	Notes      *string              `json:"notes"`
	Items      []QuotationItemInput `json:"items"       validate:"omitempty,min=1,dive"`
}

type QuotationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent accepted refused expired"`
}

type QuotationSentRequest struct {
	IsSent bool `json:"is_sent"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type QuotationFilter struct {
	ClientID uint   `form:"client_id"`
	Status   string `form:"status"`
	Search   string `form:"search"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type QuotationItemResponse struct {
	ItemID      uint            `json:"item_id"`
	ProductID   *uint           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

type QuotationResponse struct {
	QuotationID     uint                    `json:"quotation_id"`
	QuotationNumber string                  `json:"quotation_number"`
	ClientID        uint                    `json:"client_id"`
	ClientName      string                  `json:"client_name,omitempty"`
	Date            string                  `json:"date"`
	ExpiryDate      *string                 `json:"expiry_date"`
	Status          string                  `json:"status"`
	IsSent          bool                    `json:"is_sent"`
	Subtotal        decimal.Decimal         `json:"subtotal"`
	TaxRate         decimal.Decimal         `json:"tax_rate"`
	TaxAmount       decimal.Decimal         `json:"tax_amount"`
	Total           decimal.Decimal         `json:"total"`
	Notes           *string                 `json:"notes"`
	InvoiceID       *uint                   `json:"invoice_id"`
	Items           []QuotationItemResponse `json:"items"`
}

type QuotationListResponse struct {
	Data       []QuotationResponse `json:"data"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
}
