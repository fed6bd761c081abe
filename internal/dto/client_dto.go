package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateClientRequest struct {
	Name       string  `json:"name"        validate:"required,min=1,max=100"`
	Contact    *string `json:"contact"`
	Email      *string `json:"email"       validate:"omitempty,email"`
	Phone      *string `json:"phone"       validate:"omitempty,max=20"`
	Address    *string `json:"address"`
	City       *string `json:"city"        validate:"omitempty,max=50"`
	PostalCode *string `json:"postal_code" validate:"omitempty,max=10"`
	Country    *string `json:"country"     validate:"omitempty,max=50"`
	TaxNumber  *string `json:"tax_number"  validate:"omitempty,max=50"`
	Notes      *string `json:"notes"`
}

type UpdateClientRequest struct {
	Name       *string `json:"name"        validate:"omitempty,min=1,max=100"`
	Contact    *string `json:"contact"`
	Email      *string `json:"email"       validate:"omitempty,email"`
	Phone      *string `json:"phone"       validate:"omitempty,max=20"`
	Address    *string `json:"address"`
	City       *string `json:"city"        validate:"omitempty,max=50"`
	PostalCode *string `json:"postal_code" validate:"omitempty,max=10"`
	Country    *string `json:"country"     validate:"omitempty,max=50"`
	TaxNumber  *string `json:"tax_number"  validate:"omitempty,max=50"`
	Notes      *string `json:"notes"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ClientFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClientResponse struct {
	ClientID   uint    `json:"client_id"`
	Name       string  `json:"name"`
	Contact    *string `json:"contact"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	PostalCode *string `json:"postal_code"`
	Country    string  `json:"country"`
	TaxNumber  *string `json:"tax_number"`
	Notes      *string `json:"notes"`
	CreatedAt  string  `json:"created_at"`
}

type ClientListResponse struct {
	Data       []ClientResponse `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// ClientBalanceResponse summarizes receivables derived from the client's
// invoices. Balances are computed on read, never stored.
type ClientBalanceResponse struct {
	ClientID      uint            `json:"client_id"`
	Name          string          `json:"name"`
	TotalInvoiced decimal.Decimal `json:"total_invoiced"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Balance       decimal.Decimal `json:"balance"`
	OpenInvoices  int             `json:"open_invoices"`
}
