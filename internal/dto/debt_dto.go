package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateDebtRequest struct {
	SupplierID  *uint           `json:"supplier_id"`
	Reference   string          `json:"reference"   validate:"required,max=100"`
	Amount      decimal.Decimal `json:"amount"      validate:"required"`
	Date        *string         `json:"date"        validate:"omitempty,datetime=2006-01-02"`
	DueDate     *string         `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
	Description *string         `json:"description"`
	Notes       *string         `json:"notes"`
}

type UpdateDebtRequest struct {
	Reference   *string          `json:"reference"   validate:"omitempty,max=100"`
	Amount      *decimal.Decimal `json:"amount"`
	DueDate     *string          `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
	Description *string          `json:"description"`
	Notes       *string          `json:"notes"`
}

type AddDebtPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"         validate:"required"`
	PaymentDate   *string         `json:"payment_date"   validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string          `json:"payment_method" validate:"required,max=50"`
	Reference     *string         `json:"reference"`
	Notes         *string         `json:"notes"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type DebtFilter struct {
	SupplierID uint   `form:"supplier_id"`
	Status     string `form:"status"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DebtPaymentResponse struct {
	PaymentID     uint            `json:"payment_id"`
	DebtID        uint            `json:"debt_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date"`
	PaymentMethod *string         `json:"payment_method"`
	Reference     *string         `json:"reference"`
	Notes         *string         `json:"notes"`
}

type DebtResponse struct {
	DebtID          uint                  `json:"debt_id"`
	SupplierID      *uint                 `json:"supplier_id"`
	SupplierName    string                `json:"supplier_name,omitempty"`
	Reference       string                `json:"reference"`
	Amount          decimal.Decimal       `json:"amount"`
	PaidAmount      decimal.Decimal       `json:"paid_amount"`
	RemainingAmount decimal.Decimal       `json:"remaining_amount"`
	Status          string                `json:"status"`
	Date            string                `json:"date"`
	DueDate         *string               `json:"due_date"`
	Description     *string               `json:"description"`
	Notes           *string               `json:"notes"`
	Payments        []DebtPaymentResponse `json:"payments"`
}

type DebtListResponse struct {
	Data       []DebtResponse `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// DebtOverviewEntry is one row of the combined debts view: supplier payables
// stored in the debts table and client receivables derived from invoices.
// EntityType is "supplier" or "client"; EntityID refers to that entity.
type DebtOverviewEntry struct {
	EntityType      string          `json:"entity_type"`
	EntityID        uint            `json:"entity_id"`
	EntityName      string          `json:"entity_name"`
	Reference       string          `json:"reference"`
	Amount          decimal.Decimal `json:"amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          string          `json:"status"`
	DueDate         *string         `json:"due_date"`
	// DebtID is set for supplier rows, InvoiceID for client rows.
	DebtID    *uint `json:"debt_id,omitempty"`
	InvoiceID *uint `json:"invoice_id,omitempty"`
}

type DebtOverviewResponse struct {
	Data           []DebtOverviewEntry `json:"data"`
	TotalPayable   decimal.Decimal     `json:"total_payable"`
	TotalReceivable decimal.Decimal    `json:"total_receivable"`
}
