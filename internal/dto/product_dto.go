package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type VariantAttributeInput struct {
	AttributeName  string `json:"attribute_name"  validate:"required,max=100"`
	AttributeValue string `json:"attribute_value" validate:"required,max=255"`
}

type VariantInput struct {
	// VariantID present means update-in-place, absent means create.
	VariantID  *uint                   `json:"variant_id"`
	IMEISerial string                  `json:"imei_serial" validate:"required,min=1,max=100"`
	Barcode    *string                 `json:"barcode"     validate:"omitempty,max=100"`
	Condition  *string                 `json:"condition"`
	Attributes []VariantAttributeInput `json:"attributes"  validate:"dive"`
}

type CreateProductRequest struct {
	Name            string           `json:"name"             validate:"required,min=1,max=255"`
	Description     *string          `json:"description"`
	Category        string           `json:"category"`
	Brand           *string          `json:"brand"`
	Model           *string          `json:"model"`
	Barcode         *string          `json:"barcode"          validate:"omitempty,max=100"`
	Price           decimal.Decimal  `json:"price"            validate:"required"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price"`
	Quantity        int              `json:"quantity"         validate:"min=0"`
	Condition       *string          `json:"condition"`
	HasUniqueSerial bool             `json:"has_unique_serial"`
	Notes           *string          `json:"notes"`
	Variants        []VariantInput   `json:"variants"         validate:"dive"`
}

type UpdateProductRequest struct {
	Name            *string          `json:"name"             validate:"omitempty,min=1,max=255"`
	Description     *string          `json:"description"`
	Category        *string          `json:"category"`
	Brand           *string          `json:"brand"`
	Model           *string          `json:"model"`
	Barcode         *string          `json:"barcode"          validate:"omitempty,max=100"`
	Price           *decimal.Decimal `json:"price"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price"`
	Quantity        *int             `json:"quantity"         validate:"omitempty,min=0"`
	Condition       *string          `json:"condition"`
	HasUniqueSerial *bool            `json:"has_unique_serial"`
	Notes           *string          `json:"notes"`
	Variants        []VariantInput   `json:"variants"         validate:"dive"`
	DeletedVariants []uint           `json:"deleted_variants"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Search    string `form:"search"`
	Category  string `form:"category"`
	Brand     string `form:"brand"`
	Condition string `form:"condition"`
	InStock   *bool  `form:"in_stock"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VariantResponse struct {
	VariantID  uint                    `json:"variant_id"`
	ProductID  uint                    `json:"product_id"`
	IMEISerial string                  `json:"imei_serial"`
	Barcode    *string                 `json:"barcode"`
	Condition  *string                 `json:"condition"`
	IsSold     bool                    `json:"is_sold"`
	Attributes []VariantAttributeInput `json:"attributes"`
}

type ProductResponse struct {
	ProductID       uint              `json:"product_id"`
	Name            string            `json:"name"`
	Description     *string           `json:"description"`
	Category        string            `json:"category"`
	Brand           *string           `json:"brand"`
	Model           *string           `json:"model"`
	Barcode         *string           `json:"barcode"`
	Price           decimal.Decimal   `json:"price"`
	PurchasePrice   decimal.Decimal   `json:"purchase_price"`
	Quantity        int               `json:"quantity"`
	Condition       *string           `json:"condition"`
	HasUniqueSerial bool              `json:"has_unique_serial"`
	Notes           *string           `json:"notes"`
	CreatedAt       string            `json:"created_at"`
	Variants        []VariantResponse `json:"variants"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// ScanResponse is returned by the barcode scan endpoint. Exactly one of
// Product or Variant is set depending on what the code matched.
type ScanResponse struct {
	MatchType string           `json:"match_type"`
	Product   *ProductResponse `json:"product,omitempty"`
	Variant   *VariantResponse `json:"variant,omitempty"`
}

type StockMovementResponse struct {
	MovementID    uint             `json:"movement_id"`
	ProductID     uint             `json:"product_id"`
	ProductName   string           `json:"product_name,omitempty"`
	Quantity      int              `json:"quantity"`
	MovementType  string           `json:"movement_type"`
	ReferenceType string           `json:"reference_type"`
	ReferenceID   *uint            `json:"reference_id"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	Notes         *string          `json:"notes"`
	CreatedAt     string           `json:"created_at"`
}

type StockMovementListResponse struct {
	Data       []StockMovementResponse `json:"data"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"total_pages"`
}
