package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AttributeValueInput struct {
	Value     string  `json:"value"      validate:"required,max=100"`
	Code      *string `json:"code"       validate:"omitempty,max=100"`
	SortOrder int     `json:"sort_order"`
}

type CategoryAttributeInput struct {
	Name        string                `json:"name"         validate:"required,max=50"`
	Code        *string               `json:"code"         validate:"omitempty,max=50"`
	Type        string                `json:"type"         validate:"omitempty,oneof=select multiselect text number boolean"`
	Required    bool                  `json:"required"`
	MultiSelect bool                  `json:"multi_select"`
	SortOrder   int                   `json:"sort_order"`
	Values      []AttributeValueInput `json:"values"       validate:"dive"`
}

type CreateCategoryRequest struct {
	Name             string                   `json:"name"              validate:"required,min=1,max=50"`
	Description      *string                  `json:"description"`
	RequiresVariants bool                     `json:"requires_variants"`
	Attributes       []CategoryAttributeInput `json:"attributes"        validate:"dive"`
}

type UpdateCategoryRequest struct {
	Name             *string                  `json:"name"              validate:"omitempty,min=1,max=50"`
	Description      *string                  `json:"description"`
	RequiresVariants *bool                    `json:"requires_variants"`
	Attributes       []CategoryAttributeInput `json:"attributes"        validate:"omitempty,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AttributeValueResponse struct {
	ValueID   uint    `json:"value_id"`
	Value     string  `json:"value"`
	Code      *string `json:"code"`
	SortOrder int     `json:"sort_order"`
}

type CategoryAttributeResponse struct {
	AttributeID uint                     `json:"attribute_id"`
	Name        string                   `json:"name"`
	Code        *string                  `json:"code"`
	Type        string                   `json:"type"`
	Required    bool                     `json:"required"`
	MultiSelect bool                     `json:"multi_select"`
	SortOrder   int                      `json:"sort_order"`
	Values      []AttributeValueResponse `json:"values"`
}

type CategoryResponse struct {
	CategoryID       uint                        `json:"category_id"`
	Name             string                      `json:"name"`
	Description      *string                     `json:"description"`
	RequiresVariants bool                        `json:"requires_variants"`
	Attributes       []CategoryAttributeResponse `json:"attributes"`
}
