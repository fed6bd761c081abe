package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateSupplierRequest struct {
	Name          string  `json:"name"           validate:"required,min=1,max=100"`
	ContactPerson *string `json:"contact_person" validate:"omitempty,max=100"`
	Email         *string `json:"email"          validate:"omitempty,email"`
	Phone         *string `json:"phone"          validate:"omitempty,max=20"`
	Address       *string `json:"address"`
}

type UpdateSupplierRequest struct {
	Name          *string `json:"name"           validate:"omitempty,min=1,max=100"`
	ContactPerson *string `json:"contact_person" validate:"omitempty,max=100"`
	Email         *string `json:"email"          validate:"omitempty,email"`
	Phone         *string `json:"phone"          validate:"omitempty,max=20"`
	Address       *string `json:"address"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SupplierResponse struct {
	SupplierID    uint    `json:"supplier_id"`
	Name          string  `json:"name"`
	ContactPerson *string `json:"contact_person"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
}
