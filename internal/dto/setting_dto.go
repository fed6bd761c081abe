package dto

import "encoding/json"

// ─── Settings ────────────────────────────────────────────────────────────────

// SettingValueRequest tolerates both payload shapes the frontend sends:
// {"value": ...} or the bare JSON value. The handler unwraps the envelope.
type SettingValueRequest struct {
	Value json.RawMessage `json:"value"`
}

type SettingResponse struct {
	Data json.RawMessage `json:"data"`
}

type SettingsMapResponse struct {
	Data map[string]json.RawMessage `json:"data"`
}

type PaymentMethodsRequest struct {
	Methods []string `json:"methods" validate:"required"`
}

type PaymentMethodsResponse struct {
	Data []string `json:"data"`
}

// ─── Scan history ────────────────────────────────────────────────────────────

type AddScanRequest struct {
	Barcode     string          `json:"barcode"   validate:"required,max=255"`
	ProductName *string         `json:"product_name"`
	ScanType    string          `json:"scan_type" validate:"omitempty,oneof=product variant variant_partial"`
	ResultData  json.RawMessage `json:"result_data"`
}

type ScanHistoryEntry struct {
	ScanID      uint            `json:"scan_id"`
	Barcode     string          `json:"barcode"`
	ProductName *string         `json:"product_name"`
	ScanType    string          `json:"scan_type"`
	ResultData  json.RawMessage `json:"result_data,omitempty"`
	ScannedAt   string          `json:"scanned_at"`
}

type ScanHistoryResponse struct {
	Data []ScanHistoryEntry `json:"data"`
}
