package dto

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ImportJobResponse struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	Status           string  `json:"status"`
	FileName         string  `json:"file_name"`
	TotalRecords     int     `json:"total_records"`
	ProcessedRecords int     `json:"processed_records"`
	SuccessRecords   int     `json:"success_records"`
	ErrorRecords     int     `json:"error_records"`
	ErrorMessage     *string `json:"error_message"`
	CreatedAt        string  `json:"created_at"`
	CompletedAt      *string `json:"completed_at"`
}

type ImportLogResponse struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

type ImportJobDetailResponse struct {
	ImportJobResponse
	Logs []ImportLogResponse `json:"logs"`
}
