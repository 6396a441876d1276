package dto

// ErrorBodyDTO is the inner error object of the common error envelope.
type ErrorBodyDTO struct {
	Code      string `json:"code" example:"validation"`
	Message   string `json:"message" example:"contentInput must be at least 10 characters"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable"`
}

// ErrorResponseDTO is the common error envelope for all endpoints.
type ErrorResponseDTO struct {
	Error ErrorBodyDTO `json:"error"`
}

// MessageResponseDTO is the simple message response.
type MessageResponseDTO struct {
	Message string `json:"message" example:"content deleted"`
}
