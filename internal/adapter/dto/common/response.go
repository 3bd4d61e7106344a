package common

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MessageResponse represents a bare acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports service and dependency reachability
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
